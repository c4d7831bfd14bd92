package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

func TestVerifyPayment_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/verify-payment" {
			t.Fatalf("path = %s, want /api/verify-payment", r.URL.Path)
		}

		var req VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TxRef != "tx-abc" || req.TxID != "90210" {
			t.Fatalf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(VerifyResponse{OrderID: "order-1"}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.VerifyPayment(ctx, VerifyRequest{
		TxRef: "tx-abc",
		TxID:  "90210",
		CartItems: []model.CartItem{
			{ProductID: "p1", Name: "satchel", UnitPrice: 1500000, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}
	if res.OrderID != "order-1" {
		t.Fatalf("OrderID = %q, want order-1", res.OrderID)
	}
}

func TestVerifyPayment_ServerErrorSurfacesStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.VerifyPayment(ctx, VerifyRequest{TxRef: "tx-abc"})
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error %v is not a StatusError", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d, want 500", statusErr.StatusCode)
	}
}

func TestVerifyPayment_NotFoundNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.VerifyPayment(ctx, VerifyRequest{TxRef: "tx-abc"})
	if err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}

func TestVerifyPayment_EmptyOrderIDRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := client.VerifyPayment(ctx, VerifyRequest{TxRef: "tx-abc"}); err == nil {
		t.Fatalf("empty order id must be an error")
	}
}

func TestVerifyPayment_NotConfigured(t *testing.T) {
	client := NewClient("")
	if _, err := client.VerifyPayment(context.Background(), VerifyRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
