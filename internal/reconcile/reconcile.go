// Package reconcile matches payment-provider redirects to authoritative order
// records, creating one when absent.
package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/payment"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/pricing"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
)

// Outcome classifies how a reconciliation run ended. Every run ends in
// exactly one outcome; none of them is fatal to rendering.
type Outcome string

const (
	// OutcomeResolvedByID means the redirect carried an order id that was found.
	OutcomeResolvedByID Outcome = "resolved_by_id"
	// OutcomeResolvedVerified means the verifier confirmed the payment and
	// returned the order it recorded.
	OutcomeResolvedVerified Outcome = "resolved_verified"
	// OutcomeResolvedExisting means a previously recorded order matched the
	// transaction reference (the idempotency path).
	OutcomeResolvedExisting Outcome = "resolved_existing"
	// OutcomePersistedRemotely means a pending order was synthesized and
	// stored for the authenticated user.
	OutcomePersistedRemotely Outcome = "persisted_remotely"
	// OutcomePersistedLocally means a guest record was appended to the
	// on-device fallback store.
	OutcomePersistedLocally Outcome = "persisted_locally"
	// OutcomeDegraded means nothing could be stored; the returned record is
	// in-memory only.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeNotFound means no order could be located or synthesized.
	OutcomeNotFound Outcome = "not_found"
)

// Request carries the redirect parameters and whatever client state is
// available for a fallback synthesis.
type Request struct {
	OrderID string
	TxRef   string
	TxID    string
	// User is nil for guest checkouts.
	User *model.User
	// Cart and Delivery are client-supplied snapshots used when no
	// server-side state exists (guests) or as a fallback.
	Cart     []model.CartItem
	Delivery *model.DeliveryDetails
	Points   int
}

// Result is the defined outcome of a run. Order is nil only for
// OutcomeNotFound; Advisory is a user-facing message for degraded paths.
type Result struct {
	Outcome  Outcome
	Order    *model.Order
	Totals   pricing.OrderTotals
	Advisory string
}

// Repository is the persistence surface the reconciler needs.
type Repository interface {
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	FindOrderByTx(ctx context.Context, txRef, txID string) (*model.Order, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	GetCart(ctx context.Context, userID int64) ([]model.CartItem, error)
	ClearCart(ctx context.Context, userID int64) error
	GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Verifier is the external payment verification endpoint.
type Verifier interface {
	VerifyPayment(ctx context.Context, req payment.VerifyRequest) (*payment.VerifyResponse, error)
}

// LocalStore is the on-device fallback queue for guest records.
type LocalStore interface {
	Append(o model.Order) error
}

// Reconciler runs the order lookup/reconciliation flow.
type Reconciler struct {
	repo     Repository
	verifier Verifier
	local    LocalStore
	logger   *zap.Logger
}

// NewReconciler wires the flow's collaborators. verifier may be nil when no
// verifier is configured; local must not be nil.
func NewReconciler(repo Repository, verifier Verifier, local LocalStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:     repo,
		verifier: verifier,
		local:    local,
		logger:   logger,
	}
}

// Reconcile resolves a payment redirect to an order record. The steps run
// strictly in sequence: fetch by id, remote verification, idempotency lookup,
// fallback synthesis. It always returns a defined Result and never panics.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) Result {
	if req.OrderID == "" && req.TxRef == "" && req.TxID == "" {
		return Result{Outcome: OutcomeNotFound, Advisory: "no order reference was provided"}
	}

	if req.OrderID != "" {
		o, err := r.repo.GetOrder(ctx, req.OrderID)
		if err != nil {
			if !errors.Is(err, repository.ErrOrderNotFound) {
				r.logger.Error("fetch order by id", zap.String("orderID", req.OrderID), zap.Error(err))
			}
			return Result{Outcome: OutcomeNotFound, Advisory: "order not found"}
		}
		return r.resolved(OutcomeResolvedByID, o)
	}

	if o := r.verify(ctx, req); o != nil {
		return r.resolved(OutcomeResolvedVerified, o)
	}

	// Idempotency guard: a refresh of the redirect page must find the order
	// created by the first run instead of synthesizing a duplicate.
	if o, err := r.repo.FindOrderByTx(ctx, req.TxRef, req.TxID); err == nil {
		return r.resolved(OutcomeResolvedExisting, o)
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		r.logger.Error("find order by tx", zap.String("txRef", req.TxRef), zap.Error(err))
	}

	return r.synthesize(ctx, req)
}

func (r *Reconciler) resolved(outcome Outcome, o *model.Order) Result {
	t := pricing.Totals(o)
	if t.StoredMismatch {
		r.logger.Warn("stored order total diverges from recomputed total",
			zap.String("orderID", o.ID),
			zap.Int64("recomputed", t.GrandTotal))
	}
	return Result{Outcome: outcome, Order: o, Totals: t}
}

func (r *Reconciler) verify(ctx context.Context, req Request) *model.Order {
	if r.verifier == nil {
		return nil
	}

	vreq := payment.VerifyRequest{
		TxRef:     req.TxRef,
		TxID:      req.TxID,
		CartItems: req.Cart,
	}
	if req.Delivery != nil {
		vreq.Delivery = *req.Delivery
	}
	if req.User != nil {
		vreq.UserID = &req.User.ID
	}

	resp, err := r.verifier.VerifyPayment(ctx, vreq)
	if err != nil {
		var statusErr *payment.StatusError
		if errors.As(err, &statusErr) {
			r.logger.Warn("payment verification rejected",
				zap.String("txRef", req.TxRef),
				zap.Int("status", statusErr.StatusCode))
		} else if !errors.Is(err, payment.ErrNotConfigured) {
			r.logger.Warn("payment verification unreachable", zap.String("txRef", req.TxRef), zap.Error(err))
		}
		return nil
	}

	o, err := r.repo.GetOrder(ctx, resp.OrderID)
	if err != nil {
		r.logger.Warn("verified order not readable",
			zap.String("orderID", resp.OrderID), zap.Error(err))
		return nil
	}
	return o
}

// synthesize builds a best-effort pending order from the current cart and the
// last-known delivery details, then persists it remotely (authenticated) or
// locally (guest).
func (r *Reconciler) synthesize(ctx context.Context, req Request) Result {
	o := r.buildOrder(ctx, req)

	if req.User == nil {
		if err := r.local.Append(*o); err != nil {
			r.logger.Error("append local fallback order", zap.Error(err))
			return r.degraded(o, "your receipt could not be saved on this device; keep a copy")
		}
		res := r.resolved(OutcomePersistedLocally, o)
		res.Advisory = "order saved on this device only; sign in to sync it to your account"
		return res
	}

	if err := r.repo.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, repository.ErrOrderExists) {
			// Another run committed first; fall back to its record.
			if existing, findErr := r.repo.FindOrderByTx(ctx, req.TxRef, req.TxID); findErr == nil {
				return r.resolved(OutcomeResolvedExisting, existing)
			}
		}
		r.logger.Error("persist synthesized order", zap.String("txRef", req.TxRef), zap.Error(err))
		// The cart is intentionally left intact here so checkout can be retried.
		return r.degraded(o, "your payment reference was received but the order could not be saved; contact support with this receipt")
	}

	if err := r.repo.ClearCart(ctx, req.User.ID); err != nil {
		r.logger.Error("clear cart after reconciliation", zap.Int64("userID", req.User.ID), zap.Error(err))
	}

	n := &model.Notification{
		UserID:  req.User.ID,
		Title:   "Order received",
		Body:    "We recorded your order " + o.Reference + " and will confirm payment shortly.",
		OrderID: o.ID,
	}
	if err := r.repo.CreateNotification(ctx, n); err != nil {
		r.logger.Error("create reconciliation notification", zap.Error(err))
	}

	return r.resolved(OutcomePersistedRemotely, o)
}

func (r *Reconciler) degraded(o *model.Order, advisory string) Result {
	res := r.resolved(OutcomeDegraded, o)
	res.Advisory = advisory
	return res
}

func (r *Reconciler) buildOrder(ctx context.Context, req Request) *model.Order {
	cart := req.Cart
	delivery := req.Delivery

	if req.User != nil {
		if serverCart, err := r.repo.GetCart(ctx, req.User.ID); err == nil && len(serverCart) > 0 {
			cart = serverCart
		} else if err != nil {
			r.logger.Warn("read cart for synthesis", zap.Int64("userID", req.User.ID), zap.Error(err))
		}
		if cached, err := r.repo.GetDeliveryDetails(ctx, req.User.ID); err == nil {
			delivery = cached
		} else if !errors.Is(err, repository.ErrDeliveryDetailsNotFound) {
			r.logger.Warn("read delivery details for synthesis", zap.Int64("userID", req.User.ID), zap.Error(err))
		}
	}

	items := make([]model.OrderItem, 0, len(cart))
	for _, c := range cart {
		items = append(items, model.OrderItem{
			ProductID: c.ProductID,
			Name:      c.Name,
			UnitPrice: c.UnitPrice,
			Quantity:  c.Quantity,
			Size:      c.Size,
			Color:     c.Color,
			ImageURL:  c.ImageURL,
		})
	}

	o := &model.Order{
		Items: items,
		Payment: model.PaymentDetails{
			TxRef:  req.TxRef,
			TxID:   req.TxID,
			Status: "unverified",
		},
		Status:         model.OrderStatusPending,
		PointsRedeemed: req.Points,
	}
	if delivery != nil {
		o.Delivery = *delivery
	}
	if req.User != nil {
		o.UserID = &req.User.ID
		o.UserEmail = req.User.Email
	}
	return o
}
