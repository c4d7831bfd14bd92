package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/payment"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
)

type stubRepo struct {
	orders        map[string]*model.Order
	byTxRef       map[string]*model.Order
	cart          []model.CartItem
	delivery      *model.DeliveryDetails
	notifications []model.Notification
	findMisses    int

	createErr    error
	created      []*model.Order
	cartCleared  bool
	clearCartErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:  map[string]*model.Order{},
		byTxRef: map[string]*model.Order{},
	}
}

func (s *stubRepo) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (s *stubRepo) FindOrderByTx(ctx context.Context, txRef, txID string) (*model.Order, error) {
	if s.findMisses > 0 {
		s.findMisses--
		return nil, repository.ErrOrderNotFound
	}
	if o, ok := s.byTxRef[txRef]; ok {
		return o, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (s *stubRepo) CreateOrder(ctx context.Context, o *model.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	if o.Payment.TxRef != "" {
		if _, exists := s.byTxRef[o.Payment.TxRef]; exists {
			return repository.ErrOrderExists
		}
	}
	if o.ID == "" {
		o.ID = fmt.Sprintf("order-%d", len(s.created)+1)
	}
	if o.Reference == "" {
		o.Reference = strings.ToUpper(o.ID)
	}
	s.created = append(s.created, o)
	s.orders[o.ID] = o
	if o.Payment.TxRef != "" {
		s.byTxRef[o.Payment.TxRef] = o
	}
	return nil
}

func (s *stubRepo) GetCart(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return s.cart, nil
}

func (s *stubRepo) ClearCart(ctx context.Context, userID int64) error {
	if s.clearCartErr != nil {
		return s.clearCartErr
	}
	s.cartCleared = true
	return nil
}

func (s *stubRepo) GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error) {
	if s.delivery == nil {
		return nil, repository.ErrDeliveryDetailsNotFound
	}
	return s.delivery, nil
}

func (s *stubRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

type stubVerifier struct {
	resp *payment.VerifyResponse
	err  error
}

func (s *stubVerifier) VerifyPayment(ctx context.Context, req payment.VerifyRequest) (*payment.VerifyResponse, error) {
	return s.resp, s.err
}

type stubLocal struct {
	appended []model.Order
	err      error
}

func (s *stubLocal) Append(o model.Order) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, o)
	return nil
}

func newReconciler(repo Repository, v Verifier, local LocalStore) *Reconciler {
	return NewReconciler(repo, v, local, zap.NewNop())
}

func TestReconcile_NoParams(t *testing.T) {
	r := newReconciler(newStubRepo(), nil, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{})
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("Outcome = %s, want not_found", res.Outcome)
	}
	if res.Order != nil {
		t.Fatalf("no params must not produce an order")
	}
}

func TestReconcile_ByOrderID(t *testing.T) {
	repo := newStubRepo()
	repo.orders["order-9"] = &model.Order{
		ID:    "order-9",
		Items: []model.OrderItem{{Name: "satchel", UnitPrice: 1500000, Quantity: 1}},
	}
	r := newReconciler(repo, nil, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{OrderID: "order-9"})
	if res.Outcome != OutcomeResolvedByID {
		t.Fatalf("Outcome = %s, want resolved_by_id", res.Outcome)
	}
	if res.Order.ID != "order-9" {
		t.Fatalf("Order.ID = %s", res.Order.ID)
	}
	if res.Totals.Subtotal != 1500000 {
		t.Fatalf("Totals.Subtotal = %d", res.Totals.Subtotal)
	}
}

func TestReconcile_ByOrderID_Missing(t *testing.T) {
	r := newReconciler(newStubRepo(), nil, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{OrderID: "gone"})
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("Outcome = %s, want not_found", res.Outcome)
	}
}

func TestReconcile_Verified(t *testing.T) {
	repo := newStubRepo()
	repo.orders["order-v"] = &model.Order{ID: "order-v"}
	v := &stubVerifier{resp: &payment.VerifyResponse{OrderID: "order-v"}}
	r := newReconciler(repo, v, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{TxRef: "tx-1"})
	if res.Outcome != OutcomeResolvedVerified {
		t.Fatalf("Outcome = %s, want resolved_verified", res.Outcome)
	}
	if res.Order.ID != "order-v" {
		t.Fatalf("Order.ID = %s", res.Order.ID)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	repo := newStubRepo()
	v := &stubVerifier{err: &payment.StatusError{StatusCode: 500}}
	user := &model.User{ID: 3, Email: "ada@example.com"}
	repo.cart = []model.CartItem{{ProductID: "p1", Name: "belt", UnitPrice: 500000, Quantity: 1}}
	r := newReconciler(repo, v, &stubLocal{})

	first := r.Reconcile(context.Background(), Request{TxRef: "tx-dup", User: user})
	if first.Outcome != OutcomePersistedRemotely {
		t.Fatalf("first Outcome = %s, want persisted_remotely", first.Outcome)
	}

	second := r.Reconcile(context.Background(), Request{TxRef: "tx-dup", User: user})
	if second.Outcome != OutcomeResolvedExisting {
		t.Fatalf("second Outcome = %s, want resolved_existing", second.Outcome)
	}
	if second.Order.ID != first.Order.ID {
		t.Fatalf("second run resolved %s, first created %s", second.Order.ID, first.Order.ID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d orders, want exactly 1", len(repo.created))
	}
}

func TestReconcile_AuthenticatedFallback(t *testing.T) {
	repo := newStubRepo()
	repo.cart = []model.CartItem{
		{ProductID: "p1", Name: "weekender", UnitPrice: 4500000, Quantity: 1},
	}
	repo.delivery = &model.DeliveryDetails{
		FullName: "Ada Obi", Phone: "08031234567",
		Address: "12 Marina Rd", State: "Lagos", Country: "Nigeria",
	}
	v := &stubVerifier{err: &payment.StatusError{StatusCode: 500}}
	local := &stubLocal{}
	user := &model.User{ID: 7, Email: "ada@example.com"}
	r := newReconciler(repo, v, local)

	res := r.Reconcile(context.Background(), Request{TxRef: "tx-f", TxID: "555", User: user})

	if res.Outcome != OutcomePersistedRemotely {
		t.Fatalf("Outcome = %s, want persisted_remotely", res.Outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want exactly 1", len(repo.created))
	}
	if !repo.cartCleared {
		t.Fatalf("cart must be cleared after successful persistence")
	}
	if len(local.appended) != 0 {
		t.Fatalf("authenticated fallback must not write locally")
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(repo.notifications))
	}
	if repo.notifications[0].OrderID != res.Order.ID {
		t.Fatalf("notification references %s, order is %s", repo.notifications[0].OrderID, res.Order.ID)
	}
	if res.Order.Delivery.State != "Lagos" {
		t.Fatalf("cached delivery details not used: %+v", res.Order.Delivery)
	}
	if res.Order.Status != model.OrderStatusPending {
		t.Fatalf("Status = %s, want pending", res.Order.Status)
	}
}

func TestReconcile_GuestFallback(t *testing.T) {
	repo := newStubRepo()
	v := &stubVerifier{err: &payment.StatusError{StatusCode: 500}}
	local := &stubLocal{}
	r := newReconciler(repo, v, local)

	res := r.Reconcile(context.Background(), Request{
		TxRef: "tx-g",
		Cart: []model.CartItem{
			{ProductID: "p2", Name: "card holder", UnitPrice: 800000, Quantity: 2},
		},
		Delivery: &model.DeliveryDetails{FullName: "Guest", Phone: "08030000000", Pickup: true},
	})

	if res.Outcome != OutcomePersistedLocally {
		t.Fatalf("Outcome = %s, want persisted_locally", res.Outcome)
	}
	if len(repo.created) != 0 {
		t.Fatalf("guest flow must never write remotely, created %d", len(repo.created))
	}
	if len(local.appended) != 1 {
		t.Fatalf("appended = %d, want exactly 1", len(local.appended))
	}
	if res.Advisory == "" || !strings.Contains(res.Advisory, "sign in") {
		t.Fatalf("guest fallback must advise signing in, got %q", res.Advisory)
	}
	if res.Totals.Subtotal != 1600000 {
		t.Fatalf("Totals.Subtotal = %d, want 1600000", res.Totals.Subtotal)
	}
}

func TestReconcile_RemoteWriteFailureIsDegraded(t *testing.T) {
	repo := newStubRepo()
	repo.cart = []model.CartItem{{ProductID: "p1", Name: "belt", UnitPrice: 500000, Quantity: 1}}
	repo.createErr = errors.New("permission denied")
	v := &stubVerifier{err: &payment.StatusError{StatusCode: 500}}
	user := &model.User{ID: 7, Email: "ada@example.com"}
	r := newReconciler(repo, v, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{TxRef: "tx-d", User: user})

	if res.Outcome != OutcomeDegraded {
		t.Fatalf("Outcome = %s, want degraded", res.Outcome)
	}
	if res.Order == nil {
		t.Fatalf("degraded outcome must still carry a displayable record")
	}
	if repo.cartCleared {
		t.Fatalf("cart must not be cleared when the order was not stored")
	}
	if res.Advisory == "" {
		t.Fatalf("degraded outcome must carry an advisory")
	}
}

func TestReconcile_VerifierNetworkErrorStillResolves(t *testing.T) {
	repo := newStubRepo()
	repo.byTxRef["tx-n"] = &model.Order{ID: "order-n", Payment: model.PaymentDetails{TxRef: "tx-n"}}
	v := &stubVerifier{err: errors.New("dial tcp: connection refused")}
	r := newReconciler(repo, v, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{TxRef: "tx-n"})
	if res.Outcome != OutcomeResolvedExisting {
		t.Fatalf("Outcome = %s, want resolved_existing", res.Outcome)
	}
}

func TestReconcile_CreateRaceFallsBackToExisting(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = repository.ErrOrderExists
	repo.byTxRef["tx-race"] = &model.Order{ID: "order-won", Payment: model.PaymentDetails{TxRef: "tx-race"}}
	// The first lookup misses (race window), the insert conflicts, the
	// post-conflict lookup finds the winner's record.
	repo.findMisses = 1
	v := &stubVerifier{err: &payment.StatusError{StatusCode: 502}}
	user := &model.User{ID: 2, Email: "x@example.com"}
	r := newReconciler(repo, v, &stubLocal{})

	res := r.Reconcile(context.Background(), Request{TxRef: "tx-race", User: user})
	if res.Outcome != OutcomeResolvedExisting {
		t.Fatalf("Outcome = %s, want resolved_existing", res.Outcome)
	}
	if res.Order.ID != "order-won" {
		t.Fatalf("Order.ID = %s, want order-won", res.Order.ID)
	}
}
