package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/uploader"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/validation"
)

// stubRepo overrides only the methods a test exercises.
type stubRepo struct {
	Repository

	users         map[int64]*model.User
	usersByEmail  map[string]*model.User
	nextUserID    int64
	products      map[string]*model.Product
	coupons       map[string]*model.Coupon
	cart          map[int64][]model.CartItem
	delivery      map[int64]*model.DeliveryDetails
	orders        map[string]*model.Order
	notifications []model.Notification
	bespoke       []model.BespokeRequest
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:        map[int64]*model.User{},
		usersByEmail: map[string]*model.User{},
		products:     map[string]*model.Product{},
		coupons:      map[string]*model.Coupon{},
		cart:         map[int64][]model.CartItem{},
		delivery:     map[int64]*model.DeliveryDetails{},
		orders:       map[string]*model.Order{},
	}
}

func (r *stubRepo) CreateUser(ctx context.Context, email string, passwordHash []byte, displayName string) (int64, error) {
	if _, ok := r.usersByEmail[email]; ok {
		return 0, repository.ErrUserExists
	}
	r.nextUserID++
	u := &model.User{ID: r.nextUserID, Email: email, PasswordHash: passwordHash, DisplayName: displayName}
	r.users[u.ID] = u
	r.usersByEmail[email] = u
	return u.ID, nil
}

func (r *stubRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := r.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *stubRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *stubRepo) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *stubRepo) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, ok := r.coupons[code]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	return c, nil
}

func (r *stubRepo) GetCart(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return r.cart[userID], nil
}

func (r *stubRepo) UpsertCartItem(ctx context.Context, userID int64, item model.CartItem) error {
	for i, it := range r.cart[userID] {
		if it.ProductID == item.ProductID && it.Size == item.Size && it.Color == item.Color {
			r.cart[userID][i] = item
			return nil
		}
	}
	r.cart[userID] = append(r.cart[userID], item)
	return nil
}

func (r *stubRepo) GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error) {
	d, ok := r.delivery[userID]
	if !ok {
		return nil, repository.ErrDeliveryDetailsNotFound
	}
	return d, nil
}

func (r *stubRepo) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (r *stubRepo) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *stubRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *stubRepo) CreateBespokeRequest(ctx context.Context, b *model.BespokeRequest) error {
	r.bespoke = append(r.bespoke, *b)
	return nil
}

type stubUploader struct {
	results []uploader.Result
}

func (u *stubUploader) UploadAll(ctx context.Context, images []uploader.Image) []uploader.Result {
	return u.results
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, nil, money.NewFormatter(money.DefaultRates()), "2348030000000", zap.NewNop())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newStubRepo()
	s := newTestService(repo)
	ctx := context.Background()

	id, err := s.RegisterUser(ctx, "Ada@Example.com", "correct-horse", "Ada")
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.AuthenticateUser(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.AuthenticateUser(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.AuthenticateUser(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterUser_Validation(t *testing.T) {
	s := newTestService(newStubRepo())
	ctx := context.Background()

	_, err := s.RegisterUser(ctx, "not-an-email", "correct-horse", "")
	assert.ErrorIs(t, err, validation.ErrValidation)

	_, err = s.RegisterUser(ctx, "ada@example.com", "short", "")
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestAddToCart_DenormalizesProduct(t *testing.T) {
	repo := newStubRepo()
	repo.products["p1"] = &model.Product{
		ID:     "p1",
		Name:   "Oxblood satchel",
		Price:  4500000,
		Stock:  3,
		Sizes:  []string{"M", "L"},
		Images: []string{"https://cdn.example/satchel.png"},
	}
	s := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, 1, "p1", 2, "M", ""))

	items := repo.cart[1]
	require.Len(t, items, 1)
	assert.Equal(t, "Oxblood satchel", items[0].Name)
	assert.Equal(t, int64(4500000), items[0].UnitPrice)
	assert.Equal(t, "https://cdn.example/satchel.png", items[0].ImageURL)
}

func TestAddToCart_Rejections(t *testing.T) {
	repo := newStubRepo()
	repo.products["p1"] = &model.Product{ID: "p1", Name: "Belt", Price: 500000, Stock: 1, Sizes: []string{"M"}}
	s := newTestService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, s.AddToCart(ctx, 1, "p1", 2, "", ""), ErrOutOfStock)
	assert.ErrorIs(t, s.AddToCart(ctx, 1, "p1", 1, "XXL", ""), validation.ErrValidation)
	assert.ErrorIs(t, s.AddToCart(ctx, 1, "missing", 1, "", ""), repository.ErrProductNotFound)
	assert.ErrorIs(t, s.AddToCart(ctx, 1, "p1", 0, "", ""), validation.ErrValidation)
}

func TestValidateCoupon(t *testing.T) {
	repo := newStubRepo()
	repo.coupons["SAVE10"] = &model.Coupon{Code: "SAVE10", Percent: 10, Active: true, ExpiresAt: time.Now().Add(24 * time.Hour)}
	repo.coupons["OLD"] = &model.Coupon{Code: "OLD", Percent: 20, Active: true, ExpiresAt: time.Now().Add(-time.Hour)}
	repo.coupons["OFF"] = &model.Coupon{Code: "OFF", Percent: 20, Active: false}
	s := newTestService(repo)
	ctx := context.Background()

	c, err := s.ValidateCoupon(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 10, c.Percent)

	_, err = s.ValidateCoupon(ctx, "OLD")
	assert.ErrorIs(t, err, ErrCouponExpired)

	_, err = s.ValidateCoupon(ctx, "OFF")
	assert.ErrorIs(t, err, ErrCouponInactive)

	_, err = s.ValidateCoupon(ctx, "NOPE")
	assert.ErrorIs(t, err, repository.ErrCouponNotFound)
}

func TestCheckout(t *testing.T) {
	repo := newStubRepo()
	repo.cart[1] = []model.CartItem{
		{ProductID: "p1", Name: "Satchel", UnitPrice: 4500000, Quantity: 1},
		{ProductID: "p2", Name: "Card holder", UnitPrice: 800000, Quantity: 2},
	}
	repo.delivery[1] = &model.DeliveryDetails{
		FullName: "Ada Obi", Phone: "08031234567",
		Address: "12 Marina Rd", City: "Ikeja", State: "Lagos", Country: "Nigeria",
	}
	repo.coupons["SAVE10"] = &model.Coupon{Code: "SAVE10", Percent: 10, Active: true, ExpiresAt: time.Now().Add(24 * time.Hour)}
	s := newTestService(repo)
	ctx := context.Background()

	sum, err := s.Checkout(ctx, 1, "SAVE10", 50)
	require.NoError(t, err)

	assert.Equal(t, int64(6100000), sum.Subtotal)
	assert.Positive(t, sum.DeliveryFee)
	assert.Equal(t, int64(610000), sum.CouponDiscount)
	assert.Equal(t, int64(5000), sum.PointsDiscount)
	assert.Equal(t, sum.Subtotal+sum.DeliveryFee-sum.CouponDiscount-sum.PointsDiscount, sum.GrandTotal)
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newTestService(newStubRepo())

	_, err := s.Checkout(context.Background(), 1, "", 0)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_NeverNegative(t *testing.T) {
	repo := newStubRepo()
	repo.cart[1] = []model.CartItem{{ProductID: "p1", Name: "Keyring", UnitPrice: 100, Quantity: 1}}
	s := newTestService(repo)

	sum, err := s.Checkout(context.Background(), 1, "", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.GrandTotal)
}

func TestGetOrderForUser_Ownership(t *testing.T) {
	repo := newStubRepo()
	owner, other := int64(1), int64(2)
	repo.users[owner] = &model.User{ID: owner}
	repo.users[other] = &model.User{ID: other}
	repo.users[3] = &model.User{ID: 3, Admin: true}
	repo.orders["o1"] = &model.Order{ID: "o1", UserID: &owner}
	s := newTestService(repo)
	ctx := context.Background()

	o, err := s.GetOrderForUser(ctx, owner, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = s.GetOrderForUser(ctx, other, "o1")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	_, err = s.GetOrderForUser(ctx, 3, "o1")
	assert.NoError(t, err)
}

func TestUpdateOrderStatus_NotifiesOwner(t *testing.T) {
	repo := newStubRepo()
	owner := int64(1)
	repo.orders["o1"] = &model.Order{ID: "o1", Reference: "A7X9", UserID: &owner, Status: model.OrderStatusPaid}
	s := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, s.UpdateOrderStatus(ctx, "o1", model.OrderStatusCompleted))

	assert.Equal(t, model.OrderStatusCompleted, repo.orders["o1"].Status)
	require.Len(t, repo.notifications, 1)
	assert.Equal(t, owner, repo.notifications[0].UserID)
	assert.Contains(t, repo.notifications[0].Body, "A7X9")

	err := s.UpdateOrderStatus(ctx, "o1", model.OrderStatus("bogus"))
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestSubmitBespokeRequest(t *testing.T) {
	repo := newStubRepo()
	up := &stubUploader{results: []uploader.Result{
		{Name: "sketch.png", URL: "https://cdn.example/sketch.png"},
		{Name: "bad.png", Err: errors.New("upload failed")},
	}}
	s := NewService(repo, up, nil, money.NewFormatter(money.DefaultRates()), "", zap.NewNop())
	ctx := context.Background()

	b := &model.BespokeRequest{
		FullName:    "Ada Obi",
		Email:       "ada@example.com",
		Phone:       "08031234567",
		Description: "Custom briefcase in oxblood",
	}
	images := []uploader.Image{{Name: "sketch.png"}, {Name: "bad.png"}}

	require.NoError(t, s.SubmitBespokeRequest(ctx, b, images))

	require.Len(t, repo.bespoke, 1)
	assert.Equal(t, model.BespokeStatusNew, repo.bespoke[0].Status)
	// The failed image is dropped, the enquiry still goes through.
	assert.Equal(t, []string{"https://cdn.example/sketch.png"}, repo.bespoke[0].Images)
}

func TestOrderHandoffLink(t *testing.T) {
	s := newTestService(newStubRepo())

	o := &model.Order{
		Reference: "A7X9",
		Items:     []model.OrderItem{{Name: "Belt", UnitPrice: 500000, Quantity: 1}},
	}

	link, err := s.OrderHandoffLink(o)
	require.NoError(t, err)
	assert.Contains(t, link, "wa.me/2348030000000")

	unconfigured := NewService(newStubRepo(), nil, nil, money.NewFormatter(money.DefaultRates()), "", zap.NewNop())
	_, err = unconfigured.OrderHandoffLink(o)
	assert.Error(t, err)
}
