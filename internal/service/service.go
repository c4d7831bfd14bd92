// Package service implements the business logic of the storefront.
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/fallback"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/handoff"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/pricing"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/uploader"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/validation"
)

var (
	// ErrInvalidCredentials is returned when the email or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCouponInactive is returned for coupons disabled by an administrator.
	ErrCouponInactive = errors.New("coupon is not active")
	// ErrCouponExpired is returned for coupons past their expiry date.
	ErrCouponExpired = errors.New("coupon has expired")
	// ErrEmptyCart is returned when a checkout summary is requested for an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOutOfStock is returned when the requested quantity exceeds the stock.
	ErrOutOfStock = errors.New("product is out of stock")
)

const minPasswordLength = 8

// Repository describes the data access contract used by the service.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, email string, passwordHash []byte, displayName string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserAdmin(ctx context.Context, userID int64, admin bool) error

	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	CreateOrder(ctx context.Context, o *model.Order) error
	FindOrderByTx(ctx context.Context, txRef, txID string) (*model.Order, error)

	GetCart(ctx context.Context, userID int64) ([]model.CartItem, error)
	UpsertCartItem(ctx context.Context, userID int64, item model.CartItem) error
	RemoveCartItem(ctx context.Context, userID int64, productID, size, color string) error
	ClearCart(ctx context.Context, userID int64) error

	SaveDeliveryDetails(ctx context.Context, userID int64, d model.DeliveryDetails) error
	GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error)

	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, categoryID string, featuredOnly bool) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateCoupon(ctx context.Context, c *model.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error

	CreateBespokeRequest(ctx context.Context, b *model.BespokeRequest) error
	ListBespokeRequests(ctx context.Context) ([]model.BespokeRequest, error)
	UpdateBespokeStatus(ctx context.Context, id string, status model.BespokeRequestStatus) error

	AddWishlistItem(ctx context.Context, userID int64, productID string) error
	RemoveWishlistItem(ctx context.Context, userID int64, productID string) error
	ListWishlist(ctx context.Context, userID int64) ([]model.Product, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotificationsByUser(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID int64, id string) error
}

// ImageUploader pushes image batches to the CDN.
type ImageUploader interface {
	UploadAll(ctx context.Context, images []uploader.Image) []uploader.Result
}

// Service contains the storefront business logic.
type Service struct {
	repo           Repository
	images         ImageUploader
	local          *fallback.Store
	formatter      *money.Formatter
	whatsappNumber string
	logger         *zap.Logger
}

// NewService creates the service with its collaborators. The image uploader,
// fallback store and WhatsApp number are optional.
func NewService(repo Repository, images ImageUploader, local *fallback.Store, formatter *money.Formatter, whatsappNumber string, logger *zap.Logger) *Service {
	return &Service{
		repo:           repo,
		images:         images,
		local:          local,
		formatter:      formatter,
		whatsappNumber: whatsappNumber,
		logger:         logger,
	}
}

// Close releases the service resources.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser registers a new customer account.
func (s *Service) RegisterUser(ctx context.Context, email, password, displayName string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.ValidEmail(email) {
		return 0, fmt.Errorf("%w: invalid email", validation.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return 0, fmt.Errorf("%w: password must be at least %d characters", validation.ErrValidation, minPasswordLength)
	}

	return s.repo.CreateUser(ctx, email, hashPassword(email, password), strings.TrimSpace(displayName))
}

// AuthenticateUser verifies the credentials and returns the user id.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	if !hmac.Equal(hashPassword(email, password), u.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

// GetUser returns the account for the given id.
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// IsAdmin reports whether the user has back-office access.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Admin, nil
}

// ListUsers returns every registered account.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// SetUserAdmin grants or revokes back-office access.
func (s *Service) SetUserAdmin(ctx context.Context, userID int64, admin bool) error {
	return s.repo.SetUserAdmin(ctx, userID, admin)
}

func hashPassword(email, password string) []byte {
	sum := sha256.Sum256([]byte(email + ":" + password))
	return sum[:]
}

// ListProducts returns catalog entries, optionally filtered by category slug
// or limited to featured products.
func (s *Service) ListProducts(ctx context.Context, categorySlug string, featuredOnly bool) ([]model.Product, error) {
	categoryID := ""
	if categorySlug != "" {
		c, err := s.repo.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = c.ID
	}
	return s.repo.ListProducts(ctx, categoryID, featuredOnly)
}

// GetProduct returns one catalog entry.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCart returns the user's server-side cart.
func (s *Service) GetCart(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return s.repo.GetCart(ctx, userID)
}

// AddToCart puts a product into the user's cart, denormalizing the name,
// price and image at add time. Adding an existing line replaces its quantity.
func (s *Service) AddToCart(ctx context.Context, userID int64, productID string, quantity int, size, color string) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", validation.ErrValidation)
	}

	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock < quantity {
		return ErrOutOfStock
	}
	if size != "" && !contains(p.Sizes, size) {
		return fmt.Errorf("%w: unknown size %q", validation.ErrValidation, size)
	}
	if color != "" && !contains(p.Colors, color) {
		return fmt.Errorf("%w: unknown color %q", validation.ErrValidation, color)
	}

	item := model.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0]
	}

	return s.repo.UpsertCartItem(ctx, userID, item)
}

// RemoveFromCart removes one cart line.
func (s *Service) RemoveFromCart(ctx context.Context, userID int64, productID, size, color string) error {
	return s.repo.RemoveCartItem(ctx, userID, productID, size, color)
}

// ClearCart empties the user's cart.
func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.repo.ClearCart(ctx, userID)
}

// SaveDeliveryDetails validates and stores the user's delivery destination.
func (s *Service) SaveDeliveryDetails(ctx context.Context, userID int64, d model.DeliveryDetails) error {
	if err := validation.ValidateDeliveryDetails(d); err != nil {
		return err
	}
	if digits, ok := validation.NormalizePhone(d.Phone); ok {
		d.Phone = digits
	}
	return s.repo.SaveDeliveryDetails(ctx, userID, d)
}

// GetDeliveryDetails returns the user's saved delivery destination.
func (s *Service) GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error) {
	return s.repo.GetDeliveryDetails(ctx, userID)
}

// ValidateCoupon checks that the code exists, is active and has not expired.
func (s *Service) ValidateCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, ErrCouponInactive
	}
	if !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(time.Now()) {
		return nil, ErrCouponExpired
	}
	return c, nil
}

// CheckoutSummary is the priced breakdown of the current cart.
type CheckoutSummary struct {
	Items          []model.CartItem `json:"items"`
	Subtotal       int64            `json:"subtotal"`
	DeliveryFee    int64            `json:"delivery_fee"`
	CouponDiscount int64            `json:"coupon_discount"`
	PointsDiscount int64            `json:"points_discount"`
	GrandTotal     int64            `json:"grand_total"`
}

// Checkout prices the user's cart against their saved delivery details, an
// optional coupon code and redeemed store points. Discounts never push the
// total below zero.
func (s *Service) Checkout(ctx context.Context, userID int64, couponCode string, points int) (*CheckoutSummary, error) {
	items, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	sum := &CheckoutSummary{Items: items}
	for _, it := range items {
		if it.Quantity <= 0 || it.UnitPrice <= 0 {
			continue
		}
		sum.Subtotal += it.UnitPrice * int64(it.Quantity)
	}

	d, err := s.repo.GetDeliveryDetails(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrDeliveryDetailsNotFound) {
		return nil, err
	}
	if d != nil && !d.Pickup {
		region := d.State
		if region == "" {
			region = d.City
		}
		sum.DeliveryFee = pricing.DeliveryFee(region, d.Country)
	}

	if couponCode != "" {
		c, err := s.ValidateCoupon(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		sum.CouponDiscount = sum.Subtotal * int64(c.Percent) / 100
	}

	sum.PointsDiscount = pricing.StorePointsValue(points)

	total := sum.Subtotal + sum.DeliveryFee - sum.CouponDiscount - sum.PointsDiscount
	if total < 0 {
		total = 0
	}
	sum.GrandTotal = total

	return sum, nil
}

// AddToWishlist adds a product to the user's wishlist.
func (s *Service) AddToWishlist(ctx context.Context, userID int64, productID string) error {
	return s.repo.AddWishlistItem(ctx, userID, productID)
}

// RemoveFromWishlist removes a product from the user's wishlist.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID int64, productID string) error {
	return s.repo.RemoveWishlistItem(ctx, userID, productID)
}

// ListWishlist returns the wishlisted products.
func (s *Service) ListWishlist(ctx context.Context, userID int64) ([]model.Product, error) {
	return s.repo.ListWishlist(ctx, userID)
}

// ListOrdersByUser returns the user's order history, newest first.
func (s *Service) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

// GetOrderForUser returns the order only when it belongs to the user or the
// user is an administrator. Foreign orders are reported as not found.
func (s *Service) GetOrderForUser(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID != nil && *o.UserID == userID {
		return o, nil
	}

	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

// GetOrder returns an order for receipt rendering. Guest orders are readable
// by their unguessable id alone; owned orders require the owner or an admin.
func (s *Service) GetOrder(ctx context.Context, userID *int64, orderID string) (*model.Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil {
		return o, nil
	}
	if userID == nil {
		return nil, repository.ErrOrderNotFound
	}
	return s.GetOrderForUser(ctx, *userID, orderID)
}

// SyncLocalOrders moves locally stored guest orders into the database under
// the given user's account. It returns how many orders were moved.
func (s *Service) SyncLocalOrders(ctx context.Context, userID int64) (int, error) {
	if s.local == nil {
		return 0, nil
	}

	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	moved, err := s.local.Sync(ctx, s.repo, u.ID, u.Email)
	if moved > 0 {
		s.logger.Info("synced local orders", zap.Int64("user_id", u.ID), zap.Int("moved", moved))
	}
	return moved, err
}

// OrderHandoffLink builds the WhatsApp link confirming the order with the
// business number.
func (s *Service) OrderHandoffLink(o *model.Order) (string, error) {
	if s.whatsappNumber == "" {
		return "", errors.New("whatsapp number not configured")
	}
	return handoff.WhatsAppURL(s.whatsappNumber, handoff.OrderMessage(o, s.formatter))
}

// ListOrders returns orders for the back office, optionally filtered by status.
func (s *Service) ListOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if status != "" && !model.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", validation.ErrValidation, status)
	}
	return s.repo.ListOrders(ctx, status, limit)
}

// UpdateOrderStatus moves an order to a new status and notifies its owner.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	if !model.ValidOrderStatus(status) {
		return fmt.Errorf("%w: unknown status %q", validation.ErrValidation, status)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}

	if o.UserID != nil {
		n := &model.Notification{
			UserID:  *o.UserID,
			Title:   "Order update",
			Body:    fmt.Sprintf("Order %s is now %s.", o.Reference, status),
			OrderID: o.ID,
		}
		if err := s.repo.CreateNotification(ctx, n); err != nil {
			s.logger.Warn("status notification failed", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	return nil
}

// SubmitBespokeRequest validates and stores a custom-order enquiry, uploading
// any reference images first.
func (s *Service) SubmitBespokeRequest(ctx context.Context, b *model.BespokeRequest, images []uploader.Image) error {
	if err := validation.ValidateBespokeRequest(*b); err != nil {
		return err
	}

	urls, err := s.UploadImages(ctx, images)
	if err != nil {
		// Reference images are optional; the enquiry still goes through.
		s.logger.Warn("bespoke image upload failed", zap.Error(err))
	}
	b.Images = urls
	b.Status = model.BespokeStatusNew

	return s.repo.CreateBespokeRequest(ctx, b)
}

// ListBespokeRequests returns every custom-order enquiry.
func (s *Service) ListBespokeRequests(ctx context.Context) ([]model.BespokeRequest, error) {
	return s.repo.ListBespokeRequests(ctx)
}

// UpdateBespokeStatus moves an enquiry to a new handling state.
func (s *Service) UpdateBespokeStatus(ctx context.Context, id string, status model.BespokeRequestStatus) error {
	switch status {
	case model.BespokeStatusNew, model.BespokeStatusReviewing, model.BespokeStatusQuoted, model.BespokeStatusClosed:
	default:
		return fmt.Errorf("%w: unknown status %q", validation.ErrValidation, status)
	}
	return s.repo.UpdateBespokeStatus(ctx, id, status)
}

// UploadImages pushes the images to the CDN and returns the URLs of the ones
// that succeeded. The first upload error, if any, is returned alongside.
func (s *Service) UploadImages(ctx context.Context, images []uploader.Image) ([]string, error) {
	if len(images) == 0 || s.images == nil {
		return nil, nil
	}

	var urls []string
	var firstErr error
	for _, res := range s.images.UploadAll(ctx, images) {
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		urls = append(urls, res.URL)
	}
	return urls, firstErr
}

// CreateProduct adds a catalog entry.
func (s *Service) CreateProduct(ctx context.Context, p *model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", validation.ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: product price must be positive", validation.ErrValidation)
	}
	return s.repo.CreateProduct(ctx, p)
}

// UpdateProduct replaces a catalog entry.
func (s *Service) UpdateProduct(ctx context.Context, p *model.Product) error {
	if p.Price <= 0 {
		return fmt.Errorf("%w: product price must be positive", validation.ErrValidation)
	}
	return s.repo.UpdateProduct(ctx, p)
}

// DeleteProduct removes a catalog entry.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, c *model.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", validation.ErrValidation)
	}
	return s.repo.CreateCategory(ctx, c)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// CreateCoupon adds a discount code.
func (s *Service) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	if err := validation.ValidateCoupon(*c); err != nil {
		return err
	}
	return s.repo.CreateCoupon(ctx, c)
}

// ListCoupons returns every coupon.
func (s *Service) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	return s.repo.ListCoupons(ctx)
}

// SetCouponActive enables or disables a coupon.
func (s *Service) SetCouponActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetCouponActive(ctx, id, active)
}

// DeleteCoupon removes a coupon.
func (s *Service) DeleteCoupon(ctx context.Context, id string) error {
	return s.repo.DeleteCoupon(ctx, id)
}

// ListNotifications returns the user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	return s.repo.ListNotificationsByUser(ctx, userID)
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID int64, id string) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

// SendNotification delivers an administrator message to a user.
func (s *Service) SendNotification(ctx context.Context, userID int64, title, body string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", validation.ErrValidation)
	}
	return s.repo.CreateNotification(ctx, &model.Notification{UserID: userID, Title: title, Body: body})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
