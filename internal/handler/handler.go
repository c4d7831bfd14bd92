// Package handler contains the HTTP handlers of the storefront API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/middleware"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/receipt"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/reconcile"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/service"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/uploader"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/validation"
)

const maxUploadBytes = 10 << 20

// Service defines the business logic contract used by the HTTP handlers.
type Service interface {
	RegisterUser(ctx context.Context, email, password, displayName string) (int64, error)
	AuthenticateUser(ctx context.Context, email, password string) (int64, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserAdmin(ctx context.Context, userID int64, admin bool) error

	ListProducts(ctx context.Context, categorySlug string, featuredOnly bool) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	GetCart(ctx context.Context, userID int64) ([]model.CartItem, error)
	AddToCart(ctx context.Context, userID int64, productID string, quantity int, size, color string) error
	RemoveFromCart(ctx context.Context, userID int64, productID, size, color string) error
	ClearCart(ctx context.Context, userID int64) error

	SaveDeliveryDetails(ctx context.Context, userID int64, d model.DeliveryDetails) error
	GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error)

	ValidateCoupon(ctx context.Context, code string) (*model.Coupon, error)
	Checkout(ctx context.Context, userID int64, couponCode string, points int) (*service.CheckoutSummary, error)

	AddToWishlist(ctx context.Context, userID int64, productID string) error
	RemoveFromWishlist(ctx context.Context, userID int64, productID string) error
	ListWishlist(ctx context.Context, userID int64) ([]model.Product, error)

	ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrder(ctx context.Context, userID *int64, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	SyncLocalOrders(ctx context.Context, userID int64) (int, error)
	OrderHandoffLink(o *model.Order) (string, error)

	SubmitBespokeRequest(ctx context.Context, b *model.BespokeRequest, images []uploader.Image) error
	ListBespokeRequests(ctx context.Context) ([]model.BespokeRequest, error)
	UpdateBespokeStatus(ctx context.Context, id string, status model.BespokeRequestStatus) error

	UploadImages(ctx context.Context, images []uploader.Image) ([]string, error)

	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CreateCoupon(ctx context.Context, c *model.Coupon) error
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error

	ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID int64, id string) error
	SendNotification(ctx context.Context, userID int64, title, body string) error
}

// Reconciler resolves payment redirects to order records.
type Reconciler interface {
	Reconcile(ctx context.Context, req reconcile.Request) reconcile.Result
}

// ReceiptRenderer produces the downloadable receipt document.
type ReceiptRenderer interface {
	Render(o *model.Order) receipt.Document
}

// Handler implements the storefront HTTP API.
type Handler struct {
	service        Service
	reconciler     Reconciler
	receipts       ReceiptRenderer
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates the HTTP handler set.
func NewHandler(s Service, rec Reconciler, receipts ReceiptRenderer, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		reconciler:     rec,
		receipts:       receipts,
		logger:         logger,
		authMiddleware: auth,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeServiceError maps domain errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without leaking details.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, validation.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	case errors.Is(err, repository.ErrUserExists), errors.Is(err, repository.ErrCouponExists),
		errors.Is(err, service.ErrOutOfStock):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrCouponNotFound), errors.Is(err, repository.ErrBespokeRequestNotFound),
		errors.Is(err, repository.ErrDeliveryDetailsNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrCouponInactive),
		errors.Is(err, service.ErrCouponExpired):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error(msg, zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return id, ok
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// Register creates an account and signs the user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.writeServiceError(w, err, "register user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login authenticates the user and sets the auth cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "login user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Logout clears the auth cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get current user")
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// ListProducts returns catalog entries, filtered by the category and featured
// query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	featured := r.URL.Query().Get("featured") == "true"

	products, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("category"), featured)
	if err != nil {
		h.writeServiceError(w, err, "list products")
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

// GetProduct returns one catalog entry.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "get product")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// ListCategories returns every category.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list categories")
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

// ValidateCoupon checks a discount code for the checkout page.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ValidateCoupon(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeServiceError(w, err, "validate coupon")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"code": c.Code, "percent": c.Percent})
}

// GetCart returns the authenticated user's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get cart")
		return
	}
	if items == nil {
		items = []model.CartItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// AddToCart puts a product into the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.service.AddToCart(r.Context(), userID, req.ProductID, req.Quantity, req.Size, req.Color); err != nil {
		h.writeServiceError(w, err, "add to cart")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RemoveFromCart removes one cart line, identified by product id plus the
// size and color query parameters.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	err := h.service.RemoveFromCart(r.Context(), userID, chi.URLParam(r, "productID"), q.Get("size"), q.Get("color"))
	if err != nil {
		h.writeServiceError(w, err, "remove from cart")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		h.writeServiceError(w, err, "clear cart")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetDeliveryDetails returns the saved delivery destination.
func (h *Handler) GetDeliveryDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	d, err := h.service.GetDeliveryDetails(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get delivery details")
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// SaveDeliveryDetails stores the delivery destination used at checkout.
func (h *Handler) SaveDeliveryDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var d model.DeliveryDetails
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SaveDeliveryDetails(r.Context(), userID, d); err != nil {
		h.writeServiceError(w, err, "save delivery details")
		return
	}
	w.WriteHeader(http.StatusOK)
}

type checkoutRequest struct {
	CouponCode string `json:"coupon_code,omitempty"`
	Points     int    `json:"points,omitempty"`
}

// Checkout prices the cart and returns the breakdown.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sum, err := h.service.Checkout(r.Context(), userID, req.CouponCode, req.Points)
	if err != nil {
		h.writeServiceError(w, err, "checkout")
		return
	}
	h.writeJSON(w, http.StatusOK, sum)
}

// ListWishlist returns the wishlisted products.
func (h *Handler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	products, err := h.service.ListWishlist(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "list wishlist")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

// AddToWishlist adds a product to the wishlist.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.AddToWishlist(r.Context(), userID, req.ProductID); err != nil {
		h.writeServiceError(w, err, "add to wishlist")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RemoveFromWishlist removes a product from the wishlist.
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFromWishlist(r.Context(), userID, chi.URLParam(r, "productID")); err != nil {
		h.writeServiceError(w, err, "remove from wishlist")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetUserOrders returns the authenticated user's order history.
func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "list user orders")
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

type reconcileRequest struct {
	OrderID  string                 `json:"order_id,omitempty"`
	TxRef    string                 `json:"tx_ref,omitempty"`
	TxID     string                 `json:"transaction_id,omitempty"`
	Cart     []model.CartItem       `json:"cart,omitempty"`
	Delivery *model.DeliveryDetails `json:"delivery,omitempty"`
	Points   int                    `json:"points,omitempty"`
}

type reconcileResponse struct {
	Outcome  string       `json:"outcome"`
	Advisory string       `json:"advisory,omitempty"`
	Order    *model.Order `json:"order,omitempty"`
}

// ReconcileOrder resolves a payment redirect to an order record. Redirect
// parameters arrive as query parameters; a POST body may additionally carry
// the client-side cart snapshot used for guest synthesis.
func (h *Handler) ReconcileOrder(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	}

	q := r.URL.Query()
	if v := q.Get("order_id"); v != "" {
		req.OrderID = v
	}
	if v := q.Get("tx_ref"); v != "" {
		req.TxRef = v
	}
	if v := q.Get("transaction_id"); v != "" {
		req.TxID = v
	}

	rreq := reconcile.Request{
		OrderID:  req.OrderID,
		TxRef:    req.TxRef,
		TxID:     req.TxID,
		Cart:     req.Cart,
		Delivery: req.Delivery,
		Points:   req.Points,
	}

	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		u, err := h.service.GetUser(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, err, "load user for reconciliation")
			return
		}
		rreq.User = u
	}

	res := h.reconciler.Reconcile(r.Context(), rreq)

	status := http.StatusOK
	if res.Outcome == reconcile.OutcomeNotFound {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, reconcileResponse{
		Outcome:  string(res.Outcome),
		Advisory: res.Advisory,
		Order:    res.Order,
	})
}

// DownloadReceipt streams the order receipt, PDF when possible.
func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	o, err := h.service.GetOrder(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "get order for receipt")
		return
	}

	doc := h.receipts.Render(o)
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.logger.Error("write receipt", zap.Error(err))
	}
}

// OrderWhatsAppLink returns the wa.me link confirming the order.
func (h *Handler) OrderWhatsAppLink(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	o, err := h.service.GetOrder(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "get order for handoff")
		return
	}

	link, err := h.service.OrderHandoffLink(o)
	if err != nil {
		h.writeServiceError(w, err, "build handoff link")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// SyncOrders moves guest orders saved on this device into the user's account.
func (h *Handler) SyncOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	moved, err := h.service.SyncLocalOrders(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "sync local orders")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"synced": moved})
}

// SubmitBespokeRequest accepts a custom-order enquiry. The body is either
// JSON or a multipart form carrying reference images.
func (h *Handler) SubmitBespokeRequest(w http.ResponseWriter, r *http.Request) {
	var b model.BespokeRequest
	var images []uploader.Image

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		b.FullName = r.FormValue("full_name")
		b.Email = r.FormValue("email")
		b.Phone = r.FormValue("phone")
		b.Description = r.FormValue("description")
		if v := r.FormValue("budget"); v != "" {
			budget, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			b.Budget = budget
		}

		var err error
		images, err = formImages(r.MultipartForm, "images")
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SubmitBespokeRequest(r.Context(), &b, images); err != nil {
		h.writeServiceError(w, err, "submit bespoke request")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListNotifications returns the user's notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	h.writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "mark notification read")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func formImages(form *multipart.Form, field string) ([]uploader.Image, error) {
	var images []uploader.Image
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, uploader.Image{Name: fh.Filename, Data: data})
	}
	return images, nil
}
