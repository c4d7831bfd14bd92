package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

// Back-office handlers. All routes here sit behind the admin middleware.

// AdminCreateProduct adds a catalog entry.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateProduct(r.Context(), &p); err != nil {
		h.writeServiceError(w, err, "create product")
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// AdminUpdateProduct replaces a catalog entry.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateProduct(r.Context(), &p); err != nil {
		h.writeServiceError(w, err, "update product")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// AdminDeleteProduct removes a catalog entry.
func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminUploadImages pushes product images to the CDN and returns their URLs.
func (h *Handler) AdminUploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	images, err := formImages(r.MultipartForm, "images")
	if err != nil || len(images) == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	urls, err := h.service.UploadImages(r.Context(), images)
	if err != nil && len(urls) == 0 {
		h.writeServiceError(w, err, "upload images")
		return
	}
	// Partial success still returns the URLs that made it.
	h.writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

// AdminCreateCategory adds a category.
func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c model.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateCategory(r.Context(), &c); err != nil {
		h.writeServiceError(w, err, "create category")
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// AdminDeleteCategory removes a category.
func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminListCoupons returns every coupon.
func (h *Handler) AdminListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.ListCoupons(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list coupons")
		return
	}
	h.writeJSON(w, http.StatusOK, coupons)
}

// AdminCreateCoupon adds a discount code.
func (h *Handler) AdminCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c model.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateCoupon(r.Context(), &c); err != nil {
		h.writeServiceError(w, err, "create coupon")
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// AdminSetCouponActive enables or disables a coupon.
func (h *Handler) AdminSetCouponActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SetCouponActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		h.writeServiceError(w, err, "set coupon active")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AdminDeleteCoupon removes a coupon.
func (h *Handler) AdminDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err, "delete coupon")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminListOrders returns orders for the back office, filtered by the status
// and limit query parameters.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = n
	}

	orders, err := h.service.ListOrders(r.Context(), model.OrderStatus(q.Get("status")), limit)
	if err != nil {
		h.writeServiceError(w, err, "list orders")
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// AdminUpdateOrderStatus moves an order to a new status.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeServiceError(w, err, "update order status")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AdminListBespokeRequests returns every custom-order enquiry.
func (h *Handler) AdminListBespokeRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListBespokeRequests(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list bespoke requests")
		return
	}
	h.writeJSON(w, http.StatusOK, requests)
}

// AdminUpdateBespokeStatus moves an enquiry to a new handling state.
func (h *Handler) AdminUpdateBespokeStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.BespokeRequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateBespokeStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeServiceError(w, err, "update bespoke status")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AdminListUsers returns every registered account.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list users")
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// AdminSetUserAdmin grants or revokes back-office access.
func (h *Handler) AdminSetUserAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req struct {
		Admin bool `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SetUserAdmin(r.Context(), userID, req.Admin); err != nil {
		h.writeServiceError(w, err, "set user admin")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AdminSendNotification delivers a message to a user.
func (h *Handler) AdminSendNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SendNotification(r.Context(), req.UserID, req.Title, req.Body); err != nil {
		h.writeServiceError(w, err, "send notification")
		return
	}
	w.WriteHeader(http.StatusCreated)
}
