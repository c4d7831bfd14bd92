package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/middleware"
)

// SetupRouter wires the HTTP routes and middleware of the storefront API.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		// Storefront routes serve guests too; a valid cookie only adds identity.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.OptionalMiddleware)

			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/categories", h.ListCategories)
			r.Get("/coupons/{code}", h.ValidateCoupon)
			r.Post("/bespoke", h.SubmitBespokeRequest)

			r.Get("/orders/reconcile", h.ReconcileOrder)
			r.Post("/orders/reconcile", h.ReconcileOrder)
			r.Get("/orders/{id}/receipt", h.DownloadReceipt)
			r.Get("/orders/{id}/whatsapp", h.OrderWhatsAppLink)
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.Middleware)

				r.Get("/me", h.Me)

				r.Get("/cart", h.GetCart)
				r.Post("/cart", h.AddToCart)
				r.Delete("/cart", h.ClearCart)
				r.Delete("/cart/{productID}", h.RemoveFromCart)

				r.Get("/delivery", h.GetDeliveryDetails)
				r.Put("/delivery", h.SaveDeliveryDetails)

				r.Post("/checkout", h.Checkout)

				r.Get("/wishlist", h.ListWishlist)
				r.Post("/wishlist", h.AddToWishlist)
				r.Delete("/wishlist/{productID}", h.RemoveFromWishlist)

				r.Get("/orders", h.GetUserOrders)
				r.Post("/orders/sync", h.SyncOrders)

				r.Get("/notifications", h.ListNotifications)
				r.Post("/notifications/{id}/read", h.MarkNotificationRead)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(h.authMiddleware.RequireAdmin)

			r.Post("/products", h.AdminCreateProduct)
			r.Put("/products/{id}", h.AdminUpdateProduct)
			r.Delete("/products/{id}", h.AdminDeleteProduct)
			r.Post("/products/images", h.AdminUploadImages)

			r.Post("/categories", h.AdminCreateCategory)
			r.Delete("/categories/{id}", h.AdminDeleteCategory)

			r.Get("/coupons", h.AdminListCoupons)
			r.Post("/coupons", h.AdminCreateCoupon)
			r.Post("/coupons/{id}/active", h.AdminSetCouponActive)
			r.Delete("/coupons/{id}", h.AdminDeleteCoupon)

			r.Get("/orders", h.AdminListOrders)
			r.Post("/orders/{id}/status", h.AdminUpdateOrderStatus)

			r.Get("/bespoke", h.AdminListBespokeRequests)
			r.Post("/bespoke/{id}/status", h.AdminUpdateBespokeStatus)

			r.Get("/users", h.AdminListUsers)
			r.Post("/users/{id}/admin", h.AdminSetUserAdmin)

			r.Post("/notifications", h.AdminSendNotification)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
