// Package model contains the domain entities of the storefront service.
package model

import "time"

// User represents a registered customer or administrator.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderStatus describes the processing state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusPaid,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderItem is a single purchased line on an order.
// Name, price and image are denormalized from the product at purchase time.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// DeliveryDetails holds the free-form destination fields captured at checkout.
type DeliveryDetails struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Pickup   bool   `json:"pickup"`
}

// PaymentDetails carries the payment-provider identifiers attached to an order.
type PaymentDetails struct {
	TxRef      string     `json:"tx_ref"`
	TxID       string     `json:"transaction_id"`
	Status     string     `json:"status"`
	PaidAmount *int64     `json:"paid_amount,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// Order represents one customer purchase attempt. UserID is nil for guest orders.
// StoredTotal is the total as recorded at write time; the authoritative figure is
// always recomputed from the items (see pricing.Totals).
type Order struct {
	ID             string          `json:"id"`
	Reference      string          `json:"reference"`
	UserID         *int64          `json:"user_id,omitempty"`
	UserEmail      string          `json:"user_email,omitempty"`
	Items          []OrderItem     `json:"items"`
	Delivery       DeliveryDetails `json:"delivery"`
	Payment        PaymentDetails  `json:"payment"`
	Status         OrderStatus     `json:"status"`
	PointsRedeemed int             `json:"points_redeemed,omitempty"`
	StoredTotal    *int64          `json:"stored_total,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CartItem is one line of a user's server-side cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"category_id,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Colors      []string  `json:"colors,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups products into a browsable collection.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Coupon is a percentage discount code.
type Coupon struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Percent   int       `json:"percent"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// BespokeRequestStatus describes the handling state of a custom-order request.
type BespokeRequestStatus string

const (
	BespokeStatusNew       BespokeRequestStatus = "new"
	BespokeStatusReviewing BespokeRequestStatus = "reviewing"
	BespokeStatusQuoted    BespokeRequestStatus = "quoted"
	BespokeStatusClosed    BespokeRequestStatus = "closed"
)

// BespokeRequest is a custom-order enquiry from a customer.
type BespokeRequest struct {
	ID          string               `json:"id"`
	FullName    string               `json:"full_name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	Description string               `json:"description"`
	Budget      int64                `json:"budget,omitempty"`
	Status      BespokeRequestStatus `json:"status"`
	Images      []string             `json:"images,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Notification is a message shown to a user, optionally referencing an order.
type Notification struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OrderID   string    `json:"order_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
