package domain

import "time"

// GuestDetails identifies the buyer of a guest order.
type GuestDetails struct {
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

// ShippingInfo is the destination and contact block of an order.
type ShippingInfo struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
}

// OrderItem is an immutable snapshot of a purchased line. Exactly one of
// ProductID / CustomImage is set.
type OrderItem struct {
	ProductID   *string `json:"product,omitempty"`
	CustomImage *string `json:"customImage,omitempty"`
	Quantity    int     `json:"quantity"`
	PriceCents  int64   `json:"priceAtPurchase"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	CustomName  *string `json:"customName,omitempty"`
}

// Order is created once and immutable except for Status. Exactly one of
// UserID / GuestDetails is populated, mirroring cart ownership exclusivity.
type Order struct {
	ID            string        `json:"id"`
	UserID        *string       `json:"user,omitempty"`
	GuestDetails  *GuestDetails `json:"guestDetails,omitempty"`
	Items         []OrderItem   `json:"items"`
	TotalCents    int64         `json:"totalAmount"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

const (
	OrderPending   = "Pending"
	OrderPaid      = "Paid"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
	OrderCancelled = "Cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// PaymentMethods lists accepted order payment methods.
var PaymentMethods = []string{"PayPal", "CreditCard", "CashOnDelivery"}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}
