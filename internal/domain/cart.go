package domain

import "time"

// Cart is owned by exactly one of UserID / GuestID. Uniqueness of each owner
// kind is enforced by partial unique indexes in the store.
type Cart struct {
	ID        string     `json:"id"`
	UserID    *string    `json:"userId,omitempty"`
	GuestID   *string    `json:"-"`
	Lines     []CartLine `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is one entry in a cart. Two lines with the same product but
// different variant attributes are distinct.
type CartLine struct {
	ID         string    `json:"id"`
	CartID     string    `json:"cartId"`
	ProductID  string    `json:"product"`
	Quantity   int       `json:"quantity"`
	Size       string    `json:"size"`
	Color      string    `json:"color"`
	CustomName *string   `json:"customName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VariantKey identifies a cart line for merge/update/removal purposes.
type VariantKey struct {
	ProductID  string
	Size       string
	Color      string
	CustomName string
}

// Key returns the variant identity tuple of the line.
func (l CartLine) Key() VariantKey {
	k := VariantKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
	if l.CustomName != nil {
		k.CustomName = *l.CustomName
	}
	return k
}

// Cart line sizes accepted by the API.
var CartSizes = []string{"s", "m", "l"}

// Cart line colors accepted by the API.
var CartColors = []string{"black", "white", "red", "blue", "green", "yellow"}

// ValidSize reports whether s is an accepted line size.
func ValidSize(s string) bool {
	for _, v := range CartSizes {
		if v == s {
			return true
		}
	}
	return false
}

// ValidColor reports whether c is an accepted line color.
func ValidColor(c string) bool {
	for _, v := range CartColors {
		if v == c {
			return true
		}
	}
	return false
}
