package domain

import "time"

// Address stores postal address fields shared by users, guests and orders.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// User represents a registered account.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	Address       Address   `json:"address"`
	Phone         string    `json:"phone,omitempty"`
	Status        string    `json:"status"`
	RefreshTokens []string  `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)
