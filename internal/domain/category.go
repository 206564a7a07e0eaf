package domain

import "time"

type Category struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	IsActive          bool      `json:"isActive"`
	CustomNameAllowed bool      `json:"customNameAllowed"`
	CreatedAt         time.Time `json:"createdAt"`
}
