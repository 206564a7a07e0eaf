package domain

import "time"

// Product is a catalog entry. Price is unset while a client proposal awaits
// admin review.
type Product struct {
	ID             string    `json:"id"`
	ProposedBy     *string   `json:"proposedBy,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	PriceCents     *int64    `json:"priceCents,omitempty"`
	SalePriceCents *int64    `json:"salePriceCents,omitempty"`
	CategoryID     string    `json:"category"`
	Tags           []string  `json:"tags,omitempty"`
	Images         []string  `json:"image,omitempty"`
	Rating         float64   `json:"rating"`
	Status         string    `json:"status"`
	ReviewedBy     *string   `json:"reviewedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

const (
	ProductProposed = "Proposed"
	ProductApproved = "Approved"
	ProductRejected = "Rejected"
)
