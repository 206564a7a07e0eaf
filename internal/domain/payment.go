package domain

import "time"

// PaymentVendor is the payee of a ledger entry.
type PaymentVendor struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	BankAccount string `json:"bankAccount,omitempty"`
}

// Payment is one row of the payments ledger.
type Payment struct {
	ID              string        `json:"id"`
	Vendor          PaymentVendor `json:"vendor"`
	AmountCents     int64         `json:"amountCents"`
	Method          string        `json:"method"`
	Status          string        `json:"status"`
	Reference       string        `json:"reference"`
	TransactionDate time.Time     `json:"transactionDate"`
	CreatedAt       time.Time     `json:"createdAt"`
}

const (
	PaymentInitiated = "Initiated"
	PaymentSuccess   = "Success"
	PaymentFailed    = "Failed"
	PaymentRefunded  = "Refunded"
)
