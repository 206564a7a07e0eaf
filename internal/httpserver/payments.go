package httpserver

import (
	"errors"
	"net/http"
	"time"

	"craftmarket/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createPaymentRequest struct {
	Vendor          domain.PaymentVendor `json:"vendor"`
	AmountCents     int64                `json:"amountCents"`
	Method          string               `json:"method"`
	Status          string               `json:"status"`
	Reference       string               `json:"reference"`
	TransactionDate *time.Time           `json:"transactionDate"`
}

func listPaymentsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := deps.Payments.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		if len(payments) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no payments found"})
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

func createPaymentHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in createPaymentRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if in.Vendor.Name == "" || in.Vendor.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor name and email required"})
			return
		}
		if in.AmountCents <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}
		if !domain.ValidPaymentMethod(in.Method) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
			return
		}
		if in.Reference == "" {
			in.Reference = "PAY-" + uuid.NewString()
		}
		if in.Status == "" {
			in.Status = domain.PaymentInitiated
		}
		switch in.Status {
		case domain.PaymentInitiated, domain.PaymentSuccess, domain.PaymentFailed, domain.PaymentRefunded:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment status"})
			return
		}

		p := domain.Payment{
			Vendor:          in.Vendor,
			AmountCents:     in.AmountCents,
			Method:          in.Method,
			Status:          in.Status,
			Reference:       in.Reference,
			TransactionDate: time.Now().UTC(),
		}
		if in.TransactionDate != nil {
			p.TransactionDate = *in.TransactionDate
		}

		payment, err := deps.Payments.Create(c.Request.Context(), p)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "reference already recorded"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}
