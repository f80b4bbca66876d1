package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/middleware"
	"github.com/man2412/Ride-Hailing-Platform/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for settling a trip.
type CreatePaymentRequest struct {
	TripID        string  `json:"trip_id"`
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	PaymentID string  `json:"payment_id"`
	Status    string  `json:"status"`
	PSPRef    string  `json:"psp_ref,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID: payment.ID,
		Status:    string(payment.Status),
		PSPRef:    payment.ProviderRef,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	}
}

// Create handles POST /v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	payment, err := h.paymentService.Pay(c.Request.Context(), service.PayRequest{
		TripID:         req.TripID,
		RiderID:        middleware.SubjectID(c),
		Method:         req.PaymentMethod,
		Amount:         req.Amount,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// Get handles GET /v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}
