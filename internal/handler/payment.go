package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freelance/internal/domain"
	"freelance/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	ProjectID string  `json:"projectId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// PaymentResponse is the HTTP representation of a payment. The client
// secret is only returned from the initiate endpoint, at the top level.
type PaymentResponse struct {
	ID              string  `json:"id"`
	ProjectID       string  `json:"projectId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	StripePaymentID string  `json:"stripePaymentId"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		ProjectID:       p.ProjectID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		StripePaymentID: p.StripePaymentID,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

// InitiatePayment handles POST /api/payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ProjectID == "" || req.Amount == 0 || req.Currency == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Project ID, amount, and currency are required."})
		return
	}

	payment, err := h.paymentService.InitiatePayment(c.Request.Context(), service.InitiatePaymentRequest{
		ProjectID: req.ProjectID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"message":      "Payment initiated successfully",
		"clientSecret": payment.StripeClientSecret,
		"payment":      toPaymentResponse(payment),
	})
}

// Webhook handles POST /api/payments/webhook
//
// The processor is acknowledged with 200 {received:true} for every
// delivery that passes signature verification, including events for
// unknown intent ids and unrecognized types; anything else would trigger
// redelivery storms. Signature failures are rejected with 400 before any
// state is touched.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable payload"})
		return
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrWebhookSignature) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	_ = result // outcome is logged by the service; the processor only needs the ack
	respondJSON(c, http.StatusOK, gin.H{"received": true})
}

// UpdatePaymentRequest is the HTTP request body for an admin status override.
type UpdatePaymentRequest struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// UpdatePayment handles POST /api/payments/update
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.AdminSetStatus(c.Request.Context(), req.PaymentID, domain.PaymentStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "Payment status updated",
		"payment": toPaymentResponse(payment),
	})
}

// GetAllPayments handles GET /api/payments/all
func (h *PaymentHandler) GetAllPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	payments, err := h.paymentService.ListPayments(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(payments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No payments found."})
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"page":     page,
		"limit":    limit,
		"payments": response,
	})
}

// GetPayment handles GET /api/payments/:paymentId
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"payment": toPaymentResponse(payment)})
}
