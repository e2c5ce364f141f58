package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karthikeyan-cs/event-management-backend/internal/event"
	"github.com/karthikeyan-cs/event-management-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateOrder handles POST /payments/order
// @Summary Start a payment for a paid event
// @Tags Payment
// @Accept json
// @Produce json
// @Success 201 {object} CreateOrderResponse
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /api/v1/payments/order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	resp, err := h.service.StartPayment(c.Request.Context(), userID, &req, ip)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrFreeEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment order"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// VerifyPayment handles POST /payments/verify
// @Summary Verify a gateway payment and complete the registration
// @Tags Payment
// @Accept json
// @Produce json
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 409 {object} gin.H
// @Router /api/v1/payments/verify [post]
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.VerifyPayment(c.Request.Context(), userID, &req, ip); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, event.ErrEventFull):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment verified and registration confirmed"})
}

// GetMyPayments handles GET /payments/my
func (h *Handler) GetMyPayments(c *gin.Context) {
	userID := c.GetUint("user_id")

	orders, err := h.service.GetPaymentsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch payments"})
		return
	}
	if orders == nil {
		orders = []PaymentOrder{}
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}
