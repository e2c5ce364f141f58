package payment

import (
	"time"
)

// Payment order statuses
const (
	StatusCreated = "created"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// PaymentOrder tracks one gateway order for a paid-event registration
type PaymentOrder struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uint       `gorm:"not null;index" json:"event_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Amount    float64    `gorm:"not null" json:"amount"`
	Currency  string     `gorm:"size:10;not null;default:INR" json:"currency"`
	OrderID   string     `gorm:"size:100;unique;not null" json:"order_id"`
	PaymentID *string    `gorm:"size:100" json:"payment_id,omitempty"`
	ReceiptNo string     `gorm:"size:100;unique;not null" json:"receipt_no"`
	Method    string     `gorm:"size:30" json:"method"`
	Status    string     `gorm:"size:20;not null;default:created" json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// CreateOrderRequest starts a payment for a paid event
type CreateOrderRequest struct {
	EventID uint `json:"event_id" binding:"required"`
}

// CreateOrderResponse carries what the client SDK needs
type CreateOrderResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ReceiptNo   string  `json:"receipt_no"`
	RazorpayKey string  `json:"razorpay_key"`
}

// VerifyPaymentRequest carries the gateway callback fields
type VerifyPaymentRequest struct {
	OrderID     string `json:"orderId" binding:"required"`
	PaymentID   string `json:"paymentId" binding:"required"`
	RazorpaySig string `json:"razorpaySig" binding:"required"`
}
