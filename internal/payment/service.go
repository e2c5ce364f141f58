package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/karthikeyan-cs/event-management-backend/config"
	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
)

var (
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrFreeEvent        = errors.New("event does not require payment")
)

// EventGateway is the slice of the event service the payment flow needs.
type EventGateway interface {
	GetEventByID(ctx context.Context, id uint) (*event.Event, error)
	RegisterAttendee(ctx context.Context, eventID, userID uint, paid bool, ip string) error
}

type Service interface {
	StartPayment(ctx context.Context, userID uint, req *CreateOrderRequest, ip string) (*CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, userID uint, req *VerifyPaymentRequest, ip string) error
	GetPaymentsByUser(ctx context.Context, userID uint) ([]PaymentOrder, error)
}

type service struct {
	repo     Repository
	events   EventGateway
	client   *razorpay.Client
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(repo Repository, events EventGateway, cfg *config.Config, auditSvc auditlog.Service) Service {
	client := razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	return &service{
		repo:     repo,
		events:   events,
		client:   client,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

// StartPayment creates the Razorpay order and a pending payment record.
// The amount always comes from the stored event, never from the client.
func (s *service) StartPayment(ctx context.Context, userID uint, req *CreateOrderRequest, ip string) (*CreateOrderResponse, error) {
	ev, err := s.events.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if ev.Price <= 0 {
		return nil, ErrFreeEvent
	}

	amountInPaise := int(ev.Price * 100)
	receiptNo := fmt.Sprintf("rcpt_%s", uuid.New().String()[:18])

	data := map[string]interface{}{
		"amount":          amountInPaise,
		"currency":        "INR",
		"receipt":         receiptNo,
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"user_id":    userID,
			"event_id":   req.EventID,
			"event_name": ev.EventName,
		},
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, &req.EventID, "PAYMENT_INITIATED", map[string]interface{}{
			"amount": ev.Price,
			"error":  err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		s.auditSvc.LogAction(ctx, &userID, &req.EventID, "PAYMENT_INITIATED", map[string]interface{}{
			"amount": ev.Price,
			"error":  "unable to extract order_id from Razorpay response",
		}, ip, "failure")
		return nil, errors.New("unable to extract order_id from Razorpay response")
	}

	po := &PaymentOrder{
		EventID:   req.EventID,
		UserID:    userID,
		Amount:    ev.Price,
		Currency:  "INR",
		OrderID:   orderID,
		ReceiptNo: receiptNo,
		Status:    StatusCreated,
	}
	if err := s.repo.Create(ctx, po); err != nil {
		s.auditSvc.LogAction(ctx, &userID, &req.EventID, "PAYMENT_INITIATED", map[string]interface{}{
			"amount":   ev.Price,
			"order_id": orderID,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, &req.EventID, "PAYMENT_INITIATED", map[string]interface{}{
		"amount":   ev.Price,
		"order_id": orderID,
	}, ip, "success")

	return &CreateOrderResponse{
		OrderID:     orderID,
		Amount:      ev.Price,
		Currency:    "INR",
		ReceiptNo:   receiptNo,
		RazorpayKey: s.cfg.RazorpayKey,
	}, nil
}

// VerifyPayment checks the gateway signature, confirms the capture with
// Razorpay and, on success, registers the payer as an attendee. Calling
// it twice for the same order is a no-op after the first success.
func (s *service) VerifyPayment(ctx context.Context, userID uint, req *VerifyPaymentRequest, ip string) error {
	expected := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	expected.Write([]byte(req.OrderID + "|" + req.PaymentID))
	computedSignature := hex.EncodeToString(expected.Sum(nil))

	if computedSignature != req.RazorpaySig {
		s.auditSvc.LogAction(ctx, &userID, nil, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "invalid payment signature",
		}, ip, "failure")
		return ErrInvalidSignature
	}

	order, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "payment record not found",
		}, ip, "failure")
		return ErrOrderNotFound
	}

	if order.Status == StatusPaid {
		s.auditSvc.LogAction(ctx, &order.UserID, &order.EventID, "PAYMENT_ALREADY_PROCESSED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"amount":     order.Amount,
		}, ip, "success")
		return nil
	}

	payment, err := s.client.Payment.Fetch(req.PaymentID, nil, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &order.UserID, &order.EventID, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "razorpay payment fetch failed",
			"error":      err.Error(),
		}, ip, "failure")
		return fmt.Errorf("razorpay payment fetch failed: %w", err)
	}

	status, ok := payment["status"].(string)
	if !ok {
		s.auditSvc.LogAction(ctx, &order.UserID, &order.EventID, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "invalid payment status format",
		}, ip, "failure")
		return errors.New("invalid payment status format")
	}

	method := "unknown"
	if paymentMethod, ok := payment["method"].(string); ok {
		method = paymentMethod
	}

	if status != "captured" {
		_ = s.repo.UpdatePaymentResult(ctx, req.OrderID, PaymentResultParams{
			Status:    StatusFailed,
			PaymentID: &req.PaymentID,
			Method:    method,
		})
		s.auditSvc.LogAction(ctx, &order.UserID, &order.EventID, "PAYMENT_FAILED", map[string]interface{}{
			"order_id":       req.OrderID,
			"payment_id":     req.PaymentID,
			"gateway_status": status,
		}, ip, "failure")
		return fmt.Errorf("payment not captured, gateway status: %s", status)
	}

	now := time.Now()
	if err := s.repo.UpdatePaymentResult(ctx, req.OrderID, PaymentResultParams{
		Status:    StatusPaid,
		PaymentID: &req.PaymentID,
		Method:    method,
		PaidAt:    &now,
	}); err != nil {
		return fmt.Errorf("failed to update payment record: %w", err)
	}

	s.auditSvc.LogAction(ctx, &order.UserID, &order.EventID, "PAYMENT_SUCCESS", map[string]interface{}{
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"amount":     order.Amount,
		"method":     method,
	}, ip, "success")

	// A paid order that cannot be seated must surface, not hide: the
	// registration outcome goes back to the caller as-is.
	if err := s.events.RegisterAttendee(ctx, order.EventID, order.UserID, true, ip); err != nil {
		if errors.Is(err, event.ErrAlreadyRegistered) {
			return nil
		}
		return err
	}
	return nil
}

func (s *service) GetPaymentsByUser(ctx context.Context, userID uint) ([]PaymentOrder, error) {
	return s.repo.ListByUser(ctx, userID)
}
