package payment

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, order *PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*PaymentOrder, error)
	GetByID(ctx context.Context, id uint) (*PaymentOrder, error)
	ListByUser(ctx context.Context, userID uint) ([]PaymentOrder, error)
	UpdatePaymentResult(ctx context.Context, orderID string, params PaymentResultParams) error
}

// PaymentResultParams carries the verified gateway outcome
type PaymentResultParams struct {
	Status    string
	PaymentID *string
	Method    string
	PaidAt    *time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]PaymentOrder, error) {
	var orders []PaymentOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) UpdatePaymentResult(ctx context.Context, orderID string, params PaymentResultParams) error {
	updates := map[string]interface{}{
		"status": params.Status,
		"method": params.Method,
	}
	if params.PaymentID != nil {
		updates["payment_id"] = *params.PaymentID
	}
	if params.PaidAt != nil {
		updates["paid_at"] = *params.PaidAt
	}

	return r.db.WithContext(ctx).
		Model(&PaymentOrder{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}
