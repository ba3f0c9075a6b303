package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/spicetable/pos-service/internal/models"
)

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a payment against an order
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.GetContext(ctx, payment, `
		INSERT INTO payments (order_id, method, amount, reference, collected_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, order_id, method, amount, reference, collected_by, created_at`,
		payment.OrderID, payment.Method, payment.Amount, payment.Reference, payment.CollectedBy)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// ListByOrder retrieves every payment collected against an order
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT id, order_id, method, amount, reference, collected_by, created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// CollectedTotal sums the payments recorded against an order
func (r *PaymentRepository) CollectedTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
