package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodRoom PaymentMethod = "room_charge"
)

// Payment represents a collected payment against an order
type Payment struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	Method      PaymentMethod   `db:"method" json:"method"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Reference   *string         `db:"reference" json:"reference"`
	CollectedBy *uuid.UUID      `db:"collected_by" json:"collected_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// PaymentRequest records a payment against an order
type PaymentRequest struct {
	Method    PaymentMethod   `json:"method" validate:"required,oneof=cash card upi room_charge"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference *string         `json:"reference" validate:"omitempty,max=100"`
}
