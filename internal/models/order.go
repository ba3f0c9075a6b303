package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType represents how an order is fulfilled
type OrderType string

const (
	OrderTypeDineIn      OrderType = "dine_in"
	OrderTypeTakeout     OrderType = "takeout"
	OrderTypeDelivery    OrderType = "delivery"
	OrderTypeRoomService OrderType = "room_service"
)

// NumberPrefix returns the order number prefix for the type
func (t OrderType) NumberPrefix() string {
	switch t {
	case OrderTypeDineIn:
		return "DIN"
	case OrderTypeTakeout:
		return "TKO"
	case OrderTypeDelivery:
		return "DEL"
	case OrderTypeRoomService:
		return "RSV"
	}
	return "ORD"
}

// RequiresTable reports whether the type must be tied to a table turnover
func (t OrderType) RequiresTable() bool {
	return t == OrderTypeDineIn
}

// IsValid checks if the type is a known OrderType
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery, OrderTypeRoomService:
		return true
	}
	return false
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Display returns the user-facing label for the status
func (s OrderStatus) Display() string {
	switch s {
	case OrderStatusOpen:
		return "Open"
	case OrderStatusReady:
		return "Ready"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// IsTerminal reports whether the status permits no further mutation
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can move to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusOpen:
		return target == OrderStatusReady || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusReady:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	}
	return false
}

// OrderItemStatus represents the status of an order line item
type OrderItemStatus string

const (
	OrderItemStatusNew       OrderItemStatus = "new"
	OrderItemStatusFired     OrderItemStatus = "fired"
	OrderItemStatusCooking   OrderItemStatus = "cooking"
	OrderItemStatusReady     OrderItemStatus = "ready"
	OrderItemStatusDelivered OrderItemStatus = "delivered"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
)

var orderItemStatusRank = map[OrderItemStatus]int{
	OrderItemStatusNew:       0,
	OrderItemStatusFired:     1,
	OrderItemStatusCooking:   2,
	OrderItemStatusReady:     3,
	OrderItemStatusDelivered: 4,
}

// String returns the string representation of OrderItemStatus
func (s OrderItemStatus) String() string {
	return string(s)
}

// Display returns the user-facing label for the status
func (s OrderItemStatus) Display() string {
	switch s {
	case OrderItemStatusNew:
		return "New"
	case OrderItemStatusFired:
		return "Fired"
	case OrderItemStatusCooking:
		return "Cooking"
	case OrderItemStatusReady:
		return "Ready"
	case OrderItemStatusDelivered:
		return "Delivered"
	case OrderItemStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// IsTerminal reports whether the item can no longer change status
func (s OrderItemStatus) IsTerminal() bool {
	return s == OrderItemStatusDelivered || s == OrderItemStatusCancelled
}

// CanTransitionTo checks if the item status can move to the target.
// Status only advances forward; cancellation is reachable from any
// non-terminal status.
func (s OrderItemStatus) CanTransitionTo(target OrderItemStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderItemStatusCancelled {
		return true
	}
	from, ok := orderItemStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderItemStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// Order represents a customer order and owns its line items
type Order struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	OrderNumber         string          `db:"order_number" json:"order_number"`
	Type                OrderType       `db:"order_type" json:"order_type"`
	Status              OrderStatus     `db:"status" json:"status"`
	TurnoverID          *uuid.UUID      `db:"turnover_id" json:"turnover_id"`
	ServerID            *uuid.UUID      `db:"server_id" json:"server_id"`
	CustomerName        *string         `db:"customer_name" json:"customer_name"`
	CustomerPhone       *string         `db:"customer_phone" json:"customer_phone"`
	SpecialInstructions *string         `db:"special_instructions" json:"special_instructions"`
	Subtotal            decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount           decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TipAmount           decimal.Decimal `db:"tip_amount" json:"tip_amount"`
	DiscountAmount      decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt         *time.Time      `db:"completed_at" json:"completed_at"`

	// Not stored directly in the database
	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem represents a line item in an order. UnitPrice is a
// snapshot of the menu price (plus modifier adjustments) at add time
// and never changes afterwards.
type OrderItem struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	OrderID             uuid.UUID       `db:"order_id" json:"order_id"`
	MenuItemID          uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	Name                string          `db:"name" json:"name"`
	Quantity            int             `db:"quantity" json:"quantity"`
	UnitPrice           decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal            decimal.Decimal `db:"subtotal" json:"subtotal"`
	Status              OrderItemStatus `db:"status" json:"status"`
	Course              *string         `db:"course" json:"course"`
	SpecialInstructions *string         `db:"special_instructions" json:"special_instructions"`
	CancelReason        *string         `db:"cancel_reason" json:"cancel_reason"`
	FiredAt             *time.Time      `db:"fired_at" json:"fired_at"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Modifiers []OrderItemModifier `db:"-" json:"modifiers,omitempty"`
}

// IsFired reports whether the item has been released to a station.
// Quantity is frozen once fired; reductions require cancel and re-add.
func (i *OrderItem) IsFired() bool {
	return i.Status != OrderItemStatusNew && i.Status != OrderItemStatusCancelled
}

// OrderItemModifier represents a modifier applied to an order item.
// PriceAdjustment is snapshotted at add time like the unit price.
type OrderItemModifier struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	OrderItemID      uuid.UUID       `db:"order_item_id" json:"order_item_id"`
	ModifierOptionID uuid.UUID       `db:"modifier_option_id" json:"modifier_option_id"`
	Name             string          `db:"name" json:"name"`
	PriceAdjustment  decimal.Decimal `db:"price_adjustment" json:"price_adjustment"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// Recalculate derives subtotal, tax and total from the current line
// items. Cancelled items contribute nothing. Tax is applied once at
// the order level so repeated recomputation cannot drift. Returns an
// error if the resulting total would be negative.
func (o *Order) Recalculate(taxRatePercent decimal.Decimal) error {
	subtotal := decimal.Zero
	for i := range o.Items {
		if o.Items[i].Status == OrderItemStatusCancelled {
			continue
		}
		subtotal = subtotal.Add(o.Items[i].Subtotal)
	}

	o.Subtotal = RoundMoney(subtotal)
	o.TaxAmount = Percentage(o.Subtotal, taxRatePercent)
	total := o.Subtotal.Add(o.TaxAmount).Add(o.TipAmount).Sub(o.DiscountAmount)
	if total.IsNegative() {
		return NewValidationError("order %s total would be negative (%s)", o.OrderNumber, total.StringFixed(2))
	}
	o.TotalAmount = RoundMoney(total)
	return nil
}

// AllItemsSettled reports whether every non-cancelled item has been
// delivered, the precondition for completing the order.
func (o *Order) AllItemsSettled() bool {
	for i := range o.Items {
		switch o.Items[i].Status {
		case OrderItemStatusDelivered, OrderItemStatusCancelled:
		default:
			return false
		}
	}
	return true
}

// OrderTotals carries the recomputed money columns of an order through
// a repository write so item mutation and total update commit together.
type OrderTotals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TipAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Totals extracts the order's current money columns
func (o *Order) Totals() OrderTotals {
	return OrderTotals{
		Subtotal:       o.Subtotal,
		TaxAmount:      o.TaxAmount,
		TipAmount:      o.TipAmount,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
	}
}

// CreateOrderRequest is used for order creation
type CreateOrderRequest struct {
	Type                OrderType  `json:"order_type" validate:"required,oneof=dine_in takeout delivery room_service"`
	TurnoverID          *uuid.UUID `json:"turnover_id"`
	CustomerName        *string    `json:"customer_name" validate:"omitempty,max=100"`
	CustomerPhone       *string    `json:"customer_phone" validate:"omitempty,max=20"`
	SpecialInstructions *string    `json:"special_instructions" validate:"omitempty,max=500"`
}

// AddItemRequest is used to add a line item to an order
type AddItemRequest struct {
	MenuItemID          uuid.UUID              `json:"menu_item_id" validate:"required"`
	Quantity            int                    `json:"quantity" validate:"required,min=1"`
	Course              *string                `json:"course" validate:"omitempty,max=50"`
	SpecialInstructions *string                `json:"special_instructions" validate:"omitempty,max=500"`
	Modifiers           []ItemModifierRequest  `json:"modifiers" validate:"dive"`
}

// ItemModifierRequest selects a modifier option for a line item
type ItemModifierRequest struct {
	OptionID uuid.UUID `json:"option_id" validate:"required"`
}

// UpdateItemRequest is used to update a line item
type UpdateItemRequest struct {
	Quantity            int     `json:"quantity" validate:"required,min=1"`
	SpecialInstructions *string `json:"special_instructions" validate:"omitempty,max=500"`
}

// FireItemsRequest selects line items to release to their stations
type FireItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" validate:"required,min=1"`
}

// ChargesRequest adjusts tip and discount on an order. Discount may be
// given as a fixed amount or a percentage of the subtotal, not both.
type ChargesRequest struct {
	TipAmount       *decimal.Decimal `json:"tip_amount"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}
