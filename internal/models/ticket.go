package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus represents the status of a station ticket. It is
// always a pure function of the ticket's item statuses, see
// DeriveTicketStatus.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusReady      TicketStatus = "ready"
	TicketStatusDelivered  TicketStatus = "delivered"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// Display returns the user-facing label for the status
func (s TicketStatus) Display() string {
	switch s {
	case TicketStatusNew:
		return "New"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusReady:
		return "Ready"
	case TicketStatusDelivered:
		return "Delivered"
	case TicketStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// IsTerminal reports whether the ticket is finished
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusDelivered || s == TicketStatusCancelled
}

// TicketItemStatus represents the preparation status of one ticket item
type TicketItemStatus string

const (
	TicketItemStatusNew        TicketItemStatus = "new"
	TicketItemStatusInProgress TicketItemStatus = "in_progress"
	TicketItemStatusReady      TicketItemStatus = "ready"
	TicketItemStatusDelivered  TicketItemStatus = "delivered"
	TicketItemStatusCancelled  TicketItemStatus = "cancelled"
)

var ticketItemStatusRank = map[TicketItemStatus]int{
	TicketItemStatusNew:        0,
	TicketItemStatusInProgress: 1,
	TicketItemStatusReady:      2,
	TicketItemStatusDelivered:  3,
}

// String returns the string representation of TicketItemStatus
func (s TicketItemStatus) String() string {
	return string(s)
}

// Display returns the user-facing label for the status
func (s TicketItemStatus) Display() string {
	switch s {
	case TicketItemStatusNew:
		return "New"
	case TicketItemStatusInProgress:
		return "In Progress"
	case TicketItemStatusReady:
		return "Ready"
	case TicketItemStatusDelivered:
		return "Delivered"
	case TicketItemStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// IsTerminal reports whether the item can no longer change status
func (s TicketItemStatus) IsTerminal() bool {
	return s == TicketItemStatusDelivered || s == TicketItemStatusCancelled
}

// CanTransitionTo checks if the item status can move to the target.
// Forward-only: New → In Progress → Ready → Delivered, no skipping,
// with Cancelled reachable from any non-terminal status.
func (s TicketItemStatus) CanTransitionTo(target TicketItemStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == TicketItemStatusCancelled {
		return true
	}
	from, ok := ticketItemStatusRank[s]
	if !ok {
		return false
	}
	to, ok := ticketItemStatusRank[target]
	if !ok {
		return false
	}
	return to == from+1
}

// Ticket represents a KOT/BOT preparation ticket routed to a station.
// Items are snapshots of order items at fire time; later order edits
// do not touch them.
type Ticket struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	TicketNumber string       `db:"ticket_number" json:"ticket_number"`
	OrderID      uuid.UUID    `db:"order_id" json:"order_id"`
	StationID    uuid.UUID    `db:"station_id" json:"station_id"`
	Status       TicketStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	CompletedAt  *time.Time   `db:"completed_at" json:"completed_at"`

	// Not stored directly in the database
	Items       []TicketItem `db:"-" json:"items,omitempty"`
	OrderNumber string       `db:"-" json:"order_number,omitempty"`
	StationName string       `db:"-" json:"station_name,omitempty"`
}

// TicketItem is a fire-time snapshot of one order item for a station
type TicketItem struct {
	ID                  uuid.UUID        `db:"id" json:"id"`
	TicketID            uuid.UUID        `db:"ticket_id" json:"ticket_id"`
	OrderItemID         uuid.UUID        `db:"order_item_id" json:"order_item_id"`
	Name                string           `db:"name" json:"name"`
	Quantity            int              `db:"quantity" json:"quantity"`
	UnitPrice           decimal.Decimal  `db:"unit_price" json:"unit_price"`
	SpecialInstructions *string          `db:"special_instructions" json:"special_instructions"`
	Status              TicketItemStatus `db:"status" json:"status"`
	StartedAt           *time.Time       `db:"started_at" json:"started_at"`
	ReadyAt             *time.Time       `db:"ready_at" json:"ready_at"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// DeriveTicketStatus computes a ticket's status from its items:
// Cancelled when every item is cancelled; otherwise, over the
// non-cancelled items, New while any is still new, In Progress while
// the least-advanced is in progress, Ready when all are at least
// ready, Delivered only when all are delivered.
func DeriveTicketStatus(items []TicketItem) TicketStatus {
	if len(items) == 0 {
		return TicketStatusNew
	}

	minRank := -1
	active := 0
	for i := range items {
		if items[i].Status == TicketItemStatusCancelled {
			continue
		}
		active++
		rank := ticketItemStatusRank[items[i].Status]
		if minRank == -1 || rank < minRank {
			minRank = rank
		}
	}
	if active == 0 {
		return TicketStatusCancelled
	}

	switch minRank {
	case 0:
		return TicketStatusNew
	case 1:
		return TicketStatusInProgress
	case 2:
		return TicketStatusReady
	default:
		return TicketStatusDelivered
	}
}

// Recalculate refreshes the ticket's derived status and completion
// timestamp from its items
func (t *Ticket) Recalculate(now time.Time) {
	status := DeriveTicketStatus(t.Items)
	if status != t.Status {
		t.Status = status
		if status.IsTerminal() && t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	}
}

// UpdateTicketItemRequest changes the preparation status of one ticket item
type UpdateTicketItemRequest struct {
	Status TicketItemStatus `json:"status" validate:"required,oneof=new in_progress ready delivered cancelled"`
}

// UpdateTicketRequest is a manual override of the ticket header status
type UpdateTicketRequest struct {
	Status TicketStatus `json:"status" validate:"required,oneof=new in_progress ready delivered cancelled"`
}
