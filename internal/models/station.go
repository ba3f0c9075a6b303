package models

import (
	"time"

	"github.com/google/uuid"
)

// StationType represents a station type. The type decides the ticket
// number prefix: KOT for food preparation, BOT for the bar.
type StationType string

const (
	StationTypeKitchen StationType = "kitchen"
	StationTypeBar     StationType = "bar"
	StationTypeOther   StationType = "other"
)

// TicketPrefix returns the ticket number prefix for the station class
func (t StationType) TicketPrefix() string {
	if t == StationTypeBar {
		return "BOT"
	}
	return "KOT"
}

// Station represents a preparation station
type Station struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Type      StationType `db:"type" json:"type"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// RoutingRule maps a menu item to a preparation station. When a menu
// item carries several rules, the lowest priority value is the primary
// station and wins.
type RoutingRule struct {
	ID         uuid.UUID `db:"id" json:"id"`
	MenuItemID uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	StationID  uuid.UUID `db:"station_id" json:"station_id"`
	Priority   int       `db:"priority" json:"priority"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Station *Station `db:"-" json:"station,omitempty"`
}

// StationRequest is used for station creation/update
type StationRequest struct {
	Name     string      `json:"name" validate:"required,min=1,max=100"`
	Type     StationType `json:"type" validate:"required,oneof=kitchen bar other"`
	IsActive bool        `json:"is_active"`
}

// RoutingRuleRequest is used for routing rule creation/update
type RoutingRuleRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	StationID  uuid.UUID `json:"station_id" validate:"required"`
	Priority   int       `json:"priority" validate:"gte=1"`
}
