package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnoverStatus represents the stage of a seated-to-departed dining cycle
type TurnoverStatus string

const (
	TurnoverStatusSeated         TurnoverStatus = "seated"
	TurnoverStatusInService      TurnoverStatus = "in_service"
	TurnoverStatusCheckRequested TurnoverStatus = "check_requested"
	TurnoverStatusPaid           TurnoverStatus = "paid"
	TurnoverStatusCompleted      TurnoverStatus = "completed"
	TurnoverStatusDeparted       TurnoverStatus = "departed"
)

var turnoverStatusRank = map[TurnoverStatus]int{
	TurnoverStatusSeated:         0,
	TurnoverStatusInService:      1,
	TurnoverStatusCheckRequested: 2,
	TurnoverStatusPaid:           3,
	TurnoverStatusCompleted:      4,
	TurnoverStatusDeparted:       5,
}

// String returns the string representation of TurnoverStatus
func (s TurnoverStatus) String() string {
	return string(s)
}

// Display returns the user-facing label for the status
func (s TurnoverStatus) Display() string {
	switch s {
	case TurnoverStatusSeated:
		return "Seated"
	case TurnoverStatusInService:
		return "In Service"
	case TurnoverStatusCheckRequested:
		return "Check Requested"
	case TurnoverStatusPaid:
		return "Paid"
	case TurnoverStatusCompleted:
		return "Completed"
	case TurnoverStatusDeparted:
		return "Departed"
	}
	return "Unknown"
}

// IsTerminal reports whether the turnover has finished
func (s TurnoverStatus) IsTerminal() bool {
	return s == TurnoverStatusCompleted || s == TurnoverStatusDeparted
}

// CanTransitionTo checks if the status can move to the target. Forward
// jumps are allowed, backward moves never; Completed and Departed are
// only reachable once the party has paid.
func (s TurnoverStatus) CanTransitionTo(target TurnoverStatus) bool {
	from, ok := turnoverStatusRank[s]
	if !ok {
		return false
	}
	to, ok := turnoverStatusRank[target]
	if !ok {
		return false
	}
	if to <= from {
		return false
	}
	if target.IsTerminal() && s != TurnoverStatusPaid && s != TurnoverStatusCompleted {
		return false
	}
	return true
}

// TableStatus represents the floor state of a dining table
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusDirty     TableStatus = "dirty"
)

// DiningTable represents a physical table on the floor
type DiningTable struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Number    int         `db:"number" json:"number"`
	Name      *string     `db:"name" json:"name"`
	Capacity  int         `db:"capacity" json:"capacity"`
	Status    TableStatus `db:"status" json:"status"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// ReservationStatus represents the state of a reservation
type ReservationStatus string

const (
	ReservationStatusBooked    ReservationStatus = "booked"
	ReservationStatusSeated    ReservationStatus = "seated"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// Reservation represents a booked party
type Reservation struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	GuestName   string            `db:"guest_name" json:"guest_name"`
	GuestPhone  *string           `db:"guest_phone" json:"guest_phone"`
	PartySize   int               `db:"party_size" json:"party_size"`
	ReservedFor time.Time         `db:"reserved_for" json:"reserved_for"`
	TableID     *uuid.UUID        `db:"table_id" json:"table_id"`
	Status      ReservationStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// WaitlistStatus represents the state of a walk-in waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusWaiting  WaitlistStatus = "waiting"
	WaitlistStatusNotified WaitlistStatus = "notified"
	WaitlistStatusSeated   WaitlistStatus = "seated"
	WaitlistStatusLeft     WaitlistStatus = "left"
)

// WaitlistEntry represents a walk-in party waiting for a table
type WaitlistEntry struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	GuestName  string         `db:"guest_name" json:"guest_name"`
	GuestPhone *string        `db:"guest_phone" json:"guest_phone"`
	PartySize  int            `db:"party_size" json:"party_size"`
	Status     WaitlistStatus `db:"status" json:"status"`
	JoinedAt   time.Time      `db:"joined_at" json:"joined_at"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// TableTurnover represents one seated-to-departed cycle of a party
// occupying a table. At most one non-terminal turnover may exist per
// table; the storage layer enforces this with a partial unique index.
type TableTurnover struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	TableID           uuid.UUID      `db:"table_id" json:"table_id"`
	ReservationID     *uuid.UUID     `db:"reservation_id" json:"reservation_id"`
	WaitlistID        *uuid.UUID     `db:"waitlist_id" json:"waitlist_id"`
	ServerID          *uuid.UUID     `db:"server_id" json:"server_id"`
	GuestName         string         `db:"guest_name" json:"guest_name"`
	PartySize         int            `db:"party_size" json:"party_size"`
	Status            TurnoverStatus `db:"status" json:"status"`
	TargetTurnMinutes int            `db:"target_turn_minutes" json:"target_turn_minutes"`
	SeatedAt          time.Time      `db:"seated_at" json:"seated_at"`
	ServiceStartedAt  *time.Time     `db:"service_started_at" json:"service_started_at"`
	CompletedAt       *time.Time     `db:"completed_at" json:"completed_at"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	TableNumber int `db:"-" json:"table_number,omitempty"`
}

// Duration returns the elapsed minutes since the party was seated
func (t *TableTurnover) Duration(now time.Time) int {
	return int(now.Sub(t.SeatedAt).Minutes())
}

// IsOverTarget reports whether the turnover has exceeded its target
// turn time. Projection only, never stored.
func (t *TableTurnover) IsOverTarget(now time.Time) bool {
	if t.TargetTurnMinutes <= 0 {
		return false
	}
	return t.Duration(now) > t.TargetTurnMinutes
}

// ActiveTurnover is a floor-view projection of an in-progress
// turnover with its elapsed time computed at read time
type ActiveTurnover struct {
	TableTurnover
	ElapsedMinutes int  `json:"elapsed_minutes"`
	OverTarget     bool `json:"over_target"`
}

// SeatGuestsRequest seats a party at a table, optionally sourced from
// a reservation or waitlist entry
type SeatGuestsRequest struct {
	TableID           uuid.UUID  `json:"table_id" validate:"required"`
	GuestName         string     `json:"guest_name" validate:"required,min=1,max=100"`
	PartySize         int        `json:"party_size" validate:"required,min=1"`
	ServerID          *uuid.UUID `json:"server_id"`
	ReservationID     *uuid.UUID `json:"reservation_id"`
	WaitlistID        *uuid.UUID `json:"waitlist_id"`
	TargetTurnMinutes int        `json:"target_turn_minutes" validate:"omitempty,min=1"`
}

// AdvanceTurnoverRequest moves a turnover to a later status
type AdvanceTurnoverRequest struct {
	Status TurnoverStatus `json:"status" validate:"required,oneof=seated in_service check_requested paid completed departed"`
}
