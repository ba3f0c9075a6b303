package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/spicetable/pos-service/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	User     *UserRepository
	Menu     *MenuRepository
	Station  *StationRepository
	Order    *OrderRepository
	Ticket   *TicketRepository
	Turnover *TurnoverRepository
	Payment  *PaymentRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		User:     NewUserRepository(database.DB),
		Menu:     NewMenuRepository(database.DB),
		Station:  NewStationRepository(database.DB),
		Order:    NewOrderRepository(database.DB),
		Ticket:   NewTicketRepository(database.DB),
		Turnover: NewTurnoverRepository(database.DB),
		Payment:  NewPaymentRepository(database.DB),
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, the storage-level signal for a concurrent conflict.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// isNoRows reports whether err means the queried row does not exist
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
