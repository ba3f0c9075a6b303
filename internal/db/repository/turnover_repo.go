package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spicetable/pos-service/internal/models"
)

// TurnoverRepository handles table, reservation, waitlist and turnover
// data access
type TurnoverRepository struct {
	db *sqlx.DB
}

// NewTurnoverRepository creates a new turnover repository
func NewTurnoverRepository(db *sqlx.DB) *TurnoverRepository {
	return &TurnoverRepository{db: db}
}

const turnoverColumns = `tt.id, tt.table_id, tt.reservation_id, tt.waitlist_id, tt.server_id,
	tt.guest_name, tt.party_size, tt.status, tt.target_turn_minutes,
	tt.seated_at, tt.service_started_at, tt.completed_at, tt.created_at, tt.updated_at`

// GetTable retrieves a dining table by ID
func (r *TurnoverRepository) GetTable(ctx context.Context, tableID uuid.UUID) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.db.GetContext(ctx, &table, `
		SELECT id, number, name, capacity, status, is_active, created_at, updated_at
		FROM dining_tables WHERE id = $1`, tableID)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("table", tableID.String())
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return &table, nil
}

// ListTables retrieves all active dining tables ordered by number
func (r *TurnoverRepository) ListTables(ctx context.Context) ([]models.DiningTable, error) {
	var tables []models.DiningTable
	err := r.db.SelectContext(ctx, &tables, `
		SELECT id, number, name, capacity, status, is_active, created_at, updated_at
		FROM dining_tables WHERE is_active ORDER BY number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// SeatGuests inserts the turnover, marks the table occupied, and
// advances the sourcing reservation or waitlist entry to seated, all
// in one transaction. A concurrent seating of the same table fails
// with a conflict: the active-turnover check runs under a row lock on
// the table, and the partial unique index backs it up.
func (r *TurnoverRepository) SeatGuests(ctx context.Context, turnover *models.TableTurnover) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var table models.DiningTable
	err = tx.GetContext(ctx, &table, `
		SELECT id, number, name, capacity, status, is_active, created_at, updated_at
		FROM dining_tables WHERE id = $1 FOR UPDATE`, turnover.TableID)
	if err != nil {
		if isNoRows(err) {
			return models.NewNotFoundError("table", turnover.TableID.String())
		}
		return fmt.Errorf("failed to lock table: %w", err)
	}

	var activeCount int
	err = tx.GetContext(ctx, &activeCount, `
		SELECT COUNT(*) FROM table_turnovers
		WHERE table_id = $1 AND status NOT IN ($2, $3)`,
		turnover.TableID, models.TurnoverStatusCompleted, models.TurnoverStatusDeparted)
	if err != nil {
		return fmt.Errorf("failed to check active turnover: %w", err)
	}
	if activeCount > 0 {
		return models.NewConflictError("table", turnover.TableID.String(), "table already has an active turnover")
	}

	err = tx.GetContext(ctx, turnover, `
		INSERT INTO table_turnovers (table_id, reservation_id, waitlist_id, server_id,
		                             guest_name, party_size, status, target_turn_minutes, seated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, table_id, reservation_id, waitlist_id, server_id, guest_name, party_size,
		          status, target_turn_minutes, seated_at, service_started_at, completed_at,
		          created_at, updated_at`,
		turnover.TableID, turnover.ReservationID, turnover.WaitlistID, turnover.ServerID,
		turnover.GuestName, turnover.PartySize, turnover.Status, turnover.TargetTurnMinutes,
		turnover.SeatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("table", turnover.TableID.String(), "table already has an active turnover")
		}
		return fmt.Errorf("failed to insert turnover: %w", err)
	}
	turnover.TableNumber = table.Number

	_, err = tx.ExecContext(ctx, `
		UPDATE dining_tables SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.TableStatusOccupied, turnover.TableID)
	if err != nil {
		return fmt.Errorf("failed to mark table occupied: %w", err)
	}

	if turnover.ReservationID != nil {
		res, execErr := tx.ExecContext(ctx, `
			UPDATE reservations SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3`,
			models.ReservationStatusSeated, *turnover.ReservationID, models.ReservationStatusBooked)
		if execErr != nil {
			err = fmt.Errorf("failed to seat reservation: %w", execErr)
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			err = models.NewInvalidStateError("reservation", turnover.ReservationID.String(), "reservation is not open for seating")
			return err
		}
	}

	if turnover.WaitlistID != nil {
		res, execErr := tx.ExecContext(ctx, `
			UPDATE waitlist_entries SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status IN ($3, $4)`,
			models.WaitlistStatusSeated, *turnover.WaitlistID,
			models.WaitlistStatusWaiting, models.WaitlistStatusNotified)
		if execErr != nil {
			err = fmt.Errorf("failed to seat waitlist entry: %w", execErr)
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			err = models.NewInvalidStateError("waitlist_entry", turnover.WaitlistID.String(), "waitlist entry is not open for seating")
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a turnover with its table number
func (r *TurnoverRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TableTurnover, error) {
	query := `
		SELECT ` + turnoverColumns + `, dt.number AS "table_number"
		FROM table_turnovers tt
		JOIN dining_tables dt ON tt.table_id = dt.id
		WHERE tt.id = $1
	`

	var row struct {
		models.TableTurnover
		TableNumber int `db:"table_number"`
	}
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("turnover", id.String())
		}
		return nil, fmt.Errorf("failed to get turnover: %w", err)
	}

	turnover := row.TableTurnover
	turnover.TableNumber = row.TableNumber
	return &turnover, nil
}

// ListActive retrieves all non-terminal turnovers, oldest seating first
func (r *TurnoverRepository) ListActive(ctx context.Context) ([]models.TableTurnover, error) {
	query := `
		SELECT ` + turnoverColumns + `, dt.number AS "table_number"
		FROM table_turnovers tt
		JOIN dining_tables dt ON tt.table_id = dt.id
		WHERE tt.status NOT IN ($1, $2)
		ORDER BY tt.seated_at ASC
	`

	var rows []struct {
		models.TableTurnover
		TableNumber int `db:"table_number"`
	}
	err := r.db.SelectContext(ctx, &rows, query,
		models.TurnoverStatusCompleted, models.TurnoverStatusDeparted)
	if err != nil {
		return nil, fmt.Errorf("failed to list active turnovers: %w", err)
	}

	turnovers := make([]models.TableTurnover, 0, len(rows))
	for i := range rows {
		turnover := rows[i].TableTurnover
		turnover.TableNumber = rows[i].TableNumber
		turnovers = append(turnovers, turnover)
	}
	return turnovers, nil
}

// UpdateStatus persists a turnover's advanced status and stage timestamps
func (r *TurnoverRepository) UpdateStatus(ctx context.Context, turnover *models.TableTurnover) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE table_turnovers
		SET status = $1, service_started_at = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $4`,
		turnover.Status, turnover.ServiceStartedAt, turnover.CompletedAt, turnover.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update turnover status: %w", err)
	}
	return nil
}

// Complete persists a turnover's terminal status and stage timestamps
// and marks its table dirty for bussing, in one transaction. Completed
// and Departed are distinct terminal stages, so the caller's status is
// written as-is.
func (r *TurnoverRepository) Complete(ctx context.Context, turnover *models.TableTurnover) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var tableID uuid.UUID
	err = tx.GetContext(ctx, &tableID, `
		UPDATE table_turnovers
		SET status = $1, service_started_at = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING table_id`,
		turnover.Status, turnover.ServiceStartedAt, turnover.CompletedAt, turnover.ID)
	if err != nil {
		if isNoRows(err) {
			return models.NewNotFoundError("turnover", turnover.ID.String())
		}
		return fmt.Errorf("failed to complete turnover: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dining_tables SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.TableStatusDirty, tableID)
	if err != nil {
		return fmt.Errorf("failed to mark table dirty: %w", err)
	}

	return tx.Commit()
}

// ClearTable marks a bussed table available again
func (r *TurnoverRepository) ClearTable(ctx context.Context, tableID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dining_tables SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		models.TableStatusAvailable, tableID, models.TableStatusDirty)
	if err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.NewInvalidStateError("table", tableID.String(), "table is not waiting to be cleared")
	}
	return nil
}
