package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spicetable/pos-service/internal/models"
)

// TicketRepository handles KOT/BOT ticket data access
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `t.id, t.ticket_number, t.order_id, t.station_id, t.status,
	t.created_at, t.updated_at, t.completed_at`

const ticketItemColumns = `id, ticket_id, order_item_id, name, quantity, unit_price,
	special_instructions, status, started_at, ready_at, created_at, updated_at`

// GetByID retrieves a ticket with its items
func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `, o.order_number AS "order_number", s.name AS "station_name"
		FROM tickets t
		JOIN orders o ON t.order_id = o.id
		JOIN stations s ON t.station_id = s.id
		WHERE t.id = $1
	`

	var row struct {
		models.Ticket
		OrderNumber string `db:"order_number"`
		StationName string `db:"station_name"`
	}
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("ticket", id.String())
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	ticket := row.Ticket
	ticket.OrderNumber = row.OrderNumber
	ticket.StationName = row.StationName

	items, err := r.getTicketItems(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Items = items

	return &ticket, nil
}

// GetByItemID retrieves the ticket that owns the given ticket item
func (r *TicketRepository) GetByItemID(ctx context.Context, ticketItemID uuid.UUID) (*models.Ticket, error) {
	var ticketID uuid.UUID
	err := r.db.GetContext(ctx, &ticketID,
		`SELECT ticket_id FROM ticket_items WHERE id = $1`, ticketItemID)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("ticket_item", ticketItemID.String())
		}
		return nil, fmt.Errorf("failed to find ticket for item: %w", err)
	}
	return r.GetByID(ctx, ticketID)
}

func (r *TicketRepository) getTicketItems(ctx context.Context, ticketID uuid.UUID) ([]models.TicketItem, error) {
	var items []models.TicketItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+ticketItemColumns+` FROM ticket_items WHERE ticket_id = $1 ORDER BY created_at ASC`,
		ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket items: %w", err)
	}
	return items, nil
}

// ListOpenByStation retrieves non-terminal tickets for a station's
// display board, oldest first.
func (r *TicketRepository) ListOpenByStation(ctx context.Context, stationID uuid.UUID) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `, o.order_number AS "order_number", s.name AS "station_name"
		FROM tickets t
		JOIN orders o ON t.order_id = o.id
		JOIN stations s ON t.station_id = s.id
		WHERE t.station_id = $1 AND t.status NOT IN ($2, $3)
		ORDER BY t.created_at ASC
	`

	var rows []struct {
		models.Ticket
		OrderNumber string `db:"order_number"`
		StationName string `db:"station_name"`
	}
	err := r.db.SelectContext(ctx, &rows, query, stationID,
		models.TicketStatusDelivered, models.TicketStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list station tickets: %w", err)
	}

	tickets := make([]models.Ticket, 0, len(rows))
	for i := range rows {
		ticket := rows[i].Ticket
		ticket.OrderNumber = rows[i].OrderNumber
		ticket.StationName = rows[i].StationName
		items, err := r.getTicketItems(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		ticket.Items = items
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// SaveItemStatus persists a ticket item's new status and timestamps
// together with the ticket's refreshed derived status, in one
// transaction. When the change reflects back onto the originating
// order item, that write joins the same transaction.
func (r *TicketRepository) SaveItemStatus(ctx context.Context, item *models.TicketItem, ticket *models.Ticket, orderItemStatus *models.OrderItemStatus) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE ticket_items
		SET status = $1, started_at = $2, ready_at = $3, updated_at = NOW()
		WHERE id = $4`,
		item.Status, item.StartedAt, item.ReadyAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tickets SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`,
		ticket.Status, ticket.CompletedAt, ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	if orderItemStatus != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE order_items SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status NOT IN ($3, $4)`,
			*orderItemStatus, item.OrderItemID,
			models.OrderItemStatusDelivered, models.OrderItemStatusCancelled,
		)
		if err != nil {
			return fmt.Errorf("failed to update order item status: %w", err)
		}
	}

	return tx.Commit()
}

// SaveTicket persists a manual header override together with every
// item status it implies.
func (r *TicketRepository) SaveTicket(ctx context.Context, ticket *models.Ticket, orderItemStatus *models.OrderItemStatus) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE tickets SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`,
		ticket.Status, ticket.CompletedAt, ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	for i := range ticket.Items {
		item := &ticket.Items[i]
		_, err = tx.ExecContext(ctx, `
			UPDATE ticket_items
			SET status = $1, started_at = $2, ready_at = $3, updated_at = NOW()
			WHERE id = $4`,
			item.Status, item.StartedAt, item.ReadyAt, item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update ticket item: %w", err)
		}

		if orderItemStatus != nil && item.Status == models.TicketItemStatusDelivered {
			_, err = tx.ExecContext(ctx, `
				UPDATE order_items SET status = $1, updated_at = NOW()
				WHERE id = $2 AND status NOT IN ($3, $4)`,
				*orderItemStatus, item.OrderItemID,
				models.OrderItemStatusDelivered, models.OrderItemStatusCancelled,
			)
			if err != nil {
				return fmt.Errorf("failed to update order item status: %w", err)
			}
		}
	}

	return tx.Commit()
}
