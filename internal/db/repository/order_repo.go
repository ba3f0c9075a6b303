package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spicetable/pos-service/internal/models"
)

// OrderRepository handles order data access
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_number, order_type, status, turnover_id, server_id,
	customer_name, customer_phone, special_instructions,
	subtotal, tax_amount, tip_amount, discount_amount, total_amount,
	created_at, updated_at, completed_at`

const orderItemColumns = `id, order_id, menu_item_id, name, quantity, unit_price, subtotal,
	status, course, special_instructions, cancel_reason, fired_at, created_at, updated_at`

// NextOrderNumber generates the next human-readable order number for
// the given order type, e.g. DIN-20250828-0042.
func (r *OrderRepository) NextOrderNumber(ctx context.Context, orderType models.OrderType) (string, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, "SELECT nextval('order_number_seq')"); err != nil {
		return "", fmt.Errorf("failed to get next order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", orderType.NumberPrefix(), time.Now().Format("20060102"), seq), nil
}

// Create inserts a new order row. Items are added separately.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, order_type, status, turnover_id, server_id,
		                    customer_name, customer_phone, special_instructions,
		                    subtotal, tax_amount, tip_amount, discount_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + orderColumns

	err := r.db.GetContext(ctx, order, query,
		order.OrderNumber, order.Type, order.Status, order.TurnoverID, order.ServerID,
		order.CustomerName, order.CustomerPhone, order.SpecialInstructions,
		order.Subtotal, order.TaxAmount, order.TipAmount, order.DiscountAmount, order.TotalAmount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("order", order.OrderNumber, "order number already exists")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items and modifiers
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("order", id.String())
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// getOrderItems retrieves a line-ordered item list for an order
func (r *OrderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`

	var items []models.OrderItem
	if err := r.db.SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	for i := range items {
		modifiers, err := r.getItemModifiers(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Modifiers = modifiers
	}

	return items, nil
}

func (r *OrderRepository) getItemModifiers(ctx context.Context, orderItemID uuid.UUID) ([]models.OrderItemModifier, error) {
	query := `
		SELECT id, order_item_id, modifier_option_id, name, price_adjustment, created_at
		FROM order_item_modifiers
		WHERE order_item_id = $1
		ORDER BY created_at ASC
	`

	var modifiers []models.OrderItemModifier
	if err := r.db.SelectContext(ctx, &modifiers, query, orderItemID); err != nil {
		return nil, fmt.Errorf("failed to get order item modifiers: %w", err)
	}
	return modifiers, nil
}

// GetItem retrieves a single order item by ID
func (r *OrderRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.GetContext(ctx, &item, `SELECT `+orderItemColumns+` FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("order_item", itemID.String())
		}
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}
	return &item, nil
}

// List retrieves orders, optionally filtered by status, newest first
func (r *OrderRepository) List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// InsertItem adds a line item (with its modifiers) and the recomputed
// order totals in a single transaction.
func (r *OrderRepository) InsertItem(ctx context.Context, item *models.OrderItem, totals models.OrderTotals) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, subtotal,
		                         status, course, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderItemColumns

	modifiers := item.Modifiers
	err = tx.GetContext(ctx, item, query,
		item.OrderID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.Subtotal,
		item.Status, item.Course, item.SpecialInstructions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	for i := range modifiers {
		modifiers[i].OrderItemID = item.ID
		err = tx.GetContext(ctx, &modifiers[i], `
			INSERT INTO order_item_modifiers (order_item_id, modifier_option_id, name, price_adjustment)
			VALUES ($1, $2, $3, $4)
			RETURNING id, order_item_id, modifier_option_id, name, price_adjustment, created_at`,
			modifiers[i].OrderItemID, modifiers[i].ModifierOptionID, modifiers[i].Name, modifiers[i].PriceAdjustment,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item modifier: %w", err)
		}
	}
	item.Modifiers = modifiers

	if err = updateOrderTotalsTx(ctx, tx, item.OrderID, totals); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateItem persists an edited line item together with the recomputed
// order totals.
func (r *OrderRepository) UpdateItem(ctx context.Context, item *models.OrderItem, totals models.OrderTotals) (err error) {
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
		UPDATE order_items
		SET quantity = $1, subtotal = $2, special_instructions = $3, updated_at = NOW()
		WHERE id = $4`,
		item.Quantity, item.Subtotal, item.SpecialInstructions, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}

	if err = updateOrderTotalsTx(ctx, tx, item.OrderID, totals); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelItem marks an order item cancelled, cancels its ticket-item
// snapshots (the kitchen copy is kept for the audit trail), refreshes
// the affected tickets' derived statuses, and writes the recomputed
// order totals. One transaction.
func (r *OrderRepository) CancelItem(ctx context.Context, orderID, itemID uuid.UUID, reason string, totals models.OrderTotals) (err error) {
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
		UPDATE order_items
		SET status = $1, cancel_reason = $2, updated_at = NOW()
		WHERE id = $3`,
		models.OrderItemStatusCancelled, reason, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order item: %w", err)
	}

	var ticketIDs []uuid.UUID
	err = tx.SelectContext(ctx, &ticketIDs, `
		UPDATE ticket_items
		SET status = $1, updated_at = NOW()
		WHERE order_item_id = $2 AND status NOT IN ($3, $4)
		RETURNING ticket_id`,
		models.TicketItemStatusCancelled, itemID,
		models.TicketItemStatusDelivered, models.TicketItemStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel ticket items: %w", err)
	}

	seen := make(map[uuid.UUID]bool)
	for _, ticketID := range ticketIDs {
		if seen[ticketID] {
			continue
		}
		seen[ticketID] = true
		if err = refreshTicketStatusTx(ctx, tx, ticketID); err != nil {
			return err
		}
	}

	if err = updateOrderTotalsTx(ctx, tx, orderID, totals); err != nil {
		return err
	}

	return tx.Commit()
}

// FireItems snapshots the grouped items into one ticket per station
// (appending to an open ticket when the order already has one for that
// station), advances the order items to fired, and returns the
// affected tickets. One transaction: either every station group
// commits or none does.
func (r *OrderRepository) FireItems(ctx context.Context, orderID uuid.UUID, groups []models.FireGroup) (tickets []models.Ticket, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()

	for _, group := range groups {
		var ticket models.Ticket
		err = tx.GetContext(ctx, &ticket, `
			SELECT id, ticket_number, order_id, station_id, status, created_at, updated_at, completed_at
			FROM tickets
			WHERE order_id = $1 AND station_id = $2 AND status NOT IN ($3, $4)
			FOR UPDATE`,
			orderID, group.Station.ID, models.TicketStatusDelivered, models.TicketStatusCancelled,
		)
		if err != nil {
			if !isNoRows(err) {
				return nil, fmt.Errorf("failed to find open ticket: %w", err)
			}
			var seq int64
			if err = tx.GetContext(ctx, &seq, "SELECT nextval('ticket_number_seq')"); err != nil {
				return nil, fmt.Errorf("failed to get next ticket number: %w", err)
			}
			number := fmt.Sprintf("%s-%04d", group.Station.Type.TicketPrefix(), seq)
			err = tx.GetContext(ctx, &ticket, `
				INSERT INTO tickets (ticket_number, order_id, station_id, status)
				VALUES ($1, $2, $3, $4)
				RETURNING id, ticket_number, order_id, station_id, status, created_at, updated_at, completed_at`,
				number, orderID, group.Station.ID, models.TicketStatusNew,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create ticket: %w", err)
			}
		}

		for _, item := range group.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO ticket_items (ticket_id, order_item_id, name, quantity, unit_price,
				                          special_instructions, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				ticket.ID, item.ID, item.Name, item.Quantity, item.UnitPrice,
				item.SpecialInstructions, models.TicketItemStatusNew,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to insert ticket item: %w", err)
			}

			res, execErr := tx.ExecContext(ctx, `
				UPDATE order_items
				SET status = $1, fired_at = $2, updated_at = NOW()
				WHERE id = $3 AND status = $4`,
				models.OrderItemStatusFired, now, item.ID, models.OrderItemStatusNew,
			)
			if execErr != nil {
				err = fmt.Errorf("failed to fire order item: %w", execErr)
				return nil, err
			}
			affected, _ := res.RowsAffected()
			if affected == 0 {
				err = models.NewConflictError("order_item", item.ID.String(), "item was fired concurrently")
				return nil, err
			}
		}

		if err = refreshTicketStatusTx(ctx, tx, ticket.ID); err != nil {
			return nil, err
		}

		var items []models.TicketItem
		err = tx.SelectContext(ctx, &items, `
			SELECT id, ticket_id, order_item_id, name, quantity, unit_price, special_instructions,
			       status, started_at, ready_at, created_at, updated_at
			FROM ticket_items WHERE ticket_id = $1 ORDER BY created_at ASC`, ticket.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket items: %w", err)
		}
		ticket.Items = items
		ticket.Status = models.DeriveTicketStatus(items)
		ticket.StationName = group.Station.Name
		tickets = append(tickets, ticket)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fire: %w", err)
	}
	return tickets, nil
}

// UpdateStatus moves an order to a new status
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, completedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`,
		status, completedAt, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdateCharges persists recomputed order totals
func (r *OrderRepository) UpdateCharges(ctx context.Context, orderID uuid.UUID, totals models.OrderTotals) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET subtotal = $1, tax_amount = $2, tip_amount = $3, discount_amount = $4,
		    total_amount = $5, updated_at = NOW()
		WHERE id = $6`,
		totals.Subtotal, totals.TaxAmount, totals.TipAmount, totals.DiscountAmount,
		totals.TotalAmount, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order charges: %w", err)
	}
	return nil
}

// Cancel cancels an order, its non-terminal items, and its open
// tickets in one transaction.
func (r *OrderRepository) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (err error) {
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
		UPDATE orders SET status = $1, completed_at = NOW(), updated_at = NOW() WHERE id = $2`,
		models.OrderStatusCancelled, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE order_items
		SET status = $1, cancel_reason = $2, updated_at = NOW()
		WHERE order_id = $3 AND status NOT IN ($4, $5)`,
		models.OrderItemStatusCancelled, reason, orderID,
		models.OrderItemStatusDelivered, models.OrderItemStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order items: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ticket_items ti
		SET status = $1, updated_at = NOW()
		FROM tickets t
		WHERE ti.ticket_id = t.id AND t.order_id = $2 AND ti.status NOT IN ($3, $4)`,
		models.TicketItemStatusCancelled, orderID,
		models.TicketItemStatusDelivered, models.TicketItemStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel ticket items: %w", err)
	}

	var ticketIDs []uuid.UUID
	err = tx.SelectContext(ctx, &ticketIDs, `
		SELECT id FROM tickets WHERE order_id = $1 AND status NOT IN ($2, $3)`,
		orderID, models.TicketStatusDelivered, models.TicketStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to list open tickets: %w", err)
	}
	for _, ticketID := range ticketIDs {
		if err = refreshTicketStatusTx(ctx, tx, ticketID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// updateOrderTotalsTx writes the money columns inside an open transaction
func updateOrderTotalsTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, totals models.OrderTotals) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET subtotal = $1, tax_amount = $2, tip_amount = $3, discount_amount = $4,
		    total_amount = $5, updated_at = NOW()
		WHERE id = $6`,
		totals.Subtotal, totals.TaxAmount, totals.TipAmount, totals.DiscountAmount,
		totals.TotalAmount, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return nil
}

// refreshTicketStatusTx recomputes a ticket's derived status from its
// items and stamps completion when it turns terminal.
func refreshTicketStatusTx(ctx context.Context, tx *sqlx.Tx, ticketID uuid.UUID) error {
	var items []models.TicketItem
	err := tx.SelectContext(ctx, &items, `
		SELECT id, ticket_id, order_item_id, name, quantity, unit_price, special_instructions,
		       status, started_at, ready_at, created_at, updated_at
		FROM ticket_items WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return fmt.Errorf("failed to load ticket items: %w", err)
	}

	status := models.DeriveTicketStatus(items)
	if status.IsTerminal() {
		_, err = tx.ExecContext(ctx, `
			UPDATE tickets
			SET status = $1, completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
			WHERE id = $2`, status, ticketID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2`, status, ticketID)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh ticket status: %w", err)
	}
	return nil
}
