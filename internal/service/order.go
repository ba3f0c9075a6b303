package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicetable/pos-service/internal/models"
)

// OrderStore is the persistence surface the order service depends on.
// Multi-row methods commit atomically.
type OrderStore interface {
	NextOrderNumber(ctx context.Context, orderType models.OrderType) (string, error)
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error)
	InsertItem(ctx context.Context, item *models.OrderItem, totals models.OrderTotals) error
	UpdateItem(ctx context.Context, item *models.OrderItem, totals models.OrderTotals) error
	CancelItem(ctx context.Context, orderID, itemID uuid.UUID, reason string, totals models.OrderTotals) error
	FireItems(ctx context.Context, orderID uuid.UUID, groups []models.FireGroup) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, completedAt *time.Time) error
	UpdateCharges(ctx context.Context, orderID uuid.UUID, totals models.OrderTotals) error
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) error
}

// MenuCatalog is the read-only menu lookup used for price snapshots
type MenuCatalog interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	GetModifierOption(ctx context.Context, id uuid.UUID) (*models.ModifierOption, error)
}

// StationResolver maps menu items to preparation stations
type StationResolver interface {
	Resolve(ctx context.Context, menuItemID uuid.UUID) (*models.Station, error)
	GetByName(ctx context.Context, name string) (*models.Station, error)
}

// PaymentLedger records and sums payments collected against orders
type PaymentLedger interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	CollectedTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

// TurnoverFinisher completes a dine-in table turnover once its order
// is paid and closed
type TurnoverFinisher interface {
	GetTurnover(ctx context.Context, id uuid.UUID) (*models.TableTurnover, error)
	FinishTurnover(ctx context.Context, id uuid.UUID) error
}

// OrderService owns the order aggregate: item mutation, firing,
// billing computation and completion.
type OrderService struct {
	orders    OrderStore
	menu      MenuCatalog
	stations  StationResolver
	payments  PaymentLedger
	turnovers TurnoverFinisher
	notifier  Notifier
	settings  Settings
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, menu MenuCatalog, stations StationResolver, payments PaymentLedger, turnovers TurnoverFinisher, notifier Notifier, settings Settings) *OrderService {
	return &OrderService{
		orders:    orders,
		menu:      menu,
		stations:  stations,
		payments:  payments,
		turnovers: turnovers,
		notifier:  notifier,
		settings:  settings,
	}
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders lists orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	return s.orders.List(ctx, status)
}

// CreateOrder opens a new order. Dine-in orders must reference an
// active table turnover; other types must not.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest, serverID *uuid.UUID) (*models.Order, error) {
	if !req.Type.IsValid() {
		return nil, models.NewValidationError("unknown order type %q", req.Type)
	}
	if req.Type.RequiresTable() && req.TurnoverID == nil {
		return nil, models.NewValidationError("%s orders require a table turnover", req.Type)
	}
	if !req.Type.RequiresTable() && req.TurnoverID != nil {
		return nil, models.NewValidationError("%s orders cannot reference a table turnover", req.Type)
	}

	if req.TurnoverID != nil {
		turnover, err := s.turnovers.GetTurnover(ctx, *req.TurnoverID)
		if err != nil {
			return nil, err
		}
		if turnover.Status.IsTerminal() {
			return nil, models.NewInvalidStateError("turnover", turnover.ID.String(), "turnover has already finished")
		}
	}

	number, err := s.orders.NextOrderNumber(ctx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		OrderNumber:         number,
		Type:                req.Type,
		Status:              models.OrderStatusOpen,
		TurnoverID:          req.TurnoverID,
		ServerID:            serverID,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		SpecialInstructions: req.SpecialInstructions,
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		TipAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(order)
	return order, nil
}

// AddItem appends a line item, snapshotting the current menu price
// plus modifier adjustments, and recomputes the order totals.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req models.AddItemRequest) (*models.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}

	menuItem, err := s.menu.GetItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, err
	}
	if !menuItem.Available {
		return nil, models.NewValidationError("menu item %q is not available", menuItem.Name)
	}

	unitPrice := menuItem.Price
	modifiers := make([]models.OrderItemModifier, 0, len(req.Modifiers))
	for _, mod := range req.Modifiers {
		option, err := s.menu.GetModifierOption(ctx, mod.OptionID)
		if err != nil {
			return nil, err
		}
		unitPrice = unitPrice.Add(option.PriceAdjustment)
		modifiers = append(modifiers, models.OrderItemModifier{
			ModifierOptionID: option.ID,
			Name:             option.Name,
			PriceAdjustment:  option.PriceAdjustment,
		})
	}

	item := &models.OrderItem{
		OrderID:             order.ID,
		MenuItemID:          menuItem.ID,
		Name:                menuItem.Name,
		Quantity:            req.Quantity,
		UnitPrice:           unitPrice,
		Subtotal:            models.LineSubtotal(req.Quantity, unitPrice),
		Status:              models.OrderItemStatusNew,
		Course:              req.Course,
		SpecialInstructions: req.SpecialInstructions,
		Modifiers:           modifiers,
	}

	order.Items = append(order.Items, *item)
	if err := order.Recalculate(s.settings.GSTRatePercent); err != nil {
		return nil, err
	}

	if err := s.orders.InsertItem(ctx, item, order.Totals()); err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(order)
	return item, nil
}

// UpdateItem edits a line item. Quantity is frozen once the item has
// been fired; instructions stay editable until the item is delivered.
func (s *OrderService) UpdateItem(ctx context.Context, itemID uuid.UUID, req models.UpdateItemRequest) (*models.OrderItem, error) {
	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}
	if item.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order_item", item.ID.String(), "item is "+item.Status.Display())
	}
	if item.IsFired() && req.Quantity != item.Quantity {
		return nil, models.NewInvalidStateError("order_item", item.ID.String(),
			"quantity is frozen once fired; cancel and re-add to reduce it")
	}

	item.Quantity = req.Quantity
	item.Subtotal = models.LineSubtotal(item.Quantity, item.UnitPrice)
	item.SpecialInstructions = req.SpecialInstructions

	replaceItem(order, item)
	if err := order.Recalculate(s.settings.GSTRatePercent); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateItem(ctx, item, order.Totals()); err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(order)
	return item, nil
}

// CancelItem soft-cancels a line item, removes its contribution from
// the order totals, and marks any ticket-item snapshots cancelled so
// the kitchen keeps its audit trail.
func (s *OrderService) CancelItem(ctx context.Context, itemID uuid.UUID, reason string) error {
	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	order, err := s.orders.GetByID(ctx, item.OrderID)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}
	if !item.Status.CanTransitionTo(models.OrderItemStatusCancelled) {
		return models.NewInvalidStateError("order_item", item.ID.String(), "item is "+item.Status.Display())
	}

	item.Status = models.OrderItemStatusCancelled
	item.CancelReason = &reason
	replaceItem(order, item)
	if err := order.Recalculate(s.settings.GSTRatePercent); err != nil {
		return err
	}

	if err := s.orders.CancelItem(ctx, order.ID, item.ID, reason, order.Totals()); err != nil {
		return err
	}

	s.notifier.OrderUpdated(order)
	return nil
}

// FireItems releases the selected New items to their stations,
// creating or appending one ticket per station. Items that are
// already fired (or cancelled) are skipped, so re-firing the same
// selection is a no-op.
func (s *OrderService) FireItems(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID) ([]models.Ticket, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}

	itemsByID := make(map[uuid.UUID]*models.OrderItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	groups := make(map[uuid.UUID]*models.FireGroup)
	var groupOrder []uuid.UUID
	for _, itemID := range itemIDs {
		item, ok := itemsByID[itemID]
		if !ok {
			return nil, models.NewNotFoundError("order_item", itemID.String())
		}
		if item.Status != models.OrderItemStatusNew {
			continue
		}

		station, err := s.resolveStation(ctx, item.MenuItemID)
		if err != nil {
			return nil, err
		}
		group, ok := groups[station.ID]
		if !ok {
			group = &models.FireGroup{Station: *station}
			groups[station.ID] = group
			groupOrder = append(groupOrder, station.ID)
		}
		group.Items = append(group.Items, *item)
	}

	if len(groups) == 0 {
		return nil, nil
	}

	fireGroups := make([]models.FireGroup, 0, len(groups))
	for _, stationID := range groupOrder {
		fireGroups = append(fireGroups, *groups[stationID])
	}

	tickets, err := s.orders.FireItems(ctx, order.ID, fireGroups)
	if err != nil {
		return nil, err
	}

	for i := range tickets {
		s.notifier.TicketCreated(&tickets[i])
	}
	return tickets, nil
}

// resolveStation applies the routing rules and falls back to the
// configured default station when a menu item has no assignment. The
// missing mapping is a data-quality warning, not a hard failure.
func (s *OrderService) resolveStation(ctx context.Context, menuItemID uuid.UUID) (*models.Station, error) {
	station, err := s.stations.Resolve(ctx, menuItemID)
	if err == nil {
		return station, nil
	}
	if !models.IsKind(err, models.KindConfiguration) {
		return nil, err
	}

	log.Printf("WARN: menu item %s has no station assignment, falling back to %q", menuItemID, s.settings.DefaultStation)
	station, fallbackErr := s.stations.GetByName(ctx, s.settings.DefaultStation)
	if fallbackErr != nil {
		return nil, models.NewConfigurationError(
			"menu item %s has no station assignment and default station %q does not exist",
			menuItemID, s.settings.DefaultStation)
	}
	return station, nil
}

// RecomputeTotals re-derives an order's money columns from its items
// and persists them
func (s *OrderService) RecomputeTotals(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Recalculate(s.settings.GSTRatePercent); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateCharges(ctx, order.ID, order.Totals()); err != nil {
		return nil, err
	}
	return order, nil
}

// SetCharges adjusts tip and discount, then recomputes totals.
// Discount may be a fixed amount or a percentage of the subtotal.
func (s *OrderService) SetCharges(ctx context.Context, orderID uuid.UUID, req models.ChargesRequest) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}
	if req.DiscountAmount != nil && req.DiscountPercent != nil {
		return nil, models.NewValidationError("provide a discount amount or a discount percent, not both")
	}

	if req.TipAmount != nil {
		if req.TipAmount.IsNegative() {
			return nil, models.NewValidationError("tip amount cannot be negative")
		}
		order.TipAmount = models.RoundMoney(*req.TipAmount)
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			return nil, models.NewValidationError("discount amount cannot be negative")
		}
		order.DiscountAmount = models.RoundMoney(*req.DiscountAmount)
	}
	if req.DiscountPercent != nil {
		if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, models.NewValidationError("discount percent must be between 0 and 100")
		}
		order.DiscountAmount = models.Percentage(order.Subtotal, *req.DiscountPercent)
	}

	if err := order.Recalculate(s.settings.GSTRatePercent); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateCharges(ctx, order.ID, order.Totals()); err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(order)
	return order, nil
}

// RecordPayment records a collected payment against an open order
func (s *OrderService) RecordPayment(ctx context.Context, orderID uuid.UUID, req models.PaymentRequest, collectedBy *uuid.UUID) (*models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "order is "+order.Status.Display())
	}
	if !req.Amount.IsPositive() {
		return nil, models.NewValidationError("payment amount must be positive")
	}

	payment := &models.Payment{
		OrderID:     order.ID,
		Method:      req.Method,
		Amount:      models.RoundMoney(req.Amount),
		Reference:   req.Reference,
		CollectedBy: collectedBy,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkReady marks an order ready for handoff once every non-cancelled
// item has at least reached the Ready stage
func (s *OrderService) MarkReady(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusReady) {
		return nil, models.NewInvalidTransitionError("order", order.ID.String(), order.Status, models.OrderStatusReady)
	}
	for i := range order.Items {
		switch order.Items[i].Status {
		case models.OrderItemStatusReady, models.OrderItemStatusDelivered, models.OrderItemStatusCancelled:
		default:
			return nil, models.NewInvalidStateError("order", order.ID.String(),
				fmt.Sprintf("item %q is still %s", order.Items[i].Name, order.Items[i].Status.Display()))
		}
	}

	order.Status = models.OrderStatusReady
	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, nil); err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(order)
	return order, nil
}

// CompleteOrder closes an order once every non-cancelled item is
// delivered and the balance is fully collected. Dine-in completion
// also finishes the table turnover.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusCompleted) {
		return nil, models.NewInvalidTransitionError("order", order.ID.String(), order.Status, models.OrderStatusCompleted)
	}
	if !order.AllItemsSettled() {
		return nil, models.NewInvalidStateError("order", order.ID.String(), "not all items are delivered")
	}

	collected, err := s.payments.CollectedTotal(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if collected.LessThan(order.TotalAmount) {
		outstanding := order.TotalAmount.Sub(collected)
		return nil, models.NewInvalidStateError("order", order.ID.String(),
			fmt.Sprintf("outstanding balance of %s", outstanding.StringFixed(2)))
	}

	now := time.Now()
	order.Status = models.OrderStatusCompleted
	order.CompletedAt = &now
	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, order.CompletedAt); err != nil {
		return nil, err
	}

	if order.Type == models.OrderTypeDineIn && order.TurnoverID != nil {
		if err := s.turnovers.FinishTurnover(ctx, *order.TurnoverID); err != nil {
			return nil, fmt.Errorf("order completed but turnover completion failed: %w", err)
		}
	}

	s.notifier.OrderUpdated(order)
	return order, nil
}

// CancelOrder cancels a non-terminal order together with its open
// items and tickets
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return models.NewInvalidTransitionError("order", order.ID.String(), order.Status, models.OrderStatusCancelled)
	}

	if err := s.orders.Cancel(ctx, order.ID, reason); err != nil {
		return err
	}

	order.Status = models.OrderStatusCancelled
	s.notifier.OrderUpdated(order)
	return nil
}

// ListPayments retrieves the payments collected against an order
func (s *OrderService) ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}

func replaceItem(order *models.Order, item *models.OrderItem) {
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i] = *item
			return
		}
	}
}
