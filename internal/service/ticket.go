package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/models"
)

// TicketStore is the persistence surface the ticket service depends on
type TicketStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	GetByItemID(ctx context.Context, ticketItemID uuid.UUID) (*models.Ticket, error)
	ListOpenByStation(ctx context.Context, stationID uuid.UUID) ([]models.Ticket, error)
	SaveItemStatus(ctx context.Context, item *models.TicketItem, ticket *models.Ticket, orderItemStatus *models.OrderItemStatus) error
	SaveTicket(ctx context.Context, ticket *models.Ticket, orderItemStatus *models.OrderItemStatus) error
}

// TicketService drives KOT/BOT preparation state on the kitchen and
// bar side. Ticket header status is always the derived function of
// item statuses; manual overrides may only promote, never contradict.
type TicketService struct {
	tickets  TicketStore
	notifier Notifier
}

// NewTicketService creates a new ticket service
func NewTicketService(tickets TicketStore, notifier Notifier) *TicketService {
	return &TicketService{tickets: tickets, notifier: notifier}
}

// GetTicket retrieves a ticket with its items
func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListOpenTickets lists a station's non-terminal tickets for its
// display board
func (s *TicketService) ListOpenTickets(ctx context.Context, stationID uuid.UUID) ([]models.Ticket, error) {
	return s.tickets.ListOpenByStation(ctx, stationID)
}

// UpdateItemStatus advances one ticket item. Transitions are
// forward-only; preparation timestamps are stamped on first entry to
// In Progress and Ready, and the parent ticket's derived status is
// refreshed in the same transaction. Progress reflects back onto the
// originating order item.
func (s *TicketService) UpdateItemStatus(ctx context.Context, ticketItemID uuid.UUID, newStatus models.TicketItemStatus) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByItemID(ctx, ticketItemID)
	if err != nil {
		return nil, err
	}

	var item *models.TicketItem
	for i := range ticket.Items {
		if ticket.Items[i].ID == ticketItemID {
			item = &ticket.Items[i]
			break
		}
	}
	if item == nil {
		return nil, models.NewNotFoundError("ticket_item", ticketItemID.String())
	}

	if !item.Status.CanTransitionTo(newStatus) {
		return nil, models.NewInvalidTransitionError("ticket_item", item.ID.String(), item.Status, newStatus)
	}

	now := time.Now()
	item.Status = newStatus
	if newStatus == models.TicketItemStatusInProgress && item.StartedAt == nil {
		item.StartedAt = &now
	}
	if newStatus == models.TicketItemStatusReady && item.ReadyAt == nil {
		item.ReadyAt = &now
	}

	ticket.Recalculate(now)

	if err := s.tickets.SaveItemStatus(ctx, item, ticket, orderItemReflection(newStatus)); err != nil {
		return nil, err
	}

	s.notifier.TicketUpdated(ticket)
	return ticket, nil
}

// UpdateTicketStatus is the manual header override, e.g. marking a
// whole ticket delivered at handoff. It must not contradict item-level
// state: delivering a ticket requires every non-cancelled item to be
// at least Ready (the remaining ready items are delivered with it);
// any other target must already match the derived status.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID uuid.UUID, newStatus models.TicketStatus) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	current := models.DeriveTicketStatus(ticket.Items)
	if newStatus == current {
		return ticket, nil
	}

	if newStatus != models.TicketStatusDelivered {
		return nil, models.NewInvalidStateError("ticket", ticket.ID.String(),
			"ticket status follows its items; only a delivered override is allowed")
	}

	now := time.Now()
	for i := range ticket.Items {
		item := &ticket.Items[i]
		switch item.Status {
		case models.TicketItemStatusCancelled, models.TicketItemStatusDelivered:
		case models.TicketItemStatusReady:
			item.Status = models.TicketItemStatusDelivered
		default:
			return nil, models.NewInvalidStateError("ticket", ticket.ID.String(),
				"cannot deliver a ticket while item "+item.Name+" is still "+item.Status.Display())
		}
	}

	ticket.Recalculate(now)

	delivered := models.OrderItemStatusDelivered
	if err := s.tickets.SaveTicket(ctx, ticket, &delivered); err != nil {
		return nil, err
	}

	s.notifier.TicketUpdated(ticket)
	return ticket, nil
}

// orderItemReflection maps a ticket item's preparation status onto the
// originating order item. Kitchen-side cancellation does not reflect:
// billing-relevant cancellation must go through the order service so
// totals are recomputed.
func orderItemReflection(status models.TicketItemStatus) *models.OrderItemStatus {
	var mapped models.OrderItemStatus
	switch status {
	case models.TicketItemStatusInProgress:
		mapped = models.OrderItemStatusCooking
	case models.TicketItemStatusReady:
		mapped = models.OrderItemStatusReady
	case models.TicketItemStatusDelivered:
		mapped = models.OrderItemStatusDelivered
	default:
		return nil
	}
	return &mapped
}
