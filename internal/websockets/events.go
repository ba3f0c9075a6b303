package websockets

import (
	"encoding/json"
	"log"

	"github.com/spicetable/pos-service/internal/models"
)

// EventPublisher pushes domain state changes into the hub. Order and
// turnover events fan out to every client; ticket events go to the
// subscribers of the ticket's station so a KDS only sees its own work.
type EventPublisher struct {
	hub *Hub
}

// NewEventPublisher creates an event publisher backed by the hub
func NewEventPublisher(hub *Hub) *EventPublisher {
	return &EventPublisher{hub: hub}
}

// OrderUpdated broadcasts an order state change
func (p *EventPublisher) OrderUpdated(order *models.Order) {
	p.broadcast(TypeOrderUpdated, order, "")
}

// TicketCreated notifies the ticket's station of new work
func (p *EventPublisher) TicketCreated(ticket *models.Ticket) {
	p.broadcast(TypeTicketCreated, ticket, ticket.StationID.String())
}

// TicketUpdated notifies the ticket's station of a status change
func (p *EventPublisher) TicketUpdated(ticket *models.Ticket) {
	p.broadcast(TypeTicketUpdated, ticket, ticket.StationID.String())
}

// TurnoverUpdated broadcasts a floor state change
func (p *EventPublisher) TurnoverUpdated(turnover *models.TableTurnover) {
	p.broadcast(TypeTurnoverUpdated, turnover, "")
}

func (p *EventPublisher) broadcast(messageType MessageType, payload interface{}, stationID string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", messageType, err)
		return
	}

	message, err := json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		StationID: stationID,
	})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	if stationID != "" {
		p.hub.BroadcastToStation(stationID, message)
		return
	}
	p.hub.BroadcastMessage(message)
}
