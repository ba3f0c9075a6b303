package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spicetable/pos-service/internal/models"
)

func ticketItems(statuses ...models.TicketItemStatus) []models.TicketItem {
	items := make([]models.TicketItem, len(statuses))
	for i, s := range statuses {
		items[i] = models.TicketItem{Status: s}
	}
	return items
}

func TestDeriveTicketStatus(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.TicketItem
		expected models.TicketStatus
	}{
		{"no items", nil, models.TicketStatusNew},
		{"all new", ticketItems(models.TicketItemStatusNew, models.TicketItemStatusNew), models.TicketStatusNew},
		{"one started", ticketItems(models.TicketItemStatusNew, models.TicketItemStatusInProgress), models.TicketStatusNew},
		{"least advanced in progress", ticketItems(models.TicketItemStatusInProgress, models.TicketItemStatusReady), models.TicketStatusInProgress},
		{"all ready", ticketItems(models.TicketItemStatusReady, models.TicketItemStatusReady), models.TicketStatusReady},
		{"ready and delivered", ticketItems(models.TicketItemStatusReady, models.TicketItemStatusDelivered), models.TicketStatusReady},
		{"all delivered", ticketItems(models.TicketItemStatusDelivered, models.TicketItemStatusDelivered), models.TicketStatusDelivered},
		{"cancelled items ignored", ticketItems(models.TicketItemStatusCancelled, models.TicketItemStatusReady), models.TicketStatusReady},
		{"delivered plus cancelled", ticketItems(models.TicketItemStatusDelivered, models.TicketItemStatusCancelled), models.TicketStatusDelivered},
		{"all cancelled", ticketItems(models.TicketItemStatusCancelled, models.TicketItemStatusCancelled), models.TicketStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.DeriveTicketStatus(tt.items))
		})
	}
}

func TestTicketItemStatusTransitions(t *testing.T) {
	assert.True(t, models.TicketItemStatusNew.CanTransitionTo(models.TicketItemStatusInProgress))
	assert.True(t, models.TicketItemStatusInProgress.CanTransitionTo(models.TicketItemStatusReady))
	assert.True(t, models.TicketItemStatusReady.CanTransitionTo(models.TicketItemStatusDelivered))
	assert.True(t, models.TicketItemStatusNew.CanTransitionTo(models.TicketItemStatusCancelled))

	assert.False(t, models.TicketItemStatusNew.CanTransitionTo(models.TicketItemStatusReady), "no stage skipping")
	assert.False(t, models.TicketItemStatusReady.CanTransitionTo(models.TicketItemStatusInProgress), "no backward moves")
	assert.False(t, models.TicketItemStatusDelivered.CanTransitionTo(models.TicketItemStatusCancelled))
	assert.False(t, models.TicketItemStatusCancelled.CanTransitionTo(models.TicketItemStatusInProgress))
}

func TestTicketRecalculateStampsCompletion(t *testing.T) {
	now := time.Now()
	ticket := &models.Ticket{
		Status: models.TicketStatusReady,
		Items:  ticketItems(models.TicketItemStatusDelivered, models.TicketItemStatusDelivered),
	}

	ticket.Recalculate(now)

	assert.Equal(t, models.TicketStatusDelivered, ticket.Status)
	assert.NotNil(t, ticket.CompletedAt)
	assert.Equal(t, now, *ticket.CompletedAt)

	// A second pass must not move the stamp
	later := now.Add(time.Minute)
	ticket.Recalculate(later)
	assert.Equal(t, now, *ticket.CompletedAt)
}

func TestTicketRecalculateNonTerminal(t *testing.T) {
	ticket := &models.Ticket{
		Status: models.TicketStatusNew,
		Items:  ticketItems(models.TicketItemStatusInProgress),
	}

	ticket.Recalculate(time.Now())

	assert.Equal(t, models.TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.CompletedAt)
}

func TestStationTicketPrefix(t *testing.T) {
	assert.Equal(t, "KOT", models.StationTypeKitchen.TicketPrefix())
	assert.Equal(t, "BOT", models.StationTypeBar.TicketPrefix())
	assert.Equal(t, "KOT", models.StationTypeOther.TicketPrefix())
}
