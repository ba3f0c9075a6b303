package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

func TestReceiptTextBreaksOutGST(t *testing.T) {
	svc := service.NewReceiptService(testSettings())

	order := &models.Order{
		OrderNumber: "DIN-20260828-0042",
		Type:        models.OrderTypeDineIn,
		Subtotal:    money("250.00"),
		TaxAmount:   money("12.50"),
		TotalAmount: money("262.50"),
		CreatedAt:   time.Date(2026, 8, 28, 19, 30, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{Name: "Paneer Tikka", Quantity: 1, UnitPrice: money("250.00"), Subtotal: money("250.00"), Status: models.OrderItemStatusDelivered},
		},
	}

	receipt := svc.ReceiptText(order, []models.Payment{
		{Method: models.PaymentMethodUPI, Amount: money("262.50")},
	})

	assert.Contains(t, receipt, "Spice Table")
	assert.Contains(t, receipt, "DIN-20260828-0042")
	assert.Contains(t, receipt, "1x Paneer Tikka")
	assert.Contains(t, receipt, "Subtotal:      INR 250.00")
	assert.Contains(t, receipt, "GST (5.0%):    INR 12.50")
	assert.Contains(t, receipt, "Total:         INR 262.50")
	assert.Contains(t, receipt, "upi")
}

func TestReceiptTextSkipsCancelledItems(t *testing.T) {
	svc := service.NewReceiptService(testSettings())

	order := &models.Order{
		OrderNumber: "TKO-20260828-0001",
		Type:        models.OrderTypeTakeout,
		Items: []models.OrderItem{
			{Name: "Garlic Naan", Quantity: 2, Subtotal: money("120.00"), Status: models.OrderItemStatusDelivered},
			{Name: "Mango Lassi", Quantity: 1, Subtotal: money("90.00"), Status: models.OrderItemStatusCancelled},
		},
	}

	receipt := svc.ReceiptText(order, nil)

	assert.Contains(t, receipt, "Garlic Naan")
	assert.NotContains(t, receipt, "Mango Lassi")
}

func TestTicketTextHasNoPrices(t *testing.T) {
	svc := service.NewReceiptService(testSettings())

	instructions := "extra spicy"
	ticket := &models.Ticket{
		TicketNumber: "KOT-0007",
		OrderNumber:  "DIN-20260828-0042",
		StationID:    uuid.New(),
		StationName:  "Tandoor",
		Items: []models.TicketItem{
			{Name: "Butter Chicken", Quantity: 2, UnitPrice: money("320.00"), Status: models.TicketItemStatusNew, SpecialInstructions: &instructions},
			{Name: "Garlic Naan", Quantity: 4, UnitPrice: money("60.00"), Status: models.TicketItemStatusCancelled},
		},
	}

	slip := svc.TicketText(ticket)

	assert.Contains(t, slip, "KOT-0007")
	assert.Contains(t, slip, "Tandoor")
	assert.Contains(t, slip, "2x Butter Chicken")
	assert.Contains(t, slip, "* extra spicy")
	assert.Contains(t, slip, "4x Garlic Naan  [CANCELLED]")
	assert.NotContains(t, slip, "320.00", "station slips never show prices")
}
