package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spicetable/pos-service/internal/models"
)

// ReceiptService renders plain-text customer receipts and station
// slips. Output is fixed-width text suitable for 80mm thermal
// printers; actual transport to a printer is out of scope here.
type ReceiptService struct {
	settings Settings
}

// NewReceiptService creates a new receipt service
func NewReceiptService(settings Settings) *ReceiptService {
	return &ReceiptService{settings: settings}
}

// ReceiptText generates the customer bill for an order, with the GST
// line broken out under the subtotal
func (s *ReceiptService) ReceiptText(order *models.Order, payments []models.Payment) string {
	var sb strings.Builder

	sb.WriteString("===============================\n")
	sb.WriteString(centerLine(s.settings.RestaurantName))
	sb.WriteString(centerLine("TAX INVOICE"))
	sb.WriteString("===============================\n\n")

	sb.WriteString(fmt.Sprintf("Order #: %s\n", order.OrderNumber))
	sb.WriteString(fmt.Sprintf("Type: %s\n", order.Type))
	sb.WriteString(fmt.Sprintf("Date: %s\n", order.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("\n")

	sb.WriteString("Items:\n")
	sb.WriteString("-------------------------------\n")

	for _, item := range order.Items {
		if item.Status == models.OrderItemStatusCancelled {
			continue
		}
		sb.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))

		for _, mod := range item.Modifiers {
			sb.WriteString(fmt.Sprintf("  + %s", mod.Name))
			if mod.PriceAdjustment.IsPositive() {
				sb.WriteString(fmt.Sprintf(" (+%s %s)", s.settings.Currency, mod.PriceAdjustment.StringFixed(2)))
			}
			sb.WriteString("\n")
		}

		if item.SpecialInstructions != nil && *item.SpecialInstructions != "" {
			sb.WriteString(fmt.Sprintf("  * %s\n", *item.SpecialInstructions))
		}

		sb.WriteString(fmt.Sprintf("  %s %s\n", s.settings.Currency, item.Subtotal.StringFixed(2)))
	}

	sb.WriteString("-------------------------------\n")
	sb.WriteString(fmt.Sprintf("Subtotal:      %s %s\n", s.settings.Currency, order.Subtotal.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("GST (%s%%):    %s %s\n",
		s.settings.GSTRatePercent.StringFixed(1), s.settings.Currency, order.TaxAmount.StringFixed(2)))
	if order.DiscountAmount.IsPositive() {
		sb.WriteString(fmt.Sprintf("Discount:     -%s %s\n", s.settings.Currency, order.DiscountAmount.StringFixed(2)))
	}
	if order.TipAmount.IsPositive() {
		sb.WriteString(fmt.Sprintf("Tip:           %s %s\n", s.settings.Currency, order.TipAmount.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("Total:         %s %s\n", s.settings.Currency, order.TotalAmount.StringFixed(2)))
	sb.WriteString("\n")

	if len(payments) > 0 {
		sb.WriteString("Payments:\n")
		for _, p := range payments {
			sb.WriteString(fmt.Sprintf("  %-12s %s %s\n", p.Method, s.settings.Currency, p.Amount.StringFixed(2)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("===============================\n")
	sb.WriteString(centerLine("Thank You!"))
	sb.WriteString("===============================\n")

	return sb.String()
}

// TicketText generates the KOT/BOT slip for a station ticket. Prices
// never appear on station slips.
func (s *ReceiptService) TicketText(ticket *models.Ticket) string {
	var sb strings.Builder

	sb.WriteString("===============================\n")
	sb.WriteString(centerLine(ticket.TicketNumber))
	if ticket.StationName != "" {
		sb.WriteString(centerLine(ticket.StationName))
	}
	sb.WriteString("===============================\n\n")

	sb.WriteString(fmt.Sprintf("Order #: %s\n", ticket.OrderNumber))
	sb.WriteString(fmt.Sprintf("Fired: %s\n", ticket.CreatedAt.Format("15:04:05")))
	sb.WriteString("\n")

	sb.WriteString("-------------------------------\n")
	for _, item := range ticket.Items {
		if item.Status == models.TicketItemStatusCancelled {
			sb.WriteString(fmt.Sprintf("%dx %s  [CANCELLED]\n", item.Quantity, item.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))
		if item.SpecialInstructions != nil && *item.SpecialInstructions != "" {
			sb.WriteString(fmt.Sprintf("  * %s\n", *item.SpecialInstructions))
		}
	}
	sb.WriteString("-------------------------------\n")
	sb.WriteString(fmt.Sprintf("Printed: %s\n", time.Now().Format("15:04:05")))

	return sb.String()
}

// centerLine pads a string to the 31-column slip width
func centerLine(text string) string {
	const width = 31
	if len(text) >= width {
		return text + "\n"
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text + "\n"
}
