package service

import (
	"github.com/shopspring/decimal"

	"github.com/spicetable/pos-service/internal/config"
	"github.com/spicetable/pos-service/internal/models"
)

// Settings holds the restaurant-level knobs the services need:
// billing rate, default routing fallback, and floor targets.
type Settings struct {
	RestaurantName    string
	Currency          string
	GSTRatePercent    decimal.Decimal
	DefaultStation    string
	TargetTurnMinutes int
}

// SettingsFromConfig converts the loaded YAML section into service settings
func SettingsFromConfig(cfg config.POS) Settings {
	return Settings{
		RestaurantName:    cfg.RestaurantName,
		Currency:          cfg.Currency,
		GSTRatePercent:    decimal.NewFromFloat(cfg.GSTRatePercent),
		DefaultStation:    cfg.DefaultStation,
		TargetTurnMinutes: cfg.TargetTurnMinutes,
	}
}

// Notifier pushes state changes to connected POS/KDS/floor clients.
// Delivery is best-effort: a failed push never aborts the mutation
// that produced it.
type Notifier interface {
	OrderUpdated(order *models.Order)
	TicketCreated(ticket *models.Ticket)
	TicketUpdated(ticket *models.Ticket)
	TurnoverUpdated(turnover *models.TableTurnover)
}

// NopNotifier discards all events
type NopNotifier struct{}

func (NopNotifier) OrderUpdated(*models.Order)           {}
func (NopNotifier) TicketCreated(*models.Ticket)         {}
func (NopNotifier) TicketUpdated(*models.Ticket)         {}
func (NopNotifier) TurnoverUpdated(*models.TableTurnover) {}
