package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/spicetable/pos-service/internal/models"
)

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "10.13", models.RoundMoney(decimal.RequireFromString("10.125")).StringFixed(2))
	assert.Equal(t, "10.12", models.RoundMoney(decimal.RequireFromString("10.124")).StringFixed(2))
	assert.Equal(t, "0.00", models.RoundMoney(decimal.Zero).StringFixed(2))
}

func TestPercentage(t *testing.T) {
	// GST at 5% on 250.00
	gst := models.Percentage(decimal.RequireFromString("250.00"), decimal.NewFromInt(5))
	assert.Equal(t, "12.50", gst.StringFixed(2))

	// Rounding happens once, at the percentage result
	gst = models.Percentage(decimal.RequireFromString("333.33"), decimal.NewFromInt(5))
	assert.Equal(t, "16.67", gst.StringFixed(2))

	assert.True(t, models.Percentage(decimal.Zero, decimal.NewFromInt(18)).IsZero())
}

func TestLineSubtotal(t *testing.T) {
	subtotal := models.LineSubtotal(3, decimal.RequireFromString("45.50"))
	assert.Equal(t, "136.50", subtotal.StringFixed(2))
}
