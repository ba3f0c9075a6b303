package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spicetable/pos-service/internal/models"
)

func TestTurnoverStatusTransitions(t *testing.T) {
	assert.True(t, models.TurnoverStatusSeated.CanTransitionTo(models.TurnoverStatusInService))
	assert.True(t, models.TurnoverStatusSeated.CanTransitionTo(models.TurnoverStatusPaid), "forward jumps allowed")
	assert.True(t, models.TurnoverStatusPaid.CanTransitionTo(models.TurnoverStatusCompleted))
	assert.True(t, models.TurnoverStatusPaid.CanTransitionTo(models.TurnoverStatusDeparted))
	assert.True(t, models.TurnoverStatusCompleted.CanTransitionTo(models.TurnoverStatusDeparted))

	assert.False(t, models.TurnoverStatusInService.CanTransitionTo(models.TurnoverStatusSeated), "no backward moves")
	assert.False(t, models.TurnoverStatusInService.CanTransitionTo(models.TurnoverStatusCompleted), "terminal requires paid")
	assert.False(t, models.TurnoverStatusCheckRequested.CanTransitionTo(models.TurnoverStatusDeparted))
	assert.False(t, models.TurnoverStatusDeparted.CanTransitionTo(models.TurnoverStatusSeated))
}

func TestTurnoverDuration(t *testing.T) {
	seated := time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)
	turnover := &models.TableTurnover{SeatedAt: seated, TargetTurnMinutes: 60}

	now := seated.Add(45 * time.Minute)
	assert.Equal(t, 45, turnover.Duration(now))
	assert.False(t, turnover.IsOverTarget(now))

	now = seated.Add(75 * time.Minute)
	assert.Equal(t, 75, turnover.Duration(now))
	assert.True(t, turnover.IsOverTarget(now))
}

func TestTurnoverIsOverTargetWithoutTarget(t *testing.T) {
	turnover := &models.TableTurnover{SeatedAt: time.Now().Add(-5 * time.Hour)}
	assert.False(t, turnover.IsOverTarget(time.Now()), "no target means never over")
}
