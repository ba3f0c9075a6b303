package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/models"
)

// TurnoverStore is the persistence surface the turnover service
// depends on
type TurnoverStore interface {
	GetTable(ctx context.Context, tableID uuid.UUID) (*models.DiningTable, error)
	ListTables(ctx context.Context) ([]models.DiningTable, error)
	SeatGuests(ctx context.Context, turnover *models.TableTurnover) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TableTurnover, error)
	ListActive(ctx context.Context) ([]models.TableTurnover, error)
	UpdateStatus(ctx context.Context, turnover *models.TableTurnover) error
	Complete(ctx context.Context, turnover *models.TableTurnover) error
	ClearTable(ctx context.Context, tableID uuid.UUID) error
}

// TurnoverService tracks the seated-to-departed lifecycle of every
// party on the floor
type TurnoverService struct {
	turnovers TurnoverStore
	notifier  Notifier
	settings  Settings
}

// NewTurnoverService creates a new turnover service
func NewTurnoverService(turnovers TurnoverStore, notifier Notifier, settings Settings) *TurnoverService {
	return &TurnoverService{turnovers: turnovers, notifier: notifier, settings: settings}
}

// SeatGuests opens a new turnover for a party. The table must be
// active and large enough, and a party may arrive from at most one
// source (reservation or waitlist). Seating is atomic with marking the
// table occupied and closing out the sourcing entry.
func (s *TurnoverService) SeatGuests(ctx context.Context, req models.SeatGuestsRequest) (*models.TableTurnover, error) {
	if req.ReservationID != nil && req.WaitlistID != nil {
		return nil, models.NewValidationError("a party can be seated from a reservation or the waitlist, not both")
	}

	table, err := s.turnovers.GetTable(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, models.NewInvalidStateError("table", table.ID.String(), "table is not in service")
	}
	if req.PartySize > table.Capacity {
		return nil, models.NewValidationError("party of %d exceeds table %d capacity of %d",
			req.PartySize, table.Number, table.Capacity)
	}

	target := req.TargetTurnMinutes
	if target <= 0 {
		target = s.settings.TargetTurnMinutes
	}

	turnover := &models.TableTurnover{
		TableID:           req.TableID,
		ReservationID:     req.ReservationID,
		WaitlistID:        req.WaitlistID,
		ServerID:          req.ServerID,
		GuestName:         req.GuestName,
		PartySize:         req.PartySize,
		Status:            models.TurnoverStatusSeated,
		TargetTurnMinutes: target,
		SeatedAt:          time.Now(),
	}

	if err := s.turnovers.SeatGuests(ctx, turnover); err != nil {
		return nil, err
	}

	s.notifier.TurnoverUpdated(turnover)
	return turnover, nil
}

// GetTurnover retrieves a turnover by ID
func (s *TurnoverService) GetTurnover(ctx context.Context, id uuid.UUID) (*models.TableTurnover, error) {
	return s.turnovers.GetByID(ctx, id)
}

// ListActive returns every in-progress turnover, oldest seating first.
// Elapsed minutes and the over-target flag are projections computed
// against the clock at read time.
func (s *TurnoverService) ListActive(ctx context.Context) ([]models.ActiveTurnover, error) {
	turnovers, err := s.turnovers.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]models.ActiveTurnover, 0, len(turnovers))
	for i := range turnovers {
		active = append(active, models.ActiveTurnover{
			TableTurnover:  turnovers[i],
			ElapsedMinutes: turnovers[i].Duration(now),
			OverTarget:     turnovers[i].IsOverTarget(now),
		})
	}
	return active, nil
}

// ListTables returns the floor map
func (s *TurnoverService) ListTables(ctx context.Context) ([]models.DiningTable, error) {
	return s.turnovers.ListTables(ctx)
}

// AdvanceStatus moves a turnover forward through its lifecycle.
// Backward moves are rejected, and the terminal stages are only
// reachable once the party has paid. Entering In Service stamps
// service_started_at; reaching a terminal stage finishes the turnover
// and frees the table for bussing.
func (s *TurnoverService) AdvanceStatus(ctx context.Context, id uuid.UUID, newStatus models.TurnoverStatus) (*models.TableTurnover, error) {
	turnover, err := s.turnovers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !turnover.Status.CanTransitionTo(newStatus) {
		return nil, models.NewInvalidTransitionError("turnover", turnover.ID.String(), turnover.Status, newStatus)
	}

	now := time.Now()
	turnover.Status = newStatus
	if turnover.ServiceStartedAt == nil && turnoverStageReached(newStatus, models.TurnoverStatusInService) {
		turnover.ServiceStartedAt = &now
	}

	if newStatus.IsTerminal() {
		// Departing an already-completed turnover keeps the original
		// completion time
		if turnover.CompletedAt == nil {
			turnover.CompletedAt = &now
		}
		if err := s.turnovers.Complete(ctx, turnover); err != nil {
			return nil, err
		}
	} else {
		if err := s.turnovers.UpdateStatus(ctx, turnover); err != nil {
			return nil, err
		}
	}

	s.notifier.TurnoverUpdated(turnover)
	return turnover, nil
}

// FinishTurnover completes a turnover on behalf of order settlement.
// A dine-in order that closes with an already-finished turnover is
// fine; anything still before Paid is forced through Paid first so the
// recorded lifecycle stays monotone.
func (s *TurnoverService) FinishTurnover(ctx context.Context, id uuid.UUID) error {
	turnover, err := s.turnovers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if turnover.Status.IsTerminal() {
		return nil
	}

	now := time.Now()
	turnover.Status = models.TurnoverStatusCompleted
	if turnover.ServiceStartedAt == nil {
		turnover.ServiceStartedAt = &now
	}
	turnover.CompletedAt = &now

	if err := s.turnovers.Complete(ctx, turnover); err != nil {
		return err
	}

	s.notifier.TurnoverUpdated(turnover)
	return nil
}

// ClearTable marks a bussed table available again
func (s *TurnoverService) ClearTable(ctx context.Context, tableID uuid.UUID) error {
	return s.turnovers.ClearTable(ctx, tableID)
}

// turnoverStageReached reports whether status is at or past stage
func turnoverStageReached(status, stage models.TurnoverStatus) bool {
	order := []models.TurnoverStatus{
		models.TurnoverStatusSeated,
		models.TurnoverStatusInService,
		models.TurnoverStatusCheckRequested,
		models.TurnoverStatusPaid,
		models.TurnoverStatusCompleted,
		models.TurnoverStatusDeparted,
	}
	statusIdx, stageIdx := -1, -1
	for i, s := range order {
		if s == status {
			statusIdx = i
		}
		if s == stage {
			stageIdx = i
		}
	}
	return statusIdx >= 0 && stageIdx >= 0 && statusIdx >= stageIdx
}
