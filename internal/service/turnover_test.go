package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// fakeTurnoverStore keeps tables and turnovers in memory and enforces
// the one-active-turnover-per-table rule like the database does
type fakeTurnoverStore struct {
	tables    map[uuid.UUID]*models.DiningTable
	turnovers map[uuid.UUID]*models.TableTurnover
}

func newFakeTurnoverStore() *fakeTurnoverStore {
	return &fakeTurnoverStore{
		tables:    make(map[uuid.UUID]*models.DiningTable),
		turnovers: make(map[uuid.UUID]*models.TableTurnover),
	}
}

func (f *fakeTurnoverStore) addTable(number, capacity int) *models.DiningTable {
	table := &models.DiningTable{
		ID:       uuid.New(),
		Number:   number,
		Capacity: capacity,
		Status:   models.TableStatusAvailable,
		IsActive: true,
	}
	f.tables[table.ID] = table
	return table
}

func (f *fakeTurnoverStore) GetTable(_ context.Context, tableID uuid.UUID) (*models.DiningTable, error) {
	table, ok := f.tables[tableID]
	if !ok {
		return nil, models.NewNotFoundError("table", tableID.String())
	}
	return table, nil
}

func (f *fakeTurnoverStore) ListTables(_ context.Context) ([]models.DiningTable, error) {
	var out []models.DiningTable
	for _, table := range f.tables {
		out = append(out, *table)
	}
	return out, nil
}

func (f *fakeTurnoverStore) SeatGuests(_ context.Context, turnover *models.TableTurnover) error {
	for _, existing := range f.turnovers {
		if existing.TableID == turnover.TableID && !existing.Status.IsTerminal() {
			return models.NewConflictError("table", turnover.TableID.String(), "table already has an active turnover")
		}
	}
	turnover.ID = uuid.New()
	clone := *turnover
	f.turnovers[turnover.ID] = &clone
	f.tables[turnover.TableID].Status = models.TableStatusOccupied
	return nil
}

func (f *fakeTurnoverStore) GetByID(_ context.Context, id uuid.UUID) (*models.TableTurnover, error) {
	turnover, ok := f.turnovers[id]
	if !ok {
		return nil, models.NewNotFoundError("turnover", id.String())
	}
	clone := *turnover
	return &clone, nil
}

func (f *fakeTurnoverStore) ListActive(_ context.Context) ([]models.TableTurnover, error) {
	var out []models.TableTurnover
	for _, turnover := range f.turnovers {
		if !turnover.Status.IsTerminal() {
			out = append(out, *turnover)
		}
	}
	return out, nil
}

func (f *fakeTurnoverStore) UpdateStatus(_ context.Context, turnover *models.TableTurnover) error {
	stored := f.turnovers[turnover.ID]
	stored.Status = turnover.Status
	stored.ServiceStartedAt = turnover.ServiceStartedAt
	stored.CompletedAt = turnover.CompletedAt
	return nil
}

func (f *fakeTurnoverStore) Complete(_ context.Context, turnover *models.TableTurnover) error {
	stored, ok := f.turnovers[turnover.ID]
	if !ok {
		return models.NewNotFoundError("turnover", turnover.ID.String())
	}
	stored.Status = turnover.Status
	stored.ServiceStartedAt = turnover.ServiceStartedAt
	stored.CompletedAt = turnover.CompletedAt
	f.tables[stored.TableID].Status = models.TableStatusDirty
	return nil
}

func (f *fakeTurnoverStore) ClearTable(_ context.Context, tableID uuid.UUID) error {
	table, ok := f.tables[tableID]
	if !ok {
		return models.NewNotFoundError("table", tableID.String())
	}
	if table.Status != models.TableStatusDirty {
		return models.NewInvalidStateError("table", tableID.String(), "table is not waiting to be cleared")
	}
	table.Status = models.TableStatusAvailable
	return nil
}

func newTurnoverFixture() (*fakeTurnoverStore, *service.TurnoverService) {
	store := newFakeTurnoverStore()
	return store, service.NewTurnoverService(store, service.NopNotifier{}, testSettings())
}

func TestSeatGuests(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)

	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID:   table.ID,
		GuestName: "Sharma",
		PartySize: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TurnoverStatusSeated, turnover.Status)
	assert.Equal(t, 60, turnover.TargetTurnMinutes, "default target from settings")
	assert.Equal(t, models.TableStatusOccupied, store.tables[table.ID].Status)
}

func TestSeatGuestsRejectsOversizedParty(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 2)

	_, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID:   table.ID,
		GuestName: "Sharma",
		PartySize: 6,
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestSeatGuestsRejectsBothSources(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	reservationID := uuid.New()
	waitlistID := uuid.New()

	_, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID:       table.ID,
		GuestName:     "Sharma",
		PartySize:     2,
		ReservationID: &reservationID,
		WaitlistID:    &waitlistID,
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestSeatGuestsRejectsDoubleSeating(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)

	_, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	_, err = svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Verma", PartySize: 2,
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindConflict))
}

func TestAdvanceStatusStampsServiceStart(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	advanced, err := svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusInService)
	require.NoError(t, err)
	assert.NotNil(t, advanced.ServiceStartedAt)

	// Jumping straight to check_requested also stamps the start
	turnover2, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: store.addTable(6, 4).ID, GuestName: "Verma", PartySize: 2,
	})
	require.NoError(t, err)
	advanced2, err := svc.AdvanceStatus(context.Background(), turnover2.ID, models.TurnoverStatusCheckRequested)
	require.NoError(t, err)
	assert.NotNil(t, advanced2.ServiceStartedAt)
}

func TestAdvanceStatusRejectsBackwardMove(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusInService)
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusSeated)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestAdvanceStatusTerminalRequiresPaid(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusCompleted)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusPaid)
	require.NoError(t, err)
	completed, err := svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, models.TableStatusDirty, store.tables[table.ID].Status, "table goes to bussing")
}

func TestFinishTurnoverIsIdempotent(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.FinishTurnover(context.Background(), turnover.ID))
	require.NoError(t, svc.FinishTurnover(context.Background(), turnover.ID), "second finish is a no-op")

	stored, err := svc.GetTurnover(context.Background(), turnover.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoverStatusCompleted, stored.Status)
}

func TestAdvanceStatusDepartedPersists(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusPaid)
	require.NoError(t, err)
	departed, err := svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusDeparted)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoverStatusDeparted, departed.Status)

	stored, err := svc.GetTurnover(context.Background(), turnover.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoverStatusDeparted, stored.Status, "store keeps the departed stage, not completed")
	assert.NotNil(t, stored.CompletedAt)
}

func TestAdvanceStatusCompletedToDeparted(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusPaid)
	require.NoError(t, err)
	completed, err := svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusCompleted)
	require.NoError(t, err)
	completedAt := *completed.CompletedAt

	_, err = svc.AdvanceStatus(context.Background(), turnover.ID, models.TurnoverStatusDeparted)
	require.NoError(t, err)

	stored, err := svc.GetTurnover(context.Background(), turnover.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoverStatusDeparted, stored.Status)
	assert.Equal(t, completedAt, *stored.CompletedAt, "departure keeps the original completion time")
}

func TestFinishTurnoverPersistsServiceStart(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.FinishTurnover(context.Background(), turnover.ID))

	stored, err := svc.GetTurnover(context.Background(), turnover.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoverStatusCompleted, stored.Status)
	assert.NotNil(t, stored.ServiceStartedAt, "service start survives a straight-to-finish close")
	assert.NotNil(t, stored.CompletedAt)
}

func TestClearTableLifecycle(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2,
	})
	require.NoError(t, err)

	err = svc.ClearTable(context.Background(), table.ID)
	require.Error(t, err, "occupied table cannot be cleared")

	require.NoError(t, svc.FinishTurnover(context.Background(), turnover.ID))
	require.NoError(t, svc.ClearTable(context.Background(), table.ID))
	assert.Equal(t, models.TableStatusAvailable, store.tables[table.ID].Status)

	// Table is free again for the next party
	_, err = svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Verma", PartySize: 3,
	})
	require.NoError(t, err)
}

func TestListActiveComputesElapsed(t *testing.T) {
	store, svc := newTurnoverFixture()
	table := store.addTable(5, 4)
	turnover, err := svc.SeatGuests(context.Background(), models.SeatGuestsRequest{
		TableID: table.ID, GuestName: "Sharma", PartySize: 2, TargetTurnMinutes: 30,
	})
	require.NoError(t, err)

	// Backdate the seating to push it over target
	store.turnovers[turnover.ID].SeatedAt = time.Now().Add(-45 * time.Minute)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.GreaterOrEqual(t, active[0].ElapsedMinutes, 44)
	assert.True(t, active[0].OverTarget)
}
