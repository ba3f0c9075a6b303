package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSettings() service.Settings {
	return service.Settings{
		RestaurantName:    "Spice Table",
		Currency:          "INR",
		GSTRatePercent:    decimal.NewFromInt(5),
		DefaultStation:    "KITCHEN",
		TargetTurnMinutes: 60,
	}
}

// fakeOrderStore keeps orders in memory and mimics the repository's
// transactional writes
type fakeOrderStore struct {
	orders     map[uuid.UUID]*models.Order
	nextSeq    int
	ticketSeq  int
	lastTotals models.OrderTotals
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderStore) NextOrderNumber(_ context.Context, orderType models.OrderType) (string, error) {
	f.nextSeq++
	return fmt.Sprintf("%s-20260828-%04d", orderType.NumberPrefix(), f.nextSeq), nil
}

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.NewNotFoundError("order", id.String())
	}
	clone := *order
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	return &clone, nil
}

func (f *fakeOrderStore) GetItem(_ context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	for _, order := range f.orders {
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				clone := order.Items[i]
				return &clone, nil
			}
		}
	}
	return nil, models.NewNotFoundError("order_item", itemID.String())
}

func (f *fakeOrderStore) List(_ context.Context, status *models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range f.orders {
		if status != nil && order.Status != *status {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (f *fakeOrderStore) applyTotals(order *models.Order, totals models.OrderTotals) {
	order.Subtotal = totals.Subtotal
	order.TaxAmount = totals.TaxAmount
	order.TipAmount = totals.TipAmount
	order.DiscountAmount = totals.DiscountAmount
	order.TotalAmount = totals.TotalAmount
	f.lastTotals = totals
}

func (f *fakeOrderStore) InsertItem(_ context.Context, item *models.OrderItem, totals models.OrderTotals) error {
	order := f.orders[item.OrderID]
	item.ID = uuid.New()
	order.Items = append(order.Items, *item)
	f.applyTotals(order, totals)
	return nil
}

func (f *fakeOrderStore) UpdateItem(_ context.Context, item *models.OrderItem, totals models.OrderTotals) error {
	order := f.orders[item.OrderID]
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i] = *item
		}
	}
	f.applyTotals(order, totals)
	return nil
}

func (f *fakeOrderStore) CancelItem(_ context.Context, orderID, itemID uuid.UUID, reason string, totals models.OrderTotals) error {
	order := f.orders[orderID]
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items[i].Status = models.OrderItemStatusCancelled
			order.Items[i].CancelReason = &reason
		}
	}
	f.applyTotals(order, totals)
	return nil
}

func (f *fakeOrderStore) FireItems(_ context.Context, orderID uuid.UUID, groups []models.FireGroup) ([]models.Ticket, error) {
	order := f.orders[orderID]
	now := time.Now()

	var tickets []models.Ticket
	for _, group := range groups {
		f.ticketSeq++
		ticket := models.Ticket{
			ID:           uuid.New(),
			TicketNumber: fmt.Sprintf("%s-%04d", group.Station.Type.TicketPrefix(), f.ticketSeq),
			OrderID:      orderID,
			StationID:    group.Station.ID,
			Status:       models.TicketStatusNew,
			StationName:  group.Station.Name,
			OrderNumber:  order.OrderNumber,
			CreatedAt:    now,
		}
		for _, item := range group.Items {
			ticket.Items = append(ticket.Items, models.TicketItem{
				ID:                  uuid.New(),
				TicketID:            ticket.ID,
				OrderItemID:         item.ID,
				Name:                item.Name,
				Quantity:            item.Quantity,
				UnitPrice:           item.UnitPrice,
				SpecialInstructions: item.SpecialInstructions,
				Status:              models.TicketItemStatusNew,
			})
			for i := range order.Items {
				if order.Items[i].ID == item.ID && order.Items[i].Status == models.OrderItemStatusNew {
					order.Items[i].Status = models.OrderItemStatusFired
					order.Items[i].FiredAt = &now
				}
			}
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, orderID uuid.UUID, status models.OrderStatus, completedAt *time.Time) error {
	order := f.orders[orderID]
	order.Status = status
	order.CompletedAt = completedAt
	return nil
}

func (f *fakeOrderStore) UpdateCharges(_ context.Context, orderID uuid.UUID, totals models.OrderTotals) error {
	f.applyTotals(f.orders[orderID], totals)
	return nil
}

func (f *fakeOrderStore) Cancel(_ context.Context, orderID uuid.UUID, _ string) error {
	f.orders[orderID].Status = models.OrderStatusCancelled
	return nil
}

// fakeMenu serves menu items and modifier options from maps
type fakeMenu struct {
	items   map[uuid.UUID]*models.MenuItem
	options map[uuid.UUID]*models.ModifierOption
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{
		items:   make(map[uuid.UUID]*models.MenuItem),
		options: make(map[uuid.UUID]*models.ModifierOption),
	}
}

func (f *fakeMenu) addItem(name, price string, available bool) *models.MenuItem {
	item := &models.MenuItem{ID: uuid.New(), Name: name, Price: money(price), Available: available}
	f.items[item.ID] = item
	return item
}

func (f *fakeMenu) addOption(name, adjustment string) *models.ModifierOption {
	option := &models.ModifierOption{ID: uuid.New(), Name: name, PriceAdjustment: money(adjustment)}
	f.options[option.ID] = option
	return option
}

func (f *fakeMenu) GetItem(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, models.NewNotFoundError("menu_item", id.String())
	}
	return item, nil
}

func (f *fakeMenu) GetModifierOption(_ context.Context, id uuid.UUID) (*models.ModifierOption, error) {
	option, ok := f.options[id]
	if !ok {
		return nil, models.NewNotFoundError("modifier_option", id.String())
	}
	return option, nil
}

// fakeStations resolves routing from a map and serves named stations
type fakeStations struct {
	routes map[uuid.UUID]*models.Station
	byName map[string]*models.Station
}

func newFakeStations() *fakeStations {
	return &fakeStations{
		routes: make(map[uuid.UUID]*models.Station),
		byName: make(map[string]*models.Station),
	}
}

func (f *fakeStations) addStation(name string, stationType models.StationType) *models.Station {
	station := &models.Station{ID: uuid.New(), Name: name, Type: stationType, IsActive: true}
	f.byName[name] = station
	return station
}

func (f *fakeStations) route(menuItemID uuid.UUID, station *models.Station) {
	f.routes[menuItemID] = station
}

func (f *fakeStations) Resolve(_ context.Context, menuItemID uuid.UUID) (*models.Station, error) {
	station, ok := f.routes[menuItemID]
	if !ok {
		return nil, models.NewConfigurationError("menu item %s has no station assignment", menuItemID)
	}
	return station, nil
}

func (f *fakeStations) GetByName(_ context.Context, name string) (*models.Station, error) {
	station, ok := f.byName[name]
	if !ok {
		return nil, models.NewNotFoundError("station", name)
	}
	return station, nil
}

// fakePayments records payments in memory
type fakePayments struct {
	payments []models.Payment
}

func (f *fakePayments) Create(_ context.Context, payment *models.Payment) error {
	payment.ID = uuid.New()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePayments) ListByOrder(_ context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) CollectedTotal(_ context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range f.payments {
		if p.OrderID == orderID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// fakeTurnovers implements the finisher surface the order service needs
type fakeTurnovers struct {
	turnovers map[uuid.UUID]*models.TableTurnover
	finished  []uuid.UUID
}

func newFakeTurnovers() *fakeTurnovers {
	return &fakeTurnovers{turnovers: make(map[uuid.UUID]*models.TableTurnover)}
}

func (f *fakeTurnovers) addActive() *models.TableTurnover {
	turnover := &models.TableTurnover{ID: uuid.New(), Status: models.TurnoverStatusSeated, SeatedAt: time.Now()}
	f.turnovers[turnover.ID] = turnover
	return turnover
}

func (f *fakeTurnovers) GetTurnover(_ context.Context, id uuid.UUID) (*models.TableTurnover, error) {
	turnover, ok := f.turnovers[id]
	if !ok {
		return nil, models.NewNotFoundError("turnover", id.String())
	}
	return turnover, nil
}

func (f *fakeTurnovers) FinishTurnover(_ context.Context, id uuid.UUID) error {
	turnover, ok := f.turnovers[id]
	if !ok {
		return models.NewNotFoundError("turnover", id.String())
	}
	turnover.Status = models.TurnoverStatusCompleted
	f.finished = append(f.finished, id)
	return nil
}

type orderFixture struct {
	store     *fakeOrderStore
	menu      *fakeMenu
	stations  *fakeStations
	payments  *fakePayments
	turnovers *fakeTurnovers
	svc       *service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		store:     newFakeOrderStore(),
		menu:      newFakeMenu(),
		stations:  newFakeStations(),
		payments:  &fakePayments{},
		turnovers: newFakeTurnovers(),
	}
	f.stations.addStation("KITCHEN", models.StationTypeKitchen)
	f.svc = service.NewOrderService(f.store, f.menu, f.stations, f.payments, f.turnovers,
		service.NopNotifier{}, testSettings())
	return f
}

func (f *orderFixture) openTakeout(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{Type: models.OrderTypeTakeout}, nil)
	require.NoError(t, err)
	return order
}

func TestCreateOrderDineInRequiresTurnover(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{Type: models.OrderTypeDineIn}, nil)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestCreateOrderTakeoutRejectsTurnover(t *testing.T) {
	f := newOrderFixture()
	turnover := f.turnovers.addActive()

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		Type:       models.OrderTypeTakeout,
		TurnoverID: &turnover.ID,
	}, nil)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestCreateOrderDineIn(t *testing.T) {
	f := newOrderFixture()
	turnover := f.turnovers.addActive()

	order, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		Type:       models.OrderTypeDineIn,
		TurnoverID: &turnover.ID,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "DIN-20260828-0001", order.OrderNumber)
	assert.Equal(t, models.OrderStatusOpen, order.Status)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestCreateOrderRejectsFinishedTurnover(t *testing.T) {
	f := newOrderFixture()
	turnover := f.turnovers.addActive()
	turnover.Status = models.TurnoverStatusDeparted

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		Type:       models.OrderTypeDineIn,
		TurnoverID: &turnover.ID,
	}, nil)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidState))
}

func TestAddItemSnapshotsPriceAndRecomputesTotals(t *testing.T) {
	f := newOrderFixture()
	menuItem := f.menu.addItem("Paneer Tikka", "200.00", true)
	option := f.menu.addOption("Extra Cheese", "50.00")
	order := f.openTakeout(t)

	item, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{
		MenuItemID: menuItem.ID,
		Quantity:   1,
		Modifiers:  []models.ItemModifierRequest{{OptionID: option.ID}},
	})
	require.NoError(t, err)

	assert.Equal(t, "250.00", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "250.00", f.store.lastTotals.Subtotal.StringFixed(2))
	assert.Equal(t, "12.50", f.store.lastTotals.TaxAmount.StringFixed(2))
	assert.Equal(t, "262.50", f.store.lastTotals.TotalAmount.StringFixed(2))

	// Later menu price changes must not touch the snapshot
	menuItem.Price = money("999.00")
	stored, err := f.store.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", stored.UnitPrice.StringFixed(2))
}

func TestAddItemRejectsUnavailable(t *testing.T) {
	f := newOrderFixture()
	menuItem := f.menu.addItem("Seasonal Special", "180.00", false)
	order := f.openTakeout(t)

	_, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{
		MenuItemID: menuItem.ID,
		Quantity:   1,
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestFireItemsGroupsByStation(t *testing.T) {
	f := newOrderFixture()
	kitchen := f.stations.byName["KITCHEN"]
	bar := f.stations.addStation("BAR", models.StationTypeBar)

	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	naan := f.menu.addItem("Garlic Naan", "60.00", true)
	lassi := f.menu.addItem("Mango Lassi", "90.00", true)
	f.stations.route(curry.ID, kitchen)
	f.stations.route(naan.ID, kitchen)
	f.stations.route(lassi.ID, bar)

	order := f.openTakeout(t)
	var itemIDs []uuid.UUID
	for _, m := range []*models.MenuItem{curry, naan, lassi} {
		item, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: m.ID, Quantity: 1})
		require.NoError(t, err)
		itemIDs = append(itemIDs, item.ID)
	}

	tickets, err := f.svc.FireItems(context.Background(), order.ID, itemIDs)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.Equal(t, "KOT-0001", tickets[0].TicketNumber)
	assert.Len(t, tickets[0].Items, 2)
	assert.Equal(t, "BOT-0002", tickets[1].TicketNumber)
	assert.Len(t, tickets[1].Items, 1)

	stored, err := f.store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	for _, item := range stored.Items {
		assert.Equal(t, models.OrderItemStatusFired, item.Status)
	}
}

func TestFireItemsIsIdempotent(t *testing.T) {
	f := newOrderFixture()
	kitchen := f.stations.byName["KITCHEN"]
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	f.stations.route(curry.ID, kitchen)

	order := f.openTakeout(t)
	item, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)

	first, err := f.svc.FireItems(context.Background(), order.ID, []uuid.UUID{item.ID})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.FireItems(context.Background(), order.ID, []uuid.UUID{item.ID})
	require.NoError(t, err)
	assert.Empty(t, second, "re-firing fired items must create no tickets")
}

func TestFireItemsFallsBackToDefaultStation(t *testing.T) {
	f := newOrderFixture()
	unrouted := f.menu.addItem("Chef Special", "400.00", true)

	order := f.openTakeout(t)
	item, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: unrouted.ID, Quantity: 1})
	require.NoError(t, err)

	tickets, err := f.svc.FireItems(context.Background(), order.ID, []uuid.UUID{item.ID})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "KITCHEN", tickets[0].StationName)
}

func TestFireItemsUnknownItem(t *testing.T) {
	f := newOrderFixture()
	order := f.openTakeout(t)

	_, err := f.svc.FireItems(context.Background(), order.ID, []uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestUpdateItemQuantityFrozenOnceFired(t *testing.T) {
	f := newOrderFixture()
	kitchen := f.stations.byName["KITCHEN"]
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	f.stations.route(curry.ID, kitchen)

	order := f.openTakeout(t)
	item, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.FireItems(context.Background(), order.ID, []uuid.UUID{item.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(context.Background(), item.ID, models.UpdateItemRequest{Quantity: 1})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidState))
}

func TestCancelItemRemovesContributionFromTotals(t *testing.T) {
	f := newOrderFixture()
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	naan := f.menu.addItem("Garlic Naan", "60.00", true)

	order := f.openTakeout(t)
	_, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)
	naanItem, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: naan.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelItem(context.Background(), naanItem.ID, "guest changed mind"))

	assert.Equal(t, "320.00", f.store.lastTotals.Subtotal.StringFixed(2))
	assert.Equal(t, "336.00", f.store.lastTotals.TotalAmount.StringFixed(2))
}

func TestSetChargesRejectsAmountAndPercentTogether(t *testing.T) {
	f := newOrderFixture()
	order := f.openTakeout(t)

	amount := money("10.00")
	percent := money("5")
	_, err := f.svc.SetCharges(context.Background(), order.ID, models.ChargesRequest{
		DiscountAmount:  &amount,
		DiscountPercent: &percent,
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestSetChargesDiscountPercent(t *testing.T) {
	f := newOrderFixture()
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	order := f.openTakeout(t)
	_, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)

	percent := money("10")
	updated, err := f.svc.SetCharges(context.Background(), order.ID, models.ChargesRequest{DiscountPercent: &percent})
	require.NoError(t, err)

	assert.Equal(t, "32.00", updated.DiscountAmount.StringFixed(2))
	// 320 + 16 GST - 32 discount
	assert.Equal(t, "304.00", updated.TotalAmount.StringFixed(2))
}

func markDelivered(f *orderFixture, orderID uuid.UUID) {
	order := f.store.orders[orderID]
	for i := range order.Items {
		if order.Items[i].Status != models.OrderItemStatusCancelled {
			order.Items[i].Status = models.OrderItemStatusDelivered
		}
	}
}

func TestCompleteOrderRequiresSettledItems(t *testing.T) {
	f := newOrderFixture()
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	order := f.openTakeout(t)
	_, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.CompleteOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidState))
}

func TestCompleteOrderRequiresFullPayment(t *testing.T) {
	f := newOrderFixture()
	curry := f.menu.addItem("Butter Chicken", "320.00", true)
	order := f.openTakeout(t)
	_, err := f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)
	markDelivered(f, order.ID)

	_, err = f.svc.RecordPayment(context.Background(), order.ID, models.PaymentRequest{
		Method: models.PaymentMethodCash,
		Amount: money("100.00"),
	}, nil)
	require.NoError(t, err)

	_, err = f.svc.CompleteOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidState))
	assert.Contains(t, err.Error(), "outstanding balance")
}

func TestCompleteDineInOrderFinishesTurnover(t *testing.T) {
	f := newOrderFixture()
	turnover := f.turnovers.addActive()
	curry := f.menu.addItem("Butter Chicken", "320.00", true)

	order, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		Type:       models.OrderTypeDineIn,
		TurnoverID: &turnover.ID,
	}, nil)
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), order.ID, models.AddItemRequest{MenuItemID: curry.ID, Quantity: 1})
	require.NoError(t, err)
	markDelivered(f, order.ID)

	_, err = f.svc.RecordPayment(context.Background(), order.ID, models.PaymentRequest{
		Method: models.PaymentMethodCard,
		Amount: money("336.00"),
	}, nil)
	require.NoError(t, err)

	completed, err := f.svc.CompleteOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, []uuid.UUID{turnover.ID}, f.turnovers.finished)
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture()
	order := f.openTakeout(t)

	require.NoError(t, f.svc.CancelOrder(context.Background(), order.ID, "kitchen closed"))

	stored, err := f.store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)

	err = f.svc.CancelOrder(context.Background(), order.ID, "again")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}
