package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spicetable/pos-service/internal/models"
)

// StationRepository handles station and routing rule data access
type StationRepository struct {
	db *sqlx.DB
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *sqlx.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `id, name, type, is_active, created_at, updated_at`

// List retrieves all stations
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := r.db.SelectContext(ctx, &stations,
		`SELECT `+stationColumns+` FROM stations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	return stations, nil
}

// GetByID retrieves a station by ID
func (r *StationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Station, error) {
	var station models.Station
	err := r.db.GetContext(ctx, &station,
		`SELECT `+stationColumns+` FROM stations WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("station", id.String())
		}
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	return &station, nil
}

// GetByName retrieves a station by its unique name
func (r *StationRepository) GetByName(ctx context.Context, name string) (*models.Station, error) {
	var station models.Station
	err := r.db.GetContext(ctx, &station,
		`SELECT `+stationColumns+` FROM stations WHERE name = $1`, name)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("station", name)
		}
		return nil, fmt.Errorf("failed to get station by name: %w", err)
	}
	return &station, nil
}

// Create inserts a station
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	err := r.db.GetContext(ctx, station, `
		INSERT INTO stations (name, type, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+stationColumns,
		station.Name, station.Type, station.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("station", station.Name, "station name already exists")
		}
		return fmt.Errorf("failed to create station: %w", err)
	}
	return nil
}

// Resolve returns the station a menu item routes to. When several
// rules exist, the lowest priority value is the primary and wins. A
// menu item with no rule yields a configuration error; callers fall
// back to the default station.
func (r *StationRepository) Resolve(ctx context.Context, menuItemID uuid.UUID) (*models.Station, error) {
	var station models.Station
	err := r.db.GetContext(ctx, &station, `
		SELECT s.id, s.name, s.type, s.is_active, s.created_at, s.updated_at
		FROM routing_rules rr
		JOIN stations s ON rr.station_id = s.id
		WHERE rr.menu_item_id = $1 AND s.is_active
		ORDER BY rr.priority ASC
		LIMIT 1`, menuItemID)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewConfigurationError("menu item %s has no station assignment", menuItemID)
		}
		return nil, fmt.Errorf("failed to resolve station: %w", err)
	}
	return &station, nil
}

// UpsertRoutingRule creates or reprioritizes a menu item's routing rule
func (r *StationRepository) UpsertRoutingRule(ctx context.Context, rule *models.RoutingRule) error {
	err := r.db.GetContext(ctx, rule, `
		INSERT INTO routing_rules (menu_item_id, station_id, priority)
		VALUES ($1, $2, $3)
		ON CONFLICT (menu_item_id, station_id)
		DO UPDATE SET priority = EXCLUDED.priority, updated_at = NOW()
		RETURNING id, menu_item_id, station_id, priority, created_at, updated_at`,
		rule.MenuItemID, rule.StationID, rule.Priority)
	if err != nil {
		return fmt.Errorf("failed to upsert routing rule: %w", err)
	}
	return nil
}
