package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/models"
)

// StationStore is the persistence surface the station service depends on
type StationStore interface {
	List(ctx context.Context) ([]models.Station, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Station, error)
	Create(ctx context.Context, station *models.Station) error
	Resolve(ctx context.Context, menuItemID uuid.UUID) (*models.Station, error)
	UpsertRoutingRule(ctx context.Context, rule *models.RoutingRule) error
}

// StationService handles preparation station and routing rule operations
type StationService struct {
	stations StationStore
}

// NewStationService creates a new station service
func NewStationService(stations StationStore) *StationService {
	return &StationService{stations: stations}
}

// ListStations retrieves all stations
func (s *StationService) ListStations(ctx context.Context) ([]models.Station, error) {
	return s.stations.List(ctx)
}

// GetStation retrieves a station by ID
func (s *StationService) GetStation(ctx context.Context, id uuid.UUID) (*models.Station, error) {
	return s.stations.GetByID(ctx, id)
}

// CreateStation creates a station
func (s *StationService) CreateStation(ctx context.Context, req models.StationRequest) (*models.Station, error) {
	station := &models.Station{
		Name:     req.Name,
		Type:     req.Type,
		IsActive: req.IsActive,
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}

// AssignRouting creates or reprioritizes a menu item's routing rule.
// The target station must exist and be active.
func (s *StationService) AssignRouting(ctx context.Context, req models.RoutingRuleRequest) (*models.RoutingRule, error) {
	station, err := s.stations.GetByID(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if !station.IsActive {
		return nil, models.NewInvalidStateError("station", station.ID.String(), "station is not active")
	}

	priority := req.Priority
	if priority <= 0 {
		priority = 1
	}

	rule := &models.RoutingRule{
		MenuItemID: req.MenuItemID,
		StationID:  req.StationID,
		Priority:   priority,
	}
	if err := s.stations.UpsertRoutingRule(ctx, rule); err != nil {
		return nil, err
	}
	rule.Station = station
	return rule, nil
}

// ResolveStation returns the station a menu item routes to
func (s *StationService) ResolveStation(ctx context.Context, menuItemID uuid.UUID) (*models.Station, error) {
	return s.stations.Resolve(ctx, menuItemID)
}
