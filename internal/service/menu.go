package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/models"
)

// MenuStore is the persistence surface the menu service depends on
type MenuStore interface {
	ListCategories(ctx context.Context) ([]models.MenuCategory, error)
	CreateCategory(ctx context.Context, category *models.MenuCategory) error
	ListItems(ctx context.Context, categoryID *uuid.UUID) ([]models.MenuItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, item *models.MenuItem) error
}

// RuleWriter assigns a menu item to a station
type RuleWriter interface {
	UpsertRoutingRule(ctx context.Context, rule *models.RoutingRule) error
}

// MenuService handles menu catalog operations
type MenuService struct {
	menu  MenuStore
	rules RuleWriter
}

// NewMenuService creates a new menu service
func NewMenuService(menu MenuStore, rules RuleWriter) *MenuService {
	return &MenuService{menu: menu, rules: rules}
}

// ListCategories retrieves all menu categories
func (s *MenuService) ListCategories(ctx context.Context) ([]models.MenuCategory, error) {
	return s.menu.ListCategories(ctx)
}

// CreateCategory creates a menu category
func (s *MenuService) CreateCategory(ctx context.Context, req models.MenuCategoryRequest) (*models.MenuCategory, error) {
	category := &models.MenuCategory{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.menu.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListItems retrieves menu items, optionally filtered by category
func (s *MenuService) ListItems(ctx context.Context, categoryID *uuid.UUID) ([]models.MenuItem, error) {
	return s.menu.ListItems(ctx, categoryID)
}

// GetItem retrieves a menu item
func (s *MenuService) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return s.menu.GetItem(ctx, id)
}

// CreateItem creates a menu item. When the request names a station the
// item's primary routing rule is created with it, so new dishes fire
// somewhere sensible from day one.
func (s *MenuService) CreateItem(ctx context.Context, req models.MenuItemRequest) (*models.MenuItem, error) {
	if req.Price.IsNegative() {
		return nil, models.NewValidationError("menu item price cannot be negative")
	}

	item := &models.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       models.RoundMoney(req.Price),
		Available:   req.Available,
		Description: req.Description,
	}
	if err := s.menu.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	if req.StationID != nil {
		rule := &models.RoutingRule{
			MenuItemID: item.ID,
			StationID:  *req.StationID,
			Priority:   1,
		}
		if err := s.rules.UpsertRoutingRule(ctx, rule); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// UpdateItem updates a menu item
func (s *MenuService) UpdateItem(ctx context.Context, id uuid.UUID, req models.MenuItemRequest) (*models.MenuItem, error) {
	if req.Price.IsNegative() {
		return nil, models.NewValidationError("menu item price cannot be negative")
	}

	item, err := s.menu.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.CategoryID = req.CategoryID
	item.Name = req.Name
	item.Price = models.RoundMoney(req.Price)
	item.Available = req.Available
	item.Description = req.Description

	if err := s.menu.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	if req.StationID != nil {
		rule := &models.RoutingRule{
			MenuItemID: item.ID,
			StationID:  *req.StationID,
			Priority:   1,
		}
		if err := s.rules.UpsertRoutingRule(ctx, rule); err != nil {
			return nil, err
		}
	}

	return item, nil
}
