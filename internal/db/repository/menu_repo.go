package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spicetable/pos-service/internal/models"
)

// MenuRepository handles menu catalog data access
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListCategories retrieves all menu categories in display order
func (r *MenuRepository) ListCategories(ctx context.Context) ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	err := r.db.SelectContext(ctx, &categories, `
		SELECT id, name, display_order, created_at, updated_at
		FROM menu_categories ORDER BY display_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a menu category
func (r *MenuRepository) CreateCategory(ctx context.Context, category *models.MenuCategory) error {
	err := r.db.GetContext(ctx, category, `
		INSERT INTO menu_categories (name, display_order)
		VALUES ($1, $2)
		RETURNING id, name, display_order, created_at, updated_at`,
		category.Name, category.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListItems retrieves menu items, optionally restricted to one category
func (r *MenuRepository) ListItems(ctx context.Context, categoryID *uuid.UUID) ([]models.MenuItem, error) {
	query := `
		SELECT id, category_id, name, price, available, description, created_at, updated_at
		FROM menu_items`
	var args []interface{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name ASC`

	var items []models.MenuItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// GetItem retrieves a menu item by ID
func (r *MenuRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.GetContext(ctx, &item, `
		SELECT id, category_id, name, price, available, description, created_at, updated_at
		FROM menu_items WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("menu_item", id.String())
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}

// CreateItem inserts a menu item
func (r *MenuRepository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	err := r.db.GetContext(ctx, item, `
		INSERT INTO menu_items (category_id, name, price, available, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, category_id, name, price, available, description, created_at, updated_at`,
		item.CategoryID, item.Name, item.Price, item.Available, item.Description)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// UpdateItem persists changes to a menu item
func (r *MenuRepository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET category_id = $1, name = $2, price = $3, available = $4, description = $5,
		    updated_at = NOW()
		WHERE id = $6`,
		item.CategoryID, item.Name, item.Price, item.Available, item.Description, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

// GetModifierOption retrieves a modifier option by ID
func (r *MenuRepository) GetModifierOption(ctx context.Context, id uuid.UUID) (*models.ModifierOption, error) {
	var option models.ModifierOption
	err := r.db.GetContext(ctx, &option, `
		SELECT id, modifier_id, name, price_adjustment, created_at, updated_at
		FROM modifier_options WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, models.NewNotFoundError("modifier_option", id.String())
		}
		return nil, fmt.Errorf("failed to get modifier option: %w", err)
	}
	return &option, nil
}
