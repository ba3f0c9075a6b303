package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// MenuHandler handles menu catalog requests
type MenuHandler struct {
	menu *service.MenuService
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menu *service.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// Register mounts the menu routes on the mux
func (h *MenuHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu/categories", h.listCategories)
	mux.HandleFunc("POST /menu/categories", h.createCategory)
	mux.HandleFunc("GET /menu/items", h.listItems)
	mux.HandleFunc("POST /menu/items", h.createItem)
	mux.HandleFunc("GET /menu/items/{id}", h.getItem)
	mux.HandleFunc("PUT /menu/items/{id}", h.updateItem)
}

func (h *MenuHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.menu.ListCategories(r.Context())
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, categories)
}

func (h *MenuHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req models.MenuCategoryRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	category, err := h.menu.CreateCategory(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, category)
}

func (h *MenuHandler) listItems(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if categoryStr := r.URL.Query().Get("category_id"); categoryStr != "" {
		id, err := uuid.Parse(categoryStr)
		if err != nil {
			api.RespondError(w, models.NewValidationError("invalid category_id"))
			return
		}
		categoryID = &id
	}

	items, err := h.menu.ListItems(r.Context(), categoryID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	item, err := h.menu.GetItem(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var req models.MenuItemRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	item, err := h.menu.CreateItem(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.MenuItemRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	item, err := h.menu.UpdateItem(r.Context(), id, req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}
