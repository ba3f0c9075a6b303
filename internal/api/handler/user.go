package handler

import (
	"net/http"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// UserHandler handles user administration requests
type UserHandler struct {
	auth *service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Register mounts the user routes on the mux
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("PUT /users/{id}", h.updateUser)
	mux.HandleFunc("POST /users/me/password", h.changePassword)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	user, err := h.auth.RegisterUser(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.UserUpdateRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	user, err := h.auth.UpdateUser(r.Context(), id, req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == nil {
		api.RespondError(w, models.NewValidationError("no authenticated user"))
		return
	}

	var req models.ChangePasswordRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), *userID, req.CurrentPassword, req.NewPassword); err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusNoContent, nil)
}
