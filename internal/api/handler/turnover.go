package handler

import (
	"net/http"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// TurnoverHandler handles floor management requests
type TurnoverHandler struct {
	turnovers *service.TurnoverService
}

// NewTurnoverHandler creates a new turnover handler
func NewTurnoverHandler(turnovers *service.TurnoverService) *TurnoverHandler {
	return &TurnoverHandler{turnovers: turnovers}
}

// Register mounts the floor routes on the mux
func (h *TurnoverHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tables", h.listTables)
	mux.HandleFunc("POST /tables/{tableID}/clear", h.clearTable)
	mux.HandleFunc("GET /turnovers", h.listActive)
	mux.HandleFunc("POST /turnovers", h.seatGuests)
	mux.HandleFunc("GET /turnovers/{id}", h.getTurnover)
	mux.HandleFunc("PUT /turnovers/{id}/status", h.advanceStatus)
}

func (h *TurnoverHandler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.turnovers.ListTables(r.Context())
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, tables)
}

func (h *TurnoverHandler) clearTable(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	if err := h.turnovers.ClearTable(r.Context(), tableID); err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *TurnoverHandler) listActive(w http.ResponseWriter, r *http.Request) {
	turnovers, err := h.turnovers.ListActive(r.Context())
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, turnovers)
}

func (h *TurnoverHandler) seatGuests(w http.ResponseWriter, r *http.Request) {
	var req models.SeatGuestsRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	turnover, err := h.turnovers.SeatGuests(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, turnover)
}

func (h *TurnoverHandler) getTurnover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	turnover, err := h.turnovers.GetTurnover(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, turnover)
}

func (h *TurnoverHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.AdvanceTurnoverRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	turnover, err := h.turnovers.AdvanceStatus(r.Context(), id, req.Status)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, turnover)
}
