package handler

import (
	"net/http"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// StationHandler handles station and routing rule requests
type StationHandler struct {
	stations *service.StationService
}

// NewStationHandler creates a new station handler
func NewStationHandler(stations *service.StationService) *StationHandler {
	return &StationHandler{stations: stations}
}

// Register mounts the station routes on the mux
func (h *StationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /stations", h.listStations)
	mux.HandleFunc("POST /stations", h.createStation)
	mux.HandleFunc("GET /stations/{stationID}", h.getStation)
	mux.HandleFunc("PUT /routing-rules", h.assignRouting)
}

func (h *StationHandler) listStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.ListStations(r.Context())
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, stations)
}

func (h *StationHandler) getStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stationID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	station, err := h.stations.GetStation(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, station)
}

func (h *StationHandler) createStation(w http.ResponseWriter, r *http.Request) {
	var req models.StationRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	station, err := h.stations.CreateStation(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, station)
}

func (h *StationHandler) assignRouting(w http.ResponseWriter, r *http.Request) {
	var req models.RoutingRuleRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	rule, err := h.stations.AssignRouting(r.Context(), req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, rule)
}
