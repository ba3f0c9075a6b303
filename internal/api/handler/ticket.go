package handler

import (
	"net/http"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// TicketHandler handles KOT/BOT ticket requests from the kitchen and
// bar displays
type TicketHandler struct {
	tickets  *service.TicketService
	receipts *service.ReceiptService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *service.TicketService, receipts *service.ReceiptService) *TicketHandler {
	return &TicketHandler{tickets: tickets, receipts: receipts}
}

// Register mounts the ticket routes on the mux
func (h *TicketHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tickets/{id}", h.getTicket)
	mux.HandleFunc("PUT /tickets/{id}/status", h.updateTicketStatus)
	mux.HandleFunc("GET /tickets/{id}/slip", h.getSlip)
	mux.HandleFunc("PUT /ticket-items/{itemID}/status", h.updateItemStatus)
	mux.HandleFunc("GET /stations/{stationID}/tickets", h.listStationTickets)
}

func (h *TicketHandler) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	ticket, err := h.tickets.GetTicket(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) updateTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.UpdateTicketRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	ticket, err := h.tickets.UpdateTicketStatus(r.Context(), id, req.Status)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.UpdateTicketItemRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	ticket, err := h.tickets.UpdateItemStatus(r.Context(), itemID, req.Status)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) listStationTickets(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r, "stationID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	tickets, err := h.tickets.ListOpenTickets(r.Context(), stationID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, tickets)
}

func (h *TicketHandler) getSlip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	ticket, err := h.tickets.GetTicket(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}

	response := struct {
		Slip string `json:"slip"`
	}{
		Slip: h.receipts.TicketText(ticket),
	}
	api.RespondJSON(w, http.StatusOK, response)
}
