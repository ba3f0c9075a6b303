package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/middleware"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

// OrderHandler handles order-related requests
type OrderHandler struct {
	orders   *service.OrderService
	receipts *service.ReceiptService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *service.OrderService, receipts *service.ReceiptService) *OrderHandler {
	return &OrderHandler{orders: orders, receipts: receipts}
}

// Register mounts the order routes on the mux
func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("POST /orders/{id}/items", h.addItem)
	mux.HandleFunc("PUT /orders/{id}/items/{itemID}", h.updateItem)
	mux.HandleFunc("POST /orders/{id}/items/{itemID}/cancel", h.cancelItem)
	mux.HandleFunc("POST /orders/{id}/fire", h.fireItems)
	mux.HandleFunc("PUT /orders/{id}/charges", h.setCharges)
	mux.HandleFunc("GET /orders/{id}/payments", h.listPayments)
	mux.HandleFunc("POST /orders/{id}/payments", h.recordPayment)
	mux.HandleFunc("POST /orders/{id}/ready", h.markReady)
	mux.HandleFunc("POST /orders/{id}/complete", h.completeOrder)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("GET /orders/{id}/receipt", h.getReceipt)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, models.NewValidationError("invalid %s", name)
	}
	return id, nil
}

func currentUserID(r *http.Request) *uuid.UUID {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		return nil
	}
	return &id
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	var status *models.OrderStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.OrderStatus(statusStr)
		status = &s
	}

	orders, err := h.orders.ListOrders(r.Context(), status)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req, currentUserID(r))
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.AddItemRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	item, err := h.orders.AddItem(r.Context(), orderID, req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, item)
}

func (h *OrderHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.UpdateItemRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	item, err := h.orders.UpdateItem(r.Context(), itemID, req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}

func (h *OrderHandler) cancelItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondError(w, models.NewValidationError("invalid request body"))
		return
	}

	if err := h.orders.CancelItem(r.Context(), itemID, req.Reason); err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *OrderHandler) fireItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.FireItemsRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	tickets, err := h.orders.FireItems(r.Context(), orderID, req.ItemIDs)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	api.RespondJSON(w, http.StatusOK, tickets)
}

func (h *OrderHandler) setCharges(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.ChargesRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.SetCharges(r.Context(), orderID, req)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	payments, err := h.orders.ListPayments(r.Context(), orderID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, payments)
}

func (h *OrderHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req models.PaymentRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.RespondError(w, err)
		return
	}

	payment, err := h.orders.RecordPayment(r.Context(), orderID, req, currentUserID(r))
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, payment)
}

func (h *OrderHandler) markReady(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.MarkReady(r.Context(), orderID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) completeOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.CompleteOrder(r.Context(), orderID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondError(w, models.NewValidationError("invalid request body"))
		return
	}

	if err := h.orders.CancelOrder(r.Context(), orderID, req.Reason); err != nil {
		api.RespondError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *OrderHandler) getReceipt(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		api.RespondError(w, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		api.RespondError(w, err)
		return
	}
	payments, err := h.orders.ListPayments(r.Context(), orderID)
	if err != nil {
		api.RespondError(w, err)
		return
	}

	response := struct {
		Receipt string `json:"receipt"`
	}{
		Receipt: h.receipts.ReceiptText(order, payments),
	}
	api.RespondJSON(w, http.StatusOK, response)
}
