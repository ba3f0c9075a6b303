// internal/router/router.go
package router

import (
	"net/http"

	"github.com/spicetable/pos-service/internal/api"
	"github.com/spicetable/pos-service/internal/api/handler"
	"github.com/spicetable/pos-service/internal/middleware"
	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
	"github.com/spicetable/pos-service/internal/websockets"
)

// Handlers bundles the API handlers the router mounts
type Handlers struct {
	Order    *handler.OrderHandler
	Ticket   *handler.TicketHandler
	Turnover *handler.TurnoverHandler
	Menu     *handler.MenuHandler
	Station  *handler.StationHandler
	User     *handler.UserHandler
}

// Router handles HTTP routing
type Router struct {
	mux  *http.ServeMux
	auth *service.AuthService
	hub  *websockets.Hub
}

// New creates a new router
func New(auth *service.AuthService, hub *websockets.Hub, handlers Handlers) *Router {
	r := &Router{
		mux:  http.NewServeMux(),
		auth: auth,
		hub:  hub,
	}

	r.setupRoutes(handlers)

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes(handlers Handlers) {
	// Public routes
	r.mux.HandleFunc("POST /api/auth/login", r.handleLogin)
	r.mux.HandleFunc("GET /ws", r.handleWebSocket)

	// Protected routes
	apiHandler := http.NewServeMux()
	handlers.Order.Register(apiHandler)
	handlers.Ticket.Register(apiHandler)
	handlers.Turnover.Register(apiHandler)
	handlers.Menu.Register(apiHandler)
	handlers.Station.Register(apiHandler)

	// User administration is restricted to managers and admins
	adminMux := http.NewServeMux()
	handlers.User.Register(adminMux)
	apiHandler.Handle("/users", middleware.RequireRole(models.RoleAdmin, models.RoleManager)(adminMux))
	apiHandler.Handle("/users/", middleware.RequireRole(models.RoleAdmin, models.RoleManager)(adminMux))

	apiChain := middleware.Logger(
		middleware.Auth(r.auth)(
			apiHandler,
		),
	)

	r.mux.Handle("/api/", http.StripPrefix("/api", apiChain))
}

// handleLogin handles user login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var loginReq models.LoginRequest
	if err := api.DecodeAndValidate(req, &loginReq); err != nil {
		api.RespondError(w, err)
		return
	}

	token, user, err := r.auth.Login(req.Context(), loginReq.Username, loginReq.Password)
	if err != nil {
		api.RespondUnauthorized(w, "invalid credentials")
		return
	}

	response := struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}{
		Token: token,
		User:  *user,
	}

	api.RespondJSON(w, http.StatusOK, response)
}

// handleWebSocket handles WebSocket connections
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	clientTypeStr := req.URL.Query().Get("client_type")
	if clientTypeStr == "" {
		http.Error(w, "client_type is required", http.StatusBadRequest)
		return
	}

	clientType := websockets.ClientType(clientTypeStr)
	switch clientType {
	case websockets.ClientTypePOS, websockets.ClientTypeKDS, websockets.ClientTypeFloor, websockets.ClientTypeAdmin:
	default:
		http.Error(w, "invalid client_type", http.StatusBadRequest)
		return
	}

	conn, err := websockets.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		// The upgrader has already written the error to the response
		return
	}

	websockets.ServeWs(r.hub, conn, userID, clientType)
}
