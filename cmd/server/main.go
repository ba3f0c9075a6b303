package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spicetable/pos-service/internal/api/handler"
	"github.com/spicetable/pos-service/internal/config"
	"github.com/spicetable/pos-service/internal/db"
	"github.com/spicetable/pos-service/internal/db/repository"
	"github.com/spicetable/pos-service/internal/router"
	"github.com/spicetable/pos-service/internal/service"
	"github.com/spicetable/pos-service/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize WebSocket hub
	hub := websockets.NewHub()
	go hub.Run()
	notifier := websockets.NewEventPublisher(hub)

	// Wire repositories and services
	repos := repository.NewRepositories(database)
	settings := service.SettingsFromConfig(cfg.POS)

	authService := service.NewAuthService(repos.User, service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	})
	turnoverService := service.NewTurnoverService(repos.Turnover, notifier, settings)
	orderService := service.NewOrderService(repos.Order, repos.Menu, repos.Station, repos.Payment, turnoverService, notifier, settings)
	ticketService := service.NewTicketService(repos.Ticket, notifier)
	menuService := service.NewMenuService(repos.Menu, repos.Station)
	stationService := service.NewStationService(repos.Station)
	receiptService := service.NewReceiptService(settings)

	// Initialize router
	r := router.New(authService, hub, router.Handlers{
		Order:    handler.NewOrderHandler(orderService, receiptService),
		Ticket:   handler.NewTicketHandler(ticketService, receiptService),
		Turnover: handler.NewTurnoverHandler(turnoverService),
		Menu:     handler.NewMenuHandler(menuService),
		Station:  handler.NewStationHandler(stationService),
		User:     handler.NewUserHandler(authService),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
