package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-api/internal/api"
	"membership-api/internal/config"
	"membership-api/internal/db"
	"membership-api/internal/history"
	"membership-api/internal/ingestion"
	"membership-api/internal/middleware"
	"membership-api/internal/repository"
	"membership-api/internal/vista"

	"github.com/rs/cors"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	dbConfig, srvConfig, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(dbConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	personRepo := repository.NewPersonRepository(conn.Pool)
	eventRepo := repository.NewEventRepository(conn.Pool)
	committeeRepo := repository.NewSubCommitteeRepository(conn.Pool)
	addressRepo := repository.NewVotingAddressRepository(conn.Pool)
	savedListRepo := repository.NewSavedListRepository(conn.Pool)
	commRepo := repository.NewCommunicationRepository(conn.Pool)
	lookupRepo := repository.NewLookupRepository(conn.Pool)
	vistaRepo := repository.NewVistaRepository(conn.Pool)
	historyRepo := repository.NewHistoryRepository(conn.Pool)
	actionRepo := repository.NewRecordActionRepository(conn.Pool)

	// Create services
	vistaSvc := vista.NewService(vistaRepo, vista.NewMemorySessionStore())
	historySvc := history.NewService(historyRepo, actionRepo)
	ingestSvc := ingestion.NewService(personRepo, addressRepo, lookupRepo, historySvc)

	// Create API server
	apiServer := api.NewServer(
		personRepo,
		eventRepo,
		committeeRepo,
		addressRepo,
		savedListRepo,
		commRepo,
		lookupRepo,
		vistaRepo,
		vistaSvc,
		historySvc,
		ingestSvc,
	)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   srvConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			middleware.AuthMiddleware(apiServer.Routes()),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         srvConfig.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting membership API server on %s", srvConfig.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
