package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"club-hub/auth"
	"club-hub/infrastructure/rest"
	"club-hub/infrastructure/ws"
	"club-hub/internal"
	"club-hub/repositories"
	"club-hub/runtime"
	"club-hub/runtime/workers"
	"club-hub/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories
	clubRepo := repositories.NewClubRepository(db)
	actorRepo := repositories.NewActorRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	chatRepo := repositories.NewChatLogRepository(db, log)

	// 4. Broadcast engine & supervision
	registry := runtime.NewRegistry()
	broadcaster, err := runtime.NewBroadcaster(log, registry,
		clubRepo, chatRepo, actorRepo,
		config.BufferSize, config.ProfileCacheSize, config.SinkTimeout)
	if err != nil {
		return fmt.Errorf("broadcaster setup failed: %w", err)
	}
	health := workers.NewHealthWorker(log, config.HealthInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(broadcaster, health)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sup.Run(ctx)

	// 5. HTTP + websocket server
	tokens := auth.NewTokenManager([]byte(config.JWTSecret), config.AuthTokenDuration)
	middleware := auth.NewMiddleware(tokens, actorRepo, log)
	service := services.NewClubService(clubRepo, actorRepo, membershipRepo, chatRepo)
	realtime := ws.NewHandler(log, broadcaster, config.ConnectionBufferSize,
		strings.Split(config.FrontendURLs, ","))
	router := rest.NewRouter(log, service, middleware, health, realtime)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
