package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/internal/auth"
	"github.com/opencatan/server/internal/config"
	"github.com/opencatan/server/internal/handler"
	"github.com/opencatan/server/internal/lobby"
	"github.com/opencatan/server/internal/logger"
	"github.com/opencatan/server/internal/middleware"
	"github.com/opencatan/server/internal/repository"
	"github.com/opencatan/server/internal/repository/postgres"
	"github.com/opencatan/server/internal/session"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Dur("turnTimeout", cfg.TurnTimeout).Msg("Config loaded")

	// Finished-game persistence is optional; without a database the
	// server runs fully in memory.
	var store repository.Store = repository.NoopStore{}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		pgStore, err := postgres.NewStore(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Database migration failed")
		}
		store = pgStore
		log.Info().Msg("Finished games will be persisted to Postgres")
	}

	tokenMgr := auth.NewTokenManager(cfg.TokenSecret)

	lobbies := lobby.NewManager()
	games := session.NewManager(session.Options{
		Store:        store,
		TurnTimeout:  cfg.TurnTimeout,
		AbandonAfter: cfg.AbandonAfter,
	})

	wsHub := handler.NewHub()
	wsHandler := handler.NewWSHandler(wsHub, lobbies, games, tokenMgr)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	// The whole game protocol runs over this one socket; identity via
	// ?token= query parameter (WebSocket can't send headers).
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Logger, middleware.CORS(cfg.FrontendURL), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	games.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
