package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"nebulaverse/config"
	"nebulaverse/database"
	"nebulaverse/friendship"
	"nebulaverse/handlers"
	"nebulaverse/utils"
	"nebulaverse/websocket"
)

func main() {
	if err := config.Load(os.Args[1:]); err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Cfg
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	dialect, err := database.DialectFor(cfg.DBDriver)
	if err != nil {
		logrus.Fatalf("Unsupported database driver: %v", err)
	}

	if err := database.Connect(cfg.DBDriver, cfg.DSN()); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CreateTables(database.DB, dialect); err != nil {
		logrus.Fatalf("Failed to create tables: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	engine := friendship.NewEngine(
		database.NewFriendStore(database.DB, dialect),
		friendship.WithNotifier(hub),
	)
	srv := handlers.NewServer(
		database.NewAccountStore(database.DB),
		database.NewPostStore(database.DB),
		engine,
		hub,
	)

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handlers.NewRouter(srv, hub.HandleWebSocket, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on %s", cfg.ServerAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Graceful shutdown failed: %v", err)
	}
}
