package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orilam/kniyot/internal/database"
	"github.com/orilam/kniyot/internal/logging"
	"github.com/orilam/kniyot/internal/server"
)

func main() {
	port := os.Getenv("KNIYOT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KNIYOT_DB_PATH")
	if dbPath == "" {
		dbPath = "kniyot.db"
	}

	logger := logging.Setup(os.Getenv("KNIYOT_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		AdminTokenHash: os.Getenv("KNIYOT_ADMIN_TOKEN_HASH"),
	}
	if cfg.AdminTokenHash == "" {
		logger.Warn("KNIYOT_ADMIN_TOKEN_HASH not set, admin API disabled")
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("kniyotd running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
