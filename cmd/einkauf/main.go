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

	"github.com/dstrobel/einkauf/internal/database"
	"github.com/dstrobel/einkauf/internal/logging"
	"github.com/dstrobel/einkauf/internal/server"
)

func main() {
	port := os.Getenv("EINKAUF_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("EINKAUF_DB_PATH")
	if dbPath == "" {
		dbPath = "einkauf.db"
	}

	logger := logging.Setup(os.Getenv("EINKAUF_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)

	// Hourly cleanup of expired sessions and stale rate-limit entries
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Einkauf running at http://localhost:%s\n", port)
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
