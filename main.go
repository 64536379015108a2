package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taskloop/api/config"
	"taskloop/api/database"
	"taskloop/api/store"
	"taskloop/api/utils"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	// Refuses to start without JWT_SECRET_KEY set.
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL database (users and todos) ---
	dbClient, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse (activity events), when configured ---
	var activityStore *store.ActivityStore
	if cfg.ClickHouse.Host != "" {
		chClient, err := database.NewClickHouseDB(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		defer chClient.Close()
		activityStore = store.NewActivityStore(chClient)
	} else {
		log.Println("CLICKHOUSE_HOST not set; activity tracking disabled.")
	}

	// --- Initialize stores and token manager ---
	userStore := store.NewUserStore(dbClient.DB)
	todoStore := store.NewTodoStore(dbClient.DB)
	tokens := utils.NewTokenManager(cfg.JWTSecret)

	r := newRouter(cfg, userStore, todoStore, activityStore, tokens)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Taskloop API server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
