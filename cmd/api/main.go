package main

import (
	"log"
	"os"

	"github.com/careops/dietary-golang/internal/database"
	"github.com/careops/dietary-golang/internal/handlers"
	"github.com/careops/dietary-golang/internal/routes"
	"github.com/careops/dietary-golang/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Schema & Seed ---
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run schema migration: %v", err)
	}
	if err := database.SeedDefaultManager(db); err != nil {
		log.Fatalf("Failed to seed default manager: %v", err)
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Scheduler: scheduler.NewEngine(db),
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Printf("Starting Dietary API server on %s...", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
