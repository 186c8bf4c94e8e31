package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lengolf/venue-pos/config"
	"github.com/lengolf/venue-pos/database"
	"github.com/lengolf/venue-pos/middlewares"
	"github.com/lengolf/venue-pos/router"
	"github.com/lengolf/venue-pos/services"
	"github.com/lengolf/venue-pos/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		if err := database.SeedAdmin(db, email, os.Getenv("ADMIN_PASSWORD"), os.Getenv("ADMIN_PIN")); err != nil {
			utils.ErrorLogger.Printf("Failed to seed admin account: %v", err)
		}
	}

	// Background dry-run pass keeps an eye on the reconciliation backlog.
	monitor := services.NewReconciliationMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
