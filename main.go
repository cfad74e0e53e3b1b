package main

import (
	"log"
	"os"

	"github.com/Devesh-Pathak7/Splite-Eat/config"
	"github.com/Devesh-Pathak7/Splite-Eat/middlewares"
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/Devesh-Pathak7/Splite-Eat/router"
	"github.com/Devesh-Pathak7/Splite-Eat/services"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	if err := config.Seed(db); err != nil {
		utils.ErrorLogger.Printf("Seed failed: %v", err)
	}

	clock := utils.RealClock{}
	hub := realtime.NewHub()

	coordinator := services.NewHalfOrderService(db, cfg, clock, hub)

	scheduler := services.NewExpiryScheduler(coordinator, db, cfg, clock, hub)
	scheduler.Start()
	defer scheduler.Stop()

	r := router.SetupRouter(db, coordinator, clock, hub)

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Table{},
		&models.MenuItem{},
		&models.HalfOrderSession{},
		&models.PairedOrder{},
		&models.Order{},
		&models.AuditLog{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
