package main

import (
	"net/http"
	"os"
	"time"

	"table-order-api/config"
	"table-order-api/handlers"
	"table-order-api/livequery"
	"table-order-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	config.Load()

	gin.SetMode(config.C.GinMode)
	if config.C.GinMode == gin.DebugMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	config.InitDB()
	livequery.Init(handlers.LoadOrders)

	if err := os.MkdirAll(config.C.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", config.C.UploadDir).Msg("failed to create upload dir")
	}

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Table Order Management API",
			"version": "1.0.0",
		})
	})

	// Uploaded staff images
	r.Static("/uploads", config.C.UploadDir)

	routes.SetupRoutes(r)

	log.Info().Str("port", config.C.Port).Msg("server starting")
	if err := r.Run(":" + config.C.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
