package main

import (
	"fmt"
	"log"

	analyticsHandlers "github.com/architect/commerce-analytics/internal/analytics/handlers"
	"github.com/architect/commerce-analytics/internal/common/database"
	commonHandlers "github.com/architect/commerce-analytics/internal/common/handlers"
	"github.com/architect/commerce-analytics/internal/common/health"
	"github.com/architect/commerce-analytics/internal/common/middleware"
	datasetHandlers "github.com/architect/commerce-analytics/internal/dataset/handlers"
	"github.com/architect/commerce-analytics/internal/dataset/repository"
	datasetServices "github.com/architect/commerce-analytics/internal/dataset/services"
	"github.com/architect/commerce-analytics/pkg/config"
	"github.com/architect/commerce-analytics/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (SQLite for development, PostgreSQL for production)
	if err := database.InitWithType(cfg.Database.Type, cfg.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := repository.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	analyticsHandlers.Configure(
		cfg.Analytics.MinSupport,
		cfg.Analytics.MinConfidence,
		cfg.Analytics.MaxProducts,
	)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	healthChecker := health.NewHealthChecker(database.GetDB(), version, datasetServices.DatasetCount)
	healthHandler := commonHandlers.NewHealthHandler(healthChecker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/health/metrics", healthHandler.Metrics)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthRequired(cfg.Dashboard.Password))
	{
		datasets := v1.Group("/datasets")
		{
			datasets.POST("", datasetHandlers.UploadDataset)
			datasets.POST("/sample", datasetHandlers.GenerateSample)
			datasets.GET("", datasetHandlers.ListDatasets)
			datasets.GET("/:id/summary", datasetHandlers.GetSummary)
			datasets.DELETE("/:id", datasetHandlers.DeleteDataset)

			analytics := datasets.Group("/:id/analytics")
			{
				analytics.GET("/rfm", analyticsHandlers.GetRFM)
				analytics.GET("/segments", analyticsHandlers.GetSegments)
				analytics.GET("/clv", analyticsHandlers.GetCLV)
				analytics.GET("/cohorts", analyticsHandlers.GetCohorts)
				analytics.GET("/churn", analyticsHandlers.GetChurnRisk)
				analytics.GET("/journeys", analyticsHandlers.GetJourneys)
				analytics.GET("/insights", analyticsHandlers.GetInsights)
				analytics.GET("/basket", analyticsHandlers.GetBasketAnalysis)
				analytics.GET("/recommendations/:customer", analyticsHandlers.GetRecommendations)
			}

			sales := datasets.Group("/:id/sales")
			{
				sales.GET("/metrics", analyticsHandlers.GetSalesMetrics)
				sales.GET("/trends", analyticsHandlers.GetMonthlyTrends)
				sales.GET("/products", analyticsHandlers.GetProductPerformance)
				sales.GET("/seasonal", analyticsHandlers.GetSeasonalAnalysis)
				sales.GET("/acquisition", analyticsHandlers.GetAcquisitionTrends)
				sales.GET("/top-customers", analyticsHandlers.GetTopCustomers)
				sales.GET("/pricing", analyticsHandlers.GetPricingImpact)
				sales.GET("/forecast", analyticsHandlers.GetRevenueForecast)
			}

			geo := datasets.Group("/:id/geo")
			{
				geo.GET("/coverage", analyticsHandlers.GetGeoCoverage)
				geo.GET("/performance", analyticsHandlers.GetRegionalPerformance)
				geo.GET("/segments", analyticsHandlers.GetGeoSegments)
				geo.GET("/trends", analyticsHandlers.GetGeoTrends)
				geo.GET("/penetration", analyticsHandlers.GetMarketPenetration)
				geo.GET("/insights", analyticsHandlers.GetGeoInsights)
				geo.GET("/recommendations", analyticsHandlers.GetGeoRecommendations)
			}
		}
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting dashboard server",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.String("db", cfg.Database.Type),
	)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
