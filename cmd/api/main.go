package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wms-platform/fulfillment-service/pkg/kafka"
	"github.com/wms-platform/fulfillment-service/pkg/logging"
	"github.com/wms-platform/fulfillment-service/pkg/metrics"
	"github.com/wms-platform/fulfillment-service/pkg/middleware"
	"github.com/wms-platform/fulfillment-service/pkg/mongodb"

	"github.com/wms-platform/fulfillment-service/internal/application"
	"github.com/wms-platform/fulfillment-service/internal/infrastructure/clients"
	kafkaInfra "github.com/wms-platform/fulfillment-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/fulfillment-service/internal/infrastructure/mongodb"
)

const serviceName = "fulfillment-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting fulfillment-service API")

	config := loadConfig()
	ctx := context.Background()

	// Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer
	kafkaProducer := kafka.NewProducer(config.Kafka)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Repositories
	orderRepo := mongoRepo.NewOrderRepository(mongoClient.Database())
	waveRepo := mongoRepo.NewWaveRepository(mongoClient.Database())
	strategyRepo := mongoRepo.NewStrategyRepository(mongoClient.Database())
	pickTaskRepo := mongoRepo.NewPickTaskRepository(mongoClient.Database())

	// External allocation engine
	allocationEngine := clients.NewAllocationEngineClient(config.AllocationEngineURL, logger)

	// Event publisher
	publisher := kafkaInfra.NewEventPublisher(kafkaProducer, logger)

	// Application services
	orderService := application.NewOrderApplicationService(
		orderRepo, strategyRepo, pickTaskRepo, allocationEngine, publisher, m, logger)
	bulkService := application.NewBulkOperationService(orderRepo, orderService, m, logger)
	waveBundler := application.NewWaveBundler(orderRepo, waveRepo, strategyRepo, publisher, logger)
	waveExecution := application.NewWaveExecutionService(
		waveRepo, orderRepo, pickTaskRepo, orderService, publisher, logger)

	// Gin router with the standard middleware chain
	router := gin.New()
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(middleware.NoRoute())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")

	orders := apiV1.Group("/orders")
	{
		orders.POST("", createOrderHandler(orderService, logger))
		orders.GET("/:orderId", getOrderHandler(orderService, logger))
		orders.GET("/status/:status", listOrdersByStatusHandler(orderService, logger))
		orders.GET("/:orderId/strategy", resolveStrategyHandler(orderService, logger))
		orders.POST("/:orderId/verify", verifyOrderHandler(orderService, logger))
		orders.POST("/:orderId/allocate", allocateOrderHandler(orderService, logger))
		orders.POST("/:orderId/accept-shortages", acceptShortagesHandler(orderService, logger))
		orders.POST("/:orderId/release", releaseOrderHandler(orderService, logger))
		orders.POST("/:orderId/cancel", cancelOrderHandler(orderService, logger))
		orders.POST("/:orderId/ship", shipOrderHandler(orderService, logger))
		orders.POST("/:orderId/lines/:lineNo/progress", lineProgressHandler(orderService, logger))
		orders.POST("/bulk/allocate", bulkAllocateHandler(bulkService, logger))
		orders.POST("/bulk/release", bulkReleaseHandler(bulkService, logger))
		orders.POST("/bulk/cancel", bulkCancelHandler(bulkService, logger))
	}

	waves := apiV1.Group("/waves")
	{
		waves.POST("/simulate", simulateWaveHandler(waveBundler, logger))
		waves.POST("", commitWaveHandler(waveBundler, logger))
		waves.GET("", listWavesHandler(waveExecution, logger))
		waves.GET("/:waveId", getWaveHandler(waveExecution, logger))
		waves.POST("/:waveId/orders", addOrdersToWaveHandler(waveExecution, logger))
		waves.POST("/:waveId/allocate", allocateWaveHandler(waveExecution, logger))
		waves.POST("/:waveId/release", releaseWaveHandler(waveExecution, logger))
		waves.POST("/:waveId/complete", completeWaveHandler(waveExecution, logger))
		waves.POST("/:waveId/cancel", cancelWaveHandler(waveExecution, logger))
	}

	apiV1.GET("/strategies", listStrategiesHandler(orderService, logger))

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr          string
	AllocationEngineURL string
	CORSOrigins         []string
	MongoDB             *mongodb.Config
	Kafka               *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:          getEnv("SERVER_ADDR", ":8010"),
		AllocationEngineURL: getEnv("ALLOCATION_ENGINE_URL", "http://localhost:8020"),
		CORSOrigins:         []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "fulfillment_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
