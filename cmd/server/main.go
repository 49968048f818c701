// @title Mail Assignment API
// @version 1.0
// @description Rule-based email assignment backend
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"

	"mailassign-be/config"
	"mailassign-be/internal/database"
	"mailassign-be/internal/handlers"
	"mailassign-be/internal/middleware"
	"mailassign-be/internal/repository"
	"mailassign-be/internal/rotation"
	"mailassign-be/internal/rules"
	"mailassign-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "mailassign-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongodb.Disconnect()

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database)
	ruleRepo := repository.NewRuleRepository(mongodb.Database)
	assignRepo := repository.NewAssignmentRepository(mongodb.Database)
	emailRepo := repository.NewEmailRepository(mongodb.Database)
	statsRepo := repository.NewStatisticsRepository(mongodb.Database)

	// Initialize services
	rotationStore := newRotationStore(cfg, mongodb)
	directory := services.NewDirectoryService(userRepo)
	resolver := rules.NewResolver(directory, rotationStore)
	assignService := services.NewAssignmentService(ruleRepo, assignRepo, resolver, directory)

	// Start background assignment worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	services.StartAssignWorker(workerCtx, cfg.AssignInterval, emailRepo, assignService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo)
	ruleHandler := handlers.NewRuleHandler(ruleRepo)
	assignHandler := handlers.NewAssignmentHandler(emailRepo, assignRepo, assignService)
	statsHandler := handlers.NewStatisticsHandler(statsRepo)
	searchHandler := handlers.NewSearchHandler(ruleRepo)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":   "ok",
				"message":  "Mail Assignment API is running",
				"database": "MongoDB connected",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		// Auth protected routes
		protected.GET("/auth/me", authHandler.GetMe)
		protected.PUT("/auth/me/availability", authHandler.UpdateAvailability)

		// Rule routes
		protected.GET("/rules", ruleHandler.ListRules)
		protected.POST("/rules", ruleHandler.CreateRule)
		protected.GET("/rules/search", searchHandler.SearchRules)
		protected.POST("/rules/preview", assignHandler.PreviewAssignment)
		protected.GET("/rules/:ruleId", ruleHandler.GetRule)
		protected.PUT("/rules/:ruleId", ruleHandler.UpdateRule)
		protected.DELETE("/rules/:ruleId", ruleHandler.DeleteRule)

		// Email and assignment routes
		protected.POST("/emails", assignHandler.IngestEmail)
		protected.POST("/emails/:emailId/assign", assignHandler.ManualAssign)
		protected.GET("/assignments", assignHandler.ListAssignments)

		// Statistics
		protected.GET("/statistics", statsHandler.GetStatistics)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Connected to MongoDB: %s", cfg.MongoDBDatabase)
	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// newRotationStore picks the rotation backend. Redis serializes the
// round-robin counters across nodes; the Mongo store is the default and
// keeps state next to the rest of the data; memory is for local runs.
func newRotationStore(cfg *config.Config, mongodb *database.MongoDB) rotation.Store {
	switch cfg.RotationBackend {
	case "redis":
		if cfg.RedisAddr == "" {
			log.Fatal("ROTATION_BACKEND=redis requires REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return rotation.NewRedisStore(client)
	case "memory":
		return rotation.NewMemoryStore()
	default:
		return rotation.NewMongoStore(mongodb.Database)
	}
}
