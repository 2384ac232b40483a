package main

import (
	"log"
	"os"

	_ "github.com/marcnyamweya/TaxApi/api/swagger" // swagger docs
	"github.com/marcnyamweya/TaxApi/internal/database"
	"github.com/marcnyamweya/TaxApi/internal/handler"
	"github.com/marcnyamweya/TaxApi/internal/middleware"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/internal/service"
	"github.com/marcnyamweya/TaxApi/internal/taxcalc"
	"github.com/marcnyamweya/TaxApi/internal/websocket"
	"github.com/marcnyamweya/TaxApi/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Tax Workflow Processing API
// @version         1.0
// @description     Tax processing backend: client registration, tax calculation (personal income, corporate, VAT), workflow state machine, and full audit logging.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Jurisdiction rule set for the calculation engine
	jurisdiction := getenv("TAX_JURISDICTION", "US")
	rules := taxcalc.RuleSetFor(jurisdiction)
	log.Printf("Tax rule set: %s", rules.Name)

	// Live audit feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	clientRepo := repository.NewClientRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	engine := taxcalc.NewEngine(rules)
	machine := workflow.NewMachine()

	auditService := service.NewAuditService(auditRepo, submissionRepo, wsHub)
	clientService := service.NewClientService(clientRepo, auditRepo, txManager, wsHub)
	submissionService := service.NewSubmissionService(submissionRepo, clientRepo, auditRepo, txManager, engine, machine, wsHub)

	clientHandler := handler.NewClientHandler(clientService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, auditService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.ErrorBoundary(auditService))
	router.Use(middleware.ActorIdentity())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Audit live feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	clientHandler.RegisterRoutes(router.Group(""))
	submissionHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
