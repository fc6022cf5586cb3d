package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"physioplan/internal/config"
	"physioplan/internal/gateways"
	"physioplan/internal/handlers"
	"physioplan/internal/middleware"
	"physioplan/internal/pdf"
	"physioplan/internal/repositories"
	"physioplan/internal/routes"
	"physioplan/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "physioplan/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to connect to the database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close the database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	metaRepo := repositories.NewMetaDataRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	authService := services.NewAuthService(time.Duration(cfg.Auth.AccessTTLMinutes) * time.Minute)

	ticketStore := services.NewMemoryTicketStore(cfg.Auth.OTPStoreCapacity)
	verificationService := services.NewVerificationService(
		ticketStore,
		emailService,
		time.Duration(cfg.Auth.OTPCodeTTLMinutes)*time.Minute,
	)

	userService := services.NewUserService(userRepo, emailService, authService, verificationService)
	submissionQueries := services.NewSubmissionQueries(submissionRepo)
	planService := services.NewPlanService(planRepo)
	metaService := services.NewMetaDataService(metaRepo)

	// === Gateways ===
	gatewayTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	assessmentClient := gateways.NewAssessmentClient(cfg.AI.AssessmentURL, gatewayTimeout)
	recommenderClient := gateways.NewRecommenderClient(cfg.AI.RecommenderURL, gatewayTimeout)

	// Telegram alerts for urgent triage (optional)
	var notifier services.TriageNotifier
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		notifier, err = services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("telegram notifier disabled: %v", err)
			notifier = nil
		}
	}

	intakeService := services.NewIntakeService(
		submissionRepo,
		userRepo,
		planService,
		assessmentClient,
		recommenderClient,
		notifier,
	)

	pdfGen := pdf.NewPlanGenerator(cfg.Files.RootDir)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, time.Duration(cfg.Auth.RefreshTTLDays)*24*time.Hour)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	userHandler := handlers.NewUserHandler(userService)
	intakeHandler := handlers.NewIntakeHandler(intakeService, submissionQueries, cfg.Files.RootDir)
	planHandler := handlers.NewPlanHandler(planService, submissionQueries, pdfGen)
	metaHandler := handlers.NewMetaDataHandler(metaService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		verifyHandler,
		userHandler,
		intakeHandler,
		planHandler,
		metaHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("failed to start the server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
