package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fopilot/fopilot-backend/internal/config"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/handler"
	"github.com/fopilot/fopilot-backend/internal/integrations/nbu"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/notify/email"
	"github.com/fopilot/fopilot-backend/internal/repository/postgres"
	"github.com/fopilot/fopilot-backend/internal/repository/storage"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title FOPilot API
// @version 1.0
// @description Tax bookkeeping API for Ukrainian sole proprietors (FOP): income and expenses, single tax and ESV, deadlines, documents and NBU exchange rates.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Firebase ID token as "Bearer <token>"
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load time zone")
	}

	rates, err := config.LoadTaxRates(cfg.TaxRatesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tax rates")
	}
	log.Info().Str("esv_rate", rates.ESVRate.String()).Int("groups", len(rates.Groups)).Msg("Tax rates loaded")

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	legalRepo := postgres.NewLegalUpdateRepository(pool)

	// Document storage is optional
	var documentStore storage.DocumentStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3DocumentStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize document storage")
		}
		documentStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Document storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, document uploads are disabled")
	}

	// Reminder emails are optional
	var reminderSender domain.ReminderSender
	if cfg.SMTP.Enabled() {
		reminderSender = email.NewSender(cfg.SMTP, log.Logger)
	} else {
		log.Warn().Msg("SMTP not configured, reminders are sent over WebSocket only")
	}

	hub := websocket.NewHub()

	// Initialize services
	scheduler := service.NewDeadlineScheduler(time.Now, loc)
	calculator := service.NewObligationCalculator(rates)
	authService := service.NewAuthService(userRepo)
	profileService := service.NewProfileService(userRepo)
	incomeService := service.NewIncomeService(incomeRepo, hub, loc)
	expenseService := service.NewExpenseService(expenseRepo, hub, loc)
	taxService := service.NewTaxService(userRepo, incomeRepo, calculator, scheduler)
	calendarService := service.NewCalendarService(scheduler)
	dashboardService := service.NewDashboardService(userRepo, incomeRepo, expenseRepo, taxService, calculator, scheduler)
	clientService := service.NewClientService(clientRepo)
	documentService := service.NewDocumentService(documentRepo, documentStore, hub)
	currencyService := service.NewCurrencyService(nbu.NewClient(cfg.NBU, log.Logger), cfg.NBU.CacheTTL)
	statsService := service.NewStatsService(userRepo, incomeRepo, expenseRepo, scheduler)
	legalService := service.NewLegalService(legalRepo, scheduler)

	// The legislation digest is curated in a YAML file
	if cfg.LegalDigestFile != "" {
		updates, err := config.LoadLegalDigest(cfg.LegalDigestFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load legal digest")
		}
		if _, err := legalService.Import(context.Background(), updates); err != nil {
			log.Fatal().Err(err).Msg("Failed to import legal digest")
		}
	}

	reminderWorker, err := service.NewReminderWorker(userRepo, scheduler, hub, reminderSender, log.Logger, service.ReminderWorkerConfig{
		Schedule:  cfg.Reminder.Cron,
		DaysAhead: cfg.Reminder.DaysAhead,
		Location:  loc,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create reminder worker")
	}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.FirebaseProjectID, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, rates),
		Profile:   handler.NewProfileHandler(profileService, rates),
		Income:    handler.NewIncomeHandler(incomeService),
		Expense:   handler.NewExpenseHandler(expenseService),
		Tax:       handler.NewTaxHandler(taxService),
		Calendar:  handler.NewCalendarHandler(calendarService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Client:    handler.NewClientHandler(clientService),
		Document:  handler.NewDocumentHandler(documentService),
		Currency:  handler.NewCurrencyHandler(currencyService),
		Stats:     handler.NewStatsHandler(statsService),
		Legal:     handler.NewLegalHandler(legalService),
		WebSocket: handler.NewWebSocketHandler(hub, websocket.NewTokenValidator(authMiddleware), cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		// Swagger UI runs inline scripts
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/swagger/")
		},
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Request body limits, the base64 upload route is larger
	e.Use(handler.BodyLimit())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if err := reminderWorker.Start(workerCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start reminder worker")
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	reminderWorker.Stop()
	hub.CloseAll()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
