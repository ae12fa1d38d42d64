package handler

import (
	"fmt"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const (
	// DefaultBodyLimit fits JSON bodies and a multipart upload of the largest document
	DefaultBodyLimit = "12M"

	base64UploadPath = "/api/v1/documents/upload"
)

// base64UploadBytes is the largest document encoded as base64 plus 1 MiB for the JSON envelope
const base64UploadBytes = 4*((domain.MaxDocumentSize+2)/3) + 1<<20

// Base64UploadBodyLimit is base64UploadBytes in echo's size notation, about 14M
var Base64UploadBodyLimit = fmt.Sprintf("%dK", (base64UploadBytes+1023)/1024)

// BodyLimit applies DefaultBodyLimit to every route except the base64 upload, which carries its own limit
func BodyLimit() echo.MiddlewareFunc {
	return echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == base64UploadPath
		},
		Limit: DefaultBodyLimit,
	})
}

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Income    *IncomeHandler
	Expense   *ExpenseHandler
	Tax       *TaxHandler
	Calendar  *CalendarHandler
	Dashboard *DashboardHandler
	Client    *ClientHandler
	Document  *DocumentHandler
	Currency  *CurrencyHandler
	Stats     *StatsHandler
	Legal     *LegalHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes. rateLimiter may be nil.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	registerDocsRoutes(e)

	// API version 1
	api := e.Group("/api/v1")

	// WebSocket authenticates with a query token, browsers cannot set headers on the handshake
	api.GET("/ws", h.WebSocket.HandleWS)

	// Everything below is protected
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		protected.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes
	auth := protected.Group("/auth")
	auth.GET("/me", h.Auth.Me)
	auth.PUT("/me", h.Profile.UpdateProfile)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/google", h.Auth.GoogleSignIn)
	auth.POST("/onboarding", h.Auth.CompleteOnboarding)
	auth.POST("/logout", h.Auth.Logout)

	// Income routes
	income := protected.Group("/income")
	income.GET("", h.Income.ListIncome)
	income.POST("", h.Income.CreateIncome)
	income.DELETE("/:id", h.Income.DeleteIncome)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.GET("", h.Expense.ListExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	// Tax routes
	taxes := protected.Group("/taxes")
	taxes.GET("/quarter", h.Tax.GetQuarter)
	taxes.POST("/calculate", h.Tax.Calculate)
	protected.GET("/forms/declaration/3-group/prefill", h.Tax.DeclarationPrefill)

	// Calendar routes
	calendar := protected.Group("/calendar")
	calendar.GET("", h.Calendar.GetYear)
	calendar.GET("/month", h.Calendar.GetMonth)

	// Dashboard routes
	protected.GET("/dashboard/summary", h.Dashboard.GetSummary)

	// Client routes
	clients := protected.Group("/clients")
	clients.GET("", h.Client.ListClients)
	clients.POST("", h.Client.CreateClient)

	// Document routes
	documents := protected.Group("/documents")
	documents.GET("", h.Document.ListDocuments)
	documents.POST("", h.Document.UploadMultipart)
	documents.POST("/upload", h.Document.UploadBase64, echomiddleware.BodyLimit(Base64UploadBodyLimit))
	documents.GET("/:id/download", h.Document.Download)
	documents.DELETE("/:id", h.Document.DeleteDocument)

	// Currency routes
	currency := protected.Group("/currency")
	currency.GET("/rates", h.Currency.GetRates)
	currency.GET("/convert", h.Currency.Convert)

	// Stats routes
	protected.GET("/stats", h.Stats.GetStats)

	// Legal digest routes
	protected.GET("/legal/monthly-digest", h.Legal.MonthlyDigest)
}

// registerDocsRoutes serves swagger UI and an OpenAPI 3 rendition of the same document
func registerDocsRoutes(e *echo.Echo) {
	e.GET("/swagger/openapi3.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
