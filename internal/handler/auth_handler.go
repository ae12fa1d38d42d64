package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	rates       *domain.TaxRates
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, rates *domain.TaxRates) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		rates:       rates,
	}
}

// UserResponse represents a user profile in API responses
type UserResponse struct {
	ID                  int32    `json:"id"`
	UID                 string   `json:"uid"`
	Email               string   `json:"email"`
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	MiddleName          *string  `json:"middle_name"`
	Phone               *string  `json:"phone"`
	TaxID               *string  `json:"tax_id"`
	FOPGroup            int      `json:"fop_group"`
	TaxRate             string   `json:"tax_rate"`
	PaysESV             bool     `json:"pays_esv"`
	KVEDs               []string `json:"kveds"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	CreatedAt           string   `json:"created_at"`
}

// OnboardingRequest represents the onboarding wizard payload
type OnboardingRequest struct {
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	MiddleName    *string  `json:"middleName,omitempty"`
	TaxID         string   `json:"taxId"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	TaxGroup      int      `json:"taxGroup"`
	PaysESV       bool     `json:"paysESV"`
	SelectedKVEDs []string `json:"selectedKveds"`
}

// RegisterRequest is the profile sent after an email/password sign-up with Firebase.
// A password field, if a client still sends one, is ignored.
type RegisterRequest struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// GoogleSignInRequest is the profile taken from a Google sign-in popup
type GoogleSignInRequest struct {
	UID       string  `json:"uid"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// Register godoc
// @Summary Register a profile
// @Description Store the name, email and phone of an account just created with Firebase email/password sign-up
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterRequest true "Profile of the new account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(c.Request().Context(), userID, middleware.GetFirebaseUID(c), service.RegistrationInput{
		Provider:  service.ProviderPassword,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return handleServiceError(c, err, "register user")
	}

	return c.JSON(http.StatusCreated, toUserResponse(user, h.rates))
}

// GoogleSignIn godoc
// @Summary Sign in with Google
// @Description Create or update the profile of an account signed in through Google
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoogleSignInRequest true "Google profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /auth/google [post]
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req GoogleSignInRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(c.Request().Context(), userID, middleware.GetFirebaseUID(c), service.RegistrationInput{
		Provider:  service.ProviderGoogle,
		UID:       req.UID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return handleServiceError(c, err, "sign in with google")
	}

	return c.JSON(http.StatusOK, toUserResponse(user, h.rates))
}

// Me godoc
// @Summary Get current user
// @Description Profile of the signed-in FOP, created from the ID token on first sight
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetMe(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user, h.rates))
}

// CompleteOnboarding godoc
// @Summary Complete onboarding
// @Description Store the onboarding wizard answers: tax ID, group, ESV and KVED codes
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OnboardingRequest true "Onboarding answers"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/onboarding [post]
func (h *AuthHandler) CompleteOnboarding(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req OnboardingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.CompleteOnboarding(c.Request().Context(), userID, service.OnboardingInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		TaxID:      req.TaxID,
		Email:      req.Email,
		Phone:      req.Phone,
		TaxGroup:   domain.TaxGroup(req.TaxGroup),
		PaysESV:    req.PaysESV,
		KVEDs:      req.SelectedKVEDs,
	})
	if err != nil {
		return handleServiceError(c, err, "complete onboarding")
	}

	return c.JSON(http.StatusOK, toUserResponse(user, h.rates))
}

// Logout godoc
// @Summary Log out
// @Description Sessions live in the client's ID token, there is nothing to revoke on the server
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	log.Info().Str("firebase_uid", middleware.GetFirebaseUID(c)).Msg("User logged out")
	return c.NoContent(http.StatusNoContent)
}

func toUserResponse(user *domain.User, rates *domain.TaxRates) UserResponse {
	kveds := user.KVEDs
	if kveds == nil {
		kveds = []string{}
	}
	taxRate := "0"
	if rates != nil {
		taxRate = rates.RateFor(user.FOPGroup).String()
	}
	return UserResponse{
		ID:                  user.ID,
		UID:                 user.FirebaseUID,
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		MiddleName:          user.MiddleName,
		Phone:               user.Phone,
		TaxID:               user.TaxID,
		FOPGroup:            int(user.FOPGroup),
		TaxRate:             taxRate,
		PaysESV:             user.PaysESV,
		KVEDs:               kveds,
		OnboardingCompleted: user.OnboardingCompleted,
		CreatedAt:           user.CreatedAt.Format(timeLayout),
	}
}
