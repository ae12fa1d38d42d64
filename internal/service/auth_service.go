package service

import (
	"context"
	"net/mail"
	"strings"
	"unicode"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// EnsureUser returns the local ID of a Firebase user, creating the user on first sight.
// The display name from the token is split into first and last name.
func (s *AuthService) EnsureUser(ctx context.Context, uid, email, name string) (int32, error) {
	firstName, lastName := splitDisplayName(name)
	user, err := s.userRepo.CreateOrGetByFirebaseUID(ctx, uid, email, firstName, lastName)
	if err != nil {
		log.Error().Err(err).Str("firebase_uid", uid).Msg("Failed to create or get user")
		return 0, err
	}
	return user.ID, nil
}

// GetMe retrieves the profile of the authenticated user
func (s *AuthService) GetMe(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Sign-up providers accepted by Register
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// RegistrationInput holds the profile sent right after a Firebase sign-up or Google sign-in.
// Credentials never reach this service, Firebase owns them.
type RegistrationInput struct {
	Provider  string
	UID       string // optional, must match the token when sent
	Email     string
	FirstName string
	LastName  string
	Phone     *string
}

// Register fills in the profile of the account the ID token belongs to.
// The user row already exists, the auth middleware creates it on first sight of the token.
// Repeating the call with the same account is an idempotent update.
func (s *AuthService) Register(ctx context.Context, userID int32, firebaseUID string, input RegistrationInput) (*domain.User, error) {
	if input.UID != "" && input.UID != firebaseUID {
		return nil, domain.ErrAccountMismatch
	}
	firstName, lastName, err := validateNames(input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Email != "" && !strings.EqualFold(user.Email, email) {
		return nil, domain.ErrAccountMismatch
	}

	phone := trimOptional(input.Phone)
	if phone == nil {
		phone = user.Phone
	}
	updated, err := s.userRepo.Update(ctx, userID, domain.UserUpdate{
		FirstName:  firstName,
		LastName:   lastName,
		MiddleName: user.MiddleName,
		Phone:      phone,
		Email:      &email,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int32("user_id", userID).Str("provider", input.Provider).Msg("User registered")
	return updated, nil
}

// OnboardingInput holds the onboarding wizard payload
type OnboardingInput struct {
	FirstName  string
	LastName   string
	MiddleName *string
	TaxID      string
	Email      string
	Phone      string
	TaxGroup   domain.TaxGroup
	PaysESV    bool
	KVEDs      []string
}

// CompleteOnboarding validates the wizard data and marks the user onboarded
func (s *AuthService) CompleteOnboarding(ctx context.Context, userID int32, input OnboardingInput) (*domain.User, error) {
	firstName, lastName, err := validateNames(input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	taxID := strings.TrimSpace(input.TaxID)
	if !isTaxID(taxID) {
		return nil, domain.ErrInvalidTaxID
	}
	if !input.TaxGroup.IsValid() {
		return nil, domain.ErrInvalidTaxGroup
	}
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	user, err := s.userRepo.CompleteOnboarding(ctx, userID, domain.Onboarding{
		FirstName:  firstName,
		LastName:   lastName,
		MiddleName: trimOptional(input.MiddleName),
		TaxID:      taxID,
		Email:      email,
		Phone:      strings.TrimSpace(input.Phone),
		TaxGroup:   input.TaxGroup,
		PaysESV:    input.PaysESV,
		KVEDs:      normalizeKVEDs(input.KVEDs),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int32("user_id", userID).Int("tax_group", int(input.TaxGroup)).Msg("User completed onboarding")
	return user, nil
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func validateNames(firstName, lastName string) (string, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return "", "", domain.ErrNameRequired
	}
	if len([]rune(firstName)) > domain.MaxNameLength || len([]rune(lastName)) > domain.MaxNameLength {
		return "", "", domain.ErrNameTooLong
	}
	return firstName, lastName, nil
}

func isTaxID(s string) bool {
	if len(s) != domain.TaxIDLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeKVEDs trims codes, drops blanks and duplicates, keeping the first occurrence
func normalizeKVEDs(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	result := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}
