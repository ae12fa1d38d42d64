package service

import (
	"context"

	"github.com/fopilot/fopilot-backend/internal/domain"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// UpdateProfileInput holds the editable profile fields
type UpdateProfileInput struct {
	FirstName  string
	LastName   string
	MiddleName *string
	Phone      *string
}

// UpdateProfile updates the user's name and contact phone
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int32, input UpdateProfileInput) (*domain.User, error) {
	firstName, lastName, err := validateNames(input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	return s.userRepo.Update(ctx, userID, domain.UserUpdate{
		FirstName:  firstName,
		LastName:   lastName,
		MiddleName: trimOptional(input.MiddleName),
		Phone:      trimOptional(input.Phone),
	})
}
