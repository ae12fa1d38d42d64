package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/fopilot/fopilot-backend/internal/domain"
)

// ClientService handles the client directory
type ClientService struct {
	clientRepo domain.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo domain.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClientInput holds the input for adding a client
type CreateClientInput struct {
	Name    string
	Country *string
	Email   *string
	Phone   *string
	IBAN    *string
	Notes   *string
}

// CreateClient validates and stores a client
func (s *ClientService) CreateClient(ctx context.Context, userID int32, input CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len([]rune(name)) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	email := trimOptional(input.Email)
	if email != nil {
		if _, err := mail.ParseAddress(*email); err != nil {
			return nil, domain.ErrInvalidEmail
		}
	}

	return s.clientRepo.Create(ctx, &domain.Client{
		UserID:  userID,
		Name:    name,
		Country: trimOptional(input.Country),
		Email:   email,
		Phone:   trimOptional(input.Phone),
		IBAN:    normalizeIBAN(input.IBAN),
		Notes:   trimOptional(input.Notes),
	})
}

// ListClients returns the user's clients, optionally filtered by a search term
func (s *ClientService) ListClients(ctx context.Context, userID int32, search string) ([]*domain.Client, error) {
	return s.clientRepo.List(ctx, userID, search)
}

// normalizeIBAN upper-cases the account number and removes grouping spaces
func normalizeIBAN(iban *string) *string {
	if iban == nil {
		return nil
	}
	v := strings.ToUpper(strings.Join(strings.Fields(*iban), ""))
	if v == "" {
		return nil
	}
	return &v
}
