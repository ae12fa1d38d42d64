package handler

import (
	"errors"
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ClientHandler handles counterparty HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClientRequest represents the create client request body
type CreateClientRequest struct {
	Name    string  `json:"name"`
	Country *string `json:"country,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	IBAN    *string `json:"iban,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        int32   `json:"id"`
	Name      string  `json:"name"`
	Country   *string `json:"country"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IBAN      *string `json:"iban"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

// CreateClient godoc
// @Summary Add client
// @Description Add a counterparty to the FOP's client directory
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateClientRequest true "Client"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.CreateClient(c.Request().Context(), userID, service.CreateClientInput{
		Name:    req.Name,
		Country: req.Country,
		Email:   req.Email,
		Phone:   req.Phone,
		IBAN:    req.IBAN,
		Notes:   req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return NewConflictError(c, "A client with this name already exists")
		}
		return handleServiceError(c, err, "create client")
	}

	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// ListClients godoc
// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search in name, country and email"
// @Success 200 {array} ClientResponse
// @Failure 401 {object} ProblemDetails
// @Router /clients [get]
func (h *ClientHandler) ListClients(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	clients, err := h.clientService.ListClients(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return handleServiceError(c, err, "list clients")
	}

	response := make([]ClientResponse, len(clients))
	for i, client := range clients {
		response[i] = toClientResponse(client)
	}
	return c.JSON(http.StatusOK, response)
}

func toClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		Country:   client.Country,
		Email:     client.Email,
		Phone:     client.Phone,
		IBAN:      client.IBAN,
		Notes:     client.Notes,
		CreatedAt: client.CreatedAt.Format(timeLayout),
	}
}
