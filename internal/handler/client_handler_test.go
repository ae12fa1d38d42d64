package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/fopilot/fopilot-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestClient(t *testing.T, e *echo.Echo, handler *ClientHandler, userID int32, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := newJSONRequest(http.MethodPost, "/api/v1/clients", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)
	require.NoError(t, handler.CreateClient(c))
	return rec
}

func TestCreateClient(t *testing.T) {
	e := echo.New()
	handler := NewClientHandler(service.NewClientService(testutil.NewMockClientRepository()))

	rec := createTestClient(t, e, handler, 1, `{"name":"Acme GmbH","country":"Germany","iban":"de89 3704 0044 0532 0130 00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var response ClientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Acme GmbH", response.Name)
	require.NotNil(t, response.IBAN)
	assert.Equal(t, "DE89370400440532013000", *response.IBAN)
	assert.Nil(t, response.Email)
}

func TestCreateClient_Errors(t *testing.T) {
	e := echo.New()
	handler := NewClientHandler(service.NewClientService(testutil.NewMockClientRepository()))

	rec := createTestClient(t, e, handler, 1, `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = createTestClient(t, e, handler, 1, `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = createTestClient(t, e, handler, 1, `{"name":"Acme"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Names are unique per user only
	rec = createTestClient(t, e, handler, 2, `{"name":"Acme"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListClients_Search(t *testing.T) {
	e := echo.New()
	handler := NewClientHandler(service.NewClientService(testutil.NewMockClientRepository()))
	createTestClient(t, e, handler, 1, `{"name":"Zeta LLC","country":"Poland"}`)
	createTestClient(t, e, handler, 1, `{"name":"Acme GmbH","country":"Germany"}`)
	createTestClient(t, e, handler, 1, `{"name":"Beta Ltd","email":"billing@beta.co.uk"}`)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all sorted by name", "", []string{"Acme GmbH", "Beta Ltd", "Zeta LLC"}},
		{"by country", "?q=poland", []string{"Zeta LLC"}},
		{"by email", "?q=BILLING", []string{"Beta Ltd"}},
		{"no match", "?q=nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupAuthContext(c, 1)

			require.NoError(t, handler.ListClients(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var response []ClientResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			names := make([]string, len(response))
			for i, client := range response {
				names[i] = client.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
