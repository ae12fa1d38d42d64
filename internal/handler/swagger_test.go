package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertParameter(t *testing.T) {
	param := map[string]interface{}{
		"type":        "integer",
		"description": "Quarter 1-4",
		"name":        "quarter",
		"in":          "query",
		"required":    true,
		"enum":        []interface{}{1.0, 2.0, 3.0, 4.0},
	}

	got := convertParameter(param)

	assert.Equal(t, "quarter", got["name"])
	assert.Equal(t, "query", got["in"])
	assert.Equal(t, true, got["required"])
	assert.NotContains(t, got, "type")
	assert.Equal(t, map[string]interface{}{
		"type": "integer",
		"enum": []interface{}{1.0, 2.0, 3.0, 4.0},
	}, got["schema"])
}

func TestConvertToOpenAPI3(t *testing.T) {
	doc := `{
		"swagger": "2.0",
		"info": {"title": "FOPilot API", "version": "1.0"},
		"paths": {
			"/income": {
				"post": {
					"security": [{"BearerAuth": []}],
					"consumes": ["application/json"],
					"produces": ["application/json"],
					"parameters": [
						{"description": "Income", "name": "request", "in": "body", "required": true,
						 "schema": {"$ref": "#/definitions/handler.CreateIncomeRequest"}}
					],
					"responses": {
						"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.IncomeResponse"}},
						"204": {"description": "No Content"}
					}
				}
			},
			"/documents": {
				"post": {
					"consumes": ["multipart/form-data"],
					"parameters": [
						{"type": "file", "description": "Document", "name": "file", "in": "formData", "required": true},
						{"type": "integer", "description": "Year", "name": "year", "in": "formData"}
					],
					"responses": {"201": {"description": "Created"}}
				}
			},
			"/documents/{id}/download": {
				"get": {
					"produces": ["application/octet-stream"],
					"parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
					"responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
				}
			}
		},
		"definitions": {
			"handler.IncomeResponse": {"type": "object", "properties": {"id": {"type": "string"}}},
			"handler.QuarterTaxResponse": {"type": "object", "properties": {
				"obligation": {"$ref": "#/definitions/handler.ObligationResponse"}}}
		},
		"securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}}
	}`

	spec, err := ConvertToOpenAPI3([]byte(doc), DefaultAPIServers)
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "FOPilot API", spec.Info["title"])
	assert.Equal(t, DefaultAPIServers, spec.Servers)
	assert.Contains(t, spec.Components["securitySchemes"], "BearerAuth")

	raw, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "#/definitions/")

	var out struct {
		Paths map[string]map[string]struct {
			Parameters  []map[string]interface{} `json:"parameters"`
			RequestBody struct {
				Required bool                              `json:"required"`
				Content  map[string]map[string]interface{} `json:"content"`
			} `json:"requestBody"`
			Responses map[string]struct {
				Description string                            `json:"description"`
				Content     map[string]map[string]interface{} `json:"content"`
			} `json:"responses"`
		} `json:"paths"`
		Components struct {
			Schemas map[string]map[string]interface{} `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	income := out.Paths["/income"]["post"]
	assert.Empty(t, income.Parameters)
	assert.True(t, income.RequestBody.Required)
	assert.Equal(t,
		map[string]interface{}{"$ref": "#/components/schemas/handler.CreateIncomeRequest"},
		income.RequestBody.Content["application/json"]["schema"])
	assert.Equal(t,
		map[string]interface{}{"$ref": "#/components/schemas/handler.IncomeResponse"},
		income.Responses["201"].Content["application/json"]["schema"])
	assert.Equal(t, "No Content", income.Responses["204"].Description)
	assert.Empty(t, income.Responses["204"].Content)

	upload := out.Paths["/documents"]["post"]
	form := upload.RequestBody.Content["multipart/form-data"]["schema"].(map[string]interface{})
	props := form["properties"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"type": "string", "format": "binary", "description": "Document"}, props["file"])
	assert.Equal(t, []interface{}{"file"}, form["required"])

	download := out.Paths["/documents/{id}/download"]["get"]
	require.Len(t, download.Parameters, 1)
	assert.Equal(t, map[string]interface{}{"type": "string", "format": "uuid"}, download.Parameters[0]["schema"])
	assert.Equal(t,
		map[string]interface{}{"type": "string", "format": "binary"},
		download.Responses["200"].Content["application/octet-stream"]["schema"])

	quarter := out.Components.Schemas["handler.QuarterTaxResponse"]["properties"].(map[string]interface{})
	assert.Equal(t,
		map[string]interface{}{"$ref": "#/components/schemas/handler.ObligationResponse"},
		quarter["obligation"])
}

func TestConvertToOpenAPI3_InvalidDocument(t *testing.T) {
	_, err := ConvertToOpenAPI3([]byte("{not json"), DefaultAPIServers)
	assert.Error(t, err)
}

func TestServeOpenAPI3Spec(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/swagger/openapi3.json", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, ServeOpenAPI3Spec(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var spec struct {
		OpenAPI string                     `json:"openapi"`
		Info    map[string]interface{}     `json:"info"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "FOPilot API", spec.Info["title"])
	for _, path := range []string{"/auth/register", "/auth/google", "/income", "/legal/monthly-digest", "/ws"} {
		assert.Contains(t, spec.Paths, path)
	}
}

func TestDocsRoutes(t *testing.T) {
	e := echo.New()
	registerDocsRoutes(e)

	tests := []struct {
		path string
		want string
	}{
		{"/swagger/doc.json", `"swagger": "2.0"`},
		{"/swagger/openapi3.json", `"openapi":"3.0.3"`},
		{"/swagger/index.html", "swagger-ui"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
