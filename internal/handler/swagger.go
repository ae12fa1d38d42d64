package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fopilot/fopilot-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the OpenAPI 3.0 document served next to the generated swagger 2.0 one
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server is an OpenAPI 3.0 server entry
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DefaultAPIServers are listed in the served OpenAPI 3.0 document
var DefaultAPIServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local"},
	{URL: "https://api.fopilot.app/api/v1", Description: "Production"},
}

const (
	definitionsPrefix = "#/definitions/"
	schemasPrefix     = "#/components/schemas/"
)

// rewriteRefs points every $ref at components/schemas
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, definitionsPrefix, schemasPrefix, 1)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return data
	}
}

// convertParameter moves the type fields of a swagger 2.0 path, query or header parameter into a schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			out[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// formDataSchema builds the multipart object schema for formData parameters
func formDataSchema(params []map[string]interface{}) map[string]interface{} {
	properties := make(map[string]interface{}, len(params))
	var required []interface{}
	for _, p := range params {
		name, _ := p["name"].(string)
		prop := map[string]interface{}{"type": p["type"]}
		if p["type"] == "file" {
			prop = map[string]interface{}{"type": "string", "format": "binary"}
		}
		if desc, ok := p["description"]; ok {
			prop["description"] = desc
		}
		properties[name] = prop
		if req, _ := p["required"].(bool); req {
			required = append(required, name)
		}
	}
	schema := map[string]interface{}{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// convertOperation rewrites one swagger 2.0 operation into its OpenAPI 3.0 shape
func convertOperation(op map[string]interface{}) map[string]interface{} {
	consumes := mediaTypes(op["consumes"], "application/json")
	produces := mediaTypes(op["produces"], "application/json")

	out := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "consumes", "produces", "parameters", "responses":
		default:
			out[key] = rewriteRefs(value)
		}
	}

	var params []interface{}
	var formParams []map[string]interface{}
	rawParams, _ := op["parameters"].([]interface{})
	for _, raw := range rawParams {
		p, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch p["in"] {
		case "body":
			body := map[string]interface{}{"content": contentFor(consumes, rewriteRefs(p["schema"]))}
			if desc, ok := p["description"]; ok {
				body["description"] = desc
			}
			if req, ok := p["required"]; ok {
				body["required"] = req
			}
			out["requestBody"] = body
		case "formData":
			formParams = append(formParams, p)
		default:
			params = append(params, convertParameter(p))
		}
	}
	if len(formParams) > 0 {
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content":  contentFor([]string{"multipart/form-data"}, formDataSchema(formParams)),
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}

	responses := make(map[string]interface{})
	rawResponses, _ := op["responses"].(map[string]interface{})
	for code, raw := range rawResponses {
		r, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		resp := map[string]interface{}{"description": r["description"]}
		if schema, ok := r["schema"].(map[string]interface{}); ok {
			if schema["type"] == "file" {
				resp["content"] = contentFor(produces, map[string]interface{}{"type": "string", "format": "binary"})
			} else {
				resp["content"] = contentFor(produces, rewriteRefs(schema))
			}
		}
		responses[code] = resp
	}
	out["responses"] = responses
	return out
}

func mediaTypes(raw interface{}, fallback string) []string {
	list, _ := raw.([]interface{})
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = []string{fallback}
	}
	return out
}

func contentFor(types []string, schema interface{}) map[string]interface{} {
	content := make(map[string]interface{}, len(types))
	for _, t := range types {
		content[t] = map[string]interface{}{"schema": schema}
	}
	return content
}

// ConvertToOpenAPI3 converts a swagger 2.0 JSON document to OpenAPI 3.0.3
func ConvertToOpenAPI3(doc []byte, servers []Server) (*OpenAPI3Spec, error) {
	var swagger2 map[string]interface{}
	if err := json.Unmarshal(doc, &swagger2); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	info, _ := swagger2["info"].(map[string]interface{})

	paths := make(map[string]interface{})
	rawPaths, _ := swagger2["paths"].(map[string]interface{})
	for path, raw := range rawPaths {
		methods, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		item := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if opMap, ok := op.(map[string]interface{}); ok {
				item[method] = convertOperation(opMap)
			}
		}
		paths[path] = item
	}

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      paths,
		Components: components,
	}, nil
}

// ServeOpenAPI3Spec serves the registered API description as OpenAPI 3.0.3
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read API description")
	}

	spec, err := ConvertToOpenAPI3([]byte(doc), DefaultAPIServers)
	if err != nil {
		log.Error().Err(err).Msg("Failed to convert swagger doc")
		return NewInternalError(c, "Failed to read API description")
	}

	return c.JSON(http.StatusOK, spec)
}
