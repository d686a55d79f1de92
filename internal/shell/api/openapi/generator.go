// Package openapi provides reflective OpenAPI 3.0 specification generation
// for the envelope-based REST API.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces an OpenAPI 3.0 specification by reflecting on the
// registered resource models.
type Generator struct {
	title       string
	version     string
	description string
	server      string

	mu         sync.RWMutex
	resources  []ResourceInfo
	cachedSpec *openapi3.T
}

// ResourceInfo describes a slug-keyed CRUD resource for spec generation.
type ResourceInfo struct {
	Name        string // Plural resource name (e.g., "posts")
	Model       any    // Response model for schema extraction
	CreateModel any    // Create request body model
	UpdateModel any    // Update request body model
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(title, version, description, server string) *Generator {
	return &Generator{
		title:       title,
		version:     version,
		description: description,
		server:      server,
	}
}

// RegisterResource adds a resource to the generator for spec generation.
func (g *Generator) RegisterResource(info ResourceInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources = append(g.resources, info)
	g.cachedSpec = nil // Invalidate cache
}

// Generate produces the complete OpenAPI 3.0 specification.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: openapi3.Servers{&openapi3.Server{URL: g.server}},
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	g.addEnvelopeSchema(spec)

	for _, res := range g.resources {
		g.addResourceToSpec(spec, res)
	}

	g.cachedSpec = spec
	return spec
}

// Handler returns an HTTP handler that serves the OpenAPI specification.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Schema Generation
// =============================================================================

// addEnvelopeSchema adds the response envelope shared by every endpoint.
func (g *Generator) addEnvelopeSchema(spec *openapi3.T) {
	spec.Components.Schemas["Envelope"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"message": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"data": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"object"}},
				},
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
			},
			Required: []string{"success"},
		},
	}
}

// addResourceToSpec adds paths and schemas for a slug-keyed CRUD resource.
func (g *Generator) addResourceToSpec(spec *openapi3.T, res ResourceInfo) {
	basePath := "/api/" + res.Name
	schemaName := capitalize(singularize(res.Name))

	spec.Components.Schemas[schemaName] = g.extractSchema(res.Model)
	spec.Components.Schemas["Create"+schemaName+"Request"] = g.extractSchema(res.CreateModel)
	spec.Components.Schemas["Update"+schemaName+"Request"] = g.extractSchema(res.UpdateModel)

	slugParam := &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     "slug",
			In:       "path",
			Required: true,
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
			},
		},
	}

	spec.Paths.Set(basePath, &openapi3.PathItem{
		Get: g.operation("list"+capitalize(res.Name), "List "+res.Name+", newest first", res, nil),
	})
	spec.Paths.Set(basePath+"/create", &openapi3.PathItem{
		Post: g.operation("create"+schemaName, "Create a "+singularize(res.Name), res, g.requestBody("Create"+schemaName+"Request")),
	})
	spec.Paths.Set(basePath+"/{slug}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{slugParam},
		Get:        g.operation("get"+schemaName, "Get a "+singularize(res.Name)+" by slug", res, nil),
		Put:        g.operation("update"+schemaName, "Update a "+singularize(res.Name)+" by slug", res, g.requestBody("Update"+schemaName+"Request")),
		Delete:     g.operation("delete"+schemaName, "Delete a "+singularize(res.Name)+" by slug", res, nil),
	})
}

func (g *Generator) operation(id, summary string, res ResourceInfo, body *openapi3.RequestBodyRef) *openapi3.Operation {
	desc := "Envelope response"
	op := &openapi3.Operation{
		OperationID: id,
		Summary:     summary,
		Tags:        []string{capitalize(res.Name)},
		RequestBody: body,
		Responses:   openapi3.NewResponses(),
	}
	op.Responses.Set("default", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Envelope"},
				},
			},
		},
	})
	return op
}

func (g *Generator) requestBody(schemaName string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/" + schemaName},
				},
			},
		},
	}
}

// extractSchema builds an object schema from a model struct's json tags.
func (g *Generator) extractSchema(model any) *openapi3.SchemaRef {
	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}
	if model == nil {
		return &openapi3.SchemaRef{Value: schema}
	}

	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return g.goTypeToSchema(t)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		schema.Properties[name] = g.goTypeToSchema(field.Type)
	}

	return &openapi3.SchemaRef{Value: schema}
}

// goTypeToSchema maps a Go type to an OpenAPI schema.
func (g *Generator) goTypeToSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}

	case reflect.Float32, reflect.Float64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: g.goTypeToSchema(t.Elem()),
			},
		}

	case reflect.Ptr:
		schema := g.goTypeToSchema(t.Elem())
		if schema != nil && schema.Value != nil {
			schema.Value.Nullable = true
		}
		return schema

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
			}
		}
		return g.extractSchema(reflect.New(t).Elem().Interface())

	default:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}
}

// =============================================================================
// Helpers
// =============================================================================

// capitalize returns the string with the first letter capitalized.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// singularize performs basic singularization (removes trailing 's').
func singularize(s string) string {
	if strings.HasSuffix(s, "ies") {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}
