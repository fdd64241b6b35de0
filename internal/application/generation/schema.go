package generation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	topicSchemaName         = "roadmap-topic"
	certificationSchemaName = "certification"
)

var optionalString = map[string]any{"type": []any{"string", "null"}}

var optionalStrings = map[string]any{
	"type":  []any{"array", "null"},
	"items": map[string]any{"type": "string"},
}

var itemSchemas = map[string]map[string]any{
	topicSchemaName: {
		"type": "object",
		"properties": map[string]any{
			"topic_name":          map[string]any{"type": "string", "minLength": 1},
			"description":         optionalString,
			"estimated_hours":     map[string]any{"type": "number", "minimum": 0},
			"prerequisites":       optionalStrings,
			"learning_objectives": optionalStrings,
		},
		"required": []any{"topic_name", "estimated_hours"},
	},
	// priority and estimated_study_hours are left untyped, the recommender normalizes them.
	certificationSchemaName: {
		"type": "object",
		"properties": map[string]any{
			"name":                  map[string]any{"type": "string", "minLength": 1},
			"provider":              map[string]any{"type": "string", "minLength": 1},
			"description":           optionalString,
			"difficulty_level":      optionalString,
			"recommendation_reason": optionalString,
			"category":              optionalString,
			"website_url":           optionalString,
		},
		"required": []any{"name", "provider"},
	},
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := itemSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants plain decoded JSON, not Go maps with typed slices.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

// validateItem checks one decoded item against a named schema.
func validateItem(name string, item any) error {
	schema, err := compiledSchema(name)
	if err != nil {
		return err
	}
	return schema.Validate(item)
}
