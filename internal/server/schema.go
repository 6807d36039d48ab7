package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildShareConfigJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// incoming share configs must satisfy.
func BuildShareConfigJSONSchema() map[string]any {
	selection := map[string]any{
		"oneOf": []any{
			map[string]any{"const": "all"},
			map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
	nullableTime := map[string]any{"type": []any{"string", "null"}}
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	filters := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"selectedProducts":  selection,
			"selectedRetailers": selection,
			"dateMode":          map[string]any{"enum": []any{"", "all", "month", "custom"}},
			"month":             map[string]any{"type": "string", "pattern": `^(\d{4}-(0[1-9]|1[0-2]))?$`},
			"startDate":         nullableTime,
			"endDate":           nullableTime,
		},
	}

	branding := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"clientName":   map[string]any{"type": "string", "maxLength": 200},
			"brandNames":   stringList,
			"logoUrl":      map[string]any{"type": "string"},
			"primaryColor": map[string]any{"type": "string", "pattern": `^(#[0-9a-fA-F]{3,8})?$`},
		},
	}

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"allowedTabs":     map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "string"}},
			"activeTab":       map[string]any{"type": "string"},
			"hideRetailers":   map[string]any{"type": "boolean"},
			"hideTotals":      map[string]any{"type": "boolean"},
			"showOnlyPercent": map[string]any{"type": "boolean"},
			"customExcludedDates": map[string]any{
				"type":  []any{"array", "null"},
				"items": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			},
			"hiddenCharts": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{"type": "string"},
			},
			"branding":   branding,
			"clientNote": map[string]any{"type": "string", "maxLength": 2000},
			"expiryDate": nullableTime,
			"filters":    filters,
		},
	}
}

// SchemaValidator checks JSON documents against one compiled schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

func NewSchemaValidator(schemaMap map[string]any) (*SchemaValidator, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks data against the schema.
func (v *SchemaValidator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
