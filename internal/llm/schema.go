package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MarkerItemSchema returns the JSON Schema one extracted marker must satisfy.
func MarkerItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":            map[string]any{"type": "string", "minLength": 1},
			"value":           map[string]any{"type": []any{"number", "null"}},
			"value_text":      map[string]any{"type": "string"},
			"unit":            map[string]any{"type": []any{"string", "null"}},
			"reference_range": map[string]any{"type": []any{"string", "null"}},
			"flag":            map[string]any{"enum": []any{"H", "L", "A", "C", "", nil}},
		},
		"required": []any{"name"},
	}
}

var (
	itemSchemaOnce sync.Once
	itemSchema     *jsonschema.Schema
	itemSchemaErr  error
)

func compiledItemSchema() (*jsonschema.Schema, error) {
	itemSchemaOnce.Do(func() {
		b, err := json.Marshal(MarkerItemSchema())
		if err != nil {
			itemSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("marker_item.json", bytes.NewReader(b)); err != nil {
			itemSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		itemSchema, itemSchemaErr = compiler.Compile("marker_item.json")
	})
	return itemSchema, itemSchemaErr
}

// ValidateItem checks one decoded array element against MarkerItemSchema.
func ValidateItem(v any) error {
	schema, err := compiledItemSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("item does not match schema: %w", err)
	}
	return nil
}
