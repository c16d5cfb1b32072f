package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaType names a JSON value kind using the upper-case spelling the
// Gemini API expects.
type SchemaType string

const (
	TypeString  SchemaType = "STRING"
	TypeNumber  SchemaType = "NUMBER"
	TypeInteger SchemaType = "INTEGER"
	TypeBoolean SchemaType = "BOOLEAN"
	TypeArray   SchemaType = "ARRAY"
	TypeObject  SchemaType = "OBJECT"
)

// Schema describes the structured output a provider should be constrained to.
// It serializes directly as a Gemini responseSchema.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSONSchema converts the schema to a standard JSON Schema document, as used by
// OpenAI structured outputs. Objects are closed and every property is required,
// which strict mode demands.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{
		"type": strings.ToLower(string(s.Type)),
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		names := make([]string, 0, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.JSONSchema()
			names = append(names, name)
		}
		sort.Strings(names)
		out["properties"] = props
		out["required"] = names
		out["additionalProperties"] = false
	}
	return out
}

// Validate checks that data is JSON matching the schema: value kinds,
// array items and required object properties.
func (s *Schema) Validate(data []byte) error {
	if s == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return s.validate("$", value)
}

func (s *Schema) validate(path string, value any) error {
	switch s.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%s: expected string", path)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean", path)
		}
	case TypeNumber, TypeInteger:
		number, ok := value.(json.Number)
		if !ok {
			return fmt.Errorf("%s: expected number", path)
		}
		if s.Type == TypeInteger {
			if _, err := number.Int64(); err != nil {
				return fmt.Errorf("%s: expected integer", path)
			}
		}
	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		if s.Items == nil {
			return nil
		}
		for i, item := range items {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case TypeObject:
		fields, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		for _, name := range s.Required {
			if _, ok := fields[name]; !ok {
				return fmt.Errorf("%s: missing required property %q", path, name)
			}
		}
		for name, field := range fields {
			prop, ok := s.Properties[name]
			if !ok {
				continue
			}
			if err := prop.validate(path+"."+name, field); err != nil {
				return err
			}
		}
	default:
		return errors.New("unsupported schema type: " + string(s.Type))
	}
	return nil
}
