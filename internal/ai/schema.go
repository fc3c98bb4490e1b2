package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SchemaType is the JSON type of a schema node
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema describes the document a flow expects back from the model. It is sent
// as a response-shape hint and embedded in the prompt; the matching Go struct
// carries the validate tags that Decode enforces.
type Schema struct {
	Name        string             `json:"-"`
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	MinItems    *int64             `json:"minItems,omitempty"`
	MaxItems    *int64             `json:"maxItems,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Ordering    []string           `json:"-"`
}

// JSON renders the schema for prompts
func (s *Schema) JSON() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func int64Ptr(i int64) *int64 {
	return &i
}

func float64Ptr(f float64) *float64 {
	return &f
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode is the single validation routine shared by every flow: it extracts the
// JSON document from raw model text, decodes it into T and checks T's constraints.
// Any failure is reported as a *SchemaError listing the violated constraints.
func Decode[T any](s *Schema, raw string) (*T, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return nil, &SchemaError{Schema: s.Name, Violations: []string{"no JSON object in model output"}}
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, &SchemaError{Schema: s.Name, Violations: []string{decodeViolation(err)}}
	}

	if err := validate.Struct(&out); err != nil {
		return nil, &SchemaError{Schema: s.Name, Violations: violations(err)}
	}
	return &out, nil
}

// extractJSON finds the outermost JSON object in the model text, ignoring
// markdown fences and prose around it
func extractJSON(raw string) string {
	content := strings.TrimSpace(raw)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}") + 1
	if start < 0 || end <= start {
		return ""
	}
	return content[start:end]
}

func decodeViolation(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		return fmt.Sprintf("%s: expected %s, got %s", field, typeErr.Type, typeErr.Value)
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, err)
	default:
		return err.Error()
	}
}

func violations(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			out = append(out, field+": is required")
		case "len":
			out = append(out, fmt.Sprintf("%s: must have exactly %s entries", field, fe.Param()))
		case "gte":
			out = append(out, fmt.Sprintf("%s: must be >= %s", field, fe.Param()))
		case "lte":
			out = append(out, fmt.Sprintf("%s: must be <= %s", field, fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return out
}
