// ABOUTME: Declarative parameter schemas for tools, built from ordered field lists.
// ABOUTME: Renders the JSON-schema-like object returned to clients during discovery.

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type is the JSON type tag of a schema field.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Field describes one accepted parameter.
type Field struct {
	Name        string
	Type        Type
	Items       Type // element type for arrays, empty means any
	Description string
	Required    bool
	Default     any // applied when an optional field is absent
	Enum        []string
}

// String declares a string field.
func String(name, description string) Field {
	return Field{Name: name, Type: TypeString, Description: description}
}

// Integer declares an integer field.
func Integer(name, description string) Field {
	return Field{Name: name, Type: TypeInteger, Description: description}
}

// Number declares a floating point field.
func Number(name, description string) Field {
	return Field{Name: name, Type: TypeNumber, Description: description}
}

// Boolean declares a boolean field.
func Boolean(name, description string) Field {
	return Field{Name: name, Type: TypeBoolean, Description: description}
}

// Array declares an array field whose elements have the given type.
func Array(name string, items Type, description string) Field {
	return Field{Name: name, Type: TypeArray, Items: items, Description: description}
}

// Map declares a free-form object field.
func Map(name, description string) Field {
	return Field{Name: name, Type: TypeObject, Description: description}
}

// Require marks the field as required.
func (f Field) Require() Field {
	f.Required = true
	return f
}

// WithDefault sets the value used when the field is absent.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}

// OneOf restricts a string field to the given values.
func (f Field) OneOf(values ...string) Field {
	f.Enum = append([]string(nil), values...)
	return f
}

// Schema is an ordered set of fields describing a tool's parameter object.
type Schema struct {
	fields []Field
	index  map[string]int
}

// Describer is implemented by parameter records that carry their own schema.
type Describer interface {
	Describe() *Schema
}

// Object builds a schema from the given fields, keeping declaration order.
// Duplicate field names are a programming error and panic.
func Object(fields ...Field) *Schema {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Fields returns a copy of the schema's fields in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Required returns the names of required fields in declaration order.
func (s *Schema) Required() []string {
	required := []string{}
	if s == nil {
		return required
	}
	for _, f := range s.fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}

type itemSchema struct {
	Type Type `json:"type"`
}

type property struct {
	Type        Type        `json:"type"`
	Description string      `json:"description,omitempty"`
	Items       *itemSchema `json:"items,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Default     any         `json:"default,omitempty"`
}

// MarshalJSON renders the schema as a JSON schema object. Properties keep
// declaration order so discovery output is deterministic.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)

	for i, f := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		p := property{
			Type:        f.Type,
			Description: f.Description,
			Enum:        f.Enum,
			Default:     f.Default,
		}
		if f.Type == TypeArray && f.Items != "" {
			p.Items = &itemSchema{Type: f.Items}
		}
		val, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshaling field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteString(`},"required":`)
	required, err := json.Marshal(s.Required())
	if err != nil {
		return nil, err
	}
	buf.Write(required)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
