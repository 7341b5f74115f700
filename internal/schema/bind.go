// ABOUTME: Reconciles a Schema with the Go struct a handler decodes its arguments into.
// ABOUTME: Catches schema/record drift at registration time instead of on first call.

package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrIncompatible indicates a Go type cannot hold the arguments a schema accepts.
var ErrIncompatible = errors.New("incompatible parameter type")

// Bind checks that every schema field maps, by json tag, onto a struct field
// of t whose kind can hold the field's values. Pointer types are followed
// once; interface-typed struct fields accept anything.
func (s *Schema) Bind(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrIncompatible)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", ErrIncompatible, t)
	}

	byName := jsonFields(t)
	for _, f := range s.Fields() {
		sf, ok := byName[f.Name]
		if !ok {
			return fmt.Errorf("%w: %s has no field for %q", ErrIncompatible, t, f.Name)
		}
		if !holds(f.Type, f.Items, sf.Type) {
			return fmt.Errorf("%w: %s.%s (%s) cannot hold %s field %q",
				ErrIncompatible, t, sf.Name, sf.Type, f.Type, f.Name)
		}
	}
	return nil
}

// jsonFields indexes the exported fields of a struct by their json name.
func jsonFields(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = sf
	}
	return out
}

func holds(st Type, items Type, gt reflect.Type) bool {
	if gt.Kind() == reflect.Pointer {
		gt = gt.Elem()
	}
	if gt.Kind() == reflect.Interface {
		return true
	}

	switch st {
	case TypeString:
		return gt.Kind() == reflect.String
	case TypeInteger:
		switch gt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		}
		return false
	case TypeNumber:
		return gt.Kind() == reflect.Float32 || gt.Kind() == reflect.Float64
	case TypeBoolean:
		return gt.Kind() == reflect.Bool
	case TypeArray:
		if gt.Kind() != reflect.Slice {
			return false
		}
		return items == "" || holds(items, "", gt.Elem())
	case TypeObject:
		return (gt.Kind() == reflect.Map && gt.Key().Kind() == reflect.String) || gt.Kind() == reflect.Struct
	}
	return false
}
