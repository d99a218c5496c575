// Package validator turns untrusted JSON payloads into typed, normalized
// values. Constraints are declared on the target struct with `validate`
// tags (go-playground/validator) and applied by a Schema.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/balcao/balcao/internal/model"
)

// Normalizer is implemented by payload types that apply defaults or
// canonicalize values after trimming and before constraints run.
type Normalizer interface {
	Normalize()
}

type fieldInfo struct {
	index []int
	trim  bool
}

// Schema validates payloads of type T. A Schema is immutable and safe for
// concurrent use.
type Schema[T any] struct {
	fields map[string]fieldInfo
}

// New builds the schema for T. It panics if T is not a struct, since schemas
// are declared once at package initialization.
func New[T any]() *Schema[T] {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("validator: schema type %s is not a struct", t))
	}

	s := &Schema[T]{fields: make(map[string]fieldInfo)}
	s.collect(t, nil)
	return s
}

func (s *Schema[T]) collect(t reflect.Type, parent []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		tag := f.Tag.Get("json")
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			s.collect(f.Type, index)
			continue
		}
		if !f.IsExported() || tag == "-" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		s.fields[name] = fieldInfo{
			index: index,
			trim:  f.Tag.Get("schema") != "notrim",
		}
	}
}

// Validate decodes raw into T, trims strings, normalizes, and checks
// constraints. It returns a *ValidationError describing every offending field.
func (s *Schema[T]) Validate(raw []byte) (T, error) {
	var out T
	verr := &ValidationError{}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	if !json.Valid(raw) {
		verr.add(InputKey, "must be a JSON object")
		verr.cause = ErrMalformedInput
		return out, verr
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		verr.add(InputKey, "must be a JSON object")
		return out, verr
	}

	target := reflect.ValueOf(&out).Elem()
	for key, value := range object {
		info, ok := s.fields[key]
		if !ok {
			continue
		}
		if string(value) == "null" {
			continue
		}

		field := target.FieldByIndex(info.index)
		ptr := reflect.New(field.Type())
		if err := json.Unmarshal(value, ptr.Interface()); err != nil {
			verr.add(key, decodeMessage(err))
			continue
		}
		field.Set(ptr.Elem())
	}

	for _, info := range s.fields {
		field := target.FieldByIndex(info.index)
		if info.trim && field.Kind() == reflect.String {
			field.SetString(strings.TrimSpace(field.String()))
		}
	}

	if n, ok := any(&out).(Normalizer); ok {
		n.Normalize()
	}

	checkStruct(&out, verr)

	if !verr.empty() {
		var zero T
		return zero, verr
	}
	return out, nil
}

func decodeMessage(err error) string {
	if errors.Is(err, model.ErrInvalidAmount) {
		return err.Error()
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return "must be " + describeKind(typeErr.Type)
	}
	return "is invalid"
}

func describeKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "a list of " + strings.TrimPrefix(strings.TrimPrefix(describeKind(t.Elem()), "a "), "an ") + "s"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "valid"
	}
}
