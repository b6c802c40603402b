package provider

import (
	"encoding/json"
	"strings"
)

// FieldKind is the semantic type of a schema field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindInt    FieldKind = "integer"
	KindFloat  FieldKind = "number"
	KindBool   FieldKind = "boolean"
)

// Placeholder values used when synthesizing a sample object from a schema.
const (
	PlaceholderPrefix = "Sample "
	PlaceholderInt    = 42
)

// Field describes one named field of an expected JSON object.
type Field struct {
	Name string
	Kind FieldKind
}

// String declares a string field.
func String(name string) Field { return Field{Name: name, Kind: KindString} }

// Int declares an integer field.
func Int(name string) Field { return Field{Name: name, Kind: KindInt} }

// Float declares a floating point field.
func Float(name string) Field { return Field{Name: name, Kind: KindFloat} }

// Bool declares a boolean field.
func Bool(name string) Field { return Field{Name: name, Kind: KindBool} }

// Schema is an ordered structural descriptor of the JSON object a typed
// completion is expected to produce.
type Schema []Field

// Placeholder returns a sample object for the schema: string fields hold
// "Sample <Name>", integer fields hold 42, and other kinds hold their zero
// value.
func (s Schema) Placeholder() map[string]any {
	obj := make(map[string]any, len(s))
	for _, f := range s {
		switch f.Kind {
		case KindString:
			obj[f.Name] = PlaceholderPrefix + f.Name
		case KindInt:
			obj[f.Name] = PlaceholderInt
		case KindFloat:
			obj[f.Name] = 0.0
		case KindBool:
			obj[f.Name] = false
		default:
			obj[f.Name] = nil
		}
	}
	return obj
}

// PlaceholderJSON returns the JSON encoding of Placeholder.
func (s Schema) PlaceholderJSON() (string, error) {
	data, err := json.Marshal(s.Placeholder())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Describe renders the schema as a compact instruction fragment suitable
// for appending to a system prompt, e.g. `{"Name": string, "Age": integer}`.
func (s Schema) Describe() string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"` + f.Name + `": ` + string(f.Kind))
	}
	b.WriteString("}")
	return b.String()
}
