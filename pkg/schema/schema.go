package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Schema is an ordered set of fields to extract.
type Schema struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`

	validate *validator.Validate
}

// Option configures schema construction.
type Option func(*builder)

type builder struct {
	description string
}

// WithDescription sets the natural-language context for the schema,
// which flows into the prompt.
func WithDescription(desc string) Option {
	return func(b *builder) {
		b.description = desc
	}
}

// New creates a Schema from a struct type by reflection. Field names
// come from json tags, requiredness from the absence of omitempty, and
// validators from the validate tag.
func New[T any](opts ...Option) (Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("schema requires a struct type, got %v", t.Kind())
	}

	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	fields, err := fieldsOf(t)
	if err != nil {
		return Schema{}, err
	}

	return Schema{
		Name:        t.Name(),
		Description: b.description,
		Fields:      fields,
		validate:    validator.New(),
	}, nil
}

// FromFields builds a schema directly from field definitions.
func FromFields(name, description string, fields []Field) Schema {
	return Schema{
		Name:        name,
		Description: description,
		Fields:      fields,
		validate:    validator.New(),
	}
}

// FromFile loads a schema from a JSON or YAML file, chosen by extension.
func FromFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("reading schema file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FromJSON(data)
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return Schema{}, fmt.Errorf("unsupported schema file extension %q", filepath.Ext(path))
	}
}

// FromJSON parses a schema definition from JSON.
func FromJSON(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parsing JSON schema: %w", err)
	}
	s.validate = validator.New()
	return s, nil
}

// FromYAML parses a schema definition from YAML.
func FromYAML(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parsing YAML schema: %w", err)
	}
	s.validate = validator.New()
	return s, nil
}

// RequiredFields returns the names of top-level required fields in
// declaration order.
func (s Schema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// fieldsOf extracts field definitions from a struct type.
func fieldsOf(t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		field := Field{
			Name:        jsonName(sf),
			Description: sf.Tag.Get("description"),
			Required:    !hasOmitempty(sf),
			Validators:  splitTag(sf.Tag.Get("validate")),
		}
		if examples := sf.Tag.Get("examples"); examples != "" {
			field.Examples = strings.Split(examples, ",")
		}

		ft := sf.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
			field.Required = false
		}

		typed, err := typeOf(ft)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		field.Type = typed.Type
		field.Items = typed.Items
		field.Properties = typed.Properties

		fields = append(fields, field)
	}
	return fields, nil
}

// typeOf maps a Go type onto a Field skeleton (type, items, properties).
func typeOf(t reflect.Type) (Field, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return Field{Type: TypeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Field{Type: TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return Field{Type: TypeNumber}, nil
	case reflect.Bool:
		return Field{Type: TypeBoolean}, nil
	case reflect.Slice:
		item, err := typeOf(t.Elem())
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeArray, Items: &item}, nil
	case reflect.Struct:
		props, err := fieldsOf(t)
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeObject, Properties: props}, nil
	case reflect.Map:
		return Field{Type: TypeObject}, nil
	default:
		return Field{}, fmt.Errorf("unsupported type %v", t.Kind())
	}
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return sf.Name
}

func hasOmitempty(sf reflect.StructField) bool {
	return strings.Contains(sf.Tag.Get("json"), "omitempty")
}

func splitTag(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}
