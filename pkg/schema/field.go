// Package schema defines extraction schemas: the fields to pull out of
// content, their types and constraints, and the validation that repairs
// or rejects what a model returns.
package schema

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// FieldType is the JSON-schema type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field is one schema field. For arrays, Items describes the element
// type; for objects, Properties describes the members.
type Field struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Field    `json:"items,omitempty" yaml:"items,omitempty"`

	// Properties is populated by custom unmarshaling, which accepts both
	// map and array layouts.
	Properties []Field `json:"-" yaml:"-"`

	// Validators are go-playground/validator tags applied to the value
	// after coercion ("min=0", "url", "oneof=a b").
	Validators []string `json:"validators,omitempty" yaml:"validators,omitempty"`

	// Default fills the field when the model omits it. A nil Default on
	// an optional field means the output carries an explicit null.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`

	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type fieldAlias Field

type fieldRaw struct {
	fieldAlias `yaml:",inline"`
	// Map layout {name: {type: ...}} or array layout [{name: ..., type: ...}].
	PropertiesRaw yaml.Node `yaml:"properties"`
}

// UnmarshalYAML accepts properties in both map and array layouts.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	var raw fieldRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*f = Field(raw.fieldAlias)

	switch raw.PropertiesRaw.Kind {
	case 0:
		// no properties
	case yaml.MappingNode:
		var propsMap map[string]Field
		if err := raw.PropertiesRaw.Decode(&propsMap); err != nil {
			return err
		}
		// Preserve document order for prompt stability.
		for i := 0; i < len(raw.PropertiesRaw.Content); i += 2 {
			name := raw.PropertiesRaw.Content[i].Value
			prop := propsMap[name]
			prop.Name = name
			f.Properties = append(f.Properties, prop)
		}
	case yaml.SequenceNode:
		if err := raw.PropertiesRaw.Decode(&f.Properties); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON includes Properties, which the struct tag hides to keep
// the custom unmarshaling from recursing.
func (f Field) MarshalJSON() ([]byte, error) {
	type fieldJSON struct {
		Name        string    `json:"name,omitempty"`
		Type        FieldType `json:"type"`
		Description string    `json:"description,omitempty"`
		Required    bool      `json:"required,omitempty"`
		Items       *Field    `json:"items,omitempty"`
		Properties  []Field   `json:"properties,omitempty"`
		Validators  []string  `json:"validators,omitempty"`
		Default     any       `json:"default,omitempty"`
		Examples    []string  `json:"examples,omitempty"`
	}
	return json.Marshal(fieldJSON{
		Name:        f.Name,
		Type:        f.Type,
		Description: f.Description,
		Required:    f.Required,
		Items:       f.Items,
		Properties:  f.Properties,
		Validators:  f.Validators,
		Default:     f.Default,
		Examples:    f.Examples,
	})
}

// UnmarshalJSON accepts properties in both map and array layouts.
func (f *Field) UnmarshalJSON(data []byte) error {
	type fieldJSON struct {
		Name        string          `json:"name,omitempty"`
		Type        FieldType       `json:"type"`
		Description string          `json:"description,omitempty"`
		Required    bool            `json:"required,omitempty"`
		Items       *Field          `json:"items,omitempty"`
		Properties  json.RawMessage `json:"properties,omitempty"`
		Validators  []string        `json:"validators,omitempty"`
		Default     any             `json:"default,omitempty"`
		Examples    []string        `json:"examples,omitempty"`
	}

	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Name = raw.Name
	f.Type = raw.Type
	f.Description = raw.Description
	f.Required = raw.Required
	f.Items = raw.Items
	f.Validators = raw.Validators
	f.Default = raw.Default
	f.Examples = raw.Examples

	if len(raw.Properties) > 0 {
		var propsArray []Field
		if err := json.Unmarshal(raw.Properties, &propsArray); err == nil {
			f.Properties = propsArray
			return nil
		}
		var propsMap map[string]Field
		if err := json.Unmarshal(raw.Properties, &propsMap); err != nil {
			return err
		}
		for name, prop := range propsMap {
			prop.Name = name
			f.Properties = append(f.Properties, prop)
		}
	}
	return nil
}
