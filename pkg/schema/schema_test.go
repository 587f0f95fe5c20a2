package schema

import (
	"strings"
	"testing"
)

type product struct {
	Name         string   `json:"name" description:"Product name" validate:"min=1"`
	Price        float64  `json:"price" description:"Price in the listed currency"`
	Currency     string   `json:"currency,omitempty" examples:"USD,EUR"`
	InStock      bool     `json:"in_stock,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ReviewsCount int      `json:"reviews_count,omitempty"`
}

func TestNewFromStruct(t *testing.T) {
	s, err := New[product](WithDescription("An e-commerce product listing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Name != "product" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Description != "An e-commerce product listing" {
		t.Errorf("Description = %q", s.Description)
	}
	if len(s.Fields) != 6 {
		t.Fatalf("got %d fields, want 6", len(s.Fields))
	}

	byName := make(map[string]Field)
	for _, f := range s.Fields {
		byName[f.Name] = f
	}

	name := byName["name"]
	if name.Type != TypeString || !name.Required {
		t.Errorf("name = %+v, want required string", name)
	}
	if name.Description != "Product name" {
		t.Errorf("name.Description = %q", name.Description)
	}
	if len(name.Validators) != 1 || name.Validators[0] != "min=1" {
		t.Errorf("name.Validators = %v", name.Validators)
	}

	if byName["price"].Type != TypeNumber || !byName["price"].Required {
		t.Errorf("price = %+v, want required number", byName["price"])
	}
	if byName["currency"].Required {
		t.Error("omitempty fields must be optional")
	}
	if byName["in_stock"].Type != TypeBoolean {
		t.Errorf("in_stock.Type = %q", byName["in_stock"].Type)
	}
	if byName["reviews_count"].Type != TypeInteger {
		t.Errorf("reviews_count.Type = %q", byName["reviews_count"].Type)
	}

	tags := byName["tags"]
	if tags.Type != TypeArray || tags.Items == nil || tags.Items.Type != TypeString {
		t.Errorf("tags = %+v, want array of strings", tags)
	}

	if got := s.RequiredFields(); len(got) != 2 || got[0] != "name" || got[1] != "price" {
		t.Errorf("RequiredFields = %v, want [name price]", got)
	}
}

func TestNewFromStruct_NotAStruct(t *testing.T) {
	if _, err := New[string](); err == nil {
		t.Error("expected error for non-struct type")
	}
}

func TestFromYAML_MapProperties(t *testing.T) {
	data := []byte(`
name: article
description: A news article
fields:
  - name: headline
    type: string
    required: true
  - name: author
    type: object
    properties:
      name: {type: string, required: true}
      email: {type: string, validators: [email]}
`)
	s, err := FromYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Fields) != 2 {
		t.Fatalf("got %d fields", len(s.Fields))
	}

	author := s.Fields[1]
	if author.Type != TypeObject || len(author.Properties) != 2 {
		t.Fatalf("author = %+v", author)
	}
	if author.Properties[0].Name != "name" || !author.Properties[0].Required {
		t.Errorf("map property order or fields lost: %+v", author.Properties)
	}
	if author.Properties[1].Validators[0] != "email" {
		t.Errorf("validators lost: %+v", author.Properties[1])
	}
}

func TestFromJSON_ArrayProperties(t *testing.T) {
	data := []byte(`{
		"name": "listing",
		"fields": [
			{"name": "offers", "type": "array", "items": {
				"type": "object",
				"properties": [
					{"name": "price", "type": "number", "required": true},
					{"name": "seller", "type": "string"}
				]
			}}
		]
	}`)
	s, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offers := s.Fields[0]
	if offers.Type != TypeArray || offers.Items == nil {
		t.Fatalf("offers = %+v", offers)
	}
	if len(offers.Items.Properties) != 2 || offers.Items.Properties[0].Name != "price" {
		t.Errorf("item properties = %+v", offers.Items.Properties)
	}
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	if _, err := FromFile("schema.toml"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestToJSONSchema(t *testing.T) {
	s, err := New[product]()
	if err != nil {
		t.Fatal(err)
	}

	js := s.ToJSONSchema()
	if js["type"] != "object" {
		t.Errorf("type = %v", js["type"])
	}
	if js["additionalProperties"] != false {
		t.Error("additionalProperties must be false for strict backends")
	}

	props, ok := js["properties"].(map[string]any)
	if !ok || len(props) != 6 {
		t.Fatalf("properties = %v", js["properties"])
	}
	price, _ := props["price"].(map[string]any)
	if price["type"] != "number" {
		t.Errorf("price schema = %v", price)
	}

	required, _ := js["required"].([]string)
	if len(required) != 2 {
		t.Errorf("required = %v", required)
	}
}

func TestToPromptDescription(t *testing.T) {
	s, err := New[product](WithDescription("An e-commerce product listing"))
	if err != nil {
		t.Fatal(err)
	}

	desc := s.ToPromptDescription()
	if !strings.Contains(desc, "An e-commerce product listing") {
		t.Error("schema description missing from prompt")
	}
	if !strings.Contains(desc, "- name (string, required): Product name") {
		t.Errorf("field line malformed:\n%s", desc)
	}
	if !strings.Contains(desc, "- currency (string)") {
		t.Errorf("optional field malformed:\n%s", desc)
	}
	if !strings.Contains(desc, "e.g. USD, EUR") {
		t.Errorf("examples missing:\n%s", desc)
	}
}

func TestToPromptDescription_NestedArray(t *testing.T) {
	s, err := FromJSON([]byte(`{
		"name": "listing",
		"fields": [
			{"name": "offers", "type": "array", "items": {
				"type": "object",
				"properties": [{"name": "price", "type": "number", "required": true}]
			}}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	desc := s.ToPromptDescription()
	if !strings.Contains(desc, "Each item:") {
		t.Errorf("nested item description missing:\n%s", desc)
	}
	if !strings.Contains(desc, "price (number, required)") {
		t.Errorf("nested field missing:\n%s", desc)
	}
}
