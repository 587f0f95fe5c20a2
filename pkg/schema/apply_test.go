package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gleanhq/glean/pkg/fault"
)

func quoteSchema(t *testing.T) Schema {
	t.Helper()
	s, err := FromYAML([]byte(`
name: quote
fields:
  - name: symbol
    type: string
    required: true
  - name: price
    type: number
    required: true
  - name: currency
    type: string
    default: USD
  - name: volume
    type: integer
  - name: halted
    type: boolean
`))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestApply_AllFieldsPresent(t *testing.T) {
	s := quoteSchema(t)

	res, err := s.Apply(map[string]any{
		"symbol":   "ACME",
		"price":    19.99,
		"currency": "EUR",
		"volume":   float64(1200),
		"halted":   false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
	if len(res.Defaulted) != 0 {
		t.Errorf("Defaulted = %v, want none", res.Defaulted)
	}
	if res.Data["currency"] != "EUR" {
		t.Errorf("currency = %v, default must not override a present value", res.Data["currency"])
	}
	if res.Data["volume"] != int64(1200) {
		t.Errorf("volume = %v (%T), want int64", res.Data["volume"], res.Data["volume"])
	}
}

func TestApply_CoercesStringNumber(t *testing.T) {
	s := quoteSchema(t)

	res, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  "19.99",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data["price"] != 19.99 {
		t.Errorf("price = %v (%T), want 19.99 float64", res.Data["price"], res.Data["price"])
	}
	if len(res.Coerced) != 1 || res.Coerced[0] != "price" {
		t.Errorf("Coerced = %v, want [price]", res.Coerced)
	}
	// Coerced required fields still count as present.
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
}

func TestApply_DefaultsAndNulls(t *testing.T) {
	s := quoteSchema(t)

	res, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  12.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Data["currency"] != "USD" {
		t.Errorf("currency = %v, want default USD", res.Data["currency"])
	}
	if len(res.Defaulted) != 1 || res.Defaulted[0] != "currency" {
		t.Errorf("Defaulted = %v", res.Defaulted)
	}

	// Optional fields with no default are explicit nulls, not absent keys.
	for _, name := range []string{"volume", "halted"} {
		val, present := res.Data[name]
		if !present {
			t.Errorf("%s absent from output, want explicit null", name)
		}
		if val != nil {
			t.Errorf("%s = %v, want nil", name, val)
		}
	}
}

func TestApply_MissingRequiredField(t *testing.T) {
	s := quoteSchema(t)

	_, err := s.Apply(map[string]any{"price": 12.5})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := fault.KindOf(err); kind != fault.KindValidation {
		t.Errorf("kind = %q, want %q", kind, fault.KindValidation)
	}
	if !strings.Contains(err.Error(), "symbol") {
		t.Errorf("error %q does not name the missing field", err.Error())
	}
}

func TestApply_UncoercibleValue(t *testing.T) {
	s := quoteSchema(t)

	_, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  "about twenty dollars",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := fault.KindOf(err); kind != fault.KindValidation {
		t.Errorf("kind = %q, want %q", kind, fault.KindValidation)
	}
	if !strings.Contains(err.Error(), "price") {
		t.Errorf("error %q does not name the field", err.Error())
	}
}

func TestApply_NonIntegralNumberNotInteger(t *testing.T) {
	s := quoteSchema(t)

	_, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  10.0,
		"volume": 12.7,
	})
	if err == nil {
		t.Fatal("expected error coercing 12.7 to integer")
	}
}

func TestApply_UnknownFieldsPassThrough(t *testing.T) {
	s := quoteSchema(t)

	res, err := s.Apply(map[string]any{
		"symbol":   "ACME",
		"price":    1.0,
		"exchange": "NYSE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data["exchange"] != "NYSE" {
		t.Errorf("unknown field dropped: %v", res.Data)
	}
}

func TestApply_Confidence(t *testing.T) {
	s, err := FromYAML([]byte(`
name: quote
fields:
  - {name: symbol, type: string, required: true}
  - {name: price, type: number, required: true, default: 0}
  - {name: note, type: string}
`))
	if err != nil {
		t.Fatal(err)
	}

	// One of two required fields present; price falls back to default.
	res, err := s.Apply(map[string]any{"symbol": "ACME"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", res.Confidence)
	}
	if res.Data["price"] != float64(0) {
		t.Errorf("price = %v (%T), want defaulted float64 0", res.Data["price"], res.Data["price"])
	}
}

func TestApply_ConfidenceNoRequiredFields(t *testing.T) {
	s, err := FromYAML([]byte(`
name: note
fields:
  - {name: text, type: string}
`))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Apply(map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 with no required fields", res.Confidence)
	}
}

func TestApply_Idempotent(t *testing.T) {
	s := quoteSchema(t)

	first, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  "19.99",
		"volume": float64(3),
	})
	if err != nil {
		t.Fatal(err)
	}

	second, err := s.Apply(first.Data)
	if err != nil {
		t.Fatalf("re-apply failed: %v", err)
	}
	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Errorf("Apply not idempotent:\nfirst:  %#v\nsecond: %#v", first.Data, second.Data)
	}
	if len(second.Coerced) != 0 || len(second.Defaulted) != 0 {
		t.Errorf("second pass repaired again: coerced=%v defaulted=%v",
			second.Coerced, second.Defaulted)
	}
}

func TestApply_NestedObjectAndArray(t *testing.T) {
	s, err := FromYAML([]byte(`
name: listing
fields:
  - name: seller
    type: object
    required: true
    properties:
      name: {type: string, required: true}
      rating: {type: number}
  - name: offers
    type: array
    items:
      type: number
`))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Apply(map[string]any{
		"seller": map[string]any{"name": "ACME Corp", "rating": "4.5"},
		"offers": []any{"19.99", 25.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seller, _ := res.Data["seller"].(map[string]any)
	if seller["rating"] != 4.5 {
		t.Errorf("nested rating = %v (%T)", seller["rating"], seller["rating"])
	}
	offers, _ := res.Data["offers"].([]any)
	if len(offers) != 2 || offers[0] != 19.99 || offers[1] != 25.0 {
		t.Errorf("offers = %v", offers)
	}
}

func TestApply_ValidatorConstraint(t *testing.T) {
	s, err := FromYAML([]byte(`
name: page
fields:
  - name: url
    type: string
    required: true
    validators: [url]
`))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Apply(map[string]any{"url": "not a url"}); err == nil {
		t.Fatal("expected validator failure")
	} else if kind, _ := fault.KindOf(err); kind != fault.KindValidation {
		t.Errorf("kind = %q, want %q", kind, fault.KindValidation)
	}

	if _, err := s.Apply(map[string]any{"url": "https://example.com/x"}); err != nil {
		t.Errorf("valid value rejected: %v", err)
	}
}

func TestApply_BooleanCoercion(t *testing.T) {
	s := quoteSchema(t)

	res, err := s.Apply(map[string]any{
		"symbol": "ACME",
		"price":  1.0,
		"halted": "true",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["halted"] != true {
		t.Errorf("halted = %v (%T), want true", res.Data["halted"], res.Data["halted"])
	}
}
