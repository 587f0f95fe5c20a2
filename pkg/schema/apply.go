package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gleanhq/glean/pkg/fault"
)

// Result is the outcome of applying a schema to parsed model output.
type Result struct {
	// Data is the repaired record: coerced values, defaults filled,
	// unknown fields passed through untouched.
	Data map[string]any

	// Confidence is the fraction of required fields the model actually
	// produced, before defaulting. 1.0 when the schema has no required
	// fields.
	Confidence float64

	// Defaulted and Coerced name the fields the validator had to repair.
	Defaulted []string
	Coerced   []string
}

// Apply validates parsed model output against the schema. Values of the
// wrong type are coerced when a lossless conversion exists; absent
// fields take their default; an optional field with no default becomes
// an explicit null. A required field that is absent with no default, or
// any value that cannot be coerced, is a validation fault naming the
// field. Apply is idempotent: applying it to its own output changes
// nothing.
func (s Schema) Apply(data map[string]any) (Result, error) {
	res := Result{Data: make(map[string]any, len(data))}

	// Unknown fields pass through so callers keep whatever extra signal
	// the model volunteered.
	known := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		known[f.Name] = true
	}
	for k, v := range data {
		if !known[k] {
			res.Data[k] = v
		}
	}

	requiredTotal := 0
	requiredPresent := 0

	for _, field := range s.Fields {
		val, present := data[field.Name]
		if field.Required {
			requiredTotal++
		}

		if !present || val == nil {
			switch {
			case field.Default != nil:
				// Defaults go through coercion too, so output value types
				// are canonical regardless of how the default was written.
				def, _, err := coerceValue(field, field.Default)
				if err != nil {
					return Result{}, err
				}
				res.Data[field.Name] = def
				res.Defaulted = append(res.Defaulted, field.Name)
			case field.Required:
				return Result{}, fault.Newf(fault.KindValidation,
					"required field %q missing from extraction", field.Name)
			default:
				res.Data[field.Name] = nil
			}
			continue
		}

		coerced, changed, err := coerceValue(field, val)
		if err != nil {
			return Result{}, err
		}
		if changed {
			res.Coerced = append(res.Coerced, field.Name)
		}
		res.Data[field.Name] = coerced

		if field.Required {
			requiredPresent++
		}

		if err := s.runValidators(field, coerced); err != nil {
			return Result{}, err
		}
	}

	if requiredTotal == 0 {
		res.Confidence = 1.0
	} else {
		res.Confidence = float64(requiredPresent) / float64(requiredTotal)
	}
	return res, nil
}

// runValidators applies the field's validator tags to a single value.
func (s Schema) runValidators(field Field, val any) error {
	if s.validate == nil || len(field.Validators) == 0 {
		return nil
	}
	tag := strings.Join(field.Validators, ",")
	if err := s.validate.Var(val, tag); err != nil {
		return fault.Wrap(fault.KindValidation,
			fmt.Sprintf("field %q failed constraint %q", field.Name, tag), err)
	}
	return nil
}

// coerceValue converts val to the field's type, reporting whether a
// conversion happened. Uncoercible values are validation faults.
func coerceValue(field Field, val any) (any, bool, error) {
	switch field.Type {
	case TypeString:
		return coerceString(field.Name, val)
	case TypeNumber:
		return coerceNumber(field.Name, val)
	case TypeInteger:
		return coerceInteger(field.Name, val)
	case TypeBoolean:
		return coerceBoolean(field.Name, val)
	case TypeArray:
		return coerceArray(field, val)
	case TypeObject:
		return coerceObject(field, val)
	default:
		return val, false, nil
	}
}

func coerceString(name string, val any) (any, bool, error) {
	switch v := val.(type) {
	case string:
		return v, false, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), true, nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true, nil
	case int:
		return strconv.Itoa(v), true, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	default:
		return nil, false, uncoercible(name, "string", val)
	}
}

func coerceNumber(name string, val any) (any, bool, error) {
	switch v := val.(type) {
	case float64:
		return v, false, nil
	case int:
		// YAML defaults decode integers as int.
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false, uncoercible(name, "number", val)
		}
		return f, true, nil
	default:
		return nil, false, uncoercible(name, "number", val)
	}
}

func coerceInteger(name string, val any) (any, bool, error) {
	switch v := val.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, false, uncoercible(name, "integer", val)
		}
		return int64(v), true, nil
	case int64:
		return v, false, nil
	case int:
		return int64(v), true, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false, uncoercible(name, "integer", val)
		}
		return n, true, nil
	default:
		return nil, false, uncoercible(name, "integer", val)
	}
}

func coerceBoolean(name string, val any) (any, bool, error) {
	switch v := val.(type) {
	case bool:
		return v, false, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v)))
		if err != nil {
			return nil, false, uncoercible(name, "boolean", val)
		}
		return b, true, nil
	default:
		return nil, false, uncoercible(name, "boolean", val)
	}
}

func coerceArray(field Field, val any) (any, bool, error) {
	arr, ok := val.([]any)
	if !ok {
		return nil, false, uncoercible(field.Name, "array", val)
	}
	if field.Items == nil {
		return arr, false, nil
	}

	item := *field.Items
	if item.Name == "" {
		item.Name = field.Name + "[]"
	}

	out := make([]any, len(arr))
	anyChanged := false
	for i, elem := range arr {
		coerced, changed, err := coerceValue(item, elem)
		if err != nil {
			return nil, false, err
		}
		out[i] = coerced
		anyChanged = anyChanged || changed
	}
	return out, anyChanged, nil
}

func coerceObject(field Field, val any) (any, bool, error) {
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, false, uncoercible(field.Name, "object", val)
	}
	if len(field.Properties) == 0 {
		return obj, false, nil
	}

	nested := FromFields(field.Name, "", field.Properties)
	res, err := nested.Apply(obj)
	if err != nil {
		return nil, false, err
	}
	return res.Data, len(res.Coerced) > 0 || len(res.Defaulted) > 0, nil
}

func uncoercible(name, want string, val any) error {
	return fault.Newf(fault.KindValidation,
		"field %q: cannot coerce %T to %s", name, val, want)
}
