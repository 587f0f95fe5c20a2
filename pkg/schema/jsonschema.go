package schema

import "strings"

// ToJSONSchema renders the schema as a JSON Schema object, the shape
// providers expect for native structured output.
func (s Schema) ToJSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, field := range s.Fields {
		properties[field.Name] = fieldJSONSchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
		// Strict-mode backends reject schemas without this.
		"additionalProperties": false,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}

func fieldJSONSchema(f Field) map[string]any {
	out := map[string]any{
		"type": string(f.Type),
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if len(f.Examples) > 0 {
		out["examples"] = f.Examples
	}
	if f.Default != nil {
		out["default"] = f.Default
	}
	if f.Type == TypeArray && f.Items != nil {
		out["items"] = fieldJSONSchema(*f.Items)
	}
	if f.Type == TypeObject && len(f.Properties) > 0 {
		props := make(map[string]any, len(f.Properties))
		required := make([]string, 0, len(f.Properties))
		for _, p := range f.Properties {
			props[p.Name] = fieldJSONSchema(p)
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out["properties"] = props
		out["additionalProperties"] = false
		if len(required) > 0 {
			out["required"] = required
		}
	}
	return out
}

// ToPromptDescription renders the schema for the model prompt: the
// description as context followed by one line per field.
func (s Schema) ToPromptDescription() string {
	var sb strings.Builder

	sb.WriteString("## Content Type\n")
	if s.Description != "" {
		sb.WriteString(s.Description)
	} else {
		sb.WriteString("Extract the following structured data.")
	}
	sb.WriteString("\n\n## Fields to Extract\n")

	for _, field := range s.Fields {
		writeFieldLine(&sb, field, 0)
	}
	return sb.String()
}

func writeFieldLine(sb *strings.Builder, f Field, indent int) {
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString("- ")
	sb.WriteString(f.Name)
	sb.WriteString(" (")
	sb.WriteString(string(f.Type))
	if f.Required {
		sb.WriteString(", required")
	}
	sb.WriteString(")")
	if f.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Description)
	}
	if len(f.Examples) > 0 {
		sb.WriteString(" (e.g. ")
		sb.WriteString(strings.Join(f.Examples, ", "))
		sb.WriteString(")")
	}
	sb.WriteString("\n")

	if f.Type == TypeArray && f.Items != nil && f.Items.Type == TypeObject {
		sb.WriteString(prefix)
		sb.WriteString("  Each item:\n")
		for _, prop := range f.Items.Properties {
			writeFieldLine(sb, prop, indent+2)
		}
	}
	if f.Type == TypeObject {
		for _, prop := range f.Properties {
			writeFieldLine(sb, prop, indent+1)
		}
	}
}
