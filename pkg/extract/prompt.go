package extract

import (
	"strings"

	"github.com/gleanhq/glean/pkg/schema"
)

// SystemPrompt is shared by every extraction call.
const SystemPrompt = `You are a data extraction assistant. Extract structured data from the provided content.

Content may be provided as Markdown, HTML, or plain text.

Respond with ONLY valid JSON matching the schema. No explanations.

Rules:
1. Required fields: use null if not found
2. Optional fields: omit if not found
3. URLs: use absolute URLs when possible
4. Numbers: extract numeric value only (no currency symbols)`

// BuildPrompt assembles the user prompt: schema description, optional
// caller instruction, then the content fenced off from the directions.
func BuildPrompt(content string, s schema.Schema, instruction string) string {
	var prompt strings.Builder

	prompt.WriteString("Extract structured data from the following content.\n\n")
	prompt.WriteString(s.ToPromptDescription())

	if instruction != "" {
		prompt.WriteString("\n## Additional Instructions\n")
		prompt.WriteString(instruction)
		prompt.WriteString("\n")
	}

	prompt.WriteString("\n## Content\n")
	prompt.WriteString("```\n")
	prompt.WriteString(content)
	prompt.WriteString("\n```\n")

	return prompt.String()
}

// StripMarkdownCodeBlock unwraps JSON that models sometimes fence in
// ```json blocks despite instructions.
func StripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}

	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
