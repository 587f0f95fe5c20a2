package extract

import (
	"context"

	"github.com/gleanhq/glean/pkg/schema"
)

// Variant is a strategy specialized for one kind of content: a preset
// schema and instruction applied to every request. Per-request schema
// and instruction fields are ignored in favor of the variant's own.
type Variant struct {
	strategy    Strategy
	schema      schema.Schema
	instruction string
}

// NewVariant wraps a strategy with a fixed schema and instruction.
func NewVariant(s Strategy, sch schema.Schema, instruction string) *Variant {
	return &Variant{strategy: s, schema: sch, instruction: instruction}
}

// Extract runs the underlying strategy with the variant's schema and
// instruction substituted in.
func (v *Variant) Extract(ctx context.Context, req Request) (*Result, error) {
	req.Schema = v.schema
	req.Instruction = v.instruction
	return v.strategy.Extract(ctx, req)
}

// Schema returns the variant's preset schema.
func (v *Variant) Schema() schema.Schema {
	return v.schema
}

// NewProductVariant extracts e-commerce product listings. Name and
// price are required; currency defaults to USD when the page implies
// but does not state it.
func NewProductVariant(s Strategy) *Variant {
	sch := schema.FromFields("product", "An e-commerce product listing", []schema.Field{
		{Name: "name", Type: schema.TypeString, Required: true,
			Description: "Product name or title"},
		{Name: "price", Type: schema.TypeNumber, Required: true,
			Description: "Numeric price without currency symbols", Validators: []string{"min=0"}},
		{Name: "currency", Type: schema.TypeString, Default: "USD",
			Description: "ISO 4217 currency code", Examples: []string{"USD", "EUR"}},
		{Name: "availability", Type: schema.TypeString,
			Description: "Stock status such as in_stock or out_of_stock"},
		{Name: "brand", Type: schema.TypeString,
			Description: "Manufacturer or brand name"},
		{Name: "sku", Type: schema.TypeString,
			Description: "Stock keeping unit or product identifier"},
	})
	return NewVariant(s, sch,
		"Extract the primary product on the page, not related or recommended items.")
}

// NewArticleVariant extracts news and blog articles.
func NewArticleVariant(s Strategy) *Variant {
	sch := schema.FromFields("article", "A news article or blog post", []schema.Field{
		{Name: "headline", Type: schema.TypeString, Required: true,
			Description: "Article headline"},
		{Name: "author", Type: schema.TypeString,
			Description: "Byline author name"},
		{Name: "published_at", Type: schema.TypeString,
			Description: "Publication date, ISO 8601 when possible"},
		{Name: "body", Type: schema.TypeString, Required: true,
			Description: "Full article text without navigation or ads"},
		{Name: "tags", Type: schema.TypeArray,
			Items:       &schema.Field{Type: schema.TypeString},
			Description: "Topic tags or categories"},
	})
	return NewVariant(s, sch,
		"Extract the main article content, excluding comments and related links.")
}

var _ Strategy = (*Variant)(nil)
