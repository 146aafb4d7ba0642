package advisor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AdviceUnavailable is returned on the advisory path when the model
// produced no usable text at all.
const AdviceUnavailable = "Unable to generate advice at this time."

// ProductCandidate is one normalized product recommendation. It is
// constructed solely by the normalizer and never mutated afterwards;
// enrichment returns a copy with Links populated.
type ProductCandidate struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Rating         float64         `json:"rating"`
	Pros           []string        `json:"pros"`
	Cons           []string        `json:"cons"`
	Summary        string          `json:"summary"`
	Badge          string          `json:"badge"`
	SourceRetailer string          `json:"source,omitempty"`
	DirectURL      string          `json:"directUrl,omitempty"`
	SearchQuery    string          `json:"searchQuery"`
	Links          []RetailerLink  `json:"links,omitempty"`
}

// Recommendation is the normalization outcome. Degraded is true iff
// structured parsing failed, in which case FallbackText holds the
// original raw model text and Products is empty. A model that
// legitimately returned zero products is NOT degraded.
type Recommendation struct {
	Products     []ProductCandidate
	ShoppingTip  string
	FallbackText string
	Degraded     bool
}

// fenceRe matches a triple-backtick code-fence marker with an optional
// language tag (```json, ```JSON, ```).
var fenceRe = regexp.MustCompile("```[a-zA-Z]*")

// NormalizeAdvice extracts plain advisory text from raw model output.
// It never fails: empty output resolves to the AdviceUnavailable
// sentinel.
func NormalizeAdvice(out RawOutput) string {
	text := strings.TrimSpace(out.JoinText())
	if text == "" {
		return AdviceUnavailable
	}
	return text
}

// NormalizeRecommendation converts raw model output into a
// Recommendation. Models routinely wrap JSON in markdown fences,
// surround it with prose, or emit invalid JSON; all of those resolve to
// a degraded result carrying the raw text. This function never returns
// an error.
//
// The work is split into a tolerant extraction stage (strip fences,
// slice the outermost brace span) and a strict construction stage
// (parse, then coerce each product entry independently).
func NormalizeRecommendation(out RawOutput) Recommendation {
	raw := out.JoinText()

	span, ok := extractJSONSpan(raw)
	if !ok {
		return degraded(raw)
	}

	var envelope struct {
		Products    []any  `json:"products"`
		ShoppingTip string `json:"shoppingTip"`
	}
	if err := json.Unmarshal([]byte(span), &envelope); err != nil {
		return degraded(raw)
	}
	if envelope.Products == nil {
		return degraded(raw)
	}

	// Per-entry coercion with drop: one bad product never poisons the
	// batch. A non-object entry between products is dropped like any
	// other bad entry. No cap is applied here; the top-3 limit is a
	// prompt-level instruction to the model.
	products := make([]ProductCandidate, 0, len(envelope.Products))
	for _, item := range envelope.Products {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := buildCandidate(entry); ok {
			products = append(products, p)
		}
	}

	return Recommendation{
		Products:    products,
		ShoppingTip: envelope.ShoppingTip,
	}
}

func degraded(raw string) Recommendation {
	return Recommendation{
		Products:     []ProductCandidate{},
		FallbackText: raw,
		Degraded:     true,
	}
}

// extractJSONSpan is the tolerant stage: every fence marker is removed,
// whitespace trimmed, and the span from the first '{' to the last '}'
// returned. ok is false when no such span exists.
func extractJSONSpan(raw string) (string, bool) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// buildCandidate is the strict stage for a single product entry.
// Entries without a usable name or price are skipped; everything else
// is coerced leniently.
func buildCandidate(entry map[string]any) (ProductCandidate, bool) {
	name := stringField(entry, "name")
	if name == "" {
		return ProductCandidate{}, false
	}

	price, ok := decimalField(entry, "price")
	if !ok {
		return ProductCandidate{}, false
	}

	p := ProductCandidate{
		Name:           name,
		Price:          price,
		Rating:         clampRating(floatField(entry, "rating")),
		Pros:           stringListField(entry, "pros"),
		Cons:           stringListField(entry, "cons"),
		Summary:        stringField(entry, "summary"),
		Badge:          stringField(entry, "badge"),
		SourceRetailer: stringField(entry, "source"),
		DirectURL:      stringField(entry, "directUrl"),
		SearchQuery:    stringField(entry, "searchQuery"),
	}
	if p.SearchQuery == "" {
		p.SearchQuery = p.Name
	}
	return p, true
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// decimalField accepts a JSON number or a numeric string. A present but
// non-numeric value means the entry should be dropped.
func decimalField(m map[string]any, key string) (decimal.Decimal, bool) {
	switch v := m[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(v, "$")))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			f, _ := d.Float64()
			return f
		}
	}
	return 0
}

func stringListField(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
