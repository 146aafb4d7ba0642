package advisor

import (
	"testing"
)

func textOutput(blocks ...string) RawOutput {
	out := RawOutput{}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, Block{Kind: BlockText, Text: b})
	}
	return out
}

func TestNormalizeRecommendationRoundTrip(t *testing.T) {
	raw := "Sure! Here are the results you asked for:\n" +
		"```json\n" +
		`{"products":[{"name":"Sony WH-CH520","price":49.99,"rating":4.4,"pros":["light","cheap"],"cons":["plastic"],"summary":"Solid pick.","badge":"Best Overall","directUrl":"https://example.com/p/1","source":"Amazon","searchQuery":"sony wh-ch520"}],"shoppingTip":"Wait for sales."}` +
		"\n```\nLet me know if you need more."

	rec := NormalizeRecommendation(textOutput(raw))

	if rec.Degraded {
		t.Fatalf("expected structured result, got degraded with fallback %q", rec.FallbackText)
	}
	if rec.ShoppingTip != "Wait for sales." {
		t.Errorf("shoppingTip = %q, want %q", rec.ShoppingTip, "Wait for sales.")
	}
	if len(rec.Products) != 1 {
		t.Fatalf("got %d products, want 1", len(rec.Products))
	}

	p := rec.Products[0]
	if p.Name != "Sony WH-CH520" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Price.StringFixed(2) != "49.99" {
		t.Errorf("price = %s, want 49.99", p.Price)
	}
	if p.Rating != 4.4 {
		t.Errorf("rating = %v, want 4.4", p.Rating)
	}
	if len(p.Pros) != 2 || len(p.Cons) != 1 {
		t.Errorf("pros/cons = %v / %v", p.Pros, p.Cons)
	}
	if p.SourceRetailer != "Amazon" || p.DirectURL != "https://example.com/p/1" {
		t.Errorf("source/directUrl = %q / %q", p.SourceRetailer, p.DirectURL)
	}
}

func TestNormalizeRecommendationDegraded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no braces at all", raw: "I could not find any products matching that query, sorry."},
		{name: "invalid json in braces", raw: "here: {products: oops,}"},
		{name: "missing products field", raw: `{"shoppingTip":"nope"}`},
		{name: "products not a list", raw: `{"products":"none","shoppingTip":"x"}`},
		{name: "empty output", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NormalizeRecommendation(textOutput(tt.raw))
			if !rec.Degraded {
				t.Fatal("expected degraded outcome")
			}
			if rec.FallbackText != tt.raw {
				t.Errorf("fallbackText = %q, want original raw string %q", rec.FallbackText, tt.raw)
			}
			if len(rec.Products) != 0 {
				t.Errorf("products = %v, want empty", rec.Products)
			}
		})
	}
}

func TestNormalizeRecommendationZeroProductsIsNotDegraded(t *testing.T) {
	rec := NormalizeRecommendation(textOutput(`{"products":[],"shoppingTip":"Nothing in budget."}`))
	if rec.Degraded {
		t.Fatal("legitimately empty product list must not be degraded")
	}
	if rec.ShoppingTip != "Nothing in budget." {
		t.Errorf("shoppingTip = %q", rec.ShoppingTip)
	}
}

func TestNormalizeRecommendationPerEntryDrop(t *testing.T) {
	raw := `{"products":[
		{"name":"Good","price":10.00},
		{"name":"Bad price","price":"call us"},
		{"price":5.00},
		"stray note between products",
		42,
		{"name":"String price","price":"15.50"}
	],"shoppingTip":"tip"}`

	rec := NormalizeRecommendation(textOutput(raw))
	if rec.Degraded {
		t.Fatal("single bad entries must not degrade the whole batch")
	}
	if len(rec.Products) != 2 {
		t.Fatalf("got %d products, want 2 (bad entries dropped individually)", len(rec.Products))
	}
	if rec.Products[0].Name != "Good" {
		t.Errorf("first product = %q", rec.Products[0].Name)
	}
	if rec.Products[1].Price.StringFixed(2) != "15.50" {
		t.Errorf("numeric string price not coerced: %s", rec.Products[1].Price)
	}
}

func TestNormalizeRecommendationNonListProductsDegrades(t *testing.T) {
	raw := `{"products":"not a list","shoppingTip":"tip"}`

	rec := NormalizeRecommendation(textOutput(raw))
	if !rec.Degraded {
		t.Fatal("a non-list products value must degrade")
	}
	if rec.FallbackText != raw {
		t.Errorf("fallback = %q, want original raw text", rec.FallbackText)
	}
}

func TestNormalizeRecommendationDefaultsAndClamps(t *testing.T) {
	raw := `{"products":[{"name":"Widget","price":20,"rating":7.5}],"shoppingTip":""}`

	rec := NormalizeRecommendation(textOutput(raw))
	if rec.Degraded {
		t.Fatal("unexpected degraded outcome")
	}
	p := rec.Products[0]
	if p.SearchQuery != "Widget" {
		t.Errorf("searchQuery = %q, want product name fallback", p.SearchQuery)
	}
	if p.Rating != 5 {
		t.Errorf("rating = %v, want clamped to 5", p.Rating)
	}
}

func TestNormalizeRecommendationNoCapOnProducts(t *testing.T) {
	raw := `{"products":[
		{"name":"a","price":1},{"name":"b","price":2},{"name":"c","price":3},
		{"name":"d","price":4},{"name":"e","price":5}
	],"shoppingTip":"t"}`

	rec := NormalizeRecommendation(textOutput(raw))
	if len(rec.Products) != 5 {
		t.Errorf("got %d products, want all 5 the model returned", len(rec.Products))
	}
}

func TestNormalizeRecommendationIgnoresNonTextBlocks(t *testing.T) {
	out := RawOutput{Blocks: []Block{
		{Kind: BlockArtifact},
		{Kind: BlockText, Text: `{"products":[{"name":"x","price":1}],`},
		{Kind: BlockArtifact},
		{Kind: BlockText, Text: `"shoppingTip":"joined"}`},
	}}

	rec := NormalizeRecommendation(out)
	if rec.Degraded {
		t.Fatalf("text blocks split across artifacts should still parse, fallback: %q", rec.FallbackText)
	}
	if rec.ShoppingTip != "joined" {
		t.Errorf("shoppingTip = %q", rec.ShoppingTip)
	}
}

func TestExtractJSONSpan(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "bare object", raw: `{"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "fenced with tag", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`, wantOK: true},
		{name: "fenced without tag", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`, wantOK: true},
		{name: "prose around", raw: "Result: {\"a\":1} done", want: `{"a":1}`, wantOK: true},
		{name: "no braces", raw: "nothing here", wantOK: false},
		{name: "reversed braces", raw: "} {", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONSpan(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("span = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAdvice(t *testing.T) {
	if got := NormalizeAdvice(textOutput("Spend less on dining.")); got != "Spend less on dining." {
		t.Errorf("got %q", got)
	}
	if got := NormalizeAdvice(textOutput("part one", "part two")); got != "part one\npart two" {
		t.Errorf("blocks not joined in order: %q", got)
	}
	if got := NormalizeAdvice(RawOutput{}); got != AdviceUnavailable {
		t.Errorf("empty output: got %q, want sentinel", got)
	}
	if got := NormalizeAdvice(textOutput("  \n ")); got != AdviceUnavailable {
		t.Errorf("whitespace output: got %q, want sentinel", got)
	}
}
