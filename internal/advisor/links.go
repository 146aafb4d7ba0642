package advisor

import "net/url"

// RetailerLink is one purchase or search entry derived for a product.
type RetailerLink struct {
	Label       string `json:"label"`
	URL         string `json:"url"`
	AccentColor string `json:"accentColor"`
	IsPrimary   bool   `json:"isPrimary"`
}

// retailer is one row of the static search-URL table. The set and its
// ordering are configuration data, never derived from model output.
type retailer struct {
	label     string
	searchURL string
	accent    string
}

var retailers = []retailer{
	{label: "Amazon", searchURL: "https://www.amazon.com/s?k=", accent: "#FF9900"},
	{label: "Google", searchURL: "https://www.google.com/search?tbm=shop&q=", accent: "#4285F4"},
	{label: "Best Buy", searchURL: "https://www.bestbuy.com/site/searchpage.jsp?st=", accent: "#0046BE"},
	{label: "Walmart", searchURL: "https://www.walmart.com/search?q=", accent: "#0071DC"},
	{label: "eBay", searchURL: "https://www.ebay.com/sch/i.html?_nkw=", accent: "#E53238"},
}

const primaryAccent = "#FF9900"

// BuildLinks derives the ordered retailer entries for a product. The
// direct product URL, when present, comes first as the sole primary
// entry; the generic search entries follow in table order. The result
// is deterministic and the candidate is never mutated.
func BuildLinks(p ProductCandidate) []RetailerLink {
	query := p.SearchQuery
	if query == "" {
		query = p.Name
	}
	encoded := url.QueryEscape(query)

	links := make([]RetailerLink, 0, len(retailers)+1)

	if p.DirectURL != "" {
		source := p.SourceRetailer
		if source == "" {
			source = "Store"
		}
		links = append(links, RetailerLink{
			Label:       "Buy on " + source,
			URL:         p.DirectURL,
			AccentColor: primaryAccent,
			IsPrimary:   true,
		})
	}

	for _, r := range retailers {
		links = append(links, RetailerLink{
			Label:       r.label,
			URL:         r.searchURL + encoded,
			AccentColor: r.accent,
		})
	}

	return links
}

// Enrich returns a copy of the candidate with Links populated.
// Enriching twice yields identical link lists.
func Enrich(p ProductCandidate) ProductCandidate {
	p.Links = BuildLinks(p)
	return p
}
