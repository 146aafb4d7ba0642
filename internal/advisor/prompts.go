package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpetrov/finance-advisor/internal/domain"
	"github.com/mpetrov/finance-advisor/internal/stats"
)

// DefaultAdviceRecentN is the number of recent transactions included in
// an advisory prompt.
const DefaultAdviceRecentN = 5

// DefaultChatRecentN is the size of the ledger slice used as chat context.
const DefaultChatRecentN = 20

// BuildAdvicePrompt renders the financial summary, the category
// breakdown, and the most recent n transactions into the advisory
// instruction. All currency figures carry exactly two fraction digits.
func BuildAdvicePrompt(st stats.Stats, txs []domain.Transaction, recentN int) string {
	if recentN <= 0 {
		recentN = DefaultAdviceRecentN
	}

	var b strings.Builder
	b.WriteString("You are a friendly and helpful personal finance advisor. Analyze the following financial data and provide actionable advice.\n\n")

	b.WriteString("## Financial Summary\n")
	b.WriteString("- Total Income: $" + st.Summary.TotalIncome.StringFixed(2) + "\n")
	b.WriteString("- Total Expenses: $" + st.Summary.TotalExpense.StringFixed(2) + "\n")
	b.WriteString("- Balance: $" + st.Summary.Balance.StringFixed(2) + "\n")
	b.WriteString(fmt.Sprintf("- Number of Transactions: %d\n\n", st.Summary.TransactionCount))

	b.WriteString("## Expense Breakdown by Category\n")
	for _, ct := range sortedCategories(st.ByCategory, 0) {
		b.WriteString(ct.Name + ": $" + ct.Total.StringFixed(2) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("## Recent Transactions\n")
	for _, t := range recentTransactions(txs, recentN) {
		sign := "-"
		if t.Kind == domain.KindIncome {
			sign = "+"
		}
		b.WriteString(sign + "$" + t.Amount.StringFixed(2) + " - " + t.Category.Name)
		if t.Description != "" {
			b.WriteString(" (" + t.Description + ")")
		}
		b.WriteString(" on " + t.OccurredOn.Format("2006-01-02") + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Please provide:\n")
	b.WriteString("1. A brief assessment of the user's financial health (2-3 sentences)\n")
	b.WriteString("2. Top 3 specific, actionable tips to improve their finances\n")
	b.WriteString("3. Which spending category they should watch most carefully and why\n")
	b.WriteString("4. A suggested monthly budget split based on their income (if income data is available)\n\n")
	b.WriteString("Keep the tone friendly, encouraging, and concise. Use dollar amounts where relevant. Format with clear headings.")

	return b.String()
}

// BuildChatSystemPrompt renders the user's financial context into the
// system instruction for free-form questions.
func BuildChatSystemPrompt(st stats.Stats) string {
	top := sortedCategories(st.ByCategory, 5)
	lines := make([]string, 0, len(top))
	for _, ct := range top {
		lines = append(lines, ct.Name+": $"+ct.Total.StringFixed(2))
	}

	var b strings.Builder
	b.WriteString("You are a knowledgeable and friendly personal finance assistant. You have access to the user's financial data and can search the web for current financial information.\n\n")
	b.WriteString("User's Financial Context:\n")
	b.WriteString("- Total Income: $" + st.Summary.TotalIncome.StringFixed(2) + "\n")
	b.WriteString("- Total Expenses: $" + st.Summary.TotalExpense.StringFixed(2) + "\n")
	b.WriteString("- Balance: $" + st.Summary.Balance.StringFixed(2) + "\n")
	b.WriteString(fmt.Sprintf("- Transaction Count: %d\n", st.Summary.TransactionCount))
	b.WriteString("- Top Spending Categories: " + strings.Join(lines, ", ") + "\n\n")
	b.WriteString("When answering:\n")
	b.WriteString("- Be concise and practical\n")
	b.WriteString("- Use the user's actual financial data when relevant\n")
	b.WriteString("- Search the web for current rates, prices, or financial news when needed\n")
	b.WriteString("- Give specific, actionable advice\n")
	b.WriteString("- Use dollar amounts when possible")

	return b.String()
}

// BuildRecommendationPrompt renders a product search instruction with
// price bounds and the exact JSON schema the model must return.
func BuildRecommendationPrompt(req RecommendationRequest) string {
	query := strings.TrimSpace(req.ProductQuery)
	minPrice := req.MinPrice.StringFixed(2)
	maxPrice := req.MaxPrice.StringFixed(2)

	var b strings.Builder
	b.WriteString("You are a shopping advisor. I need you to find 3 real products currently for sale.\n\n")
	b.WriteString("## Request\n")
	b.WriteString("- Product: " + query + "\n")
	b.WriteString("- Budget: $" + minPrice + " - $" + maxPrice + "\n\n")
	b.WriteString("## Instructions\n")
	b.WriteString("1. Search for \"" + query + "\" on Amazon and other major retailers\n")
	b.WriteString("2. Find 3 specific products that are CURRENTLY listed and priced between $" + minPrice + " and $" + maxPrice + "\n")
	b.WriteString("3. For each product, you MUST find the ACTUAL product page URL and the REAL current price shown on that page\n")
	b.WriteString("4. Search for each product individually to confirm its price and availability\n\n")
	b.WriteString("CRITICAL: I need REAL direct URLs to actual product pages, NOT search page URLs. Each URL should go directly to the product's detail/buy page. The price must be the actual listed price on that page.\n\n")
	b.WriteString("After searching, return ONLY valid JSON (no markdown, no backticks, no extra text):\n\n")
	b.WriteString(`{
  "products": [
    {
      "name": "Full Product Name",
      "price": 79.99,
      "rating": 4.5,
      "pros": ["pro 1", "pro 2", "pro 3"],
      "cons": ["con 1"],
      "summary": "Why this is a good pick.",
      "badge": "Best Overall",
      "directUrl": "https://www.amazon.com/actual-product-page/dp/BXXXXXXXXX",
      "source": "Amazon",
      "searchQuery": "product name for backup search"
    }
  ],
  "shoppingTip": "A useful buying tip."
}`)
	b.WriteString("\n\nBadges: first = \"Best Overall\", second = \"Best Value\", third = \"Budget Pick\".\n")
	b.WriteString("All prices MUST be real and between $" + minPrice + " and $" + maxPrice + ".")

	return b.String()
}

// sortedCategories returns a copy sorted by total descending, so prompt
// output does not depend on caller ordering. limit <= 0 means no limit.
func sortedCategories(cats []stats.CategoryTotal, limit int) []stats.CategoryTotal {
	out := make([]stats.CategoryTotal, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// recentTransactions returns the n most recent records, newest first.
func recentTransactions(txs []domain.Transaction, n int) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredOn.After(out[j].OccurredOn)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RecommendationRequest is the caller input for product recommendations.
type RecommendationRequest struct {
	ProductQuery string
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
}

// Validate rejects malformed requests before any external call: an
// empty query, a negative bound, or an inverted price range.
func (r RecommendationRequest) Validate() error {
	if strings.TrimSpace(r.ProductQuery) == "" {
		return &ValidationError{Field: "product", Reason: "product type is required"}
	}
	if r.MinPrice.IsNegative() || r.MaxPrice.IsNegative() {
		return &ValidationError{Field: "price range", Reason: "price bounds must not be negative"}
	}
	if r.MinPrice.GreaterThan(r.MaxPrice) {
		return &ValidationError{Field: "price range", Reason: "minPrice must not exceed maxPrice"}
	}
	return nil
}
