// Package stats computes category and monthly rollups from a raw
// transaction ledger. Everything here is a pure function of its input:
// no I/O, no shared state, deterministic output ordering.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mpetrov/finance-advisor/internal/domain"
)

// CategoryTotal is the aggregated expense total for one category.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Icon  string          `json:"icon"`
	Color string          `json:"color"`
	Total decimal.Decimal `json:"total"`
}

// MonthBucket holds income and expense sums for one calendar month.
// Month is formatted YYYY-MM.
type MonthBucket struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary is the ledger-wide rollup. Balance is always recomputed from
// the two totals, never stored independently.
type Summary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
}

// Stats is the full aggregation result consumed by both the dashboard
// handlers and the prompt builder.
type Stats struct {
	ByCategory []CategoryTotal `json:"byCategory"`
	ByMonth    []MonthBucket   `json:"byMonth"`
	Summary    Summary         `json:"summary"`

	// SkippedCount is the number of malformed records (expense with no
	// category reference) dropped during aggregation. Callers may log
	// it; it is not an error.
	SkippedCount int `json:"-"`
}

// Compute aggregates a ledger in a single pass.
//
// Category totals cover expense records only and are sorted by total
// descending; ties keep first-seen order. Month buckets cover all
// records and are sorted by month key ascending. An empty ledger yields
// empty slices and a zeroed summary.
func Compute(txs []domain.Transaction) Stats {
	type catAcc struct {
		CategoryTotal
		firstSeen int
	}

	catByID := make(map[string]*catAcc)
	catOrder := make([]*catAcc, 0)

	monthByKey := make(map[string]*MonthBucket)
	monthKeys := make([]string, 0)

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	counted := 0
	skipped := 0

	for _, t := range txs {
		if !t.Kind.Valid() {
			skipped++
			continue
		}
		// Only expenses feed the category rollup, so an uncategorized
		// income record is still countable; an uncategorized expense
		// is not.
		if t.Kind == domain.KindExpense && t.Category.IsZero() {
			skipped++
			continue
		}
		counted++

		key := t.MonthKey()
		bucket, ok := monthByKey[key]
		if !ok {
			bucket = &MonthBucket{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			monthByKey[key] = bucket
			monthKeys = append(monthKeys, key)
		}

		switch t.Kind {
		case domain.KindIncome:
			totalIncome = totalIncome.Add(t.Amount)
			bucket.Income = bucket.Income.Add(t.Amount)
		case domain.KindExpense:
			totalExpense = totalExpense.Add(t.Amount)
			bucket.Expense = bucket.Expense.Add(t.Amount)

			acc, ok := catByID[t.Category.ID]
			if !ok {
				acc = &catAcc{
					CategoryTotal: CategoryTotal{
						Name:  t.Category.Name,
						Icon:  t.Category.Icon,
						Color: t.Category.Color,
						Total: decimal.Zero,
					},
					firstSeen: len(catOrder),
				}
				catByID[t.Category.ID] = acc
				catOrder = append(catOrder, acc)
			}
			acc.Total = acc.Total.Add(t.Amount)
		}
	}

	// Total descending, first-seen order on ties.
	sort.SliceStable(catOrder, func(i, j int) bool {
		return catOrder[i].Total.GreaterThan(catOrder[j].Total)
	})
	byCategory := make([]CategoryTotal, len(catOrder))
	for i, acc := range catOrder {
		byCategory[i] = acc.CategoryTotal
	}

	sort.Strings(monthKeys)
	byMonth := make([]MonthBucket, len(monthKeys))
	for i, key := range monthKeys {
		byMonth[i] = *monthByKey[key]
	}

	return Stats{
		ByCategory: byCategory,
		ByMonth:    byMonth,
		Summary: Summary{
			TotalIncome:      totalIncome,
			TotalExpense:     totalExpense,
			Balance:          totalIncome.Sub(totalExpense),
			TransactionCount: counted,
		},
		SkippedCount: skipped,
	}
}
