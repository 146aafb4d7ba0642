package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction as money in or money out.
// The string values are the wire values used by the ledger backends.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Category is the denormalized category reference carried on every
// transaction. Icon and Color are display hints owned by the ledger.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// IsZero reports whether the category reference is missing entirely.
// Transactions with a zero category are treated as malformed and are
// skipped during aggregation rather than aborting the computation.
func (c Category) IsZero() bool {
	return c.ID == "" && c.Name == ""
}

// Transaction is one immutable ledger record. Amount is always
// positive; Kind carries the direction.
type Transaction struct {
	ID          string
	Amount      decimal.Decimal
	Kind        Kind
	OccurredOn  time.Time
	Category    Category
	Description string
}

// MonthKey returns the calendar month bucket key for the transaction,
// formatted as YYYY-MM. Lexicographic order on this format is
// chronological order.
func (t Transaction) MonthKey() string {
	return t.OccurredOn.Format("2006-01")
}
