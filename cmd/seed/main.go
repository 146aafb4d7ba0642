// Command seed populates the sqlite ledger backend with the default
// category set and a small demo ledger for local development.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mpetrov/finance-advisor/internal/config"
	"github.com/mpetrov/finance-advisor/internal/domain"
	"github.com/mpetrov/finance-advisor/internal/ledger/sqlite"
	"github.com/mpetrov/finance-advisor/internal/logger"
)

var defaultCategories = []domain.Category{
	{ID: "dining", Name: "Dining", Icon: "🍔", Color: "#EF4444"},
	{ID: "transport", Name: "Transport", Icon: "🚗", Color: "#F59E0B"},
	{ID: "shopping", Name: "Shopping", Icon: "🛍️", Color: "#8B5CF6"},
	{ID: "housing", Name: "Housing", Icon: "🏠", Color: "#3B82F6"},
	{ID: "entertainment", Name: "Entertainment", Icon: "🎬", Color: "#EC4899"},
	{ID: "healthcare", Name: "Healthcare", Icon: "🏥", Color: "#10B981"},
	{ID: "education", Name: "Education", Icon: "📚", Color: "#6366F1"},
	{ID: "salary", Name: "Salary", Icon: "💰", Color: "#22C55E"},
	{ID: "freelance", Name: "Freelance", Icon: "💼", Color: "#14B8A6"},
	{ID: "other", Name: "Other", Icon: "📦", Color: "#6B7280"},
}

func main() {
	cfg := config.Load()
	log := logger.New()

	var (
		dbPath = flag.String("db", cfg.SQLiteDBPath, "sqlite database path")
		userID = flag.String("user", cfg.DefaultUserID, "user to seed transactions for")
	)
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sqlite ledger")
	}
	defer store.Close()

	ctx := context.Background()
	byID := make(map[string]domain.Category, len(defaultCategories))
	for _, c := range defaultCategories {
		byID[c.ID] = c
	}

	now := time.Now()
	demo := []struct {
		amount   string
		kind     domain.Kind
		category string
		desc     string
		daysAgo  int
	}{
		{"3200.00", domain.KindIncome, "salary", "Monthly salary", 25},
		{"450.00", domain.KindIncome, "freelance", "Site redesign", 12},
		{"86.40", domain.KindExpense, "dining", "Dinner with friends", 2},
		{"42.15", domain.KindExpense, "transport", "Fuel", 4},
		{"129.99", domain.KindExpense, "shopping", "Running shoes", 6},
		{"1100.00", domain.KindExpense, "housing", "Rent", 24},
		{"15.50", domain.KindExpense, "entertainment", "Cinema", 8},
		{"60.00", domain.KindExpense, "healthcare", "Dental checkup", 15},
		{"35.00", domain.KindExpense, "education", "Online course", 18},
		{"12.30", domain.KindExpense, "dining", "Lunch", 1},
	}

	for _, d := range demo {
		amount, err := decimal.NewFromString(d.amount)
		if err != nil {
			log.Fatal().Err(err).Str("amount", d.amount).Msg("Bad seed amount")
		}
		tx := domain.Transaction{
			ID:          uuid.NewString(),
			Amount:      amount,
			Kind:        d.kind,
			OccurredOn:  now.AddDate(0, 0, -d.daysAgo),
			Category:    byID[d.category],
			Description: d.desc,
		}
		if err := store.AddTransaction(ctx, *userID, tx); err != nil {
			log.Fatal().Err(err).Str("description", d.desc).Msg("Failed to seed transaction")
		}
	}

	log.Info().
		Str("db_path", *dbPath).
		Str("user", *userID).
		Int("transactions", len(demo)).
		Msg("Seed data created")
}
