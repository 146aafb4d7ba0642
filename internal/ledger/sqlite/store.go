// Package sqlite implements the ledger store on a local sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/mpetrov/finance-advisor/internal/domain"
)

const dateFormat = "2006-01-02"

// Store is a sqlite-backed ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at dbPath and
// applies pending migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// ListTransactions returns the user's ledger, newest first, with the
// denormalized category reference joined in.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.amount, t.kind, t.occurred_on, t.description,
		       COALESCE(c.id, ''), COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, '')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.occurred_on DESC, t.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var (
			tx         domain.Transaction
			amount     string
			occurredOn string
		)
		if err := rows.Scan(
			&tx.ID, &amount, &tx.Kind, &occurredOn, &tx.Description,
			&tx.Category.ID, &tx.Category.Name, &tx.Category.Icon, &tx.Category.Color,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse amount %q: %w", tx.ID, amount, err)
		}
		tx.OccurredOn, err = time.Parse(dateFormat, occurredOn)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse date %q: %w", tx.ID, occurredOn, err)
		}

		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// AddTransaction inserts a record, upserting its category row first so
// the denormalized reference stays resolvable.
func (s *Store) AddTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	if !tx.Category.IsZero() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, icon, color) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon = excluded.icon, color = excluded.color
		`, tx.Category.ID, tx.Category.Name, tx.Category.Icon, tx.Category.Color)
		if err != nil {
			return fmt.Errorf("upsert category: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, kind, occurred_on, description, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID, userID, tx.Amount.String(), string(tx.Kind),
		tx.OccurredOn.Format(dateFormat), tx.Description, tx.Category.ID,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
