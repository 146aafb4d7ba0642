// Package ledger defines the read interface over a user's transaction
// ledger and the factory that selects a storage backend.
package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mpetrov/finance-advisor/internal/domain"
	bqstore "github.com/mpetrov/finance-advisor/internal/ledger/bigquery"
	"github.com/mpetrov/finance-advisor/internal/ledger/memory"
	"github.com/mpetrov/finance-advisor/internal/ledger/sqlite"
)

// Store supplies the ordered transaction collection for a user.
// ListTransactions returns records newest first. The aggregation core
// treats the ledger as read-only; AddTransaction exists for the seeder
// and the surrounding CRUD surface.
type Store interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	AddTransaction(ctx context.Context, userID string, tx domain.Transaction) error
	Close() error
}

// Backend names accepted by the factory.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

// Config selects and parameterizes a ledger backend.
type Config struct {
	Backend string

	SQLitePath string

	BigQueryProject string
	BigQueryDataset string
}

// Open constructs the configured ledger backend.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		log.Info().Msg("Using in-memory ledger backend")
		return memory.NewStore(), nil
	case BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		log.Info().Str("db_path", cfg.SQLitePath).Msg("Using sqlite ledger backend")
		return store, nil
	case BackendBigQuery:
		store, err := bqstore.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, fmt.Errorf("open bigquery ledger: %w", err)
		}
		log.Info().
			Str("project", cfg.BigQueryProject).
			Str("dataset", cfg.BigQueryDataset).
			Msg("Using BigQuery ledger backend")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
