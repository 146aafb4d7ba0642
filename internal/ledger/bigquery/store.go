// Package bigquery implements the ledger store on a BigQuery dataset.
package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/mpetrov/finance-advisor/internal/domain"
)

const transactionsTable = "transactions"

// transactionRow maps one ledger record onto the transactions table
// schema. Amount is NUMERIC; the category reference is denormalized
// onto the row so reads need no join.
type transactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	UserID        string     `bigquery:"user_id"`
	Amount        *big.Rat   `bigquery:"amount"`
	Kind          string     `bigquery:"kind"`
	OccurredOn    civil.Date `bigquery:"occurred_on"`
	Description   string     `bigquery:"description"`

	CategoryID    string `bigquery:"category_id"`
	CategoryName  string `bigquery:"category_name"`
	CategoryIcon  string `bigquery:"category_icon"`
	CategoryColor string `bigquery:"category_color"`
}

func (r *transactionRow) toDomain() domain.Transaction {
	amount := decimal.Zero
	if r.Amount != nil {
		amount = decimal.NewFromBigRat(r.Amount, 2)
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		Amount:      amount,
		Kind:        domain.Kind(r.Kind),
		OccurredOn:  r.OccurredOn.In(time.UTC),
		Description: r.Description,
		Category: domain.Category{
			ID:    r.CategoryID,
			Name:  r.CategoryName,
			Icon:  r.CategoryIcon,
			Color: r.CategoryColor,
		},
	}
}

// Store is a BigQuery-backed ledger.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// NewStore creates a BigQuery client for the given project and dataset.
func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	if projectID == "" || dataset == "" {
		return nil, fmt.Errorf("bigquery ledger requires project and dataset")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

// ListTransactions queries the user's ledger, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			amount,
			kind,
			occurred_on,
			description,
			category_id,
			category_name,
			category_icon,
			category_color
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY occurred_on DESC
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: running query: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: reading row: %w", err)
		}
		txs = append(txs, row.toDomain())
	}
	return txs, nil
}

// AddTransaction streams one row into the transactions table.
func (s *Store) AddTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	row := &transactionRow{
		TransactionID: tx.ID,
		UserID:        userID,
		Amount:        tx.Amount.Rat(),
		Kind:          string(tx.Kind),
		OccurredOn:    civil.DateOf(tx.OccurredOn),
		Description:   tx.Description,
		CategoryID:    tx.Category.ID,
		CategoryName:  tx.Category.Name,
		CategoryIcon:  tx.Category.Icon,
		CategoryColor: tx.Category.Color,
	}

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("AddTransaction: inserting row: %w", err)
	}
	return nil
}

// Close releases the BigQuery client.
func (s *Store) Close() error {
	return s.client.Close()
}
