package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/finance-advisor/internal/domain"
	"github.com/mpetrov/finance-advisor/internal/ledger/memory"
)

// mockModel records calls and replays a canned response.
type mockModel struct {
	calls   int
	lastReq GenerateRequest
	out     RawOutput
	err     error
}

func (m *mockModel) Generate(ctx context.Context, req GenerateRequest) (RawOutput, error) {
	m.calls++
	m.lastReq = req
	return m.out, m.err
}

func newTestService(t *testing.T, model *mockModel, txs ...domain.Transaction) *Service {
	t.Helper()
	store := memory.NewStore()
	for _, tx := range txs {
		require.NoError(t, store.AddTransaction(context.Background(), "u1", tx))
	}
	return NewService(store, model, nil, zerolog.Nop(), Options{})
}

func demoTx(amount string, kind domain.Kind, daysAgo int) domain.Transaction {
	return domain.Transaction{
		ID:         amount,
		Amount:     decimal.RequireFromString(amount),
		Kind:       kind,
		OccurredOn: time.Now().AddDate(0, 0, -daysAgo),
		Category:   domain.Category{ID: "dining", Name: "Dining"},
	}
}

func TestRecommendRejectsBeforeGatewayCall(t *testing.T) {
	model := &mockModel{}
	svc := newTestService(t, model)

	_, err := svc.Recommend(context.Background(), RecommendationRequest{
		ProductQuery: "headphones",
		MinPrice:     decimal.New(50, 0),
		MaxPrice:     decimal.New(10, 0),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, model.calls, "validation failures must not reach the gateway")
}

func TestRecommendStructuredResult(t *testing.T) {
	model := &mockModel{out: textOutput(
		`{"products":[{"name":"Sony","price":49.99,"directUrl":"https://example.com/p","source":"Amazon"}],"shoppingTip":"tip"}`,
	)}
	svc := newTestService(t, model)

	rec, err := svc.Recommend(context.Background(), RecommendationRequest{
		ProductQuery: "headphones",
		MaxPrice:     decimal.New(100, 0),
	})
	require.NoError(t, err)

	assert.False(t, rec.Degraded)
	require.Len(t, rec.Products, 1)
	assert.NotEmpty(t, rec.Products[0].Links, "products must be enriched with retailer links")
	assert.True(t, rec.Products[0].Links[0].IsPrimary)

	assert.True(t, model.lastReq.EnableWebSearch, "recommendations use web search")
	assert.Equal(t, 1, model.calls)
}

func TestRecommendDegradedIsNotAnError(t *testing.T) {
	model := &mockModel{out: textOutput("Sorry, I couldn't find anything useful.")}
	svc := newTestService(t, model)

	rec, err := svc.Recommend(context.Background(), RecommendationRequest{
		ProductQuery: "headphones",
		MaxPrice:     decimal.New(100, 0),
	})
	require.NoError(t, err, "degraded parsing is a designed outcome, not an error")

	assert.True(t, rec.Degraded)
	assert.Empty(t, rec.Products)
	assert.Equal(t, "Sorry, I couldn't find anything useful.", rec.FallbackText)
}

func TestRecommendGatewayErrorSurfaces(t *testing.T) {
	model := &mockModel{err: &GatewayError{Op: "generate", Err: errors.New("rate limited")}}
	svc := newTestService(t, model)

	_, err := svc.Recommend(context.Background(), RecommendationRequest{
		ProductQuery: "headphones",
		MaxPrice:     decimal.New(100, 0),
	})

	var gErr *GatewayError
	require.ErrorAs(t, err, &gErr)
}

func TestAdviceEmptyLedgerShortCircuits(t *testing.T) {
	model := &mockModel{}
	svc := newTestService(t, model)

	advice, err := svc.Advice(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, OnboardingAdvice, advice)
	assert.Equal(t, 0, model.calls, "empty ledger must not call the model")
}

func TestAdviceHappyPath(t *testing.T) {
	model := &mockModel{out: textOutput("Cut back on dining.")}
	svc := newTestService(t, model,
		demoTx("100", domain.KindIncome, 3),
		demoTx("40", domain.KindExpense, 1),
	)

	advice, err := svc.Advice(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Cut back on dining.", advice)
	assert.Equal(t, 1, model.calls)
	assert.False(t, model.lastReq.EnableWebSearch, "advice does not need web search")
	assert.Contains(t, model.lastReq.Prompt, "Total Income: $100.00")
}

func TestAnswerValidatesQuestion(t *testing.T) {
	model := &mockModel{}
	svc := newTestService(t, model)

	_, err := svc.Answer(context.Background(), "u1", "  ")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, model.calls)
}

func TestAnswerUsesContextAndWebSearch(t *testing.T) {
	model := &mockModel{out: textOutput("Index funds are a reasonable start.")}
	svc := newTestService(t, model,
		demoTx("3000", domain.KindIncome, 5),
		demoTx("120", domain.KindExpense, 2),
	)

	answer, err := svc.Answer(context.Background(), "u1", "How should I start investing?")
	require.NoError(t, err)

	assert.Equal(t, "Index funds are a reasonable start.", answer)
	assert.True(t, model.lastReq.EnableWebSearch)
	assert.Equal(t, "How should I start investing?", model.lastReq.Prompt)
	assert.Contains(t, model.lastReq.SystemInstruction, "Total Income: $3000.00")
}

func TestStatsComputesOverLedger(t *testing.T) {
	svc := newTestService(t, &mockModel{},
		demoTx("100", domain.KindIncome, 3),
		demoTx("40", domain.KindExpense, 1),
	)

	st, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, st.Summary.Balance.Equal(decimal.RequireFromString("60")))
	assert.Equal(t, 2, st.Summary.TransactionCount)
}
