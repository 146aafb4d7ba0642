package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mpetrov/finance-advisor/internal/ledger"
	"github.com/mpetrov/finance-advisor/internal/stats"
)

// OnboardingAdvice is returned when a user asks for advice before
// recording any transactions. It is a normal response, not an error.
const OnboardingAdvice = "You haven't recorded any transactions yet. Start adding your income and expenses to get personalized financial advice!"

// Archiver persists raw model output for later inspection. A nil
// archiver disables archiving; failures must never surface to callers.
type Archiver interface {
	Archive(ctx context.Context, kind, raw string)
}

// Options tunes the advisory operations.
type Options struct {
	AdviceRecentN      int
	ChatRecentN        int
	MaxAdviceTokens    int32
	MaxRecommendTokens int32
}

func (o Options) withDefaults() Options {
	if o.AdviceRecentN <= 0 {
		o.AdviceRecentN = DefaultAdviceRecentN
	}
	if o.ChatRecentN <= 0 {
		o.ChatRecentN = DefaultChatRecentN
	}
	if o.MaxAdviceTokens <= 0 {
		o.MaxAdviceTokens = 1024
	}
	if o.MaxRecommendTokens <= 0 {
		o.MaxRecommendTokens = 4096
	}
	return o
}

// Service runs the aggregation and AI pipeline end to end: ledger read,
// aggregation, prompt construction, one model call, normalization, and
// link enrichment. It holds no per-request state; concurrent requests
// produce independent snapshots.
type Service struct {
	store    ledger.Store
	model    ModelClient
	archiver Archiver
	log      zerolog.Logger
	opts     Options
}

// NewService wires the pipeline. archiver may be nil.
func NewService(store ledger.Store, model ModelClient, archiver Archiver, log zerolog.Logger, opts Options) *Service {
	return &Service{
		store:    store,
		model:    model,
		archiver: archiver,
		log:      log,
		opts:     opts.withDefaults(),
	}
}

// Stats aggregates the user's ledger.
func (s *Service) Stats(ctx context.Context, userID string) (stats.Stats, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return stats.Stats{}, fmt.Errorf("list transactions: %w", err)
	}
	st := stats.Compute(txs)
	if st.SkippedCount > 0 {
		s.log.Warn().
			Str("user_id", userID).
			Int("skipped", st.SkippedCount).
			Msg("Skipped malformed transactions during aggregation")
	}
	return st, nil
}

// Advice generates personalized financial advice from the full ledger.
// An empty ledger short-circuits to the onboarding message without
// calling the model.
func (s *Service) Advice(ctx context.Context, userID string) (string, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		return OnboardingAdvice, nil
	}

	prompt := BuildAdvicePrompt(stats.Compute(txs), txs, s.opts.AdviceRecentN)

	out, err := s.model.Generate(ctx, GenerateRequest{
		Prompt:          prompt,
		MaxOutputTokens: s.opts.MaxAdviceTokens,
	})
	if err != nil {
		return "", err
	}
	s.archive(ctx, "advice", out)

	return NormalizeAdvice(out), nil
}

// Answer responds to a free-form question with the user's recent ledger
// as context and web search enabled.
func (s *Service) Answer(ctx context.Context, userID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &ValidationError{Field: "question", Reason: "question is required"}
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	recent := txs
	if len(recent) > s.opts.ChatRecentN {
		recent = recent[:s.opts.ChatRecentN]
	}

	out, err := s.model.Generate(ctx, GenerateRequest{
		Prompt:            question,
		SystemInstruction: BuildChatSystemPrompt(stats.Compute(recent)),
		EnableWebSearch:   true,
		MaxOutputTokens:   s.opts.MaxAdviceTokens,
	})
	if err != nil {
		return "", err
	}
	s.archive(ctx, "chat", out)

	return NormalizeAdvice(out), nil
}

// Recommend finds products matching the request. Input is validated
// before any external call. A degraded normalization outcome is a
// successful result carrying the raw model text, never an error.
func (s *Service) Recommend(ctx context.Context, req RecommendationRequest) (Recommendation, error) {
	if err := req.Validate(); err != nil {
		return Recommendation{}, err
	}

	out, err := s.model.Generate(ctx, GenerateRequest{
		Prompt:          BuildRecommendationPrompt(req),
		EnableWebSearch: true,
		MaxOutputTokens: s.opts.MaxRecommendTokens,
	})
	if err != nil {
		return Recommendation{}, err
	}
	s.archive(ctx, "recommend", out)

	rec := NormalizeRecommendation(out)
	if rec.Degraded {
		s.log.Info().
			Str("product", req.ProductQuery).
			Msg("Recommendation output was not parseable, returning raw text")
		return rec, nil
	}

	for i, p := range rec.Products {
		rec.Products[i] = Enrich(p)
	}
	return rec, nil
}

func (s *Service) archive(ctx context.Context, kind string, out RawOutput) {
	if s.archiver == nil {
		return
	}
	s.archiver.Archive(ctx, kind, out.JoinText())
}
