package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpetrov/finance-advisor/internal/advisor"
	"github.com/mpetrov/finance-advisor/internal/api/handlers"
	"github.com/mpetrov/finance-advisor/internal/api/middleware"
	"github.com/mpetrov/finance-advisor/internal/audit"
	"github.com/mpetrov/finance-advisor/internal/config"
	"github.com/mpetrov/finance-advisor/internal/ledger"
	"github.com/mpetrov/finance-advisor/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(ctx, ledger.Config{
		Backend:         cfg.LedgerBackend,
		SQLitePath:      cfg.SQLiteDBPath,
		BigQueryProject: cfg.BigQueryProject,
		BigQueryDataset: cfg.BigQueryDataset,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger store")
	}
	defer store.Close()

	model := advisor.NewGeminiClient(cfg.ModelName, log)

	var archiver advisor.Archiver
	if gcs := audit.NewGCSArchiver(cfg.AuditBucket, log); gcs != nil {
		archiver = gcs
	}

	service := advisor.NewService(store, model, archiver, log, advisor.Options{
		MaxAdviceTokens:    int32(cfg.MaxAdviceTokens),
		MaxRecommendTokens: int32(cfg.MaxRecommendTokens),
	})

	handler := handlers.NewAdvisorHandler(service, log, cfg.DefaultUserID, cfg.AdviceTimeout, cfg.RecommendTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", methodHandler(http.MethodGet, handler.Stats))
	mux.HandleFunc("/api/ai/advice", methodHandler(http.MethodPost, handler.Advice))
	mux.HandleFunc("/api/ai/chat", methodHandler(http.MethodPost, handler.Chat))
	mux.HandleFunc("/api/ai/recommend", methodHandler(http.MethodPost, handler.Recommend))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chain := middleware.RequestID(
		middleware.Logger(log)(
			middleware.Recovery(log)(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: chain,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.LedgerBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down API server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func methodHandler(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		fn(w, r)
	}
}
