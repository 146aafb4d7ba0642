package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpetrov/finance-advisor/internal/advisor"
	"github.com/mpetrov/finance-advisor/internal/api/middleware"
	"github.com/mpetrov/finance-advisor/internal/stats"
)

// Currency figures go out as JSON numbers, matching the chart layer's
// expectations.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// AdvisorHandler exposes the aggregation and AI operations over HTTP.
type AdvisorHandler struct {
	service          *advisor.Service
	log              zerolog.Logger
	defaultUserID    string
	adviceTimeout    time.Duration
	recommendTimeout time.Duration
}

// NewAdvisorHandler creates the handler. Timeouts bound the
// model-facing operations; zero values fall back to 60s/120s.
func NewAdvisorHandler(service *advisor.Service, log zerolog.Logger, defaultUserID string, adviceTimeout, recommendTimeout time.Duration) *AdvisorHandler {
	if adviceTimeout <= 0 {
		adviceTimeout = 60 * time.Second
	}
	if recommendTimeout <= 0 {
		recommendTimeout = 120 * time.Second
	}
	return &AdvisorHandler{
		service:          service,
		log:              log,
		defaultUserID:    defaultUserID,
		adviceTimeout:    adviceTimeout,
		recommendTimeout: recommendTimeout,
	}
}

// userID resolves the acting user. Session auth lives outside this
// service; the upstream proxy injects X-User-ID.
func (h *AdvisorHandler) userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return h.defaultUserID
}

// Stats handles GET /api/stats.
func (h *AdvisorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context(), h.userID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statsResponse{
		ByCategory:       st.ByCategory,
		ByMonth:          st.ByMonth,
		TotalIncome:      st.Summary.TotalIncome,
		TotalExpense:     st.Summary.TotalExpense,
		Balance:          st.Summary.Balance,
		TransactionCount: st.Summary.TransactionCount,
	})
}

type statsResponse struct {
	ByCategory       []stats.CategoryTotal `json:"byCategory"`
	ByMonth          []stats.MonthBucket   `json:"byMonth"`
	TotalIncome      decimal.Decimal       `json:"totalIncome"`
	TotalExpense     decimal.Decimal       `json:"totalExpense"`
	Balance          decimal.Decimal       `json:"balance"`
	TransactionCount int                   `json:"transactionCount"`
}

// Advice handles POST /api/ai/advice.
func (h *AdvisorHandler) Advice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.adviceTimeout)
	defer cancel()

	advice, err := h.service.Advice(ctx, h.userID(r))
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate AI advice")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

// Chat handles POST /api/ai/chat.
func (h *AdvisorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.adviceTimeout)
	defer cancel()

	answer, err := h.service.Answer(ctx, h.userID(r), req.Question)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get answer")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Recommend handles POST /api/ai/recommend.
func (h *AdvisorHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product  string  `json:"product"`
		MinPrice float64 `json:"minPrice"`
		MaxPrice float64 `json:"maxPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.recommendTimeout)
	defer cancel()

	rec, err := h.service.Recommend(ctx, advisor.RecommendationRequest{
		ProductQuery: req.Product,
		MinPrice:     decimal.NewFromFloat(req.MinPrice),
		MaxPrice:     decimal.NewFromFloat(req.MaxPrice),
	})
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate recommendations")
		return
	}

	if rec.Degraded {
		// Degraded mode: raw model text instead of products, still 200.
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"products":    []advisor.ProductCandidate{},
			"shoppingTip": rec.FallbackText,
			"fallback":    true,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products":    rec.Products,
		"shoppingTip": rec.ShoppingTip,
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation failures surface verbatim; gateway failures surface as a
// generic message without transport detail.
func (h *AdvisorHandler) writeServiceError(w http.ResponseWriter, err error, generic string) {
	var vErr *advisor.ValidationError
	if errors.As(err, &vErr) {
		middleware.WriteError(w, http.StatusBadRequest, vErr.Error())
		return
	}

	var gErr *advisor.GatewayError
	if errors.As(err, &gErr) {
		h.log.Error().Err(err).Msg("Model gateway call failed")
		middleware.WriteError(w, http.StatusBadGateway, generic)
		return
	}

	h.log.Error().Err(err).Msg("Request failed")
	middleware.WriteError(w, http.StatusInternalServerError, generic)
}
