// Package gateway provides the HTTP surface of the service: health,
// prometheus metrics, inbound webhooks, a WebSocket event stream, and an
// authenticated admin API over the analysis store. It binds to loopback
// by default and is a leaf module; nothing imports it.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
	"github.com/go-chi/chi/v5"
)

const (
	defaultAnalysesLimit = 50
	maxAnalysesLimit     = 500
	defaultSinceHours    = 24
)

// handleListAnalyses returns recent analyses as JSON.
// Query params: since_hours (default 24), limit (default 50, max 500).
func (g *Gateway) handleListAnalyses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "store not available", http.StatusServiceUnavailable)
			return
		}

		sinceHours := queryInt(r, "since_hours", defaultSinceHours)
		limit := queryInt(r, "limit", defaultAnalysesLimit)
		if limit > maxAnalysesLimit {
			limit = maxAnalysesLimit
		}
		since := time.Now().UTC().Add(-time.Duration(sinceHours) * time.Hour)

		analyses, err := g.store.RecentAnalyses(r.Context(), since, limit)
		if err != nil {
			g.logger.Error("list analyses failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if analyses == nil {
			analyses = []storage.MemeAnalysis{}
		}
		writeJSON(w, http.StatusOK, analyses)
	}
}

// reportResponse bundles the latest report with its recent history.
type reportResponse struct {
	Latest  storage.CoinReport   `json:"latest"`
	History []storage.CoinReport `json:"history"`
}

// handleGetReport returns the newest stored report for a symbol plus its
// history. Query param: history (default 10).
func (g *Gateway) handleGetReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "store not available", http.StatusServiceUnavailable)
			return
		}

		symbol := strings.ToUpper(strings.TrimPrefix(chi.URLParam(r, "symbol"), "$"))
		if symbol == "" {
			http.Error(w, "missing symbol", http.StatusBadRequest)
			return
		}

		latest, err := g.store.LatestCoinReport(r.Context(), symbol)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "no report for symbol", http.StatusNotFound)
			return
		}
		if err != nil {
			g.logger.Error("load report failed", "symbol", symbol, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		history, err := g.store.ReportHistory(r.Context(), symbol, queryInt(r, "history", 10))
		if err != nil {
			g.logger.Error("load report history failed", "symbol", symbol, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, reportResponse{Latest: latest, History: history})
	}
}

// handleChannelMetrics returns the latest rollup per source.
// Query param: platform ("" matches all).
func (g *Gateway) handleChannelMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "store not available", http.StatusServiceUnavailable)
			return
		}

		platform := post.Platform(r.URL.Query().Get("platform"))
		metrics, err := g.store.LatestChannelMetrics(r.Context(), platform)
		if err != nil {
			g.logger.Error("load channel metrics failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if metrics == nil {
			metrics = []storage.ChannelMetrics{}
		}
		writeJSON(w, http.StatusOK, metrics)
	}
}

// queryInt parses an integer query parameter, returning fallback on
// absence or garbage. Negative values fall back too.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
