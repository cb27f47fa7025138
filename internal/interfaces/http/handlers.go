package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/engine"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/rank"
)

// Source provides the latest scored snapshot. Implementations read the
// cache first and fall back to the snapshot store.
type Source interface {
	Latest(ctx context.Context) (engine.Report, error)
}

// ErrNoSnapshot is returned by a Source when nothing has been scored yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Handlers serves the read-only endpoints.
type Handlers struct {
	source   Source
	registry *rank.Registry
	log      zerolog.Logger
}

// NewHandlers wires the snapshot source and filter registry.
func NewHandlers(source Source, registry *rank.Registry, log zerolog.Logger) *Handlers {
	return &Handlers{
		source:   source,
		registry: registry,
		log:      log.With().Str("component", "handlers").Logger(),
	}
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// Health reports liveness and the age of the latest snapshot.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	}
	if report, err := h.source.Latest(r.Context()); err == nil {
		resp["snapshot_id"] = report.SnapshotID
		resp["snapshot_age_seconds"] = time.Since(report.ComputedAt).Seconds()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Pools returns the ranked snapshot, optionally narrowed by the filter,
// venue, and limit query parameters.
func (h *Handlers) Pools(w http.ResponseWriter, r *http.Request) {
	report, err := h.source.Latest(r.Context())
	if errors.Is(err, ErrNoSnapshot) {
		h.writeError(w, r, http.StatusNotFound, "no_snapshot", "no scored snapshot available yet")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot load failed")
		h.writeError(w, r, http.StatusInternalServerError, "snapshot_unavailable", "failed to load latest snapshot")
		return
	}

	opts := rank.Options{
		Filter: r.URL.Query().Get("filter"),
		Venue:  r.URL.Query().Get("venue"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}

	ranked, err := h.registry.Rank(report.Pools, opts)
	if errors.Is(err, domain.ErrUnknownFilter) {
		h.writeError(w, r, http.StatusBadRequest, "unknown_filter", err.Error())
		return
	}
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "rank_failed", err.Error())
		return
	}

	results := make([]domain.CompositeResult, 0, len(ranked))
	for _, p := range ranked {
		results = append(results, p.Result)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": report.SnapshotID,
		"computed_at": report.ComputedAt,
		"count":       len(results),
		"pools":       results,
		"excluded":    report.Excluded,
	})
}

// PoolByID returns the scored result for one pool.
func (h *Handlers) PoolByID(w http.ResponseWriter, r *http.Request) {
	report, err := h.source.Latest(r.Context())
	if errors.Is(err, ErrNoSnapshot) {
		h.writeError(w, r, http.StatusNotFound, "no_snapshot", "no scored snapshot available yet")
		return
	}
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "snapshot_unavailable", "failed to load latest snapshot")
		return
	}

	id := mux.Vars(r)["id"]
	for _, p := range report.Pools {
		if p.Result.PoolID == id {
			h.writeJSON(w, http.StatusOK, p.Result)
			return
		}
	}
	h.writeError(w, r, http.StatusNotFound, "pool_not_found", "no pool with id "+id+" in the latest snapshot")
}

// Filters lists the registered filter names and labels.
func (h *Handlers) Filters(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.Definitions()
	out := make([]map[string]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, map[string]string{"name": d.Name, "label": d.Label})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"filters": out})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found", "the requested endpoint does not exist")
}
