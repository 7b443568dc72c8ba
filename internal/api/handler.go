package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"

	"sportrate/tennis-ingestion/internal/api/respond"
	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/ingest"
	"sportrate/tennis-ingestion/internal/quota"
)

// Operator actions accepted by the import endpoint
const (
	ActionTestConnection = "test_connection"
	ActionImportLatest   = ingest.ActionImportLatest
	ActionImportJuly     = ingest.ActionImportJuly
	ActionQuotaStatus    = "get_quota_status"
	ActionDebugResponse  = "debug_api_response"
)

const maxBodyBytes = 1 << 20

// ImportService is what the handlers drive
type ImportService interface {
	TestConnection(ctx context.Context) (*ingest.ConnectionReport, error)
	ImportATPMatches(ctx context.Context) (*ingest.Result, error)
	ImportATPJuly2025(ctx context.Context) (*ingest.Result, error)
	QuotaStatus(ctx context.Context) (quota.Status, error)
	DebugResponse(ctx context.Context) (*ingest.DebugReport, error)
}

// HealthChecker reports database health
type HealthChecker interface {
	Health(ctx context.Context) error
}

type action struct {
	// minCalls is the quota an action needs before it is allowed to start
	minCalls int
	run      func(ctx context.Context) (interface{}, error)
}

// Handler serves the operator endpoints
type Handler struct {
	svc     ImportService
	db      HealthChecker
	actions map[string]action
}

// NewHandler creates the handler set. db may be nil.
func NewHandler(svc ImportService, db HealthChecker) *Handler {
	h := &Handler{svc: svc, db: db}
	h.actions = map[string]action{
		ActionTestConnection: {minCalls: 1, run: func(ctx context.Context) (interface{}, error) {
			return svc.TestConnection(ctx)
		}},
		ActionImportLatest: {minCalls: 1, run: func(ctx context.Context) (interface{}, error) {
			return svc.ImportATPMatches(ctx)
		}},
		ActionImportJuly: {minCalls: 1, run: func(ctx context.Context) (interface{}, error) {
			return svc.ImportATPJuly2025(ctx)
		}},
		ActionQuotaStatus: {minCalls: 0, run: func(ctx context.Context) (interface{}, error) {
			return svc.QuotaStatus(ctx)
		}},
		ActionDebugResponse: {minCalls: 1, run: func(ctx context.Context) (interface{}, error) {
			return svc.DebugResponse(ctx)
		}},
	}
	return h
}

type importRequest struct {
	Action string `json:"action"`
}

// ImportResponse is the success body of the import endpoint
type ImportResponse struct {
	Success bool          `json:"success"`
	Action  string        `json:"action"`
	Data    interface{}   `json:"data"`
	Quota   *quota.Status `json:"quota,omitempty"`
}

// Import handles POST /api/tennis/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object with an action field")
		return
	}

	name := strings.TrimSpace(req.Action)
	act, ok := h.actions[name]
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_ACTION", "unknown action "+strconv.Quote(name))
		return
	}

	ctx := r.Context()
	if act.minCalls > 0 {
		st, err := h.svc.QuotaStatus(ctx)
		if err != nil {
			respond.WriteAppError(w, err, nil)
			return
		}
		if st.Remaining < act.minCalls {
			logger.Warn().
				Str("action", name).
				Int("remaining", st.Remaining).
				Int("required", act.minCalls).
				Msg("Refusing action, quota too low")
			respond.WriteAppError(w,
				apperr.Newf(apperr.KindQuotaExceeded, "action %s needs %d API calls, %d remaining", name, act.minCalls, st.Remaining),
				st,
			)
			return
		}
	}

	logger.Info().Str("action", name).Msg("Running operator action")
	data, err := act.run(ctx)
	if err != nil {
		var snapshot interface{}
		if apperr.Is(err, apperr.KindQuotaExceeded) {
			if st, qerr := h.svc.QuotaStatus(ctx); qerr == nil {
				snapshot = st
			}
		}
		respond.WriteAppError(w, err, snapshot)
		return
	}

	resp := ImportResponse{Success: true, Action: name, Data: data}
	if st, err := h.svc.QuotaStatus(ctx); err == nil {
		resp.Quota = &st
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheckDB handles GET /health/db
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNCONFIGURED", "no database configured")
		return
	}
	if err := h.db.Health(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Database health check failed")
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNHEALTHY", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}
