package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumenfin/pulse/internal/analysis"
	"github.com/lumenfin/pulse/internal/common"
	"github.com/lumenfin/pulse/internal/service"
)

// Analyzer produces an analysis result on demand. Satisfied by
// analysis.Engine.
type Analyzer interface {
	Analyze(ctx context.Context) (*analysis.Result, error)
}

type handlers struct {
	storage  service.Storage
	analyzer Analyzer
	cache    *resultCache
	logger   *slog.Logger
}

func (h *handlers) routes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/accounts", h.handleAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", h.handleAccount).Methods(http.MethodGet)
	api.HandleFunc("/transactions", h.handleTransactions).Methods(http.MethodGet)
	api.HandleFunc("/analysis", h.handleAnalysis).Methods(http.MethodGet)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.storage.GetAccounts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *handlers) handleAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	account, err := h.storage.GetAccountByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

func (h *handlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	transactions, err := h.storage.GetTransactions(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// handleAnalysis serves the cached analysis when fresh enough, otherwise
// runs the pipeline. ?refresh=true forces a new run.
func (h *handlers) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	if !refresh {
		if result, ok := h.cache.Get(); ok {
			h.writeJSON(w, http.StatusOK, result)
			return
		}
	}

	result, err := h.analyzer.Analyze(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.cache.Set(result)
	h.writeJSON(w, http.StatusOK, result)
}

func transactionFilterFromQuery(r *http.Request) (service.TransactionFilter, error) {
	var filter service.TransactionFilter
	query := r.URL.Query()

	if raw := query.Get("startDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("startDate must be formatted as YYYY-MM-DD")
		}
		filter.StartDate = &parsed
	}
	if raw := query.Get("endDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("endDate must be formatted as YYYY-MM-DD")
		}
		filter.EndDate = &parsed
	}
	filter.AccountID = query.Get("accountId")

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, common.ErrNotFound) {
		status = http.StatusNotFound
	}

	if status >= 500 {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		// Don't leak internals on server errors.
		h.writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
