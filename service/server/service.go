// Package server exposes receipt parsing over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/thirukguru/receipt-parser/service/metrics"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"github.com/thirukguru/receipt-parser/version"
	"go.uber.org/zap"
)

const (
	maxBodySize     = 16 << 20
	shutdownTimeout = 10 * time.Second
	requestIDHeader = "X-Request-ID"
)

// NewService creates the HTTP API.
func NewService(opts Options) Service {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	s := &service{opts: opts}

	mux := http.NewServeMux()
	s.route(mux, "POST /api/receipts/parse", s.handleParse)
	s.route(mux, "GET /api/receipts", s.handleRecent)
	s.route(mux, "GET /api/receipts/{id}/purchases", s.handlePurchases)
	s.route(mux, "GET /api/transactions/{id}", s.handleTransactionHistory)
	s.route(mux, "GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	s.handler = mux
	return s
}

func (s *service) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("receipt API listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.opts.Logger.Info("shutting down receipt API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route wraps h with request ids, logging and metrics.
func (s *service) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		l := s.opts.Logger.With(zap.String("request_id", requestID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()

		h(rec, r.WithContext(logger.WithLogger(r.Context(), l)))

		metrics.ObserveHTTP(pattern, rec.status)
		l.Debug("request served",
			zap.String("route", pattern),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)))
	})
}

func (s *service) handleParse(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err, "")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty request body"), "")
		return
	}

	started := time.Now()
	receipt, err := s.opts.Parser.Parse(data)
	metrics.ObserveParse(metrics.SourceAPI, started, receipt, err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err, metrics.ParseResult(err))
		return
	}

	resp := ParseResponse{Receipt: receipt, HasTransactions: len(receipt.InAppPurchases) > 0}
	if s.opts.Storage != nil && r.URL.Query().Get("save") == "true" {
		raw, _ := receiptparser.DecodeReceiptData(data)
		id, err := s.opts.Storage.SaveReceipt(r.Context(), storage.SaveReceiptInput{
			RunUUID: w.Header().Get(requestIDHeader),
			Source:  "api",
			Version: version.Version,
			Raw:     raw,
			Receipt: receipt,
		})
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to save receipt", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err, "")
			return
		}
		resp.ReceiptID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *service) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}
	receipts, err := s.opts.Storage.GetRecentReceipts(r.URL.Query().Get("bundle_id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *service) handlePurchases(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid receipt id %q", r.PathValue("id")), "")
		return
	}
	purchases, err := s.opts.Storage.ListPurchases(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (s *service) handleTransactionHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	events, err := s.opts.Storage.GetTransactionHistory(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String,
	})
}

func (s *service) requireStorage(w http.ResponseWriter) bool {
	if s.opts.Storage == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("history storage is disabled"), "")
		return false
	}
	return true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, kind string) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}
