package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/receiptparser/receipttest"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

func newTestServer(t *testing.T, withStorage bool) (http.Handler, storage.Service) {
	t.Helper()
	l, _ := logger.NewTest()
	opts := Options{Parser: receiptparser.NewService(receiptparser.WithLogger(l)), Logger: l}
	if withStorage {
		store, err := storage.NewService(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		opts.Storage = store
	}
	return NewService(opts).Handler(), opts.Storage
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(body)))
	return rec
}

func TestParseEndpoint(t *testing.T) {
	h, _ := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/receipts/parse", receipttest.Sample().Marshal())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "com.example.app", resp.Receipt.BundleID)
	assert.True(t, resp.HasTransactions)
	assert.Zero(t, resp.ReceiptID)
	assert.Contains(t, rec.Body.String(), `"bundleId":"com.example.app"`)
}

func TestParseEndpointErrors(t *testing.T) {
	h, _ := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/receipts/parse", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/receipts/parse", []byte("garbage"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "asn1_parsing_failed", errResp.Kind)

	rec = do(t, h, http.MethodGet, "/api/receipts/parse", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestParseAndSaveThenQueryHistory(t *testing.T) {
	h, _ := newTestServer(t, true)
	body := []byte(base64.StdEncoding.EncodeToString(receipttest.Sample().Marshal()))

	rec := do(t, h, http.MethodPost, "/api/receipts/parse?save=true", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Positive(t, resp.ReceiptID)

	rec = do(t, h, http.MethodGet, "/api/receipts?bundle_id=com.example.app", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []storage.ReceiptSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, storage.ReceiptHash(receipttest.Sample().Marshal()), recent[0].ReceiptHash)

	rec = do(t, h, http.MethodGet, "/api/receipts/"+itoa(resp.ReceiptID)+"/purchases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var purchases []storage.PurchaseSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &purchases))
	assert.Len(t, purchases, 2)

	rec = do(t, h, http.MethodGet, "/api/transactions/1000000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []storage.TransactionEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, storage.StatusActive, events[0].Status)

	rec = do(t, h, http.MethodGet, "/api/receipts?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/receipts/x/purchases", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryWithoutStorage(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(t, h, http.MethodGet, "/api/receipts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "receipt_parser_http_requests_total"))
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _ := logger.NewTest()
	svc := NewService(Options{Port: 0, Parser: receiptparser.NewService(receiptparser.WithLogger(l)), Logger: l})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
