package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
)

func TestParseResult(t *testing.T) {
	assert.Equal(t, "ok", ParseResult(nil))
	assert.Equal(t, "data_object_identifier_missing", ParseResult(receiptparser.ErrDataObjectIdentifierMissing))
	assert.Equal(t, "invalid_date", ParseResult(fmt.Errorf("wrapped: %w", receiptparser.ErrInvalidDate)))
	assert.Equal(t, "error", ParseResult(errors.New("io")))
}

func TestObserveParse(t *testing.T) {
	ok := receiptsParsed.WithLabelValues(SourceCLI, "ok")
	before := testutil.ToFloat64(ok)

	ObserveParse(SourceCLI, time.Now(), &model.AppleReceipt{}, nil)
	ObserveParse(SourceCLI, time.Now(), nil, receiptparser.ErrASN1ParsingFailed)

	assert.Equal(t, before+1, testutil.ToFloat64(ok))
	assert.Equal(t, float64(1), testutil.ToFloat64(receiptsParsed.WithLabelValues(SourceCLI, "asn1_parsing_failed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveCustomerInfo(nil)
	ObserveHTTP("/healthz", http.StatusOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "receipt_parser_customer_info_requests_total")
	assert.Contains(t, rec.Body.String(), `receipt_parser_http_requests_total{code="200",route="/healthz"}`)
}
