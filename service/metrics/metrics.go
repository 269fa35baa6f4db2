// Package metrics exposes Prometheus counters for receipt parsing.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
)

// Sources label where a parse request came from.
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

const resultOK = "ok"

var (
	// receiptsParsed counts parse attempts by source and result
	receiptsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_parser_receipts_parsed_total",
		Help: "Total receipts parsed by source and result",
	}, []string{"source", "result"})

	// parseDuration tracks parse latency
	parseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "receipt_parser_parse_duration_seconds",
		Help:    "Receipt parse duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{"source"})

	// purchasesParsed tracks in-app purchases per receipt
	purchasesParsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "receipt_parser_in_app_purchases",
		Help:    "Number of in-app purchases per parsed receipt",
		Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 500},
	})

	// customerInfoRequests counts backend lookups by result
	customerInfoRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_parser_customer_info_requests_total",
		Help: "Total customer info requests by result",
	}, []string{"result"})

	// httpRequests counts API requests by route and status code
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_parser_http_requests_total",
		Help: "Total HTTP API requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveParse records one parse attempt that started at started.
func ObserveParse(source string, started time.Time, receipt *model.AppleReceipt, err error) {
	parseDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	receiptsParsed.WithLabelValues(source, ParseResult(err)).Inc()
	if err == nil && receipt != nil {
		purchasesParsed.Observe(float64(len(receipt.InAppPurchases)))
	}
}

// ParseResult is the result label for a parse error.
func ParseResult(err error) string {
	if err == nil {
		return resultOK
	}
	var parseErr *receiptparser.Error
	if errors.As(err, &parseErr) {
		return strings.ReplaceAll(parseErr.Kind.String(), " ", "_")
	}
	return "error"
}

// ObserveCustomerInfo records one customer info lookup.
func ObserveCustomerInfo(err error) {
	result := resultOK
	if err != nil {
		result = "error"
	}
	customerInfoRequests.WithLabelValues(result).Inc()
}

// ObserveHTTP records one API response.
func ObserveHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
