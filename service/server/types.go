package server

import (
	"context"
	"net/http"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

// Options configures the HTTP API.
type Options struct {
	Port    int
	Parser  receiptparser.Service
	Storage storage.Service
	Logger  *logger.Logger
}

type service struct {
	opts    Options
	handler http.Handler
}

// Service serves the receipt HTTP API.
type Service interface {
	Handler() http.Handler
	Run(ctx context.Context) error
}

// ParseResponse is returned by POST /api/receipts/parse.
type ParseResponse struct {
	Receipt         *model.AppleReceipt `json:"receipt"`
	HasTransactions bool                `json:"hasTransactions"`
	ReceiptID       int64               `json:"receiptId,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
