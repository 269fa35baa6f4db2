package orchestrator

import (
	"context"
	"time"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/output"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/source"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

type service struct {
	sourceService  source.Service
	parserService  receiptparser.Service
	storageService storage.Service
	outputService  output.Service
	versionInfo    model.VersionInfo
	logger         *logger.Logger

	newRunID func() string
	now      func() time.Time
}

// loaded is a parse result plus the raw bytes it was parsed from.
type loaded struct {
	result model.ReceiptResult
	raw    []byte
}

// Service is the interface for the orchestrator service
type Service interface {
	Orchestrate(ctx context.Context, flags model.Flags) error
	ParseAll(ctx context.Context, refs []string, concurrency int) []model.ReceiptResult
}
