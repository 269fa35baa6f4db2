// Package orchestrator runs a parse of one or more receipts end to end.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/metrics"
	"github.com/thirukguru/receipt-parser/service/output"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/source"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

var (
	// ErrNoReceipts is returned when a run has nothing to parse.
	ErrNoReceipts = errors.New("no receipts given")
	// ErrParseFailures is returned when at least one receipt of a run failed.
	ErrParseFailures = errors.New("receipts failed to parse")
)

// NewService creates a new orchestrator service. storageService may be nil when
// history is disabled; log may be nil to use the default logger.
func NewService(
	sourceService source.Service,
	parserService receiptparser.Service,
	storageService storage.Service,
	outputService output.Service,
	versionInfo model.VersionInfo,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.Default()
	}
	return &service{
		sourceService:  sourceService,
		parserService:  parserService,
		storageService: storageService,
		outputService:  outputService,
		versionInfo:    versionInfo,
		logger:         log,
		newRunID:       uuid.NewString,
		now:            time.Now,
	}
}

func (s *service) Orchestrate(ctx context.Context, flags model.Flags) error {
	if flags.Version {
		return s.versionWorkflow()
	}

	return s.parseWorkflow(ctx, flags)
}

func (s *service) versionWorkflow() error {
	s.outputService.StopSpinner()
	return s.outputService.RenderVersion(s.versionInfo)
}

func (s *service) parseWorkflow(ctx context.Context, flags model.Flags) error {
	if len(flags.Receipts) == 0 {
		s.outputService.StopSpinner()
		return ErrNoReceipts
	}

	runID := s.newRunID()
	log := s.logger.With(zap.String("run", runID))
	log.Debug("parsing receipts", zap.Int("count", len(flags.Receipts)), zap.Int("concurrency", flags.Concurrency))

	items := s.parseAll(logger.WithLogger(ctx, log), flags.Receipts, flags.Concurrency)

	if flags.Store {
		if err := s.persist(ctx, runID, items); err != nil {
			s.outputService.StopSpinner()
			return fmt.Errorf("failed to persist receipts: %w", err)
		}
	}

	results := make([]model.ReceiptResult, len(items))
	failed := 0
	for i, item := range items {
		results[i] = item.result
		if !item.result.OK() {
			failed++
		}
	}

	s.outputService.StopSpinner()
	if err := s.outputService.RenderReceipts(model.RenderReceiptsInput{
		RunUUID: runID,
		Now:     s.now(),
		Version: s.versionInfo.Version,
		Results: results,
	}); err != nil {
		return fmt.Errorf("failed to render receipts: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrParseFailures, failed, len(results))
	}
	return nil
}

// ParseAll loads and parses every ref with at most concurrency workers. Results keep the
// order of refs and carry per-ref errors; one failure never stops the others.
func (s *service) ParseAll(ctx context.Context, refs []string, concurrency int) []model.ReceiptResult {
	items := s.parseAll(ctx, refs, concurrency)
	results := make([]model.ReceiptResult, len(items))
	for i, item := range items {
		results[i] = item.result
	}
	return results
}

func (s *service) parseAll(ctx context.Context, refs []string, concurrency int) []loaded {
	if concurrency < 1 {
		concurrency = 1
	}

	items := make([]loaded, len(refs))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			items[i] = s.parseOne(groupCtx, ref)
			return nil
		})
	}
	_ = g.Wait()

	return items
}

func (s *service) parseOne(ctx context.Context, ref string) loaded {
	log := logger.FromContext(ctx).With(zap.String("source", ref))
	started := time.Now()
	item := loaded{result: model.ReceiptResult{Source: ref}}

	if err := ctx.Err(); err != nil {
		item.result.Err = err
		return item
	}

	raw, err := s.sourceService.Load(ctx, ref)
	if err != nil {
		item.result.Err = fmt.Errorf("failed to load receipt: %w", err)
		item.result.Duration = time.Since(started)
		metrics.ObserveParse(metrics.SourceCLI, started, nil, err)
		log.Warn("failed to load receipt", zap.Error(err))
		return item
	}
	item.raw = raw

	receipt, err := s.parserService.Parse(raw)
	item.result.Duration = time.Since(started)
	metrics.ObserveParse(metrics.SourceCLI, started, receipt, err)
	if err != nil {
		item.result.Err = err
		log.AppleWarning("failed to parse receipt", zap.Error(err))
		return item
	}

	item.result.Receipt = receipt
	log.Purchase("parsed receipt",
		zap.String("bundle_id", receipt.BundleID),
		zap.Int("purchases", len(receipt.InAppPurchases)),
		zap.Duration("duration", item.result.Duration))
	return item
}

// persist stores every parsed receipt and records the assigned ids on the results.
func (s *service) persist(ctx context.Context, runID string, items []loaded) error {
	if s.storageService == nil {
		return nil
	}
	for i := range items {
		if !items[i].result.OK() {
			continue
		}
		id, err := s.storageService.SaveReceipt(ctx, storage.SaveReceiptInput{
			RunUUID: runID,
			Source:  items[i].result.Source,
			Version: s.versionInfo.Version,
			Raw:     items[i].raw,
			Receipt: items[i].result.Receipt,
		})
		if err != nil {
			return err
		}
		items[i].result.ReceiptID = id
	}
	return nil
}
