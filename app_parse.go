package main

import (
	"context"
	"fmt"
	"os"

	"github.com/thirukguru/receipt-parser/model"
	awsconfig "github.com/thirukguru/receipt-parser/service/aws_config"
	"github.com/thirukguru/receipt-parser/service/config"
	"github.com/thirukguru/receipt-parser/service/orchestrator"
	"github.com/thirukguru/receipt-parser/service/output"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/source"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/banner"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"github.com/thirukguru/receipt-parser/shared/spinner"
)

func runParse(ctx context.Context, flags model.Flags, cfg *config.Config, log *logger.Logger) error {
	outputService := output.NewService(flags.Output, flags.OutputFile)
	if outputService.Format() != output.FormatJSON && !flags.NoBanner {
		banner.DrawBannerTitle()
	}

	var storageService storage.Service
	if flags.Store {
		s, err := storage.NewService(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer s.Close()
		storageService = s
	}

	sourceService := source.NewService(os.Stdin, source.NewS3ClientFactory(awsconfig.NewService(), cfg.AWS))
	parserService := receiptparser.NewService(receiptparser.WithLogger(log))

	if err := sourceService.Prepare(ctx, flags.Receipts); err != nil {
		return err
	}

	if outputService.Format() == output.FormatTable && !usesStdin(flags.Receipts) {
		spinner.StartSpinner("")
	}

	orchestratorService := orchestrator.NewService(
		sourceService,
		parserService,
		storageService,
		outputService,
		versionInfo(),
		log,
	)

	flags.Concurrency = cfg.Concurrency
	return orchestratorService.Orchestrate(ctx, flags)
}

func usesStdin(refs []string) bool {
	for _, r := range refs {
		if r == source.StdinRef {
			return true
		}
	}
	return false
}
