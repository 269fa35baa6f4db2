package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/thirukguru/receipt-parser/service/config"
	"github.com/thirukguru/receipt-parser/service/customerinfo"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/server"
	"github.com/thirukguru/receipt-parser/service/storage"
	historytable "github.com/thirukguru/receipt-parser/shared/history_table"
	jsonoutput "github.com/thirukguru/receipt-parser/shared/json_output"
	"github.com/thirukguru/receipt-parser/shared/logger"
	receipttable "github.com/thirukguru/receipt-parser/shared/receipt_table"
)

func runSubcommand(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "db":
		return runDBCommand(ctx, args)
	case "history":
		return runHistoryCommand(args)
	case "serve":
		return runServeCommand(ctx, args)
	case "customer":
		return runCustomerCommand(ctx, args)
	case "config":
		return runConfigCommand(args)
	case "version":
		fs := pflag.NewFlagSet("version", pflag.ContinueOnError)
		format := fs.StringP("output", "o", "table", "Output format")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return runVersion(ctx, *format)
	default:
		return fmt.Errorf("unsupported command: %s", cmd)
	}
}

// openStorage resolves the database path: --db-path, then the config file, then the default.
func openStorage(dbPath, configPath string) (storage.Service, error) {
	if dbPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.DBPath
	}
	return storage.NewService(dbPath)
}

func runDBCommand(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("db", pflag.ContinueOnError)
	dbPath := fs.String("db-path", "", "SQLite database path")
	configPath := fs.String("config-path", "", "Path to receipt-parser config file")
	olderThan := fs.Int("older-than", 30, "Purge receipts not parsed in N days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: receipt-parser db <vacuum|reindex|purge> [--db-path ...]")
	}

	store, err := openStorage(*dbPath, *configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sub := rest[0]
	switch sub {
	case "vacuum":
		return store.Vacuum(ctx)
	case "reindex":
		return store.Reindex(ctx)
	case "purge":
		count, err := store.PurgeOlderThan(ctx, *olderThan)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d receipts\n", count)
		return nil
	default:
		return fmt.Errorf("unsupported db command: %s", sub)
	}
}

func runHistoryCommand(args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	dbPath := fs.String("db-path", "", "SQLite database path")
	configPath := fs.String("config-path", "", "Path to receipt-parser config file")
	bundleID := fs.String("bundle-id", "", "Bundle ID filter")
	limit := fs.Int("limit", 20, "Number of rows to list")
	days := fs.Int("days", 30, "Number of days for trend analysis")
	compare := fs.Bool("compare", false, "Compare the two most recent receipts")
	exportJSON := fs.String("export-json", "", "Export trend output as JSON to file path")
	exportCSV := fs.String("export-csv", "", "Export trend output as CSV to file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: receipt-parser history <list|show|transaction|trends>")
	}

	store, err := openStorage(*dbPath, *configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sub := rest[0]
	switch sub {
	case "list":
		receipts, err := store.GetRecentReceipts(*bundleID, *limit)
		if err != nil {
			return err
		}
		historytable.RenderRecentReceipts(receipts)
		return nil
	case "show":
		if len(rest) < 2 {
			return fmt.Errorf("usage: receipt-parser history show <receipt-id>")
		}
		receiptID, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return err
		}
		purchases, err := store.ListPurchases(receiptID)
		if err != nil {
			return err
		}
		historytable.RenderPurchases(receiptID, purchases)
		return nil
	case "transaction":
		if len(rest) < 2 {
			return fmt.Errorf("usage: receipt-parser history transaction <original-transaction-id>")
		}
		events, err := store.GetTransactionHistory(rest[1])
		if err != nil {
			return err
		}
		historytable.RenderTransactionHistory(rest[1], events)
		return nil
	case "trends":
		return runTrendWorkflow(store, trendOptions{
			BundleID:   *bundleID,
			Days:       *days,
			Compare:    *compare,
			ExportJSON: *exportJSON,
			ExportCSV:  *exportCSV,
		})
	default:
		return fmt.Errorf("unsupported history command: %s", sub)
	}
}

type trendOptions struct {
	BundleID   string
	Days       int
	Compare    bool
	ExportJSON string
	ExportCSV  string
}

func runTrendWorkflow(store storage.Service, opts trendOptions) error {
	points, err := store.GetTrends(opts.BundleID, opts.Days)
	if err != nil {
		return err
	}
	historytable.RenderTrendTable(points)

	if opts.Compare {
		receipts, err := store.GetRecentReceipts(opts.BundleID, 2)
		if err == nil && len(receipts) >= 2 {
			cmp, err := store.GetReceiptComparison(receipts[1].ReceiptID, receipts[0].ReceiptID)
			if err == nil {
				historytable.RenderComparisonTable(cmp)
			}
		}
	}

	if strings.TrimSpace(opts.ExportJSON) != "" {
		b, err := json.MarshalIndent(points, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.ExportJSON, b, 0o644); err != nil {
			return err
		}
	}
	if strings.TrimSpace(opts.ExportCSV) != "" {
		f, err := os.Create(opts.ExportCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		w := csv.NewWriter(f)
		defer w.Flush()
		_ = w.Write([]string{"bundle_id", "date", "receipts", "purchases", "active"})
		for _, p := range points {
			_ = w.Write([]string{p.BundleID, p.Date, strconv.Itoa(p.Receipts), strconv.Itoa(p.Purchases), strconv.Itoa(p.Active)})
		}
	}

	return nil
}

func runServeCommand(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := fs.String("config-path", "", "Path to receipt-parser config file")
	dbPath := fs.String("db-path", "", "SQLite database path")
	port := fs.Int("port", 0, "HTTP port (default from config)")
	noHistory := fs.Bool("no-history", false, "Serve without the SQLite history")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	var store storage.Service
	if !*noHistory {
		s, err := storage.NewService(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer s.Close()
		store = s
	}

	fmt.Printf("Receipt API running on http://localhost:%d\n", cfg.Server.Port)
	return server.NewService(server.Options{
		Port:    cfg.Server.Port,
		Parser:  receiptparser.NewService(receiptparser.WithLogger(log)),
		Storage: store,
		Logger:  log,
	}).Run(ctx)
}

func runCustomerCommand(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("customer", pflag.ContinueOnError)
	configPath := fs.String("config-path", "", "Path to receipt-parser config file")
	apiKey := fs.String("api-key", "", "Backend API key (default from config)")
	baseURL := fs.String("base-url", "", "Backend base URL (default from config)")
	format := fs.StringP("output", "o", "table", "Output format (table or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: receipt-parser customer <app-user-id> [--api-key ...]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *apiKey != "" {
		cfg.API.APIKey = *apiKey
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client := customerinfo.NewService(cfg.API, customerinfo.WithLogger(log))
	info, err := client.GetCustomerInfo(logger.WithLogger(ctx, log), rest[0])
	if err != nil {
		return err
	}

	if *format == "json" {
		return jsonoutput.OutputJSON(info)
	}
	receipttable.DrawCustomerInfo(info, time.Now())
	return nil
}

func runConfigCommand(args []string) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	configPath := fs.String("config-path", "", "Path to receipt-parser config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: receipt-parser config <init|show|set <key> <value>>")
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	switch rest[0] {
	case "init":
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	case "show":
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		return jsonoutput.OutputJSON(redact(cfg))
	case "set":
		if len(rest) < 3 {
			return fmt.Errorf("usage: receipt-parser config set <key> <value>")
		}
		svc, err := config.NewService(path)
		if err != nil {
			return err
		}
		if err := svc.SetValue(rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Printf("Set %s in %s\n", rest[1], svc.Path())
		return nil
	default:
		return fmt.Errorf("unsupported config command: %s", rest[0])
	}
}

func redact(cfg *config.Config) config.Config {
	out := *cfg
	if out.API.APIKey != "" {
		out.API.APIKey = "********"
	}
	if out.AWS.SecretAccessKey != "" {
		out.AWS.SecretAccessKey = "********"
	}
	return out
}
