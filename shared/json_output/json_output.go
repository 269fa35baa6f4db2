package jsonoutput

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/thirukguru/receipt-parser/model"
)

var out io.Writer = os.Stdout

// OutputReceiptsJSON outputs a parse run as JSON
func OutputReceiptsJSON(input model.RenderReceiptsInput) error {
	output := BuildReceiptReport(input, time.Now().UTC().Format(time.RFC3339))
	return printJSON(output)
}

// BuildReceiptReport builds the receipt JSON report model.
func BuildReceiptReport(input model.RenderReceiptsInput, generatedAt string) model.ReceiptReportJSON {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	report := model.ReceiptReportJSON{
		RunUUID:     input.RunUUID,
		Version:     input.Version,
		GeneratedAt: generatedAt,
		Receipts:    []model.ParsedReceiptJSON{},
		Errors:      []model.ReceiptErrorJSON{},
	}
	report.Summary.Total = len(input.Results)

	for _, r := range input.Results {
		if !r.OK() {
			report.Summary.Failed++
			msg := "no receipt"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			report.Errors = append(report.Errors, model.ReceiptErrorJSON{Source: r.Source, Error: msg})
			continue
		}

		active := activeProducts(r.Receipt, now)
		report.Summary.Parsed++
		report.Summary.Purchases += len(r.Receipt.InAppPurchases)
		report.Summary.ActiveSubscriptions += len(active)
		report.Receipts = append(report.Receipts, model.ParsedReceiptJSON{
			Source:               r.Source,
			ReceiptID:            r.ReceiptID,
			HasTransactions:      len(r.Receipt.InAppPurchases) > 0,
			ActiveSubscriptions:  active,
			IntroOrTrialProducts: sortedKeys(r.Receipt.PurchasedIntroOfferOrFreeTrialProductIdentifiers()),
			Receipt:              r.Receipt,
		})
	}

	return report
}

func activeProducts(receipt *model.AppleReceipt, now time.Time) []string {
	seen := make(map[string]struct{})
	for _, p := range receipt.InAppPurchases {
		if p.IsActiveSubscription(now) {
			seen[p.ProductID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OutputVersionJSON prints the build version.
func OutputVersionJSON(info model.VersionInfo) error {
	return printJSON(info)
}

// OutputJSON prints any value as indented JSON.
func OutputJSON(v any) error {
	return printJSON(v)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(data))

	return nil
}
