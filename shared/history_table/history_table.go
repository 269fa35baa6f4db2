// Package historytable renders stored receipt history.
package historytable

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thirukguru/receipt-parser/service/storage"
)

const dateLayout = "2006-01-02 15:04:05"

var out io.Writer = os.Stdout

// RenderTrendTable prints an ASCII table of trend data.
func RenderTrendTable(points []storage.TrendPoint) {
	if len(points) == 0 {
		fmt.Fprintln(out, "No trend data found")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Bundle", "Date", "Receipts", "Purchases", "Active"})
	for _, p := range points {
		t.AppendRow(table.Row{p.BundleID, p.Date, p.Receipts, p.Purchases, p.Active})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderComparisonTable prints comparison summary for two receipts.
func RenderComparisonTable(cmp *storage.ReceiptComparison) {
	if cmp == nil {
		fmt.Fprintln(out, "No comparison data available")
		return
	}
	fmt.Fprintf(out, "\nReceipt Comparison (%d -> %d)\n", cmp.ReceiptID1, cmp.ReceiptID2)
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"New", "Removed", "Persistent"})
	t.AppendRow(table.Row{len(cmp.NewTransactions), len(cmp.RemovedTransactions), cmp.Persistent})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(cmp.NewTransactions) > 0 {
		fmt.Fprintln(out, text.FgGreen.Sprint("+ "+strings.Join(cmp.NewTransactions, ", ")))
	}
	if len(cmp.RemovedTransactions) > 0 {
		fmt.Fprintln(out, text.FgRed.Sprint("- "+strings.Join(cmp.RemovedTransactions, ", ")))
	}
}

// RenderRecentReceipts prints stored receipt summaries.
func RenderRecentReceipts(receipts []storage.ReceiptSummary) {
	if len(receipts) == 0 {
		fmt.Fprintln(out, "No stored receipts found")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Bundle", "App Version", "Created", "Purchases", "Active", "Parsed", "Last Parsed", "Source"})
	for _, r := range receipts {
		t.AppendRow(table.Row{
			r.ReceiptID,
			r.BundleID,
			r.AppVersion,
			r.CreationDate.UTC().Format(dateLayout),
			r.PurchaseCount,
			r.ActiveCount,
			r.ParseCount,
			r.LastParsed.Local().Format(dateLayout),
			r.Source,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderPurchases prints the purchases stored for one receipt.
func RenderPurchases(receiptID int64, purchases []storage.PurchaseSnapshot) {
	fmt.Fprintf(out, "\nReceipt %d\n", receiptID)
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Status", "Product", "Type", "Transaction", "Original", "Purchased", "Expires"})
	for _, p := range purchases {
		t.AppendRow(table.Row{
			colorStatus(p.Status),
			p.ProductID,
			p.ProductType.String(),
			p.TransactionID,
			p.OriginalTransactionID,
			p.PurchaseDate.UTC().Format(dateLayout),
			timeOrDash(p.ExpiresDate),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderTransactionHistory prints every stored transaction of a subscription chain.
func RenderTransactionHistory(originalTransactionID string, events []storage.TransactionEvent) {
	if len(events) == 0 {
		fmt.Fprintf(out, "No transactions found for %s\n", originalTransactionID)
		return
	}
	fmt.Fprintf(out, "\nTransaction history for %s\n", originalTransactionID)
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Receipt", "Bundle", "Transaction", "Product", "Purchased", "Expires", "Status"})
	for _, e := range events {
		t.AppendRow(table.Row{
			e.ReceiptID,
			e.BundleID,
			e.TransactionID,
			e.ProductID,
			e.PurchaseDate.UTC().Format(dateLayout),
			timeOrDash(e.ExpiresDate),
			colorStatus(e.Status),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func colorStatus(status string) string {
	switch status {
	case storage.StatusActive:
		return text.FgGreen.Sprint(status)
	case storage.StatusExpired:
		return text.FgYellow.Sprint(status)
	case storage.StatusCancelled:
		return text.FgRed.Sprint(status)
	default:
		return status
	}
}

func timeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}
