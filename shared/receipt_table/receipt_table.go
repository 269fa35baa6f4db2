// Package receipttable renders parsed receipts and subscriber records as console tables.
package receipttable

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thirukguru/receipt-parser/model"
)

const dateLayout = "2006-01-02 15:04:05"

var out io.Writer = os.Stdout

// DrawReceiptTable renders every result of a parse run.
func DrawReceiptTable(input model.RenderReceiptsInput) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	parsed, failed := 0, 0
	for _, r := range input.Results {
		if r.OK() {
			parsed++
		} else {
			failed++
		}
	}

	fmt.Fprintln(out, "\n🧾 Receipts")
	fmt.Fprintf(out, "   %s ", text.FgGreen.Sprintf("✅ %d Parsed", parsed))
	if failed > 0 {
		fmt.Fprintf(out, "%s ", text.FgRed.Sprintf("❌ %d Failed", failed))
	}
	fmt.Fprintln(out)

	for _, r := range input.Results {
		if !r.OK() {
			continue
		}
		drawReceipt(r, now)
	}

	if failed > 0 {
		drawErrors(input.Results)
	}
}

func drawReceipt(r model.ReceiptResult, now time.Time) {
	rc := r.Receipt
	fmt.Fprintln(out, "\n"+text.FgCyan.Sprint("📱 "+rc.BundleID)+" "+text.Faint.Sprint(r.Source))

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Bundle ID", rc.BundleID})
	t.AppendRow(table.Row{"App Version", rc.ApplicationVersion})
	t.AppendRow(table.Row{"Original App Version", stringOrDash(rc.OriginalApplicationVersion)})
	t.AppendRow(table.Row{"Created", rc.CreationDate.UTC().Format(dateLayout)})
	t.AppendRow(table.Row{"Expires", timeOrDash(rc.ExpirationDate)})
	t.AppendRow(table.Row{"SHA-1", fmt.Sprintf("%x", rc.SHA1Hash)})
	t.AppendRow(table.Row{"Purchases", len(rc.InAppPurchases)})
	if r.ReceiptID > 0 {
		t.AppendRow(table.Row{"Stored As", r.ReceiptID})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(rc.InAppPurchases) == 0 {
		fmt.Fprintln(out, text.Faint.Sprint("   No in-app purchases"))
		return
	}
	drawPurchases(rc.InAppPurchases, now)
}

func drawPurchases(purchases []model.InAppPurchase, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Status", "Product", "Type", "Transaction", "Purchased", "Expires", "Flags"})
	for _, p := range purchases {
		t.AppendRow(table.Row{
			purchaseStatus(p, now),
			truncate(p.ProductID, 40),
			p.ProductType.String(),
			p.TransactionID,
			p.PurchaseDate.UTC().Format(dateLayout),
			timeOrDash(p.ExpiresDate),
			purchaseFlags(p),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func drawErrors(results []model.ReceiptResult) {
	fmt.Fprintln(out, "\n"+text.FgRed.Sprint("⚠️  Failed Receipts"))
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Source", "Error"})
	for _, r := range results {
		if r.OK() {
			continue
		}
		msg := "no receipt"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Source, truncate(msg, 80)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// DrawCustomerInfo renders a subscriber record.
func DrawCustomerInfo(info *model.CustomerInfo, now time.Time) {
	if info == nil {
		fmt.Fprintln(out, "No customer info available")
		return
	}
	sub := info.Subscriber
	fmt.Fprintln(out, "\n"+text.FgCyan.Sprint("👤 "+sub.OriginalAppUserID))
	fmt.Fprintf(out, "   First seen %s, requested %s\n",
		sub.FirstSeen.UTC().Format(dateLayout), info.RequestDate.UTC().Format(dateLayout))

	ids := make([]string, 0, len(sub.Entitlements))
	for id := range sub.Entitlements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Entitlement", "Product", "Purchased", "Expires", "Active"})
	for _, id := range ids {
		e := sub.Entitlements[id]
		active := text.FgRed.Sprint("no")
		if e.IsActive(now) {
			active = text.FgGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{id, e.ProductIdentifier, e.PurchaseDate.UTC().Format(dateLayout), timeOrDash(e.ExpiresDate), active})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(sub.Subscriptions) == 0 {
		return
	}
	products := make([]string, 0, len(sub.Subscriptions))
	for id := range sub.Subscriptions {
		products = append(products, id)
	}
	sort.Strings(products)

	st := table.NewWriter()
	st.SetOutputMirror(out)
	st.AppendHeader(table.Row{"Subscription", "Store", "Period", "Expires", "Sandbox"})
	for _, id := range products {
		s := sub.Subscriptions[id]
		st.AppendRow(table.Row{id, s.Store, s.PeriodType, timeOrDash(s.ExpiresDate), s.IsSandbox})
	}
	st.SetStyle(table.StyleRounded)
	st.Render()
}

func purchaseStatus(p model.InAppPurchase, now time.Time) string {
	switch {
	case p.CancellationDate != nil:
		return text.FgRed.Sprint("CANCELLED")
	case p.IsActiveSubscription(now):
		return text.FgGreen.Sprint("ACTIVE")
	case p.IsSubscription():
		return text.FgYellow.Sprint("EXPIRED")
	default:
		return "PURCHASED"
	}
}

func purchaseFlags(p model.InAppPurchase) string {
	switch {
	case p.IsInTrialPeriod != nil && *p.IsInTrialPeriod:
		return "trial"
	case p.IsInIntroOfferPeriod != nil && *p.IsInIntroOfferPeriod:
		return "intro"
	case p.PromotionalOfferIdentifier != nil:
		return "promo"
	}
	return "-"
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func timeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen-3] + "..."
}

// DrawVersion prints the build version.
func DrawVersion(info model.VersionInfo) {
	fmt.Fprintf(out, "receipt-parser version %s\n", info.Version)
	fmt.Fprintf(out, "number: %g\n", info.Number)
	fmt.Fprintf(out, "commit: %s\n", info.Commit)
	fmt.Fprintf(out, "built at: %s\n", info.Date)
}
