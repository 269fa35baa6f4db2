package htmloutput

import (
	"fmt"
	"time"

	"github.com/thirukguru/receipt-parser/model"
)

const dateLayout = "2006-01-02 15:04:05"

// BuildReportData converts a parse run into ReportData.
func BuildReportData(input model.RenderReceiptsInput) ReportData {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	data := ReportData{
		RunUUID: input.RunUUID,
		Version: input.Version,
	}
	for i, r := range input.Results {
		id := fmt.Sprintf("receipt-%d", i+1)
		if !r.OK() {
			msg := "no receipt"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			data.Sections = append(data.Sections, Section{
				ID:     id,
				Title:  r.Source,
				Source: r.Source,
				Error:  msg,
				Status: "critical",
			})
			continue
		}
		data.Sections = append(data.Sections, newReceiptSection(id, r, now))
	}
	return data
}

func newReceiptSection(id string, r model.ReceiptResult, now time.Time) Section {
	rc := r.Receipt
	section := Section{
		ID:          id,
		Title:       rc.BundleID,
		Source:      r.Source,
		Description: fmt.Sprintf("App version %s, created %s", rc.ApplicationVersion, rc.CreationDate.UTC().Format(dateLayout)),
		Details: []Detail{
			{Label: "Original App Version", Value: stringOrDash(rc.OriginalApplicationVersion)},
			{Label: "Expires", Value: timeOrDash(rc.ExpirationDate)},
			{Label: "SHA-1", Value: fmt.Sprintf("%x", rc.SHA1Hash)},
		},
		Status: "good",
	}
	if r.ReceiptID > 0 {
		section.Details = append(section.Details, Detail{Label: "Stored As", Value: fmt.Sprintf("%d", r.ReceiptID)})
	}

	active, subscriptions := 0, 0
	for _, p := range rc.InAppPurchases {
		row := Purchase{
			Status:      purchaseStatus(p, now),
			Product:     p.ProductID,
			Type:        p.ProductType.String(),
			Transaction: p.TransactionID,
			Purchased:   p.PurchaseDate.UTC().Format(dateLayout),
			Expires:     timeOrDash(p.ExpiresDate),
		}
		if p.IsInTrialPeriod != nil && *p.IsInTrialPeriod {
			row.Flags = append(row.Flags, "trial")
		}
		if p.IsInIntroOfferPeriod != nil && *p.IsInIntroOfferPeriod {
			row.Flags = append(row.Flags, "intro")
		}
		if p.PromotionalOfferIdentifier != nil {
			row.Flags = append(row.Flags, "promo:"+*p.PromotionalOfferIdentifier)
		}
		if p.IsSubscription() {
			subscriptions++
		}
		if row.Status == "ACTIVE" {
			active++
		}
		section.Purchases = append(section.Purchases, row)
	}
	if subscriptions > 0 && active == 0 {
		section.Status = "warning"
	}
	return section
}

func purchaseStatus(p model.InAppPurchase, now time.Time) string {
	switch {
	case p.CancellationDate != nil:
		return "CANCELLED"
	case p.IsActiveSubscription(now):
		return "ACTIVE"
	case p.IsSubscription():
		return "EXPIRED"
	default:
		return "PURCHASED"
	}
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
