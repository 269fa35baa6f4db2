package model

import "time"

// ReceiptResult is the outcome of parsing one receipt reference.
type ReceiptResult struct {
	Source    string
	Receipt   *AppleReceipt
	Err       error
	Duration  time.Duration
	ReceiptID int64
}

// OK reports whether the receipt was parsed.
func (r ReceiptResult) OK() bool {
	return r.Err == nil && r.Receipt != nil
}

// RenderReceiptsInput is everything the output layer needs to render a parse run.
type RenderReceiptsInput struct {
	RunUUID string
	Now     time.Time
	Version string
	Results []ReceiptResult
}

// ReceiptReportJSON represents the JSON output of a parse run.
type ReceiptReportJSON struct {
	RunUUID     string              `json:"run_uuid"`
	Version     string              `json:"version,omitempty"`
	GeneratedAt string              `json:"generated_at"`
	Summary     ReceiptSummaryJSON  `json:"summary"`
	Receipts    []ParsedReceiptJSON `json:"receipts"`
	Errors      []ReceiptErrorJSON  `json:"errors"`
}

// ReceiptSummaryJSON provides counts across all receipts of a run.
type ReceiptSummaryJSON struct {
	Total               int `json:"total"`
	Parsed              int `json:"parsed"`
	Failed              int `json:"failed"`
	Purchases           int `json:"purchases"`
	ActiveSubscriptions int `json:"active_subscriptions"`
}

// ParsedReceiptJSON is one successfully parsed receipt.
type ParsedReceiptJSON struct {
	Source               string        `json:"source"`
	ReceiptID            int64         `json:"receipt_id,omitempty"`
	HasTransactions      bool          `json:"has_transactions"`
	ActiveSubscriptions  []string      `json:"active_subscriptions"`
	IntroOrTrialProducts []string      `json:"intro_or_trial_products"`
	Receipt              *AppleReceipt `json:"receipt"`
}

// ReceiptErrorJSON is one receipt that failed to load or parse.
type ReceiptErrorJSON struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
