// Package htmloutput provides HTML report generation for receipt-parser.
package htmloutput

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ReportData contains all data needed for HTML report generation
type ReportData struct {
	RunUUID     string
	Version     string
	GeneratedAt string
	Sections    []Section
	Summary     Summary
}

// Summary contains run statistics
type Summary struct {
	Receipts            int
	Failed              int
	Purchases           int
	ActiveSubscriptions int
}

// Section represents one receipt (or failed receipt) in the report
type Section struct {
	ID          string
	Title       string
	Source      string
	Description string
	Details     []Detail
	Purchases   []Purchase
	Error       string
	Status      string // "critical", "warning", "good"
}

// Detail is one labelled receipt field.
type Detail struct {
	Label string
	Value string
}

// Purchase represents one in-app purchase row
type Purchase struct {
	Status      string
	Product     string
	Type        string
	Transaction string
	Purchased   string
	Expires     string
	Flags       []string
}

// GenerateHTMLReport generates a complete HTML report from the provided data
func GenerateHTMLReport(data ReportData) (string, error) {
	if data.GeneratedAt == "" {
		data.GeneratedAt = time.Now().Format("2006-01-02 15:04:05 MST")
	}

	// Calculate summary if not provided
	if data.Summary == (Summary{}) {
		for _, section := range data.Sections {
			if section.Error != "" {
				data.Summary.Failed++
				continue
			}
			data.Summary.Receipts++
			data.Summary.Purchases += len(section.Purchases)
			for _, p := range section.Purchases {
				if p.Status == "ACTIVE" {
					data.Summary.ActiveSubscriptions++
				}
			}
		}
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"statusClass": StatusClass,
	}).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// StatusClass returns a CSS class based on purchase status
func StatusClass(status string) string {
	switch status {
	case "CANCELLED":
		return "status-cancelled"
	case "EXPIRED":
		return "status-expired"
	case "ACTIVE":
		return "status-active"
	default:
		return "status-purchased"
	}
}
