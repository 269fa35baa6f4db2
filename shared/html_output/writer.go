package htmloutput

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultReportDir is the default directory for HTML reports
const DefaultReportDir = "reports"

// WriteHTMLReport writes the HTML report to outputPath. A bare file name is placed in
// DefaultReportDir; an empty path gets a timestamped name there.
func WriteHTMLReport(outputPath string, data ReportData) (string, error) {
	html, err := GenerateHTMLReport(data)
	if err != nil {
		return "", fmt.Errorf("failed to generate HTML report: %w", err)
	}

	if outputPath == "" {
		outputPath = GenerateReportPath()
	} else if filepath.Base(outputPath) == outputPath {
		outputPath = filepath.Join(DefaultReportDir, outputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	if err := WriteHTMLString(outputPath, html); err != nil {
		return "", err
	}

	return outputPath, nil
}

// GenerateReportPath generates a report path with datetime in the reports folder
func GenerateReportPath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(DefaultReportDir, fmt.Sprintf("receipt-report_%s.html", timestamp))
}

// WriteHTMLString writes a pre-generated HTML string to a file
func WriteHTMLString(filepath string, html string) error {
	if err := os.WriteFile(filepath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}
