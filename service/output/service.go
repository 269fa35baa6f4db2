// Package output provides a service for rendering results to the console.
package output

import (
	"fmt"

	"github.com/thirukguru/receipt-parser/model"
)

// NewService creates a new output service with the specified format. outputFile is the
// HTML report path; it is ignored for other formats.
func NewService(format, outputFile string) Service {
	return newService(format, outputFile, &realRenderer{})
}

func newService(format, outputFile string, renderer Renderer) *service {
	return &service{
		format:     ParseFormat(format),
		outputFile: outputFile,
		renderer:   renderer,
	}
}

// ParseFormat maps a flag value to a Format, defaulting to FormatTable.
func ParseFormat(format string) Format {
	switch format {
	case "json":
		return FormatJSON
	case "html":
		return FormatHTML
	}
	return FormatTable
}

func (s *service) Format() Format {
	return s.format
}

func (s *service) RenderReceipts(input model.RenderReceiptsInput) error {
	switch s.format {
	case FormatJSON:
		return s.renderer.OutputReceiptsJSON(input)
	case FormatHTML:
		path, err := s.renderer.WriteReceiptsHTML(s.outputFile, input)
		if err != nil {
			return err
		}
		fmt.Printf("📄 HTML report written to %s\n", path)
		return nil
	}
	s.renderer.DrawReceiptTable(input)
	return nil
}

// RenderVersion prints the build version as JSON for FormatJSON and as text otherwise.
func (s *service) RenderVersion(info model.VersionInfo) error {
	if s.format == FormatJSON {
		return s.renderer.OutputVersionJSON(info)
	}
	s.renderer.DrawVersion(info)
	return nil
}

func (s *service) StopSpinner() {
	s.renderer.StopSpinner()
}
