package output

import (
	"github.com/thirukguru/receipt-parser/model"
	htmloutput "github.com/thirukguru/receipt-parser/shared/html_output"
	jsonoutput "github.com/thirukguru/receipt-parser/shared/json_output"
	receipttable "github.com/thirukguru/receipt-parser/shared/receipt_table"
	"github.com/thirukguru/receipt-parser/shared/spinner"
)

// Format represents the output format type
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
)

// Renderer defines the interface for drawing parse runs
type Renderer interface {
	DrawReceiptTable(input model.RenderReceiptsInput)
	OutputReceiptsJSON(input model.RenderReceiptsInput) error
	WriteReceiptsHTML(path string, input model.RenderReceiptsInput) (string, error)
	DrawVersion(info model.VersionInfo)
	OutputVersionJSON(info model.VersionInfo) error
	StopSpinner()
}

type realRenderer struct{}

func (r *realRenderer) DrawReceiptTable(input model.RenderReceiptsInput) {
	receipttable.DrawReceiptTable(input)
}

func (r *realRenderer) OutputReceiptsJSON(input model.RenderReceiptsInput) error {
	return jsonoutput.OutputReceiptsJSON(input)
}

func (r *realRenderer) WriteReceiptsHTML(path string, input model.RenderReceiptsInput) (string, error) {
	return htmloutput.WriteHTMLReport(path, htmloutput.BuildReportData(input))
}

func (r *realRenderer) DrawVersion(info model.VersionInfo) {
	receipttable.DrawVersion(info)
}

func (r *realRenderer) OutputVersionJSON(info model.VersionInfo) error {
	return jsonoutput.OutputVersionJSON(info)
}

func (r *realRenderer) StopSpinner() {
	spinner.StopSpinner()
}

// service is the internal implementation
type service struct {
	format     Format
	outputFile string
	renderer   Renderer
}

// Service defines the interface for output operations
type Service interface {
	RenderReceipts(input model.RenderReceiptsInput) error
	RenderVersion(info model.VersionInfo) error
	Format() Format
	StopSpinner()
}
