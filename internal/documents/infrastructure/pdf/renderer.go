package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"loan-docs/internal/documents/application"
	documents "loan-docs/internal/documents/domain"
	"loan-docs/internal/format"
	layout "loan-docs/internal/layout/domain"
)

const (
	fontFamily = "Helvetica"

	pointsToMM = 25.4 / 72

	borderInsetMM = 10
	marginMM      = 18
	bottomMM      = 18
	laterTopMM    = 18
	lineSpacing   = 1.25

	minFontSize = 7

	tableFontSize  = 8
	tableRowHeight = 5

	// signatureTopRow is the first grid row of the contract signature band.
	signatureTopRow = 28
)

var (
	borderColor      = [3]int{0x38, 0x8e, 0x2b}
	tableHeaderColor = [3]int{0xb7, 0xb7, 0xb7}

	scheduleHeader = []string{"Mese", "Pagamento", "Interessi", "Importo del prestito", "Saldo residuo"}
)

// Renderer lays out templates with gofpdf.
type Renderer struct {
	templates Templates
	grid      layout.GridSpec
	logger    *log.Logger
}

// NewRenderer constructs a renderer over validated templates.
func NewRenderer(templates Templates, grid layout.GridSpec, logger *log.Logger) (*Renderer, error) {
	if templates == nil {
		return nil, errors.New("pdf renderer: nil templates")
	}
	if logger == nil {
		return nil, errors.New("pdf renderer: nil logger")
	}
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{templates: templates, grid: grid, logger: logger}, nil
}

var _ application.Renderer = (*Renderer)(nil)

// Render produces the base document for content.
func (r *Renderer) Render(ctx context.Context, content documents.Content) (application.BaseDocument, error) {
	tpl, ok := r.templates[content.Variant]
	if !ok {
		return application.BaseDocument{}, fmt.Errorf("%w: %q", layout.ErrUnknownVariant, content.Variant)
	}
	blocks, labels := r.fill(tpl, content)

	if !tpl.SinglePage {
		pdf := r.layout(tpl, blocks, labels, content, tpl.FontSize, true)
		return finish(pdf)
	}
	// Single-page variants shrink the body font until they fit, then clip.
	for size := tpl.FontSize; size >= minFontSize; size-- {
		if err := ctx.Err(); err != nil {
			return application.BaseDocument{}, err
		}
		pdf := r.layout(tpl, blocks, labels, content, size, true)
		if pdf.Err() {
			return application.BaseDocument{}, pdf.Error()
		}
		if pdf.PageCount() == 1 {
			return finish(pdf)
		}
	}
	r.logger.Printf("pdf renderer: %s overflows one page, clipping", content.Variant)
	return finish(r.layout(tpl, blocks, labels, content, minFontSize, false))
}

func (r *Renderer) fill(tpl Template, content documents.Content) ([]Block, []string) {
	texts := make([]string, 0, len(tpl.Blocks))
	for _, block := range tpl.Blocks {
		texts = append(texts, block.Text)
	}
	if tpl.Signature != nil {
		texts = append(texts, tpl.Signature.Labels...)
	}
	filled, unmatched := documents.ApplySubstitutions(texts, content.Substitutions)
	for _, sub := range unmatched {
		r.logger.Printf("pdf renderer: %s template has no slot for %s", content.Variant, sub.Key)
	}

	blocks := make([]Block, len(tpl.Blocks))
	for i, block := range tpl.Blocks {
		block.Text = filled[i]
		blocks[i] = block
	}
	return blocks, filled[len(tpl.Blocks):]
}

func (r *Renderer) layout(tpl Template, blocks []Block, labels []string, content documents.Content, fontSize float64, pageBreaks bool) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(marginMM, laterTopMM, marginMM)
	pdf.SetAutoPageBreak(pageBreaks, bottomMM)
	pdf.SetHeaderFunc(func() {
		if tpl.BorderPt > 0 {
			pdf.SetDrawColor(borderColor[0], borderColor[1], borderColor[2])
			pdf.SetLineWidth(tpl.BorderPt * pointsToMM)
			pdf.Rect(borderInsetMM, borderInsetMM, r.grid.PageWidth-2*borderInsetMM, r.grid.PageHeight-2*borderInsetMM, "D")
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetLineWidth(0.2)
		}
		if pdf.PageNo() <= tpl.StampedPages && tpl.TopSpaceMM > 0 {
			pdf.SetY(tpl.TopSpaceMM)
		}
	})
	pdf.AddPage()

	lineHeight := fontSize * pointsToMM * lineSpacing
	for _, block := range blocks {
		switch block.Type {
		case BlockHeading:
			pdf.SetFont(fontFamily, "B", fontSize+1)
			pdf.MultiCell(0, lineHeight+0.5, tr(block.Text), "", alignOf(block.Align), false)
			pdf.Ln(1)
		case BlockParagraph:
			pdf.SetFont(fontFamily, "", fontSize)
			pdf.MultiCell(0, lineHeight, tr(block.Text), "", alignOf(block.Align), false)
			pdf.Ln(1)
		case BlockSpacer:
			pdf.Ln(block.Height)
		case BlockSchedule:
			r.schedule(pdf, tr, content, fontSize, lineHeight)
		}
	}
	if tpl.Signature != nil {
		r.signature(pdf, tr, labels, fontSize)
	}
	return pdf
}

func (r *Renderer) schedule(pdf *gofpdf.Fpdf, tr func(string) string, content documents.Content, fontSize, lineHeight float64) {
	if content.Summary != nil {
		pdf.SetFont(fontFamily, "", fontSize)
		lines := []string{
			"Tasso mensile: " + format.MonthlyRate(content.Summary.MonthlyRate),
			"Rata mensile: € " + format.Money(content.Summary.Payment),
			"Importo totale pagamenti: € " + format.Money(content.Summary.TotalPayments),
			"Importo interessi totali: € " + format.Money(content.Summary.TotalInterest),
		}
		for _, line := range lines {
			pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
	if len(content.Rows) == 0 {
		return
	}

	width := r.grid.PageWidth - 2*marginMM
	first := width * 0.12
	rest := (width - first) / 4
	widths := []float64{first, rest, rest, rest, rest}

	header := func() {
		pdf.SetFont(fontFamily, "B", tableFontSize)
		pdf.SetFillColor(tableHeaderColor[0], tableHeaderColor[1], tableHeaderColor[2])
		for i, title := range scheduleHeader {
			pdf.CellFormat(widths[i], tableRowHeight+1, tr(title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", tableFontSize)
	}

	_, pageHeight := pdf.GetPageSize()
	header()
	for _, row := range content.Rows {
		if pdf.GetY()+tableRowHeight > pageHeight-bottomMM {
			pdf.AddPage()
			header()
		}
		cells := []string{
			strconv.Itoa(row.Month),
			"€ " + format.Money(row.Payment),
			"€ " + format.Money(row.Interest),
			"€ " + format.Money(row.Principal),
			"€ " + format.Money(row.RemainingBalance),
		}
		for i, cell := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], tableRowHeight, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// signature keeps the band from signatureTopRow down free on the last page;
// stamps for that band come from the overlay.
func (r *Renderer) signature(pdf *gofpdf.Fpdf, tr func(string) string, labels []string, fontSize float64) {
	top := float64(signatureTopRow) * r.grid.CellHeight()
	if pdf.GetY() > top {
		pdf.AddPage()
	}
	pdf.SetY(top)
	if len(labels) == 0 {
		return
	}
	pdf.SetFont(fontFamily, "", fontSize)
	width := (r.grid.PageWidth - 2*marginMM) / float64(len(labels))
	for _, label := range labels {
		pdf.CellFormat(width, fontSize*pointsToMM*lineSpacing, tr(label), "", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func alignOf(value string) string {
	switch value {
	case "C", "R", "J":
		return value
	default:
		return "L"
	}
}

func finish(pdf *gofpdf.Fpdf) (application.BaseDocument, error) {
	pages := pdf.PageCount()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return application.BaseDocument{}, err
	}
	return application.BaseDocument{PDF: buf.Bytes(), Pages: pages}, nil
}
