package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/go-pdf/fpdf"
)

const (
	fontFamily   = "Helvetica"
	pageMargin   = 20.0
	detailIndent = 7.0
)

type PDFOptions struct {
	// Compress enables stream compression. Disable to inspect page content.
	Compress bool
	Creator  string
}

func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Compress: true,
		Creator:  "medical-reports",
	}
}

// PDFRenderer lays the report out on A4 pages with the core Helvetica font.
type PDFRenderer struct {
	opts PDFOptions
}

func NewPDFRenderer(opts PDFOptions) *PDFRenderer {
	return &PDFRenderer{opts: opts}
}

func (r *PDFRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.opts.Compress)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Organization, true)
	pdf.SetCreator(r.opts.Creator, true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 25)
	pdf.CellFormat(0, 12, tr(doc.Organization), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 20)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "", 14)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Report #%d", doc.Sequence)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s: %s", doc.UpdatedLabel, doc.Timestamp)), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 8, tr(doc.Summary), "", 1, "L", false, 0, "")

	for i, topic := range doc.Topics {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 14)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, topic.Title)), "", "L", false)

		pdf.SetLeftMargin(pageMargin + detailIndent)
		pdf.SetFont(fontFamily, "", 12)
		pdf.MultiCell(0, 6, tr(topic.Details), "", "L", false)
		pdf.SetLeftMargin(pageMargin)
	}

	pdf.Ln(8)
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, tr(doc.Footer), "", 1, "C", false, 0, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
