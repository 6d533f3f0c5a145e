package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"posapi/internal/config"
	"posapi/internal/model"
)

// GenerationError wraps a rendering or local I/O failure of the synthesizer.
// It is fatal to the pipeline invocation and never retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generate receipt: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Synthesizer renders a purchase into a printable receipt document.
type Synthesizer interface {
	Synthesize(req model.ReceiptRequest) (*model.ReceiptDocument, error)
}

// pdfSynthesizer renders receipts as fixed-layout A4 PDFs under dir.
// It is safe for concurrent use; every invocation writes to its own path.
type pdfSynthesizer struct {
	storeName string
	currency  string
	dir       string
}

// NewPDFSynthesizer constructs the PDF-backed Synthesizer. If dir is empty the
// OS temp directory is used.
func NewPDFSynthesizer(cfg config.ReceiptConfig, dir string) Synthesizer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &pdfSynthesizer{
		storeName: cfg.StoreName,
		currency:  cfg.CurrencySymbol,
		dir:       dir,
	}
}

// Synthesize writes the receipt PDF to a path unique per invocation. The UUID
// component guarantees concurrent requests in the same clock tick cannot
// collide on the file name.
func (s *pdfSynthesizer) Synthesize(req model.ReceiptRequest) (*model.ReceiptDocument, error) {
	filename := fmt.Sprintf("receipt-%s-%s.pdf", req.TransactionID, uuid.NewString())
	path := filepath.Join(s.dir, filename)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(s.storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Official Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Customer: "+req.CustomerName), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for i, line := range Lines(req) {
		if req.IsMultiple {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d. %s", i+1, line.ProductName)), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("   Quantity: %d   Price: %s   Subtotal: %s",
				line.Quantity,
				FormatMoney(s.currency, line.UnitPrice),
				FormatMoney(s.currency, line.Total))), "", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(0, 6, tr("Product: "+line.ProductName), "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("Quantity: %d", line.Quantity), "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr("Price: "+FormatMoney(s.currency, line.UnitPrice)), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, tr("Total Price: "+FormatMoney(s.currency, req.TotalPrice)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Payment Method: "+req.PaymentMethod), "", 1, "L", false, 0, "")

	pdf.Ln(2)
	pdf.CellFormat(0, 4, "----------------------------------------", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr("Transaction ID: "+req.TransactionID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+req.TransactionDate.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		// A partially written file may remain on some failure paths.
		_ = os.Remove(path)
		return nil, &GenerationError{Err: err}
	}

	return &model.ReceiptDocument{Path: path, Filename: filename}, nil
}
