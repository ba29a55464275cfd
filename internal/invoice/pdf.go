package invoice

import (
	"bytes"
	"fmt"
	"os"

	"github.com/h0rv/posdash/internal/form"
	"github.com/phpdave11/gofpdf"
	"github.com/pkg/browser"
)

// PDF renders inv as an A4 document.
func PDF(inv Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+orDash(inv.Number))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+inv.DateLabel())
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name  : "+orDash(inv.Customer))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Email : "+orDash(inv.Email))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone : "+orDash(inv.Phone))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range inv.Lines {
		pdf.CellFormat(90, 7, l.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, form.Money(l.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, form.Money(l.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, value, "", 1, "R", false, 0, "")
	}
	total("Subtotal", form.Money(inv.Subtotal), false)
	total("Discount", form.Deduction(inv.Discount), false)
	total("Tax", form.Surcharge(inv.Tax), false)
	total("Total", form.Money(inv.Total), true)

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+inv.Notes, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes the PDF of inv to path.
func Export(inv Invoice, path string) error {
	data, err := PDF(inv)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	return nil
}

// OpenFile and OpenURL hand exports and links to the system browser.
var (
	OpenFile = browser.OpenFile
	OpenURL  = browser.OpenURL
)
