package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/oncalldoc/invoice-api/billing"
)

// RenderPDF builds the invoice document in memory and writes it to w. The
// layout follows the issued paper invoice: header block, entry table, summary
// and bank details.
func RenderPDF(w io.Writer, data Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// header block
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 20, tr(data.Header.CompanyName))

	pdf.SetFont("Helvetica", "", 11)
	if data.Header.Tagline != "" {
		pdf.Text(20, 28, tr(data.Header.Tagline))
	}
	pdf.SetFontSize(10)
	if data.Header.TaxInfo != "" {
		pdf.Text(20, 35, tr(data.Header.TaxInfo))
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 50, "MEDICAL SERVICES INVOICE")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(120, 50, "Invoice To:")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(120, 58, tr(data.Header.InvoiceTo))

	pdf.SetFont("Helvetica", "", 12)
	if data.Header.InvoiceNumber != "" {
		pdf.Text(120, 66, tr("Invoice No: "+data.Header.InvoiceNumber))
	}
	pdf.Text(120, 74, "Invoice Date:")
	pdf.Text(120, 82, time.Now().Format("02/01/2006"))
	pdf.Text(120, 90, "Period:")
	pdf.Text(120, 98, fmt.Sprintf("%s - %s", formatDate(data.Period.Start), formatDate(data.Period.End)))

	// table header
	startY := 110.0
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(20, startY, "Date")
	pdf.Text(50, startY, "Station")
	pdf.Text(80, startY, "Time")
	pdf.Text(100, startY, "Type")
	pdf.Text(130, startY, "Hrs/Fixed")
	pdf.Line(20, startY+2, 190, startY+2)

	// table body
	pdf.SetFont("Helvetica", "", 12)
	currentY := startY + 10
	var totalHours float64
	hasHourly := false

	for _, e := range data.Entries {
		if currentY > 250 {
			pdf.AddPage()
			currentY = 30
		}

		hours := billing.ComputeHours(e.ManualHours, e.FixedCharge)
		chargeDisplay := fmt.Sprintf("%.1fh", hours)
		if e.HasFixedCharge() {
			chargeDisplay = fmt.Sprintf("€%.0f", e.FixedCharge)
		} else {
			hasHourly = true
			totalHours += hours
		}

		station := e.CallFrom
		if len(station) > 15 {
			station = station[:15]
		}

		pdf.Text(20, currentY, formatDate(e.Date))
		pdf.Text(50, currentY, tr(station))
		pdf.Text(80, currentY, e.CallTime)
		pdf.Text(100, currentY, tr(e.CallType))
		pdf.Text(130, currentY, tr(chargeDisplay))

		currentY += 8
	}

	// summary block
	currentY += 10
	pdf.Line(20, currentY, 190, currentY)
	currentY += 10

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(20, currentY, "SUMMARY")
	currentY += 10

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, currentY, fmt.Sprintf("Total Calls: %d", len(data.Entries)))
	currentY += 8

	if hasHourly {
		pdf.Text(20, currentY, fmt.Sprintf("Total Hours: %.2f", totalHours))
		currentY += 8
	}
	if n := data.FixedChargeCount(); n > 0 {
		pdf.Text(20, currentY, fmt.Sprintf("Fixed Charges: %d", n))
		currentY += 8
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, currentY+10, tr(fmt.Sprintf("TOTAL AMOUNT: €%.2f", data.TotalAmount())))

	// biller details
	currentY += 30
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(20, currentY, "Biller Details:")
	currentY += 8

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		data.Header.Doctor.Name,
		data.Header.Doctor.Address,
		data.Header.Doctor.Phone,
		data.Header.Doctor.Email,
	} {
		if line == "" {
			continue
		}
		pdf.Text(20, currentY, tr(line))
		currentY += 7
	}

	if data.Header.IssuedBy != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(130, currentY-14, "Issued By:")
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(130, currentY-6, tr(data.Header.IssuedBy))
	}

	// footer
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 280, "Payment Terms: Net 30 days")
	pdf.Text(20, 287, "Thank you for your business")

	return pdf.Output(w)
}
