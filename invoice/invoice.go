// Package invoice renders aggregated call entries into the documents the
// biller actually sends: a PDF invoice and a CSV listing. It is purely
// presentational; fees and hours come in already computed.
package invoice

import (
	"fmt"
	"time"

	"github.com/oncalldoc/invoice-api/models"
)

// Period is the reporting window an invoice covers, date-only, inclusive.
type Period struct {
	Start string
	End   string
}

// Header holds the identity fields rendered at the top of an invoice.
type Header struct {
	CompanyName   string
	Tagline       string
	TaxInfo       string
	InvoiceNumber string
	InvoiceTo     string
	IssuedBy      string
	Doctor        models.DoctorInfo
}

// Data is everything a renderer needs: the filtered entries plus header
// settings. Entries are expected to be pre-filtered to the period.
type Data struct {
	Entries []models.CallEntry
	Period  Period
	Header  Header
}

// TotalAmount sums the stored fee of every entry. The stored fee is
// authoritative; nothing is recomputed at render time.
func (d Data) TotalAmount() float64 {
	var total float64
	for _, e := range d.Entries {
		total += e.TotalFee
	}
	return total
}

// FixedChargeCount returns how many entries bill a flat fee.
func (d Data) FixedChargeCount() int {
	var n int
	for _, e := range d.Entries {
		if e.HasFixedCharge() {
			n++
		}
	}
	return n
}

// FileName builds the dated artifact name, e.g. "invoice-2024-01-31.pdf".
func FileName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("2006-01-02"), ext)
}

// formatDate converts a YYYY-MM-DD date to the DD/MM/YYYY display form.
func formatDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("02/01/2006")
}
