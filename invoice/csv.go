package invoice

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/oncalldoc/invoice-api/billing"
	"github.com/oncalldoc/invoice-api/models"
)

// csvHeader matches the column layout the browser build exported.
var csvHeader = []string{
	"Date",
	"Call From",
	"Call Time",
	"Arrival Time",
	"Call Type",
	"Hours",
	"Charge Type",
	"Rate/Fixed (€)",
	"Total (€)",
}

// WriteCSV emits one row per entry with an explicit header row. Free-text
// fields are quoted by the csv writer whenever they contain commas.
func WriteCSV(w io.Writer, entries []models.CallEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		hours := billing.ComputeHours(e.ManualHours, e.FixedCharge)

		chargeType := "Hourly"
		rateOrFixed := fmt.Sprintf("%.2f", billing.HourlyRate)
		if e.HasFixedCharge() {
			chargeType = fmt.Sprintf("Fixed €%.0f", e.FixedCharge)
			rateOrFixed = fmt.Sprintf("%.2f", e.FixedCharge)
		}

		row := []string{
			e.Date,
			e.CallFrom,
			e.CallTime,
			e.ArrivalTime,
			e.CallType,
			fmt.Sprintf("%.2f", hours),
			chargeType,
			rateOrFixed,
			fmt.Sprintf("%.2f", e.TotalFee),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
