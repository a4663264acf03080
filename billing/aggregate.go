package billing

import (
	"sort"
	"time"

	"github.com/oncalldoc/invoice-api/models"
)

// DateLayout is the date-only format entries carry.
const DateLayout = "2006-01-02"

// Summary is the aggregate over a reporting period.
type Summary struct {
	TotalAmount    float64
	TotalHours     float64
	Count          int
	AveragePerCall float64
}

// SortField selects the column a listing is ordered by.
type SortField string

// Sortable columns.
const (
	SortByDate    SortField = "date"
	SortByStation SortField = "station"
	SortByFee     SortField = "fee"
)

// Filter returns the entries whose date falls within [start, end] inclusive.
// Comparison is date-only; entries with unparseable dates are dropped.
func Filter(entries []models.CallEntry, start, end string) []models.CallEntry {
	startDate, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil
	}
	endDate, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil
	}

	var out []models.CallEntry
	for _, e := range entries {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		if d.Before(startDate) || d.After(endDate) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Aggregate filters entries to [start, end] and sums fees and hours.
// TotalAmount sums the stored fee of each entry, never recomputing it, so
// entries billed under an older rate keep their historical amount.
func Aggregate(entries []models.CallEntry, start, end string) Summary {
	filtered := Filter(entries, start, end)

	var s Summary
	for _, e := range filtered {
		s.TotalAmount += e.TotalFee
		s.TotalHours += ComputeHours(e.ManualHours, e.FixedCharge)
		s.Count++
	}
	if s.Count > 0 {
		s.AveragePerCall = s.TotalAmount / float64(s.Count)
	}
	return s
}

// Sort orders entries for display by the given field, ascending unless
// descending is set. The sort is stable so ties keep their original order.
func Sort(entries []models.CallEntry, field SortField, descending bool) {
	less := func(i, j int) bool { return entries[i].Date < entries[j].Date }
	switch field {
	case SortByStation:
		less = func(i, j int) bool { return entries[i].CallFrom < entries[j].CallFrom }
	case SortByFee:
		less = func(i, j int) bool { return entries[i].TotalFee < entries[j].TotalFee }
	}
	if descending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(entries, less)
}
