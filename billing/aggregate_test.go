package billing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oncalldoc/invoice-api/models"
)

func entry(id, date string, manualHours, fixedCharge float64) models.CallEntry {
	return models.CallEntry{
		ID:          id,
		Date:        date,
		CallFrom:    "Station " + id,
		CallTime:    "22:15",
		CallType:    "Emergency",
		ManualHours: manualHours,
		FixedCharge: fixedCharge,
		TotalFee:    ComputeFee(manualHours, fixedCharge),
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, "2024-01-01", "2024-01-31")

	assert.Equal(t, 0.0, s.TotalAmount)
	assert.Equal(t, 0.0, s.TotalHours)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.AveragePerCall)
}

func TestAggregateSumsStoredFees(t *testing.T) {
	entries := []models.CallEntry{
		entry("1", "2024-01-05", 2, 0),  // 111.10, 2h
		entry("2", "2024-01-10", 0, 75), // 75.00, 0h
		entry("3", "2024-01-20", 0, 0),  // 55.55, 1h
	}

	s := Aggregate(entries, "2024-01-01", "2024-01-31")

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 241.65, s.TotalAmount, 0.0001)
	assert.Equal(t, 3.0, s.TotalHours)
	assert.InDelta(t, 80.55, s.AveragePerCall, 0.0001)
}

func TestAggregateStoredFeeIsAuthoritative(t *testing.T) {
	// entry billed under an older rate keeps its historical amount
	e := entry("1", "2024-01-05", 1, 0)
	e.TotalFee = 48.00

	s := Aggregate([]models.CallEntry{e}, "2024-01-01", "2024-01-31")

	assert.Equal(t, 48.00, s.TotalAmount)
}

func TestAggregateFilterInclusive(t *testing.T) {
	entries := []models.CallEntry{
		entry("1", "2024-01-01", 1, 0),
		entry("2", "2024-01-31", 1, 0),
		entry("3", "2024-02-01", 1, 0),
		entry("4", "2023-12-31", 1, 0),
	}

	s := Aggregate(entries, "2024-01-01", "2024-01-31")

	assert.Equal(t, 2, s.Count)
}

func TestAggregateOrderIndependent(t *testing.T) {
	entries := []models.CallEntry{
		entry("1", "2024-01-05", 2, 0),
		entry("2", "2024-01-10", 0, 75),
		entry("3", "2024-01-20", 0, 30),
		entry("4", "2024-01-25", 1.5, 0),
	}

	want := Aggregate(entries, "2024-01-01", "2024-01-31")

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.CallEntry, len(entries))
		copy(shuffled, entries)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(shuffled, "2024-01-01", "2024-01-31")
		assert.InDelta(t, want.TotalAmount, got.TotalAmount, 0.0001)
		assert.InDelta(t, want.TotalHours, got.TotalHours, 0.0001)
		assert.Equal(t, want.Count, got.Count)
	}
}

func TestFilterSkipsMalformedDates(t *testing.T) {
	entries := []models.CallEntry{
		entry("1", "2024-01-05", 1, 0),
		entry("2", "not-a-date", 1, 0),
	}

	filtered := Filter(entries, "2024-01-01", "2024-01-31")

	assert.Len(t, filtered, 1)
}

func TestSortByDate(t *testing.T) {
	entries := []models.CallEntry{
		entry("1", "2024-01-20", 1, 0),
		entry("2", "2024-01-05", 1, 0),
		entry("3", "2024-01-10", 1, 0),
	}

	Sort(entries, SortByDate, false)

	assert.Equal(t, "2", entries[0].ID)
	assert.Equal(t, "3", entries[1].ID)
	assert.Equal(t, "1", entries[2].ID)

	Sort(entries, SortByDate, true)

	assert.Equal(t, "1", entries[0].ID)
}

func TestSortByFeeStableOnTies(t *testing.T) {
	entries := []models.CallEntry{
		entry("a", "2024-01-01", 0, 75),
		entry("b", "2024-01-02", 0, 75),
		entry("c", "2024-01-03", 0, 30),
		entry("d", "2024-01-04", 0, 75),
	}

	Sort(entries, SortByFee, false)

	assert.Equal(t, "c", entries[0].ID)
	// tied fees keep original order
	assert.Equal(t, "a", entries[1].ID)
	assert.Equal(t, "b", entries[2].ID)
	assert.Equal(t, "d", entries[3].ID)
}

func TestSortByStation(t *testing.T) {
	entries := []models.CallEntry{
		entry("2", "2024-01-01", 1, 0),
		entry("1", "2024-01-02", 1, 0),
	}

	Sort(entries, SortByStation, false)

	assert.Equal(t, "Station 1", entries[0].CallFrom)
}
