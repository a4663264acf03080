package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oncalldoc/invoice-api/models"
)

func testEntries() []models.CallEntry {
	return []models.CallEntry{
		{
			ID:       "e1",
			Date:     "2024-01-05",
			CallFrom: "Mallow Station",
			CallTime: "22:15",
			CallType: "Emergency",
			TotalFee: 111.10,
		},
		{
			ID:          "e2",
			Date:        "2024-01-10",
			CallFrom:    "Cork North",
			CallTime:    "03:40",
			CallType:    "Routine",
			FixedCharge: 75,
			TotalFee:    75,
		},
	}
}

func TestLoadEntriesEmptyStore(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	entries, err := s.LoadEntries()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveAndLoadEntries(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	want := testEntries()
	assert.NoError(t, s.SaveEntries(want))

	got, err := s.LoadEntries()
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveEntriesReplacesWholesale(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.SaveEntries(testEntries()))
	assert.NoError(t, s.SaveEntries([]models.CallEntry{}))

	got, err := s.LoadEntries()
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	settings, err := s.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
	assert.Equal(t, 55.55, settings.HourlyRate)
}

func TestSaveAndLoadSettings(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	want := models.AppSettings{
		HourlyRate: 60,
		DoctorInfo: models.DoctorInfo{
			Name:    "Dr. Z Bajwa",
			Address: "Mallow, Co. Cork",
			Phone:   "+353 1 234 5678",
			Email:   "doc@example.ie",
		},
	}
	assert.NoError(t, s.SaveSettings(want))

	got, err := s.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	assert.NoError(t, err)

	entries := testEntries()
	settings := models.DefaultSettings()
	settings.DoctorInfo.Name = "Dr. Z Bajwa"
	assert.NoError(t, s.SaveEntries(entries))
	assert.NoError(t, s.SaveSettings(settings))

	exported, err := s.Export()
	assert.NoError(t, err)

	// restore into a fresh store
	s2, err := New(t.TempDir())
	assert.NoError(t, err)
	assert.NoError(t, s2.Import(exported))

	gotEntries, err := s2.LoadEntries()
	assert.NoError(t, err)
	assert.Equal(t, entries, gotEntries)

	gotSettings, err := s2.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, settings, gotSettings)

	// re-export matches the original modulo exportDate
	reExported, err := s2.Export()
	assert.NoError(t, err)

	var b1, b2 Backup
	assert.NoError(t, json.Unmarshal(exported, &b1))
	assert.NoError(t, json.Unmarshal(reExported, &b2))
	assert.Equal(t, b1.Entries, b2.Entries)
	assert.Equal(t, b1.Settings, b2.Settings)
}

func TestImportMalformedLeavesDataUntouched(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	assert.NoError(t, err)

	entries := testEntries()
	assert.NoError(t, s.SaveEntries(entries))
	before, err := os.ReadFile(filepath.Join(dir, "entries.json"))
	assert.NoError(t, err)

	err = s.Import([]byte(`{"entries": not json`))
	assert.ErrorIs(t, err, ErrImportFormat)

	after, err := os.ReadFile(filepath.Join(dir, "entries.json"))
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportEmptyDocumentRejected(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	err = s.Import([]byte(`{}`))
	assert.ErrorIs(t, err, ErrImportFormat)
}

func TestImportEntriesOnly(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	err = s.Import([]byte(`{"entries": [], "exportDate": "2024-01-01T00:00:00Z"}`))
	assert.NoError(t, err)

	settings, err := s.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestClear(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.SaveEntries(testEntries()))
	assert.NoError(t, s.Clear())

	entries, err := s.LoadEntries()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
