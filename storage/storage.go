// Package storage is the client-side persistence adapter. Entries and
// settings live as two JSON documents in a data directory and are replaced
// wholesale on every save, mirroring how the browser build kept them under
// two fixed localStorage keys.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/oncalldoc/invoice-api/models"
)

// File names under the data directory.
const (
	entriesFile  = "entries.json"
	settingsFile = "settings.json"
)

// ErrStorageUnavailable is returned when the data directory cannot be
// written even after the single cleanup-and-retry pass.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrImportFormat is returned for malformed backup files. Existing data is
// left untouched when it is returned.
var ErrImportFormat = errors.New("malformed backup file")

// Backup is the export/import document.
type Backup struct {
	Entries    []models.CallEntry  `json:"entries"`
	Settings   *models.AppSettings `json:"settings"`
	ExportDate string              `json:"exportDate"`
}

// Store reads and writes the local entry collection and settings singleton.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &Store{dir: dir}, nil
}

// LoadEntries returns the stored entry collection, or an empty one when
// nothing has been saved yet.
func (s *Store) LoadEntries() ([]models.CallEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, entriesFile))
	if errors.Is(err, os.ErrNotExist) {
		return []models.CallEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	var entries []models.CallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		zap.S().Errorw("failed to parse stored entries", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

// SaveEntries replaces the stored collection wholesale.
func (s *Store) SaveEntries(entries []models.CallEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return s.write(entriesFile, data)
}

// LoadSettings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (s *Store) LoadSettings() (models.AppSettings, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	settings := models.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		zap.S().Errorw("failed to parse stored settings", "error", err)
		return models.DefaultSettings(), fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return settings, nil
}

// SaveSettings replaces the settings singleton wholesale.
func (s *Store) SaveSettings(settings models.AppSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return s.write(settingsFile, data)
}

// Export emits the backup document with the current export date.
func (s *Store) Export() ([]byte, error) {
	entries, err := s.LoadEntries()
	if err != nil {
		return nil, err
	}
	settings, err := s.LoadSettings()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(Backup{
		Entries:    entries,
		Settings:   &settings,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
}

// Import restores a backup document. The payload is validated in full before
// anything is written, so a malformed file never clobbers existing data.
func (s *Store) Import(data []byte) error {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if backup.Entries == nil && backup.Settings == nil {
		return fmt.Errorf("%w: no entries or settings present", ErrImportFormat)
	}

	if backup.Entries != nil {
		if err := s.SaveEntries(backup.Entries); err != nil {
			return err
		}
	}
	if backup.Settings != nil {
		if err := s.SaveSettings(*backup.Settings); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all stored data.
func (s *Store) Clear() error {
	for _, name := range []string{entriesFile, settingsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}

// write saves a document, cleaning up stray files and retrying once when the
// first attempt fails.
func (s *Store) write(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	err := os.WriteFile(path, data, 0o600)
	if err == nil {
		return nil
	}

	zap.S().Warnw("save failed, cleaning up and retrying", "file", name, "error", err)
	s.cleanupStrayFiles()

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// cleanupStrayFiles removes anything in the data dir that is not one of the
// two known documents, to free space before the retry.
func (s *Store) cleanupStrayFiles() {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, de := range dirEntries {
		if de.Name() == entriesFile || de.Name() == settingsFile {
			continue
		}
		if de.IsDir() {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, de.Name()))
	}
}
