package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

// StoreFile is the reference store's name inside the standup directory.
const StoreFile = "synthetic.json"

// OffProjectWork is never remembered: it only ever pads Fridays.
const OffProjectWork = "Off Project Work"

// References maps an ISO date to the reference chosen for that day.
type References map[string]string

// storePath returns the path of the reference store in dir.
func storePath(dir string) string {
	return filepath.Join(dir, StoreFile)
}

// LoadReferences loads the reference store. Returns an empty store if not found.
func LoadReferences(dir string) (References, error) {
	path := storePath(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return References{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	refs := References{}
	if err := json.Unmarshal(data, &refs); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return refs, nil
}

// SaveReferences atomically writes the reference store.
func SaveReferences(dir string, refs References) error {
	path := storePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Lookup returns the stored reference for day, or "".
func (r References) Lookup(day time.Time) string {
	return r[day.Format(timecalc.ISODate)]
}

// Remember records the references of entries, skipping empty ones and
// Off Project Work.
func (r References) Remember(entries []model.Entry) {
	for _, e := range entries {
		if e.Reference == "" || e.Reference == OffProjectWork {
			continue
		}
		r[e.Date.Format(timecalc.ISODate)] = e.Reference
	}
}
