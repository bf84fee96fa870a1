// Package usage remembers which time step each profile last handed a code
// out for, so a caller can avoid submitting the same code twice.
//
// Only counters and timestamps are stored. Codes and secrets never touch
// the disk.
package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/aaearon/ssocode/internal/config"
)

const fileName = "usage.json"

// maxRecordAge bounds how long a record is kept. Anything older cannot
// belong to a window that is still open.
const maxRecordAge = time.Hour

// Record is the last use of a profile.
type Record struct {
	Counter uint64    `json:"counter"`
	UsedAt  time.Time `json:"used_at"`
}

// file is the on-disk envelope. Profiles is keyed by profile name; the
// unnamed profile used when none are configured is stored under "", which
// config.AddProfile never accepts as a name.
type file struct {
	UpdatedAt time.Time         `json:"updated_at"`
	Profiles  map[string]Record `json:"profiles"`
}

// Tracker reads and writes usage records in a directory.
type Tracker struct {
	dir string
	now func() time.Time // injectable clock for testing
}

// NewTracker creates a Tracker storing its file in dir.
func NewTracker(dir string) *Tracker {
	return &Tracker{dir: dir, now: time.Now}
}

// LastUse returns the last recorded use of profile. Returns false on
// miss, expiry, or an unreadable file.
func (t *Tracker) LastUse(profile string) (Record, bool) {
	records := t.read()
	rec, ok := records[profile]
	if !ok || t.now().Sub(rec.UsedAt) > maxRecordAge {
		return Record{}, false
	}
	return rec, true
}

// RecordUse stores counter as the last use of profile, dropping expired
// records of other profiles.
func (t *Tracker) RecordUse(profile string, counter uint64) error {
	now := t.now()
	records := t.read()
	for name, rec := range records {
		if now.Sub(rec.UsedAt) > maxRecordAge {
			delete(records, name)
		}
	}
	records[profile] = Record{Counter: counter, UsedAt: now}
	return t.write(records, now)
}

// Reset forgets profile.
func (t *Tracker) Reset(profile string) error {
	records := t.read()
	if _, ok := records[profile]; !ok {
		return nil
	}
	delete(records, profile)
	return t.write(records, t.now())
}

func (t *Tracker) read() map[string]Record {
	data, err := os.ReadFile(filepath.Join(t.dir, fileName))
	if err != nil {
		return make(map[string]Record)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil || f.Profiles == nil {
		return make(map[string]Record)
	}
	return f.Profiles
}

// write replaces the file atomically so concurrent readers never see a
// partial document.
func (t *Tracker) write(records map[string]Record, now time.Time) error {
	if err := os.MkdirAll(t.dir, 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(file{UpdatedAt: now, Profiles: records})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(t.dir, fileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(t.dir, fileName))
}

// DefaultDir returns the default state directory path (~/.ssocode/state/).
func DefaultDir() (string, error) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "state"), nil
}
