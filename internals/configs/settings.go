// internals/configs/settings.go
package configs

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Settings are the runtime-mutable knobs kept in a JSON file next to the
// deployment: the CDL vendor cutoff date feeding the overdue threshold, and
// the report/tagging codes staff occasionally retune. The admin endpoint
// rewrites the file and reloads, so nothing here may be cached by callers.
type Settings struct {
	// Completed CDL orders requested before this date are excluded from the
	// average-scan-days threshold.
	CDLVendorCutoffDate string `json:"cdl_vendor_cutoff_date"`

	// Overview aggregates only look at orders created after this date.
	StatsCutoffDate string `json:"stats_cutoff_date"`

	ShanghaiSublibrary   string   `json:"shanghai_sublibrary"`
	ShanghaiMaterialCode string   `json:"shanghai_material_code"`
	RushOrderTypes       []string `json:"rush_order_types"`

	ReportRecipients []string `json:"report_recipients"`
}

// CDLCutoff parses the cutoff date, zero time when unset or malformed.
func (s Settings) CDLCutoff() time.Time {
	t, err := time.Parse("2006-01-02", s.CDLVendorCutoffDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s Settings) StatsCutoff() time.Time {
	t, err := time.Parse("2006-01-02", s.StatsCutoffDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SettingsProvider hands out the current settings snapshot. Injected rather
// than read through a package global so the reload path is explicit.
type SettingsProvider interface {
	Current() Settings
	Reload() error
	Update(patch func(*Settings)) error
}

type fileSettings struct {
	path string

	mu  sync.RWMutex
	cur Settings
}

// NewFileSettings loads the JSON settings file and returns a provider over
// it. A missing file is not fatal: defaults apply until the admin endpoint
// writes one.
func NewFileSettings(path string) (SettingsProvider, error) {
	fs := &fileSettings{path: path, cur: defaultSettings()}
	if err := fs.Reload(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return fs, nil
}

func defaultSettings() Settings {
	return Settings{
		ShanghaiSublibrary:   "SHANG",
		ShanghaiMaterialCode: "BOOK",
		RushOrderTypes:       []string{"R"},
	}
}

func (f *fileSettings) Current() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cur
}

func (f *fileSettings) Reload() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	var s Settings
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("settings: parse %s: %w", f.path, err)
	}
	f.mu.Lock()
	f.cur = s
	f.mu.Unlock()
	return nil
}

// Update applies the patch to the current snapshot, persists it, and keeps
// the in-memory copy in step. Write errors leave the old snapshot active.
func (f *fileSettings) Update(patch func(*Settings)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.cur
	patch(&next)
	raw, err := sonic.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return err
	}
	f.cur = next
	return nil
}
