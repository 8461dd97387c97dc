package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserConfig holds per-user preferences kept in ~/.marssim/config.json.
// Nothing here overrides config.yaml; database credentials never go here.
type UserConfig struct {
	// Settlement the reports commands use when --settlement-id is not given
	DefaultSettlementID *int `json:"default_settlement_id,omitempty"`

	LastRunID string `json:"last_run_id,omitempty"`
}

// UserConfigHandler reads and rewrites the preferences file
type UserConfigHandler struct {
	path string
}

// NewUserConfigHandler uses ~/.marssim
func NewUserConfigHandler() (*UserConfigHandler, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(home, ".marssim"))
}

// NewUserConfigHandlerAt keeps config.json in dir, creating dir if needed
func NewUserConfigHandlerAt(dir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &UserConfigHandler{path: filepath.Join(dir, "config.json")}, nil
}

// Load returns the stored preferences; a missing file means none are set
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	var prefs UserConfig
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", h.path, err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.path, err)
	}
	return &prefs, nil
}

// Update applies change to the stored preferences and writes them back.
// The file is replaced by rename so a crash never leaves it half written.
func (h *UserConfigHandler) Update(change func(*UserConfig)) error {
	prefs, err := h.Load()
	if err != nil {
		return err
	}
	change(prefs)

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return os.Rename(tmp, h.path)
}

func (h *UserConfigHandler) SetDefaultSettlement(id int) error {
	return h.Update(func(p *UserConfig) { p.DefaultSettlementID = &id })
}

func (h *UserConfigHandler) ClearDefaultSettlement() error {
	return h.Update(func(p *UserConfig) { p.DefaultSettlementID = nil })
}

// RecordRun remembers the id of the last finished run
func (h *UserConfigHandler) RecordRun(runID string) error {
	return h.Update(func(p *UserConfig) { p.LastRunID = runID })
}

// Path is where the preferences live
func (h *UserConfigHandler) Path() string {
	return h.path
}
