package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/alertr/internal/logger"
)

const fileName = "ui-state.json"

// UIState holds UI preferences that carry across sessions. It never holds
// form contents.
type UIState struct {
	Preview PreviewState `json:"preview"`
}

// PreviewState holds how the preview step shows the alert.
type PreviewState struct {
	// Raw shows the markdown source instead of the rendered alert.
	Raw bool `json:"raw"`
}

// DefaultUIState returns the state used when nothing was saved.
func DefaultUIState() *UIState {
	return &UIState{}
}

// Load reads the UI state from <dataDir>/ui-state.json.
// Returns the default state if the file doesn't exist or can't be parsed.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultUIState()
	}
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	var st UIState
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}
	return &st
}

// Save writes the UI state to <dataDir>/ui-state.json, creating the
// directory when needed.
func Save(dataDir string, st *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	path := filepath.Join(dataDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}
	logger.Debug("UI state saved to %s", path)
	return nil
}
