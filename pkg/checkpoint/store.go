package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultFile is the checkpoint file used when no path is configured.
const DefaultFile = ".guardian_state.json"

// Checkpoint is the persisted scan position.
type Checkpoint struct {
	LastTS string `json:"last_ts"`
}

// Store persists the last processed Slack timestamp to a JSON file.
// A missing, empty, or corrupt file is treated as an empty checkpoint,
// never an error: the scan then falls back to the full message window.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a checkpoint store bound to the given file path.
func NewStore(path string, logger zerolog.Logger) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "checkpoint").Logger(),
	}
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the checkpoint. Any read or parse failure yields an empty
// checkpoint so a broken state file can never block monitoring.
func (s *Store) Load() Checkpoint {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("path", s.path).Msg("State file does not exist, starting fresh")
		} else {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to read state file, starting fresh")
		}
		return Checkpoint{}
	}

	if len(data) == 0 {
		s.logger.Debug().Str("path", s.path).Msg("State file is empty, starting fresh")
		return Checkpoint{}
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("State file is not valid JSON, starting fresh")
		return Checkpoint{}
	}

	if cp.LastTS != "" {
		s.logger.Debug().Str("last_ts", cp.LastTS).Msg("Loaded checkpoint")
	}
	return cp
}

// Save writes the checkpoint. The file's parent directory is created if
// needed. Callers treat a save failure as non-fatal.
func (s *Store) Save(lastTS string) error {
	data, err := json.MarshalIndent(Checkpoint{LastTS: lastTS}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	s.logger.Info().Str("last_ts", lastTS).Msg("Saved checkpoint")
	return nil
}

// Verify reads the file back and reports whether the stored timestamp
// matches what was just saved.
func (s *Store) Verify(lastTS string) bool {
	return s.Load().LastTS == lastTS
}
