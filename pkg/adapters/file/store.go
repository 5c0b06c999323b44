package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
)

// DefaultStateDir is where the store keeps wizard state when no directory is given.
var DefaultStateDir = filepath.Join(".stitch", "state")

// Store implements ports.StateStore using the local filesystem.
// Each wizard state lives in <BasePath>/<session>/<wizard>.json.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
// If basePath is empty, it defaults to DefaultStateDir.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultStateDir
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key domain.StateKey) (string, error) {
	for _, part := range []string{key.SessionID, key.WizardID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid state key %q", key.String())
		}
	}
	return filepath.Join(s.BasePath, key.SessionID, key.WizardID+".json"), nil
}

// Get reads the state file for key. A missing file yields empty values.
func (s *Store) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Values{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	values := domain.Values{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard state: %w", err)
	}
	return values, nil
}

// Put persists values atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, key domain.StateKey, values domain.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	if values == nil {
		values = domain.Values{}
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wizard state: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+key.WizardID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing state file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to state file: %w", err)
	}
	return nil
}

// Clear removes the state file for key. Removing a missing file is not an error.
func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}

	// Drop the session directory once its last wizard is gone.
	_ = os.Remove(filepath.Dir(filePath))
	return nil
}

// Sessions returns the ids of every session with at least one stored wizard.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			sessions = append(sessions, entry.Name())
		}
	}
	return sessions, nil
}
