// Package file provides a JSON-file-per-checkpoint CheckpointStore.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/graphrag-pipeline/corepipeline/store"
)

// FileCheckpointStore persists each checkpoint as "<id>.json" under a
// directory, guarded by a single mutex so concurrent writers never
// interleave partial writes to the same file.
type FileCheckpointStore struct {
	mu   sync.Mutex
	path string
}

var _ store.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore opens (creating if necessary) a directory used
// to hold one JSON file per checkpoint.
func NewFileCheckpointStore(path string) (store.CheckpointStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{path: path}, nil
}

func (s *FileCheckpointStore) filename(id string) string {
	return filepath.Join(s.path, id+".json")
}

// Save writes checkpoint as a JSON file named after its ID.
func (s *FileCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.WriteFile(s.filename(checkpoint.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	return nil
}

// Load reads a checkpoint by ID.
func (s *FileCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename(checkpointID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// List returns every checkpoint whose metadata session_id or thread_id
// matches executionID, sorted by Version ascending.
func (s *FileCheckpointStore) List(ctx context.Context, executionID string) ([]*store.Checkpoint, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.path)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var result []*store.Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		cp, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		if matchesExecution(cp, executionID) {
			result = append(result, cp)
		}
	}

	sortByVersion(result)
	return result, nil
}

// Delete removes a checkpoint file. Deleting a missing checkpoint is a no-op.
func (s *FileCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filename(checkpointID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// Clear removes every checkpoint file belonging to executionID.
func (s *FileCheckpointStore) Clear(ctx context.Context, executionID string) error {
	matches, err := s.List(ctx, executionID)
	if err != nil {
		return err
	}
	for _, cp := range matches {
		if err := s.Delete(ctx, cp.ID); err != nil {
			return err
		}
	}
	return nil
}

func matchesExecution(cp *store.Checkpoint, executionID string) bool {
	if cp.Metadata == nil {
		return false
	}
	if sessionID, ok := cp.Metadata["session_id"].(string); ok && sessionID == executionID {
		return true
	}
	if threadID, ok := cp.Metadata["thread_id"].(string); ok && threadID == executionID {
		return true
	}
	return false
}

func sortByVersion(checkpoints []*store.Checkpoint) {
	for i := 1; i < len(checkpoints); i++ {
		for j := i; j > 0 && checkpoints[j-1].Version > checkpoints[j].Version; j-- {
			checkpoints[j-1], checkpoints[j] = checkpoints[j], checkpoints[j-1]
		}
	}
}
