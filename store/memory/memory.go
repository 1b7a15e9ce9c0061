// Package memory provides an in-process CheckpointStore backed by a map.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/graphrag-pipeline/corepipeline/store"
)

// MemoryCheckpointStore implements store.CheckpointStore with an
// in-memory map. It is the default checkpointer backend for the
// pipeline: spec.md scopes persistence to "an in-memory checkpoint
// store per thread identifier" and explicitly disclaims durable
// session ownership beyond that.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
	}
}

// Save stores or overwrites a checkpoint by its ID.
func (s *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *checkpoint
	s.checkpoints[cp.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns every checkpoint whose metadata session_id or thread_id
// matches executionID, sorted by Version ascending.
func (s *MemoryCheckpointStore) List(_ context.Context, executionID string) ([]*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*store.Checkpoint
	for _, cp := range s.checkpoints {
		if matchesExecution(cp, executionID) {
			out := *cp
			result = append(result, &out)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// Delete removes a checkpoint. Deleting a missing checkpoint is a no-op.
func (s *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, checkpointID)
	return nil
}

// Clear removes every checkpoint belonging to executionID.
func (s *MemoryCheckpointStore) Clear(_ context.Context, executionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cp := range s.checkpoints {
		if matchesExecution(cp, executionID) {
			delete(s.checkpoints, id)
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
