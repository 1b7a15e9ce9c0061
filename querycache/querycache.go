// Package querycache fingerprints questions by embedding and returns a
// previously emitted Cypher query for reuse, backing CacheChecker.
// Grounded on the teacher's rag/store/vector.go InMemoryVectorStore and
// its cosineSimilarity32 helper, generalized from a document store to a
// single-purpose CachedQuery store.
package querycache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// CachedQuery is one entry in the cache: a prior question's embedding
// alongside the Cypher it resolved to.
type CachedQuery struct {
	FingerprintEmbedding []float32
	Question             string
	CypherQuery          string
	CypherParameters     map[string]any
	CreatedAt            time.Time
}

// Match is a cache lookup result paired with its cosine similarity to
// the query embedding.
type Match struct {
	Query CachedQuery
	Score float64
}

// Repository is the query-cache facade CacheChecker consults.
type Repository interface {
	Nearest(ctx context.Context, embedding []float32) (Match, bool, error)
	Store(ctx context.Context, entry CachedQuery) error

	// UpdateQuery backfills the Cypher a miss entry resolved to, once
	// generation/execution has run, so the next matching question
	// short-circuits straight to cypher_generator's cache-pass-through
	// branch instead of generating again.
	UpdateQuery(ctx context.Context, embedding []float32, cypherQuery string, parameters map[string]any) error
}

// InMemoryRepository is a process-local Repository, adequate for a
// single pipeline instance; a distributed deployment would back this
// with the graph store's own vector index instead (see
// graphrepo.Repository.VectorSearch).
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []CachedQuery
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty cache.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Nearest returns the highest-cosine-similarity entry, or ok=false if
// the cache is empty. The caller compares Score against its own
// threshold; this repository does not enforce one.
func (r *InMemoryRepository) Nearest(ctx context.Context, embedding []float32) (Match, bool, error) {
	if len(embedding) == 0 {
		return Match{}, false, fmt.Errorf("querycache: empty query embedding")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return Match{}, false, nil
	}

	best := Match{Query: r.entries[0], Score: cosineSimilarity(embedding, r.entries[0].FingerprintEmbedding)}
	for _, entry := range r.entries[1:] {
		score := cosineSimilarity(embedding, entry.FingerprintEmbedding)
		if score > best.Score {
			best = Match{Query: entry, Score: score}
		}
	}
	return best, true, nil
}

// Store appends entry to the cache.
func (r *InMemoryRepository) Store(ctx context.Context, entry CachedQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// UpdateQuery finds the entry whose fingerprint embedding matches
// embedding exactly and sets its CypherQuery/CypherParameters. It is a
// no-op, not an error, if no matching entry is found: the entry may
// have been evicted or never stored in the first place.
func (r *InMemoryRepository) UpdateQuery(ctx context.Context, embedding []float32, cypherQuery string, parameters map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if sameEmbedding(entry.FingerprintEmbedding, embedding) {
			r.entries[i].CypherQuery = cypherQuery
			r.entries[i].CypherParameters = parameters
			return nil
		}
	}
	return nil
}

func sameEmbedding(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cosineSimilarity mirrors the teacher's cosineSimilarity32, kept at
// float64 precision since embeddings here are compared, not stored at
// scale.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
