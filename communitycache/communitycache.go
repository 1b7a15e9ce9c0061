// Package communitycache backs CommunitySummarizer's 24h-TTL result
// cache (spec.md §4.11): a lightweight, keyword-overlap similarity over
// non-stopword tokens treats two questions as equivalent once their
// Jaccard-style overlap reaches 0.6. Grounded on the original
// CommunitySummarizerNode's _find_cached_summary/_save_summary_cache/
// _is_similar_question.
package communitycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
)

const (
	cacheLabel          = "CommunitySummary"
	ttl                 = 24 * time.Hour
	similarityThreshold = 0.6
	candidateQueryLimit = 5
	candidateScanLimit  = 50
)

// stopwords mirrors the original's MVP keyword-overlap filter: a small
// set of Korean particles and filler words that carry no topical
// signal.
var stopwords = map[string]bool{
	"은": true, "는": true, "이": true, "가": true, "을": true, "를": true,
	"의": true, "에": true, "에서": true, "로": true, "해줘": true,
	"알려줘": true, "뭐야": true, "뭔가요": true, "좀": true, "어떤": true,
}

// isSimilarQuestion reports whether q1 and q2 are "the same question"
// by the original's MVP heuristic: overlap / max(|tokens1|, |tokens2|)
// at or above similarityThreshold. Either side having zero non-
// stopword tokens is never similar to anything.
func isSimilarQuestion(q1, q2 string) bool {
	t1 := tokenize(q1)
	t2 := tokenize(q2)
	if len(t1) == 0 || len(t2) == 0 {
		return false
	}

	overlap := 0
	for t := range t1 {
		if t2[t] {
			overlap++
		}
	}
	denom := len(t1)
	if len(t2) > denom {
		denom = len(t2)
	}
	return float64(overlap)/float64(denom) >= similarityThreshold
}

func tokenize(question string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(question) {
		if !stopwords[t] {
			tokens[t] = true
		}
	}
	return tokens
}

// GraphCache persists cache entries as graph nodes, the production
// backend: each entry is a CommunitySummary node carrying the question,
// the summary, and a Unix-epoch creation timestamp (the FalkorDB wire
// protocol has no native datetime() the way Neo4j's Cypher dialect
// does, so the TTL comparison happens against a plain epoch property
// instead of the original's `datetime() - duration('PT24H')`).
type GraphCache struct {
	Repo graphrepo.Repository
	Now  func() time.Time
}

// NewGraphCache builds a GraphCache over repo.
func NewGraphCache(repo graphrepo.Repository) *GraphCache {
	return &GraphCache{Repo: repo, Now: time.Now}
}

func (c *GraphCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Lookup scans the candidateQueryLimit most recent non-expired entries
// and returns the first whose question is similar enough to question.
func (c *GraphCache) Lookup(ctx context.Context, question string) (string, bool, error) {
	cutoff := c.now().Add(-ttl).Unix()

	query := fmt.Sprintf(
		"MATCH (cs:%s) WHERE cs.createdAtUnix > $cutoff RETURN cs.question AS question, cs.summary AS summary ORDER BY cs.createdAtUnix DESC LIMIT %d",
		cacheLabel, candidateQueryLimit,
	)
	result, err := c.Repo.Execute(ctx, query, map[string]any{"cutoff": cutoff})
	if err != nil {
		return "", false, err
	}

	for _, row := range result.Rows {
		cachedQuestion, _ := row["question"].(string)
		if cachedQuestion == "" {
			continue
		}
		if !isSimilarQuestion(question, cachedQuestion) {
			continue
		}
		summary, _ := row["summary"].(string)
		return summary, true, nil
	}
	return "", false, nil
}

// Store records a fresh cache entry.
func (c *GraphCache) Store(ctx context.Context, question, summary string) error {
	query := fmt.Sprintf(
		"CREATE (cs:%s {question: $question, summary: $summary, createdAtUnix: $createdAtUnix})",
		cacheLabel,
	)
	_, err := c.Repo.Execute(ctx, query, map[string]any{
		"question":      question,
		"summary":       summary,
		"createdAtUnix": c.now().Unix(),
	})
	return err
}

// entry is one in-process cache record for MemoryCache.
type entry struct {
	question  string
	summary   string
	createdAt time.Time
}

// MemoryCache is a process-local Lookup/Store implementation: adequate
// for tests and for single-instance deployments with no graph store
// configured; the in-process counterpart of GraphCache.
type MemoryCache struct {
	mu      sync.Mutex
	entries []entry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) nowFunc() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Lookup scans entries newest-first, skipping anything past the TTL,
// limited to the candidateScanLimit most recent live entries.
func (c *MemoryCache) Lookup(ctx context.Context, question string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.nowFunc().Add(-ttl)
	scanned := 0
	for i := len(c.entries) - 1; i >= 0 && scanned < candidateScanLimit; i-- {
		e := c.entries[i]
		if e.createdAt.Before(cutoff) {
			continue
		}
		scanned++
		if isSimilarQuestion(question, e.question) {
			return e.summary, true, nil
		}
	}
	return "", false, nil
}

// Store appends a fresh entry.
func (c *MemoryCache) Store(ctx context.Context, question, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{question: question, summary: summary, createdAt: c.nowFunc()})
	return nil
}
