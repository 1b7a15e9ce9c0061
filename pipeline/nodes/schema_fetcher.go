package nodes

import (
	"context"
	"sync"
	"time"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// SchemaFetcher pulls labels, relationship types and indexes via the
// graph's introspection procedures, caching the result for TTL to
// avoid hammering the store on every turn (§4.7).
type SchemaFetcher struct {
	Repo graphrepo.Repository
	TTL  time.Duration

	mu        sync.Mutex
	cached    *pipeline.SchemaSnapshot
	fetchedAt time.Time
}

func (n *SchemaFetcher) Name() string { return "schema_fetcher" }

func (n *SchemaFetcher) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	snapshot := n.getCached()
	if snapshot != nil {
		return pipeline.Patch{Schema: snapshot, ExecutionPath: []string{n.Name() + "_cached"}}, nil
	}

	info, err := n.Repo.FetchSchema(ctx)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	fresh := &pipeline.SchemaSnapshot{
		Labels:                 info.Labels,
		RelationshipTypes:      info.RelationshipTypes,
		NodeProperties:         info.NodeProperties,
		RelationshipProperties: info.RelationshipProperties,
		Indexes:                info.Indexes,
		Constraints:            info.Constraints,
		FetchedAt:              time.Now(),
	}
	n.setCached(fresh)

	return pipeline.Patch{Schema: fresh, ExecutionPath: []string{n.Name()}}, nil
}

func (n *SchemaFetcher) getCached() *pipeline.SchemaSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cached == nil {
		return nil
	}
	ttl := n.TTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if time.Since(n.fetchedAt) > ttl {
		return nil
	}
	return n.cached
}

func (n *SchemaFetcher) setCached(s *pipeline.SchemaSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cached = s
	n.fetchedAt = time.Now()
}
