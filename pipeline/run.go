package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/graphrag-pipeline/corepipeline/graph"
	"github.com/graphrag-pipeline/corepipeline/log"
	"github.com/graphrag-pipeline/corepipeline/store"
	"github.com/graphrag-pipeline/corepipeline/store/memory"
)

// PipelineResult is the wire shape §6 specifies for a single Run: a
// caller gets back the rendered response plus enough metadata to
// audit which path the engine took, without reaching into State.
type PipelineResult struct {
	Success  bool
	Question string
	Response string
	Metadata map[string]any
	Error    string
}

// Pipeline is a compiled DAG ready to answer questions.
type Pipeline struct {
	runnable    *graph.StateRunnable[State]
	checkpoints store.CheckpointStore
	logger      log.Logger

	threadLocksMu sync.Mutex
	threadLocks   map[string]*sync.Mutex
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithCheckpointStore overrides the default in-memory checkpointer, for
// callers that need thread state to survive a process restart.
func WithCheckpointStore(s store.CheckpointStore) Option {
	return func(p *Pipeline) { p.checkpoints = s }
}

// WithLogger attaches a logger for checkpoint load/save diagnostics.
// A failed checkpoint load or save never fails the turn — it only
// degrades to a fresh, unpersisted thread — so these are worth logging.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New compiles nodes into a runnable Pipeline. §3's checkpointer is "an
// in-memory checkpoint store per thread identifier" by default; pass
// WithCheckpointStore for a durable backend (store/sqlite, store/postgres, ...).
func New(nodes Nodes, opts ...Option) (*Pipeline, error) {
	runnable, err := Build(nodes, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build failed: %w", err)
	}

	p := &Pipeline{
		runnable:    runnable,
		checkpoints: memory.NewMemoryCheckpointStore(),
		logger:      &log.NoOpLogger{},
		threadLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// persistedThreadState is the subset of State the checkpointer carries
// across turns on the same thread id: §3 scopes cross-turn persistence
// to "its message subsequence", not the full per-turn working state.
type persistedThreadState struct {
	Messages []Message `json:"messages"`
}

// threadLock serialises concurrent turns on the same thread id, per
// §5's "two concurrent turns on the same thread id are serialised by
// the checkpointer".
func (p *Pipeline) threadLock(threadID string) *sync.Mutex {
	p.threadLocksMu.Lock()
	defer p.threadLocksMu.Unlock()
	mu, ok := p.threadLocks[threadID]
	if !ok {
		mu = &sync.Mutex{}
		p.threadLocks[threadID] = mu
	}
	return mu
}

// loadThreadMessages fetches the newest checkpoint for threadID and
// decodes its Messages. A missing thread, a load error, or a state
// that doesn't decode all degrade to an empty history rather than
// failing the turn — every real checkpoint backend round-trips
// Checkpoint.State through JSON, so decoding uniformly (even for the
// in-memory backend, which doesn't need it) keeps behaviour backend-agnostic.
func (p *Pipeline) loadThreadMessages(ctx context.Context, threadID string) ([]Message, int) {
	checkpoints, err := p.checkpoints.List(ctx, threadID)
	if err != nil {
		p.logger.Warn("pipeline: checkpoint list failed for thread %q: %v", threadID, err)
		return nil, 0
	}
	if len(checkpoints) == 0 {
		return nil, 0
	}

	latest := checkpoints[len(checkpoints)-1]
	raw, err := json.Marshal(latest.State)
	if err != nil {
		p.logger.Warn("pipeline: checkpoint state re-encode failed for thread %q: %v", threadID, err)
		return nil, latest.Version
	}

	var persisted persistedThreadState
	if err := json.Unmarshal(raw, &persisted); err != nil {
		p.logger.Warn("pipeline: checkpoint state decode failed for thread %q: %v", threadID, err)
		return nil, latest.Version
	}
	return persisted.Messages, latest.Version
}

// saveThreadMessages persists messages as the next version of threadID's
// checkpoint. Failure is logged, not returned: per §4.3 no domain-level
// failure may leak out of Run as an error.
func (p *Pipeline) saveThreadMessages(ctx context.Context, threadID string, messages []Message, version int) {
	cp := &store.Checkpoint{
		ID:        threadID,
		NodeName:  "response_generator",
		State:     persistedThreadState{Messages: messages},
		Timestamp: time.Now(),
		Version:   version,
		Metadata:  map[string]any{"thread_id": threadID},
	}
	if err := p.checkpoints.Save(ctx, cp); err != nil {
		p.logger.Warn("pipeline: checkpoint save failed for thread %q: %v", threadID, err)
	}
}

// Run executes one turn of the pipeline for question on threadID,
// returning a PipelineResult that never raises for a domain-level
// failure — only a cancelled/failed graph invocation itself returns an
// error, per §4.3's no-exception-leakage rule operating one level up.
// Prior turns on the same thread id are loaded from the checkpointer
// and the new exchange is appended back once this turn completes.
func (p *Pipeline) Run(ctx context.Context, question, sessionID, threadID string) (PipelineResult, error) {
	mu := p.threadLock(threadID)
	mu.Lock()
	defer mu.Unlock()

	priorMessages, version := p.loadThreadMessages(ctx, threadID)

	initial := NewState(question, sessionID, threadID)
	initial.Messages = append(append([]Message{}, priorMessages...), Message{Role: "user", Content: question})

	final, err := p.runnable.Invoke(ctx, initial)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("pipeline: invoke failed: %w", err)
	}

	messages := final.Messages
	if final.Response != "" {
		messages = append(messages, Message{Role: "assistant", Content: final.Response})
	}
	p.saveThreadMessages(ctx, threadID, messages, version+1)

	return PipelineResult{
		Success:  final.Error == "",
		Question: question,
		Response: final.Response,
		Error:    final.Error,
		Metadata: map[string]any{
			"executionPath":     final.ExecutionPath,
			"intent":            final.Intent,
			"resolvedEntities":  final.ResolvedEntities,
			"resultCount":       final.ResultCount,
			"cacheHit":          final.CacheHit,
			"expansionCount":    final.ExpansionCount,
			"expansionStrategy": final.ExpansionStrategy,
		},
	}, nil
}

// StreamEvent is one increment RunStreaming emits: the name of the
// node that just finished and the state snapshot immediately after.
type StreamEvent struct {
	Node  string
	State State
}

// RunStreaming executes the pipeline, emitting a StreamEvent as each
// node actually completes rather than after the whole invocation: it
// attaches a graph.Tracer to a fresh runnable and forwards each node's
// post-execution state from the tracer's node-end/node-error hooks
// onto the channel synchronously, as the graph engine calls them.
func (p *Pipeline) RunStreaming(ctx context.Context, question, sessionID, threadID string) (<-chan StreamEvent, <-chan error) {
	events := make(chan StreamEvent, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		mu := p.threadLock(threadID)
		mu.Lock()
		defer mu.Unlock()

		priorMessages, version := p.loadThreadMessages(ctx, threadID)

		initial := NewState(question, sessionID, threadID)
		initial.Messages = append(append([]Message{}, priorMessages...), Message{Role: "user", Content: question})

		tracer := graph.NewTracer()
		tracer.AddHook(graph.TraceHookFunc(func(ctx context.Context, span *graph.TraceSpan) {
			if span.Event != graph.TraceEventNodeEnd && span.Event != graph.TraceEventNodeError {
				return
			}
			state, ok := span.State.(State)
			if !ok {
				return
			}
			select {
			case events <- StreamEvent{Node: span.NodeName, State: state}:
			case <-ctx.Done():
			}
		}))

		runnable := p.runnable.WithTracer(tracer)
		final, err := runnable.Invoke(ctx, initial)
		if err != nil {
			errs <- fmt.Errorf("pipeline: invoke failed: %w", err)
			return
		}

		messages := final.Messages
		if final.Response != "" {
			messages = append(messages, Message{Role: "assistant", Content: final.Response})
		}
		p.saveThreadMessages(ctx, threadID, messages, version+1)
	}()

	return events, errs
}
