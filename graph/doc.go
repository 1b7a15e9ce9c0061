// Package graph provides the generic directed-acyclic-graph execution
// engine used to run the corepipeline's Graph-RAG pipeline.
//
// # Core Concepts
//
// ## StateGraph[S]
// StateGraph[S] maintains a typed state S as it flows through nodes.
// Each node transforms S (or returns a *Command overriding routing),
// and edges (static or conditional) determine which node runs next.
//
// ## Nodes and Edges
// Nodes are named functions: func(ctx, S) (S, error). Edges are either
// static (AddEdge) or conditional (AddConditionalEdge, a function of
// the current state). Multiple static edges from the same node produce
// a fan-out; the engine runs all of them concurrently and joins their
// results before continuing.
//
// ## Schema and reducers
// A StateSchemaTyped[S] governs how two states merge: MapSchema and its
// Reducer functions (OverwriteReducer, AppendReducer) implement the
// append-only-vs-overwrite merge semantics the pipeline's state needs.
//
// # Example
//
//	type OrderState struct {
//		OrderID   string
//		Validated bool
//	}
//
//	g := graph.NewStateGraph[OrderState]()
//	g.AddNode("validate", "validate order", func(ctx context.Context, s OrderState) (OrderState, error) {
//		s.Validated = true
//		return s, nil
//	})
//	g.SetEntryPoint("validate")
//	g.AddEdge("validate", graph.END)
//
//	runnable, err := g.Compile()
//	final, err := runnable.Invoke(context.Background(), OrderState{OrderID: "o-1"})
//
// # Key features
//
//   - Parallel fan-out/fan-in with panic-safe goroutine execution
//   - Tracing spans and callback hooks for observability (see Tracer),
//     the basis for the pipeline package's incremental streaming
//   - Command-based dynamic routing overrides
//   - Retry policies with fixed/exponential/linear backoff
//
// Durable, resumable execution keyed by thread id is handled one layer
// up, by the store package's CheckpointStore and the pipeline package's
// use of it — not by this package.
//
// # Thread safety
//
// A compiled StateRunnable[S] is safe for concurrent Invoke calls on
// independent states; building a StateGraph[S] (AddNode/AddEdge/...)
// is not safe for concurrent use and should complete before Compile.
package graph
