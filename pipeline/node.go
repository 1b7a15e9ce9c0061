package pipeline

import (
	"context"
	"time"

	"github.com/graphrag-pipeline/corepipeline/log"
)

// Node is the uniform contract every pipeline step implements: a name,
// the state it reads, and a Process method that never leaks an error
// out of the DAG — failures collapse into a Patch carrying Error and
// an "<name>_error" execution-path label.
type Node interface {
	Name() string
	Process(ctx context.Context, state State) (Patch, error)
}

// adapt wraps a Node as the plain function graph.StateGraph[State]
// expects, applying input validation, start/finish logging and the
// no-exception-leakage rule uniformly so individual nodes never have
// to re-implement it.
func adapt(node Node, logger log.Logger) func(ctx context.Context, state State) (State, error) {
	name := node.Name()
	return func(ctx context.Context, state State) (State, error) {
		start := time.Now()
		logger.Debug("pipeline: node %s starting", name)

		if err := validateInput(state); err != nil {
			logger.Warn("pipeline: node %s received invalid input: %v", name, err)
			errMsg := err.Error()
			return mergePatch(state, Patch{
				Error:         &errMsg,
				ExecutionPath: []string{name + "_error"},
			}), nil
		}

		patch, err := safeProcess(ctx, node, state)
		if err != nil {
			logger.Error("pipeline: node %s failed: %v", name, err)
			errMsg := err.Error()
			patch.Error = &errMsg
			if len(patch.ExecutionPath) == 0 {
				patch.ExecutionPath = []string{name + "_error"}
			}
		}

		logger.Debug("pipeline: node %s finished in %s", name, time.Since(start))
		return mergePatch(state, patch), nil
	}
}

// safeProcess calls node.Process, converting a panic into an error so
// a single misbehaving node cannot crash the whole run.
func safeProcess(ctx context.Context, node Node, state State) (patch Patch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return node.Process(ctx, state)
}

func panicError(r any) error {
	return &panicErr{r: r}
}

type panicErr struct{ r any }

func (p *panicErr) Error() string { return "panic: " + toString(p.r) }

func toString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic value"
}

// validateInput is the shared input check adapt runs before every
// node. It accepts every state and returns nil; it does not check the
// question or any other field, so nodes validate their own
// preconditions inline.
func validateInput(state State) error {
	return nil
}
