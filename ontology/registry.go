package ontology

import (
	"context"
	"fmt"
	"sync"

	"github.com/graphrag-pipeline/corepipeline/config"
	"github.com/graphrag-pipeline/corepipeline/log"
)

// Registry owns the single Loader instance the pipeline shares, and
// lets OntologyService refresh it in place once a proposal is approved
// and written to the graph store, so the new concept is visible to the
// next query without a process restart.
//
// Refresh serializes concurrent callers with a mutex the way the
// typed graph engine serializes state merges with its own RWMutex.
type Registry struct {
	mode config.OntologyMode

	mu     sync.RWMutex
	loader Loader

	yamlDir string
	source  ConceptSource
	logger  log.Logger
}

// NewRegistry builds a Registry for the given mode. source may be nil
// when mode is config.OntologyModeFile.
func NewRegistry(mode config.OntologyMode, yamlDir string, source ConceptSource, logger log.Logger) (*Registry, error) {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	r := &Registry{mode: mode, yamlDir: yamlDir, source: source, logger: logger}

	switch mode {
	case config.OntologyModeFile:
		r.loader = NewYAMLLoader(yamlDir, logger)
	case config.OntologyModeGraph:
		if source == nil {
			return nil, fmt.Errorf("ontology: ConceptSource is required for mode=%q", mode)
		}
		r.loader = NewGraphLoader(source)
	case config.OntologyModeHybrid:
		if source == nil {
			return nil, fmt.Errorf("ontology: ConceptSource is required for mode=%q", mode)
		}
		r.loader = NewHybridLoader(NewGraphLoader(source), NewYAMLLoader(yamlDir, logger), logger)
	default:
		return nil, fmt.Errorf("ontology: unknown mode %q", mode)
	}

	logger.Info("ontology registry initialized: mode=%s", mode)
	return r, nil
}

// Mode reports the registry's configured backend.
func (r *Registry) Mode() config.OntologyMode {
	return r.mode
}

// Loader returns the currently active Loader. Callers must not retain
// it across a Refresh; fetch it again for each lookup.
func (r *Registry) Loader() Loader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loader
}

// Refresh swaps in a fresh Loader, discarding any cached YAML parse or
// graph-side cache. It is safe for concurrent callers: a second
// Refresh while one is in flight blocks until the first completes.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case config.OntologyModeFile:
		r.loader = NewYAMLLoader(r.yamlDir, r.logger)
	case config.OntologyModeGraph:
		r.loader = NewGraphLoader(r.source)
	case config.OntologyModeHybrid:
		r.loader = NewHybridLoader(NewGraphLoader(r.source), NewYAMLLoader(r.yamlDir, r.logger), r.logger)
	default:
		return fmt.Errorf("ontology: unknown mode %q", r.mode)
	}

	r.logger.Info("ontology registry refreshed: mode=%s", r.mode)
	return nil
}
