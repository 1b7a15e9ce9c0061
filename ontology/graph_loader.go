package ontology

import (
	"context"
	"fmt"

	"github.com/graphrag-pipeline/corepipeline/log"
)

// ConceptSource is the subset of GraphRepository ontology lookups need:
// reading the concept graph stored alongside the knowledge graph rather
// than the static YAML files. Declared here (rather than imported from
// graphrepo) so this package has no dependency on the graph-store
// backend; graphrepo.FalkorDBGraph satisfies it structurally.
type ConceptSource interface {
	CanonicalConcept(ctx context.Context, term, category string) (string, error)
	ConceptSynonyms(ctx context.Context, term, category string) ([]string, error)
	ConceptChildren(ctx context.Context, concept, category string) ([]string, error)
}

// GraphLoader resolves ontology lookups against a live graph store
// instead of the bundled YAML files, so that approved OntologyProposals
// take effect without a process restart.
type GraphLoader struct {
	source ConceptSource
}

var _ Loader = (*GraphLoader)(nil)

// NewGraphLoader wraps a ConceptSource as a Loader.
func NewGraphLoader(source ConceptSource) *GraphLoader {
	return &GraphLoader{source: source}
}

func (l *GraphLoader) Canonical(ctx context.Context, term, category string) (string, error) {
	return l.source.CanonicalConcept(ctx, term, category)
}

func (l *GraphLoader) Synonyms(ctx context.Context, term, category string) ([]string, error) {
	return l.source.ConceptSynonyms(ctx, term, category)
}

func (l *GraphLoader) Children(ctx context.Context, concept, category string) ([]string, error) {
	return l.source.ConceptChildren(ctx, concept, category)
}

func (l *GraphLoader) Expand(ctx context.Context, term, category string, cfg ExpansionConfig) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var synonyms, children []string
	var err error

	if cfg.IncludeSynonyms {
		synonyms, err = l.Synonyms(ctx, term, category)
		if err != nil {
			return nil, err
		}
	}
	if cfg.IncludeChildren {
		canonical, cErr := l.Canonical(ctx, term, category)
		if cErr != nil {
			return nil, cErr
		}
		children, err = l.Children(ctx, canonical, category)
		if err != nil {
			return nil, err
		}
	}

	return expandConcept(term, synonyms, children, cfg), nil
}

// HybridLoader prefers the graph-backed loader and falls back to the
// YAML loader if the graph store errors, so a FalkorDB outage degrades
// the pipeline rather than failing concept expansion outright.
type HybridLoader struct {
	graph  *GraphLoader
	yaml   *YAMLLoader
	logger log.Logger
}

var _ Loader = (*HybridLoader)(nil)

// NewHybridLoader builds a HybridLoader combining graph and yaml.
func NewHybridLoader(graph *GraphLoader, yaml *YAMLLoader, logger log.Logger) *HybridLoader {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &HybridLoader{graph: graph, yaml: yaml, logger: logger}
}

func (l *HybridLoader) Canonical(ctx context.Context, term, category string) (string, error) {
	if v, err := l.graph.Canonical(ctx, term, category); err == nil {
		return v, nil
	} else {
		l.logger.Warn("ontology: graph canonical lookup failed, falling back to yaml: %v", err)
	}
	return l.yaml.Canonical(ctx, term, category)
}

func (l *HybridLoader) Synonyms(ctx context.Context, term, category string) ([]string, error) {
	if v, err := l.graph.Synonyms(ctx, term, category); err == nil {
		return v, nil
	} else {
		l.logger.Warn("ontology: graph synonym lookup failed, falling back to yaml: %v", err)
	}
	return l.yaml.Synonyms(ctx, term, category)
}

func (l *HybridLoader) Children(ctx context.Context, concept, category string) ([]string, error) {
	if v, err := l.graph.Children(ctx, concept, category); err == nil {
		return v, nil
	} else {
		l.logger.Warn("ontology: graph children lookup failed, falling back to yaml: %v", err)
	}
	return l.yaml.Children(ctx, concept, category)
}

func (l *HybridLoader) Expand(ctx context.Context, term, category string, cfg ExpansionConfig) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ontology: invalid expansion config: %w", err)
	}

	if v, err := l.graph.Expand(ctx, term, category, cfg); err == nil {
		return v, nil
	} else {
		l.logger.Warn("ontology: graph expand failed, falling back to yaml: %v", err)
	}
	return l.yaml.Expand(ctx, term, category, cfg)
}
