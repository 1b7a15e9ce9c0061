// Package ontology resolves canonical names, synonyms and concept
// hierarchies used by ConceptExpander to broaden a user's query terms
// before they reach QueryDecomposer and CypherGenerator.
package ontology

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/graphrag-pipeline/corepipeline/log"
)

// Loader resolves canonical names, synonyms and concept children for a
// term within a category (skills, positions, departments).
type Loader interface {
	Canonical(ctx context.Context, term, category string) (string, error)
	Synonyms(ctx context.Context, term, category string) ([]string, error)
	Children(ctx context.Context, concept, category string) ([]string, error)
	Expand(ctx context.Context, term, category string, cfg ExpansionConfig) ([]string, error)
}

// YAMLLoader reads schema.yaml and synonyms.yaml from a directory once
// and serves every subsequent lookup from the in-memory parse, matching
// the teacher's file-system-is-source-of-truth convention.
type YAMLLoader struct {
	dir    string
	logger log.Logger

	mu           sync.RWMutex
	schema       *Schema
	synonyms     SynonymSet
	reverseIndex map[string]map[string]string
}

var _ Loader = (*YAMLLoader)(nil)

// NewYAMLLoader creates a loader reading schema.yaml/synonyms.yaml from
// dir. Files are parsed lazily on first use.
func NewYAMLLoader(dir string, logger log.Logger) *YAMLLoader {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &YAMLLoader{dir: dir, logger: logger}
}

func (l *YAMLLoader) loadSchema() *Schema {
	l.mu.RLock()
	if l.schema != nil {
		defer l.mu.RUnlock()
		return l.schema
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.schema != nil {
		return l.schema
	}

	schema := &Schema{}
	path := filepath.Join(l.dir, "schema.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("ontology: schema file not found: %s (%v)", path, err)
		l.schema = schema
		return l.schema
	}
	if err := yaml.Unmarshal(data, schema); err != nil {
		l.logger.Error("ontology: failed to parse schema yaml %s: %v", path, err)
		schema = &Schema{}
	}
	l.schema = schema
	return l.schema
}

func (l *YAMLLoader) loadSynonyms() SynonymSet {
	l.mu.RLock()
	if l.synonyms != nil {
		defer l.mu.RUnlock()
		return l.synonyms
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.synonyms != nil {
		return l.synonyms
	}

	syn := SynonymSet{}
	path := filepath.Join(l.dir, "synonyms.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("ontology: synonyms file not found: %s (%v)", path, err)
		l.synonyms = syn
		l.buildReverseIndexLocked()
		return l.synonyms
	}
	if err := yaml.Unmarshal(data, &syn); err != nil {
		l.logger.Error("ontology: failed to parse synonyms yaml %s: %v", path, err)
		syn = SynonymSet{}
	}
	l.synonyms = syn
	l.buildReverseIndexLocked()
	return l.synonyms
}

// buildReverseIndexLocked must run with l.mu held for writing.
func (l *YAMLLoader) buildReverseIndexLocked() {
	index := make(map[string]map[string]string, len(l.synonyms))
	for category, entries := range l.synonyms {
		if strings.HasPrefix(category, "_") {
			continue
		}
		catIndex := make(map[string]string, len(entries))
		for mainTerm, entry := range entries {
			canonical := entry.Canonical
			if canonical == "" {
				canonical = mainTerm
			}
			catIndex[strings.ToLower(mainTerm)] = canonical
			for _, alias := range entry.Aliases {
				catIndex[strings.ToLower(alias)] = canonical
			}
		}
		index[category] = catIndex
	}
	l.reverseIndex = index
}

// Canonical returns the normalized name for term within category, or
// term itself if it is not found.
func (l *YAMLLoader) Canonical(_ context.Context, term, category string) (string, error) {
	l.loadSynonyms()
	l.mu.RLock()
	defer l.mu.RUnlock()

	catIndex, ok := l.reverseIndex[category]
	if !ok {
		return term, nil
	}
	if canonical, ok := catIndex[strings.ToLower(term)]; ok {
		return canonical, nil
	}
	return term, nil
}

// Synonyms returns the canonical term plus its aliases, or [term] if
// term is not recognized in category.
func (l *YAMLLoader) Synonyms(ctx context.Context, term, category string) ([]string, error) {
	synonyms := l.loadSynonyms()

	canonical, err := l.Canonical(ctx, term, category)
	if err != nil {
		return nil, err
	}

	catData, ok := synonyms[category]
	if !ok {
		return []string{term}, nil
	}

	for mainTerm, entry := range catData {
		entryCanonical := entry.Canonical
		if entryCanonical == "" {
			entryCanonical = mainTerm
		}
		if entryCanonical != canonical {
			continue
		}
		set := newOrderedSet(canonical)
		set.addUpTo(entry.Aliases, -1)
		return set.order, nil
	}

	return []string{term}, nil
}

// Children returns the concepts subsumed by concept within category.
func (l *YAMLLoader) Children(_ context.Context, concept, category string) ([]string, error) {
	schema := l.loadSchema()

	switch category {
	case "skills":
		return skillChildren(concept, schema.Concepts.SkillCategory), nil
	case "positions":
		return positionChildren(concept, schema.Concepts.PositionLevel), nil
	default:
		return nil, nil
	}
}

func skillChildren(concept string, categories []SkillCategory) []string {
	for _, top := range categories {
		if top.Name == concept {
			result := append([]string{}, top.Skills...)
			for _, sub := range top.Subcategories {
				result = append(result, sub.Skills...)
			}
			return result
		}
		for _, sub := range top.Subcategories {
			if sub.Name == concept {
				return sub.Skills
			}
		}
	}
	return nil
}

func positionChildren(concept string, levels PositionLevel) []string {
	var targetLevel *int
	var result []string

	for _, entry := range levels.Hierarchy {
		if entry.Name == concept {
			level := entry.Level
			targetLevel = &level
			result = append(result, entry.Includes...)
			break
		}
	}
	if targetLevel == nil {
		return nil
	}
	for _, entry := range levels.Hierarchy {
		if entry.Level < *targetLevel {
			result = append(result, entry.Includes...)
		}
	}
	return result
}

// Expand returns term plus its synonyms and children, deduplicated and
// bounded by cfg.
func (l *YAMLLoader) Expand(ctx context.Context, term, category string, cfg ExpansionConfig) ([]string, error) {
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
