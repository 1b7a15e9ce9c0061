package ontology

import "fmt"

// ExpansionConfig bounds how far expandConcept walks synonyms and
// children before truncating, guarding against over-expansion (e.g. a
// search for "Backend" pulling in dozens of unrelated skills).
type ExpansionConfig struct {
	MaxSynonyms     int
	MaxChildren     int
	MaxTotal        int
	IncludeSynonyms bool
	IncludeChildren bool
}

// DefaultExpansionConfig mirrors the documented defaults: 5 synonyms,
// 10 children, 15 total.
func DefaultExpansionConfig() ExpansionConfig {
	return ExpansionConfig{
		MaxSynonyms:     5,
		MaxChildren:     10,
		MaxTotal:        15,
		IncludeSynonyms: true,
		IncludeChildren: true,
	}
}

// Validate reports a non-nil error for an unusable configuration.
func (c ExpansionConfig) Validate() error {
	if c.MaxSynonyms < 0 {
		return fmt.Errorf("ontology: max_synonyms must be non-negative")
	}
	if c.MaxChildren < 0 {
		return fmt.Errorf("ontology: max_children must be non-negative")
	}
	if c.MaxTotal < 1 {
		return fmt.Errorf("ontology: max_total must be at least 1")
	}
	return nil
}

// orderedSet accumulates strings in first-seen order while rejecting
// duplicates, giving expandConcept a deterministic output order instead
// of Go's randomized map iteration.
type orderedSet struct {
	seen  map[string]bool
	order []string
}

func newOrderedSet(seed string) *orderedSet {
	s := &orderedSet{seen: map[string]bool{seed: true}, order: []string{seed}}
	return s
}

func (s *orderedSet) addUpTo(items []string, limit int) {
	added := 0
	for _, item := range items {
		if limit >= 0 && added >= limit {
			return
		}
		if s.seen[item] {
			continue
		}
		s.seen[item] = true
		s.order = append(s.order, item)
		added++
	}
}

func (s *orderedSet) truncate(max int) []string {
	if max < 0 || max >= len(s.order) {
		return s.order
	}
	return s.order[:max]
}

// expandConcept performs the shared synonym+children expansion any
// Loader implementation can reuse once it has resolved a term's
// synonyms and children lists.
func expandConcept(term string, synonyms, children []string, cfg ExpansionConfig) []string {
	set := newOrderedSet(term)

	if cfg.IncludeSynonyms {
		set.addUpTo(synonyms, cfg.MaxSynonyms)
	}
	if cfg.IncludeChildren {
		set.addUpTo(children, cfg.MaxChildren)
	}

	return set.truncate(cfg.MaxTotal)
}
