package ontology

// Schema is the parsed contents of schema.yaml: a concept hierarchy used
// to resolve an entity's descendant concepts (e.g. "Backend" -> the
// skills filed under it).
type Schema struct {
	Concepts       ConceptTree            `yaml:"concepts"`
	ExpansionRules map[string]interface{} `yaml:"expansion_rules"`
}

// ConceptTree holds the two concept families the pipeline expands over.
type ConceptTree struct {
	SkillCategory []SkillCategory `yaml:"SkillCategory"`
	PositionLevel PositionLevel   `yaml:"PositionLevel"`
}

// SkillCategory is a top-level skill grouping, optionally with nested
// subcategories (e.g. "Programming" -> "Backend", "Frontend").
type SkillCategory struct {
	Name          string          `yaml:"name"`
	Skills        []string        `yaml:"skills"`
	Subcategories []SkillCategory `yaml:"subcategories"`
}

// PositionLevel describes a seniority ladder: each level lists the
// position titles it subsumes, and lower levels are included when a
// higher level is expanded.
type PositionLevel struct {
	Hierarchy []PositionLevelEntry `yaml:"hierarchy"`
}

// PositionLevelEntry is one rung of the seniority ladder.
type PositionLevelEntry struct {
	Name     string   `yaml:"name"`
	Level    int      `yaml:"level"`
	Includes []string `yaml:"includes"`
}

// SynonymSet is the parsed contents of synonyms.yaml: per-category
// canonical terms with their accepted aliases.
type SynonymSet map[string]map[string]SynonymEntry

// SynonymEntry names a canonical term and its aliases within a category.
type SynonymEntry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}
