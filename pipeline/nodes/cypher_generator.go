package nodes

import (
	"context"
	"strings"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// complexIntents always select the heavy tier, regardless of hop count
// or entity cardinality, per §4.9.
var complexIntents = map[pipeline.Intent]bool{
	pipeline.IntentPathAnalysis:       true,
	pipeline.IntentRelationshipSearch: true,
	pipeline.IntentMentoringNetwork:   true,
}

// sensitiveProperties are stripped from the schema shown to the LLM
// whenever a UserContext is present and the caller lacks the admin
// role; the domain's access policy names no properties explicitly, so
// this is the conservative default.
var sensitiveProperties = map[string]bool{
	"salary":   true,
	"ssn":      true,
	"birthday": true,
}

// CypherGenerator synthesises a Cypher query from the question, schema
// and resolved/expanded entities, then corrects the LLM's parameter
// values against the surface forms actually present in the question.
type CypherGenerator struct {
	LLM llmprovider.Provider
}

func (n *CypherGenerator) Name() string { return "cypher_generator" }

func (n *CypherGenerator) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if state.SkipGeneration {
		// A cache hit already populated cypherQuery/cypherParameters;
		// the DAG still routes through this node on its way to the
		// executor, so pass the cached query through untouched.
		return pipeline.Patch{ExecutionPath: []string{n.Name() + "_cached"}}, nil
	}

	tier := n.selectTier(state)

	schema := n.scopedSchema(state)
	entities := state.Entities
	if len(state.ResolvedEntities) > 0 {
		entities = resolvedEntityMap(state.ResolvedEntities)
	}

	result, err := n.LLM.GenerateCypher(ctx, state.Question, schema, entities, decomposePlanArg(state.QueryPlan), tier)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	query := strings.TrimSpace(result.Query)
	if query == "" {
		errMsg := "cypher_generator: empty query returned"
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	parameters := correctParameters(result.Parameters, allSurfaceForms(state))
	if state.UserContext != nil && state.UserContext.DepartmentScope != "" {
		query = injectDepartmentScope(query)
		parameters["departmentScope"] = state.UserContext.DepartmentScope
	}

	return pipeline.Patch{
		CypherQuery:      &query,
		CypherParameters: parameters,
		ExecutionPath:    []string{n.Name()},
	}, nil
}

func (n *CypherGenerator) selectTier(state pipeline.State) llmprovider.Tier {
	if complexIntents[state.Intent] {
		return llmprovider.TierHeavy
	}
	if state.QueryPlan != nil && state.QueryPlan.IsMultiHop {
		return llmprovider.TierHeavy
	}
	if uniqueValueCount(state.Entities) >= 3 {
		return llmprovider.TierHeavy
	}
	return llmprovider.TierLight
}

// scopedSchema drops sensitive node properties from the schema when a
// UserContext without the admin role is present. Labels, relationship
// types and relationship properties are passed through unfiltered.
func (n *CypherGenerator) scopedSchema(state pipeline.State) any {
	if state.Schema == nil {
		return nil
	}
	if state.UserContext == nil || hasRole(state.UserContext.Roles, "admin") {
		return state.Schema
	}

	filtered := *state.Schema
	filtered.NodeProperties = map[string][]string{}
	for label, props := range state.Schema.NodeProperties {
		var kept []string
		for _, p := range props {
			if !sensitiveProperties[strings.ToLower(p)] {
				kept = append(kept, p)
			}
		}
		filtered.NodeProperties[label] = kept
	}
	return &filtered
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func decomposePlanArg(plan *pipeline.QueryPlan) *llmprovider.DecomposeResult {
	if plan == nil {
		return nil
	}
	hops := make([]llmprovider.QueryHop, 0, len(plan.Hops))
	for _, h := range plan.Hops {
		hops = append(hops, llmprovider.QueryHop{
			Description:  h.Description,
			Relationship: h.Relationship,
			Direction:    h.Direction,
			Filter:       h.Filter,
		})
	}
	return &llmprovider.DecomposeResult{
		IsMultiHop:  plan.IsMultiHop,
		HopCount:    plan.HopCount,
		Hops:        hops,
		FinalReturn: plan.FinalReturn,
		Explanation: plan.Explanation,
	}
}

func resolvedEntityMap(resolved []pipeline.ResolvedEntity) map[string][]string {
	out := map[string][]string{}
	for _, r := range resolved {
		label := "Entity"
		if len(r.Labels) > 0 {
			label = r.Labels[0]
		}
		out[label] = appendUnique(out[label], r.CanonicalName)
	}
	return out
}

func allSurfaceForms(state pipeline.State) []string {
	var forms []string
	for _, values := range state.Entities {
		forms = append(forms, values...)
	}
	for _, values := range state.ExpandedEntities {
		forms = append(forms, values...)
	}
	return forms
}

// correctParameters replaces each string parameter value with the
// surface form that either equals it case-insensitively, or most
// specifically contains/is contained by it, preserving the longest
// meaningful match. Non-string parameters pass through untouched.
func correctParameters(parameters map[string]any, surfaceForms []string) map[string]any {
	corrected := make(map[string]any, len(parameters))
	for key, value := range parameters {
		s, ok := value.(string)
		if !ok {
			corrected[key] = value
			continue
		}
		corrected[key] = bestSurfaceMatch(s, surfaceForms)
	}
	return corrected
}

func bestSurfaceMatch(value string, surfaceForms []string) string {
	best := value
	bestLen := -1
	lowerValue := strings.ToLower(value)
	for _, form := range surfaceForms {
		lowerForm := strings.ToLower(form)
		if lowerForm == lowerValue {
			return form
		}
		if strings.Contains(lowerForm, lowerValue) || strings.Contains(lowerValue, lowerForm) {
			if len(form) > bestLen {
				best = form
				bestLen = len(form)
			}
		}
	}
	return best
}

func injectDepartmentScope(query string) string {
	if strings.Contains(query, "$departmentScope") {
		return query
	}
	idx := strings.Index(strings.ToUpper(query), "RETURN")
	clause := " department = $departmentScope "
	if idx < 0 {
		return query + clause
	}
	if strings.Contains(strings.ToUpper(query), "WHERE") {
		return query[:idx] + "AND" + clause + query[idx:]
	}
	return query[:idx] + "WHERE" + clause + query[idx:]
}
