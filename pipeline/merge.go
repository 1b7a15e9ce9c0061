package pipeline

// mergePatch applies patch onto state under the append/overwrite
// reducer rules §3 and §9 require: Messages and ExecutionPath only
// ever grow, every other populated field in patch overwrites state.
func mergePatch(state State, patch Patch) State {
	if len(patch.Messages) > 0 {
		state.Messages = append(append([]Message{}, state.Messages...), patch.Messages...)
	}
	if len(patch.ExecutionPath) > 0 {
		state.ExecutionPath = append(append([]string{}, state.ExecutionPath...), patch.ExecutionPath...)
	}

	if patch.Intent != nil {
		state.Intent = *patch.Intent
	}
	if patch.IntentConfidence != nil {
		state.IntentConfidence = *patch.IntentConfidence
	}
	if patch.Entities != nil {
		state.Entities = patch.Entities
	}
	if patch.ExpandedEntities != nil {
		state.ExpandedEntities = patch.ExpandedEntities
	}
	if patch.ResolvedEntities != nil {
		state.ResolvedEntities = patch.ResolvedEntities
	}
	if patch.UnresolvedEntities != nil {
		state.UnresolvedEntities = patch.UnresolvedEntities
	}
	if patch.QueryPlan != nil {
		state.QueryPlan = patch.QueryPlan
	}

	if patch.ExpandedEntitiesByOriginal != nil {
		state.ExpandedEntitiesByOriginal = patch.ExpandedEntitiesByOriginal
	}
	if patch.OriginalEntities != nil {
		state.OriginalEntities = patch.OriginalEntities
	}
	if patch.ExpansionCount != nil {
		state.ExpansionCount = *patch.ExpansionCount
	}
	if patch.ExpansionStrategy != nil {
		state.ExpansionStrategy = *patch.ExpansionStrategy
	}

	if patch.Schema != nil {
		state.Schema = patch.Schema
	}
	if patch.CypherQuery != nil {
		state.CypherQuery = *patch.CypherQuery
	}
	if patch.CypherParameters != nil {
		state.CypherParameters = patch.CypherParameters
	}
	if patch.GraphResults != nil {
		state.GraphResults = patch.GraphResults
	}
	if patch.ResultCount != nil {
		state.ResultCount = *patch.ResultCount
	}

	if patch.Response != nil {
		state.Response = *patch.Response
	}

	if patch.Error != nil {
		state.Error = *patch.Error
	}

	if patch.QuestionEmbedding != nil {
		state.QuestionEmbedding = patch.QuestionEmbedding
	}
	if patch.CacheHit != nil {
		state.CacheHit = *patch.CacheHit
	}
	if patch.CacheScore != nil {
		state.CacheScore = *patch.CacheScore
	}
	if patch.SkipGeneration != nil {
		state.SkipGeneration = *patch.SkipGeneration
	}

	if patch.UserContext != nil {
		state.UserContext = patch.UserContext
	}

	return state
}

// mergeReducer adapts mergePatch to the signature graph.Reducer
// expects, so State can use graph.MapSchema's merge machinery if a
// caller wants a single-key reducer map instead of a custom merger.
func mergeReducer(current, next any) (any, error) {
	cur, ok := current.(State)
	if !ok {
		cur = State{}
	}
	patch, ok := next.(Patch)
	if !ok {
		if s, ok := next.(State); ok {
			return s, nil
		}
		return cur, nil
	}
	return mergePatch(cur, patch), nil
}
