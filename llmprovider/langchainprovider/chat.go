package langchainprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
)

const classifySystemPrompt = `You are an intent classifier and entity extractor for a company knowledge graph chatbot.
Given the user's question, reply with JSON only, no other text, matching exactly this shape:
{"intent": string, "confidence": number between 0 and 1, "entities": [{"type": string, "value": string, "normalized": string}]}
intent is one of: person_lookup, org_lookup, skill_lookup, project_lookup, relationship_query, community_summary, general_question, out_of_scope, unclear.`

func (p *Provider) ClassifyIntentAndExtract(ctx context.Context, question string, tier llmprovider.Tier) (llmprovider.IntentResult, error) {
	var decoded struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
		Entities   []struct {
			Type       string `json:"type"`
			Value      string `json:"value"`
			Normalized string `json:"normalized"`
		} `json:"entities"`
	}
	if err := jsonComplete(ctx, p.modelFor(tier), classifySystemPrompt, question, &decoded); err != nil {
		return llmprovider.IntentResult{}, err
	}

	entities := make([]llmprovider.ExtractedEntity, 0, len(decoded.Entities))
	for _, e := range decoded.Entities {
		entities = append(entities, llmprovider.ExtractedEntity{Type: e.Type, Value: e.Value, Normalized: e.Normalized})
	}
	return llmprovider.IntentResult{Intent: decoded.Intent, Confidence: decoded.Confidence, Entities: entities}, nil
}

const decomposeSystemPrompt = `You plan multi-hop graph traversals for a company knowledge graph.
Given the user's question, reply with JSON only, no other text, matching exactly this shape:
{"is_multi_hop": bool, "hop_count": int, "hops": [{"description": string, "relationship": string, "direction": string, "filter": string}], "final_return": string, "explanation": string}
direction is one of: outgoing, incoming, both. If the question is single-hop, set is_multi_hop to false, hop_count to 1, and hops to a single-element array.`

func (p *Provider) DecomposeQuery(ctx context.Context, question string, tier llmprovider.Tier) (llmprovider.DecomposeResult, error) {
	var decoded struct {
		IsMultiHop bool `json:"is_multi_hop"`
		HopCount   int  `json:"hop_count"`
		Hops       []struct {
			Description  string `json:"description"`
			Relationship string `json:"relationship"`
			Direction    string `json:"direction"`
			Filter       string `json:"filter"`
		} `json:"hops"`
		FinalReturn string `json:"final_return"`
		Explanation string `json:"explanation"`
	}
	if err := jsonComplete(ctx, p.modelFor(tier), decomposeSystemPrompt, question, &decoded); err != nil {
		return llmprovider.DecomposeResult{}, err
	}

	hops := make([]llmprovider.QueryHop, 0, len(decoded.Hops))
	for _, h := range decoded.Hops {
		hops = append(hops, llmprovider.QueryHop{
			Description:  h.Description,
			Relationship: h.Relationship,
			Direction:    h.Direction,
			Filter:       h.Filter,
		})
	}
	return llmprovider.DecomposeResult{
		IsMultiHop:  decoded.IsMultiHop,
		HopCount:    decoded.HopCount,
		Hops:        hops,
		FinalReturn: decoded.FinalReturn,
		Explanation: decoded.Explanation,
	}, nil
}

const cypherSystemPrompt = `You translate a question about a company knowledge graph into a single read-only Cypher query.
The graph schema, the extracted entities, and (if present) a multi-hop plan are given as JSON in the user message.
Always use named placeholders ($name) for values; never interpolate values into the query text.
Reply with JSON only, no other text, matching exactly this shape: {"query": string, "parameters": object, "explanation": string}`

func (p *Provider) GenerateCypher(ctx context.Context, question string, schema any, entities map[string][]string, plan *llmprovider.DecomposeResult, tier llmprovider.Tier) (llmprovider.CypherResult, error) {
	userPayload, err := json.Marshal(struct {
		Question string                       `json:"question"`
		Schema   any                          `json:"schema"`
		Entities map[string][]string          `json:"entities"`
		Plan     *llmprovider.DecomposeResult `json:"plan,omitempty"`
	}{question, schema, entities, plan})
	if err != nil {
		return llmprovider.CypherResult{}, fmt.Errorf("langchainprovider: marshaling cypher prompt: %w", err)
	}

	var decoded struct {
		Query       string         `json:"query"`
		Parameters  map[string]any `json:"parameters"`
		Explanation string         `json:"explanation"`
	}
	if err := jsonComplete(ctx, p.modelFor(tier), cypherSystemPrompt, string(userPayload), &decoded); err != nil {
		return llmprovider.CypherResult{}, err
	}
	return llmprovider.CypherResult{Query: decoded.Query, Parameters: decoded.Parameters, Explanation: decoded.Explanation}, nil
}

const ontologyAnalysisSystemPrompt = `You help maintain an ontology for a company knowledge graph.
An entity mentioned in a user question could not be resolved against the graph or the known ontology terms.
Given the unresolved term, its category, and the question it appeared in, decide what ontology update would
resolve it. Reply with JSON only, no other text, matching exactly this shape:
{"type": "NEW_CONCEPT"|"NEW_SYNONYM"|"NEW_RELATION", "action": string, "parent": string, "canonical": string, "confidence": number between 0 and 1}
parent is the suggested parent concept for NEW_CONCEPT; canonical is the suggested canonical term for NEW_SYNONYM; both may be empty otherwise.`

func (p *Provider) OntologyAnalysis(ctx context.Context, term, category, question string) (llmprovider.OntologyAnalysis, error) {
	userPayload, err := json.Marshal(struct {
		Term     string `json:"term"`
		Category string `json:"category"`
		Question string `json:"question"`
	}{term, category, question})
	if err != nil {
		return llmprovider.OntologyAnalysis{}, fmt.Errorf("langchainprovider: marshaling ontology analysis prompt: %w", err)
	}

	var decoded struct {
		Type       string  `json:"type"`
		Action     string  `json:"action"`
		Parent     string  `json:"parent"`
		Canonical  string  `json:"canonical"`
		Confidence float64 `json:"confidence"`
	}
	if err := jsonComplete(ctx, p.LightModel, ontologyAnalysisSystemPrompt, string(userPayload), &decoded); err != nil {
		return llmprovider.OntologyAnalysis{}, err
	}
	return llmprovider.OntologyAnalysis{
		Type:       decoded.Type,
		Action:     decoded.Action,
		Parent:     decoded.Parent,
		Canonical:  decoded.Canonical,
		Confidence: decoded.Confidence,
	}, nil
}

const ontologyUpdateParserSystemPrompt = `A user is chatting with a company knowledge graph assistant and has asked to update its ontology directly.
Parse their request. Reply with JSON only, no other text, matching exactly this shape:
{"action": "add_concept"|"add_synonym"|"add_relation", "term": string, "category": string, "target": string, "relation_type": string, "confidence": number between 0 and 1, "reasoning": string}
target is the parent concept for add_concept, the canonical term for add_synonym, or the related term for add_relation.`

func (p *Provider) OntologyUpdateParser(ctx context.Context, question string) (llmprovider.OntologyUpdateRequest, error) {
	var decoded struct {
		Action       string  `json:"action"`
		Term         string  `json:"term"`
		Category     string  `json:"category"`
		Target       string  `json:"target"`
		RelationType string  `json:"relation_type"`
		Confidence   float64 `json:"confidence"`
		Reasoning    string  `json:"reasoning"`
	}
	if err := jsonComplete(ctx, p.LightModel, ontologyUpdateParserSystemPrompt, question, &decoded); err != nil {
		return llmprovider.OntologyUpdateRequest{}, err
	}
	return llmprovider.OntologyUpdateRequest{
		Action:       decoded.Action,
		Term:         decoded.Term,
		Category:     decoded.Category,
		Target:       decoded.Target,
		RelationType: decoded.RelationType,
		Confidence:   decoded.Confidence,
		Reasoning:    decoded.Reasoning,
	}, nil
}
