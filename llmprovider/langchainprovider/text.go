package langchainprovider

import (
	"context"
	"encoding/json"
	"fmt"
)

const responseSystemPrompt = `You answer questions about a company knowledge graph for an end user.
You are given the original question, the Cypher query that was executed, and the rows it returned as JSON.
Write a concise, natural-language answer grounded only in the given rows. If the rows are empty, say so plainly.`

func (p *Provider) GenerateResponse(ctx context.Context, question string, results []map[string]any, cypher string) (string, error) {
	rows, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("langchainprovider: marshaling result rows: %w", err)
	}
	user := fmt.Sprintf("Question: %s\nCypher: %s\nRows: %s", question, cypher, rows)
	return complete(ctx, p.HeavyModel, responseSystemPrompt, user)
}

const clarificationSystemPrompt = `A user's question referenced one or more terms that could not be resolved against the knowledge graph or its ontology.
Write one short, friendly clarifying question asking the user to rephrase or confirm what they meant by the unresolved terms.`

func (p *Provider) GenerateClarification(ctx context.Context, question string, unresolved []string) (string, error) {
	user := fmt.Sprintf("Question: %s\nUnresolved terms: %v", question, unresolved)
	return complete(ctx, p.LightModel, clarificationSystemPrompt, user)
}

const communitySummarySystemPrompt = `You summarize a community/cluster of a company knowledge graph for a user question.
You are given aggregated graph context describing the community's members and structure. Write a concise summary
that answers the user's question using only the given context.`

func (p *Provider) CommunitySummary(ctx context.Context, graphContext, question string) (string, error) {
	user := fmt.Sprintf("Question: %s\nContext: %s", question, graphContext)
	return complete(ctx, p.HeavyModel, communitySummarySystemPrompt, user)
}
