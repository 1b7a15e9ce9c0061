package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// CommunitySummarizer bypasses entity resolution and query generation
// entirely for global_analysis questions: it runs three fixed
// aggregation queries, feeds their union to the LLM as free-text
// context, and synthesises a small (Department)-[DEPT_HAS_SKILL]->
// (Skill) graph for callers that want to render it.
type CommunitySummarizer struct {
	Repo  graphrepo.Repository
	LLM   llmprovider.Provider
	Cache CommunityCache
	TopN  int
}

// CommunityCache is the 24h-TTL, Jaccard-keyed result cache §4.11
// describes, backed by a graph node in production.
type CommunityCache interface {
	Lookup(ctx context.Context, question string) (string, bool, error)
	Store(ctx context.Context, question, summary string) error
}

func (n *CommunitySummarizer) Name() string { return "community_summarizer" }

func (n *CommunitySummarizer) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if n.Cache != nil {
		if cached, ok, err := n.Cache.Lookup(ctx, state.Question); err == nil && ok {
			return pipeline.Patch{
				Response:      &cached,
				ExecutionPath: []string{n.Name() + "_cached"},
			}, nil
		}
	}

	topN := n.TopN
	if topN <= 0 {
		topN = 10
	}

	byDept, err := n.Repo.Execute(ctx, "MATCH (d:Department)<-[:BELONGS_TO]-(p:Person) RETURN d.name AS department, count(p) AS headcount", nil)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{Error: &errMsg, ExecutionPath: []string{n.Name() + "_error"}}, nil
	}

	byProjectStatus, err := n.Repo.Execute(ctx, "MATCH (pr:Project) RETURN pr.status AS status, count(pr) AS total", nil)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{Error: &errMsg, ExecutionPath: []string{n.Name() + "_error"}}, nil
	}

	topSkills, err := n.Repo.Execute(ctx, fmt.Sprintf("MATCH (s:Skill)<-[:HAS_SKILL]-(p:Person) RETURN s.name AS skill, count(p) AS holders ORDER BY holders DESC LIMIT %d", topN), nil)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{Error: &errMsg, ExecutionPath: []string{n.Name() + "_error"}}, nil
	}

	context := buildCommunityContext(byDept.Rows, byProjectStatus.Rows, topSkills.Rows)

	summary, err := n.LLM.CommunitySummary(ctx, context, state.Question)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{Error: &errMsg, ExecutionPath: []string{n.Name() + "_error"}}, nil
	}

	n.synthesizeDeptSkillEdges(ctx, byDept.Rows, topSkills.Rows)

	if n.Cache != nil {
		_ = n.Cache.Store(ctx, state.Question, summary)
	}

	return pipeline.Patch{
		Response:      &summary,
		ExecutionPath: []string{n.Name()},
	}, nil
}

func buildCommunityContext(byDept, byStatus, topSkills []map[string]any) string {
	var b strings.Builder
	b.WriteString("Department headcounts:\n")
	for _, row := range byDept {
		fmt.Fprintf(&b, "- %v: %v\n", row["department"], row["headcount"])
	}
	b.WriteString("Project status distribution:\n")
	for _, row := range byStatus {
		fmt.Fprintf(&b, "- %v: %v\n", row["status"], row["total"])
	}
	b.WriteString("Top skills:\n")
	for _, row := range topSkills {
		fmt.Fprintf(&b, "- %v: %v holders\n", row["skill"], row["holders"])
	}
	return b.String()
}

// synthesizeDeptSkillEdges writes a small auxiliary graph a UI can
// render, best-effort: failures here don't affect the response.
func (n *CommunitySummarizer) synthesizeDeptSkillEdges(ctx context.Context, byDept, topSkills []map[string]any) {
	for _, d := range byDept {
		deptName, _ := d["department"].(string)
		if deptName == "" {
			continue
		}
		deptNode, err := n.Repo.MergeNode(ctx, "Department", map[string]any{"name": deptName}, nil)
		if err != nil {
			continue
		}
		for _, s := range topSkills {
			skillName, _ := s["skill"].(string)
			if skillName == "" {
				continue
			}
			skillNode, err := n.Repo.MergeNode(ctx, "Skill", map[string]any{"name": skillName}, nil)
			if err != nil {
				continue
			}
			_, _ = n.Repo.MergeRelationship(ctx, deptNode.ID, skillNode.ID, "DEPT_HAS_SKILL", nil)
		}
	}
}
