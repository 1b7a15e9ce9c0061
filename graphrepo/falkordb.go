package graphrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/graphrag-pipeline/corepipeline/log"
)

// FalkorDBGraph runs Cypher-dialect queries against a FalkorDB/
// RedisGraph deployment using the raw GRAPH.QUERY command, the same
// wire protocol the teacher's rag/store/falkordb_internal.go speaks.
// Unlike the teacher, query text is built from named placeholders
// ($name) rather than fmt.Sprintf interpolation, and every identifier
// is passed through ValidateIdentifier before it reaches query text.
type FalkorDBGraph struct {
	conn      redis.UniversalClient
	graphName string
	logger    log.Logger
}

var _ Repository = (*FalkorDBGraph)(nil)

// NewFalkorDBGraph wraps an existing go-redis client bound to a named
// FalkorDB graph.
func NewFalkorDBGraph(conn redis.UniversalClient, graphName string, logger log.Logger) *FalkorDBGraph {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &FalkorDBGraph{conn: conn, graphName: graphName, logger: logger}
}

// rawQuery issues a GRAPH.QUERY command and parses the 2-or-3-element
// compact response the teacher's Graph.Query unpacks.
func (g *FalkorDBGraph) rawQuery(ctx context.Context, query string) ([]string, [][]any, error) {
	res, err := g.conn.Do(ctx, "GRAPH.QUERY", g.graphName, query, "--compact").Result()
	if err != nil {
		return nil, nil, fmt.Errorf("graphrepo: GRAPH.QUERY failed: %w", err)
	}

	r, ok := res.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("graphrepo: unexpected GRAPH.QUERY response type %T", res)
	}

	var header []string
	var rows [][]any

	switch len(r) {
	case 3:
		if h, ok := r[0].([]any); ok {
			header = make([]string, len(h))
			for i, v := range h {
				header[i] = fmt.Sprint(v)
			}
		}
		rows = parseRows(r[1])
	case 2:
		rows = parseRows(r[0])
	default:
		return nil, nil, fmt.Errorf("graphrepo: unexpected GRAPH.QUERY response length %d", len(r))
	}

	return header, rows, nil
}

func parseRows(v any) [][]any {
	rowsRaw, ok := v.([]any)
	if !ok {
		return nil
	}
	rows := make([][]any, len(rowsRaw))
	for i, row := range rowsRaw {
		if vals, ok := row.([]any); ok {
			rows[i] = vals
		}
	}
	return rows
}

// bindParameters renders $name placeholders as FalkorDB's CYPHER
// parameter-prelude form ("CYPHER name=value MATCH ...") since the
// go-redis GRAPH.QUERY command has no separate parameters slot.
func bindParameters(query string, parameters map[string]any) string {
	if len(parameters) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString("CYPHER ")
	for name, value := range parameters {
		fmt.Fprintf(&b, "%s=%s ", name, literal(value))
	}
	b.WriteString(query)
	return b.String()
}

func literal(v any) string {
	switch t := v.(type) {
	case string:
		return "\"" + strings.ReplaceAll(t, "\"", "\\\"") + "\""
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}

// FetchSchema issues two introspection calls, CALL db.labels() and
// CALL db.relationshipTypes(). Property names, indexes and constraints
// are not fetched: NodeProperties and RelationshipProperties stay empty
// and Indexes and Constraints stay nil.
func (g *FalkorDBGraph) FetchSchema(ctx context.Context) (SchemaInfo, error) {
	info := SchemaInfo{
		NodeProperties:         map[string][]string{},
		RelationshipProperties: map[string][]string{},
	}

	if _, rows, err := g.rawQuery(ctx, "CALL db.labels()"); err == nil {
		for _, row := range rows {
			if len(row) > 0 {
				info.Labels = append(info.Labels, fmt.Sprint(row[0]))
			}
		}
	} else {
		return info, err
	}

	if _, rows, err := g.rawQuery(ctx, "CALL db.relationshipTypes()"); err == nil {
		for _, row := range rows {
			if len(row) > 0 {
				info.RelationshipTypes = append(info.RelationshipTypes, fmt.Sprint(row[0]))
			}
		}
	} else {
		return info, err
	}

	return info, nil
}

// Execute runs query with parameters bound via bindParameters and
// serialises rows into the wire shape §6 specifies.
func (g *FalkorDBGraph) Execute(ctx context.Context, query string, parameters map[string]any) (QueryResult, error) {
	header, rows, err := g.rawQuery(ctx, bindParameters(query, parameters))
	if err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{Rows: make([]map[string]any, 0, len(rows))}
	for _, row := range rows {
		record := make(map[string]any, len(row))
		for i, val := range row {
			key := fmt.Sprintf("col%d", i)
			if header != nil && i < len(header) {
				key = header[i]
			}
			record[key] = decodeValue(val)
		}
		result.Rows = append(result.Rows, record)
	}
	return result, nil
}

// decodeValue passes scalars through unchanged; a real deployment
// would additionally decode FalkorDB's compact node/edge/path arrays
// here, matching the teacher's Node/Edge parsing in falkordb_internal.go.
func decodeValue(v any) any {
	return v
}

func (g *FalkorDBGraph) FindByExactName(ctx context.Context, label, name string) (Node, bool, error) {
	return g.findByQuery(ctx, label, "toLower(n.name) = toLower($name)", name)
}

func (g *FalkorDBGraph) FindByCollapsedWhitespace(ctx context.Context, label, name string) (Node, bool, error) {
	collapsed := strings.Join(strings.Fields(name), "")
	return g.findByQuery(ctx, label, "toLower(replace(n.name, ' ', '')) = toLower($name)", collapsed)
}

func (g *FalkorDBGraph) FindByStrippedSuffix(ctx context.Context, label, name string, suffixes []string) (Node, bool, error) {
	stem := name
	for _, suffix := range suffixes {
		if strings.HasSuffix(stem, suffix) {
			candidate := strings.TrimSuffix(stem, suffix)
			if strings.TrimSpace(candidate) != "" {
				stem = candidate
				break
			}
		}
	}
	if stem == name {
		return Node{}, false, nil
	}
	return g.findByQuery(ctx, label, "toLower(n.name) = toLower($name)", stem)
}

func (g *FalkorDBGraph) findByQuery(ctx context.Context, label, predicate, name string) (Node, bool, error) {
	if err := ValidateIdentifier(label); err != nil {
		return Node{}, false, err
	}
	query := fmt.Sprintf("MATCH (n:%s) WHERE %s RETURN n LIMIT 1", label, predicate)
	result, err := g.Execute(ctx, query, map[string]any{"name": name})
	if err != nil {
		return Node{}, false, err
	}
	if len(result.Rows) == 0 {
		return Node{}, false, nil
	}
	node, ok := result.Rows[0]["n"].(Node)
	if !ok {
		return Node{}, false, nil
	}
	return node, true, nil
}

func (g *FalkorDBGraph) VectorSearch(ctx context.Context, indexName string, embedding []float32, k int) ([]VectorMatch, error) {
	return nil, fmt.Errorf("graphrepo: vector search requires a deployment-specific index; use querycache for in-process fingerprinting")
}

func (g *FalkorDBGraph) MergeNode(ctx context.Context, label string, matchProps, setProps map[string]any) (Node, error) {
	if err := ValidateIdentifier(label); err != nil {
		return Node{}, err
	}
	for k := range matchProps {
		if err := ValidateIdentifier(k); err != nil {
			return Node{}, err
		}
	}
	for k := range setProps {
		if err := ValidateIdentifier(k); err != nil {
			return Node{}, err
		}
	}

	matchClause, params := propertyMatchClause("n", matchProps, "m_")
	setClause, setParams := propertySetClause("n", setProps, "s_")
	for k, v := range setParams {
		params[k] = v
	}

	query := fmt.Sprintf("MERGE (n:%s {%s}) ON CREATE SET %s ON MATCH SET %s RETURN n", label, matchClause, setClause, setClause)
	result, err := g.Execute(ctx, query, params)
	if err != nil {
		return Node{}, err
	}
	if len(result.Rows) == 0 {
		return Node{}, fmt.Errorf("graphrepo: MERGE returned no row")
	}
	node, _ := result.Rows[0]["n"].(Node)
	return node, nil
}

func (g *FalkorDBGraph) MergeRelationship(ctx context.Context, fromID, toID, relType string, props map[string]any) (Relationship, error) {
	if err := ValidateIdentifier(relType); err != nil {
		return Relationship{}, err
	}
	query := fmt.Sprintf(
		"MATCH (a), (b) WHERE id(a) = $fromID AND id(b) = $toID MERGE (a)-[r:%s]->(b) RETURN r",
		relType,
	)
	params := map[string]any{"fromID": fromID, "toID": toID}
	result, err := g.Execute(ctx, query, params)
	if err != nil {
		return Relationship{}, err
	}
	if len(result.Rows) == 0 {
		return Relationship{}, fmt.Errorf("graphrepo: MERGE relationship returned no row")
	}
	rel, _ := result.Rows[0]["r"].(Relationship)
	return rel, nil
}

func (g *FalkorDBGraph) CanonicalConcept(ctx context.Context, term, category string) (string, error) {
	query := "MATCH (c:Concept {category: $category})-[:SAME_AS]->(canon:Concept) WHERE toLower(c.name) = toLower($term) RETURN canon.name AS name LIMIT 1"
	result, err := g.Execute(ctx, query, map[string]any{"term": term, "category": category})
	if err != nil {
		return term, err
	}
	if len(result.Rows) == 0 {
		return term, nil
	}
	if name, ok := result.Rows[0]["name"].(string); ok {
		return name, nil
	}
	return term, nil
}

func (g *FalkorDBGraph) ConceptSynonyms(ctx context.Context, term, category string) ([]string, error) {
	canonical, err := g.CanonicalConcept(ctx, term, category)
	if err != nil {
		return nil, err
	}
	query := "MATCH (a:Concept)-[:SAME_AS]->(c:Concept {name: $canonical, category: $category}) RETURN a.name AS name"
	result, err := g.Execute(ctx, query, map[string]any{"canonical": canonical, "category": category})
	if err != nil {
		return nil, err
	}
	synonyms := []string{canonical}
	for _, row := range result.Rows {
		if name, ok := row["name"].(string); ok {
			synonyms = append(synonyms, name)
		}
	}
	return synonyms, nil
}

func (g *FalkorDBGraph) ConceptChildren(ctx context.Context, concept, category string) ([]string, error) {
	query := "MATCH (child:Concept)-[:IS_A]->(parent:Concept {name: $concept, category: $category}) RETURN child.name AS name"
	result, err := g.Execute(ctx, query, map[string]any{"concept": concept, "category": category})
	if err != nil {
		return nil, err
	}
	var children []string
	for _, row := range result.Rows {
		if name, ok := row["name"].(string); ok {
			children = append(children, name)
		}
	}
	return children, nil
}

func propertyMatchClause(alias string, props map[string]any, paramPrefix string) (string, map[string]any) {
	var parts []string
	params := map[string]any{}
	for k, v := range props {
		paramName := paramPrefix + k
		parts = append(parts, fmt.Sprintf("%s: $%s", k, paramName))
		params[paramName] = v
	}
	return strings.Join(parts, ", "), params
}

func propertySetClause(alias string, props map[string]any, paramPrefix string) (string, map[string]any) {
	var parts []string
	params := map[string]any{}
	for k, v := range props {
		paramName := paramPrefix + k
		parts = append(parts, fmt.Sprintf("%s.%s = $%s", alias, k, paramName))
		params[paramName] = v
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s.updatedAt = %s.updatedAt", alias, alias), params
	}
	return strings.Join(parts, ", "), params
}
