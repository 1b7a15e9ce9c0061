// Package corepipeline is a Graph-RAG query pipeline: it answers
// natural-language questions over a company knowledge graph by
// classifying intent, expanding against an adaptive ontology,
// resolving entities, decomposing multi-hop questions, generating and
// executing parameterised Cypher, and summarizing the result — with a
// background learner, switched on by config's AdaptiveOntology.Enabled
// (off by default), that proposes ontology updates for terms the
// pipeline couldn't resolve.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/graphrag-pipeline/corepipeline
//
// Basic example, wiring an OpenAI-backed pipeline against an in-memory
// graph for local development:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/graphrag-pipeline/corepipeline/graphrepo"
//		"github.com/graphrag-pipeline/corepipeline/llmprovider/openaiprovider"
//		"github.com/graphrag-pipeline/corepipeline/pipeline"
//		"github.com/graphrag-pipeline/corepipeline/pipeline/nodes"
//	)
//
//	func main() {
//		llm, err := openaiprovider.New()
//		if err != nil {
//			panic(err)
//		}
//		graphRepo := graphrepo.NewMemoryGraph()
//
//		p, err := pipeline.New(pipeline.Nodes{
//			IntentClassifier: &nodes.IntentClassifier{LLM: llm},
//			EntityExtractor:  &nodes.EntityExtractor{},
//			// ...remaining nodes constructed the same way, each wired
//			// to whichever of llm/graphRepo/ontology it needs.
//		})
//		if err != nil {
//			panic(err)
//		}
//
//		result, err := p.Run(context.Background(), "Who manages the Platform team?", "session-1", "thread-1")
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(result.Response)
//	}
//
// # Package Structure
//
// pipeline/
// The typed DAG wiring of every node in the query pipeline (intent
// classification, concept expansion, entity resolution, query
// decomposition, Cypher generation/execution, response generation,
// community summarization, and the ontology-update chat path), built
// on the graph package's generics-based state graph engine.
//
// pipeline/nodes/
// One file per DAG node, each a thin adapter between PipelineState and
// an external collaborator (llmprovider.Provider, graphrepo.Repository,
// ontology.Registry, querycache/communitycache).
//
// graph/
// The underlying typed DAG construction and execution engine: nodes,
// edges, conditional routing, parallel fan-out with panic isolation,
// and streaming execution events. Unchanged from its original design —
// the pipeline package is simply a particular graph built on top of it.
//
// llmprovider/
// The LLM operations the pipeline calls (classification, decomposition,
// Cypher generation, response/clarification/summary generation, ontology
// analysis and update parsing, embeddings), with three backends:
// openaiprovider (sashabaranov/go-openai), langchainprovider (any
// tmc/langchaingo llms.Model/embeddings.Embedder), and ernieprovider
// (Baidu Qianfan, via the bespoke llms/ernie HTTP client).
//
// graphrepo/
// The property-graph facade the pipeline queries: FalkorDBGraph (Cypher
// over the Redis wire protocol, since FalkorDB speaks RedisGraph) and
// MemoryGraph, an in-process fallback and test double.
//
// ontology/, ontologyservice/, ontologylearner/
// The adaptive ontology control loop: a registry/loader for the current
// concept hierarchy, a service for proposal CRUD and approval, and a
// background, fire-and-forget learner that analyzes terms the pipeline
// couldn't resolve and proposes (or auto-approves) ontology updates.
//
// querycache/, communitycache/
// Caches for, respectively, generated Cypher queries (keyed by the
// question's embedding) and community summaries. querycache has an
// in-memory implementation only; communitycache has an in-memory tier
// for tests/single-instance deployments and a graph-backed tier.
//
// config/
// Environment-driven configuration (GRAPHRAG_* variables) with a
// functional-options constructor for call-site overrides.
//
// pipelineerr/
// The domain error taxonomy (validation, authn/authz, connectivity,
// rate limit, response shape, query execution, not found, conflict,
// invalid state) that every node-level failure collapses into.
//
// log/
// Simple logging utilities used throughout the pipeline and its nodes.
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//
// # Configuration
//
// The pipeline reads GRAPHRAG_*-prefixed environment variables (see
// config.Load), and each LLM backend reads its own vendor credential
// (OPENAI_API_KEY, ERNIE_API_KEY).
//
// # License
//
// This project is licensed under the MIT License - see the LICENSE file for details.
package corepipeline
