// Package ontologyservice is the transactional CRUD and state-machine
// boundary over ontology proposals: create, list, approve, reject,
// batch-approve/reject, and apply an approved proposal's change to the
// live concept graph. Grounded on
// original_source/src/services/ontology_service.py and
// original_source/src/repositories/neo4j_ontology_proposal_repository.py,
// adapted from a Neo4j node store to a Postgres row store per §4.13:
// optimistic locking moves from a Cypher `WHERE p.version = $expected`
// SET to a pgx `UPDATE ... WHERE id = $1 AND version = $2 RETURNING ...`.
package ontologyservice

import "time"

// ProposalType is the closed vocabulary §4.12/§4.13 define for what an
// approved proposal changes in the concept graph.
type ProposalType string

const (
	ProposalTypeNewConcept  ProposalType = "NEW_CONCEPT"
	ProposalTypeNewSynonym  ProposalType = "NEW_SYNONYM"
	ProposalTypeNewRelation ProposalType = "NEW_RELATION"
)

// ProposalStatus is the state-machine's closed vocabulary: pending is
// the only status approve/reject may transition away from.
type ProposalStatus string

const (
	StatusPending      ProposalStatus = "pending"
	StatusApproved     ProposalStatus = "approved"
	StatusAutoApproved ProposalStatus = "auto_approved"
	StatusRejected     ProposalStatus = "rejected"
)

// ProposalSource records who/what originated the proposal.
type ProposalSource string

const (
	SourceChat       ProposalSource = "chat"
	SourceBackground ProposalSource = "background"
	SourceAdmin      ProposalSource = "admin"
)

// Proposal is an OntologyProposal row: a pending or resolved change to
// the concept graph, carrying the optimistic-lock Version the service
// checks on every mutation.
type Proposal struct {
	ID                    string
	Version               int
	Type                  ProposalType
	Term                  string
	Category              string
	SuggestedAction       string
	SuggestedParent       string
	SuggestedCanonical    string
	SuggestedRelationType string
	EvidenceQuestions     []string
	Frequency             int
	Confidence            float64
	Status                ProposalStatus
	Source                ProposalSource
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ReviewedAt            *time.Time
	ReviewedBy            string
	RejectionReason       string
	AppliedAt             *time.Time
}

// BatchResult is the outcome of a batch approve/reject call, ported
// directly from the original's BatchResult dataclass.
type BatchResult struct {
	SuccessCount int
	FailedCount  int
	FailedIDs    []string
	Errors       []BatchError
}

// BatchError names one proposal ID that a batch operation could not
// transition, and why.
type BatchError struct {
	ID      string
	Message string
}

// ListFilter narrows ListPaginated's result set; a zero-value field
// means "no filter" on that dimension, matching the original's
// None-means-unfiltered convention.
type ListFilter struct {
	Status     ProposalStatus
	Type       ProposalType
	Source     ProposalSource
	Category   string
	TermSearch string
	SortBy     string // created_at | frequency | confidence | updated_at
	SortOrder  string // asc | desc
	Page       int
	PageSize   int
}

// Stats is the aggregate §4.13 reporting surface.
type Stats struct {
	TotalProposals     int
	PendingCount       int
	ApprovedCount      int
	AutoApprovedCount  int
	RejectedCount      int
	CategoryDist       map[string]int
	TopUnresolvedTerms []TermFrequency
}

// TermFrequency is one row of Stats.TopUnresolvedTerms.
type TermFrequency struct {
	Term       string
	Category   string
	Frequency  int
	Confidence float64
}
