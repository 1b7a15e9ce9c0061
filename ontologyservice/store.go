package ontologyservice

import "context"

// ProposalStore is the persistence boundary ontologyservice's Service
// drives; PostgresStore is the production backend and MemoryStore is
// an in-process test double, mirroring Neo4jOntologyProposalRepository's
// method set one-for-one but over a row store instead of a graph.
type ProposalStore interface {
	// Save upserts by (term, category): an existing pending row has its
	// version/frequency bumped and the evidence question appended; no
	// match creates a fresh row at version 1. Mirrors
	// save_ontology_proposal's Cypher MERGE-with-UNION pattern.
	Save(ctx context.Context, p Proposal, evidenceQuestion string) (Proposal, error)

	// Create inserts an already-fully-formed proposal (the admin/chat
	// manual-creation path, which never merges into an existing row).
	Create(ctx context.Context, p Proposal) (Proposal, error)

	FindByTermCategory(ctx context.Context, term, category string) (Proposal, bool, error)
	GetByID(ctx context.Context, id string) (Proposal, bool, error)
	CurrentVersion(ctx context.Context, id string) (int, bool, error)

	// UpdateFrequency increments frequency and appends an evidence
	// question without touching status or version beyond the bump
	// update_proposal_frequency performs as a side effect.
	UpdateFrequency(ctx context.Context, id, question string) error

	// UpdateWithVersion applies updates under an optimistic-lock CAS:
	// the row transitions only if its current version equals
	// expectedVersion, bumping version by one. ok is false on a
	// version mismatch or missing row.
	UpdateWithVersion(ctx context.Context, id string, expectedVersion int, updates map[string]any) (Proposal, bool, error)

	// TryAutoApproveWithLimit atomically transitions a pending row to
	// auto_approved provided expectedVersion matches and fewer than
	// dailyLimit proposals have been auto-approved today (dailyLimit<=0
	// disables the daily-limit check entirely).
	TryAutoApproveWithLimit(ctx context.Context, id string, expectedVersion, dailyLimit int) (bool, error)

	ListPaginated(ctx context.Context, filter ListFilter) ([]Proposal, int, error)
	Stats(ctx context.Context) (Stats, error)

	// BatchUpdateStatus transitions every pending row named in ids to
	// newStatus; ids not currently pending (or not found) are reported
	// back as failedIDs rather than erroring the whole batch.
	BatchUpdateStatus(ctx context.Context, ids []string, newStatus ProposalStatus, reviewedBy, rejectionReason string) (succeeded []string, failedIDs []string, err error)

	MarkApplied(ctx context.Context, id string) error
}
