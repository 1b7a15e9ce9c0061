// Package ontologylearner is the background, fire-and-forget half of the
// adaptive ontology control loop: it classifies entities EntityResolver
// could not match and turns them into ontologyservice proposals, without
// blocking the pipeline run that discovered them.
package ontologylearner

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/graphrag-pipeline/corepipeline/config"
	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/log"
	"github.com/graphrag-pipeline/corepipeline/ontology"
	"github.com/graphrag-pipeline/corepipeline/ontologyservice"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

const (
	minTermLength = 2
	maxTermLength = 100
)

// Learner analyzes unresolved entities with an LLM and records the
// result as an ontologyservice proposal, auto-approving it when the
// confidence/frequency/daily-limit conditions all hold.
type Learner struct {
	Settings       config.AdaptiveOntologyConfig
	LLM            llmprovider.Provider
	Store          ontologyservice.ProposalStore
	Logger         log.Logger
	MaxInFlight    int
	AnalysisWindow time.Duration

	// Graph and Registry, when set, let an auto-approved proposal be
	// applied to the concept graph and the registry cache refreshed
	// immediately, the same way the chat-initiated foreground path
	// does in ontologyservice.Service.ApproveProposal. Both are
	// optional: a nil Graph degrades to recording the approval without
	// writing to the graph (matching Service.ApplyProposalToOntology's
	// own nil-Graph no-op), and a nil Registry skips the refresh.
	Graph    graphrepo.Repository
	Registry *ontology.Registry

	initOnce sync.Once
	sem      chan struct{}
}

// New builds a Learner from the enumerated settings. maxInFlight bounds
// how many analyses may run concurrently across every call to Process;
// additional entities are logged and dropped rather than queued, since
// this path must never create backpressure on the request pipeline.
func New(settings config.AdaptiveOntologyConfig, llm llmprovider.Provider, store ontologyservice.ProposalStore, logger log.Logger, maxInFlight int) *Learner {
	if maxInFlight <= 0 {
		maxInFlight = 32
	}
	l := &Learner{
		Settings:       settings,
		LLM:            llm,
		Store:          store,
		Logger:         logger,
		MaxInFlight:    maxInFlight,
		AnalysisWindow: time.Duration(settings.AnalysisTimeoutSeconds) * time.Second,
	}
	l.sem = make(chan struct{}, maxInFlight)
	return l
}

func (l *Learner) logger() log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.NewDefaultLogger(log.LogLevelInfo)
}

// Process filters unresolved entities to the valid ones and spawns one
// bounded, detached goroutine per entity. It returns immediately; the
// pipeline run that discovered these entities never waits on it.
func (l *Learner) Process(unresolved []pipeline.UnresolvedEntity) {
	if !l.Settings.Enabled || len(unresolved) == 0 {
		return
	}

	for _, u := range unresolved {
		if !ValidateTerm(u.Term) {
			continue
		}
		entity := u
		select {
		case l.sem <- struct{}{}:
		default:
			l.logger().Warn("ontologylearner: dropping %q: %d in-flight slots saturated", entity.Term, l.MaxInFlight)
			continue
		}

		go func() {
			defer func() { <-l.sem }()
			defer func() {
				if r := recover(); r != nil {
					l.logger().Error("ontologylearner: recovered panic processing %q: %v", entity.Term, r)
				}
			}()

			window := l.AnalysisWindow
			if window <= 0 {
				window = 8 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), window)
			defer cancel()
			l.processSingle(ctx, entity)
		}()
	}
}

// ValidateTerm mirrors the original learner's eligibility check: after
// NFC normalization the term must be within the configured length
// bounds, must not be pure digits, and must contain at least one letter.
func ValidateTerm(term string) bool {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return false
	}
	normalized := norm.NFC.String(trimmed)

	length := len([]rune(normalized))
	if length < minTermLength || length > maxTermLength {
		return false
	}

	allDigits := true
	hasLetter := false
	for _, r := range normalized {
		if !unicode.IsDigit(r) {
			allDigits = false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if allDigits {
		return false
	}
	return hasLetter
}

func (l *Learner) processSingle(ctx context.Context, entity pipeline.UnresolvedEntity) {
	term := strings.TrimSpace(entity.Term)
	category := entity.Category
	if category == "" {
		category = "skills"
	}
	question := entity.Question

	existing, found, err := l.Store.FindByTermCategory(ctx, term, category)
	if err != nil {
		l.logger().Warn("ontologylearner: lookup failed for %q: %v", term, err)
		return
	}

	if found {
		if err := l.Store.UpdateFrequency(ctx, existing.ID, question); err != nil {
			l.logger().Warn("ontologylearner: frequency update failed for %q: %v", term, err)
			return
		}
		existing.Frequency++
		l.logger().Debug("ontologylearner: updated existing proposal for %q (freq=%d)", term, existing.Frequency)
		l.checkAndAutoApprove(ctx, existing)
		return
	}

	analysis, err := l.LLM.OntologyAnalysis(ctx, term, category, question)
	if err != nil {
		l.logger().Warn("ontologylearner: LLM analysis failed for %q: %v", term, err)
		return
	}

	proposalType, ok := parseProposalType(analysis.Type)
	if !ok {
		l.logger().Warn("ontologylearner: invalid proposal type from LLM: %q", analysis.Type)
		return
	}

	confidence := clampConfidence(analysis.Confidence)

	proposal := ontologyservice.Proposal{
		ID:                 uuid.NewString(),
		Type:               proposalType,
		Term:               term,
		Category:           category,
		SuggestedAction:    analysis.Action,
		SuggestedParent:    analysis.Parent,
		SuggestedCanonical: analysis.Canonical,
		Frequency:          1,
		Confidence:         confidence,
		Status:             ontologyservice.StatusPending,
		Source:             ontologyservice.SourceBackground,
	}
	if question != "" {
		proposal.EvidenceQuestions = []string{question}
	}

	saved, err := l.Store.Create(ctx, proposal)
	if err != nil {
		l.logger().Warn("ontologylearner: failed to save proposal for %q: %v", term, err)
		return
	}

	l.logger().Info("ontologylearner: created proposal for %q: type=%s confidence=%s",
		term, saved.Type, strconv.FormatFloat(saved.Confidence, 'f', 2, 64))

	l.checkAndAutoApprove(ctx, saved)
}

func (l *Learner) checkAndAutoApprove(ctx context.Context, p ontologyservice.Proposal) {
	if !l.Settings.AutoApproveEnabled {
		return
	}
	if p.Status != ontologyservice.StatusPending {
		return
	}
	if !l.Settings.AutoApproveTypes[string(p.Type)] {
		return
	}
	if p.Confidence < l.Settings.AutoApproveConfidence {
		return
	}
	if p.Frequency < l.Settings.AutoApproveMinFrequency {
		return
	}

	ok, err := l.Store.TryAutoApproveWithLimit(ctx, p.ID, p.Version, l.Settings.AutoApproveDailyLimit)
	if err != nil {
		l.logger().Warn("ontologylearner: auto-approve check failed for %q: %v", p.Term, err)
		return
	}
	if !ok {
		l.logger().Debug("ontologylearner: auto-approve skipped for %q: limit reached or concurrent modification", p.Term)
		return
	}
	l.logger().Info("ontologylearner: auto-approved %q (type=%s freq=%d)", p.Term, p.Type, p.Frequency)

	l.applyAutoApproval(ctx, p.ID, p.Term)
}

// applyAutoApproval mirrors ApproveProposal's post-approval step for
// the background path: TryAutoApproveWithLimit only flips Status, so
// the current (approved) proposal is re-fetched before being applied
// to the graph and the registry refreshed, exactly as the
// chat-initiated foreground path does in
// ontologyservice.Service.ApproveProposal.
func (l *Learner) applyAutoApproval(ctx context.Context, id, term string) {
	approved, found, err := l.Store.GetByID(ctx, id)
	if err != nil {
		l.logger().Warn("ontologylearner: re-fetch after auto-approve failed for %q: %v", term, err)
		return
	}
	if !found {
		l.logger().Warn("ontologylearner: auto-approved proposal %q vanished before apply", term)
		return
	}

	svc := &ontologyservice.Service{Store: l.Store, Graph: l.Graph, Registry: l.Registry}
	applied, err := svc.ApplyProposalToOntology(ctx, approved)
	if err != nil {
		l.logger().Warn("ontologylearner: failed to apply auto-approved proposal %q: %v", term, err)
		return
	}
	if !applied {
		return
	}

	if err := l.Store.MarkApplied(ctx, id); err != nil {
		l.logger().Warn("ontologylearner: failed to mark %q applied: %v", term, err)
	}
	if l.Registry != nil {
		if err := l.Registry.Refresh(ctx); err != nil {
			l.logger().Warn("ontologylearner: registry refresh failed after auto-approving %q: %v", term, err)
		}
	}
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseProposalType(raw string) (ontologyservice.ProposalType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch normalized {
	case "NEW_CONCEPT", "CONCEPT":
		return ontologyservice.ProposalTypeNewConcept, true
	case "NEW_SYNONYM", "SYNONYM":
		return ontologyservice.ProposalTypeNewSynonym, true
	case "NEW_RELATION", "RELATION":
		return ontologyservice.ProposalTypeNewRelation, true
	default:
		return "", false
	}
}
