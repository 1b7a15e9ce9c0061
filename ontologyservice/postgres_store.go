package ontologyservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool is the slice of *pgxpool.Pool the store needs, narrowed so
// tests can substitute pgxmock.Pool, mirroring store/postgres's DBPool.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements ProposalStore over a single `ontology_proposals`
// table, using `UPDATE ... WHERE id = $1 AND version = $2 RETURNING ...` as the
// optimistic-lock CAS in place of the original's Cypher
// `WHERE p.version = $expected_version` predicate.
type PostgresStore struct {
	pool      DBPool
	tableName string
}

var _ ProposalStore = (*PostgresStore)(nil)

// PostgresOptions configures a PostgresStore's connection.
type PostgresOptions struct {
	ConnString string
	TableName  string // default "ontology_proposals"
}

// NewPostgresStore opens a pool and returns a ready PostgresStore.
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("ontologyservice: unable to create connection pool: %w", err)
	}
	table := opts.TableName
	if table == "" {
		table = "ontology_proposals"
	}
	return &PostgresStore{pool: pool, tableName: table}, nil
}

// NewPostgresStoreWithPool wires an existing pool (or pgxmock.Pool in
// tests) directly, bypassing connection-string parsing.
func NewPostgresStoreWithPool(pool DBPool, tableName string) *PostgresStore {
	if tableName == "" {
		tableName = "ontology_proposals"
	}
	return &PostgresStore{pool: pool, tableName: tableName}
}

// InitSchema creates the backing table if it doesn't already exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			proposal_type TEXT NOT NULL,
			term TEXT NOT NULL,
			category TEXT NOT NULL,
			suggested_action TEXT,
			suggested_parent TEXT,
			suggested_canonical TEXT,
			suggested_relation_type TEXT,
			evidence_questions TEXT[],
			frequency INTEGER NOT NULL DEFAULT 1,
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			reviewed_at TIMESTAMPTZ,
			reviewed_by TEXT,
			rejection_reason TEXT,
			applied_at TIMESTAMPTZ
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_term_category ON %s (lower(term), lower(category));
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ontologyservice: failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanRow(row pgx.Row) (Proposal, error) {
	var p Proposal
	var proposalType, status, source string
	err := row.Scan(
		&p.ID, &p.Version, &proposalType, &p.Term, &p.Category,
		&p.SuggestedAction, &p.SuggestedParent, &p.SuggestedCanonical, &p.SuggestedRelationType,
		&p.EvidenceQuestions, &p.Frequency, &p.Confidence, &status, &source,
		&p.CreatedAt, &p.UpdatedAt, &p.ReviewedAt, &p.ReviewedBy, &p.RejectionReason, &p.AppliedAt,
	)
	if err != nil {
		return Proposal{}, err
	}
	p.Type = ProposalType(proposalType)
	p.Status = ProposalStatus(status)
	p.Source = ProposalSource(source)
	return p, nil
}

const selectColumns = `id, version, proposal_type, term, category, suggested_action,
	suggested_parent, suggested_canonical, suggested_relation_type, evidence_questions,
	frequency, confidence, status, source, created_at, updated_at, reviewed_at,
	reviewed_by, rejection_reason, applied_at`

func (s *PostgresStore) Save(ctx context.Context, p Proposal, evidenceQuestion string) (Proposal, error) {
	existing, ok, err := s.FindByTermCategory(ctx, p.Term, p.Category)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: save lookup: %w", err)
	}
	if !ok {
		if evidenceQuestion != "" && !contains(p.EvidenceQuestions, evidenceQuestion) {
			p.EvidenceQuestions = append(p.EvidenceQuestions, evidenceQuestion)
		}
		if p.Frequency < 1 {
			p.Frequency = 1
		}
		return s.Create(ctx, p)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			version = version + 1,
			frequency = frequency + 1,
			evidence_questions = CASE
				WHEN $2 <> '' AND NOT ($2 = ANY(COALESCE(evidence_questions, ARRAY[]::TEXT[])))
				THEN COALESCE(evidence_questions, ARRAY[]::TEXT[]) || $2
				ELSE COALESCE(evidence_questions, ARRAY[]::TEXT[])
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, s.tableName, selectColumns)

	row := s.pool.QueryRow(ctx, query, existing.ID, evidenceQuestion)
	return s.scanRow(row)
}

func (s *PostgresStore) Create(ctx context.Context, p Proposal) (Proposal, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, version, proposal_type, term, category, suggested_action,
			suggested_parent, suggested_canonical, suggested_relation_type,
			evidence_questions, frequency, confidence, status, source
		) VALUES ($1, 1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, s.tableName, selectColumns)

	row := s.pool.QueryRow(ctx, query,
		p.ID, string(p.Type), p.Term, p.Category, p.SuggestedAction,
		p.SuggestedParent, p.SuggestedCanonical, p.SuggestedRelationType,
		p.EvidenceQuestions, p.Frequency, p.Confidence, string(p.Status), string(p.Source),
	)
	proposal, err := s.scanRow(row)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: create proposal: %w", err)
	}
	return proposal, nil
}

func (s *PostgresStore) FindByTermCategory(ctx context.Context, term, category string) (Proposal, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(term) = lower($1) AND lower(category) = lower($2)`, selectColumns, s.tableName)
	row := s.pool.QueryRow(ctx, query, term, category)
	p, err := s.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, false, nil
	}
	if err != nil {
		return Proposal{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Proposal, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns, s.tableName)
	row := s.pool.QueryRow(ctx, query, id)
	p, err := s.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, false, nil
	}
	if err != nil {
		return Proposal{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) CurrentVersion(ctx context.Context, id string) (int, bool, error) {
	query := fmt.Sprintf(`SELECT version FROM %s WHERE id = $1`, s.tableName)
	var version int
	err := s.pool.QueryRow(ctx, query, id).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func (s *PostgresStore) UpdateFrequency(ctx context.Context, id, question string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			frequency = frequency + 1,
			evidence_questions = CASE
				WHEN $2 <> '' AND NOT ($2 = ANY(COALESCE(evidence_questions, ARRAY[]::TEXT[])))
				THEN COALESCE(evidence_questions, ARRAY[]::TEXT[]) || $2
				ELSE COALESCE(evidence_questions, ARRAY[]::TEXT[])
			END,
			updated_at = now()
		WHERE id = $1
	`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id, question)
	if err != nil {
		return fmt.Errorf("ontologyservice: update frequency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ontologyservice: update frequency: %w", pgx.ErrNoRows)
	}
	return nil
}

// allowedUpdateFields whitelists which columns UpdateWithVersion may
// set, matching update_proposal_with_version's SECURITY comment.
var allowedUpdateFields = map[string]bool{
	"suggested_parent":    true,
	"suggested_canonical": true,
	"category":            true,
	"suggested_action":    true,
	"status":              true,
	"reviewed_at":         true,
	"reviewed_by":         true,
	"rejection_reason":    true,
}

func (s *PostgresStore) UpdateWithVersion(ctx context.Context, id string, expectedVersion int, updates map[string]any) (Proposal, bool, error) {
	var setClauses []string
	args := []any{id, expectedVersion}
	i := 3
	for field, value := range updates {
		if !allowedUpdateFields[field] {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, i))
		args = append(args, value)
		i++
	}
	if len(setClauses) == 0 {
		p, ok, err := s.GetByID(ctx, id)
		return p, ok, err
	}
	setClauses = append(setClauses, "version = version + 1", "updated_at = now()")

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $1 AND version = $2
		RETURNING %s
	`, s.tableName, strings.Join(setClauses, ", "), selectColumns)

	row := s.pool.QueryRow(ctx, query, args...)
	p, err := s.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, false, nil
	}
	if err != nil {
		return Proposal{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) TryAutoApproveWithLimit(ctx context.Context, id string, expectedVersion, dailyLimit int) (bool, error) {
	var query string
	var args []any
	if dailyLimit <= 0 {
		query = fmt.Sprintf(`
			UPDATE %s SET status = $3, version = version + 1,
				reviewed_at = now(), reviewed_by = 'system', updated_at = now()
			WHERE id = $1 AND version = $2 AND status = 'pending'
			RETURNING id
		`, s.tableName)
		args = []any{id, expectedVersion, string(StatusAutoApproved)}
	} else {
		query = fmt.Sprintf(`
			WITH today_count AS (
				SELECT count(*) AS n FROM %s
				WHERE status = $4 AND reviewed_at::date = now()::date
			)
			UPDATE %s SET status = $3, version = version + 1,
				reviewed_at = now(), reviewed_by = 'system', updated_at = now()
			WHERE id = $1 AND version = $2 AND status = 'pending'
			  AND (SELECT n FROM today_count) < $5
			RETURNING id
		`, s.tableName, s.tableName)
		args = []any{id, expectedVersion, string(StatusAutoApproved), string(StatusAutoApproved), dailyLimit}
	}

	var returnedID string
	err := s.pool.QueryRow(ctx, query, args...).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ontologyservice: auto-approve: %w", err)
	}
	return true, nil
}

var allowedSortFields = map[string]bool{
	"created_at": true,
	"frequency":  true,
	"confidence": true,
	"updated_at": true,
}

func (s *PostgresStore) ListPaginated(ctx context.Context, filter ListFilter) ([]Proposal, int, error) {
	sortBy := filter.SortBy
	if !allowedSortFields[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	where := `WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR proposal_type = $2)
		AND ($3 = '' OR source = $3)
		AND ($4 = '' OR category = $4)
		AND ($5 = '' OR lower(term) LIKE '%' || lower($5) || '%')`
	args := []any{string(filter.Status), string(filter.Type), string(filter.Source), filter.Category, filter.TermSearch}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s %s`, s.tableName, where)
	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ontologyservice: count proposals: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s %s LIMIT $6 OFFSET $7`,
		selectColumns, s.tableName, where, sortBy, direction)
	rows, err := s.pool.Query(ctx, dataQuery, append(args, pageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("ontologyservice: list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		p, err := s.scanRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ontologyservice: scan proposal row: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ontologyservice: iterate proposal rows: %w", err)
	}
	return proposals, total, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	statsQuery := fmt.Sprintf(`
		SELECT count(*),
			sum(CASE WHEN status = 'pending' THEN 1 ELSE 0 END),
			sum(CASE WHEN status = 'approved' THEN 1 ELSE 0 END),
			sum(CASE WHEN status = 'auto_approved' THEN 1 ELSE 0 END),
			sum(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END)
		FROM %s
	`, s.tableName)

	var stats Stats
	stats.CategoryDist = map[string]int{}
	var total, pending, approved, autoApproved, rejected int
	if err := s.pool.QueryRow(ctx, statsQuery).Scan(&total, &pending, &approved, &autoApproved, &rejected); err != nil {
		return Stats{}, fmt.Errorf("ontologyservice: stats: %w", err)
	}
	stats.TotalProposals = total
	stats.PendingCount = pending
	stats.ApprovedCount = approved
	stats.AutoApprovedCount = autoApproved
	stats.RejectedCount = rejected

	catQuery := fmt.Sprintf(`SELECT category, count(*) FROM %s GROUP BY category`, s.tableName)
	catRows, err := s.pool.Query(ctx, catQuery)
	if err != nil {
		return Stats{}, fmt.Errorf("ontologyservice: category distribution: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		var count int
		if err := catRows.Scan(&category, &count); err != nil {
			return Stats{}, fmt.Errorf("ontologyservice: scan category row: %w", err)
		}
		stats.CategoryDist[category] = count
	}

	topQuery := fmt.Sprintf(`
		SELECT term, category, frequency, confidence FROM %s
		WHERE status = 'pending'
		ORDER BY frequency DESC, confidence DESC LIMIT 10
	`, s.tableName)
	topRows, err := s.pool.Query(ctx, topQuery)
	if err != nil {
		return Stats{}, fmt.Errorf("ontologyservice: top unresolved terms: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var tf TermFrequency
		if err := topRows.Scan(&tf.Term, &tf.Category, &tf.Frequency, &tf.Confidence); err != nil {
			return Stats{}, fmt.Errorf("ontologyservice: scan term row: %w", err)
		}
		stats.TopUnresolvedTerms = append(stats.TopUnresolvedTerms, tf)
	}
	return stats, nil
}

func (s *PostgresStore) BatchUpdateStatus(ctx context.Context, ids []string, newStatus ProposalStatus, reviewedBy, rejectionReason string) ([]string, []string, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $1, version = version + 1, reviewed_at = now(),
			reviewed_by = $2, rejection_reason = $3, updated_at = now()
		WHERE id = ANY($4) AND status = 'pending'
		RETURNING id
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, string(newStatus), reviewedBy, rejectionReason, ids)
	if err != nil {
		return nil, ids, fmt.Errorf("ontologyservice: batch update: %w", err)
	}
	defer rows.Close()

	succeeded := map[string]bool{}
	var ok []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ids, fmt.Errorf("ontologyservice: scan batch row: %w", err)
		}
		succeeded[id] = true
		ok = append(ok, id)
	}

	var failed []string
	for _, id := range ids {
		if !succeeded[id] {
			failed = append(failed, id)
		}
	}
	return ok, failed, nil
}

func (s *PostgresStore) MarkApplied(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET applied_at = now() WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ontologyservice: mark applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ontologyservice: mark applied: %w", pgx.ErrNoRows)
	}
	return nil
}
