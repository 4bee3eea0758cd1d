package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var problemColumns = []string{
	"id", "title", "description", "source", "source_url", "category",
	"severity_score", "mention_count", "keywords", "created_at",
}

var validationColumns = []string{"id", "idea_id", "type", "status", "results", "created_at", "updated_at"}

// dbtx is the subset of pgxpool.Pool the store needs.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists problems, ideas and validation artifacts into Postgres.
type PostgresStore struct {
	db   dbtx
	pool *pgxpool.Pool
}

var _ ports.RecordStore = (*PostgresStore)(nil)

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, dsn string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: pool, pool: pool}, nil
}

// NewPostgresStore wires an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool}
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveProblems upserts the snapshot of every problem in one statement.
func (s *PostgresStore) SaveProblems(ctx context.Context, problems []domain.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	query, args, err := upsertProblemsQuery(problems)
	if err != nil {
		return fmt.Errorf("build problems upsert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert problems: %w", err)
	}
	return nil
}

func upsertProblemsQuery(problems []domain.Problem) (string, []any, error) {
	insert := psql.Insert("problems").Columns(problemColumns...)
	for _, p := range problems {
		keywords := p.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		insert = insert.Values(p.ID, p.Title, p.Description, p.Source, p.SourceURL, p.Category,
			p.SeverityScore, p.MentionCount, keywords, p.CreatedAt)
	}
	return insert.Suffix(`ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
	    description = EXCLUDED.description,
	    category = EXCLUDED.category,
	    severity_score = EXCLUDED.severity_score,
	    mention_count = EXCLUDED.mention_count,
	    keywords = EXCLUDED.keywords,
	    updated_at = NOW()`).ToSql()
}

// FindProblem loads one problem by id.
func (s *PostgresStore) FindProblem(ctx context.Context, id string) (domain.Problem, error) {
	query, args, err := psql.Select(problemColumns...).From("problems").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Problem{}, fmt.Errorf("build problem select: %w", err)
	}

	var p domain.Problem
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Title, &p.Description, &p.Source, &p.SourceURL, &p.Category,
		&p.SeverityScore, &p.MentionCount, &p.Keywords, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Problem{}, fmt.Errorf("%w: problem %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("select problem: %w", err)
	}
	return p, nil
}

// SaveIdea inserts the idea; the full record is kept as JSON.
func (s *PostgresStore) SaveIdea(ctx context.Context, idea domain.Idea) error {
	payload, err := json.Marshal(idea)
	if err != nil {
		return fmt.Errorf("marshal idea: %w", err)
	}
	query, args, err := psql.Insert("ideas").
		Columns("id", "problem_id", "framework_type", "title", "payload", "created_at").
		Values(idea.ID, idea.ProblemID, string(idea.FrameworkType), idea.Title, payload, idea.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build idea insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

// SaveValidation inserts a validation artifact.
func (s *PostgresStore) SaveValidation(ctx context.Context, v domain.Validation) error {
	results, err := marshalResults(v.Results)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("validations").
		Columns(validationColumns...).
		Values(v.ID, v.IdeaID, string(v.Type), string(v.Status), results, v.CreatedAt, v.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build validation insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert validation: %w", err)
	}
	return nil
}

// FindValidation loads a validation artifact by id.
func (s *PostgresStore) FindValidation(ctx context.Context, id string) (domain.Validation, error) {
	query, args, err := psql.Select(validationColumns...).From("validations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Validation{}, fmt.Errorf("build validation select: %w", err)
	}
	return s.scanValidation(ctx, id, query, args)
}

// UpdateValidation applies the patch; results are merged key by key.
func (s *PostgresStore) UpdateValidation(ctx context.Context, id string, patch domain.ValidationPatch) (domain.Validation, error) {
	query, args, err := updateValidationQuery(id, patch, time.Now().UTC())
	if err != nil {
		return domain.Validation{}, err
	}
	return s.scanValidation(ctx, id, query, args)
}

func updateValidationQuery(id string, patch domain.ValidationPatch, now time.Time) (string, []any, error) {
	update := psql.Update("validations").Set("updated_at", now).Where(sq.Eq{"id": id})
	if patch.Status != nil {
		if !domain.ValidStatus(*patch.Status) {
			return "", nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *patch.Status)
		}
		update = update.Set("status", string(*patch.Status))
	}
	if len(patch.Results) > 0 {
		results, err := marshalResults(patch.Results)
		if err != nil {
			return "", nil, err
		}
		update = update.Set("results", sq.Expr("results || ?::jsonb", results))
	}
	query, args, err := update.Suffix("RETURNING id, idea_id, type, status, results, created_at, updated_at").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build validation update: %w", err)
	}
	return query, args, nil
}

// appendResponseExpr appends one entry to results->'responses' and recomputes
// the count and average in the same UPDATE.
const appendResponseExpr = `results || jsonb_build_object(
	'responses', COALESCE(results->'responses', '[]'::jsonb) || jsonb_build_array(?::jsonb),
	'total_responses', jsonb_array_length(COALESCE(results->'responses', '[]'::jsonb)) + 1,
	'avg_willingness_to_pay', (
		SELECT COALESCE(AVG((r->>'willingness_to_pay')::float8), 0)
		FROM jsonb_array_elements(COALESCE(results->'responses', '[]'::jsonb) || jsonb_build_array(?::jsonb)) AS r
	))`

// AppendSurveyResponse adds resp to the survey in a single statement.
func (s *PostgresStore) AppendSurveyResponse(ctx context.Context, surveyID string, resp domain.SurveyResponse) (domain.Validation, error) {
	query, args, err := appendSurveyResponseQuery(surveyID, resp, time.Now().UTC())
	if err != nil {
		return domain.Validation{}, err
	}
	v, err := s.scanValidation(ctx, surveyID, query, args)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Validation{}, fmt.Errorf("%w: survey %s", domain.ErrNotFound, surveyID)
	}
	return v, err
}

func appendSurveyResponseQuery(surveyID string, resp domain.SurveyResponse, now time.Time) (string, []any, error) {
	entry, err := json.Marshal(resp.Entry())
	if err != nil {
		return "", nil, fmt.Errorf("marshal survey response: %w", err)
	}
	query, args, err := psql.Update("validations").
		Set("results", sq.Expr(appendResponseExpr, entry, entry)).
		Set("updated_at", now).
		Where(sq.Eq{"id": surveyID, "type": string(domain.ArtifactSurvey)}).
		Suffix("RETURNING id, idea_id, type, status, results, created_at, updated_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build survey response update: %w", err)
	}
	return query, args, nil
}

func (s *PostgresStore) scanValidation(ctx context.Context, id, query string, args []any) (domain.Validation, error) {
	var (
		v       domain.Validation
		kind    string
		status  string
		results []byte
	)
	err := s.db.QueryRow(ctx, query, args...).Scan(&v.ID, &v.IdeaID, &kind, &status, &results, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Validation{}, fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Validation{}, fmt.Errorf("query validation: %w", err)
	}
	v.Type = domain.ArtifactType(kind)
	v.Status = domain.ValidationStatus(status)
	if len(results) > 0 {
		if err := json.Unmarshal(results, &v.Results); err != nil {
			return domain.Validation{}, fmt.Errorf("decode validation results: %w", err)
		}
	}
	return v, nil
}

func marshalResults(results map[string]any) ([]byte, error) {
	if results == nil {
		results = map[string]any{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("marshal validation results: %w", err)
	}
	return raw, nil
}
