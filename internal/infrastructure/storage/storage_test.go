package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/domain"
)

type recordingDB struct {
	execSQL  []string
	execArgs [][]any
	row      pgx.Row
}

func (r *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.execSQL = append(r.execSQL, sql)
	r.execArgs = append(r.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return r.row
}

type errRow struct{ err error }

func (e errRow) Scan(...any) error { return e.err }

func TestUpsertProblemsQuery(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	query, args, err := upsertProblemsQuery([]domain.Problem{
		{ID: "1", Title: "A", Source: "seed", Category: "general", SeverityScore: 5, MentionCount: 1, CreatedAt: created},
		{ID: "2", Title: "B", Source: "seed", Category: "finance", SeverityScore: 8, MentionCount: 3, Keywords: []string{"invoice"}, CreatedAt: created},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO problems (id,title,description,source,source_url,category,severity_score,mention_count,keywords,created_at) VALUES ($1,"))
	assert.Contains(t, query, "$20")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE")
	require.Len(t, args, 20)
	assert.Equal(t, []string{}, args[8])
	assert.Equal(t, []string{"invoice"}, args[18])
}

func TestUpdateValidationQuery(t *testing.T) {
	t.Parallel()

	status := domain.StatusActive
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := updateValidationQuery("v1", domain.ValidationPatch{
		Status:  &status,
		Results: map[string]any{"responses": 3},
	}, now)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE validations SET updated_at = $1, status = $2, results = results || $3::jsonb WHERE id = $4 RETURNING id, idea_id, type, status, results, created_at, updated_at",
		query)
	require.Len(t, args, 4)
	assert.Equal(t, "active", args[1])
	assert.JSONEq(t, `{"responses":3}`, string(args[2].([]byte)))
	assert.Equal(t, "v1", args[3])

	bogus := domain.ValidationStatus("archived")
	_, _, err = updateValidationQuery("v1", domain.ValidationPatch{Status: &bogus}, now)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAppendSurveyResponseQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := appendSurveyResponseQuery("survey_1", domain.SurveyResponse{WillingnessToPay: 4}, now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "UPDATE validations SET results = results || jsonb_build_object("), query)
	assert.Contains(t, query, "jsonb_build_array($1::jsonb)")
	assert.Contains(t, query, "jsonb_build_array($2::jsonb)")
	assert.Contains(t, query, "updated_at = $3 WHERE id = $4 AND type = $5 RETURNING")
	require.Len(t, args, 5)
	assert.JSONEq(t, `{"willingness_to_pay":4}`, string(args[0].([]byte)))
	assert.Equal(t, now, args[2])
	assert.Equal(t, "survey_1", args[3])
	assert.Equal(t, "survey", args[4])
}

func TestPostgresStoreAppendMissingSurvey(t *testing.T) {
	t.Parallel()

	store := &PostgresStore{db: &recordingDB{row: errRow{err: pgx.ErrNoRows}}}
	_, err := store.AppendSurveyResponse(context.Background(), "survey_x", domain.SurveyResponse{WillingnessToPay: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "survey survey_x")
}

func TestMemoryStoreAppendSurveyResponse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveValidation(ctx, domain.Validation{
		ID: "s1", Type: domain.ArtifactSurvey, Status: domain.StatusActive,
		Results: map[string]any{domain.ResultResponses: []any{}, "title": "Survey"},
	}))
	require.NoError(t, store.SaveValidation(ctx, domain.Validation{ID: "l1", Type: domain.ArtifactLandingPage}))

	_, err := store.AppendSurveyResponse(ctx, "s1", domain.SurveyResponse{WillingnessToPay: 5})
	require.NoError(t, err)
	got, err := store.AppendSurveyResponse(ctx, "s1", domain.SurveyResponse{WillingnessToPay: 2, Answers: map[string]any{"q": "a"}})
	require.NoError(t, err)

	assert.Equal(t, 2, got.Results[domain.ResultTotalResponses])
	assert.InDelta(t, 3.5, got.Results[domain.ResultAvgWillingness], 1e-9)
	assert.Equal(t, "Survey", got.Results["title"])
	assert.Len(t, got.Results[domain.ResultResponses], 2)

	_, err = store.AppendSurveyResponse(ctx, "l1", domain.SurveyResponse{})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.AppendSurveyResponse(ctx, "missing", domain.SurveyResponse{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStoreAppendSurveyResponseConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveValidation(ctx, domain.Validation{ID: "s1", Type: domain.ArtifactSurvey}))

	const writers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.AppendSurveyResponse(ctx, "s1", domain.SurveyResponse{WillingnessToPay: 4})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	got, err := store.FindValidation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, writers, got.Results[domain.ResultTotalResponses])
	assert.Len(t, got.Results[domain.ResultResponses], writers)
	assert.InDelta(t, 4.0, got.Results[domain.ResultAvgWillingness], 1e-9)
}

func TestPostgresStoreNotFound(t *testing.T) {
	t.Parallel()

	store := &PostgresStore{db: &recordingDB{row: errRow{err: pgx.ErrNoRows}}}

	_, err := store.FindProblem(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.FindValidation(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	status := domain.StatusCompleted
	_, err = store.UpdateValidation(context.Background(), "missing", domain.ValidationPatch{Status: &status})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStoreWrapsQueryErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	store := &PostgresStore{db: &recordingDB{row: errRow{err: boom}}}

	_, err := store.FindProblem(context.Background(), "1")
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgresStoreWrites(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	store := &PostgresStore{db: db}
	ctx := context.Background()

	require.NoError(t, store.SaveProblems(ctx, nil))
	assert.Empty(t, db.execSQL)

	require.NoError(t, store.SaveIdea(ctx, domain.Idea{ID: "i1", Title: "T", FrameworkType: domain.FrameworkAPI}))
	require.NoError(t, store.SaveValidation(ctx, domain.Validation{ID: "v1", Type: domain.ArtifactSurvey, Status: domain.StatusPending}))
	require.NoError(t, store.CreateTables(ctx))

	require.Len(t, db.execSQL, 3)
	assert.Contains(t, db.execSQL[0], "INSERT INTO ideas")
	assert.Contains(t, db.execSQL[1], "INSERT INTO validations")
	assert.Equal(t, "api", db.execArgs[0][2])
	assert.JSONEq(t, `{}`, string(db.execArgs[1][4].([]byte)))
	assert.Contains(t, db.execSQL[2], "CREATE TABLE IF NOT EXISTS validations")
}

func TestMemoryStoreValidationLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveValidation(ctx, domain.Validation{
		ID: "v1", IdeaID: "i1", Type: domain.ArtifactSurvey, Status: domain.StatusPending,
		Results: map[string]any{"questions": 4}, CreatedAt: created, UpdatedAt: created,
	}))
	require.Error(t, store.SaveValidation(ctx, domain.Validation{ID: "v1"}))

	status := domain.StatusActive
	updated, err := store.UpdateValidation(ctx, "v1", domain.ValidationPatch{
		Status:  &status,
		Results: map[string]any{"responses": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)
	assert.Equal(t, map[string]any{"questions": 4, "responses": 2}, updated.Results)
	assert.True(t, updated.UpdatedAt.After(created))

	updated.Results["mutated"] = true
	got, err := store.FindValidation(ctx, "v1")
	require.NoError(t, err)
	assert.NotContains(t, got.Results, "mutated")

	_, err = store.UpdateValidation(ctx, "nope", domain.ValidationPatch{})
	require.ErrorIs(t, err, domain.ErrNotFound)

	bogus := domain.ValidationStatus("archived")
	_, err = store.UpdateValidation(ctx, "v1", domain.ValidationPatch{Status: &bogus})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMemoryStoreProblems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveProblems(ctx, []domain.Problem{{ID: "1", Title: "old"}}))
	require.NoError(t, store.SaveProblems(ctx, []domain.Problem{{ID: "1", Title: "new"}}))

	p, err := store.FindProblem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", p.Title)

	_, err = store.FindProblem(ctx, "2")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveIdea(ctx, domain.Idea{ID: "i"}))
	require.NoError(t, store.SaveIdea(ctx, domain.Idea{ID: "i"}))
	assert.Equal(t, 1, store.Ideas())
}
