package ports

import (
	"context"
	"time"

	"ProblemRadar/internal/domain"
)

// ProblemSource runs every configured adapter and reports each outcome.
type ProblemSource interface {
	FetchAll(ctx context.Context) []domain.SourceResult
}

// SeedProvider returns the fixed fallback problem set.
type SeedProvider interface {
	Seeds() []domain.Problem
}

// RecordStore persists problems, ideas and validation artifacts.
type RecordStore interface {
	SaveProblems(ctx context.Context, problems []domain.Problem) error
	FindProblem(ctx context.Context, id string) (domain.Problem, error)
	SaveIdea(ctx context.Context, idea domain.Idea) error
	SaveValidation(ctx context.Context, v domain.Validation) error
	FindValidation(ctx context.Context, id string) (domain.Validation, error)
	UpdateValidation(ctx context.Context, id string, patch domain.ValidationPatch) (domain.Validation, error)
	// AppendSurveyResponse atomically adds resp to a survey and refreshes the
	// response count and average willingness to pay.
	AppendSurveyResponse(ctx context.Context, surveyID string, resp domain.SurveyResponse) (domain.Validation, error)
}

// ContentGenerator completes a prompt with an external text-generation model.
type ContentGenerator interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorMatch is one similarity hit.
type VectorMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// VectorIndex stores embeddings and answers nearest-neighbour queries.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]string) error
	Query(ctx context.Context, embedding []float32, k int) ([]VectorMatch, error)
}

// ObjectStorage publishes generated assets and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ConversionTracker counts landing-page events.
type ConversionTracker interface {
	Track(ctx context.Context, event domain.ConversionEvent) error
	Counts(ctx context.Context, landingPageID string) (map[string]int64, error)
}

// TokenVerifier resolves a bearer token to a user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.UserIdentity, error)
}

// Notifier streams digests to Telegram, Slack or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
