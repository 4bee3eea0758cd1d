package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// PipelineDeps wires all driven adapters into the refresh pipeline.
type PipelineDeps struct {
	Aggregator *Aggregator
	Store      ports.RecordStore
	Embedder   ports.Embedder
	Index      ports.VectorIndex
	Notifiers  []ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the scheduled refresh workflow.
type Pipeline struct {
	aggregator *Aggregator
	store      ports.RecordStore
	embedder   ports.Embedder
	index      ports.VectorIndex
	notifiers  []ports.Notifier
	logger     *slog.Logger
}

// RefreshReport summarizes one pipeline run.
type RefreshReport struct {
	Trigger  time.Time `json:"trigger"`
	Problems int       `json:"problems"`
	Indexed  int       `json:"indexed"`
	Trending int       `json:"trending"`
	Notified int       `json:"notified"`
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		aggregator: deps.Aggregator,
		store:      deps.Store,
		embedder:   deps.Embedder,
		index:      deps.Index,
		notifiers:  deps.Notifiers,
		logger:     deps.Logger,
	}
}

// Refresh aggregates, persists, indexes and publishes the trending digest.
// Index failures are counted and skipped; store and notifier failures are
// returned after every step has run.
func (p *Pipeline) Refresh(ctx context.Context, trigger time.Time) (RefreshReport, error) {
	report := RefreshReport{Trigger: trigger}
	if p.aggregator == nil {
		return report, nil
	}

	problems := p.aggregator.All(ctx)
	report.Problems = len(problems)
	if len(problems) == 0 {
		return report, nil
	}

	var errs []error
	if p.store != nil {
		if err := p.store.SaveProblems(ctx, problems); err != nil {
			errs = append(errs, fmt.Errorf("persist problems: %w", err))
		}
	}

	report.Indexed = p.indexProblems(ctx, problems)

	trending := Trending(problems)
	report.Trending = len(trending)
	if len(trending) > 0 {
		message := buildDigestMessage(trending)
		for _, n := range p.notifiers {
			if err := n.PublishDigest(ctx, message); err != nil {
				errs = append(errs, fmt.Errorf("publish digest: %w", err))
				continue
			}
			report.Notified++
		}
	}

	p.info("refresh finished",
		"problems", report.Problems,
		"indexed", report.Indexed,
		"trending", report.Trending,
		"notified", report.Notified)
	return report, errors.Join(errs...)
}

func (p *Pipeline) indexProblems(ctx context.Context, problems []domain.Problem) int {
	if p.embedder == nil || p.index == nil {
		return 0
	}
	indexed := 0
	for _, prob := range problems {
		if ctx.Err() != nil {
			break
		}
		vec, err := p.embedder.Embed(ctx, ProblemText(prob))
		if err != nil {
			p.warn("embed problem failed", "id", prob.ID, "error", err)
			continue
		}
		err = p.index.Upsert(ctx, prob.ID, vec, map[string]string{
			"title":    prob.Title,
			"category": prob.Category,
			"source":   prob.Source,
		})
		if err != nil {
			p.warn("index problem failed", "id", prob.ID, "error", err)
			continue
		}
		indexed++
	}
	return indexed
}

func buildDigestMessage(problems []domain.Problem) string {
	if len(problems) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Trending problems\n\n")
	for _, prob := range problems {
		fmt.Fprintf(&b, "- %s\nSeverity: %.1f | Mentions: %d | %s\n%s\n\n",
			prob.Title,
			prob.SeverityScore,
			prob.MentionCount,
			prob.Category,
			prob.SourceURL)
	}
	return b.String()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
