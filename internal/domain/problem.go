package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"ProblemRadar/internal/scoring"
)

// MaxDescriptionLength bounds Problem.Description in runes.
const MaxDescriptionLength = 500

// Source tags identify the adapter a problem came from.
const (
	SourceReddit     = "reddit"
	SourceHackerNews = "hackernews"
	SourceG2         = "g2"
	SourceResearch   = "research"
	SourceSeed       = "seed"
)

// Problem is one observed pain point normalized from an upstream source.
type Problem struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	Source        string    `json:"source" yaml:"source"`
	SourceURL     string    `json:"source_url" yaml:"source_url"`
	Category      string    `json:"category" yaml:"category"`
	SeverityScore float64   `json:"severity_score" yaml:"severity_score"`
	MentionCount  int       `json:"mention_count" yaml:"mention_count"`
	Keywords      []string  `json:"keywords" yaml:"keywords"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// NewProblem returns p with every record invariant enforced: truncated
// description, known category, clamped severity, non-negative mentions and
// bounded keywords.
func NewProblem(p Problem) Problem {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = TruncateDescription(strings.TrimSpace(p.Description))
	if !scoring.IsCategory(p.Category) {
		p.Category = scoring.CategoryGeneral
	}
	p.SeverityScore = scoring.Clamp(p.SeverityScore)
	if p.MentionCount <= 0 {
		p.MentionCount = 1
	}
	p.Keywords = scoring.NormalizeKeywords(p.Keywords)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return p
}

// TruncateDescription cuts text to MaxDescriptionLength runes and marks the cut.
func TruncateDescription(text string) string {
	if utf8.RuneCountInString(text) <= MaxDescriptionLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxDescriptionLength]) + "..."
}

// SourceResult is the outcome of one adapter run. Err is informational only.
type SourceResult struct {
	Source   string
	Problems []Problem
	Err      error
}

// ProblemFilters narrows an aggregation. Zero values disable a filter.
type ProblemFilters struct {
	Category    string   `json:"category"`
	MinSeverity *float64 `json:"min_severity"`
	Keywords    string   `json:"keywords"`
	Limit       int      `json:"-"`
}
