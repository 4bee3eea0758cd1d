package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scanner"
)

const (
	researchLinePrefix = "PROBLEM:"
	defaultPerTopic    = 3
)

// ResearchScanner asks a content generator for pain points around configured topics.
type ResearchScanner struct {
	generator ports.ContentGenerator
	now       func() time.Time
}

// NewResearchScanner wires the generator; a nil or disabled generator yields no problems.
func NewResearchScanner(generator ports.ContentGenerator) *ResearchScanner {
	return &ResearchScanner{generator: generator, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (r *ResearchScanner) Name() string {
	return domain.SourceResearch
}

// Scan issues one completion per topic and parses the "PROBLEM: title | description" lines.
func (r *ResearchScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Problem, error) {
	if r.generator == nil || !r.generator.Enabled() {
		return nil, nil
	}

	perTopic, err := strconv.Atoi(req.Option("perTopic", strconv.Itoa(defaultPerTopic)))
	if err != nil || perTopic <= 0 {
		perTopic = defaultPerTopic
	}

	var problems []domain.Problem
	for _, topic := range req.Categories {
		answer, err := r.generator.Complete(ctx, researchPrompt(topic.Name, perTopic))
		if err != nil {
			return problems, fmt.Errorf("research topic %s: %w", topic.Name, err)
		}
		problems = append(problems, r.parse(answer, topic.Name, perTopic)...)
	}
	return problems, nil
}

func researchPrompt(topic string, count int) string {
	return fmt.Sprintf(`List %d concrete, recurring problems that people in "%s" complain about and would pay software to solve.
Answer with one problem per line, exactly in this form:
PROBLEM: <short title> | <one or two sentence description>`, count, topic)
}

// researchID is a name-based UUID of topic and title, stable across scans.
func researchID(topic, title string) string {
	name := strings.ToLower(strings.TrimSpace(topic)) + "\n" + strings.ToLower(title)
	return "research_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (r *ResearchScanner) parse(answer, topic string, limit int) []domain.Problem {
	var out []domain.Problem
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if !strings.HasPrefix(strings.ToUpper(line), researchLinePrefix) {
			continue
		}
		body := strings.TrimSpace(line[len(researchLinePrefix):])
		title, desc, _ := strings.Cut(body, "|")
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		out = append(out, scored(domain.Problem{
			ID:          researchID(topic, title),
			Title:       title,
			Description: strings.TrimSpace(desc),
			Source:      domain.SourceResearch,
			SourceURL:   "research:" + topic,
			CreatedAt:   r.now().UTC(),
		}))
		if len(out) == limit {
			break
		}
	}
	return out
}
