package parser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
	"ProblemRadar/internal/scoring"
)

const defaultHNItems = 30

var hackerNewsIndicators = []string{
	"ask hn",
	"show hn",
	"how do you",
	"what tools do you use",
	"looking for",
}

type hnItem struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
}

// HackerNewsScanner walks the top stories of the Firebase API.
type HackerNewsScanner struct {
	client *http.Client
}

// NewHackerNewsScanner wires an HTTP client.
func NewHackerNewsScanner(client *http.Client) *HackerNewsScanner {
	return &HackerNewsScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (h *HackerNewsScanner) Name() string {
	return domain.SourceHackerNews
}

// Scan treats every category URL as an API root exposing topstories.json and item/<id>.json.
// Individual items that fail to load are skipped.
func (h *HackerNewsScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Problem, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	maxItems, err := strconv.Atoi(req.Option("maxItems", strconv.Itoa(defaultHNItems)))
	if err != nil || maxItems <= 0 {
		maxItems = defaultHNItems
	}

	var problems []domain.Problem
	for _, cat := range req.Categories {
		base := strings.TrimRight(cat.URL, "/")

		var ids []int64
		if err := getJSON(ctx, h.client, base+"/topstories.json", &ids); err != nil {
			return problems, fmt.Errorf("feed %s: %w", cat.Name, err)
		}
		if len(ids) > maxItems {
			ids = ids[:maxItems]
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				return problems, ctx.Err()
			}
			var item hnItem
			if err := getJSON(ctx, h.client, fmt.Sprintf("%s/item/%d.json", base, id), &item); err != nil {
				continue
			}
			if p, ok := toHNProblem(item); ok {
				problems = append(problems, p)
			}
		}
	}
	return problems, nil
}

func toHNProblem(item hnItem) (domain.Problem, bool) {
	if item.Type != "story" || strings.TrimSpace(item.Title) == "" {
		return domain.Problem{}, false
	}
	if !containsAny(item.Title, hackerNewsIndicators) {
		return domain.Problem{}, false
	}
	link := item.URL
	if link == "" {
		link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	}
	return scored(domain.Problem{
		ID:           fmt.Sprintf("hn_%d", item.ID),
		Title:        item.Title,
		Description:  "From Hacker News: " + item.Title,
		Source:       domain.SourceHackerNews,
		SourceURL:    link,
		MentionCount: item.Score,
		Keywords:     scoring.ExtractKeywords(item.Title),
		CreatedAt:    time.Unix(item.Time, 0).UTC(),
	}), true
}
