package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
)

var redditIndicators = []string{
	"i wish there was",
	"i need a tool for",
	"how do you solve",
	"my biggest challenge",
	"pain point",
	"frustrated with",
	"looking for a solution",
	"struggling with",
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// RedditScanner reads subreddit hot listings and keeps posts describing a pain point.
type RedditScanner struct {
	client  *http.Client
	baseURL string
}

// NewRedditScanner wires an HTTP client; permalinks resolve against reddit.com.
func NewRedditScanner(client *http.Client) *RedditScanner {
	return &RedditScanner{client: defaultClient(client), baseURL: "https://reddit.com"}
}

// Name identifies the strategy inside the registry.
func (r *RedditScanner) Name() string {
	return domain.SourceReddit
}

// Scan fetches every configured subreddit listing. A failing subreddit fails the site.
func (r *RedditScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Problem, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no subreddits provided for site %s", req.SiteName)
	}

	var problems []domain.Problem
	for _, cat := range req.Categories {
		var listing redditListing
		if err := getJSON(ctx, r.client, cat.URL, &listing); err != nil {
			return problems, fmt.Errorf("subreddit %s: %w", cat.Name, err)
		}
		for _, child := range listing.Data.Children {
			if p, ok := r.toProblem(child.Data); ok {
				problems = append(problems, p)
			}
		}
	}
	return problems, nil
}

func (r *RedditScanner) toProblem(post redditPost) (domain.Problem, bool) {
	if strings.TrimSpace(post.Title) == "" {
		return domain.Problem{}, false
	}
	if !containsAny(post.Title+" "+post.SelfText, redditIndicators) {
		return domain.Problem{}, false
	}
	return scored(domain.Problem{
		ID:           "reddit_" + post.ID,
		Title:        post.Title,
		Description:  post.SelfText,
		Source:       domain.SourceReddit,
		SourceURL:    r.baseURL + post.Permalink,
		MentionCount: post.Score,
		CreatedAt:    time.Unix(int64(post.CreatedUTC), 0).UTC(),
	}), true
}
