package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
	"ProblemRadar/internal/scoring"
)

const (
	g2NegativeRating    = 3
	g2ReviewsPerPage    = 10
	g2ReviewSeverity    = 7.0
	g2DefaultMaxPages   = 1
	g2ReviewTitlePrefix = "G2 Review Problem: "
)

// G2Scanner crawls review category pages and keeps negative reviews.
type G2Scanner struct {
	client *http.Client
	now    func() time.Time
}

// NewG2Scanner wires an HTTP client.
func NewG2Scanner(client *http.Client) *G2Scanner {
	return &G2Scanner{client: defaultClient(client), now: time.Now}
}

// Name identifies the strategy inside the registry.
func (g *G2Scanner) Name() string {
	return domain.SourceG2
}

// Scan walks each category for up to maxPages pages and returns reviews rated 3 or lower.
func (g *G2Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Problem, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for site %s", req.SiteName)
	}

	maxPages, err := strconv.Atoi(req.Option("maxPages", strconv.Itoa(g2DefaultMaxPages)))
	if err != nil || maxPages <= 0 {
		maxPages = g2DefaultMaxPages
	}

	var results []domain.Problem
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		for page := 1; page <= maxPages; page++ {
			pageURL, err := buildPageURL(cat.URL, page)
			if err != nil {
				return results, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			doc, err := g.fetchDocument(ctx, pageURL)
			if err != nil {
				return results, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			reviews, found := g.extractReviews(doc, cat, page)
			for _, p := range reviews {
				if _, ok := seen[p.ID]; ok {
					continue
				}
				seen[p.ID] = struct{}{}
				results = append(results, p)
			}
			if found == 0 {
				break
			}
		}
	}

	return results, nil
}

func (g *G2Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := get(ctx, g.client, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// extractReviews returns the negative reviews among the first ten and the number of review blocks seen.
func (g *G2Scanner) extractReviews(doc *goquery.Document, cat scanner.Category, page int) ([]domain.Problem, int) {
	var collected []domain.Problem
	reviews := doc.Find("div.review")

	reviews.EachWithBreak(func(i int, review *goquery.Selection) bool {
		if i >= g2ReviewsPerPage {
			return false
		}
		p, ok := parseReview(review, cat, page, i, g.now().UTC())
		if ok {
			collected = append(collected, p)
		}
		return true
	})

	return collected, reviews.Length()
}

func parseReview(review *goquery.Selection, cat scanner.Category, page, index int, now time.Time) (domain.Problem, bool) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(review.Find("span.rating").First().Text()), 64)
	if err != nil || rating > g2NegativeRating {
		return domain.Problem{}, false
	}

	title := strings.TrimSpace(review.Find("h3").First().Text())
	content := strings.TrimSpace(review.Find("p").First().Text())
	if title == "" || content == "" {
		return domain.Problem{}, false
	}

	id, _ := review.Attr("data-review-id")
	if id == "" {
		id = fmt.Sprintf("%s-%d-%d", cat.Name, page, index)
	}

	return domain.NewProblem(domain.Problem{
		ID:            "g2_" + id,
		Title:         g2ReviewTitlePrefix + title,
		Description:   content,
		Source:        domain.SourceG2,
		SourceURL:     cat.URL,
		Category:      scoring.Categorize(cat.Name + " " + title + " " + content),
		SeverityScore: g2ReviewSeverity,
		MentionCount:  1,
		Keywords:      scoring.ExtractKeywords(title + " " + content),
		CreatedAt:     now,
	}), true
}

func buildPageURL(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}
	if page <= 1 {
		return parsed.String(), nil
	}

	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
