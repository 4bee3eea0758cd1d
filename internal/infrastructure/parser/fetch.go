package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scoring"
)

const userAgent = "ProblemRadar/1.0"

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

func get(ctx context.Context, client *http.Client, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", domain.ErrUpstream, target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrUpstream, target, resp.Status)
	}
	return resp.Body, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	body, err := get(ctx, client, target)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstream, target, err)
	}
	return nil
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// scored builds a problem whose category, severity and keywords come from the heuristics.
func scored(p domain.Problem) domain.Problem {
	text := p.Title + " " + p.Description
	if p.Category == "" {
		p.Category = scoring.Categorize(text)
	}
	if p.SeverityScore == 0 {
		p.SeverityScore = scoring.SeverityScore(p.Title, p.Description)
	}
	if len(p.Keywords) == 0 {
		p.Keywords = scoring.ExtractKeywords(text)
	}
	return domain.NewProblem(p)
}
