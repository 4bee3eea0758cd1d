package usecase

import (
	"bytes"
	"encoding/json"
	"strings"

	"ProblemRadar/internal/domain"
)

// looseString accepts any JSON value; non-strings keep their compact JSON form.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(strings.TrimSpace(str))
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	if buf.String() == "null" {
		*s = ""
		return nil
	}
	*s = looseString(buf.String())
	return nil
}

// looseList accepts a JSON array of values or one comma separated string.
type looseList []string

func (l *looseList) UnmarshalJSON(data []byte) error {
	var items []looseString
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				out = append(out, string(item))
			}
		}
		*l = out
		return nil
	}
	var single looseString
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = splitItems(string(single))
	return nil
}

type ideaAnswer struct {
	Title             looseString `json:"title"`
	Description       looseString `json:"description"`
	TargetAudience    looseString `json:"target_audience"`
	MonetizationModel looseString `json:"monetization_model"`
	TechStack         looseList   `json:"tech_stack"`
	MarketSize        looseString `json:"market_size"`
	CompetitionLevel  looseString `json:"competition_level"`
	KeyFeatures       looseList   `json:"key_features"`
}

func (a ideaAnswer) idea() domain.Idea {
	return domain.Idea{
		Title:             string(a.Title),
		Description:       string(a.Description),
		TargetAudience:    string(a.TargetAudience),
		MonetizationModel: string(a.MonetizationModel),
		TechStack:         a.TechStack,
		MarketSize:        string(a.MarketSize),
		CompetitionLevel:  string(a.CompetitionLevel),
		KeyFeatures:       a.KeyFeatures,
	}
}

// parseIdeaAnswer reads a model answer as a JSON object first and as
// "key: value" lines second. ok is false when neither yields a field.
func parseIdeaAnswer(answer string) (domain.Idea, bool) {
	if obj, found := extractJSONObject(answer); found {
		var parsed ideaAnswer
		if err := json.Unmarshal([]byte(obj), &parsed); err == nil {
			idea := parsed.idea()
			if !isEmptyIdea(idea) {
				return idea, true
			}
		}
	}
	idea := parseIdeaLines(answer)
	return idea, !isEmptyIdea(idea)
}

func extractJSONObject(answer string) (string, bool) {
	text := strings.TrimSpace(answer)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func parseIdeaLines(answer string) domain.Idea {
	var idea domain.Idea
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*"))
		if value == "" {
			continue
		}
		switch normalizeKey(key) {
		case "title":
			idea.Title = value
		case "description":
			idea.Description = value
		case "target_audience":
			idea.TargetAudience = value
		case "monetization_model":
			idea.MonetizationModel = value
		case "tech_stack":
			idea.TechStack = splitItems(value)
		case "market_size":
			idea.MarketSize = value
		case "competition_level":
			idea.CompetitionLevel = value
		case "key_features":
			idea.KeyFeatures = splitItems(value)
		}
	}
	return idea
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.Trim(strings.TrimSpace(key), "*_`\""))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}

func splitItems(value string) []string {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isEmptyIdea(idea domain.Idea) bool {
	return idea.Title == "" &&
		idea.Description == "" &&
		idea.TargetAudience == "" &&
		idea.MonetizationModel == "" &&
		len(idea.TechStack) == 0 &&
		idea.MarketSize == "" &&
		idea.CompetitionLevel == "" &&
		len(idea.KeyFeatures) == 0
}
