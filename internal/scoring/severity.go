package scoring

import "strings"

const (
	baseSeverity = 5.0
	minSeverity  = 0.0
	maxSeverity  = 10.0
)

type severityTier struct {
	increment float64
	words     []string
}

var severityTiers = []severityTier{
	{2.0, []string{"urgent", "critical", "broken", "failing", "emergency"}},
	{1.0, []string{"frustrated", "difficult", "challenging", "problem", "issue"}},
	{0.5, []string{"wish", "hope", "would like", "looking for"}},
}

// SeverityScore adds each tier increment for every tier word found in the
// lowercased title and description, starting from 5.0, clamped to [0, 10].
func SeverityScore(title, description string) float64 {
	text := strings.ToLower(title + " " + description)
	score := baseSeverity
	for _, tier := range severityTiers {
		for _, word := range tier.words {
			if strings.Contains(text, word) {
				score += tier.increment
			}
		}
	}
	return Clamp(score)
}

// Clamp bounds a severity value to [0, 10].
func Clamp(score float64) float64 {
	if score < minSeverity {
		return minSeverity
	}
	if score > maxSeverity {
		return maxSeverity
	}
	return score
}
