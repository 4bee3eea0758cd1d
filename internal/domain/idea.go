package domain

import "time"

// FrameworkType selects the ideation template.
type FrameworkType string

const (
	FrameworkUnbundle   FrameworkType = "unbundle"
	FrameworkNiche      FrameworkType = "niche"
	FrameworkAPI        FrameworkType = "api"
	FrameworkAutomation FrameworkType = "automation"
	FrameworkGeneric    FrameworkType = "generic"
)

// FrameworkTypes lists the closed set in catalog order.
var FrameworkTypes = []FrameworkType{
	FrameworkUnbundle,
	FrameworkNiche,
	FrameworkAPI,
	FrameworkAutomation,
	FrameworkGeneric,
}

// ParseFrameworkType validates a raw framework name.
func ParseFrameworkType(raw string) (FrameworkType, bool) {
	for _, f := range FrameworkTypes {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}

// Competition levels.
const (
	CompetitionLow    = "low"
	CompetitionMedium = "medium"
	CompetitionHigh   = "high"
)

// Idea is a generated candidate product concept for a Problem.
type Idea struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	ProblemID         string        `json:"problem_id"`
	FrameworkType     FrameworkType `json:"framework_type"`
	TargetAudience    string        `json:"target_audience"`
	MonetizationModel string        `json:"monetization_model"`
	TechStack         []string      `json:"tech_stack"`
	MarketSize        string        `json:"market_size"`
	CompetitionLevel  string        `json:"competition_level"`
	KeyFeatures       []string      `json:"key_features"`
	Keywords          []string      `json:"keywords,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Framework is catalog metadata for one FrameworkType.
type Framework struct {
	Type        FrameworkType `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Examples    []string      `json:"examples"`
}

// CompetitionAnalysis is a heuristic view of an idea's competitive landscape.
type CompetitionAnalysis struct {
	IdeaID                string   `json:"idea_id"`
	CompetitionLevel      string   `json:"competition_level"`
	MarketSaturation      string   `json:"market_saturation"`
	KeyCompetitors        []string `json:"key_competitors"`
	CompetitiveAdvantages []string `json:"competitive_advantages"`
	MarketGaps            []string `json:"market_gaps"`
	Recommendations       []string `json:"recommendations"`
}

// MarketEstimate is a heuristic market sizing for an idea.
type MarketEstimate struct {
	IdeaID                 string   `json:"idea_id"`
	TotalAddressableMarket string   `json:"total_addressable_market"`
	ObtainableMarket       string   `json:"obtainable_market"`
	TargetCustomerSegments []string `json:"target_customer_segments"`
	MarketGrowthRate       string   `json:"market_growth_rate"`
	MarketMaturity         string   `json:"market_maturity"`
	GeographicFocus        string   `json:"geographic_focus"`
	PricingPotential       string   `json:"pricing_potential"`
	CustomerLifetimeValue  string   `json:"customer_lifetime_value"`
}

// IdeaValidation combines the heuristics into a 0-100 score.
type IdeaValidation struct {
	Idea                Idea                `json:"idea"`
	CompetitionAnalysis CompetitionAnalysis `json:"competition_analysis"`
	MarketSize          MarketEstimate      `json:"market_size"`
	ValidationScore     int                 `json:"validation_score"`
	Recommendations     []string            `json:"recommendations"`
}
