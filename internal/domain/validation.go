package domain

import "time"

// ArtifactType distinguishes validation artifacts.
type ArtifactType string

const (
	ArtifactSurvey      ArtifactType = "survey"
	ArtifactLandingPage ArtifactType = "landing_page"
)

// ValidationStatus enumerates artifact lifecycle states.
type ValidationStatus string

const (
	StatusPending   ValidationStatus = "pending"
	StatusActive    ValidationStatus = "active"
	StatusCompleted ValidationStatus = "completed"
)

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s ValidationStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Validation is the persisted envelope around a survey or landing page.
type Validation struct {
	ID        string           `json:"id"`
	IdeaID    string           `json:"idea_id"`
	Type      ArtifactType     `json:"type"`
	Status    ValidationStatus `json:"status"`
	Results   map[string]any   `json:"results"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ValidationPatch carries partial updates; nil fields are left untouched.
type ValidationPatch struct {
	Status  *ValidationStatus
	Results map[string]any
}

// SurveyQuestion is one question of a survey template.
type SurveyQuestion struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Survey is a created validation survey.
type Survey struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	IdeaID          string           `json:"idea_id"`
	IdeaTitle       string           `json:"idea_title"`
	IdeaDescription string           `json:"idea_description"`
	Questions       []SurveyQuestion `json:"questions"`
	Status          ValidationStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// LandingContent is the rendered copy of a landing page.
type LandingContent struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Features          []string `json:"features"`
	TargetAudience    string   `json:"target_audience"`
	MonetizationModel string   `json:"monetization_model"`
	CTAText           string   `json:"cta_text"`
	CTAURL            string   `json:"cta_url"`
}

// LandingPage is a created validation landing page.
type LandingPage struct {
	ID           string           `json:"id"`
	TemplateType string           `json:"template_type"`
	IdeaID       string           `json:"idea_id"`
	Content      LandingContent   `json:"content"`
	PublicURL    string           `json:"public_url,omitempty"`
	Status       ValidationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ConversionEvent is one tracked landing-page interaction.
type ConversionEvent struct {
	LandingPageID string         `json:"landing_page_id"`
	EventType     string         `json:"event_type"`
	Timestamp     time.Time      `json:"timestamp"`
	Data          map[string]any `json:"data"`
}

// Conversion event names understood by metrics.
const (
	EventPageView    = "page_view"
	EventEmailSignup = "email_signup"
)

// LandingMetrics summarizes tracked events for one landing page.
type LandingMetrics struct {
	LandingPageID  string           `json:"landing_page_id"`
	TotalVisitors  int64            `json:"total_visitors"`
	EmailSignups   int64            `json:"email_signups"`
	ConversionRate float64          `json:"conversion_rate"`
	Events         map[string]int64 `json:"events"`
}

// Keys of a survey artifact's results.
const (
	ResultResponses      = "responses"
	ResultTotalResponses = "total_responses"
	ResultAvgWillingness = "avg_willingness_to_pay"
)

// SurveyResponse is one respondent's answers; WillingnessToPay is on a 0-5 scale.
type SurveyResponse struct {
	WillingnessToPay float64        `json:"willingness_to_pay"`
	Answers          map[string]any `json:"answers,omitempty"`
}

// Entry is the stored form of r inside a survey's responses list.
func (r SurveyResponse) Entry() map[string]any {
	entry := map[string]any{"willingness_to_pay": r.WillingnessToPay}
	if len(r.Answers) > 0 {
		entry["answers"] = r.Answers
	}
	return entry
}

// ReportMetrics is the landing-page input of a validation report.
type ReportMetrics struct {
	ConversionRate float64 `json:"conversion_rate"`
}

// ValidationReport is the deterministic outcome of survey and landing data.
type ValidationReport struct {
	IdeaSummary     map[string]string `json:"idea_summary"`
	ValidationScore float64           `json:"validation_score"`
	Recommendations []string          `json:"recommendations"`
	NextSteps       []string          `json:"next_steps"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
