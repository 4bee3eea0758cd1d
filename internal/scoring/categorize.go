// Package scoring holds the fixed text heuristics applied to every problem:
// category lookup, severity tiers and keyword extraction.
package scoring

import "strings"

// CategoryGeneral is returned when no table entry matches.
const CategoryGeneral = "general"

type categoryRule struct {
	name     string
	keywords []string
}

// categoryTable is ordered; the first rule with a matching keyword wins.
var categoryTable = []categoryRule{
	{"e-commerce", []string{"shopify", "woocommerce", "amazon", "ebay", "payment", "checkout"}},
	{"real-estate", []string{"property", "real estate", "housing", "rental", "mortgage"}},
	{"healthcare", []string{"medical", "health", "patient", "doctor", "hospital"}},
	{"education", []string{"learning", "course", "student", "education", "school"}},
	{"marketing", []string{"seo", "social media", "advertising", "campaign", "email"}},
	{"finance", []string{"accounting", "bookkeeping", "tax", "financial", "budget", "invoice", "billing"}},
	{"productivity", []string{"project management", "task", "collaboration", "workflow"}},
	{"developer-tools", []string{"api", "code", "development", "programming", "git"}},
	{"customer-support", []string{"customer support", "helpdesk", "support ticket", "live chat"}},
	{"analytics", []string{"analytics", "dashboard", "metrics", "reporting"}},
}

// Categorize returns the first category whose keywords occur in text.
func Categorize(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return CategoryGeneral
}

// Categories lists every known category in table order, then general.
func Categories() []string {
	out := make([]string, 0, len(categoryTable)+1)
	for _, rule := range categoryTable {
		out = append(out, rule.name)
	}
	return append(out, CategoryGeneral)
}

// IsCategory reports whether name belongs to the closed category set.
func IsCategory(name string) bool {
	if name == CategoryGeneral {
		return true
	}
	for _, rule := range categoryTable {
		if rule.name == name {
			return true
		}
	}
	return false
}
