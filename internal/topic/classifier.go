package topic

import "strings"

// Match returns the first rule matching text.
func Match(text string) (Rule, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range Rules {
		if rule.Matches(lowered) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Classify returns the follow-up question for a single utterance.
func Classify(text string) string {
	if rule, ok := Match(text); ok {
		return rule.Question
	}
	return FallbackQuestion
}

// Richness counts how many rules are represented anywhere in text.
func Richness(text string) int {
	lowered := strings.ToLower(text)

	count := 0
	for _, rule := range Rules {
		if rule.Matches(lowered) {
			count++
		}
	}
	return count
}
