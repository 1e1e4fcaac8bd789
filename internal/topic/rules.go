// Package topic holds the keyword rule table shared by follow-up routing and richness scoring.
package topic

import "strings"

// FallbackQuestion is asked when no rule matches an utterance.
const FallbackQuestion = "Thanks for sharing. Want to add anything else from today?"

// Rule maps a set of keywords to a follow-up question.
type Rule struct {
	Name     string
	Keywords []string
	Question string
}

// Rules is ordered by priority; the first match wins when classifying.
var Rules = []Rule{
	{
		Name:     "work",
		Keywords: []string{"work", "office", "project", "meeting"},
		Question: "How did that work moment make you feel?",
	},
	{
		Name:     "food",
		Keywords: []string{"food", "eat", "lunch", "dinner", "breakfast"},
		Question: "Was the meal healthy or did you crave it?",
	},
	{
		Name:     "travel",
		Keywords: []string{"travel", "drive", "bus", "train", "flight"},
		Question: "Was the travel smooth or stressful?",
	},
	{
		Name:     "health",
		Keywords: []string{"health", "sick", "doctor", "exercise"},
		Question: "Do you want to track this health moment?",
	},
	{
		Name:     "social",
		Keywords: []string{"family", "friend", "call", "visit"},
		Question: "What stood out in that conversation?",
	},
}

// Matches reports whether any keyword is a substring of lowered.
// lowered must already be lower-cased.
func (r Rule) Matches(lowered string) bool {
	for _, keyword := range r.Keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
