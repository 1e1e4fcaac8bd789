// Package valuation prices the journal entries currently held.
package valuation

import (
	"strings"

	"github.com/Proton-105/voice-journal/internal/domain"
	"github.com/Proton-105/voice-journal/internal/topic"
)

// tier is one row of the pricing table.
type tier struct {
	applies func(words, richness int) bool
	offer   domain.Offer
}

// tiers is evaluated top to bottom; the first applicable row wins.
var tiers = []tier{
	{
		applies: func(words, _ int) bool { return words < 20 },
		offer:   domain.Offer{Amount: 5, Label: domain.LabelBasic},
	},
	{
		applies: func(words, richness int) bool { return words < 60 || richness < 2 },
		offer:   domain.Offer{Amount: 10, Label: domain.LabelDetailed},
	},
	{
		applies: func(int, int) bool { return true },
		offer:   domain.Offer{Amount: 20, Label: domain.LabelHighValue},
	},
}

// ComputeOffer values entries by text volume and topical diversity.
func ComputeOffer(entries []domain.Entry) domain.Offer {
	if len(entries) == 0 {
		return domain.NoOffer
	}

	combined := Combine(entries)
	words := WordCount(combined)
	richness := topic.Richness(combined)

	for _, t := range tiers {
		if t.applies(words, richness) {
			return t.offer
		}
	}

	return domain.NoOffer
}

// Combine joins entry texts with single spaces.
func Combine(entries []domain.Entry) string {
	texts := make([]string, 0, len(entries))
	for _, entry := range entries {
		texts = append(texts, entry.Text)
	}
	return strings.Join(texts, " ")
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
