package valuation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Proton-105/voice-journal/internal/domain"
)

func entriesOf(texts ...string) []domain.Entry {
	entries := make([]domain.Entry, 0, len(texts))
	for _, text := range texts {
		entries = append(entries, domain.Entry{Text: text, Type: domain.EntryFree, Time: time.Unix(0, 0)})
	}
	return entries
}

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestComputeOffer(t *testing.T) {
	testCases := []struct {
		name     string
		entries  []domain.Entry
		expected domain.Offer
	}{
		{
			name:     "no entries",
			entries:  nil,
			expected: domain.Offer{Amount: 0, Label: "No data yet"},
		},
		{
			name:     "six one-word entries",
			entries:  entriesOf("one", "two", "three", "four", "five", "six"),
			expected: domain.Offer{Amount: 5, Label: "Basic"},
		},
		{
			name:     "nineteen words",
			entries:  entriesOf(words(19, "la")),
			expected: domain.Offer{Amount: 5, Label: "Basic"},
		},
		{
			name:     "twenty words single topic",
			entries:  entriesOf(words(20, "work")),
			expected: domain.Offer{Amount: 10, Label: "Detailed"},
		},
		{
			name:     "sixty words single topic",
			entries:  entriesOf(words(60, "work")),
			expected: domain.Offer{Amount: 10, Label: "Detailed"},
		},
		{
			name:     "fifty nine words rich",
			entries:  entriesOf(words(58, "work"), "lunch"),
			expected: domain.Offer{Amount: 10, Label: "Detailed"},
		},
		{
			name:     "sixty words rich across entries",
			entries:  entriesOf(words(30, "work"), words(30, "lunch")),
			expected: domain.Offer{Amount: 20, Label: "High-value"},
		},
		{
			name:     "whitespace does not count",
			entries:  entriesOf("  spaced   out  ", "\tnew\nline "),
			expected: domain.Offer{Amount: 5, Label: "Basic"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeOffer(tc.entries))
		})
	}
}

func TestComputeOffer_MonotonicInWordCount(t *testing.T) {
	for _, word := range []string{"quiet", "work"} {
		previous := 0
		for n := 1; n <= 120; n++ {
			offer := ComputeOffer(entriesOf(words(n, word)))
			assert.GreaterOrEqual(t, offer.Amount, previous, "word=%s n=%d", word, n)
			previous = offer.Amount
		}
	}

	previous := 0
	for n := 1; n <= 120; n++ {
		offer := ComputeOffer(entriesOf("work lunch", words(n, "la")))
		assert.GreaterOrEqual(t, offer.Amount, previous, "rich n=%d", n)
		previous = offer.Amount
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 3, WordCount(" a  b\tc "))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "a b c", Combine(entriesOf("a", "b", "c")))
	assert.Equal(t, "", Combine(nil))
}
