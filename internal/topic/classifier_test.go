package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "work meeting", text: "I had a work meeting today", expected: "How did that work moment make you feel?"},
		{name: "first match wins", text: "Lunch with a friend after the office", expected: "How did that work moment make you feel?"},
		{name: "food before social", text: "Dinner with family", expected: "Was the meal healthy or did you crave it?"},
		{name: "travel", text: "The TRAIN was late", expected: "Was the travel smooth or stressful?"},
		{name: "health", text: "went to the doctor", expected: "Do you want to track this health moment?"},
		{name: "social", text: "my sister came to visit", expected: "What stood out in that conversation?"},
		{name: "substring match", text: "I was eating", expected: "Was the meal healthy or did you crave it?"},
		{name: "fallback", text: "hello there", expected: FallbackQuestion},
		{name: "empty", text: "", expected: FallbackQuestion},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.text))
		})
	}
}

func TestRichness(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "none", text: "quiet evening", expected: 0},
		{name: "one topic twice", text: "work work project", expected: 1},
		{name: "two topics", text: "meeting then lunch", expected: 2},
		{name: "all topics", text: "office breakfast flight exercise friend", expected: 5},
		{name: "case insensitive", text: "DOCTOR and BUS", expected: 2},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Richness(tc.text))
		})
	}
}

func TestMatch(t *testing.T) {
	rule, ok := Match("train ride")
	assert.True(t, ok)
	assert.Equal(t, "travel", rule.Name)

	_, ok = Match("nothing here")
	assert.False(t, ok)
}
