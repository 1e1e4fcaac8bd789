package conversation

import "fmt"

// OverflowPolicy decides what happens to utterances once the journal is full.
type OverflowPolicy string

const (
	// OverflowClamp rejects every utterance while full.
	OverflowClamp OverflowPolicy = "clamp"
	// OverflowAllowOne stores exactly one extra entry past the limit.
	OverflowAllowOne OverflowPolicy = "allow_one"
)

// ParseOverflow maps a config value to a policy. Empty means OverflowClamp.
func ParseOverflow(value string) (OverflowPolicy, error) {
	switch OverflowPolicy(value) {
	case "", OverflowClamp:
		return OverflowClamp, nil
	case OverflowAllowOne:
		return OverflowAllowOne, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q", value)
	}
}

// limit returns the hard cap on stored entries for max.
func (p OverflowPolicy) limit(max int) int {
	if p == OverflowAllowOne {
		return max + 1
	}
	return max
}
