package conversation

import "strings"

// FollowUpDetector decides whether an assistant reply indicates a
// follow-up request and should trigger the lead-capture prompt. The
// matching strategy is pluggable; substring matching is inherently
// fuzzy.
type FollowUpDetector interface {
	Match(reply string) bool
}

// defaultFollowUpPhrases are matched case-insensitively as substrings.
var defaultFollowUpPhrases = []string{
	"follow up",
	"follow-up",
	"contact info",
	"contact information",
	"reach out",
	"get in touch",
}

// PhraseDetector matches a fixed set of phrases case-insensitively.
type PhraseDetector struct {
	phrases []string
}

// NewPhraseDetector builds a detector over the given phrases, or the
// default set when none are supplied.
func NewPhraseDetector(phrases ...string) PhraseDetector {
	if len(phrases) == 0 {
		phrases = defaultFollowUpPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return PhraseDetector{phrases: lowered}
}

func (d PhraseDetector) Match(reply string) bool {
	reply = strings.ToLower(reply)
	for _, p := range d.phrases {
		if strings.Contains(reply, p) {
			return true
		}
	}
	return false
}
