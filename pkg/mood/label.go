package mood

import (
	"strings"
)

// Label is one of the closed set of mood classification outcomes.
type Label string

const (
	Happy     Label = "happy"
	Sad       Label = "sad"
	Calm      Label = "calm"
	Motivated Label = "motivated"
	Anxious   Label = "anxious"
	Angry     Label = "angry"
	Tired     Label = "tired"
	Excited   Label = "excited"
	Neutral   Label = "neutral"
)

// Labels is the enumeration in its declared order. ExtractLabel's substring
// scan walks this order, so it must not be re-sorted.
var Labels = []Label{
	Happy,
	Sad,
	Calm,
	Motivated,
	Anxious,
	Angry,
	Tired,
	Excited,
	Neutral,
}

// Names returns the labels as plain strings, in declared order.
func Names() []string {
	names := make([]string, len(Labels))
	for i, l := range Labels {
		names[i] = string(l)
	}
	return names
}

// Parse reports whether s is exactly one of the labels.
func Parse(s string) (Label, bool) {
	for _, l := range Labels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// IsValid reports whether s names a label.
func IsValid(s string) bool {
	_, ok := Parse(s)
	return ok
}

// ExtractLabel maps a free-form model answer onto a Label.
//
// The chain is: lowercase and replace everything outside a-z and whitespace
// with spaces, trim; exact match; first whitespace token that is a label;
// first label (declared order) contained as a substring; neutral.
func ExtractLabel(answer string) Label {
	if answer == "" {
		return Neutral
	}

	cleaned := strings.TrimSpace(clean(answer))

	if l, ok := Parse(cleaned); ok {
		return l
	}

	for _, tok := range strings.Fields(cleaned) {
		if l, ok := Parse(tok); ok {
			return l
		}
	}

	for _, l := range Labels {
		if strings.Contains(cleaned, string(l)) {
			return l
		}
	}

	return Neutral
}

func clean(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
