package mood

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabel(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   Label
	}{
		{name: "empty", answer: "", want: Neutral},
		{name: "exact", answer: "calm", want: Calm},
		{name: "punctuated and capitalised", answer: "Happy!!", want: Happy},
		{name: "surrounding whitespace", answer: "  tired \n", want: Tired},
		{name: "first matching token", answer: "The mood is angry, maybe sad", want: Angry},
		{name: "substring scan", answer: "I feel pretty sad today", want: Sad},
		{name: "substring inside a longer word", answer: "unhappyness", want: Happy},
		{name: "declared order wins over text order", answer: "sadhappy", want: Happy},
		{name: "digits are stripped", answer: "excited123", want: Excited},
		{name: "no label", answer: "xyz123", want: Neutral},
		{name: "markdown wrapped", answer: "**motivated**", want: Motivated},
		{name: "label split by punctuation", answer: "an-xious", want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLabel(tt.answer))
		})
	}
}

func TestExtractLabel_LabelsMapToThemselves(t *testing.T) {
	for _, l := range Labels {
		assert.Equal(t, l, ExtractLabel(string(l)))
	}
}

func TestExtractLabel_AlwaysReturnsMember(t *testing.T) {
	f := func(s string) bool {
		return IsValid(string(ExtractLabel(s)))
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 2000}))
}

func TestParse(t *testing.T) {
	l, ok := Parse("anxious")
	assert.True(t, ok)
	assert.Equal(t, Anxious, l)

	_, ok = Parse("Anxious")
	assert.False(t, ok)

	assert.Equal(t, []string{"happy", "sad", "calm", "motivated", "anxious", "angry", "tired", "excited", "neutral"}, Names())
}
