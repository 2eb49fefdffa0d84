package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "My Phone", want: "my phone"},
		{name: "collapses whitespace", input: "  wifi \t keeps   dropping ", want: "wifi keeps dropping"},
		{name: "punctuation becomes separator", input: "screen-flicker!!", want: "screen flicker"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		text    string
		want    float64
	}{
		{name: "verbatim occurrence", keyword: "disconnecting", text: "wifi keeps disconnecting", want: 0},
		{name: "position independent", keyword: "disconnecting", text: "disconnecting all the time on my wifi", want: 0},
		{name: "one missing letter", keyword: "disconnecting", text: "wifi keeps disconecting", want: 1.0 / 13.0},
		{name: "case and punctuation ignored", keyword: "Screen Flicker", text: "my screen-flicker!!", want: 0},
		{name: "nothing alike", keyword: "overheating", text: "zzz", want: 1},
		{name: "empty text", keyword: "cracked", text: "", want: 1},
		{name: "empty keyword", keyword: "", text: "anything", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.keyword, tt.text), 1e-9)
		})
	}
}

func TestWithin(t *testing.T) {
	score, ok := Within("disconnecting", "wifi keeps disconecting", DefaultThreshold)
	assert.True(t, ok)
	assert.Less(t, score, DefaultThreshold)

	_, ok = Within("overheating", "my screen is cracked", DefaultThreshold)
	assert.False(t, ok)
}

func TestScoreIsDeterministic(t *testing.T) {
	first := Score("battery", "the batery drains fast")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Score("battery", "the batery drains fast"))
	}
}
