package captions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strings.Repeat("x", i%3)
	}
	return strings.Join(parts, " ")
}

func TestTime_SingleWord(t *testing.T) {
	cues, err := Time("hello", 10, 20, DefaultWordsPerCue)
	require.NoError(t, err)
	assert.Equal(t, []model.Cue{{Index: 1, Start: 10, End: 20, Text: "hello"}}, cues)
}

func TestTime_FourteenWordsTwoCues(t *testing.T) {
	cues, err := Time(words(14), 0, 14, 7)
	require.NoError(t, err)
	require.Len(t, cues, 2)
	assert.Equal(t, model.Seconds(0), cues[0].Start)
	assert.Equal(t, model.Seconds(7), cues[0].End)
	assert.Equal(t, model.Seconds(7), cues[1].Start)
	assert.Equal(t, model.Seconds(14), cues[1].End)
	assert.Equal(t, 1, cues[0].Index)
	assert.Equal(t, 2, cues[1].Index)
	assert.Len(t, strings.Fields(cues[0].Text), 7)
}

func TestTime_ShortLastCue(t *testing.T) {
	cues, err := Time(words(10), 0, 10, 4)
	require.NoError(t, err)
	require.Len(t, cues, 3)
	assert.Equal(t, model.Seconds(8), cues[1].End)
	assert.Equal(t, model.Seconds(8), cues[2].Start)
	assert.Equal(t, model.Seconds(10), cues[2].End)
	assert.Len(t, strings.Fields(cues[2].Text), 2)
}

func TestTime_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		cues, err := Time(text, 0, 10, DefaultWordsPerCue)
		require.NoError(t, err)
		assert.Empty(t, cues)
	}
}

func TestTime_Errors(t *testing.T) {
	_, err := Time("a b c", 5, 5, DefaultWordsPerCue)
	assert.ErrorIs(t, err, ErrDegenerateWindow)

	_, err = Time("a b c", 6, 5, DefaultWordsPerCue)
	assert.ErrorIs(t, err, ErrDegenerateWindow)

	_, err = Time("a b c", 0, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Time("a b c", 0, 5, -3)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTime_Properties(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start model.Seconds
		end   model.Seconds
		per   int
	}{
		{"short", words(3), 0, 2.5, 7},
		{"long", words(101), 12.25, 97.5, 7},
		{"one per cue", words(9), 1, 4, 1},
		{"uneven spacing", "  un\tdeux\n\ntrois  quatre cinq six sept huit ", 100, 103.3, 3},
		{"tiny window", words(50), 0, 0.01, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cues, err := Time(tc.text, tc.start, tc.end, tc.per)
			require.NoError(t, err)
			require.NotEmpty(t, cues)

			assert.Equal(t, tc.start, cues[0].Start)
			assert.Equal(t, tc.end, cues[len(cues)-1].End)

			var tokens []string
			for i, c := range cues {
				assert.Equal(t, i+1, c.Index)
				assert.Less(t, c.Start, c.End, "cue %d", c.Index)
				assert.LessOrEqual(t, c.End, tc.end)
				if i > 0 {
					assert.LessOrEqual(t, cues[i-1].End, c.Start)
				}
				n := len(strings.Fields(c.Text))
				assert.LessOrEqual(t, n, tc.per)
				if i < len(cues)-1 {
					assert.Equal(t, tc.per, n)
				}
				tokens = append(tokens, strings.Fields(c.Text)...)
			}
			assert.Equal(t, strings.Fields(tc.text), tokens)

			again, err := Time(tc.text, tc.start, tc.end, tc.per)
			require.NoError(t, err)
			assert.Equal(t, cues, again)
		})
	}
}

func TestShift(t *testing.T) {
	cues, err := Time(words(14), 0, 14, 7)
	require.NoError(t, err)
	shifted := Shift(cues, 60)
	assert.Equal(t, model.Seconds(60), shifted[0].Start)
	assert.Equal(t, model.Seconds(74), shifted[1].End)
	assert.Equal(t, model.Seconds(0), cues[0].Start)
}
