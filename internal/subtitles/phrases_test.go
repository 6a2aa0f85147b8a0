package subtitles

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- splitSentences ---------------------------------------------------------

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name           string
		in             string
		wantTexts      []string
		wantTerminated []bool
	}{
		{
			name:           "decimal not split",
			in:             "2.6 meters",
			wantTexts:      []string{"2.6 meters"},
			wantTerminated: []bool{false},
		},
		{
			name:           "ellipsis and terminator",
			in:             "Wait... what?",
			wantTexts:      []string{"Wait...", "what?"},
			wantTerminated: []bool{true, true},
		},
		{
			name:           "closer kept with terminator",
			in:             `He said "stop." Then left`,
			wantTexts:      []string{`He said "stop."`, "Then left"},
			wantTerminated: []bool{true, false},
		},
		{
			name:           "newline treated as space",
			in:             "One line\nNext line.",
			wantTexts:      []string{"One line Next line."},
			wantTerminated: []bool{true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parts := splitSentences(tc.in)
			require.Len(t, parts, len(tc.wantTexts))

			total := utf8.RuneCountInString(tc.in)
			prev := 0
			for i, p := range parts {
				assert.Equal(t, tc.wantTexts[i], p.Text, "part %d", i)
				assert.Equal(t, tc.wantTerminated[i], p.Terminated, "part %d", i)
				assert.GreaterOrEqual(t, p.EndRune, prev, "part %d", i)
				assert.LessOrEqual(t, p.EndRune, total, "part %d", i)
				prev = p.EndRune
			}
			assert.Equal(t, total, prev)
		})
	}
}

// --- PhrasesFromManual ------------------------------------------------------

func TestPhrasesFromManual_JoinAcrossEvents(t *testing.T) {
	doc := json3Doc{
		Events: []json3Event{
			{TStartMs: ptrInt64(0), DDurationMs: ptrInt64(1000), Segs: []json3Seg{{Utf8: "Hello world"}}},
			{TStartMs: ptrInt64(1000), DDurationMs: ptrInt64(1000), Segs: []json3Seg{{Utf8: "This is fine."}}},
		},
	}

	phrases := PhrasesFromManual(doc)
	require.Len(t, phrases, 1)
	assert.Equal(t, "Hello world This is fine.", phrases[0].Text)
	assert.Equal(t, int64(0), phrases[0].StartMs)
	assert.Equal(t, 5, phrases[0].Words)
}

func TestPhrasesFromManual_SameEventTwoPhrases(t *testing.T) {
	evText := "First. Second."
	evDur := int64(2000)
	doc := json3Doc{
		Events: []json3Event{
			{TStartMs: ptrInt64(500), DDurationMs: &evDur, Segs: []json3Seg{{Utf8: evText}}},
		},
	}

	phrases := PhrasesFromManual(doc)
	require.Len(t, phrases, 2)
	assert.Equal(t, int64(500), phrases[0].StartMs)
	assert.Equal(t, "First.", phrases[0].Text)

	// début interpolé au prorata des runes de l'event
	runesBefore := utf8.RuneCountInString(evText[:strings.Index(evText, "Second.")])
	perRuneMs := float64(evDur) / float64(utf8.RuneCountInString(evText))
	want := 500 + int64(math.Round(perRuneMs*float64(runesBefore)))
	assert.Equal(t, want, phrases[1].StartMs)
}

// --- PhrasesFromAuto --------------------------------------------------------

func TestPhrasesFromAuto_PunctuationAndPause(t *testing.T) {
	doc := json3Doc{
		Events: []json3Event{
			{TStartMs: ptrInt64(0), Segs: []json3Seg{
				{Utf8: "hello"},
				{Utf8: " world.", TOffsetMs: ptrInt64(400)},
			}},
			{TStartMs: ptrInt64(1000), Segs: []json3Seg{{Utf8: "\n"}}},
			{TStartMs: ptrInt64(1200), Segs: []json3Seg{
				{Utf8: "after"},
				{Utf8: " pause", TOffsetMs: ptrInt64(300)},
			}},
			// 5 s plus tard : la pause coupe la phrase
			{TStartMs: ptrInt64(6500), Segs: []json3Seg{{Utf8: "again"}}},
		},
	}

	assert.Equal(t, []Phrase{
		{StartMs: 0, Text: "hello world.", Runes: 12, Words: 2},
		{StartMs: 1200, Text: "after pause", Runes: 11, Words: 2},
		{StartMs: 6500, Text: "again", Runes: 5, Words: 1},
	}, PhrasesFromAuto(doc))
}

func TestParseJSON3(t *testing.T) {
	doc, err := ParseJSON3([]byte(`{"wireMagic":"pb3","events":[{"tStartMs":10,"dDurationMs":90,"segs":[{"utf8":"Bonjour."}]},{"tStartMs":100,"wWinId":1}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Events, 2)
	assert.True(t, doc.Events[1].blank())

	_, err = ParseJSON3(nil)
	assert.Error(t, err)
}

// helper to create *int64 easily in tests
func ptrInt64(v int64) *int64 { return &v }
