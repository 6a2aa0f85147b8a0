package subtitles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

var twoCues = []model.Cue{
	{Index: 1, Start: 0, End: 7, Text: "one two three"},
	{Index: 2, Start: 7, End: 14.5, Text: " four five "},
}

func TestWriteSRT(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteSRT(&b, twoCues))
	want := "1\n00:00:00,000 --> 00:00:07,000\none two three\n\n" +
		"2\n00:00:07,000 --> 00:00:14,500\nfour five\n\n"
	assert.Equal(t, want, b.String())
}

func TestWriteVTT(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteVTT(&b, twoCues))
	out := b.String()
	assert.True(t, strings.HasPrefix(out, "WEBVTT\n\n1\n00:00:00.000 --> 00:00:07.000\n"), out)
	assert.Contains(t, out, "00:00:07.000 --> 00:00:14.500\nfour five\n")
}

func TestEncode(t *testing.T) {
	_, err := EncodeBytes(model.FormatTXT, twoCues)
	assert.Error(t, err)

	b, err := EncodeBytes(model.FormatVTT, nil)
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\n", string(b))
}

func TestRender(t *testing.T) {
	parts := []Part{
		{Title: "Intro", Text: "phrase one.\nphrase  two."},
		{Title: "## Empty"},
		{Title: "Main", Text: "last\n\n words"},
	}

	assert.Equal(t, "## Intro\n\nphrase one.\nphrase two.\n\n## Empty\n\n## Main\n\nlast\nwords\n",
		Render(parts, AsPlain))
	assert.Equal(t, "## Intro\nphrase one. phrase two.\n## Empty\n## Main\nlast words\n",
		Render(parts, AsCollapsed))
	assert.Empty(t, Render(nil, AsPlain))
}
