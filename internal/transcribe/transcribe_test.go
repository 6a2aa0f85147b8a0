package transcribe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/internal/store"
	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

func TestTrackTranscriber(t *testing.T) {
	tr := subtitles.NewTrack("demo", model.SubtitleTrack{}, []subtitles.Phrase{
		{StartMs: 0, Text: "Welcome."},
		{StartMs: 20_000, Text: "This is the intro."},
		{StartMs: 60_000, Text: "Main part."},
	})
	tt := NewTrackTranscriber(tr)

	got, err := tt.Transcribe(context.Background(), model.Window{Start: 0, End: 60})
	require.NoError(t, err)
	assert.Equal(t, "Welcome. This is the intro.", got)

	got, err = tt.Transcribe(context.Background(), model.Window{Start: 60, End: 120})
	require.NoError(t, err)
	assert.Equal(t, "Main part.", got)
}

func TestStaticTranscriber_PartitionsWords(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	st, err := NewStaticTranscriber(text, 100)
	require.NoError(t, err)

	bounds := []model.Seconds{0, 33.3, 50, 50.0001, 100}
	var all []string
	for i := 1; i < len(bounds); i++ {
		got, err := st.Transcribe(context.Background(), model.Window{Start: bounds[i-1], End: bounds[i]})
		require.NoError(t, err)
		all = append(all, strings.Fields(got)...)
	}
	assert.Equal(t, strings.Fields(text), all)

	got, _ := st.Transcribe(context.Background(), model.Window{Start: 0, End: 50})
	assert.Equal(t, "one two three four five", got)
}

func TestStaticTranscriber_InvalidDuration(t *testing.T) {
	_, err := NewStaticTranscriber("x", 0)
	assert.ErrorIs(t, err, ErrNoDuration)
}

type failing struct{ calls int }

func (f *failing) Transcribe(context.Context, model.Window) (string, error) {
	f.calls++
	return "", errors.New("recognizer offline")
}

func TestTextOrEmpty(t *testing.T) {
	f := &failing{}
	assert.Equal(t, "", TextOrEmpty(context.Background(), f, model.Window{End: 1}))
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "", TextOrEmpty(context.Background(), nil, model.Window{End: 1}))
}

type memCache struct {
	data map[store.Key]string
	puts int
}

func (m *memCache) Get(_ context.Context, k store.Key) (string, error) {
	v, ok := m.data[k]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (m *memCache) Put(_ context.Context, k store.Key, text string) error {
	m.data[k] = text
	m.puts++
	return nil
}

type counting struct {
	calls int
	text  string
}

func (c *counting) Transcribe(context.Context, model.Window) (string, error) {
	c.calls++
	return c.text, nil
}

func TestCachedTranscriber(t *testing.T) {
	inner := &counting{text: "hello"}
	cache := &memCache{data: map[store.Key]string{}}
	ct := NewCachedTranscriber(inner, cache, "vid", "en")
	w := model.Window{Start: 1, End: 2}

	for i := 0; i < 3; i++ {
		got, err := ct.Transcribe(context.Background(), w)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.puts)

	// erreur du transcripteur : rien n'est mis en cache
	ft := NewCachedTranscriber(&failing{}, cache, "vid", "en")
	_, err := ft.Transcribe(context.Background(), model.Window{Start: 5, End: 6})
	assert.Error(t, err)
	assert.Equal(t, 1, cache.puts)
}

func TestCachedTranscriber_SQLite(t *testing.T) {
	s, err := store.Open(t.TempDir() + "/t.db")
	require.NoError(t, err)
	defer s.Close()

	inner := &counting{text: "from recognizer"}
	ct := NewCachedTranscriber(inner, s, "file.mp4", "")
	w := model.Window{Start: 0, End: 30}
	_, err = ct.Transcribe(context.Background(), w)
	require.NoError(t, err)

	again := NewCachedTranscriber(&failing{}, s, "file.mp4", "")
	got, err := again.Transcribe(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, "from recognizer", got)
}
