package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/internal/fetch"
	"github.com/patrickprogramme/clipscribe/internal/store"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// fakeExtractor écrit la fenêtre demandée dans le fichier WAV, à la place de ffmpeg.
type fakeExtractor struct {
	mu      sync.Mutex
	windows []model.Window
	paths   []string
}

func (f *fakeExtractor) Extract(_ context.Context, src string, w model.Window, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
	f.paths = append(f.paths, dst)
	return os.WriteFile(dst, []byte(fmt.Sprintf("%s|%.0f-%.0f", src, float64(w.Start), float64(w.End))), 0o644)
}

// speechServer répond avec le contenu du fichier reçu, comme le ferait un recognizer.
func speechServer(t *testing.T, seen *[]map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		*seen = append(*seen, map[string]string{
			"model":    r.FormValue("model"),
			"language": r.FormValue("language"),
			"format":   r.FormValue("response_format"),
			"auth":     r.Header.Get("Authorization"),
		})
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"text":"  said %s "}`, data)
	}))
}

func newClient() *fetch.Client {
	return fetch.New(fetch.WithRetry(fetch.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}))
}

func TestAudioTranscriber_ChunksAndJoins(t *testing.T) {
	var seen []map[string]string
	srv := speechServer(t, &seen)
	defer srv.Close()

	ex := &fakeExtractor{}
	at, err := NewAudioTranscriber("talk.mp4", ex, newClient(), SpeechConfig{
		Endpoint: srv.URL + "/v1/audio/transcriptions",
		Model:    "whisper-1",
		Language: "fr",
		APIKey:   "sk-test",
		Chunk:    30,
	})
	require.NoError(t, err)

	got, err := at.Transcribe(context.Background(), model.Window{Start: 10, End: 75})
	require.NoError(t, err)
	assert.Equal(t, "said talk.mp4|10-40 said talk.mp4|40-70 said talk.mp4|70-75", got)
	assert.Equal(t, []model.Window{{Start: 10, End: 40}, {Start: 40, End: 70}, {Start: 70, End: 75}}, ex.windows)

	require.Len(t, seen, 3)
	assert.Equal(t, map[string]string{"model": "whisper-1", "language": "fr", "format": "json", "auth": "Bearer sk-test"}, seen[0])

	for _, p := range ex.paths {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "temporary chunk %s should be removed", p)
	}
}

func TestAudioTranscriber_ServerErrorIsNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusBadRequest)
	}))
	defer srv.Close()

	at, err := NewAudioTranscriber("talk.mp4", &fakeExtractor{}, newClient(), SpeechConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	cache := &memCache{data: map[store.Key]string{}}
	ct := NewCachedTranscriber(at, cache, "talk.mp4", "speech:")
	_, err = ct.Transcribe(context.Background(), model.Window{Start: 0, End: 5})
	require.ErrorIs(t, err, fetch.ErrStatus)
	assert.Equal(t, http.StatusBadRequest, fetch.StatusCode(err))
	assert.Equal(t, 0, cache.puts)

	assert.Equal(t, "", TextOrEmpty(context.Background(), ct, model.Window{Start: 0, End: 5}))
}

func TestAudioTranscriber_CachedAcrossRuns(t *testing.T) {
	var seen []map[string]string
	srv := speechServer(t, &seen)
	defer srv.Close()

	s, err := store.Open(t.TempDir() + "/speech.db")
	require.NoError(t, err)
	defer s.Close()

	w := model.Window{Start: 0, End: 20}
	for i := 0; i < 2; i++ {
		at, err := NewAudioTranscriber("talk.mp4", &fakeExtractor{}, newClient(), SpeechConfig{Endpoint: srv.URL})
		require.NoError(t, err)
		got, err := NewCachedTranscriber(at, s, "talk.mp4", "speech:").Transcribe(context.Background(), w)
		require.NoError(t, err)
		assert.Equal(t, "said talk.mp4|0-20", got)
	}
	assert.Len(t, seen, 1)
}

func TestParseSpeech(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"openai text", `{"text":"Bonjour  tout\nle monde"}`, "Bonjour tout le monde", false},
		{"segments only", `{"segments":[{"text":" un "},{"text":""},{"text":"deux"}]}`, "un deux", false},
		{"empty text is silence", `{"text":""}`, "", false},
		{"no text field", `{"language":"fr"}`, "", true},
		{"not json", `<html>`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSpeech([]byte(tc.body))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrSpeechResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewAudioTranscriber_Validation(t *testing.T) {
	_, err := NewAudioTranscriber("a.mp4", &fakeExtractor{}, newClient(), SpeechConfig{})
	assert.Error(t, err)
	_, err = NewAudioTranscriber("", &fakeExtractor{}, newClient(), SpeechConfig{Endpoint: "http://x"})
	assert.Error(t, err)

	at, err := NewAudioTranscriber("a.mp4", &fakeExtractor{}, newClient(), SpeechConfig{Endpoint: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultChunk, at.cfg.Chunk)
}
