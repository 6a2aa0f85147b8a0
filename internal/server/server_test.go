package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorKind string          `json:"error_kind"`
	RequestID string          `json:"request_id"`
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthz(t *testing.T) {
	w, env := do(t, New(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSegments(t *testing.T) {
	body := `{"total_duration": 120, "chapters": [{"title": "Intro", "start": 0}, {"title": "", "start": 60}]}`
	w, env := do(t, New(), http.MethodPost, "/api/v1/segments", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SegmentsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, []model.Segment{
		{Title: "Intro", Start: 0, End: 60},
		{Title: "Chapter 2", Start: 60, End: 120},
	}, resp.Segments)
}

func TestSegments_NoChapters(t *testing.T) {
	w, env := do(t, New(), http.MethodPost, "/api/v1/segments", `{"total_duration": 42.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SegmentsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, model.Seconds(42.5), resp.Segments[0].End)
}

func TestSegments_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"missing duration", `{"chapters": []}`, KindBadRequest},
		{"malformed json", `{"total_duration": `, KindBadRequest},
		{"zero duration", `{"total_duration": 0}`, KindInvalidInput},
		{"unordered", `{"total_duration": 100, "chapters": [{"title": "b", "start": 50}, {"title": "a", "start": 10}]}`, KindInvalidInput},
		{"past end", `{"total_duration": 100, "chapters": [{"title": "a", "start": 100}]}`, KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, New(), http.MethodPost, "/api/v1/segments", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.kind, env.ErrorKind)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestCaptions_JSON(t *testing.T) {
	body := `{"text": "one two three four", "start": 10, "end": 14, "words_per_cue": 2}`
	w, env := do(t, New(), http.MethodPost, "/api/v1/captions", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CaptionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, []model.Cue{
		{Index: 1, Start: 10, End: 12, Text: "one two"},
		{Index: 2, Start: 12, End: 14, Text: "three four"},
	}, resp.Cues)
}

func TestCaptions_DefaultWordsPerCue(t *testing.T) {
	body := `{"text": "a b c d", "start": 0, "end": 4}`
	_, env := do(t, New(WithWordsPerCue(3)), http.MethodPost, "/api/v1/captions", body)

	var resp CaptionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Cues, 2)
	assert.Equal(t, "a b c", resp.Cues[0].Text)
}

func TestCaptions_EmptyText(t *testing.T) {
	w, env := do(t, New(), http.MethodPost, "/api/v1/captions", `{"text": "   ", "start": 0, "end": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cues":[]}`, string(env.Data))
}

func TestCaptions_SRTAndVTT(t *testing.T) {
	body := `{"text": "hello world", "start": 0, "end": 2}`

	w, _ := do(t, New(), http.MethodPost, "/api/v1/captions?format=srt", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "subrip")
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:02,000\nhello world\n\n", w.Body.String())

	w, _ = do(t, New(), http.MethodPost, "/api/v1/captions?format=VTT", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/vtt")
	assert.Equal(t, "WEBVTT\n\n1\n00:00:00.000 --> 00:00:02.000\nhello world\n\n", w.Body.String())
}

func TestCaptions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		kind   string
	}{
		{"degenerate", "/api/v1/captions", `{"text": "a", "start": 5, "end": 5}`, KindDegenerateWindow},
		{"bad words per cue", "/api/v1/captions", `{"text": "a", "start": 0, "end": 5, "words_per_cue": 0}`, KindInvalidConfig},
		{"missing end", "/api/v1/captions", `{"text": "a", "start": 0}`, KindBadRequest},
		{"unknown format", "/api/v1/captions?format=txt", `{"text": "a", "start": 0, "end": 1}`, KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, New(), http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.kind, env.ErrorKind)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	big := `{"text": "` + strings.Repeat("x ", 200) + `", "start": 0, "end": 1}`
	w, env := do(t, New(WithMaxBodyBytes(64)), http.MethodPost, "/api/v1/captions", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, KindBadRequest, env.ErrorKind)
}

func TestNotFoundAndRequestID(t *testing.T) {
	s := New()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "abc", env.RequestID)
}
