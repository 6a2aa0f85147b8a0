package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// DefaultChunk est la durée maximale d'un extrait envoyé au service.
const DefaultChunk model.Seconds = 30

var ErrSpeechResponse = errors.New("transcribe: invalid speech-to-text response")

// AudioExtractor écrit l'audio d'une fenêtre de src dans dst.
type AudioExtractor interface {
	Extract(ctx context.Context, src string, w model.Window, dst string) error
}

// Poster envoie un corps HTTP et retourne la réponse (fetch.Client).
type Poster interface {
	Post(ctx context.Context, rawURL, contentType string, body []byte, header http.Header) ([]byte, error)
}

// SpeechConfig décrit un endpoint de transcription compatible OpenAI
// (POST multipart, champs file et model).
type SpeechConfig struct {
	Endpoint string
	Model    string
	Language string
	APIKey   string
	Chunk    model.Seconds
}

// AudioTranscriber extrait l'audio de chaque fenêtre par morceaux et
// l'envoie à un service de reconnaissance vocale.
type AudioTranscriber struct {
	src     string
	extract AudioExtractor
	client  Poster
	cfg     SpeechConfig
	tmpDir  string
}

func NewAudioTranscriber(src string, ex AudioExtractor, client Poster, cfg SpeechConfig) (*AudioTranscriber, error) {
	if src == "" {
		return nil, errors.New("transcribe: empty media path")
	}
	if ex == nil || client == nil {
		return nil, errors.New("transcribe: extractor and client are required")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("transcribe: empty speech endpoint")
	}
	if cfg.Chunk <= 0 {
		cfg.Chunk = DefaultChunk
	}
	return &AudioTranscriber{src: src, extract: ex, client: client, cfg: cfg, tmpDir: os.TempDir()}, nil
}

// Transcribe concatène le texte reconnu de chaque morceau de w.
// Le premier morceau en échec fait échouer toute la fenêtre.
func (a *AudioTranscriber) Transcribe(ctx context.Context, w model.Window) (string, error) {
	dir, err := os.MkdirTemp(a.tmpDir, "clipscribe-speech-")
	if err != nil {
		return "", fmt.Errorf("transcribe: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var parts []string
	for i, c := range chunks(w, a.cfg.Chunk) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		wav := filepath.Join(dir, fmt.Sprintf("chunk_%03d.wav", i))
		if err := a.extract.Extract(ctx, a.src, c, wav); err != nil {
			return "", err
		}
		text, err := a.recognize(ctx, wav)
		if err != nil {
			return "", fmt.Errorf("chunk %s-%s: %w", c.Start.TimestampHHMMSS(), c.End.TimestampHHMMSS(), err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	slog.Debug("speech transcribed", slog.String("src", a.src), slog.Int("chunks", len(parts)))
	return strings.Join(parts, " "), nil
}

func (a *AudioTranscriber) recognize(ctx context.Context, wav string) (string, error) {
	body, contentType, err := a.form(wav)
	if err != nil {
		return "", err
	}
	header := http.Header{}
	if a.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	resp, err := a.client.Post(ctx, a.cfg.Endpoint, contentType, body, header)
	if err != nil {
		return "", err
	}
	return parseSpeech(resp)
}

// form construit le corps multipart : file, model, language, response_format.
func (a *AudioTranscriber) form(wav string) ([]byte, string, error) {
	f, err := os.Open(wav)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: open chunk: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(wav))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("transcribe: read chunk: %w", err)
	}
	fields := [][2]string{{"model", a.cfg.Model}, {"language", a.cfg.Language}, {"response_format", "json"}}
	for _, kv := range fields {
		if kv[1] == "" {
			continue
		}
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// speechResponse couvre les réponses OpenAI, LocalAI et whisperx :
// text au premier niveau, ou à défaut la liste des segments.
type speechResponse struct {
	Text     *string `json:"text"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

func parseSpeech(data []byte) (string, error) {
	var r speechResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSpeechResponse, err)
	}
	if r.Text != nil {
		return strings.Join(strings.Fields(*r.Text), " "), nil
	}
	if r.Segments == nil {
		return "", fmt.Errorf("%w: no text field", ErrSpeechResponse)
	}
	var parts []string
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// chunks découpe w en morceaux consécutifs d'au plus size secondes.
func chunks(w model.Window, size model.Seconds) []model.Window {
	var out []model.Window
	for s := w.Start; s < w.End; s += size {
		out = append(out, model.Window{Start: s, End: min(s+size, w.End)})
	}
	return out
}
