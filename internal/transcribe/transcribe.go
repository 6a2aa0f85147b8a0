// Package transcribe fournit le texte prononcé dans une fenêtre de temps.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/patrickprogramme/clipscribe/internal/store"
	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Transcriber retourne le texte d'une fenêtre [Start, End).
type Transcriber interface {
	Transcribe(ctx context.Context, w model.Window) (string, error)
}

// TextOrEmpty appelle t et dégrade toute erreur en texte vide (avec un warning).
// Une transcription ratée ne bloque pas la génération des autres segments.
func TextOrEmpty(ctx context.Context, t Transcriber, w model.Window) string {
	if t == nil {
		return ""
	}
	text, err := t.Transcribe(ctx, w)
	if err != nil {
		slog.Warn("transcription failed, using empty text",
			slog.String("window", fmt.Sprintf("%s-%s", w.Start.TimestampHHMMSS(), w.End.TimestampHHMMSS())),
			slog.Any("error", err))
		return ""
	}
	return text
}

// --- piste de sous-titres ---------------------------------------------------

// TrackTranscriber lit le texte dans une piste json3 déjà téléchargée.
type TrackTranscriber struct {
	track subtitles.Track
}

func NewTrackTranscriber(tr subtitles.Track) *TrackTranscriber {
	return &TrackTranscriber{track: tr}
}

// Transcribe retourne les phrases qui commencent dans w, séparées par un espace.
func (t *TrackTranscriber) Transcribe(ctx context.Context, w model.Window) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(strings.Split(t.track.TextIn(w), "\n"), " "), nil
}

// --- texte statique ---------------------------------------------------------

// StaticTranscriber répartit un texte complet uniformément sur la durée du média.
// Le mot i est placé à total*i/n ; chaque fenêtre reçoit les mots placés dans [Start, End).
type StaticTranscriber struct {
	words []string
	total model.Seconds
}

var ErrNoDuration = errors.New("transcribe: media duration must be positive")

func NewStaticTranscriber(text string, total model.Seconds) (*StaticTranscriber, error) {
	if !(total > 0) || math.IsInf(float64(total), 0) {
		return nil, fmt.Errorf("%w: %v", ErrNoDuration, total)
	}
	return &StaticTranscriber{words: strings.Fields(text), total: total}, nil
}

func (s *StaticTranscriber) Transcribe(ctx context.Context, w model.Window) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lo, hi := s.index(w.Start), s.index(w.End)
	if lo >= hi {
		return "", nil
	}
	return strings.Join(s.words[lo:hi], " "), nil
}

// index : premier mot placé à t ou après.
func (s *StaticTranscriber) index(t model.Seconds) int {
	n := len(s.words)
	i := int(math.Ceil(float64(t) * float64(n) / float64(s.total)))
	return max(0, min(i, n))
}

// --- cache ------------------------------------------------------------------

// CachedTranscriber interroge le cache avant le transcripteur sous-jacent.
// Les erreurs de cache sont journalisées et ignorées.
type CachedTranscriber struct {
	inner    Transcriber
	cache    store.Cache
	sourceID string
	lang     string
}

func NewCachedTranscriber(inner Transcriber, cache store.Cache, sourceID, lang string) *CachedTranscriber {
	return &CachedTranscriber{inner: inner, cache: cache, sourceID: sourceID, lang: lang}
}

func (c *CachedTranscriber) Transcribe(ctx context.Context, w model.Window) (string, error) {
	k := store.KeyFor(c.sourceID, c.lang, w)
	text, err := c.cache.Get(ctx, k)
	if err == nil {
		slog.Debug("transcript cache hit", slog.String("source", c.sourceID), slog.Int64("start_ms", k.StartMs))
		return text, nil
	}
	if !errors.Is(err, store.ErrMiss) {
		slog.Warn("transcript cache read failed", slog.Any("error", err))
	}

	text, err = c.inner.Transcribe(ctx, w)
	if err != nil {
		return "", err
	}
	if perr := c.cache.Put(ctx, k, text); perr != nil {
		slog.Warn("transcript cache write failed", slog.Any("error", perr))
	}
	return text, nil
}
