package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

var ErrExtractFailed = errors.New("media: audio extraction failed")

// Format des extraits envoyés à la reconnaissance vocale : WAV PCM mono 16 kHz.
const (
	audioCodec      = "pcm_s16le"
	audioSampleRate = "16000"
	AudioExt        = ".wav"
)

// AudioExtractor écrit la piste audio d'une fenêtre d'un fichier média.
type AudioExtractor struct {
	ffmpegPath string
	cmd        commandRunner
}

type AudioExtractorOption func(*AudioExtractor)

// WithExtractorCommandRunner remplace l'exécution des commandes (tests).
func WithExtractorCommandRunner(r commandRunner) AudioExtractorOption {
	return func(e *AudioExtractor) { e.cmd = r }
}

func NewAudioExtractor(ffmpegPath string, opts ...AudioExtractorOption) (*AudioExtractor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg path cannot be empty: %w", ErrNotFound)
	}
	e := &AudioExtractor{ffmpegPath: ffmpegPath, cmd: osCommandRunner{}}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Extract écrit dst, l'audio de src sur [w.Start, w.End], en WAV mono 16 kHz.
func (e *AudioExtractor) Extract(ctx context.Context, src string, w model.Window, dst string) error {
	if !(w.End > w.Start) || w.Start < 0 {
		return fmt.Errorf("%w: %s-%s", ErrInvalidRange, w.Start.FFmpeg(), w.End.FFmpeg())
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", w.Start.FFmpeg(),
		"-to", w.End.FFmpeg(),
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", audioSampleRate,
		"-c:a", audioCodec,
		dst,
	}
	out, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrExtractFailed, dst, err, tail(out, 20))
	}
	return nil
}
