package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/patrickprogramme/clipscribe/internal/media"
	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Validate vérifie les valeurs qui rendraient le traitement impossible.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config nil")
	}
	var errs []error
	if c.Captions.WordsPerCue <= 0 {
		errs = append(errs, fmt.Errorf("%w: captions.words_per_cue doit être > 0 (reçu %d)", captions.ErrInvalidConfig, c.Captions.WordsPerCue))
	}
	if f, err := model.ParseFormat(c.Captions.Format); err != nil || !f.IsCaption() {
		errs = append(errs, fmt.Errorf("%w: captions.format doit être srt ou vtt (reçu %q)", captions.ErrInvalidConfig, c.Captions.Format))
	}
	if _, err := model.ParseTiming(c.Captions.Timing); err != nil {
		errs = append(errs, fmt.Errorf("%w: captions.timing doit être relative ou absolute (reçu %q)", captions.ErrInvalidConfig, c.Captions.Timing))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers doit être >= 1", captions.ErrInvalidConfig))
	}
	if c.Clips.CRF < 0 || c.Clips.CRF > 51 {
		errs = append(errs, fmt.Errorf("%w: clips.crf doit être entre 0 et 51", captions.ErrInvalidConfig))
	}
	if c.Clips.Blur < 0 {
		errs = append(errs, fmt.Errorf("%w: clips.blur doit être >= 0", captions.ErrInvalidConfig))
	}
	if c.Clips.Style.FontSize <= 0 || c.Clips.Style.TitleFontSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: clips.style : tailles de police > 0 attendues", captions.ErrInvalidConfig))
	}
	if _, _, _, err := media.ParseHexColor(c.Clips.Style.FontColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: clips.style.font_color : %v", captions.ErrInvalidConfig, err))
	}
	if p := c.Clips.Style.TitlePosition; p != media.TitleTop && p != media.TitleBottom {
		errs = append(errs, fmt.Errorf("%w: clips.style.title_position doit être top ou bottom (reçu %q)", captions.ErrInvalidConfig, p))
	}
	if c.Speech.Enabled {
		if u, err := url.ParseRequestURI(c.Speech.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("%w: speech.endpoint doit être une URL http(s) (reçu %q)", captions.ErrInvalidConfig, c.Speech.Endpoint))
		}
		if c.Speech.ChunkSeconds <= 0 {
			errs = append(errs, fmt.Errorf("%w: speech.chunk_seconds doit être > 0", captions.ErrInvalidConfig))
		}
	}
	return errors.Join(errs...)
}

// CaptionFormat retourne le format de sous-titres validé.
func (c *Config) CaptionFormat() model.Format {
	f, err := model.ParseFormat(c.Captions.Format)
	if err != nil || !f.IsCaption() {
		return model.FormatSRT
	}
	return f
}

// CaptionTiming retourne le repère temporel validé.
func (c *Config) CaptionTiming() model.Timing {
	t, err := model.ParseTiming(c.Captions.Timing)
	if err != nil {
		return model.TimingRelative
	}
	return t
}

// ValidateBinaries retourne des avertissements (non fatals) pour yt-dlp et ffmpeg introuvables.
func (c *Config) ValidateBinaries() (warnings []string) {
	if c == nil {
		return nil
	}
	c.ResolveYtDlpPath()
	c.ResolveFFmpegPath()

	check := func(label, p string) {
		if w := binaryWarning(label, p); w != "" {
			warnings = append(warnings, w)
		}
	}
	check("yt-dlp", c.YtDlp.ResolvedPath)
	check("ffmpeg", c.FFmpeg.ResolvedPath)
	check("ffprobe", c.FFmpeg.ResolvedProbePath)
	return warnings
}

func binaryWarning(label, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Sprintf("aucun chemin résolu pour %s", label)
	}
	// simple nom : recherche dans PATH
	if !strings.ContainsRune(filepath.ToSlash(p), '/') {
		if _, err := exec.LookPath(p); err != nil {
			return fmt.Sprintf("%s introuvable dans le PATH (%s)", label, p)
		}
		return ""
	}
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Sprintf("%s introuvable à l'emplacement configuré : %s", label, p)
	}
	if info.IsDir() {
		return fmt.Sprintf("le chemin configuré pour %s est un répertoire : %s", label, p)
	}
	return ""
}
