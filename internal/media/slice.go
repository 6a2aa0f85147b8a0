package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Paramètres d'encodage par défaut des clips.
const (
	defaultVideoCodec = "libx264"
	defaultAudioCodec = "aac"
	defaultPreset     = "slow"
	defaultCRF        = 17
	defaultBlur       = 20
)

// Slicer découpe un segment d'un fichier source en clip ré-encodé.
type Slicer struct {
	ffmpegPath string
	preset     string
	crf        int
	blur       int
	style      Style
	cmd        commandRunner
}

type SlicerOption func(*Slicer)

// WithSlicerCommandRunner remplace l'exécution des commandes (tests).
func WithSlicerCommandRunner(r commandRunner) SlicerOption {
	return func(s *Slicer) { s.cmd = r }
}

// WithEncoding fixe le preset x264 et le CRF ; valeurs vides ou négatives ignorées.
func WithEncoding(preset string, crf int) SlicerOption {
	return func(s *Slicer) {
		if preset != "" {
			s.preset = preset
		}
		if crf >= 0 {
			s.crf = crf
		}
	}
}

// WithBlur fixe le rayon du flou de l'arrière-plan en mode vertical.
func WithBlur(radius int) SlicerOption {
	return func(s *Slicer) {
		if radius > 0 {
			s.blur = radius
		}
	}
}

// WithStyle règle la police des sous-titres et du titre incrustés.
func WithStyle(st Style) SlicerOption {
	return func(s *Slicer) { s.style = st.withDefaults() }
}

func NewSlicer(ffmpegPath string, opts ...SlicerOption) (*Slicer, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg path cannot be empty: %w", ErrNotFound)
	}
	s := &Slicer{
		ffmpegPath: ffmpegPath,
		preset:     defaultPreset,
		crf:        defaultCRF,
		blur:       defaultBlur,
		style:      DefaultStyle,
		cmd:        osCommandRunner{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// SliceOptions règle un clip.
type SliceOptions struct {
	// Vertical produit un 9:16 : la vidéo d'origine centrée sur un fond flouté.
	Vertical bool
	// CaptionsPath, si non vide, incruste ce fichier SRT/VTT (timings relatifs au clip).
	CaptionsPath string
	// Title, si non vide, est dessiné sur toute la durée du clip.
	Title string
}

// Slice écrit dst, le passage [seg.Start, seg.End] de src.
func (s *Slicer) Slice(ctx context.Context, src string, seg model.Segment, dst string, opts SliceOptions) error {
	if !(seg.End > seg.Start) || seg.Start < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRange, seg)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}

	args := s.buildArgs(src, seg, dst, opts)
	start := time.Now()
	out, err := s.cmd.CombinedOutput(ctx, s.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrSliceFailed, dst, err, tail(out, 20))
	}
	slog.Info("clip written",
		slog.String("clip", filepath.Base(dst)),
		slog.String("range", fmt.Sprintf("%s-%s", seg.Start.TimestampHHMMSS(), seg.End.TimestampHHMMSS())),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Slicer) buildArgs(src string, seg model.Segment, dst string, opts SliceOptions) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", seg.Start.FFmpeg(),
		"-to", seg.End.FFmpeg(),
		"-i", src,
	}

	overlays := s.overlays(opts)
	switch {
	case opts.Vertical:
		args = append(args,
			"-filter_complex", verticalGraph(s.blur, overlays),
			"-map", "[v]", "-map", "0:a?",
		)
	case len(overlays) > 0:
		args = append(args, "-vf", strings.Join(overlays, ","))
	}

	args = append(args,
		"-c:v", defaultVideoCodec,
		"-preset", s.preset,
		"-crf", fmt.Sprint(s.crf),
		"-c:a", defaultAudioCodec,
		"-movflags", "+faststart",
		dst,
	)
	return args
}

// overlays : sous-titres puis titre, appliqués à l'image finale.
func (s *Slicer) overlays(opts SliceOptions) []string {
	var filters []string
	if opts.CaptionsPath != "" {
		filters = append(filters, s.style.subtitlesFilter(opts.CaptionsPath))
	}
	if title := strings.TrimSpace(opts.Title); title != "" {
		filters = append(filters, s.style.titleFilter(title))
	}
	return filters
}

// verticalGraph : fond = source étirée au format 9:16 puis floutée, premier plan = source
// centrée à sa taille d'origine. Dimensions finales arrondies au pair pour libx264.
func verticalGraph(blur int, overlays []string) string {
	var b strings.Builder
	b.WriteString("[0:v]split=2[bg][fg];")
	b.WriteString("[bg]scale=w='if(gt(a,9/16),iw,ih*9/16)':h='if(gt(a,9/16),iw*16/9,ih)',")
	fmt.Fprintf(&b, "boxblur=%d:1[blur];", blur)
	b.WriteString("[blur][fg]overlay=(W-w)/2:(H-h)/2,scale=trunc(iw/2)*2:trunc(ih/2)*2")
	for _, f := range overlays {
		b.WriteString(",")
		b.WriteString(f)
	}
	b.WriteString("[v]")
	return b.String()
}

// escapeFilterValue échappe une valeur entre quotes dans un graphe de filtres ffmpeg.
func escapeFilterValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `'\''`)
	return r.Replace(v)
}

// tail garde les n dernières lignes d'une sortie de commande.
func tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
