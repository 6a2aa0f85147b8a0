// Package pipeline découpe une vidéo en segments et produit, pour chacun,
// un fichier de sous-titres et (optionnellement) un clip.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/internal/media"
	"github.com/patrickprogramme/clipscribe/internal/report"
	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/internal/transcribe"
	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"github.com/patrickprogramme/clipscribe/pkg/chapters"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

var ErrNoSource = errors.New("no media file to slice")

// Slicer produit un clip ; implémenté par *media.Slicer.
type Slicer interface {
	Slice(ctx context.Context, src string, seg model.Segment, dst string, opts media.SliceOptions) error
}

// Options règle un passage du pipeline.
type Options struct {
	Workers     int
	WordsPerCue int
	Format      model.Format
	Timing      model.Timing

	// Dossier des fichiers de sous-titres
	CaptionsDir string
	// Dossier des clips ; CaptionsDir si vide
	ClipsDir string

	Clips        bool
	Vertical     bool
	BurnCaptions bool
	// TitleOverlay dessine le titre du segment dans son clip
	TitleOverlay bool
	Container    string
}

// Job décrit la vidéo à traiter.
type Job struct {
	// Fichier média local ; vide si aucun clip n'est demandé
	Source   string
	Duration model.Seconds
	Chapters []model.RawChapter
}

// SegmentResult est le bilan d'un segment. Err ne concerne que ce segment.
type SegmentResult struct {
	Index       int // 1-based
	Segment     model.Segment
	Text        string
	Cues        []model.Cue
	CaptionPath string
	ClipPath    string
	Err         error
}

// Pipeline traite les segments en parallèle (Options.Workers au plus).
type Pipeline struct {
	opts   Options
	tr     transcribe.Transcriber
	slicer Slicer
}

// New valide opts. tr peut être nil (sous-titres vides) ; slicer peut être nil si Options.Clips est faux.
func New(opts Options, tr transcribe.Transcriber, slicer Slicer) (*Pipeline, error) {
	if opts.WordsPerCue <= 0 {
		return nil, fmt.Errorf("%w: words_per_cue = %d", captions.ErrInvalidConfig, opts.WordsPerCue)
	}
	if !opts.Format.IsCaption() {
		return nil, fmt.Errorf("%w: format %q", captions.ErrInvalidConfig, opts.Format)
	}
	if opts.Timing == "" {
		opts.Timing = model.TimingRelative
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.CaptionsDir == "" {
		opts.CaptionsDir = "."
	}
	if opts.ClipsDir == "" {
		opts.ClipsDir = opts.CaptionsDir
	}
	opts.Container = strings.TrimPrefix(opts.Container, ".")
	if opts.Container == "" {
		opts.Container = "mp4"
	}
	if opts.Clips && slicer == nil {
		return nil, fmt.Errorf("clips demandés sans découpeur")
	}
	return &Pipeline{opts: opts, tr: tr, slicer: slicer}, nil
}

// Segments calcule la partition de la vidéo.
func (p *Pipeline) Segments(job Job) ([]model.Segment, error) {
	return chapters.Segment(job.Duration, job.Chapters)
}

// Run traite tous les segments. L'erreur retournée est fatale (segmentation impossible,
// contexte annulé) ; les échecs individuels sont dans SegmentResult.Err.
func (p *Pipeline) Run(ctx context.Context, job Job) ([]SegmentResult, error) {
	segs, err := p.Segments(job)
	if err != nil {
		return nil, err
	}
	if p.opts.Clips && job.Source == "" {
		return nil, ErrNoSource
	}
	for _, dir := range []string{p.opts.CaptionsDir, p.opts.ClipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	start := time.Now()
	results := make([]SegmentResult, len(segs))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, seg := range segs {
		i, seg := i, seg
		g.Go(func() error {
			results[i] = p.process(ctx, job, i+1, len(segs), seg)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	slog.Info("pipeline done",
		slog.Int("segments", len(segs)),
		slog.Int("failed", Failed(results)),
		slog.Duration("elapsed", time.Since(start)))
	return results, nil
}

func (p *Pipeline) process(ctx context.Context, job Job, index, count int, seg model.Segment) SegmentResult {
	res := SegmentResult{Index: index, Segment: seg}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Text = transcribe.TextOrEmpty(ctx, p.tr, seg.Window())

	w := seg.Window()
	if p.opts.Timing == model.TimingRelative {
		w = model.Window{Start: 0, End: seg.Duration()}
	}
	cues, err := captions.TimeWindow(res.Text, w, p.opts.WordsPerCue)
	if err != nil {
		res.Err = fmt.Errorf("segment %d (%s) : %w", index, seg.Title, err)
		return res
	}
	res.Cues = cues

	base := fsutil.SegmentBaseName(index, count, seg.Title)
	data, err := subtitles.EncodeBytes(p.opts.Format, cues)
	if err != nil {
		res.Err = err
		return res
	}
	captionPath := filepath.Join(p.opts.CaptionsDir, base+p.opts.Format.Extension())
	if err := fsutil.WriteFileAtomic(captionPath, data, 0o644); err != nil {
		res.Err = fmt.Errorf("écriture de %s : %w", captionPath, err)
		return res
	}
	res.CaptionPath = captionPath

	if !p.opts.Clips {
		return res
	}

	sliceOpts := media.SliceOptions{Vertical: p.opts.Vertical}
	if p.opts.TitleOverlay {
		sliceOpts.Title = seg.Title
	}
	if p.opts.BurnCaptions && len(cues) > 0 {
		burnPath, cleanup, err := p.burnFile(base, captionPath, seg, cues)
		if err != nil {
			res.Err = err
			return res
		}
		defer cleanup()
		sliceOpts.CaptionsPath = burnPath
	}

	clipPath := filepath.Join(p.opts.ClipsDir, base+"."+p.opts.Container)
	if err := p.slicer.Slice(ctx, job.Source, seg, clipPath, sliceOpts); err != nil {
		res.Err = fmt.Errorf("segment %d (%s) : %w", index, seg.Title, err)
		return res
	}
	res.ClipPath = clipPath
	return res
}

// burnFile retourne un fichier de sous-titres aux timings du clip. En timing absolu,
// une copie décalée temporaire est écrite puis supprimée par cleanup.
func (p *Pipeline) burnFile(base, captionPath string, seg model.Segment, cues []model.Cue) (string, func(), error) {
	if p.opts.Timing == model.TimingRelative {
		return captionPath, func() {}, nil
	}
	data, err := subtitles.EncodeBytes(model.FormatSRT, captions.Shift(cues, -seg.Start))
	if err != nil {
		return "", nil, err
	}
	tmp := filepath.Join(p.opts.ClipsDir, "."+base+".burn.srt")
	if err := fsutil.WriteFileAtomic(tmp, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("écriture de %s : %w", tmp, err)
	}
	return tmp, func() { _ = os.Remove(tmp) }, nil
}

// Rows convertit les résultats en lignes du rapport.
func Rows(results []SegmentResult) []report.SegmentRow {
	rows := make([]report.SegmentRow, 0, len(results))
	for _, r := range results {
		row := report.SegmentRow{
			Index: r.Index,
			Title: r.Segment.Title,
			Start: r.Segment.Start,
			End:   r.Segment.End,
			Cues:  len(r.Cues),
			Text:  r.Text,
		}
		if r.CaptionPath != "" {
			row.CaptionFile = filepath.Base(r.CaptionPath)
		}
		if r.ClipPath != "" {
			row.ClipFile = filepath.Base(r.ClipPath)
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// Failed retourne le nombre de segments en échec.
func Failed(results []SegmentResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
