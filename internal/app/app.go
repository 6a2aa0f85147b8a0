package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickprogramme/clipscribe/internal/clipboard"
	"github.com/patrickprogramme/clipscribe/internal/config"
	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/internal/media"
	"github.com/patrickprogramme/clipscribe/internal/pipeline"
	"github.com/patrickprogramme/clipscribe/internal/report"
	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/internal/transcribe"
	"github.com/patrickprogramme/clipscribe/internal/ui"
	"github.com/patrickprogramme/clipscribe/internal/yt"
	"github.com/patrickprogramme/clipscribe/pkg/chapters"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

const (
	defaultExtractTimeout = 2 * time.Minute
	dirPerm               = 0o755
	filePerm              = 0o644
)

// écart toléré entre la fin du dernier chapitre et la durée mesurée
const chapterEndTolerance model.Seconds = 0.05

var ErrSegmentsFailed = errors.New("certains segments ont échoué")

// CLIFlags contient les informations venant des flags de l'app
type CLIFlags struct {
	Source         string
	ChaptersFile   string
	TranscriptFile string
	NoClips        bool
	RefreshCache   bool
}

// Prober donne la durée d'un fichier local ; implémenté par *media.Prober.
type Prober interface {
	Duration(ctx context.Context, path string) (model.Seconds, error)
}

// App orchestre les différentes dépendances (UI, yt-dlp, ffmpeg, FS...)
type App struct {
	cfg      *config.Config
	ui       ui.Interface
	flags    *CLIFlags
	renderer *report.Renderer

	ytClient yt.Interface // initialisé à la demande si nil
	fetcher  subtitles.Fetcher
	prober   Prober
	slicer   pipeline.Slicer
	audio    transcribe.AudioExtractor
	speech   transcribe.Poster
	copyText func(string) error
	now      func() time.Time

	// vidéo téléchargée, partagée par la reconnaissance vocale et les clips
	downloaded string
}

type Option func(*App)

func WithYtClient(c yt.Interface) Option { return func(a *App) { a.ytClient = c } }
func WithFetcher(f subtitles.Fetcher) Option { return func(a *App) { a.fetcher = f } }
func WithProber(p Prober) Option { return func(a *App) { a.prober = p } }
func WithSlicer(s pipeline.Slicer) Option { return func(a *App) { a.slicer = s } }
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// WithAudioExtractor remplace l'extraction audio par ffmpeg.
func WithAudioExtractor(e transcribe.AudioExtractor) Option {
	return func(a *App) { a.audio = e }
}

// WithSpeechClient remplace le client HTTP de la reconnaissance vocale.
func WithSpeechClient(p transcribe.Poster) Option {
	return func(a *App) { a.speech = p }
}

// WithClipboard remplace l'écriture dans le presse-papier (tests).
func WithClipboard(copyText func(string) error) Option {
	return func(a *App) { a.copyText = copyText }
}

// New construit l'application. Les dépendances externes non fournies par opts
// (yt-dlp, ffprobe, ffmpeg, client HTTP) sont créées à la demande depuis cfg.
func New(cfg *config.Config, uiClient ui.Interface, flags *CLIFlags, renderer *report.Renderer, opts ...Option) *App {
	if flags == nil {
		flags = &CLIFlags{}
	}
	a := &App{
		cfg:      cfg,
		ui:       uiClient,
		flags:    flags,
		renderer: renderer,
		copyText: clipboard.WriteAll,
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Source est une vidéo résolue : ses métadonnées et, pour YouTube, le JSON brut.
type Source struct {
	Input string
	Meta  *model.Meta
	Raw   *yt.ExtractedRaw // nil pour un fichier local
	Local bool
}

// Run exécute le flux complet : source, sous-titres, segments, clips, rapport.
func (a *App) Run(ctx context.Context) error {
	input, err := a.sourceInput(ctx)
	if err != nil {
		return err
	}

	src, err := a.Resolve(ctx, input)
	if err != nil {
		return err
	}
	a.ui.PrintInfo(ctx, src.Meta.Pretty())

	// préparation dossier de sortie + sauvegardes
	outDir := a.cfg.OutputDir
	if a.cfg.SaveInSubdir {
		outDir = filepath.Join(outDir, fsutil.SanitizeFilename(src.Meta.TitleOrID()))
	}
	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	if a.cfg.SaveRawJSON && src.Raw != nil {
		pretty, err := src.Raw.PrettyJSON()
		if err != nil {
			return err
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(outDir, "metadata.json"), pretty, filePerm); err != nil {
			return fmt.Errorf("write metadata.json: %w", err)
		}
	}

	tr, closeTr, err := a.buildTranscriber(ctx, src, outDir)
	if err != nil {
		return err
	}
	defer closeTr()

	clips := a.cfg.Clips.Enabled && !a.flags.NoClips
	var mediaPath string
	var slicer pipeline.Slicer
	if clips {
		if mediaPath, err = a.mediaFile(ctx, src, outDir); err != nil {
			return err
		}
		if slicer, err = a.clipSlicer(); err != nil {
			return err
		}
	}

	p, err := pipeline.New(pipeline.Options{
		Workers:      a.cfg.Workers,
		WordsPerCue:  a.cfg.Captions.WordsPerCue,
		Format:       a.cfg.CaptionFormat(),
		Timing:       a.cfg.CaptionTiming(),
		CaptionsDir:  outDir,
		Clips:        clips,
		Vertical:     a.cfg.Clips.Vertical,
		BurnCaptions: a.cfg.Clips.BurnCaptions,
		TitleOverlay: a.cfg.Clips.TitleOverlay,
		Container:    a.cfg.Clips.Container,
	}, tr, slicer)
	if err != nil {
		return err
	}

	results, err := p.Run(ctx, pipeline.Job{
		Source:   mediaPath,
		Duration: src.Meta.Duration,
		Chapters: src.Meta.Chapters,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("opération annulée")
		}
		return err
	}
	a.printResults(ctx, results)

	if a.cfg.Report.Enabled && a.renderer != nil {
		path, err := a.writeReport(src.Meta, results, outDir)
		if err != nil {
			return err
		}
		a.ui.PrintInfo(ctx, fmt.Sprintf("Rapport écrit : %s", path))
	}
	if a.cfg.Transcript.Save {
		path, err := a.saveTranscript(src.Meta, results, outDir)
		if err != nil {
			return err
		}
		a.ui.PrintInfo(ctx, fmt.Sprintf("Transcript écrit : %s", path))
	}
	if a.cfg.Transcript.Copy {
		a.copyTranscript(ctx, results)
	}
	a.ui.PrintInfo(ctx, fmt.Sprintf("Fichiers écrits dans le répertoire :\n%s", outDir))

	if n := pipeline.Failed(results); n > 0 {
		return fmt.Errorf("%w : %d sur %d", ErrSegmentsFailed, n, len(results))
	}
	return nil
}

// Segments résout la source et retourne sa découpe, sans rien écrire.
func (a *App) Segments(ctx context.Context) (*model.Meta, []model.Segment, error) {
	input, err := a.sourceInput(ctx)
	if err != nil {
		return nil, nil, err
	}
	src, err := a.Resolve(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	segs, err := chapters.Segment(src.Meta.Duration, src.Meta.Chapters)
	if err != nil {
		return src.Meta, nil, err
	}
	return src.Meta, segs, nil
}

// sourceInput : priorité flag > clipboard > prompt
func (a *App) sourceInput(ctx context.Context) (string, error) {
	if a.flags.Source != "" {
		return a.flags.Source, nil
	}
	s, err := a.ui.GetSourceURL(ctx)
	if err != nil {
		return "", fmt.Errorf("get source: %w", err)
	}
	return s, nil
}

// Resolve construit les métadonnées d'une URL YouTube ou d'un fichier local.
// Un fichier de chapitres (--chapters) remplace les chapitres de la source.
func (a *App) Resolve(ctx context.Context, input string) (*Source, error) {
	var cf *media.ChaptersFile
	if a.flags.ChaptersFile != "" {
		f, err := media.LoadChaptersFile(a.flags.ChaptersFile)
		if err != nil {
			return nil, err
		}
		cf = &f
	}

	var src *Source
	var err error
	if yt.IsYouTubeURL(input) {
		src, err = a.resolveYouTube(ctx, input)
	} else {
		src, err = a.resolveLocal(ctx, input, cf)
	}
	if err != nil {
		return nil, err
	}

	if cf != nil {
		src.Meta.Chapters = cf.Chapters
		if cf.Duration != nil && src.Meta.Duration <= 0 {
			src.Meta.Duration = *cf.Duration
		}
	}
	clampChapterEnds(src.Meta)
	return src, nil
}

// clampChapterEnds ramène à la durée les fins de chapitre qui la dépassent
// de moins de chapterEndTolerance (arrondis de yt-dlp, ffprobe ou d'un fichier édité).
// Au-delà, la découpe rejette les chapitres.
func clampChapterEnds(m *model.Meta) {
	total := m.Duration
	if total <= 0 {
		return
	}
	for i, c := range m.Chapters {
		if c.End != nil && *c.End > total && *c.End-total <= chapterEndTolerance {
			end := total
			m.Chapters[i].End = &end
		}
	}
}

func (a *App) resolveYouTube(ctx context.Context, url string) (*Source, error) {
	if a.ytClient == nil {
		dl, _, err := yt.InitYtDlp(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("yt init: %w", err)
		}
		a.ytClient = dl
	}

	exCtx, exCancel := context.WithTimeout(ctx, defaultExtractTimeout)
	defer exCancel()

	raw, err := a.ytClient.ExtractRaw(exCtx, url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("opération annulée")
		}
		return nil, fmt.Errorf("extract raw: %w", err)
	}
	raw.LogWarnings()

	meta, err := yt.ParseYTDLP(raw.JSON)
	if err != nil {
		return nil, fmt.Errorf("parse ytdlp: %w", err)
	}
	return &Source{Input: url, Meta: meta, Raw: raw}, nil
}

func (a *App) resolveLocal(ctx context.Context, path string, cf *media.ChaptersFile) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source introuvable (ni URL YouTube ni fichier) : %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("la source %s est un répertoire", path)
	}

	name := filepath.Base(path)
	meta := &model.Meta{
		ID:        name,
		Title:     name[:len(name)-len(filepath.Ext(name))],
		SourceURL: path,
	}

	// la durée du fichier de chapitres évite d'appeler ffprobe
	if cf != nil && cf.Duration != nil {
		meta.Duration = *cf.Duration
	} else {
		prober, err := a.durationProber()
		if err != nil {
			return nil, err
		}
		if meta.Duration, err = prober.Duration(ctx, path); err != nil {
			return nil, err
		}
	}
	return &Source{Input: path, Meta: meta, Local: true}, nil
}

func (a *App) durationProber() (Prober, error) {
	if a.prober != nil {
		return a.prober, nil
	}
	path, err := media.LookPath(a.cfg.FFmpeg.FFprobeName, a.cfg.FFmpeg.ResolvedProbePath)
	if err != nil {
		return nil, err
	}
	p, err := media.NewProber(path)
	if err != nil {
		return nil, err
	}
	a.prober = p
	return p, nil
}

func (a *App) clipSlicer() (pipeline.Slicer, error) {
	if a.slicer != nil {
		return a.slicer, nil
	}
	path, err := media.LookPath(a.cfg.FFmpeg.Name, a.cfg.FFmpeg.ResolvedPath)
	if err != nil {
		return nil, err
	}
	s, err := media.NewSlicer(path,
		media.WithEncoding(a.cfg.Clips.Preset, a.cfg.Clips.CRF),
		media.WithBlur(a.cfg.Clips.Blur),
		media.WithStyle(a.clipStyle()),
	)
	if err != nil {
		return nil, err
	}
	a.slicer = s
	return s, nil
}

func (a *App) clipStyle() media.Style {
	st := a.cfg.Clips.Style
	return media.Style{
		FontSize:      st.FontSize,
		FontColor:     st.FontColor,
		TitleFontSize: st.TitleFontSize,
		TitlePosition: st.TitlePosition,
	}
}

// mediaFile retourne le fichier média : le fichier local, ou la vidéo téléchargée
// (une seule fois par run).
func (a *App) mediaFile(ctx context.Context, src *Source, outDir string) (string, error) {
	if src.Local {
		return src.Input, nil
	}
	if a.downloaded != "" {
		return a.downloaded, nil
	}
	a.ui.PrintInfo(ctx, "Téléchargement de la vidéo...")
	path, err := a.ytClient.Download(ctx, src.Input, outDir)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}
	a.downloaded = path
	return path, nil
}

func (a *App) printResults(ctx context.Context, results []pipeline.SegmentResult) {
	for _, r := range results {
		if r.Err != nil {
			a.ui.PrintError(ctx, fmt.Sprintf("✗ %s : %v", r.Segment, r.Err))
			continue
		}
		a.ui.PrintInfo(ctx, fmt.Sprintf("✓ %s (%d sous-titres)", r.Segment, len(r.Cues)))
	}
}
