package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/internal/fetch"
	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/internal/media"
	"github.com/patrickprogramme/clipscribe/internal/pipeline"
	"github.com/patrickprogramme/clipscribe/internal/report"
	"github.com/patrickprogramme/clipscribe/internal/store"
	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/internal/transcribe"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// buildTranscriber choisit la source du texte : fichier --transcript, sinon piste
// YouTube, sinon reconnaissance vocale si speech.enabled. Les pistes et la
// reconnaissance vocale passent par le cache sqlite si activé. nil si aucun
// texte n'est disponible. La fonction retournée libère le cache.
func (a *App) buildTranscriber(ctx context.Context, src *Source, outDir string) (transcribe.Transcriber, func(), error) {
	noop := func() {}

	if a.flags.TranscriptFile != "" {
		text, err := os.ReadFile(a.flags.TranscriptFile)
		if err != nil {
			return nil, noop, fmt.Errorf("lecture de la transcription : %w", err)
		}
		tr, err := transcribe.NewStaticTranscriber(string(text), src.Meta.Duration)
		if errors.Is(err, transcribe.ErrNoDuration) {
			return nil, noop, fmt.Errorf("durée de la vidéo inconnue, renseigner \"duration\" dans le fichier --chapters : %w", err)
		}
		if err != nil {
			return nil, noop, err
		}
		return tr, noop, nil
	}

	if src.Local {
		if !a.cfg.Speech.Enabled {
			a.ui.PrintInfo(ctx, "Aucune transcription fournie (--transcript ou speech.enabled) : sous-titres vides.")
			return nil, noop, nil
		}
		return a.speechTranscriber(ctx, src, src.Input, outDir)
	}

	sd, err := a.FetchSubtitleDownload(ctx, src.Meta)
	if err != nil {
		return nil, noop, err
	}
	if sd.Data == nil {
		if !a.cfg.Speech.Enabled {
			return nil, noop, nil
		}
		return a.speechTranscriber(ctx, src, src.Meta.ID, outDir)
	}
	if a.cfg.SaveRawSubs {
		if err := SaveSubtitleDownload(sd, outDir); err != nil {
			return nil, noop, err
		}
	}

	track, err := sd.Parse()
	if err != nil {
		return nil, noop, fmt.Errorf("parse subtitles: %w", err)
	}
	return a.withCache(ctx, transcribe.NewTrackTranscriber(track), src.Meta.ID, sd.Track.Lang)
}

// speechTranscriber transcrit l'audio du média de src ; les textes sont mis en
// cache sous sourceID, langue préfixée par "speech:".
func (a *App) speechTranscriber(ctx context.Context, src *Source, sourceID, outDir string) (transcribe.Transcriber, func(), error) {
	noop := func() {}
	path, err := a.mediaFile(ctx, src, outDir)
	if err != nil {
		return nil, noop, err
	}
	if a.audio == nil {
		ffmpeg, err := media.LookPath(a.cfg.FFmpeg.Name, a.cfg.FFmpeg.ResolvedPath)
		if err != nil {
			return nil, noop, err
		}
		ex, err := media.NewAudioExtractor(ffmpeg)
		if err != nil {
			return nil, noop, err
		}
		a.audio = ex
	}
	if a.speech == nil {
		a.speech = fetch.New(
			fetch.WithTimeout(a.cfg.Speech.Timeout),
			fetch.WithMaxBytes(a.cfg.Fetch.MaxBytes),
			fetch.WithRetry(a.retryConfig()),
		)
	}

	sc := a.cfg.Speech
	tr, err := transcribe.NewAudioTranscriber(path, a.audio, a.speech, transcribe.SpeechConfig{
		Endpoint: sc.Endpoint,
		Model:    sc.Model,
		Language: sc.Language,
		APIKey:   sc.APIKey,
		Chunk:    model.Seconds(sc.ChunkSeconds),
	})
	if err != nil {
		return nil, noop, err
	}
	a.ui.PrintInfo(ctx, "Transcription par reconnaissance vocale...")
	return a.withCache(ctx, tr, sourceID, "speech:"+sc.Language)
}

// withCache enveloppe tr dans le cache sqlite (purgé pour sourceID si --refresh-cache).
// Un cache indisponible n'est pas fatal.
func (a *App) withCache(ctx context.Context, tr transcribe.Transcriber, sourceID, lang string) (transcribe.Transcriber, func(), error) {
	noop := func() {}
	if !a.cfg.Cache.Enabled {
		return tr, noop, nil
	}
	st, err := store.Open(a.cfg.CachePath())
	if err != nil {
		a.ui.PrintError(ctx, fmt.Sprintf("warning: cache indisponible : %v", err))
		return tr, noop, nil
	}
	if a.flags.RefreshCache {
		if err := st.Purge(ctx, sourceID); err != nil {
			_ = st.Close()
			return nil, noop, fmt.Errorf("purge du cache : %w", err)
		}
	}
	return transcribe.NewCachedTranscriber(tr, st, sourceID, lang), func() { _ = st.Close() }, nil
}

// FetchSubtitleDownload télécharge la piste de sous-titres choisie selon la config.
// Sans piste disponible, retourne un Download vide et nil.
func (a *App) FetchSubtitleDownload(ctx context.Context, m *model.Meta) (subtitles.Download, error) {
	if a.fetcher == nil {
		a.fetcher = fetch.New(
			fetch.WithTimeout(a.cfg.Fetch.Timeout),
			fetch.WithMaxBytes(a.cfg.Fetch.MaxBytes),
			fetch.WithRate(a.cfg.Fetch.RequestsPerSecond),
			fetch.WithRetry(a.retryConfig()),
		)
	}

	sd, err := subtitles.DownloadTrack(ctx, a.fetcher, m, a.cfg.Captions.PreferManualSubs, a.cfg.Captions.Language)
	if err != nil {
		// s'il n'y a pas de sous-titres, ce n'est pas une erreur fatale
		if errors.Is(err, subtitles.ErrNoSubtitle) {
			a.ui.PrintInfo(ctx, "Aucun sous-titre disponible.")
			return subtitles.Download{}, nil
		}
		if code := fetch.StatusCode(err); code != 0 {
			return subtitles.Download{}, fmt.Errorf("téléchargement des sous-titres (HTTP %d) : %w", code, err)
		}
		return subtitles.Download{}, err
	}
	return sd, nil
}

func (a *App) retryConfig() fetch.RetryConfig {
	rc := fetch.DefaultRetryConfig
	rc.MaxRetries = a.cfg.Fetch.MaxRetries
	return rc
}

// SaveSubtitleDownload sauvegarde le json3 de sd dans outDir (indenté si possible).
func SaveSubtitleDownload(sd subtitles.Download, outDir string) error {
	if len(sd.Data) == 0 {
		return fmt.Errorf("SaveSubtitleDownload: pas de données dans Download")
	}

	data := sd.Data
	if pretty, perr := sd.PrettyJSON(); perr == nil && len(pretty) > 0 {
		data = pretty
	}

	path := filepath.Join(outDir, sd.Filename())
	if err := fsutil.WriteFileAtomic(path, data, filePerm); err != nil {
		return fmt.Errorf("write subtitle %s: %w", path, err)
	}
	return nil
}

// writeReport rend le rapport Markdown et l'écrit dans outDir (écrasé s'il existe).
func (a *App) writeReport(m *model.Meta, results []pipeline.SegmentResult, outDir string) (string, error) {
	data := report.NewData(m, pipeline.Rows(results), a.now())
	content, err := a.renderer.Render(assets.ReportTemplate, data)
	if err != nil {
		return "", fmt.Errorf("render error: %w", err)
	}
	path, err := fsutil.SaveAtomic(outDir, data.Filename+".md", content)
	if err != nil {
		return "", fmt.Errorf("cannot save file to disk: %w", err)
	}
	return path, nil
}

func transcriptParts(results []pipeline.SegmentResult) []subtitles.Part {
	parts := make([]subtitles.Part, len(results))
	for i, r := range results {
		parts[i] = subtitles.Part{Title: r.Segment.Title, Text: r.Text}
	}
	return parts
}

// saveTranscript écrit "<titre> - transcript.md" : un titre par segment, une phrase par ligne.
func (a *App) saveTranscript(m *model.Meta, results []pipeline.SegmentResult, outDir string) (string, error) {
	content := subtitles.Render(transcriptParts(results), subtitles.AsPlain)
	name := fsutil.SanitizeFilename(fsutil.CapitalizeFirst(m.TitleOrID())) + " - transcript.md"
	path, err := fsutil.SaveAtomic(outDir, name, []byte(content))
	if err != nil {
		return "", fmt.Errorf("cannot save transcript: %w", err)
	}
	return path, nil
}

// copyTranscript copie le transcript compact ; un échec n'interrompt pas le run.
func (a *App) copyTranscript(ctx context.Context, results []pipeline.SegmentResult) {
	content := subtitles.Render(transcriptParts(results), subtitles.AsCollapsed)
	if err := a.copyText(content); err != nil {
		a.ui.PrintError(ctx, fmt.Sprintf("Copie dans le presse-papier impossible : %v", err))
		return
	}
	a.ui.PrintInfo(ctx, "Transcript copié dans le presse-papier")
}
