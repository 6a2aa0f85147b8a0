package main

import (
	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/app"
	"github.com/patrickprogramme/clipscribe/internal/config"
	"github.com/patrickprogramme/clipscribe/internal/report"
	"github.com/patrickprogramme/clipscribe/internal/ui"
)

var clipCmd = &cobra.Command{
	Use:   "clip [url|fichier]",
	Short: "Sous-titres et clips pour chaque chapitre",
	Long: `Découpe la source en segments (un par chapitre), écrit un fichier de sous-titres
par segment et découpe les clips avec ffmpeg. Sans argument, l'URL est lue dans le
presse-papier puis demandée au terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClip,
}

var (
	clipFlags   app.CLIFlags
	vertical    bool
	burn        bool
	title       bool
	format      string
	wordsPerCue int
	workers     int
)

func init() {
	f := clipCmd.Flags()
	f.StringVar(&clipFlags.ChaptersFile, "chapters", "", "fichier JSON de chapitres (remplace ceux de la source)")
	f.StringVar(&clipFlags.TranscriptFile, "transcript", "", "fichier texte de transcription (remplace les sous-titres YouTube)")
	f.BoolVar(&clipFlags.NoClips, "no-clips", false, "sous-titres seulement, sans découpe vidéo")
	f.BoolVar(&clipFlags.RefreshCache, "refresh-cache", false, "ignore les textes en cache pour cette vidéo")
	f.BoolVar(&vertical, "vertical", false, "clips 9:16 sur fond flouté")
	f.BoolVar(&burn, "burn", false, "incruster les sous-titres dans les clips")
	f.BoolVar(&title, "title", false, "dessiner le titre du chapitre dans chaque clip")
	f.StringVar(&format, "format", "", "format des sous-titres : srt ou vtt")
	f.IntVar(&wordsPerCue, "words-per-cue", 0, "nombre maximal de mots par sous-titre")
	f.IntVar(&workers, "workers", 0, "segments traités en parallèle")
}

func runClip(cmd *cobra.Command, args []string) error {
	cfg, exePath, err := loadConfig()
	if err != nil {
		return err
	}
	applyCaptionFlags(cmd, cfg)
	if cmd.Flags().Changed("vertical") {
		cfg.Clips.Vertical = vertical
	}
	if cmd.Flags().Changed("burn") {
		cfg.Clips.BurnCaptions = burn
	}
	if cmd.Flags().Changed("title") {
		cfg.Clips.TitleOverlay = title
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(args) == 1 {
		clipFlags.Source = args[0]
	}

	// construction du renderer (templates à côté du binaire, sinon embarqués)
	renderer, err := report.DefaultRenderer(exePath)
	if err != nil {
		return err
	}

	a := app.New(cfg, ui.NewTerminal(), &clipFlags, renderer)
	return a.Run(cmd.Context())
}

// applyCaptionFlags applique --format et --words-per-cue par-dessus la config.
func applyCaptionFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("format") {
		cfg.Captions.Format = format
	}
	if cmd.Flags().Changed("words-per-cue") {
		cfg.Captions.WordsPerCue = wordsPerCue
	}
}
