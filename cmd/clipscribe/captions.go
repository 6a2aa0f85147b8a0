package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

var captionsCmd = &cobra.Command{
	Use:   "captions",
	Short: "Minute un texte sur une fenêtre et écrit les sous-titres",
	Long: `Répartit les mots du texte sur [start, end] par paquets de --words-per-cue
et écrit le résultat en SRT, VTT ou JSON sur la sortie standard.
--text-file - lit le texte sur l'entrée standard.`,
	Args: cobra.NoArgs,
	RunE: runCaptions,
}

var (
	capTextFile    string
	capStart       float64
	capEnd         float64
	capWordsPerCue int
	capFormat      string
)

func init() {
	f := captionsCmd.Flags()
	f.StringVar(&capTextFile, "text-file", "-", "fichier texte (- pour l'entrée standard)")
	f.Float64Var(&capStart, "start", 0, "début de la fenêtre en secondes")
	f.Float64Var(&capEnd, "end", 0, "fin de la fenêtre en secondes")
	f.IntVar(&capWordsPerCue, "words-per-cue", 0, "nombre maximal de mots par sous-titre (défaut : config)")
	f.StringVar(&capFormat, "format", "", "srt, vtt ou json (défaut : config)")
	_ = captionsCmd.MarkFlagRequired("end")
}

func runCaptions(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	wpc := cfg.Captions.WordsPerCue
	if cmd.Flags().Changed("words-per-cue") {
		wpc = capWordsPerCue
	}
	format := cfg.Captions.Format
	if capFormat != "" {
		format = strings.ToLower(strings.TrimSpace(capFormat))
	}

	text, err := readText(cmd.InOrStdin(), capTextFile)
	if err != nil {
		return err
	}

	cues, err := captions.Time(text, model.Seconds(capStart), model.Seconds(capEnd), wpc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == string(model.FormatJSON) {
		b, err := json.MarshalIndent(cues, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	f, err := model.ParseFormat(format)
	if err != nil {
		return err
	}
	return subtitles.Encode(out, f, cues)
}

func readText(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("lecture de l'entrée standard : %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("lecture de %s : %w", path, err)
	}
	return string(b), nil
}
