package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/internal/bootstrap"
	"github.com/patrickprogramme/clipscribe/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "clipscribe",
	Short: "Découpe une vidéo en clips sous-titrés, un par chapitre",
	Long: `clipscribe découpe une vidéo YouTube ou un fichier local selon ses chapitres,
produit un fichier de sous-titres SRT/VTT par chapitre et, si ffmpeg est disponible,
un clip vidéo par chapitre.`,
	SilenceUsage:      true,
	PersistentPreRun:  setupLogging,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "chemin du fichier de configuration (défaut : clipscribe.yaml à côté du binaire)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "journalisation détaillée")

	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(captionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	// root context qui s'annule sur SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erreur : %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// binDir retourne le chemin du binaire et son répertoire ("." si inconnu).
func binDir() (string, string) {
	exePath, err := os.Executable()
	if err != nil {
		slog.Warn("impossible de déterminer le chemin de l'exécutable", slog.Any("err", err))
		return "", "."
	}
	return exePath, filepath.Dir(exePath)
}

// loadConfig prépare les fichiers par défaut à côté du binaire puis charge la config.
func loadConfig() (*config.Config, string, error) {
	exePath, dir := binDir()

	// emplacement config par défaut
	path := configPath
	if path == "" {
		path = filepath.Join(dir, config.DefaultFileName)
	}

	// s'assurer que le fichier config existe, si non on le crée
	if err := bootstrap.EnsureConfigPresent(path, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		slog.Warn("EnsureConfigPresent", slog.Any("err", err))
	}

	// s'assurer que les templates existent (dans binDir/templates)
	if err := bootstrap.EnsureTemplatesPresent(filepath.Join(dir, "templates"), assets.Embedded, assets.DefaultTemplatePaths); err != nil {
		slog.Warn("ensure templates present", slog.Any("err", err))
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, exePath, fmt.Errorf("config load: %w", err)
	}
	for _, w := range cfg.ValidateBinaries() {
		slog.Warn(w)
	}
	return cfg, exePath, nil
}
