package yt

import "path/filepath"

// DefaultFormat : meilleure vidéo mp4 + meilleur audio m4a, sinon meilleur mp4 combiné.
const DefaultFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// outputTemplate nomme le fichier téléchargé d'après le titre de la vidéo.
const outputTemplate = "%(title)s.%(ext)s"

// YtDlpConfig représente les flags ajoutables quand on utilise yt-dlp
type YtDlpConfig struct {
	SkipDownload bool
	NoWarnings   bool // true => ajouter --no-warnings
	NoProgress   bool
	NoUpdate     bool
	NoConfig     bool // true => ajouter --no-config pour ignorer les configs utilisateur
	Format       string
}

// NewYtDlpConfig initalise une configuration standard de yt-dlp, showWarning vient du yaml de config
func NewYtDlpConfig(showWarning bool) *YtDlpConfig {
	return &YtDlpConfig{
		SkipDownload: true,
		NoWarnings:   !showWarning,
		NoProgress:   true,
		NoUpdate:     true,
		NoConfig:     true,
		Format:       DefaultFormat,
	}
}

// commonArgs : options partagées par l'extraction et le téléchargement.
func (c *YtDlpConfig) commonArgs() []string {
	args := make([]string, 0, 8)
	// --no-config en tête pour éviter que des configs locales modifient le comportement
	if c.NoConfig {
		args = append(args, "--no-config")
	}
	if c.NoWarnings {
		args = append(args, "--no-warnings")
	}
	if c.NoProgress {
		args = append(args, "--no-progress")
	}
	if c.NoUpdate {
		args = append(args, "--no-update")
	}
	return args
}

// BuildArgs construit les arguments de l'extraction des métadonnées (-j).
func (c *YtDlpConfig) BuildArgs(url string) []string {
	args := append(c.commonArgs(), "-j")
	if c.SkipDownload {
		args = append(args, "--skip-download")
	}
	return append(args, url)
}

// BuildDownloadArgs construit les arguments du téléchargement dans dir.
// --print after_move:filepath écrit le chemin final sur stdout.
func (c *YtDlpConfig) BuildDownloadArgs(url, dir string) []string {
	format := c.Format
	if format == "" {
		format = DefaultFormat
	}
	args := c.commonArgs()
	args = append(args,
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, outputTemplate),
		"--print", "after_move:filepath",
		url,
	)
	return args
}
