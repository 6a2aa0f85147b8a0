package yt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// NewYtDlp construit une instance. Path doit être le chemin résolu vers l'exe
func NewYtDlp(name string, resolvedPath string, cfg YtDlpConfig) *YtDlp {
	return &YtDlp{
		Name:   name,
		Path:   resolvedPath,
		Config: cfg,
		run:    combinedOutput,
	}
}

func (y *YtDlp) exe() string {
	if y.Path != "" {
		return y.Path
	}
	return y.Name
}

// CheckBinary vérifie que le binaire existe (chemin explicite ou recherche dans PATH).
func (y *YtDlp) CheckBinary() error {
	if y == nil {
		return fmt.Errorf("yt-dlp non initialisé")
	}

	exe := y.exe()
	if !strings.ContainsRune(filepath.ToSlash(exe), '/') {
		if _, err := exec.LookPath(exe); err != nil {
			return fmt.Errorf("yt-dlp introuvable dans le PATH (%s) : %w", exe, err)
		}
		return nil
	}

	info, err := os.Stat(exe)
	if err != nil {
		return fmt.Errorf("yt-dlp introuvable (%s) à l'emplacement spécifié : %w", exe, err)
	}
	if info.IsDir() {
		return fmt.Errorf("le chemin spécifié pour yt-dlp est un répertoire, pas un fichier exécutable")
	}
	return nil
}

// ExtractRaw exécute `yt-dlp -j <url>` et renvoie la sortie JSON brute.
// La sortie est validée comme JSON avant d'être renvoyée.
func (y *YtDlp) ExtractRaw(ctx context.Context, url string) (*ExtractedRaw, error) {
	start := time.Now()
	out, err := y.run(ctx, y.exe(), y.Config.BuildArgs(url)...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp dump json failed: %w, output: %s", err, string(out))
	}
	raw, err := splitExtractOutput(out)
	if err != nil {
		return nil, err
	}
	slog.Info("metadata extracted", slog.Duration("elapsed", time.Since(start)))
	return raw, nil
}

// splitExtractOutput sépare la ligne JSON des avertissements.
func splitExtractOutput(out []byte) (*ExtractedRaw, error) {
	var jsonLine string
	var warnings []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			jsonLine = line
		} else {
			warnings = append(warnings, line)
		}
	}
	if jsonLine == "" {
		return nil, fmt.Errorf("aucun JSON détecté dans la sortie: %s", string(out))
	}
	return &ExtractedRaw{JSON: []byte(jsonLine), Warnings: warnings}, nil
}

// Download télécharge url dans dir et retourne le chemin du fichier final.
func (y *YtDlp) Download(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	start := time.Now()
	out, err := y.run(ctx, y.exe(), y.Config.BuildDownloadArgs(url, dir)...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w, output: %s", err, string(out))
	}
	path := lastPath(out)
	if path == "" {
		return "", fmt.Errorf("yt-dlp n'a pas indiqué de fichier téléchargé: %s", string(out))
	}
	slog.Info("video downloaded", slog.String("file", filepath.Base(path)), slog.Duration("elapsed", time.Since(start)))
	return path, nil
}

// lastPath : dernière ligne non vide qui n'est pas un message yt-dlp.
func lastPath(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		if l == "" || strings.HasPrefix(l, "WARNING:") || strings.HasPrefix(l, "ERROR:") || strings.HasPrefix(l, "[") {
			continue
		}
		return l
	}
	return ""
}
