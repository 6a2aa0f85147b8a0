package yt

import (
	"context"
	"fmt"
	"strings"
)

// GetVersion exécute le binaire yt-dlp avec l'option --version et retourne sa sortie.
func (y *YtDlp) GetVersion(ctx context.Context) (string, error) {
	out, err := y.run(ctx, y.exe(), "--version")
	if err != nil {
		return "", fmt.Errorf("échec exécution yt-dlp --version : %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}
