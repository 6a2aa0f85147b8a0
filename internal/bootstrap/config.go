package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// EnsureConfigPresent écrit l'asset assetPath de fsys vers dstPath si ce fichier n'existe pas.
// Le répertoire parent est créé au besoin ; un fichier existant n'est jamais touché.
func EnsureConfigPresent(dstPath string, fsys fs.FS, assetPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("échec stat fichier cible %s: %w", dstPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("échec création répertoire parent de %s: %w", dstPath, err)
	}
	if err := copyAsset(fsys, assetPath, dstPath); err != nil {
		return fmt.Errorf("échec écriture config: %w", err)
	}

	slog.Info("default config created", slog.String("path", dstPath))
	return nil
}
