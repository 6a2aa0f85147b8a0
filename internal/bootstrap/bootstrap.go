package bootstrap

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/patrickprogramme/clipscribe/internal/fsutil"
)

// ExportStatus décrit ce qu'ExportDefaults a fait d'un fichier embarqué.
type ExportStatus string

const (
	StatusWritten     ExportStatus = "written"
	StatusUnchanged   ExportStatus = "unchanged"
	StatusSkipped     ExportStatus = "skipped (different)"
	StatusOverwritten ExportStatus = "overwritten"
	StatusFailed      ExportStatus = "error"
)

const assetPerm = 0o644

// ExportDefaults copie les fichiers de fsys sous srcPrefix vers destDir, hiérarchie conservée.
// Un fichier différent déjà présent n'est remplacé que si force (sauvegarde .bak.<date> avant).
// La map est indexée par chemin embarqué.
func ExportDefaults(fsys fs.FS, srcPrefix, destDir string, force bool) (map[string]ExportStatus, error) {
	status := make(map[string]ExportStatus)

	err := fs.WalkDir(fsys, srcPrefix, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(srcPrefix, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		dest := filepath.Join(destDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		st, err := exportFile(fsys, p, dest, force)
		status[p] = st
		return err
	})
	return status, err
}

func exportFile(fsys fs.FS, src, dest string, force bool) (ExportStatus, error) {
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return StatusFailed, fmt.Errorf("lecture de la ressource embarquée %s : %w", src, err)
	}

	existing, err := os.ReadFile(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := fsutil.WriteFileAtomic(dest, data, assetPerm); err != nil {
			return StatusFailed, err
		}
		return StatusWritten, nil
	case err != nil:
		return StatusFailed, err
	case bytes.Equal(existing, data):
		return StatusUnchanged, nil
	case !force:
		return StatusSkipped, nil
	}

	backup := dest + ".bak." + time.Now().Format("20060102T150405")
	if err := os.WriteFile(backup, existing, assetPerm); err != nil {
		return StatusFailed, fmt.Errorf("sauvegarde de %s impossible : %w", dest, err)
	}
	if err := fsutil.WriteFileAtomic(dest, data, assetPerm); err != nil {
		return StatusFailed, err
	}
	return StatusOverwritten, nil
}

// EnsureTemplatesPresent garantit que chaque template de srcFiles existe dans tplDir
// (nom de base conservé). Les fichiers présents, même modifiés, ne sont jamais remplacés.
// Le parent de tplDir doit exister : on ne crée pas d'arborescence à un endroit inattendu.
func EnsureTemplatesPresent(tplDir string, fsys fs.FS, srcFiles []string) error {
	parent := filepath.Dir(tplDir)
	st, err := os.Stat(parent)
	if err != nil {
		return fmt.Errorf("répertoire parent %s inaccessible : %w", parent, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("le parent existe mais n'est pas un répertoire : %s", parent)
	}
	if err := os.MkdirAll(tplDir, 0o755); err != nil {
		return fmt.Errorf("échec de création du répertoire de templates %s : %w", tplDir, err)
	}

	// répertoire vide : tout copier sans tester fichier par fichier
	empty, err := fsutil.IsDirEmpty(tplDir)
	if err != nil {
		return fmt.Errorf("échec lors de la vérification du répertoire %s : %w", tplDir, err)
	}

	for _, src := range srcFiles {
		dest := filepath.Join(tplDir, path.Base(src))
		if !empty {
			if _, err := os.Stat(dest); err == nil {
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("échec lors du test du fichier %s : %w", dest, err)
			}
		}
		if err := copyAsset(fsys, src, dest); err != nil {
			return err
		}
	}
	return nil
}

func copyAsset(fsys fs.FS, src, dest string) error {
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("fichier embarqué introuvable %s : %w", src, err)
	}
	if err := fsutil.WriteFileAtomic(dest, data, assetPerm); err != nil {
		return fmt.Errorf("échec d'écriture du template %s : %w", dest, err)
	}
	return nil
}
