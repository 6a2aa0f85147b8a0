package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IsDirEmpty indique si path est un répertoire sans aucune entrée.
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if st, err := f.Stat(); err != nil {
		return false, err
	} else if !st.IsDir() {
		return false, fmt.Errorf("%s is not a directory", path)
	}

	// une seule entrée suffit
	if _, err := f.Readdirnames(1); errors.Is(err, io.EOF) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return false, nil
}

// WriteFileAtomic écrit data dans un fichier temporaire voisin de destPath puis le renomme.
// Les répertoires parents sont créés ; le temporaire est supprimé en cas d'échec.
func WriteFileAtomic(destPath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("rename %s: %w", destPath, err)
	}
	return nil
}

// SaveAtomic écrit content dans outDir/filename (remplacé s'il existe) et retourne le chemin.
func SaveAtomic(outDir, filename string, content []byte) (string, error) {
	if filename == "" {
		return "", errors.New("filename empty")
	}
	final := filepath.Join(outDir, filename)
	if err := WriteFileAtomic(final, content, 0o644); err != nil {
		return "", err
	}
	return final, nil
}
