package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "untitled"},
		{"intro: the basics", "Intro- the basics"},
		{`a/b\c?d*e`, "A b c d e"},
		{"  trailing dots...  ", "Trailing dots"},
		{"...", "untitled"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeFilename(tc.in))
		})
	}
}

func TestSegmentBaseName(t *testing.T) {
	assert.Equal(t, "03 - Main part", SegmentBaseName(3, 12, "main part"))
	assert.Equal(t, "007 - X", SegmentBaseName(7, 120, "x"))
}

func TestSaveAtomic_Overwrites(t *testing.T) {
	dir := t.TempDir()

	p, err := SaveAtomic(dir, "report.md", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.md"), p)

	p2, err := SaveAtomic(dir, "report.md", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	b, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	_, err = SaveAtomic(dir, "", nil)
	assert.Error(t, err)
}

func TestWriteFileAtomic_CreatesParents(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	require.NoError(t, WriteFileAtomic(dest, []byte("x"), 0o644))

	// aucun fichier temporaire laissé à côté
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIsDirEmpty(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsDirEmpty(dir)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))
	empty, err = IsDirEmpty(dir)
	require.NoError(t, err)
	assert.False(t, empty)
}
