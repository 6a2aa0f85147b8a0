package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

func sampleData() Data {
	m := &model.Meta{ID: "abc", Title: "demo | talk", SourceURL: "https://www.youtube.com/watch?v=abc", Duration: 120}
	rows := []SegmentRow{
		{Index: 1, Title: "Intro", Start: 0, End: 60, CaptionFile: "01 - Intro.srt", ClipFile: "01 - Intro.mp4", Text: "hello there\nsecond line"},
		{Index: 2, Title: "Main", Start: 60, End: 120, Error: "ffmpeg failed"},
	}
	return NewData(m, rows, time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC))
}

func TestEmbeddedRenderer(t *testing.T) {
	r, err := EmbeddedRenderer()
	require.NoError(t, err)

	out, err := r.Render(assets.ReportTemplate, sampleData())
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "# Demo | talk\n"))
	assert.Contains(t, s, "- Durée : 00:02:00")
	assert.Contains(t, s, "- Généré le : 2026-10-17 09:30")
	assert.Contains(t, s, "| 1 | [00:00:00](https://www.youtube.com/watch?v=abc&t=0s) | 00:01:00 | Intro | 01 - Intro.srt | 01 - Intro.mp4 |")
	assert.Contains(t, s, "| 2 | [00:01:00](https://www.youtube.com/watch?v=abc&t=60s) | 00:02:00 | Main | - | - |")
	assert.Contains(t, s, "## Erreurs\n\n- Main : ffmpeg failed")
	assert.Contains(t, s, "### Intro\n\n> hello there\n> second line")
	assert.Contains(t, s, "### Main\n\n_(aucun texte)_")
}

func TestRenderer_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"custom.tmpl": {Data: []byte(`{{ .Title }} {{ len .Segments }} {{ cell "a|b" }}`)},
	}
	r, err := NewRendererFromFS(fsys, []string{"custom.tmpl"})
	require.NoError(t, err)
	out, err := r.Render("custom.tmpl", sampleData())
	require.NoError(t, err)
	assert.Equal(t, `Demo | talk 2 a\|b`, string(out))

	_, err = r.Render("missing.tmpl", sampleData())
	assert.Error(t, err)
}

func TestRenderer_ParseError(t *testing.T) {
	r, err := NewRendererFromFS(fstest.MapFS{"bad.tmpl": {Data: []byte("{{ .Title ")}}, []string{"bad.tmpl"})
	require.NoError(t, err)
	assert.Error(t, r.ParseNow())

	_, err = NewRendererFromFS(nil, []string{"x"})
	assert.Error(t, err)
	_, err = NewRendererFromFS(fstest.MapFS{}, nil)
	assert.Error(t, err)
}

func TestDefaultRenderer_PrefersTemplatesNextToBinary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", assets.ReportTemplate), []byte("custom {{ .Title }}"), 0o644))

	r, err := DefaultRenderer(filepath.Join(dir, "clipscribe"))
	require.NoError(t, err)
	out, err := r.Render(assets.ReportTemplate, sampleData())
	require.NoError(t, err)
	assert.Equal(t, "custom Demo | talk", string(out))

	// pas de dossier templates : fallback embarqué
	r, err = DefaultRenderer(filepath.Join(t.TempDir(), "clipscribe"))
	require.NoError(t, err)
	out, err = r.Render(assets.ReportTemplate, sampleData())
	require.NoError(t, err)
	assert.Contains(t, string(out), "## Segments")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "00:01:05", timeLinkPure("", 65))
	assert.Equal(t, "[00:01:05](https://x.test/v?t=65s)", timeLinkPure("https://x.test/v", 65.9))
	assert.Equal(t, "00:01:05", timeLinkPure("/local/file.mp4", 65))
	assert.Equal(t, "", quoteBlockPure(""))
	assert.Equal(t, "-", tableCell("  "))
	assert.Equal(t, "Demo talk - clips", sampleData().Filename)
}
