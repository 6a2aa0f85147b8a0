package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCaptionsCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "clipscribe.yaml")
	text := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(text, []byte("one two three four"), 0o644))

	out, err := execute(t, "captions", "--config", cfgPath, "--text-file", text,
		"--start", "0", "--end", "4", "--words-per-cue", "2", "--format", "srt")
	require.NoError(t, err)
	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:02,000\none two\n\n2\n00:00:02,000 --> 00:00:04,000\nthree four\n\n",
		out)
}

func TestCaptionsCommand_DegenerateWindow(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(text, []byte("word"), 0o644))

	_, err := execute(t, "captions", "--config", filepath.Join(dir, "c.yaml"), "--text-file", text,
		"--start", "5", "--end", "5", "--format", "vtt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate")
}

func TestSegmentsCommand_LocalFile(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.mp4")
	require.NoError(t, os.WriteFile(video, []byte("video"), 0o644))
	chapters := filepath.Join(dir, "chapters.json")
	require.NoError(t, os.WriteFile(chapters, []byte(`{"duration": 90, "chapters": [{"title": "Intro", "start": 0}, {"title": "Outro", "start": 60}]}`), 0o644))

	out, err := execute(t, "segments", video, "--config", filepath.Join(dir, "c.yaml"), "--chapters", chapters, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Intro"`)
	assert.Contains(t, out, `"start": 60`)
	assert.Contains(t, out, `"end": 90`)
}
