package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patrickprogramme/clipscribe/internal/clipboard"
	"github.com/patrickprogramme/clipscribe/internal/yt"
)

// ErrNoInput : l'entrée standard est fermée avant qu'une source valide soit saisie.
var ErrNoInput = errors.New("aucune source saisie")

type terminalUI struct {
	reader    *bufio.Reader
	out       io.Writer
	errOut    io.Writer
	clipboard func() (string, error)
}

func NewTerminal() Interface {
	return NewTerminalWith(os.Stdin, os.Stdout, os.Stderr, clipboard.ReadTrimmed)
}

// NewTerminalWith construit une UI sur des flux donnés ; clip peut être nil.
func NewTerminalWith(in io.Reader, out, errOut io.Writer, clip func() (string, error)) Interface {
	return &terminalUI{reader: bufio.NewReader(in), out: out, errOut: errOut, clipboard: clip}
}

// IsSource accepte une URL YouTube ou un fichier local existant.
func IsSource(s string) bool {
	if yt.IsYouTubeURL(s) {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && !info.IsDir()
}

func (t *terminalUI) GetSourceURL(ctx context.Context) (string, error) {
	// 1) clipboard
	if t.clipboard != nil {
		if clip, err := t.clipboard(); err == nil && yt.IsYouTubeURL(clip) {
			t.PrintInfo(ctx, fmt.Sprintf("Utilisation de l'URL depuis le presse-papier: %s", clip))
			return clip, nil
		}
	}
	// 2) prompt
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.out, "Entrez l'URL d'une vidéo Youtube ou le chemin d'un fichier: ")
		input, err := t.reader.ReadString('\n')
		src := strings.Trim(strings.TrimSpace(input), `"'`)
		if IsSource(src) {
			return src, nil
		}
		if err != nil {
			return "", ErrNoInput
		}
		fmt.Fprintln(t.out, "❌ Source invalide. Essayez à nouveau.")
	}
}

func (t *terminalUI) PrintInfo(ctx context.Context, s string) {
	fmt.Fprintln(t.out, s)
}

func (t *terminalUI) PrintError(ctx context.Context, s string) {
	fmt.Fprintln(t.errOut, s)
}
