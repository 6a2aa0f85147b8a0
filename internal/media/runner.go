// Package media pilote ffmpeg/ffprobe : durée d'un fichier, découpe des clips,
// et lecture des chapitres d'un fichier local.
package media

import (
	"context"
	"errors"
	"os/exec"
)

var (
	ErrNotFound     = errors.New("media: binary not found")
	ErrProbeFailed  = errors.New("media: probe failed")
	ErrSliceFailed  = errors.New("media: slice failed")
	ErrInvalidRange = errors.New("media: invalid time range")
)

// commandRunner exécute une commande externe (injectable pour les tests).
type commandRunner interface {
	Output(ctx context.Context, name string, args []string) ([]byte, error)
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

type osCommandRunner struct{}

func (osCommandRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LookPath résout un binaire : chemin explicite s'il est fourni, sinon recherche dans PATH.
func LookPath(name, path string) (string, error) {
	if path != "" {
		if p, err := exec.LookPath(path); err == nil {
			return p, nil
		}
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Join(ErrNotFound, err)
	}
	return p, nil
}
