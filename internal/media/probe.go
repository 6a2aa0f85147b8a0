package media

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Prober lit la durée d'un fichier média avec ffprobe.
type Prober struct {
	ffprobePath string
	cmd         commandRunner
}

type ProberOption func(*Prober)

// WithProberCommandRunner remplace l'exécution des commandes (tests).
func WithProberCommandRunner(r commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = r }
}

func NewProber(ffprobePath string, opts ...ProberOption) (*Prober, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobe path cannot be empty: %w", ErrNotFound)
	}
	p := &Prober{ffprobePath: ffprobePath, cmd: osCommandRunner{}}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Duration retourne la durée du conteneur en secondes.
func (p *Prober) Duration(ctx context.Context, path string) (model.Seconds, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := p.cmd.Output(ctx, p.ffprobePath, args)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	return parseDuration(string(out))
}

func parseDuration(out string) (model.Seconds, error) {
	s := strings.TrimSpace(out)
	// ffprobe peut émettre plusieurs lignes : garder la première valeur numérique
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse duration %q", ErrProbeFailed, s)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-positive duration %v", ErrProbeFailed, v)
	}
	return model.Seconds(v), nil
}
