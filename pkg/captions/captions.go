// Package captions répartit le texte d'une fenêtre en cues minutées
// à débit de mots constant.
package captions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// DefaultWordsPerCue : au-delà, une cue devient difficile à lire.
const DefaultWordsPerCue = 7

var (
	ErrDegenerateWindow = errors.New("degenerate caption window")
	ErrInvalidConfig    = errors.New("invalid caption config")
)

// Time découpe text en cues sur la fenêtre [start, end].
//
// Les mots (séparés par des blancs) sont regroupés par paquets de wordsPerCue,
// le dernier paquet pouvant être plus court. Chaque cue dure
// len(paquet) / (mots par seconde), la première commence à start et chaque
// suivante commence où la précédente finit. La fin de la dernière cue est
// ramenée exactement sur end.
//
// Un texte vide ou blanc donne zéro cue sans erreur. Retourne ErrInvalidConfig
// si wordsPerCue <= 0 et ErrDegenerateWindow si end <= start.
func Time(text string, start, end model.Seconds, wordsPerCue int) ([]model.Cue, error) {
	if wordsPerCue <= 0 {
		return nil, fmt.Errorf("%w: words_per_cue = %d", ErrInvalidConfig, wordsPerCue)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []model.Cue{}, nil
	}

	span := end - start
	if !(span > 0) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrDegenerateWindow, float64(start), float64(end))
	}

	// at(k) = start + k / wordsPerSecond, calculé depuis k pour ne pas cumuler d'erreur
	n := len(words)
	at := func(k int) model.Seconds {
		return start + span*model.Seconds(k)/model.Seconds(n)
	}

	cues := make([]model.Cue, 0, (n+wordsPerCue-1)/wordsPerCue)
	for lo := 0; lo < n; lo += wordsPerCue {
		hi := min(lo+wordsPerCue, n)
		cueEnd := at(hi)
		if hi == n {
			cueEnd = end
		}
		cues = append(cues, model.Cue{
			Index: len(cues) + 1,
			Start: at(lo),
			End:   cueEnd,
			Text:  strings.Join(words[lo:hi], " "),
		})
	}
	return cues, nil
}

// TimeWindow est Time appliqué à une model.Window.
func TimeWindow(text string, w model.Window, wordsPerCue int) ([]model.Cue, error) {
	return Time(text, w.Start, w.End, wordsPerCue)
}

// Shift décale toutes les cues de offset (indices inchangés).
func Shift(cues []model.Cue, offset model.Seconds) []model.Cue {
	out := make([]model.Cue, len(cues))
	for i, c := range cues {
		c.Start += offset
		c.End += offset
		out[i] = c
	}
	return out
}
