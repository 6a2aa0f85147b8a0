package subtitles

import (
	"slices"
	"sort"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Track est une piste de sous-titres réduite à des phrases triées par début.
type Track struct {
	Title   string
	Source  model.SubtitleTrack
	Phrases []Phrase
}

// NewTrack copie et trie les phrases (tri stable, seulement si nécessaire).
func NewTrack(title string, src model.SubtitleTrack, phrases []Phrase) Track {
	ps := slices.Clone(phrases)
	less := func(i, j int) bool { return ps[i].StartMs < ps[j].StartMs }
	if !sort.SliceIsSorted(ps, less) {
		sort.SliceStable(ps, less)
	}
	return Track{Title: title, Source: src, Phrases: ps}
}

func (t Track) Empty() bool {
	return len(t.Phrases) == 0
}

// PhrasesIn retourne les phrases qui commencent dans [w.Start, w.End).
// Une phrase à cheval sur deux fenêtres appartient à celle où elle commence.
func (t Track) PhrasesIn(w model.Window) []Phrase {
	lo := t.search(w.Start.Milliseconds())
	hi := t.search(w.End.Milliseconds())
	return t.Phrases[lo:hi]
}

// TextIn retourne le texte des phrases de la fenêtre, une phrase par ligne.
func (t Track) TextIn(w model.Window) string {
	ps := t.PhrasesIn(w)
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		lines = append(lines, p.Text)
	}
	return strings.Join(lines, "\n")
}

// search : premier index dont le début est >= ms.
func (t Track) search(ms int64) int {
	idx, _ := slices.BinarySearchFunc(t.Phrases, ms, func(p Phrase, key int64) int {
		switch {
		case p.StartMs < key:
			return -1
		case p.StartMs > key:
			return 1
		}
		return 0
	})
	// BinarySearchFunc peut tomber sur n'importe quel doublon : reculer au premier
	for idx > 0 && t.Phrases[idx-1].StartMs >= ms {
		idx--
	}
	return idx
}
