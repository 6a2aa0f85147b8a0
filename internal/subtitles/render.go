package subtitles

import (
	"strings"
)

// Part est le texte d'un segment, précédé de son titre dans le transcript.
type Part struct {
	Title string
	Text  string
}

type Layout int

const (
	// AsPlain : une phrase par ligne, un paragraphe autour de chaque titre.
	AsPlain Layout = iota
	// AsCollapsed : le texte de chaque segment sur une seule ligne.
	AsCollapsed
)

// Render produit le transcript découpé par segments :
//
//	## Intro
//
//	phrase 1
//	phrase 2
//
// Les segments sans texte gardent leur titre. Toujours un seul newline final.
func Render(parts []Part, layout Layout) string {
	chapterSep := "\n\n"
	if layout == AsCollapsed {
		chapterSep = "\n"
	}

	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		// normaliser le titre : enlever # et espaces initiaux
		block := "## " + strings.TrimSpace(strings.TrimLeft(p.Title, "# "))
		if text := renderText(p.Text, layout); text != "" {
			block += chapterSep + text
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, chapterSep) + "\n"
}

func renderText(s string, layout Layout) string {
	if layout == AsCollapsed {
		return normalizeSpaces(s)
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = normalizeSpaces(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
