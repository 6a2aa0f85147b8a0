package model

import "fmt"

// RawChapter est un chapitre tel que fourni par les métadonnées de la source.
// End est optionnel : nil quand la source ne donne que le début.
type RawChapter struct {
	Title string   `json:"title"`
	Start Seconds  `json:"start"`
	End   *Seconds `json:"end,omitempty"`
}

// Segment est un intervalle [Start, End) nommé de la vidéo.
// Une liste issue de chapters.Segment est ordonnée et couvre [0, durée] sans trou.
type Segment struct {
	Title string  `json:"title"`
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
}

func (s Segment) Duration() Seconds {
	return s.End - s.Start
}

// Window retourne la fenêtre du segment dans la timeline source.
func (s Segment) Window() Window {
	return Window{Start: s.Start, End: s.End}
}

func (s Segment) String() string {
	return fmt.Sprintf("%s - %s  %s", s.Start.TimestampHHMMSS(), s.End.TimestampHHMMSS(), s.Title)
}

// Cue est une unité de sous-titre affichée sur [Start, End).
type Cue struct {
	Index int     `json:"index"` // 1-based, local à la fenêtre
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
	Text  string  `json:"text"`
}

// Window est une plage [Start, End) de la timeline.
type Window struct {
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
}

func (w Window) Duration() Seconds {
	return w.End - w.Start
}

// Contains indique si t appartient à [Start, End).
func (w Window) Contains(t Seconds) bool {
	return t >= w.Start && t < w.End
}
