// Package report produit l'index Markdown d'une découpe : segments, fichiers et transcription.
package report

import (
	"fmt"
	"time"

	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// SegmentRow décrit un segment traité.
type SegmentRow struct {
	Index       int
	Title       string
	Start       model.Seconds
	End         model.Seconds
	CaptionFile string // basename, vide si non écrit
	ClipFile    string // basename, vide si non découpé
	Cues        int
	Text        string
	Error       string
}

// Data contient les données du rapport.
type Data struct {
	Title     string
	SourceURL string
	Uploader  string
	Duration  model.Seconds
	Generated time.Time
	Segments  []SegmentRow
	Filename  string // sans extension
}

// NewData construit Data à partir de model.Meta.
func NewData(m *model.Meta, rows []SegmentRow, now time.Time) Data {
	title := fsutil.CapitalizeFirst(m.TitleOrID())
	return Data{
		Title:     title,
		SourceURL: m.SourceURL,
		Uploader:  m.Uploader,
		Duration:  m.Duration,
		Generated: now,
		Segments:  rows,
		Filename:  fmt.Sprintf("%s - clips", fsutil.SanitizeFilename(title)),
	}
}

func (d Data) GeneratedStr() string {
	if d.Generated.IsZero() {
		return "unknown"
	}
	return d.Generated.Format("2006-01-02 15:04")
}

// Failures retourne les segments en erreur.
func (d Data) Failures() []SegmentRow {
	var out []SegmentRow
	for _, s := range d.Segments {
		if s.Error != "" {
			out = append(out, s)
		}
	}
	return out
}
