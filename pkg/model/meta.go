package model

import (
	"fmt"
	"strings"
	"time"
)

// SubSource représente la provenance d'une piste de sous-titres.
// automatic = généré automatiquement par Youtube
// manual = fourni par l'auteur de la vidéo
type SubSource string

const (
	SubSourceUnknown   SubSource = "unknown"
	SubSourceAutomatic SubSource = "automatic"
	SubSourceManual    SubSource = "manual"
)

func (s SubSource) String() string {
	switch s {
	case SubSourceAutomatic:
		return "auto captions"
	case SubSourceManual:
		return "manual subtitles"
	default:
		return "unknown subtitles"
	}
}

// SubtitleTrack décrit une piste de sous-titres téléchargeable.
type SubtitleTrack struct {
	Lang   string    `json:"lang"`
	Format Format    `json:"format,omitempty"`
	URL    string    `json:"url,omitempty"`
	Source SubSource `json:"source,omitempty"`
}

func (s SubtitleTrack) String() string {
	return fmt.Sprintf("SubtitleTrack(lang=%s, format=%s, source=%s)", s.Lang, s.Format, s.Source)
}

// Meta regroupe ce que clipscribe sait d'une source média (vidéo YouTube ou fichier local).
type Meta struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Uploader   string          `json:"uploader,omitempty"`
	UploadDate time.Time       `json:"upload_date,omitempty"`
	SourceURL  string          `json:"source_url,omitempty"`
	Duration   Seconds         `json:"duration"`
	Chapters   []RawChapter    `json:"chapters,omitempty"`
	AutoSubs   []SubtitleTrack `json:"subtitles,omitempty"`
	ManualSubs []SubtitleTrack `json:"manual_subtitles,omitempty"`
}

func (m Meta) HasManualSubs() bool {
	return len(m.ManualSubs) != 0
}

func (m Meta) HasAutoSubs() bool {
	return len(m.AutoSubs) != 0
}

// TitleOrID retourne le titre, ou à défaut l'identifiant.
func (m Meta) TitleOrID() string {
	if s := strings.TrimSpace(m.Title); s != "" {
		return s
	}
	return m.ID
}

func (m Meta) String() string {
	return fmt.Sprintf("Meta[ID=%s, Title=%q, Duration=%s, Chapters=%d, Subtitles=%d]",
		m.ID, m.Title, m.Duration.TimestampHHMMSS(),
		len(m.Chapters), len(m.AutoSubs)+len(m.ManualSubs))
}

// Pretty retourne une fiche multi-lignes pour l'affichage terminal.
func (m Meta) Pretty() string {
	dateStr := "<unknown>"
	if !m.UploadDate.IsZero() {
		dateStr = m.UploadDate.Format("2006-01-02")
	}

	langs := func(tracks []SubtitleTrack) string {
		out := make([]string, 0, len(tracks))
		for _, t := range tracks {
			if t.Lang != "" {
				out = append(out, t.Lang)
			}
		}
		if len(out) == 0 {
			return "(aucun)"
		}
		return strings.Join(out, ", ")
	}

	return fmt.Sprintf(
		"Meta:\n"+
			"  ID         : %s\n"+
			"  Title      : %q\n"+
			"  Uploader   : %s\n"+
			"  Date       : %s\n"+
			"  Duration   : %s\n"+
			"  Chapters   : %d\n"+
			"  AutoSubs   : %s\n"+
			"  ManualSubs : %s\n",
		m.ID,
		m.Title,
		m.Uploader,
		dateStr,
		m.Duration.TimestampHHMMSS(),
		len(m.Chapters),
		langs(m.AutoSubs),
		langs(m.ManualSubs),
	)
}
