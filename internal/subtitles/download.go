package subtitles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

var ErrNoSubtitle = errors.New("no subtitle available for given source")

// Fetcher télécharge une URL en mémoire (implémenté par *fetch.Client).
type Fetcher interface {
	Bytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Download contient la piste choisie, le titre de la vidéo et le json3 brut.
type Download struct {
	Title string
	Track model.SubtitleTrack
	Data  []byte // nil tant que non téléchargé
}

// SelectTrack choisit une piste dans m.
// Manuelle d'abord si preferManual, puis automatique. lang filtre par préfixe
// ("en" accepte "en", "en-US", "en-orig") ; vide = première piste disponible.
func SelectTrack(m *model.Meta, preferManual bool, lang string) (model.SubtitleTrack, bool) {
	if m == nil {
		return model.SubtitleTrack{}, false
	}
	groups := [][]model.SubtitleTrack{m.AutoSubs}
	if preferManual {
		groups = [][]model.SubtitleTrack{m.ManualSubs, m.AutoSubs}
	}
	lang = strings.ToLower(strings.TrimSpace(lang))

	for _, tracks := range groups {
		for _, t := range tracks {
			if t.URL == "" {
				continue
			}
			if lang == "" || strings.HasPrefix(strings.ToLower(t.Lang), lang) {
				return t, true
			}
		}
	}
	return model.SubtitleTrack{}, false
}

// DownloadTrack choisit puis télécharge la piste de m.
// Retourne ErrNoSubtitle si aucune piste ne correspond.
func DownloadTrack(ctx context.Context, f Fetcher, m *model.Meta, preferManual bool, lang string) (Download, error) {
	track, ok := SelectTrack(m, preferManual, lang)
	if !ok {
		return Download{}, ErrNoSubtitle
	}
	data, err := f.Bytes(ctx, track.URL)
	if err != nil {
		return Download{}, fmt.Errorf("download subtitle %s: %w", track.Lang, err)
	}
	return Download{Title: m.TitleOrID(), Track: track, Data: data}, nil
}

// Filename compose le nom du json brut, ex: "The simplest tech stack (en).json".
func (d Download) Filename() string {
	base := fsutil.SanitizeFilename(strings.TrimSpace(d.Title))
	lang := strings.TrimSpace(d.Track.Lang)
	if lang == "" {
		lang = "und"
	}
	return fmt.Sprintf("%s (%s).json", base, lang)
}

// PrettyJSON retourne Data indenté.
func (d Download) PrettyJSON() ([]byte, error) {
	if len(d.Data) == 0 {
		return nil, fmt.Errorf("no data to pretty-print")
	}
	var v any
	if err := json.Unmarshal(d.Data, &v); err != nil {
		return nil, fmt.Errorf("pretty json: decode error: %w", err)
	}
	return json.MarshalIndent(v, "", "  ")
}

// Parse décode Data et reconstruit les phrases de la piste.
func (d Download) Parse() (Track, error) {
	doc, err := ParseJSON3(d.Data)
	if err != nil {
		return Track{}, err
	}
	return NewTrack(d.Title, d.Track, Phrases(doc, d.Track.Source)), nil
}
