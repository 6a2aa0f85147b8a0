package yt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

const (
	suffix    = "-orig"
	baseYtURL = "https://www.youtube.com/watch?v="
)

// ParseYTDLP transforme le JSON brut en struct Meta
func ParseYTDLP(raw []byte) (*model.Meta, error) {
	var y ytdlpOutput
	if err := json.Unmarshal(raw, &y); err != nil {
		return nil, fmt.Errorf("unmarshal ytdlp output: %w", err)
	}

	meta := &model.Meta{
		ID:        y.ID,
		Title:     y.Title,
		Uploader:  y.Uploader,
		SourceURL: y.WebpageURL,
		Duration:  model.Seconds(y.Duration),
	}
	if meta.SourceURL == "" && y.ID != "" {
		meta.SourceURL = baseYtURL + y.ID
	}

	// upload_date: try YYYYMMDD puis timestamp (fallback)
	if y.UploadDate != "" {
		if t, err := time.Parse("20060102", y.UploadDate); err == nil {
			meta.UploadDate = t
		}
	}
	if meta.UploadDate.IsZero() && y.Timestamp != 0 {
		meta.UploadDate = time.Unix(y.Timestamp, 0).UTC()
	}

	// chapters : bornes brutes, la normalisation est faite par pkg/chapters
	for _, c := range y.Chapters {
		start := c.Start
		if c.StartTime != nil {
			start = *c.StartTime
		}
		rc := model.RawChapter{Title: c.Title, Start: model.Seconds(start)}
		if c.EndTime != nil {
			end := model.Seconds(*c.EndTime)
			rc.End = &end
		}
		meta.Chapters = append(meta.Chapters, rc)
	}

	// sous-titres manuels : on garde tout ce qui est au bon format
	meta.ManualSubs = selectManualSubs(y.Subtitles, model.FormatJSON3)

	// sous-titres automatiques : on garde uniquement : bon format + orig
	meta.AutoSubs = selectCaptionOriginal(y.AutomaticCaptions, model.FormatJSON3)

	return meta, nil
}

// selectCaptionOriginal parcourt la map `auto` (automatic_captions) et renvoie
// toutes les pistes dont la clé langue se termine par "-orig" et dont le format
// correspond au paramètre `format`. Triées par langue.
func selectCaptionOriginal(auto map[string][]subtitleItem, format model.Format) []model.SubtitleTrack {
	var out []model.SubtitleTrack
	for _, lang := range sortedKeys(auto) {
		// on ne veut que les langues originales : -orig
		if !strings.HasSuffix(lang, suffix) {
			continue
		}
		out = append(out, tracksOf(strings.TrimSuffix(lang, suffix), auto[lang], format, model.SubSourceAutomatic)...)
	}
	return out
}

// selectManualSubs récupère tous les sous-titres manuels, triés par langue.
func selectManualSubs(manual map[string][]subtitleItem, format model.Format) []model.SubtitleTrack {
	var out []model.SubtitleTrack
	for _, lang := range sortedKeys(manual) {
		// "live_chat" n'est pas une piste de sous-titres
		if lang == "live_chat" {
			continue
		}
		out = append(out, tracksOf(lang, manual[lang], format, model.SubSourceManual)...)
	}
	return out
}

func tracksOf(lang string, items []subtitleItem, format model.Format, src model.SubSource) []model.SubtitleTrack {
	var out []model.SubtitleTrack
	for _, it := range items {
		// ne garde qu'un format
		if pf, err := model.ParseFormat(it.Ext); err == nil && pf == format {
			out = append(out, model.SubtitleTrack{
				Lang:   lang,
				Format: pf,
				URL:    it.URL,
				Source: src,
			})
		}
	}
	return out
}

func sortedKeys(m map[string][]subtitleItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
