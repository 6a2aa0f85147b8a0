package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

type chapterEntry struct {
	Title string   `json:"title"`
	Start float64  `json:"start"`
	End   *float64 `json:"end,omitempty"`
}

type chaptersFile struct {
	Duration *float64       `json:"duration,omitempty"`
	Chapters []chapterEntry `json:"chapters"`
}

// ChaptersFile est le contenu d'un fichier de chapitres local.
// Duration est nil si le fichier ne la précise pas.
type ChaptersFile struct {
	Duration *model.Seconds
	Chapters []model.RawChapter
}

// LoadChaptersFile lit un fichier JSON de chapitres. Deux formes sont acceptées :
//
//	[{"title": "Intro", "start": 0, "end": 60}, ...]
//	{"duration": 120, "chapters": [{"title": "Intro", "start": 0}, ...]}
func LoadChaptersFile(path string) (ChaptersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChaptersFile{}, fmt.Errorf("read chapters file: %w", err)
	}
	return ParseChapters(data)
}

// ParseChapters décode le contenu d'un fichier de chapitres.
func ParseChapters(data []byte) (ChaptersFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ChaptersFile{}, nil
	}

	var f chaptersFile
	if data[0] == '[' {
		if err := json.Unmarshal(data, &f.Chapters); err != nil {
			return ChaptersFile{}, fmt.Errorf("decode chapters: %w", err)
		}
	} else if err := json.Unmarshal(data, &f); err != nil {
		return ChaptersFile{}, fmt.Errorf("decode chapters: %w", err)
	}

	out := ChaptersFile{Chapters: make([]model.RawChapter, 0, len(f.Chapters))}
	if f.Duration != nil {
		d := model.Seconds(*f.Duration)
		out.Duration = &d
	}
	for _, c := range f.Chapters {
		rc := model.RawChapter{Title: c.Title, Start: model.Seconds(c.Start)}
		if c.End != nil {
			e := model.Seconds(*c.End)
			rc.End = &e
		}
		out.Chapters = append(out.Chapters, rc)
	}
	return out, nil
}
