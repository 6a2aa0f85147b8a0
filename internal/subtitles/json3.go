package subtitles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// json3Doc est la structure brute d'une piste YouTube au format json3.
type json3Doc struct {
	WireMagic string       `json:"wireMagic,omitempty"`
	Events    []json3Event `json:"events"`
}

type json3Event struct {
	TStartMs    *int64     `json:"tStartMs,omitempty"`
	DDurationMs *int64     `json:"dDurationMs,omitempty"`
	AAppend     *int       `json:"aAppend,omitempty"`
	Segs        []json3Seg `json:"segs,omitempty"`
	// autres champs (wpWinPosId, wWinId...) ignorés
}

type json3Seg struct {
	Utf8      string `json:"utf8"`
	TOffsetMs *int64 `json:"tOffsetMs,omitempty"`
}

func (e json3Event) startMs() int64 {
	if e.TStartMs == nil {
		return 0
	}
	return *e.TStartMs
}

func (e json3Event) durationMs() int64 {
	if e.DDurationMs == nil {
		return 0
	}
	return *e.DDurationMs
}

// wordMs : tStartMs de l'event + tOffsetMs du seg (mot ASR).
func (e json3Event) wordMs(s json3Seg) int64 {
	if s.TOffsetMs == nil {
		return e.startMs()
	}
	return e.startMs() + *s.TOffsetMs
}

// blank indique un event sans mot : pas de segs, ou uniquement des retours à la ligne.
func (e json3Event) blank() bool {
	for _, s := range e.Segs {
		t := strings.TrimSpace(strings.ReplaceAll(s.Utf8, `\n`, ""))
		if t != "" {
			return false
		}
	}
	return true
}

// text assemble les segs de l'event en une ligne nettoyée.
func (e json3Event) text() string {
	parts := make([]string, 0, len(e.Segs))
	for _, s := range e.Segs {
		if t := cleanSeg(s.Utf8); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// ParseJSON3 décode une piste json3 déjà en mémoire.
// Les champs inconnus sont ignorés.
func ParseJSON3(b []byte) (json3Doc, error) {
	var doc json3Doc
	if len(b) == 0 {
		return doc, fmt.Errorf("ParseJSON3: empty input")
	}
	return ParseJSON3Reader(bytes.NewReader(b))
}

func ParseJSON3Reader(r io.Reader) (json3Doc, error) {
	var doc json3Doc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("ParseJSON3: decode error: %w", err)
	}
	return doc, nil
}
