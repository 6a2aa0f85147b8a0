package subtitles

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// WriteSRT écrit les cues au format SubRip :
//
//	1
//	00:00:00,000 --> 00:00:02,000
//	Hello world
func WriteSRT(w io.Writer, cues []model.Cue) error {
	for _, c := range cues {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			c.Index, c.Start.Timestamp(','), c.End.Timestamp(','), strings.TrimSpace(c.Text)); err != nil {
			return err
		}
	}
	return nil
}

// WriteVTT écrit les cues au format WebVTT (en-tête WEBVTT, identifiant = Index).
func WriteVTT(w io.Writer, cues []model.Cue) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, c := range cues {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			c.Index, c.Start.Timestamp('.'), c.End.Timestamp('.'), strings.TrimSpace(c.Text)); err != nil {
			return err
		}
	}
	return nil
}

// Encode écrit les cues dans le format demandé (srt ou vtt).
func Encode(w io.Writer, format model.Format, cues []model.Cue) error {
	switch format {
	case model.FormatSRT:
		return WriteSRT(w, cues)
	case model.FormatVTT:
		return WriteVTT(w, cues)
	default:
		return fmt.Errorf("format de sous-titres non supporté: %q", format)
	}
}

// EncodeBytes est Encode vers un buffer.
func EncodeBytes(format model.Format, cues []model.Cue) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, cues); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
