package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Seconds représente une position ou une durée en secondes (fractionnaires).
type Seconds float64

// SecondsFromMs convertit des millisecondes en Seconds.
func SecondsFromMs(ms int64) Seconds {
	return Seconds(float64(ms) / 1000)
}

// Milliseconds arrondit à la milliseconde la plus proche.
func (s Seconds) Milliseconds() int64 {
	return int64(math.Round(float64(s) * 1000))
}

// Duration convertit en time.Duration (précision milliseconde).
func (s Seconds) Duration() time.Duration {
	return time.Duration(s.Milliseconds()) * time.Millisecond
}

// TimestampHHMMSS formate en "HH:MM:SS", partie fractionnaire tronquée.
// Exemple : 65.9 -> "00:01:05", 3661 -> "01:01:01".
func (s Seconds) TimestampHHMMSS() string {
	total := int64(math.Floor(float64(s)))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Timestamp formate en "HH:MM:SS<sep>mmm" : sep vaut ',' pour SRT et '.' pour VTT.
func (s Seconds) Timestamp(sep byte) string {
	ms := s.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	sec := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, sec, sep, ms%1000)
}

// FFmpeg formate pour les options -ss / -to de ffmpeg ("12.345").
func (s Seconds) FFmpeg() string {
	return fmt.Sprintf("%.3f", float64(s))
}

// Format identifie un format de fichier produit ou consommé.
type Format string

const (
	FormatTXT      Format = "txt"
	FormatMARKDOWN Format = "md"
	FormatJSON3    Format = "json3"
	FormatSRT      Format = "srt"
	FormatVTT      Format = "vtt"
	FormatJSON     Format = "json"
)

// ParseFormat convertit une chaîne en Format, insensible à la casse.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTXT, FormatMARKDOWN, FormatJSON3, FormatSRT, FormatVTT, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("format demandé inconnu: %s", s)
	}
}

// IsCaption indique un format de sous-titres minutés écrit par clipscribe.
func (f Format) IsCaption() bool {
	return f == FormatSRT || f == FormatVTT
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}

// Timing choisit le repère temporel des cues d'un segment.
type Timing string

const (
	// TimingRelative : fenêtre [0, durée du segment], pour un clip découpé.
	TimingRelative Timing = "relative"
	// TimingAbsolute : fenêtre [start, end] dans la vidéo source.
	TimingAbsolute Timing = "absolute"
)

func ParseTiming(s string) (Timing, error) {
	switch t := Timing(strings.ToLower(strings.TrimSpace(s))); t {
	case TimingRelative, TimingAbsolute:
		return t, nil
	default:
		return "", fmt.Errorf("timing inconnu: %s", s)
	}
}
