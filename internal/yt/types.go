package yt

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
)

type ytdlpChapter struct {
	StartTime *float64 `json:"start_time"` // champ moderne, à préférer
	Start     float64  `json:"start"`      // fallback
	EndTime   *float64 `json:"end_time"`
	Title     string   `json:"title"`
}

type subtitleItem struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// ytdlpOutput représente la sortie JSON brute retournée par yt-dlp pour une vidéo.
//
// Subtitles et AutomaticCaptions sont des maps où :
//   - la clé (string) correspond au code langue de la piste (ex. "fr", "en", "fr-orig").
//   - la valeur ([]subtitleItem) liste les formats disponibles pour cette langue.
type ytdlpOutput struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Uploader          string                    `json:"uploader"`
	UploadDate        string                    `json:"upload_date"`
	Timestamp         int64                     `json:"timestamp"` // en Unix epoch
	Duration          float64                   `json:"duration"`
	WebpageURL        string                    `json:"webpage_url"`
	Chapters          []ytdlpChapter            `json:"chapters"`
	Subtitles         map[string][]subtitleItem `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleItem `json:"automatic_captions"`
}

// ExtractedRaw contient le JSON raw, une liste de lignes d'avertissements
type ExtractedRaw struct {
	JSON     []byte
	Warnings []string
}

// PrettyJSON retourne un json indenté
func (r *ExtractedRaw) PrettyJSON() ([]byte, error) {
	var obj any
	if err := json.Unmarshal(r.JSON, &obj); err != nil {
		return nil, err
	}
	return json.MarshalIndent(obj, "", "  ")
}

// LogWarnings journalise les avertissements de yt-dlp
func (r *ExtractedRaw) LogWarnings() {
	for _, w := range r.Warnings {
		slog.Warn("yt-dlp", slog.String("message", w))
	}
}

// runFunc exécute une commande et retourne sa sortie (injectable pour les tests).
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// YtDlp représente la commande yt-dlp à exécuter (nom de binaire ou chemin) + args.
type YtDlp struct {
	Name   string
	Path   string // chemin vers l'exe
	Config YtDlpConfig

	run runFunc
}
