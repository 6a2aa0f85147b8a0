package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Variables d'environnement reconnues (prioritaires sur le fichier YAML).
const (
	EnvOutputDir   = "CLIPSCRIBE_OUTPUT_DIR"
	EnvWorkers     = "CLIPSCRIBE_WORKERS"
	EnvWordsPerCue = "CLIPSCRIBE_WORDS_PER_CUE"
	EnvYtDlpPath   = "CLIPSCRIBE_YTDLP_PATH"
	EnvFFmpegPath  = "CLIPSCRIBE_FFMPEG_PATH"
	EnvListenAddr  = "CLIPSCRIBE_LISTEN_ADDR"
	EnvSpeechURL   = "CLIPSCRIBE_SPEECH_ENDPOINT"
	EnvSpeechKey   = "CLIPSCRIBE_SPEECH_API_KEY"
)

// applyEnv charge un éventuel fichier .env (sans écraser l'environnement existant)
// puis applique les variables CLIPSCRIBE_*.
func (c *Config) applyEnv(dotenvPath string) error {
	if _, err := os.Stat(dotenvPath); err == nil {
		if err := godotenv.Load(dotenvPath); err != nil {
			return fmt.Errorf("lecture de %s impossible : %w", dotenvPath, err)
		}
	}

	c.OutputDir = getEnv(EnvOutputDir, c.OutputDir)
	c.YtDlp.Path = getEnv(EnvYtDlpPath, c.YtDlp.Path)
	c.FFmpeg.Path = getEnv(EnvFFmpegPath, c.FFmpeg.Path)
	c.Server.ListenAddr = getEnv(EnvListenAddr, c.Server.ListenAddr)
	c.Speech.Endpoint = getEnv(EnvSpeechURL, c.Speech.Endpoint)
	c.Speech.APIKey = getEnv(EnvSpeechKey, c.Speech.APIKey)

	var err error
	if c.Workers, err = getEnvInt(EnvWorkers, c.Workers); err != nil {
		return err
	}
	if c.Captions.WordsPerCue, err = getEnvInt(EnvWordsPerCue, c.Captions.WordsPerCue); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("variable %s invalide (%q) : %w", key, value, err)
	}
	return n, nil
}
