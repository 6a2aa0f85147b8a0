package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/internal/fsutil"
	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"gopkg.in/yaml.v3"
)

const CurrentConfigVersion = 2

// nom du fichier de config par défaut (à côté du binaire)
const DefaultFileName = "clipscribe.yaml"

// struct pour les paramètres de configuration
type Config struct {
	// Chemins
	OutputDir string `yaml:"output_dir"`

	// Organisation
	SaveInSubdir bool `yaml:"save_in_subdir"`

	// Métadonnées et pistes brutes
	SaveRawJSON bool `yaml:"save_raw_json"`
	SaveRawSubs bool `yaml:"save_raw_subs"`

	// Nombre de segments traités en parallèle
	Workers int `yaml:"workers"`

	Captions struct {
		WordsPerCue      int    `yaml:"words_per_cue"`
		Format           string `yaml:"format"` // srt | vtt
		Timing           string `yaml:"timing"` // relative | absolute
		PreferManualSubs bool   `yaml:"prefer_manual_subs"`
		Language         string `yaml:"language"`
	} `yaml:"captions"`

	Clips struct {
		Enabled      bool   `yaml:"enabled"`
		Vertical     bool   `yaml:"vertical"`
		BurnCaptions bool   `yaml:"burn_captions"`
		Container    string `yaml:"container"`
		Preset       string `yaml:"preset"`
		CRF          int    `yaml:"crf"`
		Blur         int    `yaml:"blur"`
		TitleOverlay bool   `yaml:"title_overlay"`

		Style struct {
			FontSize      int    `yaml:"font_size"`
			FontColor     string `yaml:"font_color"`
			TitleFontSize int    `yaml:"title_font_size"`
			TitlePosition string `yaml:"title_position"` // top | bottom
		} `yaml:"style"`
	} `yaml:"clips"`

	// yt-dlp
	YtDlp struct {
		Name         string `yaml:"name"`
		Path         string `yaml:"path"`
		ShowWarnings bool   `yaml:"show_warnings"`

		// ResolvedPath contient le chemin effectif vers l'exécutable
		ResolvedPath string `yaml:"-"`
	} `yaml:"yt_dlp"`

	FFmpeg struct {
		Name        string `yaml:"name"`
		Path        string `yaml:"path"`
		FFprobeName string `yaml:"ffprobe_name"`

		ResolvedPath      string `yaml:"-"`
		ResolvedProbePath string `yaml:"-"`
	} `yaml:"ffmpeg"`

	Cache struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"cache"`

	Fetch struct {
		Timeout           time.Duration `yaml:"timeout"`
		MaxBytes          int64         `yaml:"max_bytes"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		MaxRetries        int           `yaml:"max_retries"`
	} `yaml:"fetch"`

	// Reconnaissance vocale (endpoint compatible /v1/audio/transcriptions)
	Speech struct {
		Enabled      bool          `yaml:"enabled"`
		Endpoint     string        `yaml:"endpoint"`
		Model        string        `yaml:"model"`
		Language     string        `yaml:"language"`
		APIKey       string        `yaml:"api_key"`
		ChunkSeconds int           `yaml:"chunk_seconds"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"speech"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`

	Report struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"report"`

	Transcript struct {
		// transcript Markdown découpé par segments
		Save bool `yaml:"save"`
		// copie du transcript compact dans le presse-papier
		Copy bool `yaml:"copy"`
	} `yaml:"transcript"`

	ConfigVersion int `yaml:"config_version"`

	// champ de la version 1, déplacé dans captions.prefer_manual_subs
	LegacyPreferManualSubs *bool `yaml:"prefer_manual_subs,omitempty"`

	configFilePath string
}

// Configuration par défaut (fallback si l'asset embarqué est manquant)
func defaultConfig() *Config {
	c := &Config{}

	c.OutputDir = "."
	c.SaveInSubdir = true
	c.SaveRawJSON = false
	c.SaveRawSubs = false
	c.Workers = runtime.NumCPU()

	c.Captions.WordsPerCue = captions.DefaultWordsPerCue
	c.Captions.Format = "srt"
	c.Captions.Timing = "relative"
	c.Captions.PreferManualSubs = true
	c.Captions.Language = ""

	c.Clips.Enabled = true
	c.Clips.Vertical = false
	c.Clips.BurnCaptions = false
	c.Clips.Container = "mp4"
	c.Clips.Preset = "slow"
	c.Clips.CRF = 17
	c.Clips.Blur = 20
	c.Clips.TitleOverlay = false
	c.Clips.Style.FontSize = 24
	c.Clips.Style.FontColor = "#FFFFFF"
	c.Clips.Style.TitleFontSize = 48
	c.Clips.Style.TitlePosition = "top"

	c.YtDlp.Name = "yt-dlp"
	c.YtDlp.Path = ""
	c.YtDlp.ShowWarnings = false

	c.FFmpeg.Name = "ffmpeg"
	c.FFmpeg.Path = ""
	c.FFmpeg.FFprobeName = "ffprobe"

	c.Cache.Enabled = true
	c.Cache.Path = ""

	c.Fetch.Timeout = 15 * time.Second
	c.Fetch.MaxBytes = 10_000_000
	c.Fetch.RequestsPerSecond = 2
	c.Fetch.MaxRetries = 3

	c.Speech.Enabled = false
	c.Speech.Endpoint = ""
	c.Speech.Model = "whisper-1"
	c.Speech.ChunkSeconds = 30
	c.Speech.Timeout = 2 * time.Minute

	c.Server.ListenAddr = "127.0.0.1:8080"
	c.Report.Enabled = true
	c.Transcript.Save = true
	c.Transcript.Copy = false

	c.ConfigVersion = CurrentConfigVersion

	return c
}

// Default retourne la configuration par défaut, normalisée.
func Default() *Config {
	c := defaultConfig()
	c.normalizeConfig()
	return c
}

// Load lit la config; si le fichier n'existe pas, on copie l'exemple embarqué depuis internal/assets.
// Les variables d'environnement (et un éventuel .env) s'appliquent par-dessus le fichier.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	// si le fichier n'existe pas -> essayer de créer à partir de l'asset embarqué
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfigFromEmbedded(path); err != nil {
			return nil, fmt.Errorf("échec de création du fichier de configuration par défaut : %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture du fichier de configuration %s impossible : %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("analyse du fichier de configuration %s impossible : %w", path, err)
	}
	cfg.configFilePath = path

	// gestion de version : si le fichier est plus ancien -> orchestrer la mise à jour
	if cfg.ConfigVersion < CurrentConfigVersion {
		if err := orchestrateConfigUpgrade(cfg, cfg.ConfigVersion); err != nil {
			return nil, fmt.Errorf("échec de mise à niveau de la configuration : %w", err)
		}
	}

	if err := cfg.applyEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	cfg.normalizeConfig()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse : defaults puis YAML par-dessus (les champs absents conservent les valeurs par défaut).
func parse(data []byte) (*Config, error) {
	cfg := defaultConfig()
	// un fichier sans config_version est un fichier de la version 1
	cfg.ConfigVersion = 1

	// corriger les chemins Windows avec des backslashes
	data = bytes.ReplaceAll(data, []byte(`\`), []byte(`/`))

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalizeConfig()
	return cfg, nil
}

func createDefaultConfigFromEmbedded(dstPath string) error {
	b, err := assets.Embedded.ReadFile(assets.DefaultConfigAsset)
	if err != nil {
		return fmt.Errorf("lecture du modèle de configuration embarqué impossible : %w", err)
	}

	// écrire atomiquement sur disque (évite les fichiers partiels)
	if err := fsutil.WriteFileAtomic(dstPath, b, 0o644); err != nil {
		return fmt.Errorf("échec d'écriture du fichier de configuration %s : %w", dstPath, err)
	}

	fmt.Printf("info : fichier de configuration par défaut créé : %s\n", dstPath)
	return nil
}

// Path retourne le fichier d'où la config a été chargée ("" pour Default()).
func (c *Config) Path() string {
	return c.configFilePath
}

func (c *Config) normalizeConfig() {
	// Nettoyage des chemins
	c.OutputDir = filepath.Clean(c.OutputDir)

	if c.Workers <= 0 {
		c.Workers = 1
	}

	// Trim and normalize strings
	c.Captions.Format = strings.TrimSpace(strings.ToLower(c.Captions.Format))
	if c.Captions.Format == "" {
		c.Captions.Format = "srt"
	}
	c.Captions.Timing = strings.TrimSpace(strings.ToLower(c.Captions.Timing))
	if c.Captions.Timing == "" {
		c.Captions.Timing = "relative"
	}
	c.Captions.Language = strings.TrimSpace(c.Captions.Language)

	c.Clips.Container = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(c.Clips.Container)), ".")
	if c.Clips.Container == "" {
		c.Clips.Container = "mp4"
	}

	c.Clips.Style.FontColor = strings.TrimSpace(c.Clips.Style.FontColor)
	c.Clips.Style.TitlePosition = strings.TrimSpace(strings.ToLower(c.Clips.Style.TitlePosition))
	if c.Clips.Style.TitlePosition == "" {
		c.Clips.Style.TitlePosition = "top"
	}

	c.Speech.Endpoint = strings.TrimSpace(c.Speech.Endpoint)
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	c.Speech.Language = strings.TrimSpace(c.Speech.Language)
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)

	if c.Cache.Path != "" {
		c.Cache.Path = filepath.Clean(c.Cache.Path)
	}

	c.ResolveYtDlpPath()
	c.ResolveFFmpegPath()
}

// CachePath retourne le chemin de la base de cache ; par défaut à côté du fichier de config.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	dir := "."
	if c.configFilePath != "" {
		dir = filepath.Dir(c.configFilePath)
	}
	return filepath.Join(dir, "clipscribe-cache.db")
}

// exeName ajoute .exe sur Windows si nécessaire.
func exeName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return name
}

// resolveBinary : chemin vide -> le nom seul (recherche dans PATH) ;
// chemin qui finit par l'exécutable -> tel quel ; sinon chemin = répertoire.
func resolveBinary(name, cfgPath string) string {
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		return name
	}
	cleanPath := filepath.Clean(cfgPath)
	if filepath.Base(cleanPath) == name {
		return cleanPath
	}
	return filepath.Join(cleanPath, name)
}

// ResolveYtDlpPath normalise le nom et résout le chemin complet vers l'exécutable.
// Appeler après avoir modifié cfg.YtDlp.Name ou cfg.YtDlp.Path.
func (c *Config) ResolveYtDlpPath() {
	if c == nil {
		return
	}
	c.YtDlp.Name = exeName(c.YtDlp.Name, "yt-dlp")
	c.YtDlp.ResolvedPath = resolveBinary(c.YtDlp.Name, c.YtDlp.Path)
}

// ResolveFFmpegPath fait de même pour ffmpeg et ffprobe (même répertoire).
func (c *Config) ResolveFFmpegPath() {
	if c == nil {
		return
	}
	c.FFmpeg.Name = exeName(c.FFmpeg.Name, "ffmpeg")
	c.FFmpeg.FFprobeName = exeName(c.FFmpeg.FFprobeName, "ffprobe")
	c.FFmpeg.ResolvedPath = resolveBinary(c.FFmpeg.Name, c.FFmpeg.Path)

	probeDir := strings.TrimSpace(c.FFmpeg.Path)
	if probeDir != "" && filepath.Base(filepath.Clean(probeDir)) == c.FFmpeg.Name {
		probeDir = filepath.Dir(filepath.Clean(probeDir))
	}
	c.FFmpeg.ResolvedProbePath = resolveBinary(c.FFmpeg.FFprobeName, probeDir)
}
