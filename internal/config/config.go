package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Backend contains configuration for the remote analysis service.
type Backend struct {
	BaseURL        string `toml:"base_url"`
	UserID         string `toml:"user_id"`
	Persona        string `toml:"persona"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Camera contains configuration for the capture device.
type Camera struct {
	Device          string `toml:"device"`
	WidthHint       int    `toml:"width_hint"`
	HeightHint      int    `toml:"height_hint"`
	StillQuality    int    `toml:"still_quality"`
	SnapshotTimeout int    `toml:"snapshot_timeout"`
}

// Geolocation contains configuration for best-effort coordinate lookup.
type Geolocation struct {
	Enabled           bool    `toml:"enabled"`
	ProviderURL       string  `toml:"provider_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	FallbackLatitude  float64 `toml:"fallback_latitude"`
	FallbackLongitude float64 `toml:"fallback_longitude"`
}

// ImageStore contains configuration for the local image database.
type ImageStore struct {
	PurgeDays int `toml:"purge_days"`
}

// Reconcile contains configuration for the timestamp-to-image index file.
type Reconcile struct {
	Path string `toml:"path"`
}

// Watch contains configuration for the continuous barcode session.
type Watch struct {
	DecodeCooldownSeconds int `toml:"decode_cooldown_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for NutriScan.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Backend: remote analysis service connection and identity
//   - Camera: capture device and still-frame settings
//   - Geolocation: best-effort coordinate lookup with fixed fallback
//   - ImageStore: local image retention
//   - Reconcile: timestamp-to-image index location
//   - Watch: continuous barcode session pacing
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Backend     Backend     `toml:"backend"`
	Camera      Camera      `toml:"camera"`
	Geolocation Geolocation `toml:"geolocation"`
	ImageStore  ImageStore  `toml:"image_store"`
	Reconcile   Reconcile   `toml:"reconcile"`
	Watch       Watch       `toml:"watch"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/nutriscan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nutriscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Reconcile.Path); strings.TrimSpace(dir) != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create reconcile directory %q: %w", dir, err)
		}
	}
	return nil
}

// GrabberBinary returns the frame-grabber executable name.
func (c *Config) GrabberBinary() string {
	return "ffmpeg"
}

// DecoderBinary returns the streaming barcode decoder executable name.
func (c *Config) DecoderBinary() string {
	return "zbarcam"
}

// ProbeBinary returns the executable used to query camera capabilities.
func (c *Config) ProbeBinary() string {
	return "v4l2-ctl"
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
