package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBackend(); err != nil {
		return err
	}
	c.normalizeCamera()
	c.normalizeGeolocation()
	if err := c.normalizeReconcile(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackend() error {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		if value, ok := os.LookupEnv("NUTRISCAN_BASE_URL"); ok {
			c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Backend.UserID = strings.TrimSpace(c.Backend.UserID)
	if c.Backend.UserID == "" {
		if value, ok := os.LookupEnv("NUTRISCAN_USER_ID"); ok {
			c.Backend.UserID = strings.TrimSpace(value)
		}
	}
	c.Backend.Persona = strings.ToLower(strings.TrimSpace(c.Backend.Persona))
	if c.Backend.Persona == "" {
		c.Backend.Persona = defaultPersona
	}
	if c.Backend.RequestTimeout <= 0 {
		c.Backend.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeCamera() {
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	if c.Camera.Device == "" {
		c.Camera.Device = defaultCameraDevice
	}
	if c.Camera.WidthHint <= 0 {
		c.Camera.WidthHint = defaultWidthHint
	}
	if c.Camera.HeightHint <= 0 {
		c.Camera.HeightHint = defaultHeightHint
	}
	if c.Camera.StillQuality <= 0 || c.Camera.StillQuality > 100 {
		c.Camera.StillQuality = defaultStillQuality
	}
	if c.Camera.SnapshotTimeout <= 0 {
		c.Camera.SnapshotTimeout = defaultSnapshotTimeout
	}
}

func (c *Config) normalizeGeolocation() {
	c.Geolocation.ProviderURL = strings.TrimSpace(c.Geolocation.ProviderURL)
	if c.Geolocation.ProviderURL == "" {
		c.Geolocation.ProviderURL = defaultGeoProviderURL
	}
	if c.Geolocation.TimeoutSeconds <= 0 {
		c.Geolocation.TimeoutSeconds = defaultGeoTimeout
	}
	if c.Geolocation.FallbackLatitude == 0 && c.Geolocation.FallbackLongitude == 0 {
		c.Geolocation.FallbackLatitude = defaultFallbackLatitude
		c.Geolocation.FallbackLongitude = defaultFallbackLongitude
	}
}

func (c *Config) normalizeReconcile() error {
	var err error
	if strings.TrimSpace(c.Reconcile.Path) == "" {
		c.Reconcile.Path = defaultReconcilePath
	}
	if c.Reconcile.Path, err = expandPath(c.Reconcile.Path); err != nil {
		return fmt.Errorf("reconcile.path: %w", err)
	}
	if c.ImageStore.PurgeDays < 0 {
		c.ImageStore.PurgeDays = defaultPurgeDays
	}
	if c.Watch.DecodeCooldownSeconds <= 0 {
		c.Watch.DecodeCooldownSeconds = defaultDecodeCooldown
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
