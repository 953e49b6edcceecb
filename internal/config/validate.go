package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateGeolocation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/nutriscan/config.toml"
		}
		return fmt.Errorf("backend.base_url is required. Set NUTRISCAN_BASE_URL env var or edit %s (create with 'nutriscan config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend.base_url %q is not a valid URL", c.Backend.BaseURL)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if strings.TrimSpace(c.Camera.Device) == "" {
		return errors.New("camera.device must be set")
	}
	return nil
}

func (c *Config) validateGeolocation() error {
	if c.Geolocation.FallbackLatitude < -90 || c.Geolocation.FallbackLatitude > 90 {
		return errors.New("geolocation.fallback_latitude must be between -90 and 90")
	}
	if c.Geolocation.FallbackLongitude < -180 || c.Geolocation.FallbackLongitude > 180 {
		return errors.New("geolocation.fallback_longitude must be between -180 and 180")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
