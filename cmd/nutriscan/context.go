package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"nutriscan/internal/backend"
	"nutriscan/internal/camera"
	"nutriscan/internal/capture"
	"nutriscan/internal/config"
	"nutriscan/internal/geo"
	"nutriscan/internal/imagestore"
	"nutriscan/internal/logging"
	"nutriscan/internal/reconcile"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newBackendClient() (*backend.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Backend.RequestTimeout) * time.Second
	return backend.New(cfg.Backend.BaseURL, backend.WithTimeout(timeout))
}

func (c *commandContext) openImageStore() (*imagestore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return imagestore.Open(cfg, logger)
}

func (c *commandContext) openReconcileIndex() (*reconcile.Index, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return reconcile.NewIndex(cfg.Reconcile.Path, logger), nil
}

// newController assembles the capture pipeline: camera grabber, location
// enricher, backend client, and the single-flight controller on top.
func (c *commandContext) newController() (*capture.Controller, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := c.newBackendClient()
	if err != nil {
		return nil, err
	}

	grabber := camera.NewGrabber(cfg, logger)
	locator := geo.NewEnricher(cfg, logger)
	return capture.NewController(cfg, grabber, locator, client, logger), nil
}
