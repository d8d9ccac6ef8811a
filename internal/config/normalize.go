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
	c.normalizeAuth()
	c.normalizeDeadlines()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAuth() {
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = os.Getenv("SCRIPTQUEUE_JWT_SECRET")
	}
	if c.Auth.TokenHours <= 0 {
		c.Auth.TokenHours = defaultTokenHours
	}
	if c.Auth.BcryptCost < 0 {
		c.Auth.BcryptCost = 0
	}
}

func (c *Config) normalizeDeadlines() {
	if c.Deadlines.ScanIntervalMinutes <= 0 {
		c.Deadlines.ScanIntervalMinutes = defaultScanIntervalMinutes
	}
	if c.Deadlines.NearDueDays <= 0 {
		c.Deadlines.NearDueDays = defaultNearDueDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
