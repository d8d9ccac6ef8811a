package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateDeadlines(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scriptqueue/config.toml"
		}
		return fmt.Errorf("auth.jwt_secret is required. Set SCRIPTQUEUE_JWT_SECRET env var or edit %s (create with 'scriptqueue config init')", defaultPath)
	}
	if c.Auth.TokenHours <= 0 {
		return errors.New("auth.token_hours must be positive")
	}
	return nil
}

func (c *Config) validateDeadlines() error {
	if err := ensurePositiveMap(map[string]int{
		"deadlines.scan_interval_minutes": c.Deadlines.ScanIntervalMinutes,
		"deadlines.near_due_days":         c.Deadlines.NearDueDays,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
