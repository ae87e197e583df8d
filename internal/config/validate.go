package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	ext := c.Output.Extension
	if len(ext) < 2 || strings.ContainsAny(ext[1:], `./\ `) {
		return fmt.Errorf("output.extension %q must be a single file extension such as .ogg", ext)
	}
	if c.Output.Quality < -1 || c.Output.Quality > 10 {
		return errors.New("output.quality must be between -1 and 10")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.ToFile && strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set when logging.to_file is true")
	}
	return nil
}
