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
	c.normalizeTools()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = toolFromEnv(c.Tools.FFmpeg, "SONGPATCH_FFMPEG")
	c.Tools.FFprobe = toolFromEnv(c.Tools.FFprobe, "SONGPATCH_FFPROBE")
	c.Tools.FPcalc = toolFromEnv(c.Tools.FPcalc, "SONGPATCH_FPCALC")
}

func toolFromEnv(value, envKey string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(envKey); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func (c *Config) normalizeOutput() {
	ext := strings.ToLower(strings.TrimSpace(c.Output.Extension))
	if ext == "" {
		ext = defaultOutputExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Output.Extension = ext
	c.Output.Codec = strings.TrimSpace(c.Output.Codec)
	if c.Output.Codec == "" {
		c.Output.Codec = defaultOutputCodec
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
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}
