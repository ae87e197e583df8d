package config

const (
	defaultConfigPath       = "~/.config/songpatch/config.toml"
	defaultLogDir           = "~/.local/share/songpatch/logs"
	defaultStateDir         = "~/.local/share/songpatch"
	defaultLogRetentionDays = 30
	defaultHistoryRetention = 90
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultOutputExtension  = ".ogg"
	defaultOutputCodec      = "libvorbis"
	defaultOutputQuality    = 6
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Output: Output{
			Extension: defaultOutputExtension,
			Codec:     defaultOutputCodec,
			Quality:   defaultOutputQuality,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
