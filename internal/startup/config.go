package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dupe-checker/internal/logging"
)

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all application configuration
type Config struct {
	Port           string `toml:"port"`
	MetricsPort    string `toml:"metrics_port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`

	FFmpegPath     string   `toml:"ffmpeg_path"`
	FFprobePath    string   `toml:"ffprobe_path"`
	ProbeTimeout   Duration `toml:"probe_timeout"`
	ExtractTimeout Duration `toml:"extract_timeout"`

	ThumbnailWidth  int  `toml:"thumbnail_width"`
	ThumbnailHeight int  `toml:"thumbnail_height"`
	MatchEmptyNames bool `toml:"match_empty_names"`

	RuntimeDir      string `toml:"runtime_dir"`
	LogThumbnails   bool   `toml:"log_thumbnails"`
	LogHealthChecks bool   `toml:"log_health_checks"`

	// Derived
	ConfigFile string `toml:"-"`
	LockPath   string `toml:"-"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		MetricsPort:     "9090",
		MetricsEnabled:  true,
		ProbeTimeout:    Duration(30 * time.Second),
		ExtractTimeout:  Duration(30 * time.Second),
		ThumbnailWidth:  240,
		ThumbnailHeight: 135,
		RuntimeDir:      filepath.Join(os.TempDir(), "dupe-checker"),
		LogHealthChecks: true,
	}
}

// LoadConfig loads configuration from the optional CONFIG_FILE and then
// environment variables, which take precedence, and prepares the runtime
// directory.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}
	logConfig(cfg)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureDirectory(cfg.RuntimeDir, "runtime"); err != nil {
		return nil, fmt.Errorf("runtime directory error: %w", err)
	}
	if err := testWriteAccess(cfg.RuntimeDir); err != nil {
		return nil, fmt.Errorf("runtime directory is not writable (required for the instance lock): %w", err)
	}
	logging.Info("  [OK] Runtime directory is writable: %s", cfg.RuntimeDir)

	return cfg, nil
}

// ReadConfig merges defaults, the config file and the environment without
// touching the filesystem beyond reading the file.
func ReadConfig() (*Config, error) {
	cfg := DefaultConfig()

	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	if cfg.ConfigFile != "" {
		if err := loadFile(&cfg, cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = getEnv("FFPROBE_PATH", cfg.FFprobePath)
	cfg.ProbeTimeout = Duration(getEnvDuration("PROBE_TIMEOUT", cfg.ProbeTimeout.Std()))
	cfg.ExtractTimeout = Duration(getEnvDuration("EXTRACT_TIMEOUT", cfg.ExtractTimeout.Std()))
	cfg.ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", cfg.ThumbnailWidth)
	cfg.ThumbnailHeight = getEnvInt("THUMBNAIL_HEIGHT", cfg.ThumbnailHeight)
	cfg.MatchEmptyNames = getEnvBool("MATCH_EMPTY_NAMES", cfg.MatchEmptyNames)
	cfg.RuntimeDir = getEnv("RUNTIME_DIR", cfg.RuntimeDir)
	cfg.LogThumbnails = getEnvBool("LOG_THUMBNAILS", cfg.LogThumbnails)
	cfg.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", cfg.LogHealthChecks)

	cfg.normalize()

	runtimeDir, err := filepath.Abs(cfg.RuntimeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve runtime directory path: %w", err)
	}
	cfg.RuntimeDir = runtimeDir
	cfg.LockPath = filepath.Join(runtimeDir, "dupe-checker.lock")

	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config: %s", strict.String())
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.ThumbnailWidth <= 0 {
		logging.Warn("  Invalid thumbnail width %d, using default: %d", c.ThumbnailWidth, def.ThumbnailWidth)
		c.ThumbnailWidth = def.ThumbnailWidth
	}
	if c.ThumbnailHeight <= 0 {
		logging.Warn("  Invalid thumbnail height %d, using default: %d", c.ThumbnailHeight, def.ThumbnailHeight)
		c.ThumbnailHeight = def.ThumbnailHeight
	}
	if c.ProbeTimeout <= 0 {
		logging.Warn("  Invalid probe timeout, using default: %v", def.ProbeTimeout.Std())
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.ExtractTimeout <= 0 {
		logging.Warn("  Invalid extract timeout, using default: %v", def.ExtractTimeout.Std())
		c.ExtractTimeout = def.ExtractTimeout
	}
	if c.RuntimeDir == "" {
		c.RuntimeDir = def.RuntimeDir
	}
}

func logConfig(cfg *Config) {
	if cfg.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:         %s", cfg.ConfigFile)
	}
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  FFMPEG_PATH:         %s", orDefault(cfg.FFmpegPath, "(auto)"))
	logging.Info("  FFPROBE_PATH:        %s", orDefault(cfg.FFprobePath, "(auto)"))
	logging.Info("  PROBE_TIMEOUT:       %v", cfg.ProbeTimeout.Std())
	logging.Info("  EXTRACT_TIMEOUT:     %v", cfg.ExtractTimeout.Std())
	logging.Info("  THUMBNAIL_SIZE:      %dx%d", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	logging.Info("  MATCH_EMPTY_NAMES:   %v", cfg.MatchEmptyNames)
	logging.Info("  RUNTIME_DIR:         %s", cfg.RuntimeDir)
	logging.Info("  LOG_THUMBNAILS:      %v", cfg.LogThumbnails)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
