package cfg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"iris-app/internal/common"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Port            int
	ScalerPath      string
	ModelPath       string
	BundlePath      string
	ImageDir        string
	ChartCacheSize  int
	ChartWidth      int
	ChartHeight     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFile         string
}

type ConfigFile struct {
	Server struct {
		Port            int    `yaml:"port"`
		ReadTimeout     string `yaml:"readTimeout"`
		WriteTimeout    string `yaml:"writeTimeout"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Artifacts struct {
		ScalerPath string `yaml:"scalerPath"`
		ModelPath  string `yaml:"modelPath"`
		BundlePath string `yaml:"bundlePath"`
	} `yaml:"artifacts"`

	Dashboard struct {
		ImageDir       string `yaml:"imageDir"`
		ChartCacheSize int    `yaml:"chartCacheSize"`
		ChartWidth     int    `yaml:"chartWidth"`
		ChartHeight    int    `yaml:"chartHeight"`
	} `yaml:"dashboard"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Load reads settings from the YAML file named by CONFIG_FILE, or from the
// environment when it is unset. A .env file in the working directory is
// loaded first; variables already set in the process win.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	r := &envReader{}
	readTimeout := r.yamlDuration("server.readTimeout", config.Server.ReadTimeout, 10*time.Second)
	writeTimeout := r.yamlDuration("server.writeTimeout", config.Server.WriteTimeout, 10*time.Second)
	shutdownTimeout := r.yamlDuration("server.shutdownTimeout", config.Server.ShutdownTimeout, 10*time.Second)

	settings := Settings{
		Port:            r.intOr(common.EnvPort, intOr(config.Server.Port, common.DefaultPort)),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, stringOr(config.Artifacts.ScalerPath, common.DefaultScalerPath)),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, stringOr(config.Artifacts.ModelPath, common.DefaultModelPath)),
		BundlePath:      getEnvOrDefault(common.EnvBundlePath, config.Artifacts.BundlePath),
		ImageDir:        getEnvOrDefault(common.EnvImageDir, config.Dashboard.ImageDir),
		ChartCacheSize:  r.intOr(common.EnvChartCacheSize, intOr(config.Dashboard.ChartCacheSize, common.DefaultChartCacheSize)),
		ChartWidth:      r.intOr(common.EnvChartWidth, intOr(config.Dashboard.ChartWidth, common.DefaultChartWidth)),
		ChartHeight:     r.intOr(common.EnvChartHeight, intOr(config.Dashboard.ChartHeight, common.DefaultChartHeight)),
		ReadTimeout:     r.durationOr(common.EnvReadTimeout, readTimeout),
		WriteTimeout:    r.durationOr(common.EnvWriteTimeout, writeTimeout),
		ShutdownTimeout: r.durationOr(common.EnvShutdownTimeout, shutdownTimeout),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, stringOr(config.Logging.Level, common.DefaultLogLevel)),
		LogFile:         getEnvOrDefault(common.EnvLogFile, config.Logging.File),
	}
	if err := r.err(); err != nil {
		return Settings{}, err
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	r := &envReader{}
	settings := Settings{
		Port:            r.intOr(common.EnvPort, common.DefaultPort),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, common.DefaultScalerPath),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		BundlePath:      os.Getenv(common.EnvBundlePath), // optional
		ImageDir:        os.Getenv(common.EnvImageDir),   // optional, embedded images otherwise
		ChartCacheSize:  r.intOr(common.EnvChartCacheSize, common.DefaultChartCacheSize),
		ChartWidth:      r.intOr(common.EnvChartWidth, common.DefaultChartWidth),
		ChartHeight:     r.intOr(common.EnvChartHeight, common.DefaultChartHeight),
		ReadTimeout:     r.durationOr(common.EnvReadTimeout, 10*time.Second),
		WriteTimeout:    r.durationOr(common.EnvWriteTimeout, 10*time.Second),
		ShutdownTimeout: r.durationOr(common.EnvShutdownTimeout, 10*time.Second),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFile:         os.Getenv(common.EnvLogFile),
	}
	if err := r.err(); err != nil {
		return Settings{}, err
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// UsesBundle reports whether artifacts come from a bbolt bundle instead of
// the two JSON files.
func (s *Settings) UsesBundle() bool {
	return s.BundlePath != ""
}

// envReader parses typed values and remembers every malformed one, so a
// typo is reported instead of silently replaced by the default.
type envReader struct {
	errs []error
}

func (r *envReader) intOr(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return defaultValue
	}
	return i
}

func (r *envReader) durationOr(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return defaultValue
	}
	return d
}

func (r *envReader) yamlDuration(field, v string, defaultValue time.Duration) time.Duration {
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", field, v))
		return defaultValue
	}
	return d
}

func (r *envReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("configuration parse failed: %w", errors.Join(r.errs...))
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// validateSettings performs range validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.Port < common.MinPort || settings.Port > common.MaxPort {
		return fmt.Errorf("port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.Port)
	}

	if !settings.UsesBundle() {
		if settings.ScalerPath == "" {
			return fmt.Errorf("scaler path cannot be empty")
		}
		if settings.ModelPath == "" {
			return fmt.Errorf("model path cannot be empty")
		}
	}

	if settings.ChartCacheSize <= 0 || settings.ChartCacheSize > common.MaxChartCacheSize {
		return fmt.Errorf("chart cache size must be between 1 and %d, got %d", common.MaxChartCacheSize, settings.ChartCacheSize)
	}
	if settings.ChartWidth < common.MinChartDimension || settings.ChartWidth > common.MaxChartDimension {
		return fmt.Errorf("chart width must be between %d and %d, got %d", common.MinChartDimension, common.MaxChartDimension, settings.ChartWidth)
	}
	if settings.ChartHeight < common.MinChartDimension || settings.ChartHeight > common.MaxChartDimension {
		return fmt.Errorf("chart height must be between %d and %d, got %d", common.MinChartDimension, common.MaxChartDimension, settings.ChartHeight)
	}

	if settings.ReadTimeout < time.Second || settings.ReadTimeout > time.Minute {
		return fmt.Errorf("read timeout must be between 1s and 1m, got %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout < time.Second || settings.WriteTimeout > time.Minute {
		return fmt.Errorf("write timeout must be between 1s and 1m, got %v", settings.WriteTimeout)
	}
	if settings.ShutdownTimeout < time.Second || settings.ShutdownTimeout > time.Minute {
		return fmt.Errorf("shutdown timeout must be between 1s and 1m, got %v", settings.ShutdownTimeout)
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	return nil
}
