package config

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jobloss/internal/engine"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the statistics table.
type DataConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
}

// AggregateConfig configures the group-by-mean step.
type AggregateConfig struct {
	MissingMetric string `yaml:"missing_metric" mapstructure:"missing_metric"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port  int  `yaml:"port" mapstructure:"port"`
	Debug bool `yaml:"debug" mapstructure:"debug"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path looks for
// config.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("JOBLOSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.path", "job_stats.csv")
	v.SetDefault("data.format", engine.FormatAuto)
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.sheet", "")
	v.SetDefault("aggregate.missing_metric", string(engine.SkipMissing))
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum-like settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Data.Format) {
	case engine.FormatAuto, engine.FormatCSV, engine.FormatXLSX:
	default:
		return eris.Errorf("config: data.format %q (want auto, csv or xlsx)", c.Data.Format)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return eris.Errorf("config: data.delimiter %q must be a single character", c.Data.Delimiter)
	}
	if _, err := engine.ParseMissingMetricPolicy(c.Aggregate.MissingMetric); err != nil {
		return eris.Wrap(err, "config: aggregate.missing_metric")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrapf(err, "config: log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: log.format %q (want json or console)", c.Log.Format)
	}
	return nil
}

// LoadOptions converts the data and aggregate sections for the engine.
// Call after Validate.
func (c *Config) LoadOptions() engine.LoadOptions {
	delim, _ := utf8.DecodeRuneInString(c.Data.Delimiter)
	policy, _ := engine.ParseMissingMetricPolicy(c.Aggregate.MissingMetric)
	return engine.LoadOptions{
		Format:        strings.ToLower(c.Data.Format),
		Delimiter:     delim,
		Sheet:         c.Data.Sheet,
		MissingMetric: policy,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
