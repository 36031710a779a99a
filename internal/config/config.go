// Package config loads application configuration from a YAML file and
// the environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Match    MatchConfig    `yaml:"match" mapstructure:"match"`
	Diagnose DiagnoseConfig `yaml:"diagnose" mapstructure:"diagnose"`
	Panel    PanelConfig    `yaml:"panel" mapstructure:"panel"`
	DiD      DiDConfig      `yaml:"did" mapstructure:"did"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend. Driver is "sqlite" or
// "postgres"; Path is the SQLite file, DatabaseURL the Postgres DSN.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// DataConfig holds default input dataset paths and the output directory.
type DataConfig struct {
	Reference  string `yaml:"reference" mapstructure:"reference"`
	ACS        string `yaml:"acs" mapstructure:"acs"`
	Enrollment string `yaml:"enrollment" mapstructure:"enrollment"`
	Wages      string `yaml:"wages" mapstructure:"wages"`
	Codebook   string `yaml:"codebook" mapstructure:"codebook"`
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
}

// MatchConfig configures the occupation code matcher.
type MatchConfig struct {
	MaskChars    string `yaml:"mask_chars" mapstructure:"mask_chars"`
	TopUnmatched int    `yaml:"top_unmatched" mapstructure:"top_unmatched"`
}

// DiagnoseConfig configures match diagnostics output.
type DiagnoseConfig struct {
	TopGroups int `yaml:"top_groups" mapstructure:"top_groups"`
	TopCodes  int `yaml:"top_codes" mapstructure:"top_codes"`
}

// PanelConfig configures survey filtering for panel construction.
type PanelConfig struct {
	MinAge int `yaml:"min_age" mapstructure:"min_age"`
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// DiDConfig configures the difference-in-differences specification.
type DiDConfig struct {
	BaseYear int `yaml:"base_year" mapstructure:"base_year"`
	PostYear int `yaml:"post_year" mapstructure:"post_year"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXPOSURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "exposure.db")
	v.SetDefault("data.output_dir", "out")
	v.SetDefault("match.mask_chars", "XY")
	v.SetDefault("match.top_unmatched", 10)
	v.SetDefault("diagnose.top_groups", 10)
	v.SetDefault("diagnose.top_codes", 10)
	v.SetDefault("panel.min_age", 22)
	v.SetDefault("panel.max_age", 35)
	v.SetDefault("did.base_year", 2019)
	v.SetDefault("did.post_year", 2025)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
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
