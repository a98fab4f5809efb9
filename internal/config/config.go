// Package config provides configuration management for stencil using Viper:
// a .stencil.yml project file, STENCIL_ environment variable overrides, and
// command-line flag bindings.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Output    OutputConfig    `yaml:"output"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type TemplatesConfig struct {
	// Root is the directory templates are resolved against.
	Root string `yaml:"root"`

	// Watch enables filesystem watching for template cache invalidation in
	// long-running hosts.
	Watch bool `yaml:"watch"`
}

type OutputConfig struct {
	// Dir is the base directory relative output paths are written under.
	Dir string `yaml:"dir"`
}

type MetadataConfig struct {
	// Schema is the path of the metadata schema document. Empty selects the
	// builtin schema.
	Schema string `yaml:"schema"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Init wires viper to the project configuration sources: an explicit config
// file when given, otherwise .stencil.yml in the working directory, with
// STENCIL_-prefixed environment variables overriding either.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".stencil")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("STENCIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			// No project file is fine; defaults and env carry the config.
			return nil
		}
		return stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigSyntax,
			"failed to read config file "+viper.ConfigFileUsed(),
		).WithContext("cause", err.Error())
	}

	return nil
}

// Load unmarshals the active viper state into a validated Config.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigSyntax,
			"failed to parse configuration",
		).WithContext("cause", err.Error())
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Templates.Root == "" {
		config.Templates.Root = viper.GetString("templates.root")
	}
	if config.Templates.Root == "" {
		config.Templates.Root = "templates"
	}
	if viper.IsSet("templates.watch") {
		config.Templates.Watch = viper.GetBool("templates.watch")
	}

	if config.Output.Dir == "" {
		config.Output.Dir = viper.GetString("output.dir")
	}
	if config.Output.Dir == "" {
		config.Output.Dir = "."
	}

	if config.Metadata.Schema == "" {
		config.Metadata.Schema = viper.GetString("metadata.schema")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = viper.GetString("logging.level")
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = viper.GetString("logging.format")
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

// Validate checks the configuration for values no command could run with.
func (c *Config) Validate() error {
	if c.Templates.Root == "" {
		return invalid("templates.root must not be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be one of debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return invalid("logging.format must be json or text")
	}

	return nil
}

func invalid(detail string) error {
	return stencilerrors.NewConfigError(stencilerrors.ErrCodeConfigInvalid, detail)
}
