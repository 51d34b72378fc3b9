// Package config loads cropsight settings from .cropsight/settings.yaml and
// CROPSIGHT_* environment variables.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"cropsight/internal/agronomy"
	"cropsight/internal/persona"
)

// Dir is the settings directory looked up under the project root.
const Dir = ".cropsight"

// Config is the merged result of settings.yaml, environment and defaults.
type Config struct {
	Persona  string                  `yaml:"persona" mapstructure:"persona"`
	Latency  time.Duration           `yaml:"latency" mapstructure:"latency"`
	Defaults agronomy.MeasurementSet `yaml:"defaults" mapstructure:"defaults"`
	Log      LogConfig               `yaml:"log" mapstructure:"log"`
	Report   ReportConfig            `yaml:"report" mapstructure:"report"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// ReportConfig holds defaults for the report command.
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Load reads <root>/.cropsight/settings.yaml. A missing file is not an error;
// defaults and environment variables still apply.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(root, Dir))

	v.SetEnvPrefix("CROPSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Defaults = cfg.Defaults.Sanitized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("persona", persona.Operator.String())
	v.SetDefault("latency", "600ms")
	for _, f := range agronomy.Features {
		v.SetDefault("defaults."+f.Key(), agronomy.DefaultMeasurements().Get(f))
	}
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("report.dir", "cropsight-report")
}

// Validate rejects settings the rest of the program cannot honor.
func (c *Config) Validate() error {
	if _, ok := persona.ParseKind(c.Persona); !ok {
		return eris.Errorf("config: unknown persona %q", c.Persona)
	}
	if c.Latency < 0 {
		return eris.Errorf("config: negative latency %s", c.Latency)
	}
	return nil
}

// PersonaKind is the configured starting persona.
func (c *Config) PersonaKind() persona.Kind {
	k, _ := persona.ParseKind(c.Persona)
	return k
}
