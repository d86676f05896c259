// Package config loads the defaults the command line tools run with.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/cxd309/traction-engine/internal/physics"
)

// EnvPrefix prefixes every environment override, e.g.
// TRACTION_PHYSICS_METERS_PER_TILE=125.
const EnvPrefix = "TRACTION"

// PhysicsConfig holds the world settings used when a scenario leaves them at
// zero.
type PhysicsConfig struct {
	MetersPerTile        int32 `mapstructure:"meters_per_tile"`
	PowerFactorPercent   int32 `mapstructure:"power_factor_percent"`
	SimtimeFactorPercent int32 `mapstructure:"simtime_factor_percent"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

// LogConfig sets the log level of the command line tool.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn or error

	level slog.Level
}

// AppConfig holds entire config
type AppConfig struct {
	Physics PhysicsConfig `mapstructure:"physics"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	d := physics.DefaultSettings()
	v.SetDefault("physics.meters_per_tile", d.MetersPerTile)
	v.SetDefault("physics.power_factor_percent", d.PowerFactorPercent)
	v.SetDefault("physics.simtime_factor_percent", d.SimtimeFactorPercent)
	v.SetDefault("output.pretty", false)
	v.SetDefault("log.level", "warn")
}

// LoadConfig reads the YAML file at path, if path is not empty, on top of the
// defaults and applies TRACTION_* environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Log.level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return &cfg, nil
}

// Settings converts the physics section.
func (c *AppConfig) Settings() physics.Settings {
	return physics.Settings{
		MetersPerTile:        c.Physics.MetersPerTile,
		PowerFactorPercent:   c.Physics.PowerFactorPercent,
		SimtimeFactorPercent: c.Physics.SimtimeFactorPercent,
	}
}

// LogLevel returns the log level LoadConfig parsed and validated.
func (c *AppConfig) LogLevel() slog.Level { return c.Log.level }
