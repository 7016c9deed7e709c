// Package config resolves dfa settings from defaults, an optional config file,
// DFA_* environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/dfa/pkg/runner"
)

// EnvPrefix is prepended to every environment variable, e.g. DFA_REDIS_ADDR.
const EnvPrefix = "DFA"

// Config is the resolved configuration of a dfa command.
type Config struct {
	Spec     string      `mapstructure:"spec"`
	Input    string      `mapstructure:"input"`
	Output   string      `mapstructure:"output"`
	Policy   string      `mapstructure:"policy"`
	Workers  int         `mapstructure:"workers"`
	Strict   bool        `mapstructure:"strict"`
	Format   string      `mapstructure:"format"`
	LogLevel string      `mapstructure:"log_level"`
	Port     int         `mapstructure:"port"`
	Watch    bool        `mapstructure:"watch"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig selects the redis spec store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"spec":           "spec",
	"input":          "input",
	"output":         "output",
	"policy":         "policy",
	"workers":        "workers",
	"strict":         "strict",
	"format":         "format",
	"log-level":      "log_level",
	"port":           "port",
	"watch":          "watch",
	"redis-addr":     "redis.addr",
	"redis-password": "redis.password",
	"redis-db":       "redis.db",
	"redis-key":      "redis.key",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("spec", "dfa.txt")
	v.SetDefault("input", "input.txt")
	v.SetDefault("output", "output.txt")
	v.SetDefault("policy", string(runner.PolicyIsolate))
	v.SetDefault("workers", 1)
	v.SetDefault("strict", true)
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8080)
	v.SetDefault("watch", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "dfa:spec")
}

// Load resolves the configuration.
// configFile may be empty, in which case ./.dfa.{yaml,json,toml} is used if present.
// flags may be nil; only flags that exist in the set are bound.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".dfa")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the commands would otherwise reject late.
func (c *Config) Validate() error {
	if _, err := runner.ParsePolicy(c.Policy); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", c.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
