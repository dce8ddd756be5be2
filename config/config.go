package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	KindMCTS   = "mcts"
	KindRandom = "random"
)

// EnvPrefix prefixes the environment variables overriding scalar settings,
// e.g. HSAI_GAMES=10.
const EnvPrefix = "HSAI"

type Config struct {
	Name      string        `mapstructure:"name" yaml:"name"`
	Games     int           `mapstructure:"games" yaml:"games"`
	MaxMoves  int           `mapstructure:"max_moves" yaml:"max_moves"`
	Seed      uint64        `mapstructure:"seed" yaml:"seed"` // 0 seeds from the clock
	Strict    bool          `mapstructure:"strict" yaml:"strict"`
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level"`
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
	Agents    []AgentConfig `mapstructure:"agents" yaml:"agents"`
}

type AgentConfig struct {
	ID          int           `mapstructure:"id" yaml:"id"`
	Kind        string        `mapstructure:"kind" yaml:"kind"`
	Goroutines  int           `mapstructure:"goroutines" yaml:"goroutines"`
	Episodes    int           `mapstructure:"episodes" yaml:"episodes"`
	Duration    time.Duration `mapstructure:"duration" yaml:"duration"`
	Cutoff      int           `mapstructure:"cutoff" yaml:"cutoff"`
	Exploration float64       `mapstructure:"exploration" yaml:"exploration"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "duel")
	v.SetDefault("games", 10)
	v.SetDefault("max_moves", 10000)
	v.SetDefault("seed", 0)
	v.SetDefault("strict", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_dir", "results")
	v.SetDefault("agents", []map[string]any{
		{"id": 1, "kind": KindMCTS, "goroutines": 4, "episodes": 2000},
		{"id": 2, "kind": KindRandom},
	})
}

// Setup loads the defaults, then the file at cfgPath if one is given, then the
// environment.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
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

func (c *Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.Games <= 0 {
		errs = append(errs, fmt.Errorf("games must be positive, got %d", c.Games))
	}
	if c.MaxMoves <= 0 {
		errs = append(errs, fmt.Errorf("max_moves must be positive, got %d", c.MaxMoves))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Agents) != 2 {
		errs = append(errs, fmt.Errorf("need exactly two agents, got %d", len(c.Agents)))
	}
	seen := make(map[int]bool, len(c.Agents))
	for _, agent := range c.Agents {
		if seen[agent.ID] {
			errs = append(errs, fmt.Errorf("duplicate agent id %d", agent.ID))
		}
		seen[agent.ID] = true
		if err := agent.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("agent %d: %w", agent.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level: %w", err)
	}
	return level, nil
}

func (a AgentConfig) Validate() error {
	switch a.Kind {
	case KindRandom:
		return nil
	case KindMCTS:
		if a.Goroutines <= 0 {
			return fmt.Errorf("goroutines must be positive, got %d", a.Goroutines)
		}
		if a.Episodes <= 0 && a.Duration <= 0 {
			return errors.New("must specify search episodes or duration")
		}
		if a.Cutoff < 0 || a.Exploration < 0 {
			return errors.New("cutoff and exploration must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown agent kind %q", a.Kind)
	}
}
