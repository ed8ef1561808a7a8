// Package config provides Viper-based configuration loading for the selfench console.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/selfench/internal/game/dice"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink path. The console shares stdout with game
	// messages, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// ContentConfig names the directories content is loaded from. An empty
// directory means the built-in defaults are used.
type ContentConfig struct {
	SpellDir     string `mapstructure:"spell_dir"`
	PermabuffDir string `mapstructure:"permabuff_dir"`
	FormDir      string `mapstructure:"form_dir"`
	// ScriptDir holds the global miscast scripts. Each subdirectory named
	// after a spell ID is loaded as that spell's own scope.
	ScriptDir string `mapstructure:"script_dir"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	// PlayerName names the caster created at startup.
	PlayerName string `mapstructure:"player_name"`
	// MaxHP is the caster's starting max HP.
	MaxHP int `mapstructure:"max_hp"`
	// DropDice is the extension rolled by a bulk sweep that increases durations.
	DropDice string `mapstructure:"drop_dice"`
	// Persistence enables saving and loading through the database.
	Persistence bool `mapstructure:"persistence"`
	// LuaInstructionLimit caps opcodes per script call. 0 = default.
	LuaInstructionLimit int `mapstructure:"lua_instruction_limit"`
	// Seed makes every roll reproducible. 0 = cryptographic randomness.
	Seed uint64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Game.Persistence {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.PlayerName == "" {
		errs = append(errs, "game.player_name must not be empty")
	}
	if g.MaxHP < 1 {
		errs = append(errs, fmt.Sprintf("game.max_hp must be >= 1, got %d", g.MaxHP))
	}
	if expr, err := dice.Parse(g.DropDice); err != nil {
		errs = append(errs, fmt.Sprintf("game.drop_dice: %v", err))
	} else if expr.Min() < 1 {
		// A sweep that extends durations must never shorten or no-op one.
		errs = append(errs, fmt.Sprintf("game.drop_dice %q can roll %d; minimum must be >= 1", g.DropDice, expr.Min()))
	}
	if g.LuaInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.lua_instruction_limit must be >= 0, got %d", g.LuaInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SELFENCH_ prefix
	v.SetEnvPrefix("SELFENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "selfench")
	v.SetDefault("database.password", "selfench")
	v.SetDefault("database.name", "selfench")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("content.spell_dir", "")
	v.SetDefault("content.permabuff_dir", "")
	v.SetDefault("content.form_dir", "")
	v.SetDefault("content.script_dir", "")

	v.SetDefault("game.player_name", "Caster")
	v.SetDefault("game.max_hp", 50)
	v.SetDefault("game.drop_dice", "2d10")
	v.SetDefault("game.persistence", false)
	v.SetDefault("game.lua_instruction_limit", 0)
	v.SetDefault("game.seed", 0)
}
