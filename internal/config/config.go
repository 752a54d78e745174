// Package config provides Viper-based configuration loading for the tactics tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/tactics/internal/game/battle"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/scripting"
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
}

// HitBand is one base/min/max hit-chance triple, in percent.
type HitBand struct {
	Base int `mapstructure:"base"`
	Min  int `mapstructure:"min"`
	Max  int `mapstructure:"max"`
}

// CombatConfig holds the combat constants.
type CombatConfig struct {
	PhysicalHit HitBand `mapstructure:"physical_hit"`
	MagicalHit  HitBand `mapstructure:"magical_hit"`
	// ActionThreshold is the action timer value at which a unit takes its turn.
	ActionThreshold int `mapstructure:"action_threshold"`
	// MaxTicks bounds one auto-resolved battle.
	MaxTicks int `mapstructure:"max_ticks"`
}

// HitRules converts the configured bands into combat.HitRules.
func (c CombatConfig) HitRules() combat.HitRules {
	return combat.HitRules{
		Physical: combat.Band{Base: c.PhysicalHit.Base, Min: c.PhysicalHit.Min, Max: c.PhysicalHit.Max},
		Magical:  combat.Band{Base: c.MagicalHit.Base, Min: c.MagicalHit.Min, Max: c.MagicalHit.Max},
	}
}

// RewardsConfig holds encounter reward settings.
type RewardsConfig struct {
	// MaxItems caps the item list of one victory.
	MaxItems int `mapstructure:"max_items"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit is the opcode budget of one formula or condition evaluation.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ContentConfig locates the authored content.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Rewards   RewardsConfig   `mapstructure:"rewards"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Rewards.MaxItems < 1 {
		errs = append(errs, fmt.Sprintf("rewards.max_items must be >= 1, got %d", c.Rewards.MaxItems))
	}
	if c.Scripting.InstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 1, got %d", c.Scripting.InstructionLimit))
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
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

func validateBand(name string, b HitBand) []string {
	var errs []string
	if b.Min < 0 || b.Max > 100 || b.Min > b.Max {
		errs = append(errs, fmt.Sprintf("combat.%s must satisfy 0 <= min <= max <= 100, got %d..%d", name, b.Min, b.Max))
	}
	if b.Base < 0 || b.Base > 100 {
		errs = append(errs, fmt.Sprintf("combat.%s.base must be 0-100, got %d", name, b.Base))
	}
	return errs
}

func validateCombat(c CombatConfig) error {
	errs := validateBand("physical_hit", c.PhysicalHit)
	errs = append(errs, validateBand("magical_hit", c.MagicalHit)...)
	if c.ActionThreshold < 1 {
		errs = append(errs, fmt.Sprintf("combat.action_threshold must be >= 1, got %d", c.ActionThreshold))
	}
	if c.MaxTicks < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_ticks must be >= 1, got %d", c.MaxTicks))
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
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with TACTICS_ prefix
	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
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
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tactics")
	v.SetDefault("database.password", "tactics")
	v.SetDefault("database.name", "tactics")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("combat.physical_hit.base", combat.DefaultHitRules.Physical.Base)
	v.SetDefault("combat.physical_hit.min", combat.DefaultHitRules.Physical.Min)
	v.SetDefault("combat.physical_hit.max", combat.DefaultHitRules.Physical.Max)
	v.SetDefault("combat.magical_hit.base", combat.DefaultHitRules.Magical.Base)
	v.SetDefault("combat.magical_hit.min", combat.DefaultHitRules.Magical.Min)
	v.SetDefault("combat.magical_hit.max", combat.DefaultHitRules.Magical.Max)
	v.SetDefault("combat.action_threshold", battle.DefaultActionThreshold)
	v.SetDefault("combat.max_ticks", battle.DefaultMaxTicks)

	v.SetDefault("rewards.max_items", encounter.DefaultMaxRewardItems)
	v.SetDefault("scripting.instruction_limit", scripting.DefaultInstructionLimit)
	v.SetDefault("content.dir", "content")
}
