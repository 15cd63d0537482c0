// Package system provides infrastructure for system-level configuration.
// This covers the user config file (~/.scenepack.yaml), SCENEPACK_ environment
// variables and the defaults the export pipeline falls back to.
package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. SCENEPACK_TOOLCHAIN_ZIG.
const EnvPrefix = "SCENEPACK"

// Configuration keys.
const (
	KeyZig              = "toolchain.zig"
	KeyWasmOpt          = "toolchain.wasm_opt"
	KeyWasmOptFlags     = "toolchain.wasm_opt_flags"
	KeyMemoryMultiplier = "toolchain.memory_multiplier"
	KeySkipOptimize     = "toolchain.skip_optimize"
	KeyZigConstraint    = "toolchain.zig_constraint"
	KeyScratchDir       = "scratch.dir"
	KeyScratchKeep      = "scratch.keep"
	KeyCanvasWidth      = "canvas.width"
	KeyCanvasHeight     = "canvas.height"
	KeyScriptsLenient   = "scripts.lenient"
	KeyOutputDir        = "output.dir"
)

// Defaults.
const (
	DefaultZig              = "zig"
	DefaultWasmOpt          = "wasm-opt"
	DefaultMemoryMultiplier = 4
	DefaultZigConstraint    = ">= 0.13.0, < 0.14.0" // generated source uses callconv(.C)
	DefaultCanvasWidth      = 800
	DefaultCanvasHeight     = 600
)

// maxMemoryMultiplier caps --initial-memory at 1 GiB.
const maxMemoryMultiplier = 1024

// Config is the resolved system configuration.
type Config struct {
	Toolchain ToolchainConfig `mapstructure:"toolchain" yaml:"toolchain"`
	Scratch   ScratchConfig   `mapstructure:"scratch" yaml:"scratch"`
	Canvas    CanvasConfig    `mapstructure:"canvas" yaml:"canvas"`
	Scripts   ScriptsConfig   `mapstructure:"scripts" yaml:"scripts"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// ToolchainConfig locates the external compiler and optimizer.
type ToolchainConfig struct {
	Zig              string   `mapstructure:"zig" yaml:"zig"`
	WasmOpt          string   `mapstructure:"wasm_opt" yaml:"wasm_opt"`
	WasmOptFlags     []string `mapstructure:"wasm_opt_flags" yaml:"wasm_opt_flags"`
	MemoryMultiplier int      `mapstructure:"memory_multiplier" yaml:"memory_multiplier"`
	SkipOptimize     bool     `mapstructure:"skip_optimize" yaml:"skip_optimize"`

	// ZigConstraint is a semver constraint on `zig version`. Empty disables the check.
	ZigConstraint string `mapstructure:"zig_constraint" yaml:"zig_constraint"`
}

// ScratchConfig controls where build workspaces live.
type ScratchConfig struct {
	Dir  string `mapstructure:"dir" yaml:"dir"`
	Keep bool   `mapstructure:"keep" yaml:"keep"`
}

// CanvasConfig is the canvas used when a scene does not declare one.
type CanvasConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ScriptsConfig controls script binding.
type ScriptsConfig struct {
	Lenient bool `mapstructure:"lenient" yaml:"lenient"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Zig:              DefaultZig,
			WasmOpt:          DefaultWasmOpt,
			WasmOptFlags:     []string{},
			MemoryMultiplier: DefaultMemoryMultiplier,
			ZigConstraint:    DefaultZigConstraint,
		},
		Canvas: CanvasConfig{
			Width:  DefaultCanvasWidth,
			Height: DefaultCanvasHeight,
		},
	}
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault(KeyZig, def.Toolchain.Zig)
	v.SetDefault(KeyWasmOpt, def.Toolchain.WasmOpt)
	v.SetDefault(KeyWasmOptFlags, def.Toolchain.WasmOptFlags)
	v.SetDefault(KeyMemoryMultiplier, def.Toolchain.MemoryMultiplier)
	v.SetDefault(KeySkipOptimize, false)
	v.SetDefault(KeyZigConstraint, def.Toolchain.ZigConstraint)
	v.SetDefault(KeyScratchDir, "")
	v.SetDefault(KeyScratchKeep, false)
	v.SetDefault(KeyCanvasWidth, def.Canvas.Width)
	v.SetDefault(KeyCanvasHeight, def.Canvas.Height)
	v.SetDefault(KeyScriptsLenient, false)
	v.SetDefault(KeyOutputDir, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper resolves and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// Load loads the configuration file at path on top of the defaults.
// If the file does not exist, the defaults are returned.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read system config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat system config: %w", err)
	}

	return FromViper(v)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.Toolchain.Zig == "" {
		problems = append(problems, "toolchain.zig must not be empty")
	}
	if !c.Toolchain.SkipOptimize && c.Toolchain.WasmOpt == "" {
		problems = append(problems, "toolchain.wasm_opt must not be empty unless toolchain.skip_optimize is set")
	}
	if c.Toolchain.MemoryMultiplier < 1 || c.Toolchain.MemoryMultiplier > maxMemoryMultiplier {
		problems = append(problems, fmt.Sprintf("toolchain.memory_multiplier must be between 1 and %d, got %d", maxMemoryMultiplier, c.Toolchain.MemoryMultiplier))
	}
	if c.Toolchain.ZigConstraint != "" {
		if _, err := semver.NewConstraint(c.Toolchain.ZigConstraint); err != nil {
			problems = append(problems, fmt.Sprintf("toolchain.zig_constraint %q is invalid: %v", c.Toolchain.ZigConstraint, err))
		}
	}
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		problems = append(problems, fmt.Sprintf("canvas must be at least 1x1, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
