package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/spf13/viper"
)

const EnvPrefix = "FLEXP"

type Config struct {
	Develop       bool           `mapstructure:"develop"`
	WinType       string         `mapstructure:"win_type"`
	OutputFile    string         `mapstructure:"output_file"`
	StartSplash   string         `mapstructure:"start_splash"`
	FontFile      string         `mapstructure:"font_file"`
	FontSize      int            `mapstructure:"font_size"`
	TextColor     string         `mapstructure:"text_color"`
	FixationColor string         `mapstructure:"fixation_color"`
	LogLevel      string         `mapstructure:"log_level"`
	Window        WindowConfig   `mapstructure:"window"`
	Hardware      HardwareConfig `mapstructure:"hardware"`
}

// WindowConfig holds the develop window settings.
type WindowConfig struct {
	Title      string `mapstructure:"title"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	Fullscreen bool   `mapstructure:"fullscreen"`
	VSync      bool   `mapstructure:"vsync"`
	BGColor    string `mapstructure:"bg_color"`
}

// HardwareConfig describes the dedicated experiment display and its
// optional DLP-IO8-G trigger box, pulsed on every flip.
type HardwareConfig struct {
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	BGColor       string `mapstructure:"bg_color"`
	TriggerDevice string `mapstructure:"trigger_device"`
	TriggerBaud   int    `mapstructure:"trigger_baud"`
	TriggerLine   string `mapstructure:"trigger_line"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("develop", false)
	v.SetDefault("win_type", DefaultWinType)
	v.SetDefault("output_file", "results.csv")
	v.SetDefault("start_splash", "")
	v.SetDefault("font_file", "")
	v.SetDefault("font_size", 24)
	v.SetDefault("text_color", "255,255,255,255")
	v.SetDefault("fixation_color", "255,255,255,255")
	v.SetDefault("log_level", "info")
	v.SetDefault("window.title", "flexp")
	v.SetDefault("window.width", 800)
	v.SetDefault("window.height", 600)
	v.SetDefault("window.fullscreen", false)
	v.SetDefault("window.vsync", true)
	v.SetDefault("window.bg_color", "128,128,128,255")
	v.SetDefault("hardware.width", 1920)
	v.SetDefault("hardware.height", 1080)
	v.SetDefault("hardware.bg_color", "128,128,128,255")
	v.SetDefault("hardware.trigger_device", "")
	v.SetDefault("hardware.trigger_baud", 9600)
	v.SetDefault("hardware.trigger_line", "1")
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("engine: bad config defaults: %v", err))
	}
	return &cfg
}

// LoadConfig reads configuration from path, or from flexp.yaml in the
// working directory when path is empty, with FLEXP_* environment variables
// taking precedence. A missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("flexp")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the colour strings and sizes.
func (cfg *Config) Validate() error {
	for name, s := range map[string]string{
		"text_color":        cfg.TextColor,
		"fixation_color":    cfg.FixationColor,
		"window.bg_color":   cfg.Window.BGColor,
		"hardware.bg_color": cfg.Hardware.BGColor,
	} {
		if _, err := ParseColor(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if cfg.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive, got %d", cfg.FontSize)
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Hardware.Width <= 0 || cfg.Hardware.Height <= 0 {
		return fmt.Errorf("hardware size must be positive, got %dx%d", cfg.Hardware.Width, cfg.Hardware.Height)
	}
	return nil
}

// WindowOptions converts the develop window settings into options for
// NewBaseExperiment.
func (cfg *Config) WindowOptions() ([]WindowOption, error) {
	bg, err := ParseColor(cfg.Window.BGColor)
	if err != nil {
		return nil, fmt.Errorf("window.bg_color: %w", err)
	}
	return []WindowOption{
		WithTitle(cfg.Window.Title),
		WithSize(cfg.Window.Width, cfg.Window.Height),
		WithFullscreen(cfg.Window.Fullscreen),
		WithVSync(cfg.Window.VSync),
		WithBGColor(bg),
	}, nil
}

// ParseColor parses "R,G,B" or "R,G,B,A". Alpha defaults to opaque.
func ParseColor(s string) (sdl.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return sdl.Color{}, fmt.Errorf("invalid color %q: want R,G,B[,A]", s)
	}
	c := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return sdl.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		c[i] = uint8(n)
	}
	return sdl.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
