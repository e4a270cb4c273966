package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the tunables of a viewer session
type Config struct {
	DPI            float64       `yaml:"dpi"`
	CacheSize      int           `yaml:"cache_size"`
	ViewportBuffer int           `yaml:"viewport_buffer"`
	InitialWindow  int           `yaml:"initial_window"`
	SettleWindow   int           `yaml:"settle_window"`
	BatchSize      int           `yaml:"batch_size"`
	ThumbnailWidth int           `yaml:"thumbnail_width"`
	ZoomDebounce   time.Duration `yaml:"zoom_debounce"`
	WheelDebounce  time.Duration `yaml:"wheel_debounce"`
	ZoomStep       float64       `yaml:"zoom_step"`
	WheelStep      float64       `yaml:"wheel_step"`
	MinZoom        float64       `yaml:"min_zoom"`
	MaxZoom        float64       `yaml:"max_zoom"`
	FitMinZoom     float64       `yaml:"fit_min_zoom"`
	FitMaxZoom     float64       `yaml:"fit_max_zoom"`
	ViewportMargin float64       `yaml:"viewport_margin"`
	Renderer       string        `yaml:"renderer"`
	LogLevel       string        `yaml:"log_level"`
	EventBuffer    int           `yaml:"event_buffer"`
}

// Default returns the configuration the viewer ships with
func Default() Config {
	return Config{
		DPI:            150,
		CacheSize:      50,
		ViewportBuffer: 2,
		InitialWindow:  5,
		SettleWindow:   3,
		BatchSize:      10,
		ThumbnailWidth: 150,
		ZoomDebounce:   400 * time.Millisecond,
		WheelDebounce:  300 * time.Millisecond,
		ZoomStep:       0.25,
		WheelStep:      0.1,
		MinZoom:        0.25,
		MaxZoom:        5.0,
		FitMinZoom:     0.1,
		FitMaxZoom:     10.0,
		ViewportMargin: 80,
		Renderer:       "fitz",
		LogLevel:       "info",
		EventBuffer:    256,
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every out-of-range field at once
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.DPI > 0, "dpi must be positive, got %v", c.DPI)
	check(c.CacheSize > 0, "cache_size must be positive, got %d", c.CacheSize)
	check(c.ViewportBuffer >= 0, "viewport_buffer must not be negative, got %d", c.ViewportBuffer)
	check(c.InitialWindow > 0, "initial_window must be positive, got %d", c.InitialWindow)
	check(c.SettleWindow >= 0, "settle_window must not be negative, got %d", c.SettleWindow)
	check(c.BatchSize > 0, "batch_size must be positive, got %d", c.BatchSize)
	check(c.ThumbnailWidth > 0, "thumbnail_width must be positive, got %d", c.ThumbnailWidth)
	check(c.ZoomDebounce >= 0, "zoom_debounce must not be negative, got %v", c.ZoomDebounce)
	check(c.WheelDebounce >= 0, "wheel_debounce must not be negative, got %v", c.WheelDebounce)
	check(c.ZoomStep > 0, "zoom_step must be positive, got %v", c.ZoomStep)
	check(c.WheelStep > 0, "wheel_step must be positive, got %v", c.WheelStep)
	check(c.MinZoom > 0 && c.MinZoom <= c.MaxZoom, "min_zoom must be in (0, max_zoom], got %v", c.MinZoom)
	check(c.FitMinZoom > 0 && c.FitMinZoom <= c.FitMaxZoom, "fit_min_zoom must be in (0, fit_max_zoom], got %v", c.FitMinZoom)
	check(c.ViewportMargin >= 0, "viewport_margin must not be negative, got %v", c.ViewportMargin)
	check(c.Renderer == "fitz" || c.Renderer == "draft", "renderer must be fitz or draft, got %q", c.Renderer)
	check(c.EventBuffer > 0, "event_buffer must be positive, got %d", c.EventBuffer)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
