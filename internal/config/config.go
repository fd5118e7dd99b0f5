// Package config loads, validates, and hot-reloads percept configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"percept/internal/behavior"
	"percept/internal/intent"
	"percept/internal/recall"
)

// #region sections

// StorageConfig selects and locates the snapshot store.
type StorageConfig struct {
	// Backend is one of "sqlite", "badger", "memory".
	Backend string `toml:"backend"`
	// Path is the database file (sqlite) or directory (badger).
	Path string `toml:"path"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Format is "json" or "console".
	Format string `toml:"format"`
}

// BehaviorConfig tunes the behavior classifier.
type BehaviorConfig struct {
	HoverVelocityCap          int     `toml:"hover_velocity_cap"`
	ClickLatencyCap           int     `toml:"click_latency_cap"`
	DirectApproachMinVelocity float64 `toml:"direct_approach_min_velocity"`
	DoubleClickWindowMs       int     `toml:"double_click_window_ms"`
}

// RecallConfig tunes the interaction-memory classifier.
type RecallConfig struct {
	LayerCap            int `toml:"layer_cap"`
	FocusPointCap       int `toml:"focus_point_cap"`
	GlanceMaxMs         int `toml:"glance_max_ms"`
	EngageMaxMs         int `toml:"engage_max_ms"`
	ReturnGapMs         int `toml:"return_gap_ms"`
	RecognitionWindowMs int `toml:"recognition_window_ms"`
	ThoroughMinMs       int `toml:"thorough_min_ms"`
}

// IntentConfig tunes the intent classifier.
type IntentConfig struct {
	ScrollPatternCap    int     `toml:"scroll_pattern_cap"`
	FocusEventCap       int     `toml:"focus_event_cap"`
	VelocityWindow      int     `toml:"velocity_window"`
	DirectionDeadbandPx float64 `toml:"direction_deadband_px"`
	PauseDebounceMs     int     `toml:"pause_debounce_ms"`
	EdgeMarginPx        float64 `toml:"edge_margin_px"`
	IdleLeavingMs       int     `toml:"idle_leaving_ms"`
}

// #endregion sections

// #region config

// Config is the full percept configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	Behavior BehaviorConfig `toml:"behavior"`
	Recall   RecallConfig   `toml:"recall"`
	Intent   IntentConfig   `toml:"intent"`
}

// DefaultConfig mirrors the per-classifier defaults.
func DefaultConfig() *Config {
	b := behavior.DefaultConfig()
	r := recall.DefaultConfig()
	i := intent.DefaultConfig()
	return &Config{
		Storage: StorageConfig{Backend: "sqlite", Path: "percept.db"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Behavior: BehaviorConfig{
			HoverVelocityCap:          b.HoverVelocityCap,
			ClickLatencyCap:           b.ClickLatencyCap,
			DirectApproachMinVelocity: b.DirectApproachMinVelocity,
			DoubleClickWindowMs:       int(b.DoubleClickWindow.Milliseconds()),
		},
		Recall: RecallConfig{
			LayerCap:            r.LayerCap,
			FocusPointCap:       r.FocusPointCap,
			GlanceMaxMs:         int(r.GlanceMax.Milliseconds()),
			EngageMaxMs:         int(r.EngageMax.Milliseconds()),
			ReturnGapMs:         int(r.ReturnGap.Milliseconds()),
			RecognitionWindowMs: int(r.RecognitionWindow.Milliseconds()),
			ThoroughMinMs:       int(r.ThoroughMin.Milliseconds()),
		},
		Intent: IntentConfig{
			ScrollPatternCap:    i.ScrollPatternCap,
			FocusEventCap:       i.FocusEventCap,
			VelocityWindow:      i.VelocityWindow,
			DirectionDeadbandPx: i.DirectionDeadbandPx,
			PauseDebounceMs:     int(i.PauseDebounce.Milliseconds()),
			EdgeMarginPx:        i.EdgeMarginPx,
			IdleLeavingMs:       int(i.IdleLeaving.Milliseconds()),
		},
	}
}

// #endregion config

// #region projections

// BehaviorConfig projects the TOML section into the classifier config.
func (c *Config) BehaviorConfig() behavior.Config {
	return behavior.Config{
		HoverVelocityCap:          c.Behavior.HoverVelocityCap,
		ClickLatencyCap:           c.Behavior.ClickLatencyCap,
		DirectApproachMinVelocity: c.Behavior.DirectApproachMinVelocity,
		DoubleClickWindow:         time.Duration(c.Behavior.DoubleClickWindowMs) * time.Millisecond,
	}
}

// RecallConfig projects the TOML section into the classifier config.
func (c *Config) RecallConfig() recall.Config {
	return recall.Config{
		LayerCap:          c.Recall.LayerCap,
		FocusPointCap:     c.Recall.FocusPointCap,
		GlanceMax:         time.Duration(c.Recall.GlanceMaxMs) * time.Millisecond,
		EngageMax:         time.Duration(c.Recall.EngageMaxMs) * time.Millisecond,
		ReturnGap:         time.Duration(c.Recall.ReturnGapMs) * time.Millisecond,
		RecognitionWindow: time.Duration(c.Recall.RecognitionWindowMs) * time.Millisecond,
		ThoroughMin:       time.Duration(c.Recall.ThoroughMinMs) * time.Millisecond,
	}
}

// IntentConfig projects the TOML section into the classifier config.
func (c *Config) IntentConfig() intent.Config {
	return intent.Config{
		ScrollPatternCap:    c.Intent.ScrollPatternCap,
		FocusEventCap:       c.Intent.FocusEventCap,
		VelocityWindow:      c.Intent.VelocityWindow,
		DirectionDeadbandPx: c.Intent.DirectionDeadbandPx,
		PauseDebounce:       time.Duration(c.Intent.PauseDebounceMs) * time.Millisecond,
		EdgeMarginPx:        c.Intent.EdgeMarginPx,
		IdleLeaving:         time.Duration(c.Intent.IdleLeavingMs) * time.Millisecond,
	}
}

// #endregion projections

// #region validate

// Validate rejects configurations the trackers cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path: required for backend %q", c.Storage.Backend)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	for name, v := range map[string]int{
		"behavior.hover_velocity_cap": c.Behavior.HoverVelocityCap,
		"behavior.click_latency_cap":  c.Behavior.ClickLatencyCap,
		"recall.layer_cap":            c.Recall.LayerCap,
		"recall.focus_point_cap":      c.Recall.FocusPointCap,
		"intent.scroll_pattern_cap":   c.Intent.ScrollPatternCap,
		"intent.focus_event_cap":      c.Intent.FocusEventCap,
		"intent.velocity_window":      c.Intent.VelocityWindow,
	} {
		if v <= 0 {
			return fmt.Errorf("%s: must be positive, got %d", name, v)
		}
	}
	for name, v := range map[string]int{
		"behavior.double_click_window_ms": c.Behavior.DoubleClickWindowMs,
		"recall.glance_max_ms":            c.Recall.GlanceMaxMs,
		"recall.engage_max_ms":            c.Recall.EngageMaxMs,
		"recall.return_gap_ms":            c.Recall.ReturnGapMs,
		"recall.recognition_window_ms":    c.Recall.RecognitionWindowMs,
		"recall.thorough_min_ms":          c.Recall.ThoroughMinMs,
		"intent.pause_debounce_ms":        c.Intent.PauseDebounceMs,
		"intent.idle_leaving_ms":          c.Intent.IdleLeavingMs,
	} {
		if v <= 0 {
			return fmt.Errorf("%s: must be positive, got %d", name, v)
		}
	}
	if c.Recall.GlanceMaxMs >= c.Recall.EngageMaxMs {
		return fmt.Errorf("recall: glance_max_ms (%d) must be below engage_max_ms (%d)",
			c.Recall.GlanceMaxMs, c.Recall.EngageMaxMs)
	}
	return nil
}

// #endregion validate

// #region env

// ApplyEnvOverrides lets deployment environments override file settings.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PERCEPT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("PERCEPT_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PERCEPT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PERCEPT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("PERCEPT_IDLE_LEAVING_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Intent.IdleLeavingMs = n
		}
	}
}

// #endregion env
