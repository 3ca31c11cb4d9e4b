package config

import (
	"fmt"
	"os"
	"strconv"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	return loadFromEnvHelper(cfg, nil, "")
}

// loadFromEnvWithSources loads environment variables and updates source tracking.
func loadFromEnvWithSources(cfg *Config, sources map[string]ConfigSource) error {
	return loadFromEnvHelper(cfg, sources, SourceEnv)
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource, source ConfigSource) error {
	mark := func(field string) {
		if sources != nil {
			sources[field] = source
		}
	}
	envInt := func(name, field string, target *int) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = i
		mark(field)
		return nil
	}
	envBool := func(name, field string, target *bool) {
		if v := os.Getenv(name); v != "" {
			*target = boolFromString(v)
			mark(field)
		}
	}
	envString := func(name, field string, target *string) {
		if v := os.Getenv(name); v != "" {
			*target = v
			mark(field)
		}
	}

	envString("JSONEDIT_SCHEMA", "schema_file", &cfg.SchemaFile)
	if v := os.Getenv("JSONEDIT_VALIDATION_MODE"); v != "" {
		if err := cfg.ValidationMode.Set(v); err != nil {
			return fmt.Errorf("JSONEDIT_VALIDATION_MODE: %w", err)
		}
		mark("validation_mode")
	}
	envBool("JSONEDIT_AUTO_SAVE", "auto_save", &cfg.AutoSave)
	envBool("JSONEDIT_EDITABLE", "editable", &cfg.Editable)
	if v := os.Getenv("JSONEDIT_OUTPUT_FORMAT"); v != "" {
		if err := cfg.OutputFormat.Set(v); err != nil {
			return fmt.Errorf("JSONEDIT_OUTPUT_FORMAT: %w", err)
		}
		mark("output_format")
	}

	ints := []struct {
		name, field string
		target      *int
	}{
		{"JSONEDIT_COLLAPSE_DEPTH", "collapse_depth", &cfg.CollapseDepth},
		{"JSONEDIT_HISTORY_LIMIT", "history_limit", &cfg.HistoryLimit},
		{"JSONEDIT_MAX_NODES", "max_nodes", &cfg.MaxNodes},
		{"JSONEDIT_LAZY_DEPTH", "lazy_depth", &cfg.LazyDepth},
		{"JSONEDIT_WORKERS", "workers", &cfg.Workers},
	}
	for _, e := range ints {
		if err := envInt(e.name, e.field, e.target); err != nil {
			return err
		}
	}

	// Logging configuration
	envString("JSONEDIT_LOG_LEVEL", "log_level", &cfg.LogLevel)
	envString("JSONEDIT_LOG_FORMAT", "log_format", &cfg.LogFormat)
	envBool("JSONEDIT_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	envBool("JSONEDIT_LOG_CALLER", "log_caller", &cfg.LogCaller)
	return nil
}
