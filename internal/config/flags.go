package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil, "")
}

// parseFlagsWithSources parses CLI flags and updates source tracking.
func parseFlagsWithSources(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	return parseFlagsHelper(cfg, fs, args, sources, SourceFlag)
}

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"schema":          "schema_file",
	"validation-mode": "validation_mode",
	"auto-save":       "auto_save",
	"collapse-depth":  "collapse_depth",
	"history-limit":   "history_limit",
	"editable":        "editable",
	"max-nodes":       "max_nodes",
	"lazy-depth":      "lazy_depth",
	"format":          "output_format",
	"workers":         "workers",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"log-timestamps":  "log_timestamps",
	"log-caller":      "log_caller",
}

// parseFlagsHelper is the shared implementation for flag parsing. Flags are
// bound directly to cfg with the current values as defaults, so unset flags
// leave earlier layers alone. If sources is non-nil, it tracks the source of
// each value.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource, source ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("jsonedit", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to JSON Schema file (JSON or YAML)")

	// Editor
	fs.Var(&cfg.ValidationMode, "validation-mode", "When to validate (onChange, onDemand, disabled)")
	fs.BoolVar(&cfg.AutoSave, "auto-save", cfg.AutoSave, "Record an undo snapshot after every edit")
	fs.IntVar(&cfg.CollapseDepth, "collapse-depth", cfg.CollapseDepth, "Collapse nodes at this depth (-1 disables)")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "Maximum undo snapshots")
	fs.BoolVar(&cfg.Editable, "editable", cfg.Editable, "Allow edits")
	fs.IntVar(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes, "Node count above which lazy loading is enabled")
	fs.IntVar(&cfg.LazyDepth, "lazy-depth", cfg.LazyDepth, "Depth below which large documents load lazily")

	// Output
	fs.Var(&cfg.OutputFormat, "format", "Output format (json, yaml)")

	// Batch validation
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Documents validated concurrently")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if fieldName, ok := flagToSource[f.Name]; ok {
				sources[fieldName] = source
			}
		})
	}
	return nil
}
