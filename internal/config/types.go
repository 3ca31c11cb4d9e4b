package config

import (
	"fmt"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	userFile    string
	projectFile string
}

// Default values.
const (
	DefaultValidationMode = ValidateOnChange
	DefaultAutoSave       = true
	DefaultCollapseDepth  = -1
	DefaultHistoryLimit   = 50
	DefaultEditable       = true
	DefaultMaxNodes       = 10000
	DefaultLazyDepth      = 3
	DefaultOutputFormat   = FormatJSON
	DefaultWorkers        = 4
)

// ValidationMode selects when the editor validates the document.
type ValidationMode string

const (
	ValidateOnChange ValidationMode = "onChange"
	ValidateOnDemand ValidationMode = "onDemand"
	ValidateDisabled ValidationMode = "disabled"
)

// ParseValidationMode parses a mode name. Matching is case-insensitive and
// accepts the dashed forms (on-change, on-demand).
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "onchange":
		return ValidateOnChange, nil
	case "ondemand":
		return ValidateOnDemand, nil
	case "disabled", "off", "none":
		return ValidateDisabled, nil
	}
	return "", fmt.Errorf("invalid validation mode %q (expected onChange|onDemand|disabled)", s)
}

// String implements flag.Value.
func (m *ValidationMode) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Set implements flag.Value.
func (m *ValidationMode) Set(s string) error {
	mode, err := ParseValidationMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// OutputFormat is the serialization used when writing documents.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat parses a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format %q (expected json|yaml)", s)
}

// String implements flag.Value.
func (f *OutputFormat) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Set implements flag.Value.
func (f *OutputFormat) Set(s string) error {
	format, err := ParseOutputFormat(s)
	if err != nil {
		return err
	}
	*f = format
	return nil
}

// Config holds the full configuration for jsonedit.
type Config struct {
	// Paths
	SchemaFile string `toml:"schema_file"`

	// Editor behaviour
	ValidationMode ValidationMode `toml:"validation_mode"`
	AutoSave       bool           `toml:"auto_save"`
	CollapseDepth  int            `toml:"collapse_depth"`
	HistoryLimit   int            `toml:"history_limit"`
	Editable       bool           `toml:"editable"`

	// Large documents
	MaxNodes  int `toml:"max_nodes"`
	LazyDepth int `toml:"lazy_depth"`

	// Output
	OutputFormat OutputFormat `toml:"output_format"`

	// Batch validation
	Workers int `toml:"workers"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Editor holds the options that shape one editing session.
type Editor struct {
	ValidationMode ValidationMode
	AutoSave       bool
	// CollapseDepth collapses nodes at or below this depth after
	// Initialize. Negative disables collapsing.
	CollapseDepth int
	HistoryLimit  int
	Editable      bool
	// Documents with more than MaxNodes values have containers below
	// LazyDepth marked as lazily loaded.
	MaxNodes  int
	LazyDepth int
}

// DefaultEditor returns the editor options used when nothing is configured.
func DefaultEditor() Editor {
	return Editor{
		ValidationMode: DefaultValidationMode,
		AutoSave:       DefaultAutoSave,
		CollapseDepth:  DefaultCollapseDepth,
		HistoryLimit:   DefaultHistoryLimit,
		Editable:       DefaultEditable,
		MaxNodes:       DefaultMaxNodes,
		LazyDepth:      DefaultLazyDepth,
	}
}

// Editor projects the editor options out of the full configuration.
func (c *Config) Editor() Editor {
	return Editor{
		ValidationMode: c.ValidationMode,
		AutoSave:       c.AutoSave,
		CollapseDepth:  c.CollapseDepth,
		HistoryLimit:   c.HistoryLimit,
		Editable:       c.Editable,
		MaxNodes:       c.MaxNodes,
		LazyDepth:      c.LazyDepth,
	}
}
