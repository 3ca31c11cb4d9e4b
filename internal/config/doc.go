// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.jsonedit/jsonedit.toml or OS-specific config directory)
// 3. Project config file (jsonedit.toml or .jsonedit.toml in the working directory)
// 4. Environment variables (JSONEDIT_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.jsonedit/jsonedit.toml (preferred)
// - Windows: %APPDATA%\jsonedit\jsonedit.toml
// - macOS: ~/Library/Application Support/jsonedit/jsonedit.toml
// - Linux/BSD: $XDG_CONFIG_HOME/jsonedit/jsonedit.toml or ~/.config/jsonedit/jsonedit.toml
//
// Project-level config locations (overrides user config):
// - ./jsonedit.toml (preferred)
// - ./.jsonedit.toml
package config
