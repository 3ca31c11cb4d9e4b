package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# jsonedit configuration file
# Values can be overridden by JSONEDIT_* environment variables or CLI flags

# Schema used to validate documents (JSON or YAML, relative to the project root)
# schema_file = "schema.json"

# When to validate: onChange, onDemand or disabled
validation_mode = "onChange"

# Record an undo snapshot after every successful edit
auto_save = true

# Collapse nodes at this depth when a document is opened (-1 disables)
collapse_depth = -1

# Maximum number of undo snapshots
history_limit = 50

# Allow edits (false opens documents read-only)
editable = true

# Documents with more values than max_nodes load containers below
# lazy_depth lazily
max_nodes = 10000
lazy_depth = 3

# Output format for written documents: json or yaml
output_format = "json"

# Documents validated concurrently by "jsonedit validate"
workers = 4

# Logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
