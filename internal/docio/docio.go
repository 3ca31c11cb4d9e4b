package docio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/jsonedit/internal/config"
	"github.com/nibzard/jsonedit/internal/jsontree"
)

// DetectFormat picks the format for path from its extension. Unknown
// extensions fall back to fallback.
func DetectFormat(path string, fallback config.OutputFormat) config.OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".json":
		return config.FormatJSON
	}
	return fallback
}

// Decode parses data in the given format.
func Decode(data []byte, format config.OutputFormat) (jsontree.Value, error) {
	switch format {
	case config.FormatYAML:
		return decodeYAML(data)
	case config.FormatJSON, "":
		return jsontree.ParseJSON(data)
	}
	return jsontree.Value{}, fmt.Errorf("decode: unsupported format %q", format)
}

// Encode serializes v in the given format. JSON output is indented with two
// spaces and ends with a newline.
func Encode(v jsontree.Value, format config.OutputFormat) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		return encodeYAML(v)
	case config.FormatJSON, "":
		return jsontree.MarshalIndent(v)
	}
	return nil, fmt.Errorf("encode: unsupported format %q", format)
}

// Load reads a document from path. The format comes from the extension and
// defaults to JSON.
func Load(path string) (jsontree.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("read document: %w", err)
	}
	v, err := Decode(data, DetectFormat(path, config.FormatJSON))
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// Save writes v to path. Paths without a known extension use fallback.
func Save(path string, v jsontree.Value, fallback config.OutputFormat) error {
	data, err := Encode(v, DetectFormat(path, fallback))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
