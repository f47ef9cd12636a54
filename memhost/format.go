// FILE: lixenwraith/motherboard/memhost/format.go
package memhost

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported file formats. FormatAuto detects from extension, then content.
const (
	FormatAuto = "auto"
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// MaxFileSize bounds definition and values files.
const MaxFileSize = 1 << 20

var (
	// ErrFileNotFound is returned when a definition or values file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnknownFormat is returned when no parser accepts the data.
	ErrUnknownFormat = errors.New("unable to determine file format")
)

// readFile reads path with a size limit and decodes it into a nested map.
func readFile(path, format string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file '%s': %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file '%s' exceeds maximum size %d bytes", path, MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if format == "" || format == FormatAuto {
		format = detectFileFormat(path)
	}
	nested, err := parseData(data, format)
	if err != nil {
		return nil, fmt.Errorf("file '%s': %w", path, err)
	}
	return nested, nil
}

// parseData decodes data in the given format into a nested map.
func parseData(data []byte, format string) (map[string]any, error) {
	if format == "" || format == FormatAuto {
		format = detectFormatFromContent(data)
	}

	nested := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&nested); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	return nested, nil
}

// validFormat reports whether format names a supported parser.
func validFormat(format string) bool {
	switch format {
	case FormatAuto, FormatTOML, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first (strict), YAML is a superset so it goes after
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
