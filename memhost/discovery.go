// FILE: lixenwraith/motherboard/memhost/discovery.go
package memhost

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DiscoveryOptions configures automatic definition file discovery
type DiscoveryOptions struct {
	// Base name of definition file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(appName) + "_DEFINITION",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverDefinition returns the first definition file found, or "" when
// there is none.
func DiscoverDefinition(opts DiscoveryOptions) string {
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	for _, dir := range searchDirs(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// WithDiscoveredDefinition uses the discovered definition file when no
// definition or file was set explicitly.
func (b *Builder) WithDiscoveredDefinition(opts DiscoveryOptions) *Builder {
	if b.def != nil || b.file != "" {
		return b
	}
	b.file = DiscoverDefinition(opts)
	return b
}

// searchDirs lists the directories probed for a definition: custom paths,
// the working directory, the user config directory, then XDG_CONFIG_DIRS
// (or /etc/xdg), each with an opts.Name subdirectory.
func searchDirs(opts DiscoveryOptions) []string {
	dirs := slices.Clone(opts.Paths)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if !opts.UseXDG {
		return dirs
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, opts.Name))
	}
	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg"}
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, opts.Name))
	}
	return dirs
}
