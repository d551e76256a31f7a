// Package config provides configuration management for the harmony CLI.
//
// Settings come from four layers with the usual precedence:
// flags > environment variables > config file > defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	Project      string `koanf:"project"`
	StatePath    string `koanf:"state_path"`
	Backend      string `koanf:"backend"`
	GlideMS      int    `koanf:"glide_ms"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultProjectFile = "harmony.yaml"
	DefaultStateFile   = ".harmony/state.db"
	DefaultBackend     = "portaudio"
	DefaultGlideMS     = 10
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
