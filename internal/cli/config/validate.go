package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case "portaudio", "oto":
	default:
		return fmt.Errorf("invalid backend %q (expected portaudio or oto)", c.Backend)
	}

	if c.GlideMS < 0 {
		return fmt.Errorf("glide_ms must not be negative, got %d", c.GlideMS)
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected auto, text, markdown, or json)", c.OutputFormat)
	}

	return nil
}
