package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
)

// knownFormats mirrors the names accepted by formats.Lookup. The formats
// package sits above config in the import graph, so the list is duplicated
// here and checked against the registry in tests.
var knownFormats = map[string]struct{}{
	"json":         {},
	"pretty":       {},
	"pretty print": {},
	"text":         {},
	"txt":          {},
	"vtt":          {},
	"webvtt":       {},
	"srt":          {},
}

// OutputFormats lists the accepted output.format values, sorted.
func OutputFormats() []string {
	names := make([]string, 0, len(knownFormats))
	for name := range knownFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateUI(); err != nil {
		return err
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if len(c.YouTube.Languages) == 0 {
		return errors.New("youtube.languages must include at least one language")
	}
	if c.YouTube.RequestTimeout <= 0 {
		return errors.New("youtube.request_timeout must be positive (seconds)")
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube.requests_per_second must be >= 0")
	}
	if c.YouTube.ProxyURL != "" {
		parsed, err := url.Parse(c.YouTube.ProxyURL)
		if err != nil {
			return fmt.Errorf("youtube.proxy_url: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("youtube.proxy_url must be an absolute URL, got %q", c.YouTube.ProxyURL)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, ok := knownFormats[c.Output.Format]; !ok {
		return fmt.Errorf("output.format: unsupported value %q (use one of %s)", c.Output.Format, strings.Join(OutputFormats(), ", "))
	}
	return nil
}

func (c *Config) validateUI() error {
	if _, _, err := net.SplitHostPort(c.UI.Bind); err != nil {
		return fmt.Errorf("ui.bind: %w", err)
	}
	if c.UI.IdleTimeout < 0 {
		return errors.New("ui.idle_timeout must be >= 0")
	}
	return nil
}
