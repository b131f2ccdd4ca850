package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// Output modes accepted by --output.
var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return core.InvalidArgumentf("state_path is required")
	}
	if strings.TrimSpace(c.Owner) == "" {
		return core.InvalidArgumentf("owner is required")
	}
	if !slices.Contains(validOutputs, strings.ToLower(c.OutputFormat)) {
		return core.InvalidArgumentf("invalid output %q (valid: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return core.InvalidArgumentf("invalid log_format %q (valid: text, json)", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return core.InvalidArgumentf("invalid log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.BatchSize < 1 {
		return core.InvalidArgumentf("batch_size must be at least 1")
	}
	if c.SampleSize < 1 {
		return core.InvalidArgumentf("sample_size must be at least 1")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > core.MaxPageSize {
		return core.InvalidArgumentf("default_page_size must be between 1 and %d", core.MaxPageSize)
	}
	if c.REST.TimeoutSeconds < 0 || c.REST.MaxRecords < 0 {
		return core.InvalidArgumentf("rest settings must not be negative")
	}

	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Sources[name].Validate(); err != nil {
			return core.Wrap(core.KindInvalidArgument, err, fmt.Sprintf("invalid source %q", name))
		}
	}
	return nil
}
