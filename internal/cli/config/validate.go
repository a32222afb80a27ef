package config

import (
	"slices"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// Validate checks settings that do not depend on the command being run.
// A missing database path is reported by the gate, not here, so that help
// and version work without one.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output) {
		return core.ConfigErrorf("", "invalid output format %q (want one of %v)", c.Output, OutputFormats)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return core.ConfigErrorf("", "invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}
	return nil
}
