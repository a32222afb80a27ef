// Package config provides configuration management for the sqledit CLI.
//
// Values are layered defaults < sqledit.yaml < SQLEDIT_* environment
// variables < command-line flags.
package config

import "github.com/leapstack-labs/sqledit/pkg/core"

// Config holds all CLI configuration options.
type Config struct {
	Database    string          `koanf:"database"`
	User        string          `koanf:"user"`
	Password    string          `koanf:"password"`
	Output      string          `koanf:"output"`
	TypePolicy  core.TypePolicy `koanf:"type_policy"`
	Verbose     bool            `koanf:"verbose"`
	LogLevel    string          `koanf:"log_level"`
	HistoryFile string          `koanf:"history_file"`

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput     = "table"
	DefaultLogLevel   = "warn"
	DefaultTypePolicy = "strict"
	EnvPrefix         = "SQLEDIT_"
)

// configFileNames are searched, in order, in each directory.
var configFileNames = []string{"sqledit.yaml", "sqledit.yml"}

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"table", "json", "csv", "markdown", "yaml"}
