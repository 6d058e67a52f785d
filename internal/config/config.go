// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvValidator        = "PDFUA_VALIDATOR"
	EnvValidatorJar     = "PDFUA_VALIDATOR_JAR"
	EnvFlavour          = "PDFUA_FLAVOUR"
	EnvValidatorTimeout = "PDFUA_VALIDATOR_TIMEOUT"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvMetricsFile      = "PDFUA_METRICS_FILE"
)

// Fixed file layout used when nothing else is configured
const (
	DefaultInput        = "pdf/example.pdf"
	DefaultValidatePath = "pdf/validate.pdf"
	DefaultOutput       = "pdf/tagged.pdf"
	DefaultActionsPath  = "pdf/actions.json"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Input        string `json:"input,omitempty" yaml:"input,omitempty"`                 // PDF to remediate
	ValidatePath string `json:"validate_path,omitempty" yaml:"validate_path,omitempty"` // Tagged copy checked by the first validation pass
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`               // Remediated PDF
	ActionsPath  string `json:"actions_path,omitempty" yaml:"actions_path,omitempty"`   // Audit copy of the submitted action plan
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`           // Password for encrypted inputs

	// Validator
	ValidatorCommand string `json:"validator_command,omitempty" yaml:"validator_command,omitempty"`                                // Validator executable plus leading args
	ValidatorJar     string `json:"validator_jar,omitempty" yaml:"validator_jar,omitempty"`                                        // Run the validator as java -jar <jar>
	Flavour          string `json:"flavour,omitempty" yaml:"flavour,omitempty" validate:"omitempty,oneof=ua1 ua2"`                 // Validation profile
	ValidatorTimeout string `json:"validator_timeout,omitempty" yaml:"validator_timeout,omitempty"`                                // Go duration; "0" disables the limit
	Jobs             int    `json:"jobs,omitempty" yaml:"jobs,omitempty" validate:"gte=0,lte=64"`                                  // Concurrent validator processes for multi-file validation

	// Behavior
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`                               // PostgreSQL connection URL for the run ledger
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`                               // Prometheus textfile output
	LogFormat   string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"` // text or json
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`                                         // Debug logging and boxed reports
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Input:            DefaultInput,
		ValidatePath:     DefaultValidatePath,
		Output:           DefaultOutput,
		ActionsPath:      DefaultActionsPath,
		ValidatorCommand: "verapdf",
		Flavour:          "ua1",
		ValidatorTimeout: "5m",
		Jobs:             1,
		LogFormat:        "text",
	}
}

// LoadConfig loads configuration from a JSON or YAML file; the extension picks the decoder.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.ValidatorCommand != "" && c.ValidatorJar != "" {
		return fmt.Errorf("config error: 'validator_command' and 'validator_jar' are mutually exclusive")
	}

	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}

	return nil
}

// Timeout parses ValidatorTimeout. Empty means no value; callers fall back to defaults.
func (c *Config) Timeout() (time.Duration, error) {
	if c.ValidatorTimeout == "" || c.ValidatorTimeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ValidatorTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid 'validator_timeout' %q: %w", c.ValidatorTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("'validator_timeout' must be non-negative")
	}
	return d, nil
}

// ValidatorArgs splits ValidatorCommand into the executable and its leading args
func (c *Config) ValidatorArgs() []string {
	return strings.Fields(c.ValidatorCommand)
}

// ApplyEnv fills empty fields from the environment
func (c *Config) ApplyEnv() {
	fill := func(field *string, key string) {
		if *field == "" {
			*field = os.Getenv(key)
		}
	}
	if c.ValidatorCommand == "" && c.ValidatorJar == "" {
		fill(&c.ValidatorJar, EnvValidatorJar)
		if c.ValidatorJar == "" {
			fill(&c.ValidatorCommand, EnvValidator)
		}
	}
	fill(&c.Flavour, EnvFlavour)
	fill(&c.ValidatorTimeout, EnvValidatorTimeout)
	fill(&c.DatabaseURL, EnvDatabaseURL)
	fill(&c.MetricsFile, EnvMetricsFile)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.ValidatePath == "" {
		result.ValidatePath = defaults.ValidatePath
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.ActionsPath == "" {
		result.ActionsPath = defaults.ActionsPath
	}
	if result.Password == "" {
		result.Password = defaults.Password
	}
	// A jar replaces the command, so the default command must not shadow it
	if result.ValidatorCommand == "" && result.ValidatorJar == "" {
		result.ValidatorCommand = defaults.ValidatorCommand
	}
	if result.ValidatorJar == "" && result.ValidatorCommand == "" {
		result.ValidatorJar = defaults.ValidatorJar
	}
	if result.Flavour == "" {
		result.Flavour = defaults.Flavour
	}
	if result.ValidatorTimeout == "" {
		result.ValidatorTimeout = defaults.ValidatorTimeout
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.MetricsFile == "" {
		result.MetricsFile = defaults.MetricsFile
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.Jobs == 0 {
		result.Jobs = defaults.Jobs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
