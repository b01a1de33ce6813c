package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for buildforge.
type Config struct {
	Server            string    `yaml:"server"`               // Base URL of the hosting service
	Token             string    `yaml:"token"`                // Inline, ${ENV_VAR}, or file path
	CA                CASetting `yaml:"ca"`                   // Path to a CA bundle, or false to skip verification
	User              string    `yaml:"user"`                 // Login the token belongs to
	OutputDir         string    `yaml:"output_dir"`           // Root of the local working tree
	WhitelistRepos    []string  `yaml:"whitelist_repos"`      // When non-empty, only these repos are processed
	BlacklistRepos    []string  `yaml:"blacklist_repos"`      // Ignored while a whitelist is set
	PublishStatus     bool      `yaml:"publish_status"`       // When false, commit statuses are never written
	ReportingContext  string    `yaml:"reporting_context"`    // Status context owned by this tool
	SkipIfLastSuccess bool      `yaml:"skip_if_last_success"` // Skip refs whose last build succeeded
	ForceRebuild      bool      `yaml:"force_rebuild"`        // Rebuild even when history artifacts exist
	ReportFile        string    `yaml:"report_file"`          // Report name passed to the build tool, empty disables it
	BuildTool         string    `yaml:"build_tool"`           // Command invoked per ref
	BuildConfig       string    `yaml:"build_config"`         // Recipe file name, or ".ext" to match by extension
	KeepBuildHistory  bool      `yaml:"keep_build_history"`   // One build dir per commit instead of a single reused one
	FailureExitCodes  []int     `yaml:"failure_exit_codes"`   // Tool exit codes reported as failure instead of error
	Concurrency       int       `yaml:"concurrency"`          // Refs processed in parallel
	CommandTimeout    Duration  `yaml:"command_timeout"`      // Per-subprocess limit, zero means none
	GitRetries        int       `yaml:"git_retries"`          // Extra clone attempts after the first
	RetryBackoff      Duration  `yaml:"retry_backoff"`        // Pause between clone attempts
	HTTPRetries       int       `yaml:"http_retries"`         // API request retries
}

// CASetting controls TLS verification against the hosting service.
// In YAML it accepts a bundle path, `false` to disable verification, or
// `true` (and absence) for the system pool.
type CASetting struct {
	Insecure bool
	Path     string
}

// UnmarshalYAML accepts the boolean and string forms of the ca key.
func (s *CASetting) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!bool":
		var verify bool
		if err := value.Decode(&verify); err != nil {
			return err
		}
		s.Insecure = !verify
		return nil
	case "!!str":
		return value.Decode(&s.Path)
	case "!!null":
		return nil
	default:
		return fmt.Errorf("ca: expected a path or a boolean, got %s", value.Tag)
	}
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
// Bare integers are read as seconds.
type Duration time.Duration

// UnmarshalYAML parses the duration value.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var secs int
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and resolving token file paths. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	// A .env next to the process feeds ${ENV_VAR} references; its absence
	// is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := defaults()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Token = resolveToken(cfg.Token)
	if normErr := normalize(cfg); normErr != nil {
		return nil, normErr
	}

	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// defaults returns a config pre-populated with the values used when the
// file leaves a key out.
func defaults() *Config {
	return &Config{
		PublishStatus:     true,
		ReportingContext:  "buildforge",
		SkipIfLastSuccess: true,
		BuildConfig:       "ci.json",
		FailureExitCodes:  []int{2},
		Concurrency:       1,
		RetryBackoff:      Duration(5 * time.Second),
		HTTPRetries:       2,
	}
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".buildforge.yaml",
		".buildforge.yml",
		"buildforge.yaml",
		"buildforge.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// normalize clamps numeric values that would break a run and anchors the
// output root to an absolute path. Subprocesses run with their own working
// directories, so a relative root would resolve differently per process.
func normalize(cfg *Config) error {
	if cfg.OutputDir != "" {
		abs, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output_dir: %w", err)
		}
		cfg.OutputDir = abs
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.GitRetries < 0 {
		cfg.GitRetries = 0
	}
	if cfg.HTTPRetries < 0 {
		cfg.HTTPRetries = 0
	}
	return nil
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if cfg.Server == "" {
		return errors.New("server is required")
	}
	if !strings.HasPrefix(cfg.Server, "http://") && !strings.HasPrefix(cfg.Server, "https://") {
		return fmt.Errorf("server %q must be an http(s) URL", cfg.Server)
	}
	if cfg.Token == "" {
		return errors.New(
			"token is required (set inline, via ${ENV_VAR}, or as file path)",
		)
	}
	if cfg.OutputDir == "" {
		return errors.New("output_dir is required")
	}

	for _, code := range cfg.FailureExitCodes {
		if code == 0 {
			return errors.New("failure_exit_codes must not contain 0, exit 0 is always a success")
		}
	}

	return nil
}
