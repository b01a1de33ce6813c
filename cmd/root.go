package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/buildforge/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath    string
	verbose       bool
	buildToolFlag string
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "buildforge",
	Short: "Continuous integration for self-hosted Git services",
	Long: `A polling CI orchestrator for self-hosted Git services that expose a
GitHub-compatible API (Gitea, GitHub Enterprise, and friends).

Each run discovers every repository and ref the service serves, mirrors
them into a local working tree, invokes the configured build tool per
ref, and publishes the outcome as a commit status. Local directories for
refs the service no longer vouches for are removed.

Runs are safe to overlap: a per-ref lock makes concurrent invocations
skip each other's refs instead of corrupting them.`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&buildToolFlag, "build-tool", "",
		"Build tool command, overrides the config file")
}

// loadConfig resolves the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create buildforge.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if buildToolFlag != "" {
		cfg.BuildTool = buildToolFlag
	}

	return cfg, nil
}
