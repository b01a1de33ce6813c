package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
//
//nolint:gochecknoglobals // set by the linker
var version = "0.1.0"

//nolint:gochecknoglobals // required by cobra CLI pattern
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of buildforge",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("buildforge %s\n", version)
	},
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(versionCmd)
}
