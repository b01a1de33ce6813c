package cmd

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove local state for refs that no longer exist",
	Long: `Discover the current catalog and delete every entity, repository,
and ref directory under the output root that the hosting service no
longer vouches for. Nothing is synced or built.`,
	RunE: runGC,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(gcCmd)
}

func runGC(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	refCatalog, collector, err := injectGarbageCollection(cfg)
	if err != nil {
		return err
	}

	catalog, err := refCatalog.Discover(ctx)
	if err != nil {
		return err
	}

	if err := collector.Collect(catalog); err != nil {
		return err
	}

	logger.Info("Garbage collection finished")
	return nil
}
