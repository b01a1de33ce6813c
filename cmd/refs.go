package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/buildforge/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "List every ref a build cycle would process",
	Long: `Discover all repositories and print the branches and tags a run
would build, after whitelist and blacklist filtering. The working tree
is not touched and no build is started.`,
	RunE: runRefs,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(refsCmd)
}

func runRefs(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	refCatalog, err := injectRefCatalog(cfg)
	if err != nil {
		return err
	}

	catalog, err := refCatalog.Discover(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Ref", "Kind", "Commit"})
	for _, repo := range catalog.Repositories {
		for _, ref := range catalog.Refs[repo.FullName] {
			table.Append([]string{
				repo.FullName,
				ref.Name,
				string(ref.Kind),
				domain.ShortSHA(ref.CommitSHA),
			})
		}
	}
	table.Render()

	fmt.Printf("\nTotal: %d repositories, %d refs\n", len(catalog.Repositories), catalog.RefCount())
	return nil
}
