package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/buildforge/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full build cycle",
	Long: `Discover every repository and ref on the hosting service, remove
local state the service no longer vouches for, then sync and build each
ref and publish the outcome as a commit status.

This is the main command intended to be used in a cronjob. Overlapping
runs are safe: refs locked by another process are skipped and picked up
by the next cycle.`,
	RunE: runCycle,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(runCmd)
}

func runCycle(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.BuildTool == "" {
		return errors.New("no build tool configured: set build_tool or pass --build-tool")
	}

	orchestrator, err := injectOrchestrator(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting build cycle...")

	results, runErr := orchestrator.Run(ctx)
	renderSummary(results)
	return runErr
}

// renderSummary prints the per-ref outcomes of a cycle as a table.
func renderSummary(results []domain.Result) {
	if len(results) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Ref", "Kind", "Status", "Duration", "Notes"})
	for _, res := range results {
		table.Append(summaryRow(res))
	}
	table.Render()
}

// summaryRow flattens one result into table columns. Skipped refs render
// as "skipped" regardless of the status they would have reported.
func summaryRow(res domain.Result) []string {
	status := string(res.Status)
	if res.Skipped {
		status = "skipped"
	}

	note := res.Reason
	if res.Err != nil {
		note = res.Err.Error()
	}

	return []string{
		res.Target.Repository.FullName,
		res.Target.Ref.Name,
		string(res.Target.Ref.Kind),
		status,
		res.Duration.Round(time.Millisecond).String(),
		note,
	}
}
