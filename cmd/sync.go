package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle",
	Long: `Runs a single reconciliation cycle and prints its result.
With --dry-run the cycle is planned and the per-board attribution report is
printed, but nothing is written or published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if dryRun {
			plan, err := rt.engine.Plan(ctx)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			rt.logger.Info("Dry run, nothing written", zap.Int64("cursor", plan.NextCursorID()))
			return plan.WriteReport(os.Stdout)
		}

		result := rt.runner.RunCycle(ctx)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if !result.OK {
			return fmt.Errorf("sync cycle failed: %s", result.Error)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("dry-run", false, "Plan the cycle and print the attribution report without writing")
}
