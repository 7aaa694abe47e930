package cmd

import (
	"fmt"
	"os"

	"tlf-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tlf-sync",
	Short: "TLF inventory sync service",
	Long: `tlf-sync mirrors the automated board storage into the inventory database.
Every cycle snapshots the storage, attributes each retrieved unit to the storage
or the manual warehouse, and keeps the warehouse ledger in step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure. Errors are
// reported through a console logger so CLI output matches the service logs.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("command failed", zap.String("command", failedCommand()), zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func failedCommand() string {
	cmd, _, err := RootCmd.Find(os.Args[1:])
	if err != nil || cmd == nil {
		return RootCmd.Name()
	}
	return cmd.CommandPath()
}
