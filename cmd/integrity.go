package cmd

import (
	"context"
	"errors"
	"fmt"

	"tlf-sync/core/database"
	"tlf-sync/core/storage"
	"tlf-sync/feature/integrity"
	"tlf-sync/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the source schema, ledger schema and snapshot archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// sourceCheckCmd represents the integrity source command
var sourceCheckCmd = &cobra.Command{
	Use:   "source",
	Short: "Check the storage controller tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// ledgerCheckCmd represents the integrity ledger command
var ledgerCheckCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Check and optionally migrate the ledger tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// archiveCheckCmd represents the integrity archive command
var archiveCheckCmd = &cobra.Command{
	Use:   "archive",
	Short: "Check and optionally create the snapshot archive bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(sourceCheckCmd, ledgerCheckCmd, archiveCheckCmd)

	ledgerCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate the ledger tables")
	archiveCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket if missing")
}

func runIntegrityChecks(ctx context.Context, runSource, runLedger, runArchive bool) error {
	cfg, logg, err := loadBase()
	if err != nil {
		return err
	}
	defer logg.Sync()

	// Connect only what the selected checks need; a failed connection is reported by the check.
	var ledger, source *gorm.DB
	if runLedger {
		if ledger, err = database.Connect(cfg.Database); err != nil {
			logg.Warn("Ledger database connection failed", zap.Error(err))
		}
	}
	if runSource {
		if source, err = database.Connect(cfg.Source.Config); err != nil {
			logg.Warn("Source database connection failed", zap.Error(err))
		}
	}
	var client storage.Client
	if runArchive && cfg.Storage.Enabled {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Storage client creation failed", zap.Error(err))
		}
	}

	svc := integrity.NewService(ledger, source, client, cfg.Storage, logg)
	healthy := true

	if runSource {
		logg.Info("Checking source schema...")
		report, err := svc.CheckSource()
		if err != nil {
			return fmt.Errorf("source check failed: %w", err)
		}
		healthy = logSchemaReport(logg, report) && healthy
	}

	if runLedger {
		logg.Info("Checking ledger schema...")
		check := svc.CheckLedger
		if fixFlag {
			logg.Info("Migrating ledger tables...")
			check = svc.FixLedger
		}
		report, err := check()
		if err != nil {
			return fmt.Errorf("ledger check failed: %w", err)
		}
		if !logSchemaReport(logg, report) {
			healthy = false
			if !fixFlag {
				logg.Info("Run 'integrity ledger --fix' or 'migrate' to create the ledger tables.")
			}
		}
	}

	if runArchive {
		logg.Info("Checking snapshot archive...")
		check := svc.CheckArchive
		if fixFlag {
			check = svc.FixArchive
		}
		report, err := check(ctx)
		switch {
		case errors.Is(err, integrity.ErrArchiveNotConfigured):
			logg.Info("Snapshot archive disabled.")
		case err != nil:
			return fmt.Errorf("archive check failed: %w", err)
		case !report.Exists:
			healthy = false
			logg.Warn("Archive bucket missing", zap.String("bucket", report.Bucket))
		default:
			logg.Info("Archive bucket present",
				zap.String("bucket", report.Bucket),
				zap.Int("objects", report.Objects),
				zap.Bool("created", report.Fixed),
			)
		}
	}

	if !healthy {
		return errors.New("integrity checks reported problems")
	}
	return nil
}

func logSchemaReport(logg *zap.Logger, report *checks.SchemaReport) bool {
	for _, e := range report.Errors {
		logg.Error("Schema inspection error", zap.String("database", report.Database), zap.String("error", e))
	}
	for table, tbl := range report.Tables {
		if tbl.Status == "ok" {
			continue
		}
		logg.Warn("Table does not match model",
			zap.String("database", report.Database),
			zap.String("table", table),
			zap.String("status", tbl.Status),
			zap.Strings("missing_columns", tbl.MissingColumns),
			zap.Strings("type_mismatches", tbl.TypeMismatches),
		)
	}
	if report.Matched {
		logg.Info("Schema is intact.", zap.String("database", report.Database))
	}
	return report.Matched
}
