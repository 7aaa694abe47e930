package integrity

import (
	"context"
	"errors"

	"tlf-sync/core/storage"
	"tlf-sync/feature/integrity/checks"
	tlfsource "tlf-sync/feature/tlf/source"
	"tlf-sync/feature/tlf/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrArchiveNotConfigured is returned by archive checks without object storage.
var ErrArchiveNotConfigured = errors.New("snapshot archive not configured")

// Service handles integrity checks.
type Service struct {
	ledger  *gorm.DB
	source  *gorm.DB
	client  storage.Client
	storage storage.Config
	logger  *zap.Logger
}

// NewService creates a new integrity service. client may be nil when the
// archive is disabled.
func NewService(ledger, source *gorm.DB, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		source:  source,
		client:  client,
		storage: cfg,
		logger:  logger,
	}
}

// CheckSource verifies the storage controller tables the sync reads.
func (s *Service) CheckSource() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.source, "source", tlfsource.Models())
}

// CheckLedger verifies the tables the sync owns.
func (s *Service) CheckLedger() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.ledger, "ledger", store.Models())
}

// FixLedger migrates the ledger tables and checks them again.
func (s *Service) FixLedger() (*checks.SchemaReport, error) {
	if s.ledger == nil {
		return nil, errors.New("database connection is nil")
	}
	if err := store.Migrate(s.ledger); err != nil {
		return nil, err
	}
	s.logger.Info("Migrated ledger tables")
	return s.CheckLedger()
}

// CheckArchive inspects the archive bucket.
func (s *Service) CheckArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	if s.client == nil {
		return nil, ErrArchiveNotConfigured
	}
	return checks.CheckArchive(ctx, s.client, s.storage.Bucket, s.storage.Prefix)
}

// FixArchive creates the archive bucket if needed and inspects it.
func (s *Service) FixArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	if s.client == nil {
		return nil, ErrArchiveNotConfigured
	}
	created, err := checks.FixArchive(ctx, s.client, s.storage.Bucket, s.storage.Region, s.logger)
	if err != nil {
		return nil, err
	}
	report, err := s.CheckArchive(ctx)
	if err != nil {
		return nil, err
	}
	report.Fixed = created
	return report, nil
}
