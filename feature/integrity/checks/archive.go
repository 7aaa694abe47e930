package checks

import (
	"context"
	"fmt"

	"tlf-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ArchiveReport describes the snapshot archive bucket.
type ArchiveReport struct {
	Bucket  string `json:"bucket"`
	Exists  bool   `json:"exists"`
	Objects int    `json:"objects"`
	Fixed   bool   `json:"fixed"`
}

// CheckArchive reports whether the archive bucket exists and how many objects
// it holds under prefix.
func CheckArchive(ctx context.Context, client storage.Client, bucket, prefix string) (*ArchiveReport, error) {
	report := &ArchiveReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, obj.Err)
		}
		report.Objects++
	}
	return report, nil
}

// FixArchive creates the archive bucket when it is missing.
func FixArchive(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) (bool, error) {
	created, err := storage.EnsureBucket(ctx, client, bucket, region)
	if err != nil {
		return false, err
	}
	if created {
		logger.Info("Created archive bucket", zap.String("bucket", bucket))
	}
	return created, nil
}
