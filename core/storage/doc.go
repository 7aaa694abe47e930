// Package storage wraps the MinIO Go client for S3-compatible object storage.
//
// The sync service uses it to archive every published inventory snapshot as a
// JSON object, giving an audit trail of what the automated storage reported
// cycle by cycle. The Client interface keeps the archive testable against the
// mocks in core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	created, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
