package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"tlf-sync/core/reconcile"
	"tlf-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	dayLayout  = "2006/01/02"
	timeLayout = "150405.000000000"
)

// Entry describes one archived snapshot object.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Archive stores every published snapshot as a JSON object in a bucket,
// keyed by its fetch time.
type Archive struct {
	client    storage.Client
	bucket    string
	prefix    string
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an archive over the configured bucket.
func New(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		logger:    logger,
		now:       reconcile.Now,
	}
}

// Bucket returns the bucket the archive writes to.
func (a *Archive) Bucket() string {
	return a.bucket
}

// Key returns the object key of a snapshot fetched at t.
func (a *Archive) Key(t time.Time) string {
	t = t.UTC()
	return path.Join(a.prefix, t.Format(dayLayout), t.Format(timeLayout)+".json")
}

func (a *Archive) dayPrefix(day time.Time) string {
	return path.Join(a.prefix, day.UTC().Format(dayLayout)) + "/"
}

// ArchiveSnapshot uploads the snapshot and prunes expired objects.
func (a *Archive) ArchiveSnapshot(ctx context.Context, snapshot reconcile.Snapshot) error {
	if snapshot.Boards == nil {
		snapshot.Boards = []reconcile.BoardStock{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := a.Key(snapshot.FetchedAt)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	a.logger.Debug("Snapshot archived", zap.String("key", key), zap.Int("bytes", len(data)))

	if a.retention > 0 {
		if removed, err := a.Prune(ctx); err != nil {
			a.logger.Warn("Failed to prune snapshot archive", zap.Error(err))
		} else if removed > 0 {
			a.logger.Info("Pruned snapshot archive", zap.Int("removed", removed))
		}
	}
	return nil
}

// List returns the snapshots archived on the given UTC day, oldest first.
func (a *Archive) List(ctx context.Context, day time.Time) ([]Entry, error) {
	return a.list(ctx, a.dayPrefix(day))
}

func (a *Archive) list(ctx context.Context, prefix string) ([]Entry, error) {
	var out []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		out = append(out, Entry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Load reads one archived snapshot.
func (a *Archive) Load(ctx context.Context, key string) (*reconcile.Snapshot, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	var snap reconcile.Snapshot
	if err := json.NewDecoder(obj).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &snap, nil
}

// Prune removes snapshots older than the retention period. It returns the
// number of removed objects.
func (a *Archive) Prune(ctx context.Context) (int, error) {
	if a.retention <= 0 {
		return 0, nil
	}
	cutoff := a.now().Add(-a.retention)

	prefix := ""
	if a.prefix != "" {
		prefix = a.prefix + "/"
	}
	entries, err := a.list(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.LastModified.Before(cutoff) {
			continue
		}
		if err := a.client.RemoveObject(ctx, a.bucket, e.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Key, err)
		}
		removed++
	}
	return removed, nil
}
