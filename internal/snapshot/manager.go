// Package snapshot backs up and restores the seeded course corpus as a
// zstd-compressed SQLite snapshot in object storage. cmd/seed uploads
// after a successful seed; cmd/server can restore on boot when the
// local database is missing.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/metrics"
	"github.com/coursewise/advisor-go/internal/objstore"
	"github.com/coursewise/advisor-go/internal/storage"
)

// ErrNotFound indicates no snapshot exists in object storage.
var ErrNotFound = errors.New("snapshot: not found")

// Config holds snapshot manager configuration.
type Config struct {
	Key     string // Object key for the snapshot (e.g., "snapshots/catalog.db.zst")
	TempDir string // Directory for temporary files, defaults to os.TempDir
}

// Manager uploads and restores corpus snapshots.
type Manager struct {
	client  *objstore.Client
	config  Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu          sync.RWMutex
	currentETag string
}

// New creates a snapshot manager. Logger and metrics may be nil.
func New(client *objstore.Client, cfg Config, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if log == nil {
		log = logger.New("info")
	}
	return &Manager{
		client:  client,
		config:  cfg,
		logger:  log.WithModule("snapshot"),
		metrics: m,
	}
}

// Upload creates a consistent copy of the database, compresses it and
// uploads it. Returns the ETag of the uploaded snapshot.
func (m *Manager) Upload(ctx context.Context, db *storage.DB) (string, error) {
	start := time.Now()
	etag, err := m.upload(ctx, db)
	m.record("upload", start, err)
	if err != nil {
		return "", err
	}

	m.logger.WithField("etag", etag).Info("Snapshot uploaded")
	return etag, nil
}

func (m *Manager) upload(ctx context.Context, db *storage.DB) (string, error) {
	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("snapshot_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = os.Remove(snapshotPath) }()

	compressedPath := snapshotPath + ".zst"
	if err := objstore.CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress database: %w", err)
	}
	defer func() { _ = os.Remove(compressedPath) }()

	compressedFile, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed file: %w", err)
	}
	defer func() { _ = compressedFile.Close() }()

	etag, err := m.client.Upload(ctx, m.config.Key, compressedFile, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()

	return etag, nil
}

// Restore downloads and decompresses the latest snapshot into destDir.
// Returns the path of the restored database and its ETag. Returns
// ErrNotFound if no snapshot exists.
func (m *Manager) Restore(ctx context.Context, destDir string) (string, string, error) {
	start := time.Now()
	dbPath, etag, err := m.restore(ctx, destDir)
	m.record("restore", start, err)
	if err != nil {
		return "", "", err
	}

	m.logger.WithFields(map[string]any{"path": dbPath, "etag": etag}).Info("Snapshot restored")
	return dbPath, etag, nil
}

func (m *Manager) restore(ctx context.Context, destDir string) (string, string, error) {
	body, etag, err := m.client.Download(ctx, m.config.Key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("download snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()

	dbPath := filepath.Join(destDir, "catalog.db")
	if err := decompressTo(body, dbPath); err != nil {
		return "", "", err
	}

	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()

	return dbPath, etag, nil
}

// HasNewSnapshot reports whether the remote snapshot differs from the
// one this manager last uploaded or restored.
func (m *Manager) HasNewSnapshot(ctx context.Context) (bool, error) {
	remoteETag, err := m.client.HeadObject(ctx, m.config.Key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("head snapshot: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return remoteETag != m.currentETag, nil
}

// CurrentETag returns the ETag of the last uploaded or restored snapshot.
func (m *Manager) CurrentETag() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentETag
}

// decompressTo streams a zstd body into dstPath via a temp file so a
// failed download never leaves a truncated database behind.
func decompressTo(body io.Reader, dstPath string) error {
	tmpPath := dstPath + ".tmp"
	if err := objstore.DecompressStream(body, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move snapshot into place: %w", err)
	}
	return nil
}

func (m *Manager) record(operation string, start time.Time, err error) {
	if m.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrNotFound) {
			status = "not_found"
		}
	}
	m.metrics.RecordSnapshot(operation, status, time.Since(start).Seconds())
}
