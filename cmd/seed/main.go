// Package main provides the catalog seeding tool. It ingests courses from
// a CSV directory and/or a remote catalog page, persists them to the
// database, and optionally uploads a fresh snapshot to object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coursewise/advisor-go/internal/catalog"
	"github.com/coursewise/advisor-go/internal/config"
	"github.com/coursewise/advisor-go/internal/ingest"
	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/objstore"
	"github.com/coursewise/advisor-go/internal/sliceutil"
	"github.com/coursewise/advisor-go/internal/snapshot"
	"github.com/coursewise/advisor-go/internal/storage"
)

var (
	dirFlag      = flag.String("dir", "", "Directory containing courses.csv (plus optional lecturers.csv, programs.csv, enrollments.csv)")
	urlFlag      = flag.String("url", "", "Catalog page URL to scrape (default: CATALOG_URL)")
	snapshotFlag = flag.Bool("snapshot", false, "Upload a snapshot to object storage after seeding")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting seed tool")

	url := *urlFlag
	if url == "" {
		url = cfg.CatalogURL
	}
	if *dirFlag == "" && url == "" {
		_, _ = fmt.Fprintln(os.Stderr, "Nothing to ingest: pass -dir and/or -url (or set CATALOG_URL)")
		os.Exit(1)
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout)
	defer cancel()

	var client *ingest.Client
	if url != "" {
		client = ingest.NewClient(config.IngestRequest, config.IngestRateLimit, cfg.IngestMaxRetries)
	}
	ing := ingest.New(client, log, nil)

	// CSV and HTML sources are independent; ingest them concurrently.
	var (
		cat         *catalog.Catalog
		enrollments []ingest.EnrollmentRecord
		webCourses  []catalog.Course
	)

	g, gctx := errgroup.WithContext(ctx)
	if *dirFlag != "" {
		g.Go(func() error {
			var err error
			cat, enrollments, err = ing.FromDir(gctx, *dirFlag)
			return err
		})
	}
	if url != "" {
		g.Go(func() error {
			var err error
			webCourses, err = ing.FromURL(gctx, url)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Ingestion failed")
		os.Exit(1)
	}

	if cat == nil {
		cat = &catalog.Catalog{}
	}
	cat.Courses = mergeCourses(cat.Courses, webCourses)

	if err := persist(ctx, db, cat, enrollments, log); err != nil {
		log.WithError(err).Error("Failed to persist catalog")
		os.Exit(1)
	}

	if *snapshotFlag {
		if err := uploadSnapshot(ctx, cfg, db, log); err != nil {
			log.WithError(err).Error("Snapshot upload failed")
			os.Exit(1)
		}
	}

	log.Info("Seeding complete")
}

// mergeCourses appends web courses that are not already present by id.
// CSV rows win on conflict.
func mergeCourses(base, extra []catalog.Course) []catalog.Course {
	return sliceutil.Deduplicate(append(base, extra...), func(c catalog.Course) string { return c.ID })
}

func persist(ctx context.Context, db *storage.DB, cat *catalog.Catalog, enrollments []ingest.EnrollmentRecord, log *logger.Logger) error {
	if len(cat.Courses) > 0 {
		if err := db.SaveCourses(ctx, cat.Courses); err != nil {
			return fmt.Errorf("save courses: %w", err)
		}
	}
	if len(cat.Lecturers) > 0 {
		if err := db.SaveLecturers(ctx, cat.Lecturers); err != nil {
			return fmt.Errorf("save lecturers: %w", err)
		}
	}
	if len(cat.Programs) > 0 {
		if err := db.SavePrograms(ctx, cat.Programs); err != nil {
			return fmt.Errorf("save programs: %w", err)
		}
	}
	for _, e := range enrollments {
		err := db.SaveEnrollment(ctx, storage.Enrollment{
			StudentID: e.StudentID,
			CourseID:  e.CourseID,
			Status:    e.Status,
		})
		if err != nil {
			return fmt.Errorf("save enrollment %s/%s: %w", e.StudentID, e.CourseID, err)
		}
	}

	log.WithFields(map[string]any{
		"courses":     len(cat.Courses),
		"lecturers":   len(cat.Lecturers),
		"programs":    len(cat.Programs),
		"enrollments": len(enrollments),
	}).Info("Catalog persisted")
	return nil
}

func uploadSnapshot(ctx context.Context, cfg *config.Config, db *storage.DB, log *logger.Logger) error {
	if !cfg.SnapshotEnabled {
		return fmt.Errorf("snapshots are not enabled (set SNAPSHOT_ENABLED)")
	}

	client, err := objstore.New(ctx, objstore.Config{
		Endpoint:    cfg.SnapshotEndpoint,
		AccessKeyID: cfg.SnapshotAccessKey,
		SecretKey:   cfg.SnapshotSecretKey,
		BucketName:  cfg.SnapshotBucket,
	})
	if err != nil {
		return err
	}

	mgr := snapshot.New(client, snapshot.Config{Key: cfg.SnapshotKey}, log, nil)

	start := time.Now()
	etag, err := mgr.Upload(ctx, db)
	if err != nil {
		return err
	}
	log.WithFields(map[string]any{
		"etag":        etag,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Snapshot uploaded")
	return nil
}
