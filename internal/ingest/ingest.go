// Package ingest loads the course corpus from CSV files or remote HTML
// catalog pages. It validates rows as they are parsed and reports
// per-source outcomes through the metrics layer; persisting the result
// is the caller's job (see cmd/seed).
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/coursewise/advisor-go/internal/catalog"
	apperrors "github.com/coursewise/advisor-go/internal/errors"
	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/metrics"
)

// CSV file names Ingestor.FromDir looks for. Courses are required, the
// rest are optional.
const (
	CoursesFile     = "courses.csv"
	LecturersFile   = "lecturers.csv"
	ProgramsFile    = "programs.csv"
	EnrollmentsFile = "enrollments.csv"
)

// Ingestor loads catalog data from the filesystem or over HTTP.
type Ingestor struct {
	client  *Client
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// New creates an Ingestor. The client may be nil when only CSV ingestion
// is needed; metrics may be nil.
func New(client *Client, log *logger.Logger, m *metrics.Metrics) *Ingestor {
	if log == nil {
		log = logger.New("info")
	}
	return &Ingestor{
		client:  client,
		logger:  log.WithModule("ingest"),
		metrics: m,
	}
}

// FromDir loads the catalog from CSV files in dir. courses.csv must
// exist; lecturers.csv, programs.csv and enrollments.csv are optional.
func (ing *Ingestor) FromDir(ctx context.Context, dir string) (*catalog.Catalog, []EnrollmentRecord, error) {
	start := time.Now()

	cat, enrollments, err := ing.loadDir(ctx, dir)
	ing.recordIngest("csv", start, err)
	if err != nil {
		return nil, nil, err
	}

	ing.logger.WithFields(map[string]any{
		"courses":     len(cat.Courses),
		"lecturers":   len(cat.Lecturers),
		"programs":    len(cat.Programs),
		"enrollments": len(enrollments),
	}).Info("Catalog loaded from CSV")

	return cat, enrollments, nil
}

func (ing *Ingestor) loadDir(ctx context.Context, dir string) (*catalog.Catalog, []EnrollmentRecord, error) {
	cat := &catalog.Catalog{}

	courses, skipped, err := parseFile(dir, CoursesFile, ParseCoursesCSV)
	if err != nil {
		return nil, nil, err
	}
	cat.Courses = courses
	ing.logSkipped(CoursesFile, skipped)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if lecturers, skipped, err := parseOptionalFile(dir, LecturersFile, ParseLecturersCSV); err != nil {
		return nil, nil, err
	} else if lecturers != nil {
		cat.Lecturers = lecturers
		ing.logSkipped(LecturersFile, skipped)
	}

	if programs, skipped, err := parseOptionalFile(dir, ProgramsFile, ParseProgramsCSV); err != nil {
		return nil, nil, err
	} else if programs != nil {
		cat.Programs = programs
		ing.logSkipped(ProgramsFile, skipped)
	}

	enrollments, skipped, err := parseOptionalFile(dir, EnrollmentsFile, ParseEnrollmentsCSV)
	if err != nil {
		return nil, nil, err
	}
	ing.logSkipped(EnrollmentsFile, skipped)

	return cat, enrollments, nil
}

// FromURL fetches an HTML catalog page and extracts its courses.
func (ing *Ingestor) FromURL(ctx context.Context, url string) ([]catalog.Course, error) {
	if ing.client == nil {
		return nil, apperrors.NewIngestError(url, 0, fmt.Errorf("no HTTP client configured"))
	}

	start := time.Now()

	doc, err := ing.client.GetDocument(ctx, url)
	if err != nil {
		ing.recordIngest("html", start, err)
		return nil, apperrors.NewIngestError(url, 0, err)
	}

	courses, skipped := ParseCatalogHTML(doc)
	if len(courses) == 0 {
		err := apperrors.NewIngestError(url, 0, fmt.Errorf("no course cards found in page"))
		ing.recordIngest("html", start, err)
		return nil, err
	}
	ing.recordIngest("html", start, nil)
	ing.logSkipped(url, skipped)

	ing.logger.WithFields(map[string]any{
		"url":     url,
		"courses": len(courses),
	}).Info("Catalog page fetched")

	return courses, nil
}

// parseFile opens dir/name and runs the given parser over it.
func parseFile[T any](dir, name string, parse func(r io.Reader) ([]T, int, error)) ([]T, int, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, apperrors.NewIngestError(name, 0, err)
	}
	defer func() { _ = f.Close() }()

	out, skipped, err := parse(f)
	if err != nil {
		return nil, 0, apperrors.NewIngestError(name, 0, err)
	}
	return out, skipped, nil
}

// parseOptionalFile is parseFile for files that may be absent.
func parseOptionalFile[T any](dir, name string, parse func(r io.Reader) ([]T, int, error)) ([]T, int, error) {
	if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
		return nil, 0, nil
	}
	return parseFile(dir, name, parse)
}

func (ing *Ingestor) recordIngest(source string, start time.Time, err error) {
	if ing.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	ing.metrics.RecordIngest(source, status, time.Since(start).Seconds())
}

func (ing *Ingestor) logSkipped(source string, skipped int) {
	if skipped > 0 {
		ing.logger.WithFields(map[string]any{
			"source":  source,
			"skipped": skipped,
		}).Warn("Skipped invalid rows")
	}
}
