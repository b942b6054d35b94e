package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursewise/advisor-go/internal/catalog"
	apperrors "github.com/coursewise/advisor-go/internal/errors"
)

// Enrollment statuses.
const (
	StatusEnrolled  = "enrolled"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
)

// Enrollment links a student to a course.
type Enrollment struct {
	StudentID string
	CourseID  string
	Status    string
	UpdatedAt int64
}

// listSeparator joins multi-valued text columns (skills, expertise).
// Pipe is not expected to appear in the values themselves.
const listSeparator = "|"

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

// SaveCourses upserts courses in a single transaction.
func (db *DB) SaveCourses(ctx context.Context, courses []catalog.Course) error {
	if len(courses) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO courses (id, name, description, category, major, level, difficulty, type, credits, skills, time_slot, lecturer_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			major = excluded.major,
			level = excluded.level,
			difficulty = excluded.difficulty,
			type = excluded.type,
			credits = excluded.credits,
			skills = excluded.skills,
			time_slot = excluded.time_slot,
			lecturer_id = excluded.lecturer_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare course upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	start := time.Now()
	now := start.Unix()
	saved := 0
	for _, c := range courses {
		if c.ID == "" || c.Name == "" {
			if db.metrics != nil {
				db.metrics.RecordCatalogIntegrityIssue("course_missing_id_or_name")
			}
			slog.WarnContext(ctx, "skipping course without id or name", "course_id", c.ID)
			continue
		}
		courseType := c.Type
		if courseType == "" {
			courseType = catalog.Secondary
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Description, c.Category, c.Major, c.Level, c.Difficulty,
			string(courseType), c.Credits, joinList(c.Skills), c.TimeSlot, c.LecturerID, now,
		); err != nil {
			return fmt.Errorf("failed to upsert course %s: %w", c.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit courses: %w", err)
	}

	slog.DebugContext(ctx, "courses saved",
		"count", saved,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SaveLecturers upserts lecturers in a single transaction.
func (db *DB) SaveLecturers(ctx context.Context, lecturers []catalog.Lecturer) error {
	if len(lecturers) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lecturers (id, name, job_title, employer, email, program, expertise, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			job_title = excluded.job_title,
			employer = excluded.employer,
			email = excluded.email,
			program = excluded.program,
			expertise = excluded.expertise,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lecturer upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for _, l := range lecturers {
		if l.ID == "" || l.Name == "" {
			if db.metrics != nil {
				db.metrics.RecordCatalogIntegrityIssue("lecturer_missing_id_or_name")
			}
			continue
		}
		if _, err := stmt.ExecContext(ctx, l.ID, l.Name, l.JobTitle, l.Employer, l.Email, l.Program, joinList(l.Expertise), now); err != nil {
			return fmt.Errorf("failed to upsert lecturer %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lecturers: %w", err)
	}
	return nil
}

// SavePrograms upserts degree programs in a single transaction.
func (db *DB) SavePrograms(ctx context.Context, programs []catalog.Program) error {
	if len(programs) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO programs (id, name, level, duration_years, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			duration_years = excluded.duration_years,
			description = excluded.description,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare program upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for _, p := range programs {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Level, p.DurationYears, p.Description, now); err != nil {
			return fmt.Errorf("failed to upsert program %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit programs: %w", err)
	}
	return nil
}

// LoadCatalog reads the full catalog into memory. Returns an empty catalog
// (not an error) when nothing is seeded yet; callers decide how to react.
func (db *DB) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, category, major, level, difficulty, type, credits, skills, time_slot, lecturer_id
		FROM courses ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c catalog.Course
		var courseType, skills string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Major, &c.Level,
			&c.Difficulty, &courseType, &c.Credits, &skills, &c.TimeSlot, &c.LecturerID); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.Type = catalog.CourseType(courseType)
		c.Skills = splitList(skills)
		cat.Courses = append(cat.Courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	lrows, err := db.conn.QueryContext(ctx, `SELECT id, name, job_title, employer, email, program, expertise FROM lecturers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lecturers: %w", err)
	}
	defer func() { _ = lrows.Close() }()

	for lrows.Next() {
		var l catalog.Lecturer
		var expertise string
		if err := lrows.Scan(&l.ID, &l.Name, &l.JobTitle, &l.Employer, &l.Email, &l.Program, &expertise); err != nil {
			return nil, fmt.Errorf("failed to scan lecturer: %w", err)
		}
		l.Expertise = splitList(expertise)
		cat.Lecturers = append(cat.Lecturers, l)
	}
	if err := lrows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lecturers: %w", err)
	}

	prows, err := db.conn.QueryContext(ctx, `SELECT id, name, level, duration_years, description FROM programs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer func() { _ = prows.Close() }()

	for prows.Next() {
		var p catalog.Program
		if err := prows.Scan(&p.ID, &p.Name, &p.Level, &p.DurationYears, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		cat.Programs = append(cat.Programs, p)
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate programs: %w", err)
	}

	return cat, nil
}

// CountCourses returns the number of courses in the catalog.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

// SaveEnrollment upserts one student/course enrollment row.
func (db *DB) SaveEnrollment(ctx context.Context, e Enrollment) error {
	if e.StudentID == "" || e.CourseID == "" {
		return apperrors.NewValidationError("enrollment", "student_id and course_id are required")
	}
	switch e.Status {
	case StatusEnrolled, StatusCompleted, StatusDropped:
	default:
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown enrollment status %q", e.Status))
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO enrollments (student_id, course_id, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(student_id, course_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`, e.StudentID, e.CourseID, e.Status, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert enrollment: %w", err)
	}
	return nil
}

// EnrollmentsByStudent returns all enrollment rows for a student.
func (db *DB) EnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT student_id, course_id, status, updated_at
		FROM enrollments WHERE student_id = ? ORDER BY course_id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.StudentID, &e.CourseID, &e.Status, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}
	return result, nil
}

// StudentCourseIDs returns the completed and currently enrolled course ids
// for a student, in that order.
func (db *DB) StudentCourseIDs(ctx context.Context, studentID string) (completed, enrolled []string, err error) {
	enrollments, err := db.EnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range enrollments {
		switch e.Status {
		case StatusCompleted:
			completed = append(completed, e.CourseID)
		case StatusEnrolled:
			enrolled = append(enrolled, e.CourseID)
		}
	}
	return completed, enrolled, nil
}

// GetCourse returns a single course by id.
func (db *DB) GetCourse(ctx context.Context, id string) (catalog.Course, error) {
	var c catalog.Course
	var courseType, skills string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, category, major, level, difficulty, type, credits, skills, time_slot, lecturer_id
		FROM courses WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Major, &c.Level,
		&c.Difficulty, &courseType, &c.Credits, &skills, &c.TimeSlot, &c.LecturerID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Course{}, apperrors.ErrNotFound
	}
	if err != nil {
		return catalog.Course{}, fmt.Errorf("failed to get course %s: %w", id, err)
	}
	c.Type = catalog.CourseType(courseType)
	c.Skills = splitList(skills)
	return c, nil
}
