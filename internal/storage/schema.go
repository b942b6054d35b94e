package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go when the connection is opened.
func InitSchema(db *sql.DB) error {
	if err := createCoursesTable(db); err != nil {
		return err
	}

	if err := createLecturersTable(db); err != nil {
		return err
	}

	if err := createProgramsTable(db); err != nil {
		return err
	}

	return createEnrollmentsTable(db)
}

func createCoursesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		major TEXT,
		level TEXT,
		difficulty TEXT,
		type TEXT CHECK(type IN ('mandatory', 'secondary', 'audit')) NOT NULL DEFAULT 'secondary',
		credits INTEGER NOT NULL DEFAULT 0,
		skills TEXT,
		time_slot TEXT,
		lecturer_id TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
	CREATE INDEX IF NOT EXISTS idx_courses_major_level ON courses(major, level);
	CREATE INDEX IF NOT EXISTS idx_courses_category ON courses(category);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}

	return nil
}

func createLecturersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS lecturers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		job_title TEXT,
		employer TEXT,
		email TEXT,
		program TEXT,
		expertise TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lecturers_name ON lecturers(name);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create lecturers table: %w", err)
	}

	return nil
}

func createProgramsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		level TEXT CHECK(level IN ('Bachelor', 'Master')) NOT NULL,
		duration_years INTEGER NOT NULL,
		description TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_programs_level ON programs(level);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create programs table: %w", err)
	}

	return nil
}

// createEnrollmentsTable stores which courses each student has taken or is
// taking. Completed rows are excluded from schedule generation; enrolled rows
// participate in conflict checks.
func createEnrollmentsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS enrollments (
		student_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		status TEXT CHECK(status IN ('enrolled', 'completed', 'dropped')) NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (student_id, course_id),
		FOREIGN KEY (course_id) REFERENCES courses(id)
	);
	CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);
	CREATE INDEX IF NOT EXISTS idx_enrollments_status ON enrollments(status);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create enrollments table: %w", err)
	}

	return nil
}
