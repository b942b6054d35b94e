package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// EnrollmentRecord is one row of an enrollments CSV file.
type EnrollmentRecord struct {
	StudentID string
	CourseID  string
	Status    string
	Grade     float64
}

// csvTable reads all rows of a CSV file and maps columns by header name.
// Header matching is case-insensitive and ignores surrounding whitespace.
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

func readCSVTable(r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Validated per row against the header

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return &csvTable{columns: columns, rows: records[1:]}, nil
}

// get returns the named column of a row, or "" when absent.
func (t *csvTable) get(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *csvTable) getInt(row []string, column string) int {
	v, err := strconv.Atoi(t.get(row, column))
	if err != nil {
		return 0
	}
	return v
}

func (t *csvTable) getFloat(row []string, column string) float64 {
	v, err := strconv.ParseFloat(t.get(row, column), 64)
	if err != nil {
		return 0
	}
	return v
}

// getList splits a |-separated column into trimmed values.
func (t *csvTable) getList(row []string, column string) []string {
	raw := t.get(row, column)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseCoursesCSV reads courses from a CSV stream. Expected columns:
// id, name, description, category, major, level, difficulty, type,
// credits, skills, time_slot, lecturer_id. Rows without an id or name
// are skipped and counted in the returned skip total.
func ParseCoursesCSV(r io.Reader) ([]catalog.Course, int, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	courses := make([]catalog.Course, 0, len(table.rows))
	for _, row := range table.rows {
		c := catalog.Course{
			ID:          table.get(row, "id"),
			Name:        table.get(row, "name"),
			Description: table.get(row, "description"),
			Category:    table.get(row, "category"),
			Major:       table.get(row, "major"),
			Level:       table.get(row, "level"),
			Difficulty:  table.get(row, "difficulty"),
			Type:        catalog.CourseType(strings.ToLower(table.get(row, "type"))),
			Credits:     table.getInt(row, "credits"),
			Skills:      table.getList(row, "skills"),
			TimeSlot:    table.get(row, "time_slot"),
			LecturerID:  table.get(row, "lecturer_id"),
		}
		if c.ID == "" || c.Name == "" {
			skipped++
			continue
		}
		courses = append(courses, c)
	}

	return courses, skipped, nil
}

// ParseLecturersCSV reads lecturers from a CSV stream. Expected columns:
// id, name, job_title, employer, email, program, expertise.
func ParseLecturersCSV(r io.Reader) ([]catalog.Lecturer, int, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	lecturers := make([]catalog.Lecturer, 0, len(table.rows))
	for _, row := range table.rows {
		l := catalog.Lecturer{
			ID:        table.get(row, "id"),
			Name:      table.get(row, "name"),
			JobTitle:  table.get(row, "job_title"),
			Employer:  table.get(row, "employer"),
			Email:     table.get(row, "email"),
			Program:   table.get(row, "program"),
			Expertise: table.getList(row, "expertise"),
		}
		if l.ID == "" || l.Name == "" {
			skipped++
			continue
		}
		lecturers = append(lecturers, l)
	}

	return lecturers, skipped, nil
}

// ParseProgramsCSV reads degree programs from a CSV stream. Expected
// columns: id, name, level, duration_years, description.
func ParseProgramsCSV(r io.Reader) ([]catalog.Program, int, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	programs := make([]catalog.Program, 0, len(table.rows))
	for _, row := range table.rows {
		p := catalog.Program{
			ID:            table.get(row, "id"),
			Name:          table.get(row, "name"),
			Level:         table.get(row, "level"),
			DurationYears: table.getInt(row, "duration_years"),
			Description:   table.get(row, "description"),
		}
		if p.ID == "" || p.Name == "" {
			skipped++
			continue
		}
		programs = append(programs, p)
	}

	return programs, skipped, nil
}

// ParseEnrollmentsCSV reads enrollment records from a CSV stream.
// Expected columns: student_id, course_id, status, grade.
func ParseEnrollmentsCSV(r io.Reader) ([]EnrollmentRecord, int, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	records := make([]EnrollmentRecord, 0, len(table.rows))
	for _, row := range table.rows {
		rec := EnrollmentRecord{
			StudentID: table.get(row, "student_id"),
			CourseID:  table.get(row, "course_id"),
			Status:    strings.ToLower(table.get(row, "status")),
			Grade:     table.getFloat(row, "grade"),
		}
		if rec.StudentID == "" || rec.CourseID == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}
