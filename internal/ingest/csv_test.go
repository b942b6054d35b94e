package ingest

import (
	"strings"
	"testing"
)

func TestParseCoursesCSV(t *testing.T) {
	t.Parallel()

	input := `id,name,description,category,major,level,difficulty,type,credits,skills,time_slot,lecturer_id
DS101,Machine Learning Fundamentals,Intro to ML,Machine Learning,Data Science,Bachelor,Beginner,mandatory,5,python|statistics,9:00 AM - 12:20 PM,L1
DS201,Deep Learning,Neural networks,Machine Learning,Data Science,Master,Advanced,secondary,6,python|tensorflow,,L2
,Missing ID,x,x,x,x,x,audit,3,,,
`

	courses, skipped, err := ParseCoursesCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCoursesCSV() error = %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}

	got := courses[0]
	if got.ID != "DS101" || got.Name != "Machine Learning Fundamentals" {
		t.Errorf("unexpected first course: %+v", got)
	}
	if got.Credits != 5 {
		t.Errorf("Credits = %d, want 5", got.Credits)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "python" || got.Skills[1] != "statistics" {
		t.Errorf("Skills = %v, want [python statistics]", got.Skills)
	}
	if got.TimeSlot != "9:00 AM - 12:20 PM" {
		t.Errorf("TimeSlot = %q", got.TimeSlot)
	}
	if courses[1].TimeSlot != "" {
		t.Errorf("second course should have no time slot, got %q", courses[1].TimeSlot)
	}
}

func TestParseCoursesCSV_ColumnOrderIndependent(t *testing.T) {
	t.Parallel()

	input := `name,credits,id
Statistics for Data Science,4,DS110
`

	courses, _, err := ParseCoursesCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCoursesCSV() error = %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("got %d courses, want 1", len(courses))
	}
	if courses[0].ID != "DS110" || courses[0].Credits != 4 {
		t.Errorf("unexpected course: %+v", courses[0])
	}
}

func TestParseCoursesCSV_Empty(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseCoursesCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParseLecturersCSV(t *testing.T) {
	t.Parallel()

	input := `id,name,job_title,employer,email,program,expertise
L1,Dr. Alice Zhang,Professor,DataCraft,alice.zhang@datacraft.example,Data Science,machine learning|statistics
L2,,Lecturer,,,,
`

	lecturers, skipped, err := ParseLecturersCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseLecturersCSV() error = %v", err)
	}
	if len(lecturers) != 1 {
		t.Fatalf("got %d lecturers, want 1", len(lecturers))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if lecturers[0].Name != "Dr. Alice Zhang" {
		t.Errorf("Name = %q", lecturers[0].Name)
	}
	if lecturers[0].Employer != "DataCraft" {
		t.Errorf("Employer = %q, want DataCraft", lecturers[0].Employer)
	}
	if lecturers[0].Email != "alice.zhang@datacraft.example" {
		t.Errorf("Email = %q", lecturers[0].Email)
	}
	if lecturers[0].Program != "Data Science" {
		t.Errorf("Program = %q, want Data Science", lecturers[0].Program)
	}
	if len(lecturers[0].Expertise) != 2 {
		t.Errorf("Expertise = %v, want 2 entries", lecturers[0].Expertise)
	}
}

func TestParseProgramsCSV(t *testing.T) {
	t.Parallel()

	input := `id,name,level,duration_years,description
P1,Data Science,Bachelor,3,Three year program
P2,Data Science,Master,1,One year program
`

	programs, skipped, err := ParseProgramsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseProgramsCSV() error = %v", err)
	}
	if len(programs) != 2 || skipped != 0 {
		t.Fatalf("got %d programs (skipped %d), want 2 (0)", len(programs), skipped)
	}
	if programs[0].DurationYears != 3 || programs[1].DurationYears != 1 {
		t.Errorf("unexpected durations: %+v", programs)
	}
}

func TestParseEnrollmentsCSV(t *testing.T) {
	t.Parallel()

	input := `student_id,course_id,status,grade
S1,DS101,COMPLETED,87.5
S1,DS201,enrolled,0
,DS101,enrolled,0
`

	records, skipped, err := ParseEnrollmentsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEnrollmentsCSV() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if records[0].Status != "completed" {
		t.Errorf("Status = %q, want lowercased", records[0].Status)
	}
	if records[0].Grade != 87.5 {
		t.Errorf("Grade = %v, want 87.5", records[0].Grade)
	}
}

func TestReadCSVTable_MissingColumn(t *testing.T) {
	t.Parallel()

	table, err := readCSVTable(strings.NewReader("id,name\nC1,Course One\n"))
	if err != nil {
		t.Fatalf("readCSVTable() error = %v", err)
	}
	if got := table.get(table.rows[0], "description"); got != "" {
		t.Errorf("missing column = %q, want empty", got)
	}
}
