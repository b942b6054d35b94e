// Package catalog defines the academic domain model: courses, lecturers,
// programs, and student profiles. It is the shared vocabulary between the
// storage layer, the advisor engine, and the schedule synthesizer.
package catalog

import "strings"

// CourseType describes how a course counts toward a degree.
type CourseType string

const (
	// Mandatory courses are required for the degree, graded, with strict attendance.
	Mandatory CourseType = "mandatory"
	// Secondary courses are electives, graded, with strict attendance.
	Secondary CourseType = "secondary"
	// Audit courses are optional, ungraded, with flexible attendance.
	Audit CourseType = "audit"
)

// Experience levels for students and course difficulty.
const (
	Beginner     = "Beginner"
	Intermediate = "Intermediate"
	Advanced     = "Advanced"
)

// Program levels.
const (
	Bachelor = "Bachelor"
	Master   = "Master"
)

// TimeSlots are the three fixed daily teaching blocks. Every scheduled
// class occupies exactly one slot; conflict detection compares slot labels.
var TimeSlots = [3]string{
	"9:00 AM - 12:20 PM",
	"1:00 PM - 4:20 PM",
	"5:00 PM - 8:20 PM",
}

// Course is a single course offering.
type Course struct {
	ID          string
	Name        string
	Description string
	Category    string // topical category, e.g. "Machine Learning"
	Major       string // owning major, e.g. "Computer Science"
	Level       string // Bachelor or Master
	Difficulty  string // Beginner, Intermediate, or Advanced
	Type        CourseType
	Credits     int
	Skills      []string // skills taught, used for lecturer affinity
	TimeSlot    string   // one of TimeSlots once scheduled, may be empty
	LecturerID  string
}

// Lecturer is a faculty member. Most are industry practitioners, so the
// employer and job title describe their day job rather than an academic
// appointment.
type Lecturer struct {
	ID        string
	Name      string
	JobTitle  string
	Employer  string
	Email     string
	Program   string // program affiliation, e.g. "Data Science"
	Expertise []string
}

// Program is a degree program.
type Program struct {
	ID            string
	Name          string
	Level         string // Bachelor or Master
	DurationYears int
	Description   string
}

// StudentProfile carries everything the advisor knows about a student.
// All fields are optional; scoring treats missing values as neutral.
type StudentProfile struct {
	StudentID       string
	Major           string
	Program         string // Bachelor or Master
	CareerGoal      string
	ExperienceLevel string // Beginner, Intermediate, or Advanced
	Completed       []string // ids of completed courses
	Enrolled        []string // ids of currently enrolled courses
}

// Catalog is the in-memory course corpus the advisor works against.
type Catalog struct {
	Courses   []Course
	Lecturers []Lecturer
	Programs  []Program
}

// CourseByID returns the course with the given id.
func (c *Catalog) CourseByID(id string) (Course, bool) {
	for _, course := range c.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return Course{}, false
}

// LecturerByID returns the lecturer with the given id.
func (c *Catalog) LecturerByID(id string) (Lecturer, bool) {
	for _, l := range c.Lecturers {
		if l.ID == id {
			return l, true
		}
	}
	return Lecturer{}, false
}

// FindLecturerByName returns the first lecturer whose name contains the
// given fragment, case-insensitively.
func (c *Catalog) FindLecturerByName(fragment string) (Lecturer, bool) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return Lecturer{}, false
	}
	for _, l := range c.Lecturers {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			return l, true
		}
	}
	return Lecturer{}, false
}

// IsEmpty reports whether the catalog has no courses.
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Courses) == 0
}

// HasCompleted reports whether the profile finished the given course.
func (p *StudentProfile) HasCompleted(courseID string) bool {
	for _, id := range p.Completed {
		if id == courseID {
			return true
		}
	}
	return false
}

// IsEnrolled reports whether the profile is currently taking the course.
func (p *StudentProfile) IsEnrolled(courseID string) bool {
	for _, id := range p.Enrolled {
		if id == courseID {
			return true
		}
	}
	return false
}
