package schedule

import (
	"fmt"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// Conflict is one pair of courses sharing a time slot. Slots come from three
// fixed non-overlapping windows, so exact label equality is equivalent to
// interval overlap.
type Conflict struct {
	CourseA  string
	CourseB  string
	TimeSlot string
}

// CheckConflict tests a candidate course against an enrolled set and returns
// the names of enrolled courses occupying the same slot. Courses without a
// slot never conflict.
func CheckConflict(enrolled []catalog.Course, candidate catalog.Course) (bool, []string) {
	if len(enrolled) == 0 || candidate.TimeSlot == "" {
		return false, nil
	}

	var conflicting []string
	for _, c := range enrolled {
		if c.TimeSlot != "" && c.TimeSlot == candidate.TimeSlot {
			conflicting = append(conflicting, c.Name)
		}
	}
	return len(conflicting) > 0, conflicting
}

// CheckConflicts scans a course list and emits every pair sharing a slot.
func CheckConflicts(courses []catalog.Course) []Conflict {
	groups := make(map[string][]string)
	var order []string
	for _, c := range courses {
		if c.TimeSlot == "" {
			continue
		}
		if _, seen := groups[c.TimeSlot]; !seen {
			order = append(order, c.TimeSlot)
		}
		groups[c.TimeSlot] = append(groups[c.TimeSlot], c.Name)
	}

	var conflicts []Conflict
	for _, slot := range order {
		names := groups[slot]
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				conflicts = append(conflicts, Conflict{CourseA: names[i], CourseB: names[j], TimeSlot: slot})
			}
		}
	}
	return conflicts
}

// ModuleConflicts validates a synthesized module; callers must run this on
// every module before surfacing it, since round-robin slot assignment can
// repeat slots once a module holds more than three courses.
func ModuleConflicts(m Module) []Conflict {
	courses := make([]catalog.Course, 0, len(m.Courses))
	for _, sc := range m.Courses {
		courses = append(courses, sc.Course)
	}
	return CheckConflicts(courses)
}

// AlternativeSlots returns the fixed daily windows minus the excluded ones.
func AlternativeSlots(excluded []string) []string {
	out := make([]string, 0, len(catalog.TimeSlots))
	for _, slot := range catalog.TimeSlots {
		skip := false
		for _, ex := range excluded {
			if slot == ex {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, slot)
		}
	}
	return out
}

// ConflictWarning renders a user-facing message for a rejected enrollment.
func ConflictWarning(conflicting []string, newCourse string) string {
	if len(conflicting) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("**TIMETABLE CONFLICT WARNING**\n\n")
	fmt.Fprintf(&b, "You cannot enroll in **%s** because it conflicts with:\n\n", newCourse)
	for _, name := range conflicting {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	b.WriteString("\n**Important:** Students cannot attend two courses scheduled at the same time.\n")
	b.WriteString("**Solution:** Choose courses with different time slots (Morning/Afternoon/Evening).\n")
	return b.String()
}
