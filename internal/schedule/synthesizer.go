// Package schedule partitions catalog courses into consecutive 3-week
// modules and detects timetable conflicts between them.
package schedule

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// ModuleWeeks is the fixed length of every academic module.
const ModuleWeeks = 3

// DefaultModuleLimit caps how many modules a single call plans ahead.
const DefaultModuleLimit = 4

// capstoneKeywords mark courses reserved for the final year; they are kept
// out of early modules.
var capstoneKeywords = []string{
	"capstone", "seminar", "thesis", "final project", "graduation project",
}

// ScheduledCourse is a catalog course pinned to a daily time slot within a
// module. The Type field reflects the synthesizer's labeling, which may
// differ from the canonical record.
type ScheduledCourse struct {
	catalog.Course
	Slot int // 1-based index into catalog.TimeSlots
}

// Module is one planned 3-week term.
type Module struct {
	Name         string
	Number       int
	Courses      []ScheduledCourse
	Start        time.Time
	End          time.Time
	TotalCredits int
	Description  string
}

// Synthesizer builds module plans from an immutable catalog. The clock is
// injectable so tests can pin start dates.
type Synthesizer struct {
	cat *catalog.Catalog
	now func() time.Time
}

// NewSynthesizer returns a Synthesizer over the catalog. A nil clock
// defaults to time.Now.
func NewSynthesizer(cat *catalog.Catalog, now func() time.Time) *Synthesizer {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{cat: cat, now: now}
}

// majorSeed derives a stable shuffle seed from the major name, so the same
// student sees the same plan across calls while different majors see
// different orderings.
func majorSeed(major string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(major)))
	return int64(h.Sum32() % 100)
}

func isCapstone(name string) bool {
	n := strings.ToLower(name)
	for _, kw := range capstoneKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}

// Generate plans up to limit modules for the student. Completed courses are
// excluded; enrolled ones deliberately are not, so callers can still show
// them flagged. Never fails: an empty catalog yields an empty plan.
func (s *Synthesizer) Generate(profile catalog.StudentProfile, limit int) []Module {
	if limit <= 0 {
		limit = DefaultModuleLimit
	}
	if s.cat.IsEmpty() {
		return nil
	}

	level := catalog.Master
	if strings.Contains(strings.ToLower(profile.Program), "bachelor") || profile.Program == "" {
		level = catalog.Bachelor
	}

	var pool []catalog.Course
	for _, c := range s.cat.Courses {
		if c.Level != "" && !strings.EqualFold(c.Level, level) {
			continue
		}
		if isCapstone(c.Name) {
			continue
		}
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		pool = s.cat.Courses
	}

	completed := make(map[string]bool, len(profile.Completed))
	for _, id := range profile.Completed {
		completed[id] = true
	}

	major := strings.ToLower(profile.Major)
	var primary, complementary []catalog.Course
	for _, c := range pool {
		if completed[c.ID] {
			continue
		}
		if major != "" && strings.Contains(strings.ToLower(c.Category), major) {
			primary = append(primary, c)
		} else {
			complementary = append(complementary, c)
		}
	}
	if len(primary) == 0 {
		primary = complementary
		complementary = nil
	}

	seed := majorSeed(profile.Major)
	shuffle(primary, seed)
	shuffle(complementary, seed+1)

	// Primary-pool courses become mandatory; complementary ones are
	// secondary, with the tail 30% relabeled audit.
	var mandatory, secondary, audit []catalog.Course
	for i := range primary {
		primary[i].Type = catalog.Mandatory
	}
	mandatory = capCourses(primary, 10)

	auditCount := int(float64(len(complementary)) * 0.3)
	cut := len(complementary) - auditCount
	for i := range complementary {
		if i < cut {
			complementary[i].Type = catalog.Secondary
		} else {
			complementary[i].Type = catalog.Audit
		}
	}
	secondary = capCourses(complementary[:cut], 10)
	audit = capCourses(complementary[cut:], 6)

	start := s.now()
	var modules []Module
	secondaryPos := 0

	for num := 1; num <= limit; num++ {
		var picked []catalog.Course

		if num-1 < len(mandatory) {
			picked = append(picked, mandatory[num-1])
		}

		width := 4
		if num >= 4 {
			width = 3
		}
		take := min(width, len(secondary)-secondaryPos)
		if take > 0 {
			picked = append(picked, secondary[secondaryPos:secondaryPos+take]...)
			secondaryPos += take
		}

		if num-1 < len(audit) {
			picked = append(picked, audit[num-1])
		}

		if len(picked) == 0 {
			break
		}

		modules = append(modules, buildModule(num, picked, start, profile.Major))
	}

	return modules
}

func shuffle(courses []catalog.Course, seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(courses), func(i, j int) {
		courses[i], courses[j] = courses[j], courses[i]
	})
}

func capCourses(courses []catalog.Course, n int) []catalog.Course {
	if len(courses) <= n {
		return courses
	}
	return courses[:n]
}

// moduleOffsetWeeks places modules 1-3 in year one, 4-6 after the year-two
// boundary at 52 weeks, and 7+ after the year-three boundary at 104.
func moduleOffsetWeeks(num int) int {
	switch {
	case num >= 7:
		return 104 + ModuleWeeks*(num-7)
	case num >= 4:
		return 52 + ModuleWeeks*(num-4)
	default:
		return ModuleWeeks * (num - 1)
	}
}

func moduleName(num int) string {
	switch {
	case num >= 7:
		return fmt.Sprintf("Module %d (Year 3)", num)
	case num >= 4:
		return fmt.Sprintf("Module %d (Year 2)", num)
	default:
		return fmt.Sprintf("Module %d", num)
	}
}

func moduleDescription(num int, major string) string {
	switch num {
	case 1:
		return fmt.Sprintf("Foundation courses for %s", major)
	case 2:
		return fmt.Sprintf("Core %s development", major)
	case 3:
		return fmt.Sprintf("%s specialization and exploration", major)
	case 4:
		return fmt.Sprintf("Year 2: Advanced %s concepts", major)
	case 5:
		return fmt.Sprintf("Year 2: %s specialization", major)
	case 6:
		return "Year 2: Capstone preparation"
	default:
		return "Year 3: Advanced specialization"
	}
}

func buildModule(num int, courses []catalog.Course, base time.Time, major string) Module {
	start := base.AddDate(0, 0, 7*moduleOffsetWeeks(num))
	end := start.AddDate(0, 0, 7*ModuleWeeks)

	scheduled := make([]ScheduledCourse, 0, len(courses))
	credits := 0
	for i, c := range courses {
		slot := i % len(catalog.TimeSlots)
		c.TimeSlot = catalog.TimeSlots[slot]
		scheduled = append(scheduled, ScheduledCourse{Course: c, Slot: slot + 1})
		credits += c.Credits
	}

	return Module{
		Name:         moduleName(num),
		Number:       num,
		Courses:      scheduled,
		Start:        start,
		End:          end,
		TotalCredits: credits,
		Description:  moduleDescription(num, major),
	}
}
