package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/advisor-go/internal/catalog"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
}

func scheduleCatalog() *catalog.Catalog {
	cat := &catalog.Catalog{}
	for i := 1; i <= 8; i++ {
		cat.Courses = append(cat.Courses, catalog.Course{
			ID:       fmt.Sprintf("CS%d", i),
			Name:     fmt.Sprintf("Systems %d", i),
			Category: "Computer Science",
			Level:    catalog.Bachelor,
			Credits:  6,
		})
	}
	for i := 1; i <= 10; i++ {
		cat.Courses = append(cat.Courses, catalog.Course{
			ID:       fmt.Sprintf("MK%d", i),
			Name:     fmt.Sprintf("Marketing %d", i),
			Category: "Marketing",
			Level:    catalog.Bachelor,
			Credits:  4,
		})
	}
	cat.Courses = append(cat.Courses,
		catalog.Course{ID: "CAP1", Name: "Capstone Project", Category: "Computer Science", Level: catalog.Bachelor},
		catalog.Course{ID: "MS1", Name: "Advanced Research", Category: "Computer Science", Level: catalog.Master},
	)
	return cat
}

func TestGenerateDeterministic(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{Major: "Computer Science", Program: catalog.Bachelor}

	first := s.Generate(profile, 4)
	second := s.Generate(profile, 4)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, len(first[i].Courses), len(second[i].Courses), "module %d", i+1)
		for j := range first[i].Courses {
			assert.Equal(t, first[i].Courses[j].ID, second[i].Courses[j].ID)
			assert.Equal(t, first[i].Courses[j].TimeSlot, second[i].Courses[j].TimeSlot)
		}
	}
}

func TestGenerateStructure(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{Major: "Computer Science", Program: catalog.Bachelor}

	modules := s.Generate(profile, 4)
	require.NotEmpty(t, modules)

	seen := make(map[string]bool)
	for _, m := range modules {
		assert.Equal(t, m.Start.AddDate(0, 0, 7*ModuleWeeks), m.End)

		mandatoryCount := 0
		for _, c := range m.Courses {
			assert.False(t, seen[c.ID], "course %s appears in two modules", c.ID)
			seen[c.ID] = true
			assert.Contains(t, catalog.TimeSlots[:], c.TimeSlot)
			if c.Type == catalog.Mandatory {
				mandatoryCount++
			}
		}
		assert.LessOrEqual(t, mandatoryCount, 1, "at most one mandatory course per module")
	}

	// Capstone and wrong-level courses never appear.
	assert.False(t, seen["CAP1"])
	assert.False(t, seen["MS1"])
}

func TestGenerateYearBoundaries(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{Major: "Computer Science", Program: catalog.Bachelor}

	modules := s.Generate(profile, 5)
	require.GreaterOrEqual(t, len(modules), 4)

	base := fixedClock()
	assert.Equal(t, base, modules[0].Start)
	assert.Equal(t, base.AddDate(0, 0, 7*3), modules[1].Start)
	assert.Equal(t, base.AddDate(0, 0, 7*6), modules[2].Start)
	// Year 2 starts 52 weeks in.
	assert.Equal(t, base.AddDate(0, 0, 7*52), modules[3].Start)
	assert.Contains(t, modules[3].Name, "Year 2")
}

func TestModuleDescriptionsPerModule(t *testing.T) {
	major := "Computer Science"

	assert.Equal(t, "Foundation courses for Computer Science", moduleDescription(1, major))
	assert.Equal(t, "Core Computer Science development", moduleDescription(2, major))
	assert.Equal(t, "Computer Science specialization and exploration", moduleDescription(3, major))
	assert.Equal(t, "Year 2: Advanced Computer Science concepts", moduleDescription(4, major))
	assert.Equal(t, "Year 2: Computer Science specialization", moduleDescription(5, major))
	assert.Equal(t, "Year 2: Capstone preparation", moduleDescription(6, major))
	assert.Equal(t, "Year 3: Advanced specialization", moduleDescription(7, major))

	// Year-two modules each get their own text.
	seen := map[string]bool{}
	for num := 4; num <= 6; num++ {
		desc := moduleDescription(num, major)
		assert.False(t, seen[desc], "module %d reuses description %q", num, desc)
		seen[desc] = true
	}
}

func TestGenerateSkipsCompleted(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{
		Major:     "Computer Science",
		Program:   catalog.Bachelor,
		Completed: []string{"CS1", "CS2", "CS3"},
	}

	for _, m := range s.Generate(profile, 4) {
		for _, c := range m.Courses {
			assert.NotContains(t, profile.Completed, c.ID)
		}
	}
}

func TestGenerateUnknownMajorFallsBack(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{Major: "Astrobiology", Program: catalog.Bachelor}

	modules := s.Generate(profile, 4)
	require.NotEmpty(t, modules, "unmatched major should fall back to the whole level pool")
}

func TestGenerateEmptyCatalog(t *testing.T) {
	s := NewSynthesizer(&catalog.Catalog{}, fixedClock)

	modules := s.Generate(catalog.StudentProfile{Major: "Computer Science"}, 4)
	assert.Empty(t, modules)
}

func TestGenerateDefaultLimit(t *testing.T) {
	s := NewSynthesizer(scheduleCatalog(), fixedClock)
	profile := catalog.StudentProfile{Major: "Computer Science", Program: catalog.Bachelor}

	modules := s.Generate(profile, 0)
	assert.LessOrEqual(t, len(modules), DefaultModuleLimit)
}
