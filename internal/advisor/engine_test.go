package advisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/advisor-go/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Courses: []catalog.Course{
			{
				ID:          "DS101",
				Name:        "Machine Learning Foundations",
				Description: "Supervised and unsupervised machine learning with python",
				Category:    "Data Science",
				Level:       catalog.Bachelor,
				Difficulty:  catalog.Intermediate,
				Type:        catalog.Mandatory,
				Credits:     6,
				Skills:      []string{"python", "statistics", "machine learning"},
				TimeSlot:    catalog.TimeSlots[0],
			},
			{
				ID:          "DS102",
				Name:        "Data Visualization",
				Description: "Communicating insight from data",
				Category:    "Data Science",
				Level:       catalog.Bachelor,
				Difficulty:  catalog.Beginner,
				Type:        catalog.Secondary,
				Credits:     4,
				Skills:      []string{"python", "visualization"},
				TimeSlot:    catalog.TimeSlots[1],
			},
			{
				ID:          "DS103",
				Name:        "Applied Statistics",
				Description: "Statistics for data analysis",
				Category:    "Data Science",
				Level:       catalog.Bachelor,
				Difficulty:  catalog.Beginner,
				Type:        catalog.Secondary,
				Credits:     4,
				Skills:      []string{"statistics"},
				TimeSlot:    catalog.TimeSlots[2],
			},
			{
				ID:          "MK201",
				Name:        "Digital Marketing Basics",
				Description: "Social media and content marketing",
				Category:    "Marketing",
				Level:       catalog.Bachelor,
				Difficulty:  catalog.Beginner,
				Type:        catalog.Audit,
				Credits:     0,
				Skills:      []string{"analytics", "content"},
				TimeSlot:    catalog.TimeSlots[0],
			},
		},
		Lecturers: []catalog.Lecturer{
			{
				ID: "L1", Name: "Maria Santos", JobTitle: "Machine Learning Engineer",
				Employer: "Nordic AI", Email: "maria.santos@nordicai.example", Program: "Data Science",
				Expertise: []string{"machine learning", "python", "statistics"},
			},
			{
				ID: "L2", Name: "Tom Becker", JobTitle: "Marketing Lead",
				Employer: "Brandhaus", Program: "Marketing",
				Expertise: []string{"marketing", "analytics"},
			},
		},
		Programs: []catalog.Program{
			{ID: "BDS", Name: "Data Science", Level: catalog.Bachelor, DurationYears: 3},
			{ID: "MDS", Name: "Data Science", Level: catalog.Master, DurationYears: 1},
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testCatalog(), nil, WithPhraseSeed(1))
}

func TestRespondGreeting(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{Major: "Data Science"}, "hello", 5)

	assert.Equal(t, IntentGreeting, resp.Intent)
	assert.Contains(t, resp.Narrative, "Data Science")
	assert.Empty(t, resp.Courses)
}

func TestRespondShortTopicQuery(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{Major: "Data Science"}, "ml", 5)

	assert.Equal(t, IntentGeneralInfo, resp.Intent)
	assert.True(t, strings.HasPrefix(resp.Narrative, "**Courses for: Machine Learning**"),
		"narrative should open with the expanded topic heading, got %q", resp.Narrative[:60])
	require.NotEmpty(t, resp.Courses)
	assert.Equal(t, "DS101", resp.Courses[0].ID)
}

func TestRespondRecommendation(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{
		Major:           "Data Science",
		Program:         catalog.Bachelor,
		ExperienceLevel: catalog.Intermediate,
	}, "which electives next", 5)

	assert.Equal(t, IntentCourseRecommendation, resp.Intent)
	require.GreaterOrEqual(t, len(resp.Courses), 3)
	// The mandatory in-major course carries the highest score.
	assert.Equal(t, "DS101", resp.Courses[0].ID)

	exp, ok := resp.Explanations["DS101"]
	require.True(t, ok)
	assert.NotEmpty(t, exp)
	assert.Contains(t, strings.Join(exp, "\n"), "Instructor")
}

func TestRespondAttendancePolicy(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{}, "what if i skip class", 5)

	assert.Equal(t, IntentAttendancePolicy, resp.Intent)
	assert.Contains(t, resp.Narrative, "3 or more absences")
	assert.Contains(t, resp.Narrative, "10 minutes late")
}

func TestRespondProgramDuration(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{Major: "Data Science"}, "how long is bachelor", 5)

	assert.Equal(t, IntentProgramDuration, resp.Intent)
	assert.Contains(t, resp.Narrative, "3 years")
	assert.Contains(t, resp.Narrative, "1 year")
	assert.Contains(t, resp.Narrative, "Each module = 3 weeks")
}

func TestRespondLecturerByName(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{}, "tell me about instructor maria santos", 5)

	assert.Equal(t, IntentLecturerInfo, resp.Intent)
	assert.Contains(t, resp.Narrative, "Maria Santos")
	assert.Contains(t, resp.Narrative, "Machine Learning Engineer")
	assert.Contains(t, resp.Narrative, "Nordic AI")
	assert.Contains(t, resp.Narrative, "maria.santos@nordicai.example")
	assert.Contains(t, resp.Narrative, "Data Science")
}

func TestRespondPrepBeatsLecturer(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{}, "what should i prepare for before professor maria's class", 5)

	assert.Equal(t, IntentSpecificClassPrep, resp.Intent)
}

func TestRespondUnknownFallback(t *testing.T) {
	e := testEngine(t)

	resp := e.Respond(catalog.StudentProfile{Major: "Data Science"}, "learn basket weaving", 5)

	assert.Equal(t, IntentUnknown, resp.Intent)
	assert.Contains(t, resp.Narrative, "I'm really good at helping with")
	assert.NotEmpty(t, resp.Narrative)
}

func TestRespondUnknownWithRelatedSearch(t *testing.T) {
	cat := testCatalog()
	e := New(cat, nil, WithPhraseSeed(1), WithRelatedSearch(func(query string, n int) []catalog.Course {
		return []catalog.Course{cat.Courses[0]}
	}))

	resp := e.Respond(catalog.StudentProfile{Major: "Data Science"}, "learn basket weaving", 5)

	assert.Equal(t, IntentUnknown, resp.Intent)
	assert.Contains(t, resp.Narrative, "Courses you might have meant")
	assert.Contains(t, resp.Narrative, cat.Courses[0].Name)
	require.Len(t, resp.Courses, 1)
}

func TestRespondEmptyCatalog(t *testing.T) {
	e := New(&catalog.Catalog{}, nil, WithPhraseSeed(1))

	for _, q := range []string{"", "ml", "who teaches python", "what should i take"} {
		resp := e.Respond(catalog.StudentProfile{}, q, 5)
		assert.NotEmpty(t, resp.Narrative, "query %q must produce a narrative on an empty catalog", q)
		assert.NotNil(t, resp.Explanations)
	}
}

func TestBuildLecturerMap(t *testing.T) {
	cat := testCatalog()
	mapping := BuildLecturerMap(cat)

	require.Contains(t, mapping, "DS101")
	assert.Equal(t, "Maria Santos", mapping["DS101"].Name)

	require.Contains(t, mapping, "MK201")
	assert.Equal(t, "Tom Becker", mapping["MK201"].Name)
}
