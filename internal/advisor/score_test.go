package advisor

import (
	"reflect"
	"testing"

	"github.com/coursewise/advisor-go/internal/catalog"
)

func TestScoreTypePriority(t *testing.T) {
	t.Parallel()

	base := catalog.Course{
		ID:          "C1",
		Name:        "Algorithms",
		Description: "Core algorithms course",
		Category:    "Computer Science",
		Difficulty:  catalog.Intermediate,
	}
	profile := catalog.StudentProfile{Major: "Computer Science", ExperienceLevel: catalog.Intermediate}

	mandatory := base
	mandatory.Type = catalog.Mandatory
	secondary := base
	secondary.Type = catalog.Secondary
	audit := base
	audit.Type = catalog.Audit

	sm := Score(mandatory, profile, "")
	ss := Score(secondary, profile, "")
	sa := Score(audit, profile, "")

	if !(sm > ss && ss > sa) {
		t.Errorf("want mandatory > secondary > audit, got %d, %d, %d", sm, ss, sa)
	}
}

func TestScoreMajorDominates(t *testing.T) {
	t.Parallel()

	inMajor := catalog.Course{ID: "A", Category: "Data Science", Type: catalog.Secondary}
	offMajor := catalog.Course{ID: "B", Category: "Marketing", Type: catalog.Secondary}
	profile := catalog.StudentProfile{Major: "Data Science"}

	if Score(inMajor, profile, "") <= Score(offMajor, profile, "") {
		t.Error("course in declared major should outscore one outside it")
	}
}

func TestScoreQueryMatching(t *testing.T) {
	t.Parallel()

	course := catalog.Course{
		ID:          "ML1",
		Name:        "Machine Learning Foundations",
		Description: "Supervised learning with python",
		Type:        catalog.Secondary,
	}
	profile := catalog.StudentProfile{}

	without := Score(course, profile, "")
	with := Score(course, profile, "machine learning")

	// Exact substring +8, plus +2 each for "machine" and "learning".
	if with-without != 12 {
		t.Errorf("query match bonus = %d, want 12", with-without)
	}
}

func TestScoreCareerKeywords(t *testing.T) {
	t.Parallel()

	course := catalog.Course{
		ID:          "DS1",
		Description: "statistics and data analytics with python",
		Type:        catalog.Audit,
	}

	plain := Score(course, catalog.StudentProfile{}, "")
	scored := Score(course, catalog.StudentProfile{CareerGoal: "Data Scientist"}, "")

	if scored <= plain {
		t.Error("career-aligned course should score higher with a matching goal")
	}
}

func TestCareerKeywordsFallback(t *testing.T) {
	t.Parallel()

	got := CareerKeywords("astronaut")
	want := []string{"technology", "programming", "development"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CareerKeywords fallback = %v, want %v", got, want)
	}
}

func TestRankCoursesStable(t *testing.T) {
	t.Parallel()

	courses := []catalog.Course{
		{ID: "A", Category: "Design", Type: catalog.Secondary},
		{ID: "B", Category: "Design", Type: catalog.Secondary},
		{ID: "C", Category: "Design", Type: catalog.Mandatory},
	}
	profile := catalog.StudentProfile{Major: "Design"}

	first := RankCourses(courses, profile, "")
	second := RankCourses(courses, profile, "")

	if !reflect.DeepEqual(first, second) {
		t.Error("ranking the same input twice must yield identical order")
	}
	if first[0].ID != "C" {
		t.Errorf("mandatory course should rank first, got %s", first[0].ID)
	}
	// A and B tie; corpus order must be preserved.
	if first[1].ID != "A" || first[2].ID != "B" {
		t.Errorf("tied courses reordered: got %s, %s", first[1].ID, first[2].ID)
	}
}
