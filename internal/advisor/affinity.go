package advisor

import (
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// BuildLecturerMap assigns each course its best-matched lecturer by a greedy
// keyword-overlap score: course skills against lecturer expertise (+3 per
// skill), course-name words against the job title (+2), and course category
// against expertise or title (+2). Ties keep the first lecturer in load
// order; that order is a real contract for any surface showing "the"
// instructor. The map is built once at startup and read-only afterwards.
func BuildLecturerMap(cat *catalog.Catalog) map[string]catalog.Lecturer {
	mapping := make(map[string]catalog.Lecturer)
	if cat == nil || len(cat.Lecturers) == 0 {
		return mapping
	}

	for _, course := range cat.Courses {
		category := strings.ToLower(course.Category)
		nameWords := strings.Fields(strings.ToLower(course.Name))

		var best catalog.Lecturer
		bestScore := 0

		for _, lecturer := range cat.Lecturers {
			expertise := strings.ToLower(strings.Join(lecturer.Expertise, ","))
			title := strings.ToLower(lecturer.JobTitle)

			score := 0
			for _, skill := range course.Skills {
				s := strings.ToLower(strings.TrimSpace(skill))
				if s != "" && strings.Contains(expertise, s) {
					score += 3
				}
			}
			for _, w := range nameWords {
				if strings.Contains(title, w) {
					score += 2
					break
				}
			}
			if category != "" && (strings.Contains(expertise, category) || strings.Contains(title, category)) {
				score += 2
			}

			if score > bestScore {
				bestScore = score
				best = lecturer
			}
		}

		if bestScore > 0 {
			mapping[course.ID] = best
		}
	}

	return mapping
}
