package advisor

import (
	"sort"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// careerKeywordMap maps recognized career goals to the vocabulary used when
// scoring career alignment. Goals outside the table fall back to a generic
// technology keyword set.
var careerKeywordMap = []struct {
	goal     string
	keywords []string
}{
	{"software engineer", []string{"programming", "software", "development", "code", "algorithms", "web", "api", "backend", "frontend"}},
	{"data scientist", []string{"data", "analytics", "machine learning", "statistics", "python", "ai", "deep learning", "visualization"}},
	{"cybersecurity analyst", []string{"security", "network", "encryption", "hacking", "cyber", "forensics", "threat"}},
	{"product manager", []string{"product", "management", "strategy", "business", "agile", "leadership"}},
	{"ux designer", []string{"design", "user", "interface", "experience", "visual", "ui", "prototyping", "research"}},
	{"data engineer", []string{"data", "pipeline", "etl", "database", "big data", "spark", "hadoop"}},
	{"web developer", []string{"web", "html", "css", "javascript", "react", "node", "frontend"}},
	{"business analyst", []string{"business", "analytics", "strategy", "analysis", "intelligence"}},
}

var defaultCareerKeywords = []string{"technology", "programming", "development"}

// CareerKeywords returns the scoring vocabulary for a career goal.
func CareerKeywords(careerGoal string) []string {
	goal := strings.ToLower(careerGoal)
	for _, entry := range careerKeywordMap {
		if strings.Contains(goal, entry.goal) {
			return entry.keywords
		}
	}
	return defaultCareerKeywords
}

// Score computes a relevance score for a course against a student profile
// and an optional free-text query. Weights are absolute, not normalized;
// their magnitudes encode the intended priority ordering, with the declared
// major as the strongest single signal.
func Score(course catalog.Course, profile catalog.StudentProfile, query string) int {
	score := 0

	category := strings.ToLower(course.Category)
	if profile.Major != "" && strings.Contains(category, strings.ToLower(profile.Major)) {
		score += 10
	}

	if profile.Program != "" && strings.Contains(strings.ToLower(course.Level), strings.ToLower(profile.Program)) {
		score += 5
	}

	if profile.CareerGoal != "" {
		skills := strings.ToLower(strings.Join(course.Skills, ","))
		desc := strings.ToLower(course.Description)
		for _, kw := range CareerKeywords(profile.CareerGoal) {
			if strings.Contains(skills, kw) || strings.Contains(desc, kw) {
				score += 3
			}
		}
	}

	difficulty := course.Difficulty
	if difficulty == "" {
		difficulty = catalog.Intermediate
	}
	switch profile.ExperienceLevel {
	case catalog.Beginner:
		if difficulty == catalog.Beginner {
			score += 4
		}
	case catalog.Intermediate:
		if difficulty == catalog.Beginner || difficulty == catalog.Intermediate {
			score += 4
		}
	case catalog.Advanced:
		// Advanced students can take any level.
		score += 2
	}

	if query != "" {
		q := strings.ToLower(query)
		text := strings.ToLower(course.Name + " " + course.Description + " " + strings.Join(course.Skills, ","))
		if strings.Contains(text, q) {
			score += 8
		}
		for _, word := range strings.Fields(q) {
			if len(word) > 3 && strings.Contains(text, word) {
				score += 2
			}
		}
	}

	switch course.Type {
	case catalog.Mandatory:
		score += 7
	case catalog.Secondary:
		score += 4
	default:
		score += 2
	}

	return score
}

// RankCourses scores and sorts courses by descending relevance. The sort is
// stable: ties keep corpus iteration order.
func RankCourses(courses []catalog.Course, profile catalog.StudentProfile, query string) []catalog.Course {
	ranked := make([]catalog.Course, len(courses))
	copy(ranked, courses)

	scores := make(map[string]int, len(ranked))
	for _, c := range ranked {
		scores[c.ID] = Score(c, profile, query)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})

	return ranked
}
