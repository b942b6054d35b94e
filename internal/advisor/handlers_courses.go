package advisor

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/coursewise/advisor-go/internal/catalog"
)

var titleCaser = cases.Title(language.English)

// majorVocabulary detects when a query targets a specific major so results
// can be narrowed to that category. Order matters: first hit wins.
var majorVocabulary = []struct {
	name     string
	keywords []string
}{
	{"business", []string{"business", "entrepreneurship", "management", "mba"}},
	{"data science", []string{"data science", "data analytics", "analytics"}},
	{"computer science", []string{"computer science", "computing"}},
	{"cybersecurity", []string{"cybersecurity", "cyber security", "security", "infosec"}},
	{"design", []string{"design", "ux", "ui", "interaction design"}},
	{"marketing", []string{"marketing", "digital marketing", "social media"}},
	{"software development", []string{"software development", "software engineering", "programming"}},
	{"web development", []string{"web development", "web dev", "frontend", "backend", "fullstack"}},
	{"mobile", []string{"mobile", "app development", "android", "ios"}},
}

var gibberishCommonWords = []string{
	"course", "class", "learn", "study", "teach", "help", "show", "find",
	"about", "what", "how", "when", "where", "who",
}

var gibberishKnownTopics = []string{
	"machine learning", "data science", "computer science", "cybersecurity",
	"cyber security", "programming", "web", "development", "python", "java",
	"javascript", "database", "ai", "artificial", "software", "business",
	"design", "marketing", "frontend", "backend", "mobile",
}

// courseText is the haystack used for free-text matching against a course.
func courseText(c catalog.Course) string {
	return strings.ToLower(c.Name + " " + c.Description + " " + strings.Join(c.Skills, ",") + " " + c.Category)
}

func (e *Engine) handleGeneralInfo(query string, p catalog.StudentProfile) Response {
	q := strings.ToLower(strings.TrimSpace(query))

	// Very short queries with no recognizable vocabulary are gibberish.
	if len(q) < 3 {
		return e.handleUnknown(query, p)
	}
	hasCommon := containsAny(q, gibberishCommonWords)
	hasTopic := containsAny(q, gibberishKnownTopics)
	if !hasCommon && !hasTopic && len(strings.Fields(q)) <= 3 {
		return e.handleUnknown(query, p)
	}

	targetMajor := ""
	for _, entry := range majorVocabulary {
		if containsAny(q, entry.keywords) {
			targetMajor = entry.name
			break
		}
	}

	var relevant []catalog.Course
	for _, c := range e.cat.Courses {
		if strings.Contains(courseText(c), q) {
			relevant = append(relevant, c)
		}
	}

	if targetMajor != "" && len(relevant) > 0 {
		var narrowed []catalog.Course
		for _, c := range relevant {
			if strings.Contains(strings.ToLower(c.Category), targetMajor) {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			relevant = narrowed
		}
	}
	relevant = head(relevant, 8)

	if len(relevant) == 0 {
		return e.handleUnknown(query, p)
	}

	var b strings.Builder
	if targetMajor != "" {
		fmt.Fprintf(&b, "**%s Courses:**\n\n", titleCaser.String(targetMajor))
		fmt.Fprintf(&b, "Great choice! Here are the best courses for %s:\n\n", targetMajor)
	} else {
		fmt.Fprintf(&b, "**Courses for: %s**\n\n", titleCaser.String(query))
	}

	explanations := make(map[string][]string, len(relevant))
	for i, c := range relevant {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		if l, ok := e.lecturers[c.ID]; ok {
			fmt.Fprintf(&b, "   Instructor: %s (%s)\n", l.Name, l.JobTitle)
		}
		fmt.Fprintf(&b, "   Level: %s | Schedule: %s\n", orDefault(c.Difficulty, catalog.Intermediate), orDefault(c.TimeSlot, "TBD"))
		fmt.Fprintf(&b, "   %s\n\n", truncate(c.Description, 120))

		explanations[c.ID] = []string{
			fmt.Sprintf("Perfect for %s students", p.Major),
			"Taught by industry expert",
			"Practical, hands-on approach",
		}
	}

	fmt.Fprintf(&b, "\nFor a %s student, I'd recommend starting with %s. ", p.ExperienceLevel, relevant[0].Name)
	b.WriteString("It provides a solid foundation. Would you like to know about prerequisites or course combinations?")

	return Response{
		Intent:       IntentGeneralInfo,
		Courses:      relevant,
		Explanations: explanations,
		Narrative:    b.String(),
	}
}

func (e *Engine) handleCourseRecommendation(query string, p catalog.StudentProfile, limit int) Response {
	pool := e.coursesForMajor(p.Major, 0)
	if len(pool) == 0 {
		pool = e.cat.Courses
	}
	if len(pool) == 0 {
		return e.handleUnknown(query, p)
	}

	top := head(RankCourses(pool, p, query), limit)

	// A sparse result is worse than an honest redirect.
	if len(top) < 3 {
		return e.handleUnknown(query, p)
	}

	explanations := e.detailedExplanations(top, p, query)
	narrative := e.conversationalNarrative(top, explanations, p, query)

	return Response{
		Intent:       IntentCourseRecommendation,
		Courses:      top,
		Explanations: explanations,
		Narrative:    narrative,
	}
}

func (e *Engine) detailedExplanations(courses []catalog.Course, p catalog.StudentProfile, query string) map[string][]string {
	explanations := make(map[string][]string, len(courses))

	for _, c := range courses {
		var parts []string
		parts = append(parts, fmt.Sprintf("**Best for:** %s students in %s program", p.Major, p.Program))

		switch c.Type {
		case catalog.Mandatory:
			parts = append(parts, fmt.Sprintf("**Course Type:** Required core course for %s - %d credits", p.Major, c.Credits))
		case catalog.Secondary:
			parts = append(parts, fmt.Sprintf("**Course Type:** Graded elective - %d credits (counts toward degree)", c.Credits))
		default:
			parts = append(parts, "**Course Type:** Audit option - 0 credits (explore without grades)")
		}

		difficulty := orDefault(c.Difficulty, catalog.Intermediate)
		parts = append(parts, fmt.Sprintf("**Difficulty Level:** %s - Suitable for %s students", difficulty, p.ExperienceLevel))

		if l, ok := e.lecturers[c.ID]; ok {
			parts = append(parts, fmt.Sprintf("**Instructor:** %s, %s", l.Name, l.JobTitle))
			if len(l.Expertise) > 0 {
				parts = append(parts, fmt.Sprintf("**Expertise:** %s", strings.Join(l.Expertise, ", ")))
			}
		}

		if prereqs := PrerequisiteSkills(c); len(prereqs) > 0 {
			parts = append(parts, fmt.Sprintf("**Skills to Prepare:** %s", strings.Join(prereqs, ", ")))
		}

		if p.CareerGoal != "" && careerRelevant(c, p.CareerGoal) {
			parts = append(parts, fmt.Sprintf("**Career Relevance:** Directly applicable to %s role", p.CareerGoal))
		}

		if suggestion := auditCombination(c, courses); suggestion != "" {
			parts = append(parts, fmt.Sprintf("**Recommended Audit Combination:** Pair with %s", suggestion))
		}

		parts = append(parts, fmt.Sprintf("**Duration:** 3 weeks intensive | **Credits:** %d", c.Credits))

		explanations[c.ID] = parts
	}

	return explanations
}

func (e *Engine) conversationalNarrative(courses []catalog.Course, explanations map[string][]string, p catalog.StudentProfile, query string) string {
	if len(courses) == 0 {
		return fmt.Sprintf(
			"I couldn't find specific courses matching that query. As a %s student, I can help you with course recommendations, lecturer information, schedules, or module planning. What would you like to know?",
			p.Major)
	}

	var b strings.Builder
	switch {
	case query != "" && len(strings.Fields(query)) <= 2:
		fmt.Fprintf(&b, "Here are the %s courses available:\n\n", query)
	case p.CareerGoal != "":
		fmt.Fprintf(&b, "For %s, I recommend these courses:\n\n", p.CareerGoal)
	default:
		fmt.Fprintf(&b, "Based on your %s major, here are relevant courses:\n\n", p.Major)
	}

	for i, c := range courses {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Name, c.ID)
		fmt.Fprintf(&b, "   Level: %s | Credits: %d\n", orDefault(c.Difficulty, catalog.Intermediate), c.Credits)
		if l, ok := e.lecturers[c.ID]; ok {
			fmt.Fprintf(&b, "   Instructor: %s, %s\n", l.Name, l.JobTitle)
		}
		fmt.Fprintf(&b, "   Schedule: %s\n", orDefault(c.TimeSlot, "TBD"))
		if exp := explanations[c.ID]; len(exp) > 0 {
			fmt.Fprintf(&b, "   Why: %s\n", exp[0])
		}
		b.WriteString("\n")
	}

	switch {
	case len(courses) == 1:
		b.WriteString("Would you like to know more about prerequisites, similar courses, or module planning?")
	case len(courses) <= 3:
		b.WriteString("Would you like details on any specific course, or help choosing between them?")
	default:
		b.WriteString("I can provide more details on any course. What would you like to know?")
	}

	return b.String()
}

// PrerequisiteSkills derives up to three preparation hints from a course's
// name, category, and difficulty.
func PrerequisiteSkills(c catalog.Course) []string {
	name := strings.ToLower(c.Name)
	category := strings.ToLower(c.Category)

	var prereqs []string
	if c.Difficulty == catalog.Advanced {
		prereqs = append(prereqs, fmt.Sprintf("Intermediate %s knowledge", category))
	}

	switch {
	case strings.Contains(name, "machine learning") || strings.Contains(name, "deep learning"):
		prereqs = append(prereqs, "Python programming", "Basic statistics", "Linear algebra")
	case strings.Contains(name, "data"):
		prereqs = append(prereqs, "Python basics", "SQL fundamentals")
	case strings.Contains(name, "web") || strings.Contains(name, "frontend"):
		prereqs = append(prereqs, "HTML/CSS basics", "JavaScript fundamentals")
	case strings.Contains(name, "security") || strings.Contains(name, "cyber"):
		prereqs = append(prereqs, "Networking basics", "Operating systems knowledge")
	case strings.Contains(name, "database"):
		prereqs = append(prereqs, "SQL basics", "Data modeling concepts")
	}

	if len(prereqs) > 3 {
		prereqs = prereqs[:3]
	}
	return prereqs
}

func careerRelevant(c catalog.Course, careerGoal string) bool {
	keywords := CareerKeywords(careerGoal)
	for _, skill := range c.Skills {
		s := strings.ToLower(skill)
		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				return true
			}
		}
	}
	return false
}

// auditCombination suggests an audit course whose skills partially overlap
// the main course: enough to complement, not enough to duplicate.
func auditCombination(main catalog.Course, candidates []catalog.Course) string {
	mainSkills := skillSet(main.Skills)

	for _, c := range candidates {
		if c.Type != catalog.Audit || c.ID == main.ID {
			continue
		}
		overlap := 0
		for s := range skillSet(c.Skills) {
			if mainSkills[s] {
				overlap++
			}
		}
		if overlap > 0 && overlap < 3 {
			return fmt.Sprintf("%s (%s)", c.Name, c.ID)
		}
	}
	return ""
}

func skillSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = true
		}
	}
	return set
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
