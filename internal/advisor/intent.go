package advisor

import (
	"strings"

	"github.com/coursewise/advisor-go/internal/stringutil"
)

// Intent labels what kind of help a query is asking for.
type Intent string

const (
	IntentCourseRecommendation Intent = "course_recommendation"
	IntentGreeting             Intent = "greeting"
	IntentSpecificClassPrep    Intent = "specific_class_preparation"
	IntentProgramDuration      Intent = "program_duration"
	IntentAttendancePolicy     Intent = "attendance_consequences"
	IntentStudentIssues        Intent = "student_issues"
	IntentLecturerInfo         Intent = "lecturer_info"
	IntentCourseTypeExplain    Intent = "course_type_explanation"
	IntentPreparationAdvice    Intent = "preparation_advice"
	IntentGeneralInfo          Intent = "general_info"
	IntentScheduleInfo         Intent = "schedule_info"
	IntentCareerGuidance       Intent = "career_guidance"
	IntentModulePlanning       Intent = "module_planning"
	IntentProgramInfo          Intent = "program_info"
	IntentUnknown              Intent = "unknown_query"
)

// expansions maps abbreviations and frequent typos to their full forms.
// They are applied in order, cumulatively, to the same lowercased buffer,
// so ordering is part of the contract.
var expansions = []struct {
	abbr, full string
}{
	{"ml", "machine learning"},
	{"ai", "artificial intelligence"},
	{"ds", "data science"},
	{"cs", "computer science"},
	{"cyber", "cybersecurity"},
	{"webdev", "web development"},
	{"db", "database"},
	{"dl", "deep learning"},
	{"nn", "neural network"},
	{"machne", "machine"},
	{"learing", "learning"},
	{"lecurer", "lecturer"},
	{"instuctor", "instructor"},
	{"proffesor", "professor"},
	{"scince", "science"},
	{"engeneer", "engineer"},
	{"devloper", "developer"},
}

// ExpandQuery lowercases, trims, and applies the abbreviation/typo table.
func ExpandQuery(query string) string {
	if query == "" {
		return query
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, e := range expansions {
		if strings.Contains(q, e.abbr) {
			q = strings.ReplaceAll(q, e.abbr, e.full)
		}
	}
	return q
}

var greetingKeywords = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
	"greetings", "howdy",
}

var howAreYouKeywords = []string{
	"how are you", "how r u", "how are u", "hows it going", "how is it going",
	"whats up", "what's up", "sup",
}

var specificPrepKeywords = []string{
	"what to prepare for", "what should i prepare for", "how to prepare for",
	"prepare for", "get ready for", "before taking", "what do i need for",
	"prerequisites for", "ready for",
}

var durationKeywords = []string{
	"how long", "duration", "how many years", "length", "year", "years",
	"program duration", "bachelor duration", "master duration", "how much time",
	"time to complete", "how many", "long is", "take to complete", "time required",
}

var attendanceTriggerKeywords = []string{
	"what if", "what happen", "skip class", "miss class", "dont attend",
	"don't attend", "absent", "too many absence", "skip mandatory",
	"miss mandatory", "late to class", "miss too many", "fail because",
}

var attendanceDomainWords = []string{
	"class", "mandatory", "attendance", "absent", "skip", "miss", "late",
}

var issuesKeywords = []string{
	"have issue", "have problem", "need help", "having trouble", "struggling",
	"cant attend", "can't attend", "emergency", "conflict", "sick", "medical",
}

var lecturerKeywords = []string{
	"lecturer", "lecturers", "professor", "instructor", "instructors",
	"teacher", "teachers", "prof", "faculty", "tutor", "who teaches", "who teach",
}

var explanationKeywords = []string{
	"mandatory", "audit", "secondary", "course type", "what is mandatory",
	"what is audit", "explain",
}

var explanationSuppressors = []string{
	"skip", "miss", "dont", "don't", "happen", "what if",
}

var generalPrepKeywords = []string{
	"before class", "preparation", "study tips", "prepare well", "how to study",
}

var courseIndicators = []string{
	"course", "class", "learn", "study", "teach", "training", "program",
}

var topicKeywords = []string{
	"machine learning", "ml", "artificial intelligence", "ai", "data science",
	"computer science", "cybersecurity", "cyber", "security", "web development",
	"web", "database", "db", "deep learning", "neural network", "programming",
	"software", "data", "python", "java", "javascript", "software development",
	"web dev", "mobile", "app development", "frontend", "backend", "fullstack",
	"business", "design", "ux", "ui", "marketing", "entrepreneurship", "analytics",
}

var singleWordTopics = []string{
	"ml", "ai", "software", "business", "design", "marketing", "data", "web",
	"mobile", "python", "java", "javascript", "security", "cyber", "database",
	"programming",
}

var twoWordTopics = []string{
	"computer science", "data science", "machine learning", "web development",
	"software development", "deep learning", "artificial intelligence",
	"cyber security", "app development", "digital marketing",
}

var scheduleKeywords = []string{
	"time", "timing", "schedule", "when", "morning", "afternoon", "evening",
}

var careerIntentKeywords = []string{
	"career", "job", "future", "work", "industry", "professional",
}

var moduleKeywords = []string{
	"module", "semester", "this module", "next module", "planning",
}

var programQueryPatterns = []string{
	"what is in", "whats in", "courses in", "what courses", "show me",
	"tell me about", "information about", "about the", "in the",
	"major", "program", "degree", "what can i study", "what will i learn",
}

var programNames = []string{
	"computer science", "data science", "cyber security", "cybersecurity",
	"front-end development", "frontend", "interaction design", "design",
	"digital marketing", "marketing", "high-tech entrepreneurship",
	"entrepreneurship", "business", "digital transformation",
	"product management", "fintech", "applied data and computer science",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// fuzzyMatch reports whether word resembles any keyword, tolerating typos
// with a similarity ratio threshold of 0.75.
func fuzzyMatch(word string, keywords []string) bool {
	w := strings.ToLower(word)
	for _, kw := range keywords {
		if strings.Contains(w, kw) || strings.Contains(kw, w) {
			return true
		}
		if stringutil.Similarity(w, kw) >= 0.75 {
			return true
		}
	}
	return false
}

// Classify maps free text to one intent label. The rules run in strict
// priority order with first-match-wins semantics; the ordering is a
// correctness contract, e.g. "prepare for my professor's class" must hit
// the preparation rule before the lecturer rule. Never fails; empty input
// defaults to course recommendation.
func Classify(query string) Intent {
	if strings.TrimSpace(query) == "" {
		return IntentCourseRecommendation
	}

	q := strings.ToLower(strings.TrimSpace(query))

	// Greetings are checked before expansion so "hi" is not mangled.
	for _, kw := range greetingKeywords {
		if q == kw || strings.HasPrefix(q, kw+" ") || strings.HasPrefix(q, kw+",") {
			return IntentGreeting
		}
	}
	if containsAny(q, howAreYouKeywords) {
		return IntentGreeting
	}

	for _, e := range expansions {
		if strings.Contains(q, e.abbr) {
			q = strings.ReplaceAll(q, e.abbr, e.full)
		}
	}
	words := strings.Fields(q)

	if containsAny(q, specificPrepKeywords) {
		return IntentSpecificClassPrep
	}

	if containsAny(q, durationKeywords) {
		return IntentProgramDuration
	}

	if containsAny(q, attendanceTriggerKeywords) && containsAny(q, attendanceDomainWords) {
		return IntentAttendancePolicy
	}

	if containsAny(q, issuesKeywords) {
		return IntentStudentIssues
	}

	if containsAny(q, lecturerKeywords) {
		return IntentLecturerInfo
	}
	for _, w := range words {
		if fuzzyMatch(w, lecturerKeywords) {
			return IntentLecturerInfo
		}
	}

	if containsAny(q, explanationKeywords) && !containsAny(q, explanationSuppressors) {
		return IntentCourseTypeExplain
	}

	if containsAny(q, generalPrepKeywords) {
		return IntentPreparationAdvice
	}

	// Terse topic queries always resolve to a course search, overriding
	// any weaker cue below.
	if len(words) <= 3 {
		if containsAny(q, singleWordTopics) || containsAny(q, twoWordTopics) {
			return IntentGeneralInfo
		}
	}

	if containsAny(q, courseIndicators) || containsAny(q, topicKeywords) {
		if !containsAny(q, []string{"schedule", "career", "module", "time", "timing", "morning", "afternoon", "evening"}) {
			return IntentGeneralInfo
		}
	}

	if containsAny(q, scheduleKeywords) {
		return IntentScheduleInfo
	}

	if containsAny(q, careerIntentKeywords) {
		return IntentCareerGuidance
	}

	if containsAny(q, moduleKeywords) {
		return IntentModulePlanning
	}

	if containsAny(q, programNames) && containsAny(q, programQueryPatterns) {
		return IntentProgramInfo
	}

	return IntentCourseRecommendation
}
