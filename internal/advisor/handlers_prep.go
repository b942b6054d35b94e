package advisor

import (
	"fmt"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// topicPreparation lists the essential skills to brush up on before starting
// a broad topic. Checked in order; first topic found in the query wins.
var topicPreparation = []struct {
	topic  string
	skills []string
}{
	{"data science", []string{"statistics", "Python/R programming", "data visualization", "machine learning basics", "SQL"}},
	{"software development", []string{"programming fundamentals", "data structures", "algorithms", "version control (Git)", "problem-solving", "debugging"}},
	{"software", []string{"programming fundamentals", "data structures", "algorithms", "version control (Git)", "problem-solving", "debugging"}},
	{"machine learning", []string{"Python programming", "statistics & probability", "linear algebra", "calculus", "data preprocessing"}},
	{"web development", []string{"HTML/CSS", "JavaScript", "responsive design", "backend basics", "databases"}},
	{"web", []string{"HTML/CSS", "JavaScript", "responsive design", "browser tools", "basic design"}},
	{"cybersecurity", []string{"networking fundamentals", "operating systems", "basic programming", "security concepts", "ethical mindset"}},
	{"business", []string{"communication skills", "basic accounting", "market research", "analytical thinking", "presentation skills"}},
	{"design", []string{"design principles", "color theory", "typography", "design tools (Figma/Adobe)", "user empathy"}},
	{"marketing", []string{"communication", "psychology basics", "social media familiarity", "analytics", "creativity"}},
	{"computer science", []string{"programming fundamentals", "mathematics", "logic", "algorithms", "problem-solving"}},
	{"programming", []string{"logic", "syntax fundamentals", "problem decomposition", "debugging skills", "practice"}},
}

func (e *Engine) handlePreparationAdvice(query string, p catalog.StudentProfile) Response {
	var b strings.Builder
	b.WriteString("Great question! Let me help you prepare for your classes. Here's what you should do:\n\n")

	b.WriteString("BEFORE YOUR FIRST CLASS:\n")
	b.WriteString("1. Review course materials and syllabus\n")
	b.WriteString("2. Set up your development environment (IDE, tools)\n")
	b.WriteString("3. Join the course communication channel\n")
	b.WriteString("4. Prepare questions about topics you're curious about\n\n")

	b.WriteString("GENERAL PREPARATION TIPS:\n")
	b.WriteString("- Read ahead: Review next class topics the night before\n")
	b.WriteString("- Practice coding: Try small exercises related to upcoming topics\n")
	b.WriteString("- Connect with classmates: Form study groups early\n")
	b.WriteString("- Ask questions: Don't hesitate to reach out to instructors\n\n")

	fmt.Fprintf(&b, "FOR %s STUDENTS:\n", strings.ToUpper(p.Major))

	majorCourses := e.coursesForMajor(p.Major, 5)
	explanations := make(map[string][]string, len(majorCourses))

	if len(majorCourses) > 0 {
		b.WriteString("Recommended preparation for your major:\n\n")
		for i, c := range majorCourses {
			fmt.Fprintf(&b, "%d. For %s:\n", i+1, c.Name)
			if prereqs := PrerequisiteSkills(c); len(prereqs) > 0 {
				fmt.Fprintf(&b, "   - Brush up on: %s\n", strings.Join(prereqs, ", "))
			} else {
				b.WriteString("   - No prerequisites, perfect for beginners\n")
			}
			if l, ok := e.lecturers[c.ID]; ok {
				fmt.Fprintf(&b, "   - Taught by %s (%s)\n", l.Name, l.JobTitle)
			}
			b.WriteString("\n")
			explanations[c.ID] = []string{"Preparation recommended", "Review prerequisite skills"}
		}
		b.WriteString("\nWould you like specific study resources or tips for any particular subject?")
	}

	return Response{
		Intent:       IntentPreparationAdvice,
		Courses:      majorCourses,
		Explanations: explanations,
		Narrative:    b.String(),
	}
}

func (e *Engine) handleSpecificClassPrep(query string, p catalog.StudentProfile) Response {
	q := strings.ToLower(query)

	// Broad topic like "prepare for machine learning".
	for _, entry := range topicPreparation {
		if strings.Contains(q, entry.topic) {
			var b strings.Builder
			fmt.Fprintf(&b, "**Preparing for %s**\n\n", titleCaser.String(entry.topic))
			fmt.Fprintf(&b, "Essential skills: %s\n\n", strings.Join(entry.skills, ", "))
			b.WriteString("**Suggested plan:**\n")
			b.WriteString("Week 1-2: Install tools, complete basic tutorials\n")
			b.WriteString("Week 3-4: Start first practice project\n")
			b.WriteString("Week 5-6: Research advanced topics, build portfolio\n\n")
			fmt.Fprintf(&b, "Once comfortable with the basics, check our %s courses!", titleCaser.String(entry.topic))
			return Response{
				Intent:       IntentSpecificClassPrep,
				Explanations: map[string][]string{},
				Narrative:    b.String(),
			}
		}
	}

	// Named course like "how to prepare for Introduction to Machine Learning".
	var found *catalog.Course
	for i := range e.cat.Courses {
		if strings.Contains(q, strings.ToLower(e.cat.Courses[i].Name)) {
			found = &e.cat.Courses[i]
			break
		}
	}

	var b strings.Builder
	if found != nil {
		fmt.Fprintf(&b, "**Preparing for %s**\n\n", found.Name)
		b.WriteString("Great question! Here's how to get ready for this course:\n\n")

		b.WriteString("**Skills You Should Have:**\n")
		if len(found.Skills) > 0 {
			b.WriteString("Make sure you're comfortable with:\n")
			for _, s := range head5(found.Skills) {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "- Basic understanding of %s\n", p.Major)
			b.WriteString("- Strong problem-solving skills\n\n")
		}

		difficulty := orDefault(found.Difficulty, catalog.Intermediate)
		fmt.Fprintf(&b, "**Course Difficulty:** %s\n\n", difficulty)
		switch difficulty {
		case catalog.Advanced:
			b.WriteString("**This is an advanced course.** Make sure you:\n")
			b.WriteString("- Have completed prerequisite courses\n")
			b.WriteString("- Are comfortable with foundational concepts\n")
			b.WriteString("- Are ready for challenging projects\n\n")
		case catalog.Beginner:
			b.WriteString("**This is a beginner-friendly course.** You should:\n")
			b.WriteString("- Come with an open mind\n")
			b.WriteString("- Be ready to learn from scratch\n")
			b.WriteString("- Practice consistently\n\n")
		}

		if l, ok := e.lecturers[found.ID]; ok {
			fmt.Fprintf(&b, "**Instructor:** %s\n", l.Name)
			fmt.Fprintf(&b, "Role: %s\n\n", l.JobTitle)
		}

		b.WriteString("**Before First Class:**\n")
		b.WriteString("1. Review any prerequisites or recommended readings\n")
		b.WriteString("2. Set up your development environment (if technical course)\n")
		b.WriteString("3. Join the course communication channel\n")
		b.WriteString("4. Prepare questions you want answered\n\n")

		b.WriteString("**During the Course:**\n")
		b.WriteString("- Attend ALL classes (remember: 3 absences = fail!)\n")
		b.WriteString("- Take detailed notes\n")
		b.WriteString("- Start assignments early\n")
		b.WriteString("- Form study groups with classmates\n\n")

		fmt.Fprintf(&b, "**Time Commitment:** 3 weeks, %d credits\n", found.Credits)
		b.WriteString("Each week requires significant dedication outside of class time.")
	} else {
		b.WriteString("**Preparing for Your Classes**\n\n")
		b.WriteString("I didn't catch which specific course you're asking about, but here's general preparation advice:\n\n")
		b.WriteString("**Before Any Course Starts:**\n")
		b.WriteString("1. Research the course: read the description, check covered skills, see who teaches it\n")
		b.WriteString("2. Assess prerequisites: do you have the required background?\n")
		b.WriteString("3. Plan your time: each module is 3 weeks, count on 10-15 hours/week per course\n")
		b.WriteString("4. Prepare mentally: committed to showing up (3 absences = fail!)\n\n")
		b.WriteString("**To get specific preparation tips:**\n")
		b.WriteString("Ask me: \"How to prepare for [course name]\" with the actual course name\n\n")
		b.WriteString("**Example:**\n")
		b.WriteString("- \"How to prepare for Introduction to Machine Learning\"\n")
		b.WriteString("- \"Get ready for Web Development Fundamentals\"\n\n")
		b.WriteString("I'll give you detailed, course-specific preparation guidance!")
	}

	return Response{
		Intent:       IntentSpecificClassPrep,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func head5(items []string) []string {
	if len(items) <= 5 {
		return items
	}
	return items[:5]
}
