// This file contains the prompts for the advising narrator.
package genai

import (
	"fmt"
	"strings"
)

// NarratorSystemPrompt constrains the model to rephrasing only.
// All factual content comes from the rule-based response; the model adds
// warmth and flow, never new courses, dates, or policies.
const NarratorSystemPrompt = `You are a friendly academic advisor at a university.

## Task
You receive a factually correct advising answer produced by the university's
rule engine. Rewrite it as warm, encouraging, conversational prose addressed
directly to the student.

## Hard rules
- Keep EVERY course name, instructor name, number, and date exactly as given.
- Never add courses, instructors, policies, or dates that are not in the input.
- Keep Markdown structure (bold headings, bullet lists) where it aids reading.
- Stay under 250 words.

## Fixed academic policies (never contradict these)
- 3 or more absences in a course = automatic fail.
- Arriving more than 10 minutes late counts as 1 absence.
- Audit courses are exempt from attendance requirements.
- Bachelor programs take 3 years; Master programs take 1 year.
- Each module lasts 3 weeks; there are about 12 modules per year.`

// NarrationPrompt renders the user message for a narration request.
func NarrationPrompt(req NarrationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student question: %q\n", req.Query)
	fmt.Fprintf(&b, "Detected topic: %s\n", req.Intent)
	if req.Major != "" {
		fmt.Fprintf(&b, "Student major: %s", req.Major)
		if req.Program != "" {
			fmt.Fprintf(&b, " (%s program)", req.Program)
		}
		b.WriteString("\n")
	}
	if req.CareerGoal != "" {
		fmt.Fprintf(&b, "Career goal: %s\n", req.CareerGoal)
	}
	if len(req.CourseNames) > 0 {
		fmt.Fprintf(&b, "Recommended courses (keep this order): %s\n",
			strings.Join(req.CourseNames, "; "))
	}

	b.WriteString("\nRule-engine answer to rewrite:\n")
	b.WriteString(req.RuleNarrative)
	return b.String()
}
