package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

func (e *Engine) handleLecturerInfo(query string, p catalog.StudentProfile) Response {
	q := strings.ToLower(query)

	// Specific person by name.
	for _, l := range e.cat.Lecturers {
		if strings.Contains(q, strings.ToLower(l.Name)) {
			var b strings.Builder
			fmt.Fprintf(&b, "**%s**\n\n", l.Name)
			fmt.Fprintf(&b, "**Position:** %s\n", l.JobTitle)
			if l.Employer != "" {
				fmt.Fprintf(&b, "**Company:** %s\n", l.Employer)
			}
			if l.Program != "" {
				fmt.Fprintf(&b, "**Program:** %s\n", l.Program)
			}
			if len(l.Expertise) > 0 {
				fmt.Fprintf(&b, "**Expertise:** %s\n", strings.Join(l.Expertise, ", "))
			}
			if l.Email != "" {
				fmt.Fprintf(&b, "**Contact:** %s\n", l.Email)
			}
			if taught := e.CoursesByLecturer(l.Name); len(taught) > 0 {
				b.WriteString("\n**Courses:**\n")
				for _, c := range taught {
					fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.ID)
				}
			}
			return Response{
				Intent:       IntentLecturerInfo,
				Explanations: map[string][]string{},
				Narrative:    b.String(),
			}
		}
	}

	// Fuzzy fallback for misspelled names.
	if l, ok := e.cat.FindLecturerByName(q); ok {
		return e.handleLecturerInfo(strings.ToLower(l.Name), p)
	}

	// Group by program affiliation, falling back to the lead expertise
	// for lecturers without one, so we can offer a field overview.
	byField := make(map[string][]catalog.Lecturer)
	for _, l := range e.cat.Lecturers {
		field := "General"
		switch {
		case l.Program != "":
			field = titleCaser.String(l.Program)
		case len(l.Expertise) > 0:
			field = titleCaser.String(l.Expertise[0])
		}
		byField[field] = append(byField[field], l)
	}

	// Specific field mentioned in the query.
	for field, lecturers := range byField {
		if strings.Contains(q, strings.ToLower(field)) {
			var b strings.Builder
			fmt.Fprintf(&b, "**%s Instructors:**\n\n", field)
			fmt.Fprintf(&b, "We have %d instructors teaching %s:\n\n", len(lecturers), field)
			for i, l := range lecturers {
				if i == 10 {
					fmt.Fprintf(&b, "\n...and %d more instructors.\n", len(lecturers)-10)
					break
				}
				position := l.JobTitle
				if l.Employer != "" {
					position += " at " + l.Employer
				}
				fmt.Fprintf(&b, "%d. **%s**\n   %s\n\n", i+1, l.Name, position)
			}
			b.WriteString("\n**Tip: Ask about a specific instructor by name for more details!**")
			return Response{
				Intent:       IntentLecturerInfo,
				Explanations: map[string][]string{},
				Narrative:    b.String(),
			}
		}
	}

	// General overview: which field is the student interested in?
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("I can tell you about our instructors! **Which field are you interested in?**\n\n")
	b.WriteString("We have expert faculty in:\n\n")
	for i, f := range fields {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "• **%s** (%d instructors)\n", f, len(byField[f]))
	}
	b.WriteString("\n**Examples:**\n")
	b.WriteString("• \"Computer Science lecturers\"\n")
	b.WriteString("• \"Who teaches Data Science?\"\n")
	b.WriteString("• \"Tell me about [Instructor Name]\"")

	return Response{
		Intent:       IntentLecturerInfo,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func (e *Engine) handleScheduleInfo(query string, p catalog.StudentProfile) Response {
	q := strings.ToLower(query)

	timeFilter := ""
	switch {
	case strings.Contains(q, "morning"):
		timeFilter = "morning"
	case strings.Contains(q, "afternoon"):
		timeFilter = "afternoon"
	case strings.Contains(q, "evening"):
		timeFilter = "evening"
	}

	pool := e.coursesForMajor(p.Major, 15)
	if len(pool) == 0 {
		pool = head(e.cat.Courses, 15)
	}

	slots := map[string][]catalog.Course{}
	explanations := make(map[string][]string, len(pool))
	for _, c := range pool {
		slot := orDefault(c.TimeSlot, catalog.TimeSlots[0])
		label := slotLabel(slot)
		slots[label] = append(slots[label], c)
		explanations[c.ID] = []string{
			fmt.Sprintf("Scheduled: %s", slot),
			"Duration: 3 weeks, 3 hours 20 min per session",
		}
	}

	if timeFilter != "" {
		matched := head(slots[timeFilter], 6)
		var b strings.Builder
		fmt.Fprintf(&b, "**%s Classes for %s** (%s)\n\n", titleCaser.String(timeFilter), p.Major, slotWindow(timeFilter))
		fmt.Fprintf(&b, "Here are available %s courses:\n\n", timeFilter)
		for i, c := range matched {
			fmt.Fprintf(&b, "%d. **%s**\n   Time: %s | Level: %s\n\n", i+1, c.Name, orDefault(c.TimeSlot, "TBD"), orDefault(c.Difficulty, catalog.Intermediate))
		}
		if extra := len(slots[timeFilter]) - len(matched); extra > 0 {
			fmt.Fprintf(&b, "_+ %d more %s courses available_\n\n", extra, timeFilter)
		}
		b.WriteString("Would you like details on any specific course?")
		return Response{
			Intent:       IntentScheduleInfo,
			Courses:      matched,
			Explanations: explanations,
			Narrative:    b.String(),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Schedule Overview for %s Courses**\n\n", p.Major)
	for _, label := range []string{"morning", "afternoon", "evening"} {
		fmt.Fprintf(&b, "**%s Sessions** (%s):\n", titleCaser.String(label), slotWindow(label))
		for _, c := range head(slots[label], 3) {
			fmt.Fprintf(&b, "  • %s - %s\n", c.Name, orDefault(c.Difficulty, catalog.Intermediate))
		}
		b.WriteString("\n")
	}
	b.WriteString("**Tip:** Choose time slots that match your productivity hours!\n")
	b.WriteString("Try: \"morning classes\" or \"evening courses\" for more details.")

	return Response{
		Intent:       IntentScheduleInfo,
		Courses:      head(pool, 9),
		Explanations: explanations,
		Narrative:    b.String(),
	}
}

func slotLabel(slot string) string {
	switch slot {
	case catalog.TimeSlots[1]:
		return "afternoon"
	case catalog.TimeSlots[2]:
		return "evening"
	default:
		return "morning"
	}
}

func slotWindow(label string) string {
	switch label {
	case "afternoon":
		return catalog.TimeSlots[1]
	case "evening":
		return catalog.TimeSlots[2]
	default:
		return catalog.TimeSlots[0]
	}
}

func (e *Engine) handleCareerGuidance(query string, p catalog.StudentProfile) Response {
	goal := p.CareerGoal
	keywords := CareerKeywords(orDefault(goal, query))

	var matched []catalog.Course
	for _, c := range e.cat.Courses {
		text := strings.ToLower(strings.Join(c.Skills, ",") + " " + c.Description)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, c)
				break
			}
		}
		if len(matched) == 4 {
			break
		}
	}
	if len(matched) == 0 {
		matched = e.coursesForMajor(p.Major, 4)
	}

	goalLabel := orDefault(goal, "success")
	var b strings.Builder
	fmt.Fprintf(&b, "Let's plan your path to %s!\n\n", goalLabel)
	b.WriteString("Career-Aligned Courses:\n\n")

	explanations := make(map[string][]string, len(matched))
	roleLabel := orDefault(goal, "industry roles")
	for i, c := range matched {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&b, "   Why: Prepares you for %s\n", roleLabel)
		b.WriteString("   Industry value: High demand skill\n")
		if l, ok := e.lecturers[c.ID]; ok {
			fmt.Fprintf(&b, "   Instructor: %s\n", l.Name)
		}
		b.WriteString("\n")
		explanations[c.ID] = []string{
			fmt.Sprintf("Essential for %s", orDefault(goal, "your career")),
			"Industry-relevant skills",
			"Taught by professionals",
		}
	}

	b.WriteString("\nCareer Tip: Combine technical courses with projects. Consider auditing complementary courses to broaden your skill set. Would you like advice on course priority?")

	return Response{
		Intent:       IntentCareerGuidance,
		Courses:      matched,
		Explanations: explanations,
		Narrative:    b.String(),
	}
}

func (e *Engine) handleModulePlanning(query string, p catalog.StudentProfile) Response {
	pool := e.coursesForMajor(p.Major, 6)
	if len(pool) == 0 {
		pool = head(e.cat.Courses, 6)
	}

	var mandatory, secondary []catalog.Course
	for _, c := range pool {
		switch c.Type {
		case catalog.Mandatory:
			mandatory = append(mandatory, c)
		case catalog.Secondary:
			secondary = append(secondary, c)
		}
	}

	// 2-3 courses for the current module, mandatory first.
	var moduleCourses []catalog.Course
	switch {
	case len(mandatory) >= 2:
		moduleCourses = mandatory[:2]
	case len(mandatory) == 1:
		moduleCourses = append(moduleCourses, mandatory[0])
		if len(secondary) > 0 {
			moduleCourses = append(moduleCourses, secondary[0])
		}
	case len(secondary) >= 2:
		moduleCourses = secondary[:2]
	default:
		moduleCourses = head(pool, 2)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's a suggested module plan for %s:\n\n", p.Major)
	b.WriteString("Module 1 (Current - 3 weeks):\n")

	explanations := make(map[string][]string, len(moduleCourses))
	for i, c := range moduleCourses {
		fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, c.Name, c.ID)
		fmt.Fprintf(&b, "     Time: %s | Credits: %d\n", orDefault(c.TimeSlot, "TBD"), c.Credits)
		if l, ok := e.lecturers[c.ID]; ok {
			fmt.Fprintf(&b, "     Instructor: %s\n", l.Name)
		}
		explanations[c.ID] = []string{
			fmt.Sprintf("Core course for %s", p.Major),
			fmt.Sprintf("Scheduled: %s", orDefault(c.TimeSlot, "TBD")),
		}
	}

	b.WriteString("\nModule 2 (Next - 3 weeks):\n")
	b.WriteString("  Coming soon - will be planned based on your progress\n\n")
	b.WriteString("Module 3 (Future):\n")
	b.WriteString("  Coming soon - advanced courses\n\n")
	b.WriteString("Each module runs for 3 weeks with 3-4 courses. Would you like details on any specific course or help with scheduling?")

	if len(moduleCourses) == 0 {
		moduleCourses = head(pool, 3)
	}

	return Response{
		Intent:       IntentModulePlanning,
		Courses:      moduleCourses,
		Explanations: explanations,
		Narrative:    b.String(),
	}
}

func (e *Engine) handleProgramInfo(query string, p catalog.StudentProfile) Response {
	q := strings.ToLower(query)

	target := ""
	for _, prog := range e.cat.Programs {
		if strings.Contains(q, strings.ToLower(prog.Name)) {
			target = prog.Name
			break
		}
	}
	if target == "" {
		target = orDefault(p.Major, p.Program)
	}

	programCourses := e.coursesForMajor(target, 0)
	if len(programCourses) == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "I couldn't find courses specifically for %s.\n\n", target)
		if len(e.cat.Programs) > 0 {
			b.WriteString("Available programs include:\n")
			for _, prog := range e.cat.Programs {
				fmt.Fprintf(&b, "- %s\n", prog.Name)
			}
			b.WriteString("\n")
		}
		b.WriteString("Which program would you like to learn about?")
		return Response{
			Intent:       IntentProgramInfo,
			Explanations: map[string][]string{},
			Narrative:    b.String(),
		}
	}

	var mandatory, secondary, audit []catalog.Course
	for _, c := range programCourses {
		switch c.Type {
		case catalog.Mandatory:
			mandatory = append(mandatory, c)
		case catalog.Secondary:
			secondary = append(secondary, c)
		default:
			audit = append(audit, c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s Program**\n\n", target)
	fmt.Fprintf(&b, "Total Courses Available: %d\n\n", len(programCourses))

	explanations := make(map[string][]string)

	if len(mandatory) > 0 {
		fmt.Fprintf(&b, "**MANDATORY COURSES (%d courses):**\n", len(mandatory))
		b.WriteString("These are required for graduation:\n\n")
		for i, c := range head(mandatory, 10) {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Name, c.ID)
			fmt.Fprintf(&b, "   Credits: %d | Level: %s\n", c.Credits, orDefault(c.Difficulty, catalog.Intermediate))
			fmt.Fprintf(&b, "   Schedule: %s\n", orDefault(c.TimeSlot, "TBD"))
			if l, ok := e.lecturers[c.ID]; ok {
				fmt.Fprintf(&b, "   Instructor: %s\n", l.Name)
			}
			fmt.Fprintf(&b, "   %s\n\n", truncate(c.Description, 100))
			explanations[c.ID] = []string{
				fmt.Sprintf("Mandatory course for %s", target),
				"Required for graduation",
			}
		}
	}

	if len(secondary) > 0 {
		fmt.Fprintf(&b, "\n**SECONDARY/ELECTIVE COURSES (%d courses):**\n", len(secondary))
		b.WriteString("Recommended courses to enhance your skills:\n\n")
		for i, c := range head(secondary, 10) {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Name, c.ID)
			fmt.Fprintf(&b, "   Credits: %d | Level: %s\n", c.Credits, orDefault(c.Difficulty, catalog.Intermediate))
			fmt.Fprintf(&b, "   Schedule: %s\n\n", orDefault(c.TimeSlot, "TBD"))
			explanations[c.ID] = []string{
				fmt.Sprintf("Elective for %s", target),
				"Counts towards credits",
			}
		}
	}

	if len(audit) > 0 {
		fmt.Fprintf(&b, "\n**AUDIT COURSES (%d courses):**\n", len(audit))
		b.WriteString("Additional learning opportunities (no credits):\n\n")
		for i, c := range head(audit, 5) {
			fmt.Fprintf(&b, "%d. %s (%s)\n\n", i+1, c.Name, c.ID)
			explanations[c.ID] = []string{
				"Audit course - no credits",
				"For learning and exploration",
			}
		}
	}

	b.WriteString("\n**Program Highlights:**\n")
	fmt.Fprintf(&b, "- Total courses: %d\n", len(programCourses))
	fmt.Fprintf(&b, "- Mandatory courses: %d\n", len(mandatory))
	fmt.Fprintf(&b, "- Elective courses: %d\n", len(secondary))
	b.WriteString("- Duration: 3 weeks per course\n")
	b.WriteString("- Schedule: Morning, Afternoon, or Evening slots\n\n")
	b.WriteString("Would you like details on any specific course or help planning your module schedule?")

	ordered := append(append(append([]catalog.Course{}, mandatory...), secondary...), audit...)

	return Response{
		Intent:       IntentProgramInfo,
		Courses:      head(ordered, 15),
		Explanations: explanations,
		Narrative:    b.String(),
	}
}
