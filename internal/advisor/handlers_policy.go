package advisor

import (
	"fmt"
	"strings"

	"github.com/coursewise/advisor-go/internal/catalog"
)

func (e *Engine) handleGreeting(p catalog.StudentProfile) Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! I'm your academic advisor for **%s**.\n\n", p.Major)
	b.WriteString("I'm here to help you navigate your academic journey! ")
	if p.CareerGoal != "" {
		fmt.Fprintf(&b, "I see you're aiming for **%s** - that's an exciting goal!\n\n", p.CareerGoal)
	} else {
		b.WriteString("Let's explore your academic options together.\n\n")
	}
	b.WriteString("**I can help you with:**\n\n")
	b.WriteString("**Course Discovery** - \"Show me ML courses\", \"Software development courses\"\n")
	b.WriteString("**Faculty Info** - \"Lecturers for data science\", \"Who teaches Python?\"\n")
	b.WriteString("**Schedules** - \"Morning classes\", \"Evening courses\"\n")
	b.WriteString("**Planning** - \"Module planning\", \"What should I take?\"\n")
	b.WriteString("**Guidance** - \"Career advice\", \"Preparation tips\"\n\n")
	b.WriteString("**What would you like to know?** Feel free to ask me anything!")

	return Response{
		Intent:       IntentGreeting,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func (e *Engine) handleCourseTypeExplain(query string, p catalog.StudentProfile) Response {
	var b strings.Builder
	b.WriteString("Let me explain the different course types and requirements:\n\n")
	b.WriteString("COURSE TYPES:\n\n")

	b.WriteString("1. Mandatory Courses\n")
	b.WriteString("   - Required courses you MUST take for your degree\n")
	b.WriteString("   - Count towards your graduation requirements\n")
	b.WriteString("   - Graded and recorded on your transcript\n")
	b.WriteString("   - Attendance is mandatory (3 or more absences = FAIL)\n\n")

	b.WriteString("2. Secondary Courses\n")
	b.WriteString("   - Recommended elective courses for your major\n")
	b.WriteString("   - Count towards your credits\n")
	b.WriteString("   - Graded and recorded on transcript\n")
	b.WriteString("   - Attendance is mandatory (3 or more absences = FAIL)\n")
	b.WriteString("   - You can choose which secondary courses to take\n\n")

	b.WriteString("3. Audit Courses\n")
	b.WriteString("   - Optional courses you can take for learning only\n")
	b.WriteString("   - NOT graded, marked as 'Audit' on transcript\n")
	b.WriteString("   - Do NOT count towards your degree credits\n")
	b.WriteString("   - Attendance is recommended but flexible\n")
	b.WriteString("   - Great for exploring interests without GPA impact\n\n")

	b.WriteString("ATTENDANCE POLICY:\n")
	b.WriteString("- **3 or more absences = AUTOMATIC FAIL** (no exceptions)\n")
	b.WriteString("- **Being 10 minutes late = 1 absence** (punctuality is critical)\n")
	b.WriteString("- Missing 3+ consecutive classes without notice: Warning issued\n")
	b.WriteString("- Audit courses: Flexible attendance (no strict requirements)\n\n")

	b.WriteString("WARNINGS:\n")
	b.WriteString("- 1st Warning: Email notification about low attendance\n")
	b.WriteString("- 2nd Warning: Meeting with academic advisor required\n")
	b.WriteString("- **3rd Absence: Automatic course failure** (no exceptions)\n\n")

	examples := e.coursesForMajor(p.Major, 3)
	if len(examples) > 0 {
		fmt.Fprintf(&b, "\nEXAMPLE from %s:\n", p.Major)
		for _, c := range examples {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.Name, c.ID, strings.ToUpper(string(c.Type)))
		}
	}

	b.WriteString("\nWould you like to see all mandatory courses for your major, or help planning your semester?")

	return Response{
		Intent:       IntentCourseTypeExplain,
		Courses:      examples,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func (e *Engine) handleProgramDuration(query string, p catalog.StudentProfile) Response {
	level := catalog.Bachelor
	switch {
	case containsAny(query, []string{"master", "masters", "msc", "graduate"}):
		level = catalog.Master
	case containsAny(query, []string{"bachelor", "bachelors", "bsc", "undergraduate"}):
		level = catalog.Bachelor
	case strings.Contains(strings.ToLower(p.Program), "master"):
		level = catalog.Master
	}

	var b strings.Builder
	b.WriteString("**Program Duration:**\n\n")

	if p.Major != "" {
		years := 3
		if level == catalog.Master {
			years = 1
		}
		for _, prog := range e.cat.Programs {
			if strings.EqualFold(prog.Name, p.Major) && prog.Level == level && prog.DurationYears > 0 {
				years = prog.DurationYears
				break
			}
		}
		plural := "s"
		if years == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "**%s (%s):** %d year%s\n\n", p.Major, level, years, plural)
	}

	b.WriteString("**General Program Lengths:**\n\n")
	b.WriteString("**Bachelor's Degree:** 3 years (full-time)\n")
	b.WriteString("- Year 1: Foundation courses and core fundamentals\n")
	b.WriteString("- Year 2: Intermediate courses and specialization begins\n")
	b.WriteString("- Year 3: Advanced courses, electives, and capstone project\n\n")

	b.WriteString("**Master's Degree:** 1 year (intensive)\n")
	b.WriteString("- Full-time intensive program\n")
	b.WriteString("- Focus on advanced topics and industry applications\n")
	b.WriteString("- Includes capstone project or thesis\n\n")

	b.WriteString("**Note:** All programs follow the module system:\n")
	b.WriteString("- Each module = 3 weeks\n")
	b.WriteString("- ~12 modules per year\n")
	b.WriteString("- Intensive, focused learning\n\n")

	if strings.Contains(query, "duration") || strings.Contains(query, "all") {
		if len(e.cat.Programs) > 0 {
			b.WriteString("**Available Programs:**\n\n")
			for _, prog := range e.cat.Programs {
				plural := "s"
				if prog.DurationYears == 1 {
					plural = ""
				}
				fmt.Fprintf(&b, "• %s (%s, %d year%s)\n", prog.Name, prog.Level, prog.DurationYears, plural)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("**Want to know more?** Ask about:\n")
	b.WriteString("• Specific program structure\n")
	b.WriteString("• Module breakdown\n")
	b.WriteString("• Career outcomes after graduation")

	return Response{
		Intent:       IntentProgramDuration,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func (e *Engine) handleAttendancePolicy(query string, p catalog.StudentProfile) Response {
	var b strings.Builder
	b.WriteString("I understand you're asking about attendance requirements. Let me explain what happens:\n\n")

	if strings.Contains(query, "mandatory") || strings.Contains(query, "required") {
		b.WriteString("**For MANDATORY Courses:**\n\n")
		b.WriteString("Mandatory courses are essential for your degree, and attendance is strictly enforced:\n\n")
		b.WriteString("**Critical Rules:**\n")
		b.WriteString("- 3 or more absences = AUTOMATIC FAIL (no exceptions)\n")
		b.WriteString("- Being 10 minutes late = Counts as 1 absence\n")
		b.WriteString("- Failed mandatory course = Must retake it (delays graduation)\n\n")
		b.WriteString("**What This Means:**\n")
		b.WriteString("If your mandatory course has 15 sessions, you can miss maximum 2 classes. The 3rd absence automatically fails you.\n\n")
	} else {
		b.WriteString("**General Attendance Policy:**\n\n")
		b.WriteString("**For ALL Course Types:**\n")
		b.WriteString("- 3 or more absences in any course = FAIL\n")
		b.WriteString("- 10 minutes late = 1 absence\n\n")
		b.WriteString("**Consequences of Failing:**\n")
		b.WriteString("- Mandatory course: Must retake (delays graduation, affects GPA)\n")
		b.WriteString("- Secondary course: May need to replace with another course\n")
		b.WriteString("- Audit course: Removed from transcript\n\n")
	}

	b.WriteString("**What If You Have a Valid Reason?**\n\n")
	b.WriteString("If you anticipate attendance issues due to medical emergencies, family emergencies, schedule conflicts, or other serious situations:\n\n")
	b.WriteString("**You should:**\n")
	b.WriteString("1. Contact the academic team IMMEDIATELY\n")
	b.WriteString("2. Provide documentation (medical certificate, etc.)\n")
	b.WriteString("3. Submit a concern through the Feedback tab\n")
	b.WriteString("4. Discuss alternatives (postpone, switch to audit, etc.)\n\n")

	b.WriteString("**Bottom Line:** Attendance is serious. Missing 3 classes means automatic failure. Plan ahead and communicate early if you foresee issues!\n\n")
	b.WriteString("Need help with a specific situation? Ask me \"I have an issue\" and I'll guide you through the process.")

	return Response{
		Intent:       IntentAttendancePolicy,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}

func (e *Engine) handleStudentIssues(query string, p catalog.StudentProfile) Response {
	var b strings.Builder
	b.WriteString("I'm here to help you navigate any challenges you're facing. Let me guide you through the support process.\n\n")

	switch {
	case containsAny(query, []string{"sick", "medical", "health", "hospital"}):
		b.WriteString("**Medical/Health Issue:**\n\n")
		b.WriteString("I understand health comes first. Here's what you should do:\n\n")
		b.WriteString("**Immediate Steps:**\n")
		b.WriteString("1. Get medical documentation (doctor's note, hospital certificate)\n")
		b.WriteString("2. Email your instructors ASAP about your situation\n")
		b.WriteString("3. Submit a concern through the Feedback tab (include 'Medical Issue')\n")
		b.WriteString("4. Contact the academic team: They can arrange excused absences, assignment extensions, or module postponement\n\n")
	case containsAny(query, []string{"work", "job", "schedule", "conflict"}):
		b.WriteString("**Schedule Conflict (Work/Personal):**\n\n")
		b.WriteString("Balancing work and studies is challenging. Here are your options:\n\n")
		b.WriteString("**Solutions:**\n")
		b.WriteString("1. Check for alternative time slots (morning/afternoon/evening)\n")
		b.WriteString("2. Consider switching mandatory to audit (less attendance pressure)\n")
		b.WriteString("3. Postpone the course to next module\n")
		b.WriteString("4. Discuss hybrid/flexible arrangements with academic team\n\n")
		b.WriteString("**Try asking me:**\n")
		b.WriteString("- \"Evening classes\" to see later options\n")
		b.WriteString("- \"What is audit\" to learn about flexible options\n\n")
	default:
		b.WriteString("**General Support Process:**\n\n")
		b.WriteString("Whatever your situation, we're here to help. Here's how:\n\n")
	}

	b.WriteString("**How to Get Help:**\n\n")
	b.WriteString("**1. Use the Feedback Tab**\n")
	b.WriteString("   - Choose 'Feature Requests & Course Concerns'\n")
	b.WriteString("   - Explain your situation in detail\n")
	b.WriteString("   - Submit - Academic team reviews within 48 hours\n\n")

	b.WriteString("**2. Common Situations & Solutions:**\n\n")
	b.WriteString("**Issue: Can't attend mandatory class**\n")
	b.WriteString("→ Options: Postpone, switch to secondary/audit, find alternative\n\n")
	b.WriteString("**Issue: Course too difficult**\n")
	b.WriteString("→ Options: Get tutoring, switch to beginner level, extend timeline\n\n")
	b.WriteString("**Issue: Personal/family emergency**\n")
	b.WriteString("→ Options: Temporary leave, postpone modules, flexible arrangements\n\n")

	b.WriteString("**Remember:** The earlier you communicate, the more options we have to help you succeed!\n\n")
	b.WriteString("**Need specific help?** Ask me:\n")
	b.WriteString("- \"What if I skip mandatory class\" - Understand consequences\n")
	b.WriteString("- \"How to prepare for [course name]\" - Get ready for tough courses\n")
	b.WriteString("- \"Alternative schedules\" - Find different time options")

	return Response{
		Intent:       IntentStudentIssues,
		Explanations: map[string][]string{},
		Narrative:    b.String(),
	}
}
