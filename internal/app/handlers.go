// This file contains the /api/v1 HTTP handlers.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursewise/advisor-go/internal/advisor"
	"github.com/coursewise/advisor-go/internal/catalog"
	"github.com/coursewise/advisor-go/internal/config"
	"github.com/coursewise/advisor-go/internal/ctxutil"
	apperrors "github.com/coursewise/advisor-go/internal/errors"
	"github.com/coursewise/advisor-go/internal/genai"
	"github.com/coursewise/advisor-go/internal/schedule"
	"github.com/coursewise/advisor-go/internal/session"
)

// maxLimit caps the number of courses any single request can ask for.
const maxLimit = 20

// profilePayload is the wire form of a student profile. All fields are
// optional; a student_id with no course lists pulls enrollment history
// from the database.
type profilePayload struct {
	StudentID       string   `json:"student_id"`
	Major           string   `json:"major"`
	Program         string   `json:"program"`
	CareerGoal      string   `json:"career_goal"`
	ExperienceLevel string   `json:"experience_level"`
	Completed       []string `json:"completed"`
	Enrolled        []string `json:"enrolled"`
}

func (p profilePayload) isZero() bool {
	return p.StudentID == "" && p.Major == "" && p.Program == "" &&
		p.CareerGoal == "" && p.ExperienceLevel == "" &&
		len(p.Completed) == 0 && len(p.Enrolled) == 0
}

func (p profilePayload) toProfile() catalog.StudentProfile {
	return catalog.StudentProfile{
		StudentID:       p.StudentID,
		Major:           p.Major,
		Program:         p.Program,
		CareerGoal:      p.CareerGoal,
		ExperienceLevel: p.ExperienceLevel,
		Completed:       p.Completed,
		Enrolled:        p.Enrolled,
	}
}

// resolveProfile converts the payload and, when a student id is given
// without explicit course lists, fills them from stored enrollments.
func (a *Application) resolveProfile(ctx context.Context, p profilePayload) catalog.StudentProfile {
	profile := p.toProfile()
	if profile.StudentID == "" || len(profile.Completed) > 0 || len(profile.Enrolled) > 0 {
		return profile
	}

	completed, enrolled, err := a.db.StudentCourseIDs(ctx, profile.StudentID)
	if err != nil {
		a.logger.WithError(err).WithField("student_id", profile.StudentID).
			Warn("Failed to load enrollment history")
		return profile
	}
	profile.Completed = completed
	profile.Enrolled = enrolled
	return profile
}

// courseView is the wire form of a catalog course.
type courseView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Major      string   `json:"major"`
	Level      string   `json:"level"`
	Difficulty string   `json:"difficulty"`
	Type       string   `json:"type"`
	Credits    int      `json:"credits"`
	Skills     []string `json:"skills,omitempty"`
	TimeSlot   string   `json:"time_slot,omitempty"`
	Lecturer   string   `json:"lecturer,omitempty"`
}

func (a *Application) courseView(c catalog.Course) courseView {
	v := courseView{
		ID:         c.ID,
		Name:       c.Name,
		Category:   c.Category,
		Major:      c.Major,
		Level:      c.Level,
		Difficulty: c.Difficulty,
		Type:       string(c.Type),
		Credits:    c.Credits,
		Skills:     c.Skills,
		TimeSlot:   c.TimeSlot,
	}
	if lect, ok := a.engine.Lecturer(c.ID); ok {
		v.Lecturer = lect.Name
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// classifyIntent returns the intent label and expanded query for a raw
// student question, without running the full advising pipeline.
func (a *Application) classifyIntent(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Query == "" {
		badRequest(c, "query is required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intent":         string(advisor.Classify(req.Query)),
		"expanded_query": advisor.ExpandQuery(req.Query),
	})
}

// recommend ranks catalog courses for a profile and query. Mode "smart"
// uses BM25 keyword search; the default mode uses rule-based scoring.
func (a *Application) recommend(c *gin.Context) {
	var req struct {
		Profile profilePayload `json:"profile"`
		Query   string         `json:"query"`
		Limit   int            `json:"limit"`
		Mode    string         `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	limit := clampLimit(req.Limit, a.cfg.MaxRecommendations)
	profile := a.resolveProfile(c.Request.Context(), req.Profile)

	if req.Mode == "smart" && a.ragIndex.IsEnabled() {
		a.recommendSmart(c, req.Query, limit)
		return
	}

	expanded := advisor.ExpandQuery(req.Query)
	ranked := advisor.RankCourses(a.catalog.Courses, profile, expanded)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	type scoredCourse struct {
		courseView
		Score int `json:"score"`
	}
	courses := make([]scoredCourse, 0, len(ranked))
	for _, course := range ranked {
		courses = append(courses, scoredCourse{
			courseView: a.courseView(course),
			Score:      advisor.Score(course, profile, expanded),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":    "ranked",
		"courses": courses,
	})
}

// recommendSmart serves the BM25 branch of recommend.
func (a *Application) recommendSmart(c *gin.Context, query string, limit int) {
	if query == "" {
		badRequest(c, "query is required for smart mode")
		return
	}

	results, err := a.ragIndex.Search(advisor.ExpandQuery(query), limit)
	if err != nil {
		a.logger.WithError(err).Warn("BM25 search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	type smartCourse struct {
		courseView
		Score      float64 `json:"score"`
		Rank       int     `json:"rank"`
		Confidence float32 `json:"confidence"`
	}
	courses := make([]smartCourse, 0, len(results))
	for _, r := range results {
		course, ok := a.catalog.CourseByID(r.CourseID)
		if !ok {
			continue
		}
		courses = append(courses, smartCourse{
			courseView: a.courseView(course),
			Score:      r.Score,
			Rank:       r.Rank,
			Confidence: r.Confidence,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":    "smart",
		"courses": courses,
	})
}

// moduleView is the wire form of a planned module.
type moduleView struct {
	Name         string              `json:"name"`
	Number       int                 `json:"number"`
	Start        time.Time           `json:"start"`
	End          time.Time           `json:"end"`
	TotalCredits int                 `json:"total_credits"`
	Description  string              `json:"description,omitempty"`
	Courses      []scheduledView     `json:"courses"`
	Conflicts    []schedule.Conflict `json:"conflicts,omitempty"`
}

type scheduledView struct {
	courseView
	Slot int `json:"slot"`
}

// generateSchedule plans consecutive modules for a student profile.
func (a *Application) generateSchedule(c *gin.Context) {
	var req struct {
		Profile profilePayload `json:"profile"`
		Modules int            `json:"modules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile := a.resolveProfile(c.Request.Context(), req.Profile)
	modules := a.synthesizer.Generate(profile, req.Modules)

	views := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		view := moduleView{
			Name:         m.Name,
			Number:       m.Number,
			Start:        m.Start,
			End:          m.End,
			TotalCredits: m.TotalCredits,
			Description:  m.Description,
			Conflicts:    schedule.ModuleConflicts(m),
		}
		for _, sc := range m.Courses {
			view.Courses = append(view.Courses, scheduledView{
				courseView: a.courseView(sc.Course),
				Slot:       sc.Slot,
			})
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"modules": views})
}

// checkConflicts has two forms. With candidate_id it validates one course
// against an enrolled set and suggests alternative slots. With course_ids
// alone it reports every clashing pair in the list.
func (a *Application) checkConflicts(c *gin.Context) {
	var req struct {
		CandidateID string   `json:"candidate_id"`
		Enrolled    []string `json:"enrolled"`
		CourseIDs   []string `json:"course_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.CandidateID != "" {
		a.checkCandidateConflict(c, req.CandidateID, req.Enrolled)
		return
	}

	if len(req.CourseIDs) == 0 {
		badRequest(c, "candidate_id or course_ids is required")
		return
	}

	courses := a.lookupCourses(req.CourseIDs)
	c.JSON(http.StatusOK, gin.H{
		"conflicts": schedule.CheckConflicts(courses),
	})
}

func (a *Application) checkCandidateConflict(c *gin.Context, candidateID string, enrolledIDs []string) {
	candidate, ok := a.catalog.CourseByID(candidateID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidate course not found"})
		return
	}

	enrolled := a.lookupCourses(enrolledIDs)
	hasConflict, conflicting := schedule.CheckConflict(enrolled, candidate)

	resp := gin.H{
		"candidate":    a.courseView(candidate),
		"has_conflict": hasConflict,
	}
	if hasConflict {
		excluded := []string{candidate.TimeSlot}
		resp["conflicting"] = conflicting
		resp["warning"] = schedule.ConflictWarning(conflicting, candidate.Name)
		resp["alternative_slots"] = schedule.AlternativeSlots(excluded)
	}
	c.JSON(http.StatusOK, resp)
}

// lookupCourses resolves course ids against the catalog, skipping unknowns.
func (a *Application) lookupCourses(ids []string) []catalog.Course {
	courses := make([]catalog.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := a.catalog.CourseByID(id); ok {
			courses = append(courses, course)
		}
	}
	return courses
}

// advise runs the full advising pipeline: intent classification, course
// ranking, rule-based narrative, and optional LLM rephrasing. With a
// session_id the exchange is appended to conversation history.
func (a *Application) advise(c *gin.Context) {
	var req struct {
		SessionID string         `json:"session_id"`
		Profile   profilePayload `json:"profile"`
		Query     string         `json:"query"`
		Limit     int            `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Query == "" {
		badRequest(c, "query is required")
		return
	}

	ctx := c.Request.Context()

	var sess *session.Session
	if req.SessionID != "" {
		s, err := a.sessions.Get(req.SessionID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		sess = s
		ctx = ctxutil.WithSessionID(ctx, sess.ID)
	}

	profile := a.resolveProfile(ctx, req.Profile)
	if sess != nil && req.Profile.isZero() {
		profile = sess.Profile
	}
	if profile.StudentID != "" {
		ctx = ctxutil.WithStudentID(ctx, profile.StudentID)
	}

	limit := clampLimit(req.Limit, a.cfg.MaxRecommendations)

	start := time.Now()
	resp := a.engine.Respond(profile, req.Query, limit)

	narrative, source := a.narrate(ctx, c, sess, profile, req.Query, resp)

	a.metrics.RecordQuery(string(resp.Intent), time.Since(start).Seconds())
	if sess != nil {
		a.sessions.RecordExchange(sess, req.Query, string(resp.Intent), narrative)
	}

	courses := make([]courseView, 0, len(resp.Courses))
	for _, course := range resp.Courses {
		courses = append(courses, a.courseView(course))
	}

	out := gin.H{
		"intent":           string(resp.Intent),
		"narrative":        narrative,
		"narrative_source": source,
		"courses":          courses,
	}
	if len(resp.Explanations) > 0 {
		out["explanations"] = resp.Explanations
	}
	if sess != nil {
		out["session_id"] = sess.ID
	}
	c.JSON(http.StatusOK, out)
}

// narrate rephrases the rule-based narrative with the LLM when one is
// configured and the caller is within its rate budget. Failures fall back
// to the rule-based text; advising never degrades on narrator errors.
func (a *Application) narrate(ctx context.Context, c *gin.Context, sess *session.Session, profile catalog.StudentProfile, query string, resp advisor.Response) (string, string) {
	if a.narrator == nil || resp.Narrative == "" {
		return resp.Narrative, "rules"
	}

	key := c.ClientIP()
	if sess != nil {
		key = sess.ID
	}
	if !a.narratorLimiter.Allow(key) {
		a.logger.WithField("key", key).Debug("Narrator rate limit reached")
		return resp.Narrative, "rules"
	}

	names := make([]string, 0, len(resp.Courses))
	for _, course := range resp.Courses {
		names = append(names, course.Name)
	}

	// Detach from the request context so a client disconnect does not
	// cancel a narration that is about to populate the cache. Tracing
	// values survive for log correlation.
	callCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), config.NarratorCall)
	defer cancel()

	narration, err := a.narrator.Narrate(callCtx, genai.NarrationRequest{
		Query:         query,
		Intent:        string(resp.Intent),
		Major:         profile.Major,
		Program:       profile.Program,
		CareerGoal:    profile.CareerGoal,
		CourseNames:   names,
		RuleNarrative: resp.Narrative,
	})
	if err != nil || narration == nil || narration.Text == "" {
		if err != nil {
			a.logger.WithError(err).Debug("Narration failed, keeping rule-based text")
		}
		return resp.Narrative, "rules"
	}

	if sess != nil {
		a.sessions.RecordNarratorCall(sess)
	}
	return narration.Text, "llm"
}

// createSession starts an advising conversation and returns its id.
func (a *Application) createSession(c *gin.Context) {
	var req struct {
		Profile profilePayload `json:"profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile := a.resolveProfile(c.Request.Context(), req.Profile)
	sess := a.sessions.Create(profile)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (a *Application) getSession(c *gin.Context) {
	sess, err := a.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	type turnView struct {
		Role   string    `json:"role"`
		Text   string    `json:"text"`
		Intent string    `json:"intent,omitempty"`
		At     time.Time `json:"at"`
	}
	history := sess.History()
	turns := make([]turnView, 0, len(history))
	for _, t := range history {
		turns = append(turns, turnView{
			Role:   string(t.Role),
			Text:   t.Text,
			Intent: t.Intent,
			At:     t.At,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     sess.ID,
		"created_at":     sess.CreatedAt,
		"queries":        sess.Queries(),
		"narrator_calls": sess.NarratorCalls(),
		"history":        turns,
	})
}

func (a *Application) deleteSession(c *gin.Context) {
	a.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// usage reports aggregate session and narrator consumption.
func (a *Application) usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": a.sessions.Stats(),
		"narrator": gin.H{
			"enabled":      a.narrator != nil && a.narrator.IsEnabled(),
			"active_users": a.narratorLimiter.GetActiveCount(),
		},
	})
}
