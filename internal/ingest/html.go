package ingest

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/coursewise/advisor-go/internal/catalog"
)

// ParseCatalogHTML extracts courses from a catalog page. Each course is
// a div.course-card carrying its fields as data attributes, with the
// name and description as nested elements:
//
//	<div class="course-card" data-id="DS101" data-category="Machine Learning"
//	     data-major="Data Science" data-level="Bachelor"
//	     data-difficulty="Beginner" data-type="mandatory" data-credits="5"
//	     data-skills="python|statistics" data-slot="9:00 AM - 12:20 PM"
//	     data-lecturer="L1">
//	  <h3 class="course-name">Machine Learning Fundamentals</h3>
//	  <p class="course-desc">...</p>
//	</div>
//
// Cards without an id or name are skipped and counted.
func ParseCatalogHTML(doc *goquery.Document) ([]catalog.Course, int) {
	var courses []catalog.Course
	var skipped int

	doc.Find("div.course-card").Each(func(_ int, s *goquery.Selection) {
		c := catalog.Course{
			ID:          strings.TrimSpace(s.AttrOr("data-id", "")),
			Name:        strings.TrimSpace(s.Find(".course-name").First().Text()),
			Description: strings.TrimSpace(s.Find(".course-desc").First().Text()),
			Category:    strings.TrimSpace(s.AttrOr("data-category", "")),
			Major:       strings.TrimSpace(s.AttrOr("data-major", "")),
			Level:       strings.TrimSpace(s.AttrOr("data-level", "")),
			Difficulty:  strings.TrimSpace(s.AttrOr("data-difficulty", "")),
			Type:        catalog.CourseType(strings.ToLower(strings.TrimSpace(s.AttrOr("data-type", "")))),
			Skills:      splitSkills(s.AttrOr("data-skills", "")),
			TimeSlot:    strings.TrimSpace(s.AttrOr("data-slot", "")),
			LecturerID:  strings.TrimSpace(s.AttrOr("data-lecturer", "")),
		}
		if credits, err := strconv.Atoi(strings.TrimSpace(s.AttrOr("data-credits", ""))); err == nil {
			c.Credits = credits
		}

		if c.ID == "" || c.Name == "" {
			skipped++
			return
		}
		courses = append(courses, c)
	})

	return courses, skipped
}

func splitSkills(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
