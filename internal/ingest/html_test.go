package ingest

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/coursewise/advisor-go/internal/catalog"
)

const catalogPage = `<!DOCTYPE html>
<html><body>
<div class="catalog">
  <div class="course-card" data-id="DS101" data-category="Machine Learning"
       data-major="Data Science" data-level="Bachelor"
       data-difficulty="Beginner" data-type="mandatory" data-credits="5"
       data-skills="python|statistics" data-slot="9:00 AM - 12:20 PM"
       data-lecturer="L1">
    <h3 class="course-name">Machine Learning Fundamentals</h3>
    <p class="course-desc">Supervised learning, regression and classification.</p>
  </div>
  <div class="course-card" data-id="DS201" data-type="secondary" data-credits="bad">
    <h3 class="course-name">Deep Learning</h3>
  </div>
  <div class="course-card" data-id="">
    <h3 class="course-name">Orphan Card</h3>
  </div>
</div>
</body></html>`

func TestParseCatalogHTML(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(catalogPage))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	courses, skipped := ParseCatalogHTML(doc)
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}

	got := courses[0]
	if got.ID != "DS101" {
		t.Errorf("ID = %q, want DS101", got.ID)
	}
	if got.Name != "Machine Learning Fundamentals" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Description == "" {
		t.Error("Description should be extracted from .course-desc")
	}
	if got.Type != catalog.Mandatory {
		t.Errorf("Type = %q, want mandatory", got.Type)
	}
	if got.Credits != 5 {
		t.Errorf("Credits = %d, want 5", got.Credits)
	}
	if len(got.Skills) != 2 {
		t.Errorf("Skills = %v, want 2 entries", got.Skills)
	}
	if got.TimeSlot != catalog.TimeSlots[0] {
		t.Errorf("TimeSlot = %q", got.TimeSlot)
	}

	// Unparseable credits stay zero rather than failing the card
	if courses[1].Credits != 0 {
		t.Errorf("Credits = %d, want 0 for invalid attribute", courses[1].Credits)
	}
}

func TestParseCatalogHTML_NoCards(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	courses, skipped := ParseCatalogHTML(doc)
	if len(courses) != 0 || skipped != 0 {
		t.Errorf("got %d courses (skipped %d), want none", len(courses), skipped)
	}
}
