// Package main provides the catalog consistency verification tool. It loads
// the catalog from the database and checks referential integrity, value
// domains, and duplicates, exiting non-zero when any check fails.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coursewise/advisor-go/internal/catalog"
	"github.com/coursewise/advisor-go/internal/config"
	"github.com/coursewise/advisor-go/internal/storage"
)

type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	fmt.Println("Catalog Consistency Verification")
	fmt.Println("================================")

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cat, err := db.LoadCatalog(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	var results []verifyResult
	results = append(results, verifyCourses(cat)...)
	results = append(results, verifyLecturerRefs(cat)...)
	results = append(results, verifyPrograms(cat)...)

	fmt.Println("\nResults:")
	fmt.Println("--------")

	failed := 0
	for _, r := range results {
		status := "FAIL"
		if r.passed {
			status = "ok  "
		} else {
			failed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.name, r.message)
	}

	fmt.Printf("\nSummary: %d checks, %d failed\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func verifyCourses(cat *catalog.Catalog) []verifyResult {
	var results []verifyResult

	results = append(results, verifyResult{
		name:    "Catalog Non-Empty",
		passed:  len(cat.Courses) > 0,
		message: fmt.Sprintf("%d courses", len(cat.Courses)),
	})

	seen := make(map[string]bool, len(cat.Courses))
	var dupes []string
	for _, c := range cat.Courses {
		if seen[c.ID] {
			dupes = append(dupes, c.ID)
		}
		seen[c.ID] = true
	}
	results = append(results, verifyResult{
		name:    "Unique Course IDs",
		passed:  len(dupes) == 0,
		message: dupeMessage(dupes),
	})

	validSlots := map[string]bool{"": true}
	for _, slot := range catalog.TimeSlots {
		validSlots[slot] = true
	}
	var badSlots []string
	for _, c := range cat.Courses {
		if !validSlots[c.TimeSlot] {
			badSlots = append(badSlots, c.ID)
		}
	}
	results = append(results, verifyResult{
		name:    "Valid Time Slots",
		passed:  len(badSlots) == 0,
		message: dupeMessage(badSlots),
	})

	var badTypes []string
	for _, c := range cat.Courses {
		switch c.Type {
		case catalog.Mandatory, catalog.Secondary, catalog.Audit, "":
		default:
			badTypes = append(badTypes, c.ID)
		}
	}
	results = append(results, verifyResult{
		name:    "Valid Course Types",
		passed:  len(badTypes) == 0,
		message: dupeMessage(badTypes),
	})

	var badCredits []string
	for _, c := range cat.Courses {
		if c.Credits < 0 || c.Credits > 30 {
			badCredits = append(badCredits, c.ID)
		}
	}
	results = append(results, verifyResult{
		name:    "Credit Range",
		passed:  len(badCredits) == 0,
		message: dupeMessage(badCredits),
	})

	return results
}

func verifyLecturerRefs(cat *catalog.Catalog) []verifyResult {
	known := make(map[string]bool, len(cat.Lecturers))
	for _, l := range cat.Lecturers {
		known[l.ID] = true
	}

	var dangling []string
	for _, c := range cat.Courses {
		if c.LecturerID != "" && !known[c.LecturerID] {
			dangling = append(dangling, fmt.Sprintf("%s->%s", c.ID, c.LecturerID))
		}
	}

	return []verifyResult{{
		name:    "Lecturer References",
		passed:  len(dangling) == 0,
		message: dupeMessage(dangling),
	}}
}

func verifyPrograms(cat *catalog.Catalog) []verifyResult {
	var bad []string
	for _, p := range cat.Programs {
		if p.DurationYears <= 0 || p.DurationYears > 8 {
			bad = append(bad, p.ID)
		}
		if p.Level != catalog.Bachelor && p.Level != catalog.Master && p.Level != "" {
			bad = append(bad, p.ID)
		}
	}

	return []verifyResult{{
		name:    "Program Records",
		passed:  len(bad) == 0,
		message: dupeMessage(bad),
	}}
}

func dupeMessage(ids []string) string {
	if len(ids) == 0 {
		return "all good"
	}
	if len(ids) > 10 {
		ids = ids[:10]
	}
	return "offending: " + strings.Join(ids, ", ")
}
