// Package rag provides BM25 keyword search over the course catalog.
// It powers related-course suggestions when rule-based ranking comes up
// empty and the "smart" recommendation mode.
package rag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	bm25 "github.com/iwilltry42/bm25-go/bm25"

	"github.com/coursewise/advisor-go/internal/catalog"
	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/stringutil"
)

// Result is one scored course from a BM25 search.
// Confidence is derived from rank position, not semantic similarity.
type Result struct {
	CourseID   string
	Name       string
	Category   string
	Score      float64 // BM25 score (higher is better)
	Rank       int     // Rank position (1-indexed)
	Confidence float32 // Rank-based confidence (0-1)
}

// Index provides keyword-based course search using the BM25 algorithm.
// Each course contributes one document built from its name, description,
// category, and skill list.
type Index struct {
	mu          sync.RWMutex
	bm25Okapi   *bm25.BM25Okapi
	docIDToMeta []docMeta
	logger      *logger.Logger
	initialized bool
}

type docMeta struct {
	id       string
	name     string
	category string
}

// NewIndex creates an empty BM25 index. Call Build before searching.
func NewIndex(log *logger.Logger) *Index {
	if log == nil {
		log = logger.New("info")
	}
	return &Index{logger: log.WithModule("rag")}
}

// Build constructs the index from the catalog. BM25 needs the full corpus
// for IDF, so any previous contents are replaced.
func (idx *Index) Build(courses []catalog.Course) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bm25Okapi = nil
	idx.docIDToMeta = nil

	if len(courses) == 0 {
		idx.initialized = true
		return nil
	}

	corpus := make([]string, 0, len(courses))
	for _, c := range courses {
		corpus = append(corpus, courseDocument(c))
		idx.docIDToMeta = append(idx.docIDToMeta, docMeta{
			id:       c.ID,
			name:     c.Name,
			category: c.Category,
		})
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to build BM25 index: %w", err)
	}
	idx.bm25Okapi = okapi
	idx.initialized = true

	idx.logger.WithField("docs", len(corpus)).Info("BM25 index built")
	return nil
}

// Search returns the topN courses matching the query, sorted by BM25
// score descending. Returns nil on an empty query or unbuilt index.
func (idx *Index) Search(query string, topN int) ([]Result, error) {
	if idx == nil {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized || idx.bm25Okapi == nil {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.bm25Okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		if score <= 0 || docID >= len(idx.docIDToMeta) {
			continue
		}
		meta := idx.docIDToMeta[docID]
		results = append(results, Result{
			CourseID: meta.id,
			Name:     meta.name,
			Category: meta.category,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	for i := range results {
		results[i].Rank = i + 1
		results[i].Confidence = rankConfidence(i + 1)
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// Related returns courses similar to the given one, excluding itself.
// The course's own document text is used as the query.
func (idx *Index) Related(c catalog.Course, topN int) ([]Result, error) {
	results, err := idx.Search(courseDocument(c), topN+1)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, topN)
	for _, r := range results {
		if r.CourseID == c.ID {
			continue
		}
		out = append(out, r)
		if len(out) == topN {
			break
		}
	}
	return out, nil
}

// IsEnabled returns true if the index has been built.
func (idx *Index) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized && idx.bm25Okapi != nil
}

// Count returns the number of indexed courses.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docIDToMeta)
}

// rankConfidence maps a BM25 rank to a bounded confidence score.
// BM25 scores are unbounded and query-dependent, so rank is the proxy.
//
// Formula: 1 / (1 + 0.05 * rank)
//   - rank 1 → 0.95
//   - rank 5 → 0.80
//   - rank 10 → 0.67
func rankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// courseDocument flattens a course into one searchable text blob.
func courseDocument(c catalog.Course) string {
	parts := []string{c.Name, c.Description, c.Category}
	parts = append(parts, c.Skills...)
	return strings.Join(parts, " ")
}

// tokenize adapts the shared tokenizer to the bm25-go callback shape.
func tokenize(text string) []string {
	return stringutil.Tokenize(text)
}
