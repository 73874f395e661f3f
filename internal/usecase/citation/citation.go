// Package citation tracks which articles a generated report cites, renders
// the final "## References" block, and validates inline [n] markers against
// the registered reference set.
package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// Reference is one article cited by a report, indexed in the order it was
// first registered.
type Reference struct {
	ArticleID   int64
	Index       int // 1-based
	Title       string
	URL         string
	SourceName  string
	Author      string
	PublishTime *time.Time
	Snippet     string
	citations   int
}

// Manager assigns citation indices to articles in order of first
// registration and renders the reference list a generated report appends.
// Not safe for concurrent use; a report is assembled by one Agent.Generate
// call at a time.
type Manager struct {
	order []int64
	refs  map[int64]*Reference
}

// NewManager returns an empty citation tracker.
func NewManager() *Manager {
	return &Manager{refs: make(map[int64]*Reference)}
}

// Register adds article as a reference if it is not already registered,
// returning its 1-based citation index. Registering the same article again
// increments its citation count and returns the existing index.
func (m *Manager) Register(articleID int64, title, url, sourceName, author string, publishTime *time.Time, snippet string) int {
	if existing, ok := m.refs[articleID]; ok {
		existing.citations++
		return existing.Index
	}
	ref := &Reference{
		ArticleID:   articleID,
		Index:       len(m.order) + 1,
		Title:       title,
		URL:         url,
		SourceName:  sourceName,
		Author:      author,
		PublishTime: publishTime,
		Snippet:     snippet,
		citations:   1,
	}
	m.refs[articleID] = ref
	m.order = append(m.order, articleID)
	return ref.Index
}

// RegisterArticle is a convenience wrapper around Register for entity types,
// using sourceName as supplied by the caller since Article does not carry
// its source's display name.
func (m *Manager) RegisterArticle(a *entity.Article, sourceName string) int {
	return m.Register(a.ID, a.Title, a.URL, sourceName, a.Author, a.PublishTime, summarize(a.Content))
}

func summarize(content string) string {
	runes := []rune(strings.TrimSpace(content))
	const maxLen = 180
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen]) + "..."
}

// References returns every registered reference in citation order.
func (m *Manager) References() []*Reference {
	out := make([]*Reference, len(m.order))
	for i, id := range m.order {
		out[i] = m.refs[id]
	}
	return out
}

// Count returns the number of distinct registered references.
func (m *Manager) Count() int {
	return len(m.order)
}

var parenMarkerPattern = regexp.MustCompile(`\((\d+)\)`)
var cjkMarkerPattern = regexp.MustCompile(`【(\d+)】`)

// NormalizeMarkers rewrites (n) and 【n】 inline citation markers to the
// canonical [n] form, so a model that ignores formatting instructions still
// produces markers Validate and RenderReferencesBlock can reason about.
func NormalizeMarkers(text string) string {
	text = parenMarkerPattern.ReplaceAllString(text, "[$1]")
	text = cjkMarkerPattern.ReplaceAllString(text, "[$1]")
	return text
}

var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

// ValidationResult reports discrepancies between a report's inline [n]
// markers and its registered reference set.
type ValidationResult struct {
	Valid           bool
	CitedIndices    []int
	InvalidIndices  []int // cited but out of [1, TotalReferences] range
	UncitedIndices  []int // registered but never cited in the text
	TotalReferences int
}

// Validate scans text (after NormalizeMarkers) for [n] markers and reports
// invalid and uncited indices relative to the registered reference set.
func (m *Manager) Validate(text string) ValidationResult {
	cited := make(map[int]bool)
	for _, match := range citationMarkerPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		cited[n] = true
	}

	total := len(m.order)
	var citedList, invalid, uncited []int
	for n := range cited {
		citedList = append(citedList, n)
		if n < 1 || n > total {
			invalid = append(invalid, n)
		}
	}
	for n := 1; n <= total; n++ {
		if !cited[n] {
			uncited = append(uncited, n)
		}
	}
	sort.Ints(citedList)
	sort.Ints(invalid)
	sort.Ints(uncited)

	return ValidationResult{
		Valid:           len(invalid) == 0,
		CitedIndices:    citedList,
		InvalidIndices:  invalid,
		UncitedIndices:  uncited,
		TotalReferences: total,
	}
}

// RenderReferencesBlock renders the final "## References" Markdown section
// in registration order.
func (m *Manager) RenderReferencesBlock() string {
	refs := m.References()
	if len(refs) == 0 {
		return "## References\n\nNo references cited."
	}

	var b strings.Builder
	b.WriteString("## References\n\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "%d. **%s**\n", ref.Index, ref.Title)
		if ref.Author != "" {
			fmt.Fprintf(&b, "   Author: %s\n", ref.Author)
		}
		if ref.SourceName != "" {
			fmt.Fprintf(&b, "   Source: %s\n", ref.SourceName)
		}
		if ref.PublishTime != nil {
			fmt.Fprintf(&b, "   Published: %s\n", ref.PublishTime.UTC().Format("2006-01-02 15:04"))
		}
		if ref.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", ref.URL)
		}
		if ref.Snippet != "" {
			fmt.Fprintf(&b, "   Excerpt: %s\n", ref.Snippet)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToEntities converts the registered references for reportID into
// persistence rows in citation order, ready for ReferenceRepository.CreateBatch.
func (m *Manager) ToEntities(reportID int64) []*entity.Reference {
	refs := m.References()
	out := make([]*entity.Reference, len(refs))
	for i, ref := range refs {
		var snippet *string
		if ref.Snippet != "" {
			s := ref.Snippet
			snippet = &s
		}
		out[i] = &entity.Reference{
			ArticleID:     ref.ArticleID,
			ReportID:      reportID,
			CitationIndex: ref.Index,
			Snippet:       snippet,
		}
	}
	return out
}
