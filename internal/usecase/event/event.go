// Package event turns article clusters into titled, scored, ranked events
// for the Report Agent's extracting_events stage.
package event

import (
	"fmt"
	"sort"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/usecase/keyword"
)

// MinEventsFloor is the minimum number of events SelectTopEvents returns
// even when the caller asks for fewer, matching the original system's
// "never trim below 15" selection floor.
const MinEventsFloor = 15

const (
	tfidfWeight     = 0.6
	textRankWeight  = 0.4
	sizeWeight      = 0.4
	lengthWeight    = 0.2
	keywordWeight   = 0.2
	titleWeight     = 0.2
	combinedTFIDF   = 0.6
	combinedKeyword = 0.4
	relevanceFloor  = 0.2
	summaryRuneCap  = 200
	topKeywordsCap  = 5
)

// Cluster is a group of near-duplicate articles the Aggregator or the
// Report Agent's own clustering step has identified as covering one event.
// Representative is the longest/most complete article in the group.
type Cluster struct {
	Representative *entity.Article
	Duplicates     []*entity.Article
}

func (c Cluster) articles() []*entity.Article {
	return append([]*entity.Article{c.Representative}, c.Duplicates...)
}

func (c Cluster) combinedText() string {
	var b strings.Builder
	for _, a := range c.articles() {
		b.WriteString(a.Title)
		b.WriteString(". ")
		b.WriteString(a.Content)
		b.WriteString(" ")
	}
	return b.String()
}

// Event is one extracted news event derived from a cluster.
type Event struct {
	Title            string
	Summary          string
	Keywords         []string
	ArticleIDs       []int64
	ArticleCount     int
	ContentLength    int
	TFIDFImportance  float64
	KeywordRelevance float64
	Importance       float64
	Cluster          Cluster
}

// ExtractFromClusters derives one Event per cluster: TF-IDF is fit once
// across every cluster's combined text (so document frequency reflects the
// whole reporting window), TextRank runs per-cluster since it needs no
// corpus, and the two rankings are merged 0.6/0.4 into the event's keyword
// set, mirroring the TF-IDF/TextRank keyword merge the spec names.
func ExtractFromClusters(clusters []Cluster) []*Event {
	if len(clusters) == 0 {
		return nil
	}

	texts := make([]string, len(clusters))
	for i, c := range clusters {
		texts[i] = c.combinedText()
	}
	tfidf := keyword.Fit(texts)

	events := make([]*Event, len(clusters))
	for i, c := range clusters {
		tfidfTerms := tfidf.TopTerms(i, topKeywordsCap*2)
		textRankTerms := keyword.TextRank(texts[i], topKeywordsCap*2)
		merged := keyword.MergeWeighted(tfidfTerms, tfidfWeight, textRankTerms, textRankWeight, topKeywordsCap)

		keywords := make([]string, len(merged))
		for j, t := range merged {
			keywords[j] = t.Word
		}

		articles := c.articles()
		articleIDs := make([]int64, len(articles))
		contentLen := 0
		for j, a := range articles {
			articleIDs[j] = a.ID
			contentLen += len([]rune(a.Content))
		}

		tfidfScore := 0.0
		for _, t := range tfidfTerms {
			tfidfScore += t.Score
		}

		events[i] = &Event{
			Title:           titleFromKeywords(keywords, c.Representative.Title),
			Summary:         summaryFromContent(c.Representative.Content),
			Keywords:        keywords,
			ArticleIDs:      articleIDs,
			ArticleCount:    len(articles),
			ContentLength:   contentLen,
			TFIDFImportance: tfidfScore,
			Cluster:         c,
		}
	}
	return events
}

func titleFromKeywords(keywords []string, fallback string) string {
	if len(keywords) == 0 {
		return fallback
	}
	n := len(keywords)
	if n > 3 {
		n = 3
	}
	return strings.Join(keywords[:n], " · ")
}

func summaryFromContent(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= summaryRuneCap {
		return string(runes)
	}
	return string(runes[:summaryRuneCap]) + "..."
}

// CalculateImportance scores an event by cluster size, content length,
// keyword quality, and title quality, then blends in AI-keyword relevance
// when aiKeywords is non-empty, matching the 0.6 TF-IDF / 0.4 relevance
// split used when a topic seed is available.
func CalculateImportance(e *Event, maxClusterSize, maxContentLength int, aiKeywords []string) float64 {
	sizeScore := ratio(float64(e.ArticleCount), float64(maxClusterSize))
	lengthScore := ratio(float64(e.ContentLength), float64(maxContentLength))
	keywordScore := ratio(float64(len(e.Keywords)), float64(topKeywordsCap))
	titleScore := titleQuality(e.Title)

	base := sizeWeight*sizeScore + lengthWeight*lengthScore + keywordWeight*keywordScore + titleWeight*titleScore
	e.TFIDFImportance = base

	if len(aiKeywords) == 0 {
		e.Importance = base
		return base
	}

	relevance := keywordRelevance(e.Keywords, aiKeywords)
	e.KeywordRelevance = relevance
	e.Importance = combinedTFIDF*base + combinedKeyword*relevance
	return e.Importance
}

func ratio(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	r := value / max
	if r > 1 {
		return 1
	}
	return r
}

func titleQuality(title string) float64 {
	n := len([]rune(strings.TrimSpace(title)))
	switch {
	case n == 0:
		return 0
	case n < 10:
		return 0.5
	case n > 120:
		return 0.7
	default:
		return 1.0
	}
}

func keywordRelevance(eventKeywords, aiKeywords []string) float64 {
	if len(eventKeywords) == 0 || len(aiKeywords) == 0 {
		return 0
	}
	ai := make(map[string]bool, len(aiKeywords))
	for _, k := range aiKeywords {
		ai[strings.ToLower(strings.TrimSpace(k))] = true
	}
	hits := 0
	for _, k := range eventKeywords {
		if ai[strings.ToLower(strings.TrimSpace(k))] {
			hits++
		}
	}
	return float64(hits) / float64(len(eventKeywords))
}

// SelectTopEvents scores every cluster-derived event, optionally filters out
// events with low relevance to aiKeywords, and returns the top
// max(MinEventsFloor, maxEvents) by importance, descending.
func SelectTopEvents(clusters []Cluster, maxEvents int, aiKeywords []string) []*Event {
	events := ExtractFromClusters(clusters)
	if len(events) == 0 {
		return nil
	}

	maxClusterSize, maxContentLength := 1, 1
	for _, e := range events {
		if e.ArticleCount > maxClusterSize {
			maxClusterSize = e.ArticleCount
		}
		if e.ContentLength > maxContentLength {
			maxContentLength = e.ContentLength
		}
	}

	filtered := events[:0:0]
	for _, e := range events {
		CalculateImportance(e, maxClusterSize, maxContentLength, aiKeywords)
		if len(aiKeywords) > 0 && e.KeywordRelevance < relevanceFloor {
			continue
		}
		filtered = append(filtered, e)
	}
	if len(filtered) == 0 {
		// Every cluster failed the relevance floor; fall back to the full
		// set rather than returning an empty report.
		filtered = events
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Importance > filtered[j].Importance })

	limit := maxEvents
	if limit < MinEventsFloor {
		limit = MinEventsFloor
	}
	if limit > len(filtered) {
		limit = len(filtered)
	}
	return filtered[:limit]
}

// FormatArticleIDs renders an event's source article ids for diagnostics
// and prompt-building.
func FormatArticleIDs(e *Event) string {
	ids := make([]string, len(e.ArticleIDs))
	for i, id := range e.ArticleIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(ids, ",")
}
