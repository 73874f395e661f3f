// Package score computes the multi-factor influence score used to rank
// articles before clustering and report selection.
package score

import (
	"regexp"
	"strings"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// Source weight tiers, looked up by a caller-supplied classification of the
// article's CrawlSource. Unclassified sources fall back to Unknown.
const (
	SourceWeightOfficial   = 1.0
	SourceWeightMainstream = 0.8
	SourceWeightCommercial = 0.6
	SourceWeightSocial     = 0.4
	SourceWeightUnknown    = 0.2
)

const (
	weightKeyword    = 0.65
	weightSource     = 0.15
	weightPopularity = 0.15
	weightRecency    = 0.05
)

// Scorer computes influence scores given a source_id -> weight lookup
// (populated by the caller from its own source classification), falling
// back to SourceWeightUnknown for ids it doesn't recognize.
type Scorer struct {
	SourceWeights map[int64]float64
	DefaultWeight float64
}

// NewScorer returns a Scorer with no source classifications; every source
// scores at SourceWeightUnknown until SourceWeights is populated.
func NewScorer() *Scorer {
	return &Scorer{SourceWeights: make(map[int64]float64), DefaultWeight: SourceWeightUnknown}
}

// CalculateScore returns the article's influence score in [0,100].
func (s *Scorer) CalculateScore(article *entity.Article, currentTime time.Time, keywords []string) float64 {
	keywordScore := s.keywordMatchScore(article, keywords)

	weight, ok := s.SourceWeights[article.SourceID]
	if !ok {
		weight = s.DefaultWeight
	}
	sourceScore := weight * 100

	popularityScore := popularityScore(article)

	publishTime := article.PublishTime
	if publishTime == nil {
		publishTime = &article.CreatedAt
	}
	recency := recencyScore(publishTime, currentTime)

	final := keywordScore*weightKeyword +
		sourceScore*weightSource +
		popularityScore*weightPopularity +
		recency*weightRecency

	return round2(final)
}

var wordBoundaryCache = make(map[string]*regexp.Regexp)

func wordBoundaryPattern(keyword string) *regexp.Regexp {
	if re, ok := wordBoundaryCache[keyword]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	wordBoundaryCache[keyword] = re
	return re
}

// keywordMatchScore scores title exact/word-boundary/substring matches and
// content occurrence counts, then blends in a match-ratio bonus. Absent
// keywords yield a low baseline so unrelated articles never rank high; a
// keyword list with zero matches yields a near-zero score.
func (s *Scorer) keywordMatchScore(article *entity.Article, keywords []string) float64 {
	if len(keywords) == 0 {
		return 5.0
	}

	title := strings.ToLower(article.Title)
	content := strings.ToLower(article.Content)
	combined := title + " " + content

	var totalScore float64
	matchedCount := 0

	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		if len(kwLower) < 2 {
			continue
		}

		switch {
		case strings.Contains(title, kwLower):
			switch {
			case kwLower == title:
				totalScore += 100
			case wordBoundaryPattern(kwLower).MatchString(title):
				totalScore += 85
			default:
				totalScore += 60
			}
			matchedCount++
		case strings.Contains(content, kwLower):
			occurrences := strings.Count(combined, kwLower)
			contentScore := 20.0 + float64(occurrences)*3
			if contentScore > 40 {
				contentScore = 40
			}
			totalScore += contentScore
			matchedCount++
		}
	}

	if matchedCount == 0 {
		return 1.0
	}

	avgScore := totalScore / float64(matchedCount)
	matchRatio := float64(matchedCount) / float64(len(keywords))
	matchBonus := matchRatio * 25
	score := avgScore + matchBonus
	if score > 100 {
		score = 100
	}
	return score
}

// popularityScore is a content/metadata-based proxy for engagement: base 50
// plus bonuses for content length tiers, title length, author presence, and
// a downstream-processing status bonus.
func popularityScore(article *entity.Article) float64 {
	score := 50.0

	contentLen := len(article.Content)
	switch {
	case contentLen > 2000:
		score += 20
	case contentLen > 1000:
		score += 10
	case contentLen > 500:
		score += 5
	}

	titleLen := len(article.Title)
	switch {
	case titleLen >= 20 && titleLen <= 100:
		score += 15
	case titleLen > 10:
		score += 10
	}

	if article.Author != "" {
		score += 10
	}

	switch article.Status {
	case entity.ArticleStatusSynced:
		score += 5
	case entity.ArticleStatusProcessed:
		score += 3
	}

	if score > 100 {
		score = 100
	}
	return score
}

// recencyScore rewards fresher articles on a step function over age in
// hours, normalizing both times to UTC before subtracting.
func recencyScore(publishTime *time.Time, currentTime time.Time) float64 {
	if publishTime == nil {
		return 50.0
	}
	ageHours := currentTime.UTC().Sub(publishTime.UTC()).Hours()

	switch {
	case ageHours < 24:
		return 100.0
	case ageHours < 72:
		return 80.0
	case ageHours < 168:
		return 60.0
	case ageHours < 720:
		return 40.0
	default:
		return 20.0
	}
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
