// Package aggregate implements the core-event aggregation pipeline: fetch a
// time window of articles, score them, deduplicate by SimHash clustering,
// and narrow to a top set, sharding the work when the window is large.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/score"
)

const (
	// ShardThreshold is the article count above which aggregation shards
	// the window instead of scoring and clustering it as one batch.
	ShardThreshold = 5000
	// StageOneLimit caps the score-ranked candidate set handed to AI selection.
	StageOneLimit = 100
	// StageTwoLimit is the final core-event count when AI selection narrows it.
	StageTwoLimit = 20
	// SimhashThreshold is the near-duplicate cutoff used by clustering.
	SimhashThreshold = simhash.DefaultThreshold
	// fetchLimit bounds the initial time-window query; windows larger than
	// this are truncated, which is the shard path's job to avoid in practice.
	fetchLimit = 50000
)

// AISelector narrows a candidate set to the most newsworthy subset,
// returning the ids it selected. A nil AISelector (or one that errors)
// falls back to score order, never blocking aggregation on an LLM outage.
type AISelector func(ctx context.Context, candidates []Summary, limit int) ([]int64, error)

// Summary is the compact representation handed to an AISelector.
type Summary struct {
	ID          int64
	Title       string
	Summary     string
	PublishTime *time.Time
	SourceID    int64
	Score       float64
}

// Aggregator runs aggregate_core_events against the Store.
type Aggregator struct {
	Articles repository.ArticleRepository
	Scorer   *score.Scorer
	Cluster  *simhash.Cluster
}

// New returns an Aggregator wired to the given article store, with a
// default scorer and a 64-bit SimHash clusterer at SimhashThreshold.
func New(articles repository.ArticleRepository) *Aggregator {
	return &Aggregator{
		Articles: articles,
		Scorer:   score.NewScorer(),
		Cluster:  &simhash.Cluster{Bits: 64, Threshold: SimhashThreshold, TokenType: simhash.TokenWord},
	}
}

// TimeRange selects the aggregation window: "week" looks back 7 days,
// anything else (conventionally "month") looks back 30.
type TimeRange string

const (
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
)

func (r TimeRange) days() int {
	if r == TimeRangeWeek {
		return 7
	}
	return 30
}

// AggregateCoreEvents fetches the window, scores every article, removes
// near-duplicates via SimHash clustering, and returns the core-event set:
// up to StageOneLimit by score, optionally narrowed further to
// StageTwoLimit by aiSelector.
func (a *Aggregator) AggregateCoreEvents(ctx context.Context, timeRange TimeRange, sourceIDs []int64, keywords []string, aiSelector AISelector) ([]*entity.Article, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -timeRange.days())

	articles, err := a.Articles.ListByTimeRange(ctx, cutoff, time.Now().UTC(), fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("AggregateCoreEvents: fetch: %w", err)
	}
	articles = filterBySource(articles, sourceIDs)
	if len(articles) == 0 {
		return nil, nil
	}

	if len(articles) > ShardThreshold {
		return a.aggregateSharded(ctx, articles, cutoff, keywords, aiSelector)
	}
	return a.aggregateStandard(ctx, articles, keywords, aiSelector)
}

func filterBySource(articles []*entity.Article, sourceIDs []int64) []*entity.Article {
	if len(sourceIDs) == 0 {
		return articles
	}
	allow := make(map[int64]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		allow[id] = true
	}
	out := articles[:0]
	for _, a := range articles {
		if allow[a.SourceID] {
			out = append(out, a)
		}
	}
	return out
}

type scored struct {
	article *entity.Article
	score   float64
}

// aggregateStandard scores, clusters, dedups, and ranks a batch small
// enough to process in one pass (< ShardThreshold articles).
func (a *Aggregator) aggregateStandard(ctx context.Context, articles []*entity.Article, keywords []string, aiSelector AISelector) ([]*entity.Article, error) {
	now := time.Now().UTC()
	scoredArticles := make([]scored, len(articles))
	for i, art := range articles {
		scoredArticles[i] = scored{article: art, score: a.Scorer.CalculateScore(art, now, keywords)}
	}

	deduped := a.dedup(scoredArticles)

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].score > deduped[j].score })
	if len(deduped) > StageOneLimit {
		deduped = deduped[:StageOneLimit]
	}

	return a.selectFinal(ctx, deduped, aiSelector)
}

// aggregateSharded handles windows above ShardThreshold by splitting into
// per-source shards (or per-day shards, when there are too few sources to
// spread the load), running the standard pipeline per shard, keeping each
// shard's top 10, then re-clustering across shards before the final cut.
func (a *Aggregator) aggregateSharded(ctx context.Context, articles []*entity.Article, cutoff time.Time, keywords []string, aiSelector AISelector) ([]*entity.Article, error) {
	shards := shardBySource(articles)
	if len(shards) < 3 {
		shards = shardByDay(articles, cutoff)
	}

	now := time.Now().UTC()
	var candidates []scored
	for _, shardArticles := range shards {
		scoredArticles := make([]scored, len(shardArticles))
		for i, art := range shardArticles {
			scoredArticles[i] = scored{article: art, score: a.Scorer.CalculateScore(art, now, keywords)}
		}
		deduped := a.dedup(scoredArticles)
		sort.Slice(deduped, func(i, j int) bool { return deduped[i].score > deduped[j].score })
		if len(deduped) > 10 {
			deduped = deduped[:10]
		}
		candidates = append(candidates, deduped...)
	}

	crossDeduped := a.dedup(candidates)
	sort.Slice(crossDeduped, func(i, j int) bool { return crossDeduped[i].score > crossDeduped[j].score })
	if len(crossDeduped) > StageOneLimit {
		crossDeduped = crossDeduped[:StageOneLimit]
	}

	return a.selectFinal(ctx, crossDeduped, aiSelector)
}

// dedup clusters by SimHash over "title. first-500-chars-of-content" and
// keeps exactly one article per cluster — the cluster's representative id,
// in the order ClusterTexts encountered it.
func (a *Aggregator) dedup(items []scored) []scored {
	if len(items) == 0 {
		return nil
	}
	texts := make([]string, len(items))
	ids := make([]int64, len(items))
	byID := make(map[int64]scored, len(items))
	for i, it := range items {
		content := it.article.Content
		if len(content) > 500 {
			content = content[:500]
		}
		texts[i] = it.article.Title + ". " + content
		ids[i] = it.article.ID
		byID[it.article.ID] = it
	}

	clusters := a.Cluster.ClusterTexts(texts, ids)
	out := make([]scored, 0, len(clusters))
	for repID := range clusters {
		out = append(out, byID[repID])
	}
	return out
}

func shardBySource(articles []*entity.Article) map[int64][]*entity.Article {
	shards := make(map[int64][]*entity.Article)
	for _, a := range articles {
		shards[a.SourceID] = append(shards[a.SourceID], a)
	}
	return shards
}

func shardByDay(articles []*entity.Article, fallback time.Time) map[string][]*entity.Article {
	shards := make(map[string][]*entity.Article)
	for _, a := range articles {
		t := fallback
		if a.PublishTime != nil {
			t = *a.PublishTime
		} else {
			t = a.CreatedAt
		}
		key := t.UTC().Format("2006-01-02")
		shards[key] = append(shards[key], a)
	}
	return shards
}

// selectFinal applies the AI narrowing stage: with no selector (or on
// selector error) it simply truncates to StageTwoLimit by score order.
func (a *Aggregator) selectFinal(ctx context.Context, ranked []scored, aiSelector AISelector) ([]*entity.Article, error) {
	if aiSelector == nil {
		return truncateScored(ranked, StageTwoLimit), nil
	}

	summaries := make([]Summary, len(ranked))
	for i, it := range ranked {
		content := it.article.Content
		summary := content
		if len(content) > 200 {
			summary = content[:200] + "..."
		}
		summaries[i] = Summary{
			ID: it.article.ID, Title: it.article.Title, Summary: summary,
			PublishTime: it.article.PublishTime, SourceID: it.article.SourceID, Score: it.score,
		}
	}

	selectedIDs, err := aiSelector(ctx, summaries, StageTwoLimit)
	if err != nil {
		return truncateScored(ranked, StageTwoLimit), nil
	}

	allow := make(map[int64]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		allow[id] = true
	}
	var out []*entity.Article
	for _, it := range ranked {
		if allow[it.article.ID] {
			out = append(out, it.article)
		}
	}
	return out, nil
}

func truncateScored(items []scored, limit int) []*entity.Article {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]*entity.Article, len(items))
	for i, it := range items {
		out[i] = it.article
	}
	return out
}
