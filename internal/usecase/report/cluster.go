package report

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
	"github.com/myki-jim/newssys-sub000/internal/usecase/event"
	"github.com/myki-jim/newssys-sub000/internal/usecase/score"
)

// filterByScore drops articles scoring below minScore against keywords,
// the spec's low-score article_filter ahead of clustering.
func filterByScore(articles []*entity.Article, keywords []string, minScore float64, scorer *score.Scorer, now time.Time) []*entity.Article {
	if minScore <= 0 {
		return articles
	}
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if scorer.CalculateScore(a, now, keywords) >= minScore {
			out = append(out, a)
		}
	}
	return out
}

// clusterArticles groups near-duplicate articles with the SimHash clusterer
// and picks the longest-content member of each group as the representative,
// matching the Aggregator's own representative-selection convention.
func clusterArticles(articles []*entity.Article, clusterer *simhash.Cluster) []event.Cluster {
	if len(articles) == 0 {
		return nil
	}

	texts := make([]string, len(articles))
	ids := make([]int64, len(articles))
	byID := make(map[int64]*entity.Article, len(articles))
	for i, a := range articles {
		texts[i] = a.Title + " " + a.Content
		ids[i] = a.ID
		byID[a.ID] = a
	}

	groups := clusterer.ClusterTexts(texts, ids)

	clusters := make([]event.Cluster, 0, len(groups))
	for repID, dupIDs := range groups {
		members := make([]*entity.Article, 0, len(dupIDs)+1)
		members = append(members, byID[repID])
		for _, id := range dupIDs {
			members = append(members, byID[id])
		}

		representative := members[0]
		for _, m := range members[1:] {
			if len(m.Content) > len(representative.Content) {
				representative = m
			}
		}

		duplicates := make([]*entity.Article, 0, len(members)-1)
		for _, m := range members {
			if m.ID != representative.ID {
				duplicates = append(duplicates, m)
			}
		}

		clusters = append(clusters, event.Cluster{Representative: representative, Duplicates: duplicates})
	}
	return clusters
}
