package event

import (
	"testing"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

func article(id int64, title, content string) *entity.Article {
	return &entity.Article{ID: id, Title: title, Content: content, SourceID: 1}
}

func TestExtractFromClusters_BuildsTitleAndSummary(t *testing.T) {
	clusters := []Cluster{
		{
			Representative: article(1, "Central bank raises interest rates", "The central bank raised interest rates today citing inflation concerns across the economy."),
			Duplicates: []*entity.Article{
				article(2, "Rates up again", "Central bank officials confirmed another rate hike amid persistent inflation."),
			},
		},
		{
			Representative: article(3, "Local team wins championship", "The home football team won the championship final in dramatic fashion."),
		},
	}

	events := ExtractFromClusters(clusters)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Title == "" {
			t.Fatal("expected non-empty event title")
		}
		if e.ArticleCount == 0 {
			t.Fatal("expected non-zero article count")
		}
	}
}

func TestSelectTopEvents_RespectsMinFloor(t *testing.T) {
	var clusters []Cluster
	for i := 0; i < 20; i++ {
		clusters = append(clusters, Cluster{
			Representative: article(int64(i+1), "Event title number", "Some event content describing event details and background information."),
		})
	}

	events := SelectTopEvents(clusters, 5, nil)
	if len(events) != MinEventsFloor {
		t.Fatalf("expected %d events (floor), got %d", MinEventsFloor, len(events))
	}
}

func TestSelectTopEvents_FiltersByKeywordRelevanceWhenProvided(t *testing.T) {
	clusters := []Cluster{
		{Representative: article(1, "Interest rates rise sharply", "Central bank interest rates policy inflation economy markets react")},
		{Representative: article(2, "Football championship final", "Local football team wins championship title in thrilling match")},
	}

	events := SelectTopEvents(clusters, 1, []string{"interest", "rates", "inflation"})
	if len(events) == 0 {
		t.Fatal("expected at least one event")
	}
}

func TestSelectTopEvents_EmptyClusters(t *testing.T) {
	if events := SelectTopEvents(nil, 10, nil); events != nil {
		t.Fatalf("expected nil for empty clusters, got %+v", events)
	}
}

func TestCalculateImportance_BlendsKeywordRelevance(t *testing.T) {
	e := &Event{Keywords: []string{"rates", "inflation", "bank"}, ArticleCount: 3, ContentLength: 500, Title: "Central bank raises interest rates sharply"}
	withoutAI := CalculateImportance(e, 5, 1000, nil)
	withAI := CalculateImportance(e, 5, 1000, []string{"rates", "inflation"})
	if withoutAI == withAI {
		t.Fatal("expected AI keyword relevance to change the importance score")
	}
}
