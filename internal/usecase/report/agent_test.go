package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/llm"
	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/score"
)

type fakeArticleRepo struct {
	articles []*entity.Article
}

func (r *fakeArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) { return nil, nil }
func (r *fakeArticleRepo) GetByURLHash(ctx context.Context, urlHash string) (*entity.Article, error) {
	return nil, nil
}
func (r *fakeArticleRepo) ListWithSourcePaginated(ctx context.Context, filters repository.ArticleSearchFilters, offset, limit int) ([]*repository.ArticleWithSource, int, error) {
	return nil, 0, nil
}
func (r *fakeArticleRepo) ListByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]*entity.Article, error) {
	return r.articles, nil
}
func (r *fakeArticleRepo) ListLowQuality(ctx context.Context, minContentLen int, olderThan time.Time, limit int) ([]*entity.Article, error) {
	return nil, nil
}
func (r *fakeArticleRepo) ExistsByURLHashBatch(ctx context.Context, urlHashes []string) (map[string]bool, error) {
	return nil, nil
}
func (r *fakeArticleRepo) Create(ctx context.Context, article *entity.Article) error { return nil }
func (r *fakeArticleRepo) Update(ctx context.Context, article *entity.Article) error { return nil }
func (r *fakeArticleRepo) Delete(ctx context.Context, id int64) error                { return nil }

var _ repository.ArticleRepository = (*fakeArticleRepo)(nil)

type fakeSourceRepo struct{}

func (r *fakeSourceRepo) Get(ctx context.Context, id int64) (*entity.CrawlSource, error) {
	return &entity.CrawlSource{ID: id, SiteName: "Example News"}, nil
}
func (r *fakeSourceRepo) GetByBaseURL(ctx context.Context, baseURL string) (*entity.CrawlSource, error) {
	return nil, nil
}
func (r *fakeSourceRepo) List(ctx context.Context) ([]*entity.CrawlSource, error) { return nil, nil }
func (r *fakeSourceRepo) ListEnabled(ctx context.Context) ([]*entity.CrawlSource, error) {
	return nil, nil
}
func (r *fakeSourceRepo) Create(ctx context.Context, source *entity.CrawlSource) error { return nil }
func (r *fakeSourceRepo) Update(ctx context.Context, source *entity.CrawlSource) error { return nil }
func (r *fakeSourceRepo) Delete(ctx context.Context, id int64) error                   { return nil }

var _ repository.SourceRepository = (*fakeSourceRepo)(nil)

type fakeReportRepo struct {
	updates int
}

func (r *fakeReportRepo) Get(ctx context.Context, id int64) (*entity.Report, error) { return nil, nil }
func (r *fakeReportRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Report, error) {
	return nil, nil
}
func (r *fakeReportRepo) Create(ctx context.Context, report *entity.Report) error { return nil }
func (r *fakeReportRepo) Update(ctx context.Context, report *entity.Report) error {
	r.updates++
	return nil
}
func (r *fakeReportRepo) Delete(ctx context.Context, id int64) error { return nil }

var _ repository.ReportRepository = (*fakeReportRepo)(nil)

type fakeReferenceRepo struct {
	created []*entity.Reference
}

func (r *fakeReferenceRepo) ListByReport(ctx context.Context, reportID int64) ([]*entity.Reference, error) {
	return nil, nil
}
func (r *fakeReferenceRepo) CreateBatch(ctx context.Context, refs []*entity.Reference) error {
	r.created = append(r.created, refs...)
	return nil
}
func (r *fakeReferenceRepo) DeleteByReport(ctx context.Context, reportID int64) error { return nil }

var _ repository.ReferenceRepository = (*fakeReferenceRepo)(nil)

type fakeAgentChat struct {
	chunks []string
}

func (f *fakeAgentChat) StreamChat(ctx context.Context, systemPrompt, userMessage string, onChunk llm.ChunkFunc) (string, error) {
	text := "This section discusses the key developments [1] and related coverage [2]."
	if onChunk != nil {
		for _, c := range []string{"This section ", "discusses the key ", "developments [1]."} {
			onChunk(c)
		}
	}
	return text, nil
}

var _ llm.ChatClient = (*fakeAgentChat)(nil)

func buildArticles(n int) []*entity.Article {
	now := time.Now()
	articles := make([]*entity.Article, n)
	for i := 0; i < n; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		articles[i] = &entity.Article{
			ID:          int64(i + 1),
			URL:         fmt.Sprintf("https://example.com/article-%d", i),
			Title:       fmt.Sprintf("Central bank raises interest rates again %d", i),
			Content:     fmt.Sprintf("The central bank raised interest rates today citing inflation concerns across the economy, story %d with enough content to pass filtering thresholds reliably for testing purposes.", i),
			SourceID:    1,
			PublishTime: &t,
			Status:      entity.ArticleStatusProcessed,
			FetchStatus: entity.FetchStatusSuccess,
		}
	}
	return articles
}

func TestAgent_Generate_CompletesWithChatClient(t *testing.T) {
	articleRepo := &fakeArticleRepo{articles: buildArticles(5)}
	reportRepo := &fakeReportRepo{}
	refRepo := &fakeReferenceRepo{}

	agent := NewAgent(articleRepo, &fakeSourceRepo{}, reportRepo, refRepo, score.NewScorer(), simhash.NewCluster(), &fakeAgentChat{})

	rpt := &entity.Report{
		ID:             1,
		Title:          "Weekly Monetary Policy Roundup",
		TimeRangeStart: time.Now().Add(-7 * 24 * time.Hour),
		TimeRangeEnd:   time.Now(),
		Language:       "en",
		Status:         entity.ReportStatusGenerating,
	}

	var states []AgentState
	var chunks []SectionChunk
	opts := GenerateOptions{
		MinScore:  0,
		MaxEvents: 5,
		OnState:   func(s AgentState) { states = append(states, s) },
		OnSectionChunk: func(c SectionChunk) {
			chunks = append(chunks, c)
		},
	}

	if err := agent.Generate(context.Background(), rpt, opts); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if rpt.Status != entity.ReportStatusCompleted {
		t.Fatalf("expected completed status, got %s", rpt.Status)
	}
	if rpt.AgentStage != entity.StageCompleted {
		t.Fatalf("expected completed stage, got %s", rpt.AgentStage)
	}
	if len(rpt.Sections) == 0 {
		t.Fatal("expected generated sections")
	}
	if len(states) == 0 {
		t.Fatal("expected state callbacks")
	}
	if len(chunks) == 0 {
		t.Fatal("expected section stream chunks")
	}
	if reportRepo.updates == 0 {
		t.Fatal("expected report to be persisted during generation")
	}
}

func TestAgent_Generate_FallsBackWithoutChatClient(t *testing.T) {
	articleRepo := &fakeArticleRepo{articles: buildArticles(3)}
	agent := NewAgent(articleRepo, &fakeSourceRepo{}, &fakeReportRepo{}, &fakeReferenceRepo{}, score.NewScorer(), simhash.NewCluster(), nil)

	rpt := &entity.Report{
		ID:             2,
		Title:          "Fallback Report",
		TimeRangeStart: time.Now().Add(-24 * time.Hour),
		TimeRangeEnd:   time.Now(),
		Language:       "en",
		Status:         entity.ReportStatusGenerating,
	}

	if err := agent.Generate(context.Background(), rpt, GenerateOptions{MinScore: 0}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if rpt.Status != entity.ReportStatusCompleted {
		t.Fatalf("expected completed status without a chat client, got %s", rpt.Status)
	}
}

func TestAgent_Generate_NoArticlesStillCompletes(t *testing.T) {
	articleRepo := &fakeArticleRepo{articles: nil}
	agent := NewAgent(articleRepo, &fakeSourceRepo{}, &fakeReportRepo{}, &fakeReferenceRepo{}, score.NewScorer(), simhash.NewCluster(), nil)

	rpt := &entity.Report{
		ID:             3,
		Title:          "Empty Window Report",
		TimeRangeStart: time.Now().Add(-24 * time.Hour),
		TimeRangeEnd:   time.Now(),
		Language:       "en",
		Status:         entity.ReportStatusGenerating,
	}

	if err := agent.Generate(context.Background(), rpt, GenerateOptions{}); err != nil {
		t.Fatalf("Generate returned error on empty article window: %v", err)
	}
	if rpt.Status != entity.ReportStatusCompleted {
		t.Fatalf("expected completed status on empty window, got %s", rpt.Status)
	}
}

func TestAgent_Subscribe_ReceivesEventsDuringGeneration(t *testing.T) {
	articleRepo := &fakeArticleRepo{articles: buildArticles(4)}
	agent := NewAgent(articleRepo, &fakeSourceRepo{}, &fakeReportRepo{}, &fakeReferenceRepo{}, score.NewScorer(), simhash.NewCluster(), &fakeAgentChat{})

	rpt := &entity.Report{
		ID:             4,
		Title:          "Subscribed Report",
		TimeRangeStart: time.Now().Add(-24 * time.Hour),
		TimeRangeEnd:   time.Now(),
		Language:       "en",
		Status:         entity.ReportStatusGenerating,
	}

	ch, unsubscribe := agent.Subscribe(rpt.ID)
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- agent.Generate(context.Background(), rpt, GenerateOptions{MinScore: 0}) }()

	received := 0
	timeout := time.After(5 * time.Second)
loop:
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				break loop
			}
			if ev != nil {
				received++
			}
		case err := <-done:
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
		case <-timeout:
			break loop
		}
	}
	if received == 0 {
		t.Fatal("expected at least one event on the subscriber channel")
	}
}
