package executor

import (
	"context"
	"sync"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type fakeSourceRepo struct {
	mu      sync.Mutex
	sources map[int64]*entity.CrawlSource
	byBase  map[string]int64
	nextID  int64
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[int64]*entity.CrawlSource), byBase: make(map[string]int64)}
}

func (r *fakeSourceRepo) add(s *entity.CrawlSource) *entity.CrawlSource {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.sources[s.ID] = s
	r.byBase[s.BaseURL] = s.ID
	return s
}

func (r *fakeSourceRepo) Get(ctx context.Context, id int64) (*entity.CrawlSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[id], nil
}

func (r *fakeSourceRepo) GetByBaseURL(ctx context.Context, baseURL string) (*entity.CrawlSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byBase[baseURL]
	if !ok {
		return nil, nil
	}
	return r.sources[id], nil
}

func (r *fakeSourceRepo) List(ctx context.Context) ([]*entity.CrawlSource, error) {
	return r.ListEnabled(ctx)
}

func (r *fakeSourceRepo) ListEnabled(ctx context.Context) ([]*entity.CrawlSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CrawlSource
	for _, s := range r.sources {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSourceRepo) Create(ctx context.Context, source *entity.CrawlSource) error {
	r.add(source)
	return nil
}

func (r *fakeSourceRepo) Update(ctx context.Context, source *entity.CrawlSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.ID] = source
	return nil
}

func (r *fakeSourceRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, id)
	return nil
}

var _ repository.SourceRepository = (*fakeSourceRepo)(nil)

type fakeSitemapRepo struct {
	mu       sync.Mutex
	byURL    map[string]*entity.Sitemap
	nextID   int64
}

func newFakeSitemapRepo() *fakeSitemapRepo {
	return &fakeSitemapRepo{byURL: make(map[string]*entity.Sitemap)}
}

func (r *fakeSitemapRepo) Get(ctx context.Context, id int64) (*entity.Sitemap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byURL {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSitemapRepo) GetByURL(ctx context.Context, url string) (*entity.Sitemap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byURL[url], nil
}

func (r *fakeSitemapRepo) ListBySource(ctx context.Context, sourceID int64) ([]*entity.Sitemap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sitemap
	for _, s := range r.byURL {
		if s.SourceID == sourceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSitemapRepo) Create(ctx context.Context, sitemap *entity.Sitemap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sitemap.ID = r.nextID
	r.byURL[sitemap.URL] = sitemap
	return nil
}

func (r *fakeSitemapRepo) Update(ctx context.Context, sitemap *entity.Sitemap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byURL[sitemap.URL] = sitemap
	return nil
}

func (r *fakeSitemapRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for url, s := range r.byURL {
		if s.ID == id {
			delete(r.byURL, url)
		}
	}
	return nil
}

var _ repository.SitemapRepository = (*fakeSitemapRepo)(nil)

type fakePendingRepo struct {
	mu     sync.Mutex
	rows   map[int64]*entity.PendingArticle
	nextID int64
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{rows: make(map[int64]*entity.PendingArticle)}
}

func (r *fakePendingRepo) Get(ctx context.Context, id int64) (*entity.PendingArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakePendingRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePendingRepo) ListForCrawl(ctx context.Context, sourceID int64, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PendingArticle
	for _, p := range r.rows {
		if p.SourceID == sourceID && p.Status == status {
			out = append(out, p)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakePendingRepo) ListByStatus(ctx context.Context, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PendingArticle
	for _, p := range r.rows {
		if p.Status == status {
			out = append(out, p)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakePendingRepo) CountBySource(ctx context.Context, sourceID int64) (map[entity.PendingStatus]int, error) {
	return nil, nil
}

func (r *fakePendingRepo) Create(ctx context.Context, p *entity.PendingArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakePendingRepo) CreateBatch(ctx context.Context, ps []*entity.PendingArticle) (int, error) {
	inserted := 0
	for _, p := range ps {
		if err := r.Create(ctx, p); err == nil {
			inserted++
		}
	}
	return inserted, nil
}

func (r *fakePendingRepo) UpdateStatus(ctx context.Context, id int64, status entity.PendingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePendingRepo) Update(ctx context.Context, p *entity.PendingArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

var _ repository.PendingArticleRepository = (*fakePendingRepo)(nil)

type fakeArticleRepo struct {
	mu       sync.Mutex
	byID     map[int64]*entity.Article
	byURLMD5 map[string]*entity.Article
	nextID   int64
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{byID: make(map[int64]*entity.Article), byURLMD5: make(map[string]*entity.Article)}
}

func (r *fakeArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *fakeArticleRepo) GetByURLHash(ctx context.Context, urlHash string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byURLMD5[urlHash], nil
}

func (r *fakeArticleRepo) ListWithSourcePaginated(ctx context.Context, filters repository.ArticleSearchFilters, offset, limit int) ([]*repository.ArticleWithSource, int, error) {
	return nil, 0, nil
}

func (r *fakeArticleRepo) ListByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]*entity.Article, error) {
	return nil, nil
}

func (r *fakeArticleRepo) ListLowQuality(ctx context.Context, minContentLen int, olderThan time.Time, limit int) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Article
	for _, a := range r.byID {
		out = append(out, a)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeArticleRepo) ExistsByURLHashBatch(ctx context.Context, urlHashes []string) (map[string]bool, error) {
	return nil, nil
}

func (r *fakeArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	article.ID = r.nextID
	cp := *article
	r.byID[article.ID] = &cp
	r.byURLMD5[article.URLHash] = &cp
	return nil
}

func (r *fakeArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *article
	r.byID[article.ID] = &cp
	r.byURLMD5[article.URLHash] = &cp
	return nil
}

func (r *fakeArticleRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		delete(r.byURLMD5, a.URLHash)
		delete(r.byID, id)
	}
	return nil
}

var _ repository.ArticleRepository = (*fakeArticleRepo)(nil)

type fakeKeywordRepo struct {
	mu       sync.Mutex
	keywords []*entity.SearchKeyword
}

func (r *fakeKeywordRepo) Get(ctx context.Context, id int64) (*entity.SearchKeyword, error) {
	return nil, nil
}

func (r *fakeKeywordRepo) ListActive(ctx context.Context) ([]*entity.SearchKeyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SearchKeyword
	for _, k := range r.keywords {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeywordRepo) Create(ctx context.Context, keyword *entity.SearchKeyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords = append(r.keywords, keyword)
	return nil
}

func (r *fakeKeywordRepo) Update(ctx context.Context, keyword *entity.SearchKeyword) error {
	return nil
}

func (r *fakeKeywordRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

var _ repository.KeywordRepository = (*fakeKeywordRepo)(nil)

type fakeSearchBackend struct {
	results []SearchResult
	err     error
}

func (f *fakeSearchBackend) Search(ctx context.Context, query string, timeRange entity.TimeRange, region string, maxResults int) ([]SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func noopProgress(current, total int, message string, intermediate map[string]any) {}
func noopEvent(eventType entity.TaskEventType, data map[string]any)                {}
func neverCancelled() bool                                                         { return false }
