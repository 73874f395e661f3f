package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/llm"
	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/citation"
	"github.com/myki-jim/newssys-sub000/internal/usecase/event"
	"github.com/myki-jim/newssys-sub000/internal/usecase/keyword"
	"github.com/myki-jim/newssys-sub000/internal/usecase/score"
)

// articleFetchLimit bounds the window query the filtering stage issues;
// larger windows are expected to go through the Aggregator (component F)
// first and hand the Report Agent an already-bounded article set via a
// narrower time range rather than raising this constant.
const articleFetchLimit = 5000

// Agent runs the staged Report generation pipeline: filter, generate
// keywords, cluster, extract events, write sections with a streaming LLM
// collaborator, merge, and cite. One Agent serves every report; per-report
// state lives only for the duration of a Generate call plus its broadcaster.
type Agent struct {
	Articles repository.ArticleRepository
	Sources  repository.SourceRepository
	Reports  repository.ReportRepository
	Refs     repository.ReferenceRepository

	Scorer    *score.Scorer
	Clusterer *simhash.Cluster
	Keywords  *keyword.Generator
	Chat      llm.ChatClient

	mu         sync.Mutex
	broadcasts map[int64]*broadcaster
}

// NewAgent builds a Report Agent from its collaborators. Chat may be nil,
// in which case section generation falls back to a templated summary and
// keyword generation falls back to title tokenization.
func NewAgent(articles repository.ArticleRepository, sources repository.SourceRepository, reports repository.ReportRepository, refs repository.ReferenceRepository, scorer *score.Scorer, clusterer *simhash.Cluster, chat llm.ChatClient) *Agent {
	return &Agent{
		Articles:   articles,
		Sources:    sources,
		Reports:    reports,
		Refs:       refs,
		Scorer:     scorer,
		Clusterer:  clusterer,
		Keywords:   keyword.NewGenerator(chat),
		Chat:       chat,
		broadcasts: make(map[int64]*broadcaster),
	}
}

// Subscribe returns a channel of live events for reportID and an
// unsubscribe function the caller must call when done (typically when its
// HTTP request context is cancelled). Subscribing to a report with no
// in-flight generation yields a channel that is immediately closed.
func (a *Agent) Subscribe(reportID int64) (<-chan *Event, func()) {
	a.mu.Lock()
	b, ok := a.broadcasts[reportID]
	if !ok {
		b = newBroadcaster()
		a.broadcasts[reportID] = b
	}
	a.mu.Unlock()
	return b.subscribe()
}

func (a *Agent) broadcasterFor(reportID int64) *broadcaster {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.broadcasts[reportID]
	if !ok {
		b = newBroadcaster()
		a.broadcasts[reportID] = b
	}
	return b
}

func (a *Agent) releaseBroadcaster(reportID int64) {
	a.mu.Lock()
	b, ok := a.broadcasts[reportID]
	delete(a.broadcasts, reportID)
	a.mu.Unlock()
	if ok {
		b.closeAll()
	}
}

// Generate runs every stage of report production for rpt, persisting
// progress after each stage and the final content on success. rpt.ID must
// already be assigned (the caller creates the row in ReportStatusGenerating
// first). Generate never returns with rpt left in ReportStatusGenerating:
// it always finalizes the report as completed or failed before returning.
func (a *Agent) Generate(ctx context.Context, rpt *entity.Report, opts GenerateOptions) error {
	b := a.broadcasterFor(rpt.ID)
	defer a.releaseBroadcaster(rpt.ID)

	emit := func(state AgentState) {
		rpt.AgentStage = state.Stage
		rpt.ProgressPct = state.Progress
		_ = a.Reports.Update(ctx, rpt)
		b.publish(&Event{Type: "state", State: &state})
		if opts.OnState != nil {
			opts.OnState(state)
		}
	}

	fail := func(stage entity.AgentStage, err error) error {
		rpt.Status = entity.ReportStatusFailed
		rpt.AgentStage = entity.StageFailed
		_ = a.Reports.Update(ctx, rpt)
		b.publish(&Event{Type: "state", State: &AgentState{
			Stage: entity.StageFailed, Progress: rpt.ProgressPct,
			Message: fmt.Sprintf("failed during %s: %v", stage, err),
		}})
		return fmt.Errorf("report generation failed at %s: %w", stage, err)
	}

	emit(AgentState{Stage: entity.StageInitializing, Progress: 0, Message: "starting report generation"})

	// filtering_articles
	emit(AgentState{Stage: entity.StageFilteringArticles, Progress: 10, Message: "loading article window"})
	articles, err := a.Articles.ListByTimeRange(ctx, rpt.TimeRangeStart, rpt.TimeRangeEnd, articleFetchLimit)
	if err != nil {
		return fail(entity.StageFilteringArticles, err)
	}

	minScore := opts.MinScore
	if minScore == 0 {
		minScore = defaultMinScore
	}
	filtered := filterByScore(articles, opts.Keywords, minScore, a.Scorer, time.Now())
	emit(AgentState{
		Stage: entity.StageFilteringArticles, Progress: 20,
		Message: fmt.Sprintf("%d of %d articles passed filtering", len(filtered), len(articles)),
		Data:    map[string]any{"total_articles": len(articles), "filtered_articles": len(filtered)},
	})

	// generating_keywords
	emit(AgentState{Stage: entity.StageGeneratingKeywords, Progress: 25, Message: "generating topic keywords"})
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = a.Keywords.Generate(ctx, rpt.Title, rpt.TimeRangeStart, rpt.TimeRangeEnd, opts.UserPrompt, rpt.Language, defaultMaxKeywords)
	}
	emit(AgentState{
		Stage: entity.StageGeneratingKeywords, Progress: 28,
		Message: "keywords ready", Data: map[string]any{"keywords": keywords},
	})

	// clustering_articles
	emit(AgentState{Stage: entity.StageClusteringArticles, Progress: 30, Message: "clustering near-duplicate coverage"})
	clusters := clusterArticles(filtered, a.Clusterer)
	emit(AgentState{
		Stage: entity.StageClusteringArticles, Progress: 40,
		Message: fmt.Sprintf("%d clusters formed", len(clusters)),
		Data:    map[string]any{"cluster_count": len(clusters)},
	})

	// extracting_events
	emit(AgentState{Stage: entity.StageExtractingEvents, Progress: 50, Message: "extracting and ranking events"})
	maxEvents := opts.MaxEvents
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	events := event.SelectTopEvents(clusters, maxEvents, keywords)
	emit(AgentState{
		Stage: entity.StageExtractingEvents, Progress: 60,
		Message: fmt.Sprintf("%d events selected", len(events)),
		Data:    map[string]any{"event_count": len(events)},
	})

	sourceNames := a.loadSourceNames(ctx, filtered)
	refs := citation.NewManager()

	// generating_sections
	templates := opts.Template.sections()
	sections := make([]sectionResult, 0, len(templates))
	step := 25 / max(len(templates), 1)
	for i, tmpl := range templates {
		progress := 65 + step*i
		emit(AgentState{Stage: entity.StageGeneratingSections, Progress: progress, Message: fmt.Sprintf("writing section %q", tmpl.Title)})

		content, err := a.generateSection(ctx, rpt.Title, tmpl, events, refs, sourceNames, opts, b)
		if err != nil {
			return fail(entity.StageGeneratingSections, err)
		}
		sections = append(sections, sectionResult{Title: tmpl.Title, Content: content})
	}
	emit(AgentState{Stage: entity.StageGeneratingSections, Progress: 90, Message: "all sections written"})

	// merging_report
	emit(AgentState{Stage: entity.StageMergingReport, Progress: 92, Message: "merging sections and references"})
	merged := mergeReport(
		rpt.Title,
		rpt.TimeRangeStart.UTC().Format("2006-01-02"),
		rpt.TimeRangeEnd.UTC().Format("2006-01-02"),
		time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		len(filtered), len(events),
		sections, events, refs,
	)

	rpt.Sections = make([]entity.ReportSection, len(sections)+1)
	for i, s := range sections {
		rpt.Sections[i] = entity.ReportSection{Title: s.Title, Content: s.Content}
	}
	rpt.Sections[len(sections)] = entity.ReportSection{Title: "Full Report", Content: merged}
	rpt.Status = entity.ReportStatusCompleted
	rpt.AgentStage = entity.StageCompleted
	rpt.ProgressPct = 100
	if err := a.Reports.Update(ctx, rpt); err != nil {
		return fail(entity.StageMergingReport, err)
	}

	if refList := refs.ToEntities(rpt.ID); len(refList) > 0 {
		if err := a.Refs.CreateBatch(ctx, refList); err != nil {
			return fail(entity.StageMergingReport, err)
		}
	}

	b.publish(&Event{Type: "state", State: &AgentState{Stage: entity.StageCompleted, Progress: 100, Message: "report complete"}})
	if opts.OnState != nil {
		opts.OnState(AgentState{Stage: entity.StageCompleted, Progress: 100, Message: "report complete"})
	}
	return nil
}

func (a *Agent) generateSection(ctx context.Context, title string, tmpl SectionTemplate, events []*event.Event, refs *citation.Manager, sourceNames map[int64]string, opts GenerateOptions, b *broadcaster) (string, error) {
	if a.Chat == nil {
		return fallbackSectionContent(tmpl, events, refs, sourceNames), nil
	}

	userMessage := buildSectionUserMessage(title, tmpl, events, refs, sourceNames)
	onChunk := func(chunk string) {
		c := SectionChunk{SectionTitle: tmpl.Title, Chunk: chunk}
		b.publish(&Event{Type: "section_stream", Chunk: &c})
		if opts.OnSectionChunk != nil {
			opts.OnSectionChunk(c)
		}
	}

	content, err := a.Chat.StreamChat(ctx, opts.Template.systemPrompt(), userMessage, onChunk)
	if err != nil {
		return "", err
	}
	return citation.NormalizeMarkers(content), nil
}

func fallbackSectionContent(tmpl SectionTemplate, events []*event.Event, refs *citation.Manager, sourceNames map[int64]string) string {
	var out string
	out += tmpl.Description + "\n\n"
	for _, e := range events {
		members := clusterMembers(e)
		idx := 0
		if len(members) > 0 {
			idx = refs.RegisterArticle(members[0], sourceNames[members[0].SourceID])
		}
		out += fmt.Sprintf("- %s [%d]\n", e.Title, idx)
	}
	return out
}

func (a *Agent) loadSourceNames(ctx context.Context, articles []*entity.Article) map[int64]string {
	names := make(map[int64]string)
	for _, art := range articles {
		if _, ok := names[art.SourceID]; ok {
			continue
		}
		src, err := a.Sources.Get(ctx, art.SourceID)
		if err != nil || src == nil {
			continue
		}
		names[art.SourceID] = src.SiteName
	}
	return names
}
