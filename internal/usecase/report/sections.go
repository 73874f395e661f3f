package report

import (
	"fmt"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/usecase/citation"
	"github.com/myki-jim/newssys-sub000/internal/usecase/event"
)

func clusterMembers(e *event.Event) []*entity.Article {
	members := make([]*entity.Article, 0, len(e.Cluster.Duplicates)+1)
	if e.Cluster.Representative != nil {
		members = append(members, e.Cluster.Representative)
	}
	members = append(members, e.Cluster.Duplicates...)
	return members
}

func buildSectionUserMessage(title string, tmpl SectionTemplate, events []*event.Event, refs *citation.Manager, sourceNames map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report topic: %s\n", title)
	fmt.Fprintf(&b, "Section: %s — %s\n\n", tmpl.Title, tmpl.Description)
	b.WriteString("Source events, numbered for citation:\n\n")

	for _, e := range events {
		for _, a := range clusterMembers(e) {
			idx := refs.RegisterArticle(a, sourceNames[a.SourceID])
			fmt.Fprintf(&b, "[%d] %s — %s\n", idx, e.Title, a.Title)
		}
		fmt.Fprintf(&b, "    Summary: %s\n", e.Summary)
		if len(e.Keywords) > 0 {
			fmt.Fprintf(&b, "    Keywords: %s\n", strings.Join(e.Keywords, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("Write this section now, citing sources inline with [n] markers.")
	return b.String()
}

// mergeReport assembles the final Markdown document: a header with the
// title, time range, and generation overview, the generated sections in
// template order, a key-events appendix, and the references block.
func mergeReport(title string, start, end string, generatedAt string, articleCount, eventCount int, sections []sectionResult, events []*event.Event, refs *citation.Manager) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Time range:** %s to %s\n\n", start, end)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generatedAt)
	fmt.Fprintf(&b, "**Overview:** %d articles analyzed, %d events identified.\n\n", articleCount, eventCount)

	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Content)
	}

	b.WriteString("## Key Events\n\n")
	for i, e := range events {
		fmt.Fprintf(&b, "%d. **%s** (%d sources)\n", i+1, e.Title, e.ArticleCount)
	}
	b.WriteString("\n")

	b.WriteString(refs.RenderReferencesBlock())
	b.WriteString("\n")

	return b.String()
}

type sectionResult struct {
	Title   string
	Content string
}
