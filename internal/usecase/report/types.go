// Package report implements the Report Agent: a staged orchestration that
// filters a window of articles, generates a topic keyword seed, clusters
// near-duplicate coverage into events, writes a Markdown report section by
// section with a streaming LLM collaborator, and appends a citation list.
package report

import (
	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// AgentState is one stage-progress update the Report Agent emits as it
// advances through generation, mirrored onto the Report entity for clients
// that poll instead of subscribing to the stream.
type AgentState struct {
	Stage    entity.AgentStage
	Progress int
	Message  string
	Data     map[string]any
}

// SectionChunk is one streamed token/fragment of a section currently being
// written, emitted during StageGeneratingSections.
type SectionChunk struct {
	SectionTitle string
	Chunk        string
}

// SectionTemplate names one section the agent writes, in report order.
type SectionTemplate struct {
	Title       string
	Description string
}

// DefaultSectionTemplates is used when a report's TemplateID selects no
// template or the configured template cannot be found.
var DefaultSectionTemplates = []SectionTemplate{
	{Title: "Overview", Description: "A concise overview of the most significant developments in this period."},
	{Title: "Key Events", Description: "The most important events, each explained with context and significance."},
	{Title: "Analysis", Description: "Cross-cutting analysis connecting the period's events and their implications."},
}

// Template is a named, reusable section layout plus an optional
// system-prompt override for the section-writing LLM calls.
type Template struct {
	ID               string
	SystemPrompt     string
	SectionTemplates []SectionTemplate
}

func (t *Template) sections() []SectionTemplate {
	if t == nil || len(t.SectionTemplates) == 0 {
		return DefaultSectionTemplates
	}
	return t.SectionTemplates
}

func (t *Template) systemPrompt() string {
	if t != nil && t.SystemPrompt != "" {
		return t.SystemPrompt
	}
	return "You are a meticulous news analyst writing one section of a structured news report. " +
		"Write in clear, neutral, well-organized prose. Cite the source articles you draw on " +
		"inline using bracketed numeric markers like [1] and [2], matching the numbered source " +
		"list you are given. Do not fabricate facts beyond what the sources support."
}

// StateFunc receives one AgentState update.
type StateFunc func(AgentState)

// ChunkFunc receives one streamed section chunk.
type ChunkFunc func(SectionChunk)

// GenerateOptions configures one Report Agent run.
type GenerateOptions struct {
	Template      *Template
	UserPrompt    string
	Keywords      []string // explicit keyword seed; skips AI keyword generation when non-empty
	MaxEvents     int
	MinScore      float64 // articles scoring below this are filtered out; spec's low-score threshold
	OnState       StateFunc
	OnSectionChunk ChunkFunc
}

const defaultMinScore = 20.0
const defaultMaxEvents = 15
