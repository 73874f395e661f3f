package entity

import "time"

// ReportStatus is the lifecycle state of a Report as the agent generates it.
type ReportStatus string

const (
	ReportStatusGenerating ReportStatus = "generating"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// IsValid reports whether s is a known report status.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusGenerating, ReportStatusCompleted, ReportStatusFailed:
		return true
	}
	return false
}

// AgentStage is the current stage of the Report Agent's staged orchestration,
// mirrored into Report.AgentStage for clients that poll instead of streaming.
type AgentStage string

const (
	StageInitializing       AgentStage = "initializing"
	StageFilteringArticles  AgentStage = "filtering_articles"
	StageGeneratingKeywords AgentStage = "generating_keywords"
	StageClusteringArticles AgentStage = "clustering_articles"
	StageExtractingEvents   AgentStage = "extracting_events"
	StageGeneratingSections AgentStage = "generating_sections"
	StageMergingReport      AgentStage = "merging_report"
	StageCompleted          AgentStage = "completed"
	StageFailed             AgentStage = "failed"
)

// ReportSection is one generated section of a Report, in template order.
type ReportSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Report is an analytical artifact produced by the Report Agent from a
// window of Articles.
type Report struct {
	ID             int64
	Title          string
	TimeRangeStart time.Time
	TimeRangeEnd   time.Time
	TemplateID     *string
	Language       string
	Status         ReportStatus
	AgentStage     AgentStage
	ProgressPct    int
	Sections       []ReportSection
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the Report's invariants.
func (r *Report) Validate() error {
	if r.Title == "" {
		return &ValidationError{Field: "Title", Message: "is required"}
	}
	if !r.TimeRangeEnd.After(r.TimeRangeStart) {
		return &ValidationError{Field: "TimeRangeEnd", Message: "must be after TimeRangeStart"}
	}
	if r.Language == "" {
		r.Language = "en"
	}
	if r.Status == "" {
		r.Status = ReportStatusGenerating
	}
	if !r.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid value"}
	}
	return nil
}

// Reference ties a cited Article to a Report at a given 1-based citation
// index, dense within the report.
type Reference struct {
	ID            int64
	ArticleID     int64
	ReportID      int64
	CitationIndex int
	Snippet       *string
	CreatedAt     time.Time
}

// Validate checks the Reference's invariants.
func (r *Reference) Validate() error {
	if r.ArticleID <= 0 {
		return &ValidationError{Field: "ArticleID", Message: "must be positive"}
	}
	if r.ReportID <= 0 {
		return &ValidationError{Field: "ReportID", Message: "must be positive"}
	}
	if r.CitationIndex < 1 {
		return &ValidationError{Field: "CitationIndex", Message: "must be >= 1"}
	}
	return nil
}
