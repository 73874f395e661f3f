package entity

import "time"

// ScheduleType is the kind of work a Schedule periodically dispatches.
type ScheduleType string

const (
	ScheduleTypeSitemapCrawl  ScheduleType = "sitemap_crawl"
	ScheduleTypeArticleCrawl  ScheduleType = "article_crawl"
	ScheduleTypeKeywordSearch ScheduleType = "keyword_search"
)

// IsValid reports whether t is a known schedule type.
func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleTypeSitemapCrawl, ScheduleTypeArticleCrawl, ScheduleTypeKeywordSearch:
		return true
	}
	return false
}

// ScheduleStatus is the activation state of a Schedule.
type ScheduleStatus string

const (
	ScheduleStatusActive   ScheduleStatus = "active"
	ScheduleStatusPaused   ScheduleStatus = "paused"
	ScheduleStatusDisabled ScheduleStatus = "disabled"
)

// IsValid reports whether s is a known schedule status.
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusActive, ScheduleStatusPaused, ScheduleStatusDisabled:
		return true
	}
	return false
}

// Schedule is a periodic job definition dispatched by the Scheduler as Tasks.
type Schedule struct {
	ID              int64
	Name            string
	ScheduleType    ScheduleType
	Status          ScheduleStatus
	IntervalMinutes int
	MaxExecutions   *int
	ExecutionCount  int
	Config          map[string]any
	LastRunAt       *time.Time
	NextRunAt       time.Time
	LastStatus      string
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the Schedule's invariants.
func (s *Schedule) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "Name", Message: "is required"}
	}
	if !s.ScheduleType.IsValid() {
		return &ValidationError{Field: "ScheduleType", Message: "invalid value"}
	}
	if s.Status == "" {
		s.Status = ScheduleStatusActive
	}
	if !s.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid value"}
	}
	if s.IntervalMinutes <= 0 {
		return &ValidationError{Field: "IntervalMinutes", Message: "must be positive"}
	}
	if s.MaxExecutions != nil && *s.MaxExecutions < 0 {
		return &ValidationError{Field: "MaxExecutions", Message: "must be non-negative"}
	}
	return nil
}

// IsDue reports whether the schedule is eligible for dispatch at instant now:
// status must be active and next_run_at must not be in the future.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusActive && !s.NextRunAt.After(now)
}

// RecordExecution advances the schedule after a dispatch: bumps the
// execution count, records the outcome, computes the next run time, and
// disables the schedule once MaxExecutions is reached.
func (s *Schedule) RecordExecution(now time.Time, status string, execErr error) {
	s.LastRunAt = &now
	s.ExecutionCount++
	s.LastStatus = status
	if execErr != nil {
		s.LastError = execErr.Error()
	} else {
		s.LastError = ""
	}
	s.NextRunAt = now.Add(time.Duration(s.IntervalMinutes) * time.Minute)
	if s.MaxExecutions != nil && s.ExecutionCount >= *s.MaxExecutions {
		s.Status = ScheduleStatusDisabled
	}
}
