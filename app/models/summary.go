package models

import "time"

// DetailedEntry is a single aggregated work entry inside a person's
// project summary. Entries from different submissions are merged into
// one DetailedEntry when they share both task name and submission date.
type DetailedEntry struct {
	TaskName       string    `json:"task_name"`
	WorkHours      float64   `json:"work_hours"`
	Rate           float64   `json:"rate"`
	EntryPay       float64   `json:"entry_pay"`
	SubmissionDate time.Time `json:"submission_date"`
}

// PersonProjectSummary is one person's aggregated summary for a single
// project within the reporting month. Built in memory by the aggregator,
// never persisted.
type PersonProjectSummary struct {
	CFName             string           `json:"cf_name"`
	CFEmail            string           `json:"cf_email"`
	CFTier             string           `json:"cf_tier"`
	TotalPayForProject float64          `json:"totalPayForProject"`
	DetailedEntries    []*DetailedEntry `json:"detailedEntries"`
	SubmissionDate     time.Time        `json:"submission_date"`
}

// ProjectGroup holds all people summaries for one project, in the order
// the people were first seen while walking the month's submissions.
type ProjectGroup struct {
	ProjectName     string                  `json:"projectName"`
	PeopleSummaries []*PersonProjectSummary `json:"peopleSummaries"`
}
