package domain

import "time"

// FailedSubmission records an append the spreadsheet service rejected.
type FailedSubmission struct {
	ID             string
	SubmissionID   string
	Application    Application
	Kind           string
	Message        string
	HelpfulMessage string
	UpstreamStatus int
	Details        any
	Resolved       bool
	ResolvedBy     string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
