package admin

import (
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

type failedSubmissionResponse struct {
	ID             string             `json:"id"`
	SubmissionID   string             `json:"submissionId"`
	Application    domain.Application `json:"application"`
	Row            []any              `json:"row"`
	Kind           string             `json:"kind"`
	Message        string             `json:"message"`
	HelpfulMessage string             `json:"helpfulMessage,omitempty"`
	UpstreamStatus int                `json:"upstreamStatus,omitempty"`
	Details        any                `json:"details"`
	Resolved       bool               `json:"resolved"`
	ResolvedBy     string             `json:"resolvedBy,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	ResolvedAt     *time.Time         `json:"resolvedAt,omitempty"`
}

type failedSubmissionListResponse struct {
	Items []failedSubmissionResponse `json:"items"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// resolveFailedSubmissionRequest は PATCH の本文。現状は resolved=true のみ受け付ける。
type resolveFailedSubmissionRequest struct {
	Resolved *bool `json:"resolved"`
}

func toFailedSubmissionResponse(record domain.FailedSubmission) failedSubmissionResponse {
	return failedSubmissionResponse{
		ID:             record.ID,
		SubmissionID:   record.SubmissionID,
		Application:    record.Application,
		Row:            record.Application.Row(),
		Kind:           record.Kind,
		Message:        record.Message,
		HelpfulMessage: record.HelpfulMessage,
		UpstreamStatus: record.UpstreamStatus,
		Details:        record.Details,
		Resolved:       record.Resolved,
		ResolvedBy:     record.ResolvedBy,
		CreatedAt:      record.CreatedAt,
		ResolvedAt:     record.ResolvedAt,
	}
}
