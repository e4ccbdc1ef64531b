package application

import (
	"context"
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// SheetCredentials は外部スプレッドシートへの認証情報と書き込み先。
type SheetCredentials struct {
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string
	Range         string
}

// SheetAppender appends one row to a spreadsheet. Implementations build their own client per call.
type SheetAppender interface {
	Append(ctx context.Context, creds SheetCredentials, row []any) (any, error)
}

// UpstreamError is implemented by appender errors that carry the service's status and structured detail.
type UpstreamError interface {
	error
	UpstreamStatus() int
	UpstreamDetails() any
}

// FailedSubmissionRepository persists failed appends so an operator can re-key them.
type FailedSubmissionRepository interface {
	Create(ctx context.Context, record *domain.FailedSubmission) error
}

// Notifier は受付済みの応募を管理チャネルへ通知する。
type Notifier interface {
	NotifyApplication(ctx context.Context, submissionID string, app domain.Application)
}

// SubmissionService is the single submission use case behind POST /api/submit.
type SubmissionService interface {
	Submit(ctx context.Context, app domain.Application) (*Acknowledgement, error)
}

// Acknowledgement carries the upstream append response.
type Acknowledgement struct {
	SubmissionID string
	Response     any
	SubmittedAt  time.Time
}
