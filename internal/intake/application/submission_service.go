package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// DefaultRange is the append target when none is configured.
const DefaultRange = "A1:H1"

// SubmissionConfig defines dependencies of the submission service.
type SubmissionConfig struct {
	Logger      *log.Logger
	Credentials SheetCredentials
	Appender    SheetAppender
	Failures    FailedSubmissionRepository
	Notifier    Notifier
	Now         func() time.Time
}

type submissionService struct {
	logger   *log.Logger
	creds    SheetCredentials
	appender SheetAppender
	failures FailedSubmissionRepository
	notifier Notifier
	now      func() time.Time
}

// NewSubmissionService は応募 1 件をシートへ追記するユースケースを組み立てる。
// Failures と Notifier は任意。
func NewSubmissionService(cfg SubmissionConfig) SubmissionService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &submissionService{
		logger:   logger,
		creds:    cfg.Credentials,
		appender: cfg.Appender,
		failures: cfg.Failures,
		notifier: cfg.Notifier,
		now:      now,
	}
}

// Submit は設定を検証してから 1 行だけ追記する。リトライはしない。
func (s *submissionService) Submit(ctx context.Context, app domain.Application) (*Acknowledgement, error) {
	submissionID := uuid.NewString()

	creds, cfgErr := checkCredentials(s.creds)
	if cfgErr != nil {
		s.logger.Printf("submission %s rejected: %s", submissionID, cfgErr.Message)
		return nil, cfgErr
	}

	response, err := s.appender.Append(ctx, creds, app.Row())
	if err != nil {
		subErr := ClassifyUpstreamError(err)
		s.logger.Printf("シートへの追記に失敗 submission=%s kind=%s status=%d err=%v", submissionID, subErr.Kind, subErr.Status, err)
		s.recordFailure(ctx, submissionID, app, subErr)
		return nil, subErr
	}

	if s.notifier != nil {
		go s.notifier.NotifyApplication(context.Background(), submissionID, app)
	}

	return &Acknowledgement{
		SubmissionID: submissionID,
		Response:     response,
		SubmittedAt:  s.now().UTC(),
	}, nil
}

func (s *submissionService) recordFailure(ctx context.Context, submissionID string, app domain.Application, subErr *SubmissionError) {
	if s.failures == nil {
		return
	}
	record := &domain.FailedSubmission{
		SubmissionID:   submissionID,
		Application:    app,
		Kind:           string(subErr.Kind),
		Message:        subErr.Message,
		HelpfulMessage: subErr.HelpfulMessage,
		UpstreamStatus: subErr.Status,
		Details:        subErr.Details,
		CreatedAt:      s.now().UTC(),
	}
	if subErr.Err != nil {
		record.Message = subErr.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.failures.Create(ctx, record); err != nil {
		s.logger.Printf("failed_submissions への保存に失敗 submission=%s: %v", submissionID, err)
	}
}
