package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// ErrFailedSubmissionNotFound is returned when no record matches the ID.
var ErrFailedSubmissionNotFound = errors.New("failed submission not found")

// FailedSubmissionFilter expresses search criteria for the admin list.
type FailedSubmissionFilter struct {
	Kind            string
	IncludeResolved bool
}

const (
	DefaultPagingLimit = 50
	MaxPagingLimit     = 200
	MaxPagingPage      = 10000
)

// Paging controls pagination.
type Paging struct {
	Page  int
	Limit int
}

// Normalize は Page を 1..MaxPagingPage、Limit を 1..MaxPagingLimit に収める。
// Limit 未指定は DefaultPagingLimit。
func (p Paging) Normalize() Paging {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPagingLimit
	case p.Limit > MaxPagingLimit:
		p.Limit = MaxPagingLimit
	}
	switch {
	case p.Page < 1:
		p.Page = 1
	case p.Page > MaxPagingPage:
		p.Page = MaxPagingPage
	}
	return p
}

// FailedSubmissionStore は管理画面から失敗ログを参照・更新するためのポート。
type FailedSubmissionStore interface {
	FailedSubmissionRepository
	Find(ctx context.Context, filter FailedSubmissionFilter, paging Paging) ([]domain.FailedSubmission, error)
	FindByID(ctx context.Context, id string) (*domain.FailedSubmission, error)
	MarkResolved(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.FailedSubmission, error)
}

// FailedSubmissionService describes admin use-cases over the failure log.
type FailedSubmissionService interface {
	List(ctx context.Context, filter FailedSubmissionFilter, paging Paging) ([]domain.FailedSubmission, error)
	Detail(ctx context.Context, id string) (*domain.FailedSubmission, error)
	Resolve(ctx context.Context, id, resolvedBy string) (*domain.FailedSubmission, error)
}

func NewFailedSubmissionService(store FailedSubmissionStore) FailedSubmissionService {
	return &failedSubmissionService{store: store}
}

type failedSubmissionService struct {
	store FailedSubmissionStore
}

func (s *failedSubmissionService) List(ctx context.Context, filter FailedSubmissionFilter, paging Paging) ([]domain.FailedSubmission, error) {
	paging = paging.Normalize()
	filter.Kind = strings.TrimSpace(filter.Kind)
	return s.store.Find(ctx, filter, paging)
}

func (s *failedSubmissionService) Detail(ctx context.Context, id string) (*domain.FailedSubmission, error) {
	return s.store.FindByID(ctx, strings.TrimSpace(id))
}

func (s *failedSubmissionService) Resolve(ctx context.Context, id, resolvedBy string) (*domain.FailedSubmission, error) {
	resolvedBy = strings.TrimSpace(resolvedBy)
	if resolvedBy == "" {
		return nil, errors.New("resolvedBy is required")
	}
	return s.store.MarkResolved(ctx, strings.TrimSpace(id), resolvedBy, time.Now().UTC())
}
