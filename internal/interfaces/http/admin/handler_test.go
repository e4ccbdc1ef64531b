package admin

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
	"github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/common"
)

type fakeFailedSubmissions struct {
	records    map[string]domain.FailedSubmission
	lastFilter intakeapp.FailedSubmissionFilter
	lastPaging intakeapp.Paging
	resolvedBy string
}

func (f *fakeFailedSubmissions) List(_ context.Context, filter intakeapp.FailedSubmissionFilter, paging intakeapp.Paging) ([]domain.FailedSubmission, error) {
	f.lastFilter = filter
	f.lastPaging = paging
	out := make([]domain.FailedSubmission, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeFailedSubmissions) Detail(_ context.Context, id string) (*domain.FailedSubmission, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, intakeapp.ErrFailedSubmissionNotFound
	}
	return &record, nil
}

func (f *fakeFailedSubmissions) Resolve(_ context.Context, id, resolvedBy string) (*domain.FailedSubmission, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, intakeapp.ErrFailedSubmissionNotFound
	}
	now := time.Now().UTC()
	record.Resolved = true
	record.ResolvedBy = resolvedBy
	record.ResolvedAt = &now
	f.records[id] = record
	f.resolvedBy = resolvedBy
	return &record, nil
}

func newTestRouter(svc intakeapp.FailedSubmissionService, user *common.AuthenticatedUser) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(common.ContextWithUser(req.Context(), *user)))
			})
		})
	}
	NewHandler(Config{Logger: log.New(io.Discard, "", 0), FailedSubmissions: svc}).Register(r)
	return r
}

func sampleRecord() domain.FailedSubmission {
	return domain.FailedSubmission{
		ID:           "65f000000000000000000001",
		SubmissionID: "sub-1",
		Application: domain.Application{
			Region:  domain.RegionFor("Japan"),
			Country: "Japan",
			Email:   "a@b.co",
		},
		Kind:           string(intakeapp.KindUnsupportedDocument),
		Message:        "not a sheet",
		UpstreamStatus: 400,
		CreatedAt:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFailedSubmissionListPassesQuery(t *testing.T) {
	record := sampleRecord()
	svc := &fakeFailedSubmissions{records: map[string]domain.FailedSubmission{record.ID: record}}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/failed-submissions?kind=upstream&includeResolved=true&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastFilter.Kind != "upstream" || !svc.lastFilter.IncludeResolved {
		t.Fatalf("filter = %+v", svc.lastFilter)
	}
	if svc.lastPaging.Page != 2 || svc.lastPaging.Limit != 10 {
		t.Fatalf("paging = %+v", svc.lastPaging)
	}

	var body failedSubmissionListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].SubmissionID != "sub-1" {
		t.Fatalf("items = %+v", body.Items)
	}
	if len(body.Items[0].Row) != domain.RowWidth {
		t.Fatalf("row width = %d, want %d", len(body.Items[0].Row), domain.RowWidth)
	}
}

func TestFailedSubmissionListClampsPaging(t *testing.T) {
	svc := &fakeFailedSubmissions{records: map[string]domain.FailedSubmission{}}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/failed-submissions?page=999999999999&limit=1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := intakeapp.Paging{Page: intakeapp.MaxPagingPage, Limit: intakeapp.MaxPagingLimit}
	if svc.lastPaging != want {
		t.Fatalf("paging = %+v, want %+v", svc.lastPaging, want)
	}

	var body failedSubmissionListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Page != want.Page || body.Limit != want.Limit {
		t.Fatalf("response paging = %d/%d, want %d/%d", body.Page, body.Limit, want.Page, want.Limit)
	}
}

func TestFailedSubmissionDetailNotFound(t *testing.T) {
	router := newTestRouter(&fakeFailedSubmissions{records: map[string]domain.FailedSubmission{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/failed-submissions/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestFailedSubmissionResolveUsesAuthenticatedUser(t *testing.T) {
	record := sampleRecord()
	svc := &fakeFailedSubmissions{records: map[string]domain.FailedSubmission{record.ID: record}}
	router := newTestRouter(svc, &common.AuthenticatedUser{ID: "u-1", Username: "ops"})

	req := httptest.NewRequest(http.MethodPatch, "/failed-submissions/"+record.ID, strings.NewReader(`{"resolved":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.resolvedBy != "ops" {
		t.Fatalf("resolvedBy = %q, want ops", svc.resolvedBy)
	}
	var body failedSubmissionResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Resolved || body.ResolvedAt == nil {
		t.Fatalf("response not resolved: %+v", body)
	}
}

func TestFailedSubmissionResolveRejectsBadBodies(t *testing.T) {
	record := sampleRecord()
	user := &common.AuthenticatedUser{ID: "u-1"}

	cases := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{`},
		{name: "missing flag", body: `{}`},
		{name: "unresolve", body: `{"resolved":false}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeFailedSubmissions{records: map[string]domain.FailedSubmission{record.ID: record}}
			router := newTestRouter(svc, user)

			req := httptest.NewRequest(http.MethodPatch, "/failed-submissions/"+record.ID, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if svc.resolvedBy != "" {
				t.Fatalf("Resolve should not be called")
			}
		})
	}
}

func TestFailedSubmissionResolveRequiresUser(t *testing.T) {
	record := sampleRecord()
	router := newTestRouter(&fakeFailedSubmissions{records: map[string]domain.FailedSubmission{record.ID: record}}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/failed-submissions/"+record.ID, strings.NewReader(`{"resolved":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestResolverNameFallsBackToID(t *testing.T) {
	if got := resolverName(common.AuthenticatedUser{ID: "u-9"}); got != "u-9" {
		t.Fatalf("resolverName = %q, want u-9", got)
	}
	if got := resolverName(common.AuthenticatedUser{ID: "u-9", Name: "Ops Team"}); got != "Ops Team" {
		t.Fatalf("resolverName = %q, want Ops Team", got)
	}
}
