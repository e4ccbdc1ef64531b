package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []domain.Application
	result  Result
	err     error
	blockCh chan struct{}
	started chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, app domain.Application) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, app)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.blockCh != nil {
		<-f.blockCh
	}
	return f.result, f.err
}

func fillAffiliate(t *testing.T, w *Wizard) {
	t.Helper()
	values := []struct{ key, value string }{
		{domain.FieldName, "Jane Doe"},
		{domain.FieldEmail, "jane@example.com"},
		{domain.FieldTelegram, "@jane_doe"},
		{domain.FieldSocialPlatform, "x"},
		{domain.FieldSocialPlatformLink, "https://x.com/jane"},
		{domain.FieldCountry, "Japan"},
		{domain.FieldPreferredContactMethod, "telegram"},
	}
	for _, v := range values {
		if err := w.UpdateField(v.key, v.value); err != nil {
			t.Fatalf("UpdateField(%s): %v", v.key, err)
		}
	}
}

func advanceToEnd(t *testing.T, w *Wizard) {
	t.Helper()
	for w.CurrentStep() < w.TotalSteps() {
		before := w.CurrentStep()
		if !w.Advance() {
			t.Fatalf("advance failed at step %d: %v", before, w.Errors())
		}
	}
}

func TestNewClampsStartStep(t *testing.T) {
	steps := domain.AffiliateSteps()
	if got := New(steps, nil, WithStartStep(0)).CurrentStep(); got != 1 {
		t.Fatalf("start 0 -> %d, want 1", got)
	}
	if got := New(steps, nil, WithStartStep(99)).CurrentStep(); got != len(steps) {
		t.Fatalf("start 99 -> %d, want %d", got, len(steps))
	}
	if got := New(steps, nil, WithStartStep(3)).CurrentStep(); got != 3 {
		t.Fatalf("start 3 -> %d, want 3", got)
	}
}

func TestCountryDerivesRegion(t *testing.T) {
	w := New(domain.AffiliateSteps(), nil)
	if err := w.UpdateField(domain.FieldCountry, "Brazil"); err != nil {
		t.Fatal(err)
	}
	if got := w.Answers()[domain.FieldRegion]; got != domain.RegionLATAM {
		t.Fatalf("region = %q, want LATAM", got)
	}
	if err := w.UpdateField(domain.FieldCountry, "Atlantis"); err != nil {
		t.Fatal(err)
	}
	if got := w.Answers()[domain.FieldRegion]; got != "" {
		t.Fatalf("region = %q, want empty for unmapped country", got)
	}
}

func TestRegionIsNotEditable(t *testing.T) {
	w := New(domain.AffiliateSteps(), nil)
	if err := w.UpdateField(domain.FieldRegion, "USA"); !errors.Is(err, ErrDerivedField) {
		t.Fatalf("expected ErrDerivedField, got %v", err)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	w := New(domain.EarlyAccessSteps(), nil)
	if err := w.UpdateField(domain.FieldSocialPlatform, "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestPlatformChangeClearsLink(t *testing.T) {
	w := New(domain.AffiliateSteps(), nil)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.UpdateField(domain.FieldSocialPlatform, "x"))
	must(w.UpdateField(domain.FieldSocialPlatformLink, "https://x.com/jane"))

	must(w.UpdateField(domain.FieldSocialPlatform, "x"))
	if got := w.Answers()[domain.FieldSocialPlatformLink]; got != "https://x.com/jane" {
		t.Fatalf("same platform must keep link, got %q", got)
	}

	must(w.UpdateField(domain.FieldSocialPlatform, "instagram"))
	if got := w.Answers()[domain.FieldSocialPlatformLink]; got != "" {
		t.Fatalf("changing platform must clear link, got %q", got)
	}
}

func TestPlatformChangeClearsLinkError(t *testing.T) {
	w := New(domain.AffiliateSteps(), nil, WithStartStep(4))
	if err := w.UpdateField(domain.FieldSocialPlatform, "x"); err != nil {
		t.Fatal(err)
	}
	if err := w.UpdateField(domain.FieldSocialPlatformLink, "not-a-url"); err != nil {
		t.Fatal(err)
	}
	if w.Advance() {
		t.Fatal("invalid link must block advance")
	}
	if w.Error(domain.FieldSocialPlatformLink) == "" {
		t.Fatal("expected link error after failed advance")
	}

	if err := w.UpdateField(domain.FieldSocialPlatform, "instagram"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{}, w.Errors()); diff != "" {
		t.Fatalf("errors after platform change (-want +got):\n%s", diff)
	}
}

func TestNewPanicsWithoutSteps(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty step list")
		}
	}()
	New(nil, nil)
}

func TestAdvanceBlockedByValidation(t *testing.T) {
	w := New(domain.EarlyAccessSteps(), nil)
	if w.IsCurrentStepValid() {
		t.Fatal("empty email must be invalid")
	}
	if w.Advance() {
		t.Fatal("advance must fail for empty email")
	}
	if w.CurrentStep() != 1 {
		t.Fatalf("step changed to %d", w.CurrentStep())
	}
	if w.Error(domain.FieldEmail) == "" {
		t.Fatal("expected email error to be recorded")
	}

	if err := w.UpdateField(domain.FieldEmail, "a@b"); err != nil {
		t.Fatal(err)
	}
	if w.Error(domain.FieldEmail) != "" {
		t.Fatal("updating the field must clear its error")
	}
	if w.Advance() {
		t.Fatal("advance must fail for a@b")
	}
	if w.CurrentStep() != 1 {
		t.Fatalf("step changed to %d", w.CurrentStep())
	}

	if err := w.UpdateField(domain.FieldEmail, "a@b.com"); err != nil {
		t.Fatal(err)
	}
	if !w.IsCurrentStepValid() {
		t.Fatal("a@b.com must be valid")
	}
	if !w.Advance() {
		t.Fatal("advance must succeed")
	}
	if w.CurrentStep() != 2 {
		t.Fatalf("step = %d, want 2", w.CurrentStep())
	}
	if len(w.Errors()) != 0 {
		t.Fatalf("expected no errors, got %v", w.Errors())
	}
}

func TestCompositeStepValidity(t *testing.T) {
	w := New(domain.AffiliateSteps(), nil, WithStartStep(4))
	if w.Step().Kind != domain.KindComposite {
		t.Fatalf("step 4 kind = %s", w.Step().Kind)
	}
	if w.IsCurrentStepValid() {
		t.Fatal("empty composite must be invalid")
	}
	_ = w.UpdateField(domain.FieldSocialPlatform, "tiktok")
	_ = w.UpdateField(domain.FieldSocialPlatformLink, "not-a-url")
	if w.IsCurrentStepValid() {
		t.Fatal("bad link must be invalid")
	}
	if w.Advance() {
		t.Fatal("advance must fail")
	}
	if w.Error(domain.FieldSocialPlatformLink) == "" {
		t.Fatal("expected link error")
	}
	_ = w.UpdateField(domain.FieldSocialPlatformLink, "https://x.com/u")
	if !w.IsCurrentStepValid() {
		t.Fatal("composite should be valid")
	}
	if !w.Advance() || w.CurrentStep() != 5 {
		t.Fatalf("expected to move to step 5, at %d", w.CurrentStep())
	}
}

func TestRegionStepAlwaysValid(t *testing.T) {
	w := New(domain.EarlyAccessSteps(), nil, WithStartStep(5))
	if w.Step().Field != domain.FieldRegion {
		t.Fatalf("step 5 field = %s", w.Step().Field)
	}
	if !w.IsCurrentStepValid() {
		t.Fatal("region step must be valid even when empty")
	}
}

func TestRetreatAndAdvanceBounds(t *testing.T) {
	w := New(domain.EarlyAccessSteps(), nil)
	w.Retreat()
	if w.CurrentStep() != 1 {
		t.Fatalf("retreat below 1: %d", w.CurrentStep())
	}

	last := New(domain.EarlyAccessSteps(), nil, WithStartStep(6))
	if !last.IsCurrentStepValid() {
		t.Fatal("confirmation step must be valid")
	}
	if !last.Advance() || last.CurrentStep() != 6 {
		t.Fatalf("advance past last step must be a no-op, at %d", last.CurrentStep())
	}
	last.Retreat()
	if last.CurrentStep() != 5 {
		t.Fatalf("retreat = %d, want 5", last.CurrentStep())
	}
}

func TestCompleteRequiresTerminalStep(t *testing.T) {
	sub := &fakeSubmitter{result: Result{Success: true}}
	w := New(domain.AffiliateSteps(), sub)
	if _, err := w.Complete(context.Background()); !errors.Is(err, ErrNotTerminalStep) {
		t.Fatalf("expected ErrNotTerminalStep, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatal("submitter must not be called")
	}
}

func TestCompleteSuccessLocksWizard(t *testing.T) {
	sub := &fakeSubmitter{result: Result{Success: true, Response: map[string]any{"updates": 1}}}
	w := New(domain.AffiliateSteps(), sub)
	fillAffiliate(t, w)
	advanceToEnd(t, w)

	result, err := w.Complete(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || !w.Submitted() {
		t.Fatalf("expected submitted wizard, got %+v", result)
	}

	link := "https://x.com/jane"
	want := domain.Application{
		Region:                 domain.RegionAPAC,
		Country:                "Japan",
		Name:                   "Jane Doe",
		Email:                  "jane@example.com",
		Telegram:               "@jane_doe",
		SocialPlatform:         "x",
		SocialPlatformLink:     &link,
		PreferredContactMethod: "telegram",
	}
	if diff := cmp.Diff([]domain.Application{want}, sub.calls); diff != "" {
		t.Fatalf("submitted application mismatch (-want +got):\n%s", diff)
	}

	if err := w.UpdateField(domain.FieldName, "Other"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("expected ErrSubmitted, got %v", err)
	}
	if _, err := w.Complete(context.Background()); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("expected ErrSubmitted on second complete, got %v", err)
	}
}

func TestCompleteFailureKeepsAnswers(t *testing.T) {
	sub := &fakeSubmitter{result: Result{
		Success:        false,
		Error:          "This operation is not supported for this document",
		HelpfulMessage: "convert it",
	}}
	w := New(domain.AffiliateSteps(), sub)
	fillAffiliate(t, w)
	advanceToEnd(t, w)
	before := w.Answers()

	result, err := w.Complete(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.HelpfulMessage != "convert it" {
		t.Fatalf("unexpected result %+v", result)
	}
	if w.Submitted() || w.Submitting() {
		t.Fatal("failed submission must leave the wizard editable")
	}
	if diff := cmp.Diff(before, w.Answers()); diff != "" {
		t.Fatalf("answers changed (-want +got):\n%s", diff)
	}

	sub.result = Result{Success: true}
	if _, err := w.Complete(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(sub.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(sub.calls))
	}
}

func TestCompleteTransportFailureUsesFallbackMessage(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	w := New(domain.EarlyAccessSteps(), sub, WithStartStep(6))
	result, err := w.Complete(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if result.Error != DefaultFailureMessage {
		t.Fatalf("error = %q, want fallback", result.Error)
	}
	if w.Submitting() {
		t.Fatal("submitting flag must be reset")
	}
}

func TestCompleteRejectsDuplicateSubmission(t *testing.T) {
	sub := &fakeSubmitter{
		result:  Result{Success: true},
		blockCh: make(chan struct{}),
		started: make(chan struct{}),
	}
	w := New(domain.EarlyAccessSteps(), sub, WithStartStep(6))

	done := make(chan error, 1)
	go func() {
		_, err := w.Complete(context.Background())
		done <- err
	}()
	<-sub.started

	if !w.Submitting() {
		t.Fatal("expected submitting flag during the round trip")
	}
	if _, err := w.Complete(context.Background()); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", err)
	}
	close(sub.blockCh)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if w.Submitting() {
		t.Fatal("submitting flag must be cleared")
	}
}

func TestHTTPSubmitterDecodesEnvelope(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != SubmitPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"boom","helpfulMessage":"try again","details":{"code":400}}`))
	}))
	defer srv.Close()

	handle := "@legacy"
	sub := NewHTTPSubmitter(srv.URL+"/", srv.Client())
	result, err := sub.Submit(context.Background(), domain.Application{Email: "a@b.com", Twitter: &handle})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.Error != "boom" || result.HelpfulMessage != "try again" {
		t.Fatalf("unexpected result %+v", result)
	}
	if received["twitter"] != "@legacy" {
		t.Fatalf("twitter not sent: %v", received)
	}
	if _, ok := received["socialPlatformLink"]; ok {
		t.Fatalf("absent link must not be sent: %v", received)
	}
}

func TestHTTPSubmitterRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(srv.URL, srv.Client())
	if _, err := sub.Submit(context.Background(), domain.Application{}); err == nil {
		t.Fatal("expected decode error")
	}
}
