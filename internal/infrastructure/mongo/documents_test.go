package mongo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

func TestApplicationDocumentKeepsLegacyPointers(t *testing.T) {
	handle := "@legacy"
	app := domain.Application{Region: "USA", Country: "United States", Email: "a@b.com", Twitter: &handle}
	got := fromApplicationDocument(toApplicationDocument(app))
	if diff := cmp.Diff(app, got); diff != "" {
		t.Fatalf("application mismatch (-want +got):\n%s", diff)
	}
}

func TestMapFailedSubmissionDocument(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := FailedSubmissionDocument{
		ID:           id,
		SubmissionID: "sub-1",
		Kind:         "unsupported_document",
		Message:      "not supported",
		Details:      encodeDetails(map[string]any{"code": 400}),
		Status:       failedStatusResolved,
		ResolvedBy:   "ops",
		CreatedAt:    created,
	}

	got := mapFailedSubmissionDocument(doc)
	if got.ID != id.Hex() || !got.Resolved || got.ResolvedBy != "ops" {
		t.Fatalf("unexpected mapping %+v", got)
	}
	raw, ok := got.Details.(json.RawMessage)
	if !ok || string(raw) != `{"code":400}` {
		t.Fatalf("details = %#v", got.Details)
	}
}

func TestEncodeDetailsNil(t *testing.T) {
	if encodeDetails(nil) != "" {
		t.Fatal("nil details must encode to empty string")
	}
	if decodeDetails("") != nil {
		t.Fatal("empty details must decode to nil")
	}
}
