package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// FailedSubmissionRepository は追記失敗ログを MongoDB に保存・参照するリポジトリ。
type FailedSubmissionRepository struct {
	collection *mongo.Collection
}

// NewFailedSubmissionRepository binds the repository to collectionName.
func NewFailedSubmissionRepository(db *mongo.Database, collectionName string) *FailedSubmissionRepository {
	return &FailedSubmissionRepository{collection: db.Collection(collectionName)}
}

var _ application.FailedSubmissionStore = (*FailedSubmissionRepository)(nil)

// EnsureIndexes は管理画面の一覧クエリ用インデックスを作成する。
func (r *FailedSubmissionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_failed_status_created"),
		},
		{
			Keys:    bson.D{{Key: "submissionId", Value: 1}},
			Options: options.Index().SetName("idx_failed_submission_id"),
		},
	})
	return err
}

// Drop removes the collection. Used by the seed command.
func (r *FailedSubmissionRepository) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}

// Create は失敗した応募を pending 状態で保存し、採番した ID を record に反映する。
func (r *FailedSubmissionRepository) Create(ctx context.Context, record *domain.FailedSubmission) error {
	doc := FailedSubmissionDocument{
		ID:             primitive.NewObjectID(),
		SubmissionID:   record.SubmissionID,
		Application:    toApplicationDocument(record.Application),
		Kind:           record.Kind,
		Message:        record.Message,
		HelpfulMessage: record.HelpfulMessage,
		UpstreamStatus: record.UpstreamStatus,
		Details:        encodeDetails(record.Details),
		Status:         failedStatusPending,
		CreatedAt:      record.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	record.ID = doc.ID.Hex()
	return nil
}

// Find は新しい順に失敗ログを返す。IncludeResolved=false のときは pending のみ。
func (r *FailedSubmissionRepository) Find(ctx context.Context, filter application.FailedSubmissionFilter, paging application.Paging) ([]domain.FailedSubmission, error) {
	mongoFilter := bson.M{}
	if !filter.IncludeResolved {
		mongoFilter["status"] = failedStatusPending
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		mongoFilter["kind"] = kind
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if paging.Limit > 0 {
		paging = paging.Normalize()
		findOpts.SetLimit(int64(paging.Limit))
		if paging.Page > 1 {
			findOpts.SetSkip(int64(paging.Page-1) * int64(paging.Limit))
		}
	}

	cursor, err := r.collection.Find(ctx, mongoFilter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]domain.FailedSubmission, 0)
	for cursor.Next(ctx) {
		var doc FailedSubmissionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, mapFailedSubmissionDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID returns application.ErrFailedSubmissionNotFound for unknown or malformed IDs.
func (r *FailedSubmissionRepository) FindByID(ctx context.Context, id string) (*domain.FailedSubmission, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, application.ErrFailedSubmissionNotFound
	}

	var doc FailedSubmissionDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrFailedSubmissionNotFound
		}
		return nil, err
	}
	record := mapFailedSubmissionDocument(doc)
	return &record, nil
}

// MarkResolved は対応済みフラグを立て、更新後のドキュメントを返す。
func (r *FailedSubmissionRepository) MarkResolved(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.FailedSubmission, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, application.ErrFailedSubmissionNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":     failedStatusResolved,
		"resolvedBy": resolvedBy,
		"resolvedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc FailedSubmissionDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrFailedSubmissionNotFound
		}
		return nil, err
	}
	record := mapFailedSubmissionDocument(doc)
	return &record, nil
}

func toApplicationDocument(app domain.Application) ApplicationDocument {
	return ApplicationDocument{
		Region:                 app.Region,
		Country:                app.Country,
		Name:                   app.Name,
		Email:                  app.Email,
		Telegram:               app.Telegram,
		SocialPlatform:         app.SocialPlatform,
		SocialPlatformLink:     app.SocialPlatformLink,
		Twitter:                app.Twitter,
		PreferredContactMethod: app.PreferredContactMethod,
	}
}

func fromApplicationDocument(doc ApplicationDocument) domain.Application {
	return domain.Application{
		Region:                 doc.Region,
		Country:                doc.Country,
		Name:                   doc.Name,
		Email:                  doc.Email,
		Telegram:               doc.Telegram,
		SocialPlatform:         doc.SocialPlatform,
		SocialPlatformLink:     doc.SocialPlatformLink,
		Twitter:                doc.Twitter,
		PreferredContactMethod: doc.PreferredContactMethod,
	}
}

// encodeDetails は上流の詳細情報を JSON 文字列として保存する。型に依存せず復元できるようにするため。
func encodeDetails(details any) string {
	if details == nil {
		return ""
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeDetails(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.RawMessage(raw)
}

func mapFailedSubmissionDocument(doc FailedSubmissionDocument) domain.FailedSubmission {
	return domain.FailedSubmission{
		ID:             doc.ID.Hex(),
		SubmissionID:   doc.SubmissionID,
		Application:    fromApplicationDocument(doc.Application),
		Kind:           doc.Kind,
		Message:        doc.Message,
		HelpfulMessage: doc.HelpfulMessage,
		UpstreamStatus: doc.UpstreamStatus,
		Details:        decodeDetails(doc.Details),
		Resolved:       doc.Status == failedStatusResolved,
		ResolvedBy:     doc.ResolvedBy,
		CreatedAt:      doc.CreatedAt,
		ResolvedAt:     doc.ResolvedAt,
	}
}
