package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationDocument は応募 1 件分の回答を埋め込みドキュメントとして表現したもの。
type ApplicationDocument struct {
	Region                 string  `bson:"region"`
	Country                string  `bson:"country"`
	Name                   string  `bson:"name,omitempty"`
	Email                  string  `bson:"email"`
	Telegram               string  `bson:"telegram,omitempty"`
	SocialPlatform         string  `bson:"socialPlatform,omitempty"`
	SocialPlatformLink     *string `bson:"socialPlatformLink,omitempty"`
	Twitter                *string `bson:"twitter,omitempty"`
	PreferredContactMethod string  `bson:"preferredContactMethod,omitempty"`
}

// FailedSubmissionDocument は追記に失敗した応募のスキーマ。管理画面から手動で再入力するために保持する。
type FailedSubmissionDocument struct {
	ID             primitive.ObjectID  `bson:"_id"`
	SubmissionID   string              `bson:"submissionId"`
	Application    ApplicationDocument `bson:"application"`
	Kind           string              `bson:"kind"`
	Message        string              `bson:"message"`
	HelpfulMessage string              `bson:"helpfulMessage,omitempty"`
	UpstreamStatus int                 `bson:"upstreamStatus,omitempty"`
	Details        string              `bson:"details,omitempty"`
	Status         string              `bson:"status"`
	ResolvedBy     string              `bson:"resolvedBy,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt"`
	ResolvedAt     *time.Time          `bson:"resolvedAt,omitempty"`
}

const (
	failedStatusPending  = "pending"
	failedStatusResolved = "resolved"
)
