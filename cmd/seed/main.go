package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/affiliate-intake/api/internal/config"
	mongodoc "github.com/sngm3741/affiliate-intake/api/internal/infrastructure/mongo"
	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

type seedOptions struct {
	envName         string
	failedCount     int
	resolvedCount   int
	dropCollections bool
	randomSeed      int64
}

var sampleNames = []string{"Ann Lee", "Bruno Silva", "Chen Wei", "Dana Cohen", "Emeka Obi", "Fatima Khan", "Gustavo Ruiz", "Hana Sato"}

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
	}
	cfg := config.Load()
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodoc.NewFailedSubmissionRepository(client.Database(cfg.MongoDatabase), cfg.FailedSubmissionCollection)

	if opts.dropCollections {
		if err := repo.Drop(ctx); err != nil {
			log.Printf("WARN: コレクション %s の削除に失敗: %v", cfg.FailedSubmissionCollection, err)
		} else {
			log.Printf("既存コレクションを削除しました")
		}
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	records := generateFailedSubmissions(rng, opts.failedCount)
	for i := range records {
		if err := repo.Create(ctx, &records[i]); err != nil {
			log.Fatalf("送信失敗ログの挿入に失敗しました: %v", err)
		}
	}

	resolved := 0
	for i := 0; i < opts.resolvedCount && i < len(records); i++ {
		if _, err := repo.MarkResolved(ctx, records[i].ID, "seed", time.Now().UTC()); err != nil {
			log.Fatalf("解決済みへの更新に失敗しました: %v", err)
		}
		resolved++
	}

	log.Printf("Seed 完了: failedSubmissions=%d resolved=%d", len(records), resolved)
	log.Printf("Mongo: %s / %s (env=%s)", cfg.MongoURI, cfg.MongoDatabase, opts.envName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env ディレクトリ内の env ファイル名 (例: local, staging)")
	flag.IntVar(&opts.failedCount, "failed", 12, "生成する送信失敗ログ数")
	flag.IntVar(&opts.resolvedCount, "resolved", 3, "解決済みにする件数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "乱数シード（再現用）")
	flag.Parse()

	if opts.failedCount < 0 {
		opts.failedCount = 0
	}
	if opts.resolvedCount < 0 {
		opts.resolvedCount = 0
	}
	return opts
}

// loadEnvFiles は shared.env と <env>.env を読み込む。存在しないファイルは無視する。
func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	for _, file := range []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	} {
		if err := godotenv.Overload(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s の読み込みに失敗しました: %w", file, err)
		}
	}
	return nil
}

func generateFailedSubmissions(rng *rand.Rand, count int) []domain.FailedSubmission {
	countries := domain.Countries()
	now := time.Now().UTC()
	records := make([]domain.FailedSubmission, 0, count)
	for i := 0; i < count; i++ {
		name := sampleNames[rng.Intn(len(sampleNames))]
		country := countries[rng.Intn(len(countries))]
		platform := domain.SocialPlatforms[rng.Intn(len(domain.SocialPlatforms))]
		handle := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
		link := fmt.Sprintf("https://%s.example.com/%s", platform.Value, handle)
		contact := domain.ContactMethods[rng.Intn(len(domain.ContactMethods))]

		app := domain.Application{
			Region:                 domain.RegionFor(country),
			Country:                country,
			Name:                   name,
			Email:                  fmt.Sprintf("%s%d@example.com", handle, i),
			Telegram:               "@" + handle,
			SocialPlatform:         platform.Value,
			SocialPlatformLink:     &link,
			PreferredContactMethod: contact.Value,
		}

		subErr := sampleError(rng)
		records = append(records, domain.FailedSubmission{
			SubmissionID:   fmt.Sprintf("seed-%04d", i+1),
			Application:    app,
			Kind:           string(subErr.Kind),
			Message:        subErr.Message,
			HelpfulMessage: subErr.HelpfulMessage,
			UpstreamStatus: subErr.Status,
			Details:        subErr.Details,
			CreatedAt:      now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		})
	}
	return records
}

type seedUpstreamError struct {
	status  int
	message string
}

func (e seedUpstreamError) Error() string        { return e.message }
func (e seedUpstreamError) UpstreamStatus() int  { return e.status }
func (e seedUpstreamError) UpstreamDetails() any { return map[string]any{"code": e.status, "message": e.message} }

// sampleError は実際の分類ロジックを通して失敗内容を作る。
func sampleError(rng *rand.Rand) *intakeapp.SubmissionError {
	samples := []seedUpstreamError{
		{status: 400, message: "This operation is not supported for this document"},
		{status: 403, message: "The caller does not have permission"},
		{status: 429, message: "Quota exceeded for quota metric 'Write requests'"},
		{status: 503, message: "The service is currently unavailable."},
	}
	return intakeapp.ClassifyUpstreamError(samples[rng.Intn(len(samples))])
}
