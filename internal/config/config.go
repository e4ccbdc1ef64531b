package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// GoogleConfig holds the service-account credentials and the destination sheet.
// Values are checked per request, not at startup.
type GoogleConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SheetID             string
	SheetRange          string
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                       string
	MongoURI                   string
	MongoDatabase              string
	FailedSubmissionCollection string
	Timeout                    time.Duration
	RequestTimeout             time.Duration
	ServerLog                  *log.Logger
	Google                     GoogleConfig
	JWTConfigs                 []JWTConfig
	JWTAudience                string
	MessengerEndpoint          string
	DiscordDestination         string
	SlackDestination           string
	MessengerTimeout           time.Duration
	AllowedOrigins             []string
}

// rawEnv は環境変数をそのまま受け取る中間構造体。
type rawEnv struct {
	Addr                       string        `env:"HTTP_ADDR" envDefault:":8080"`
	MongoURI                   string        `env:"MONGO_URI"`
	MongoDatabase              string        `env:"MONGO_DB" envDefault:"affiliate-intake"`
	FailedSubmissionCollection string        `env:"FAILED_SUBMISSION_COLLECTION" envDefault:"failed_submissions"`
	MongoConnectTimeout        time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	RequestTimeout             time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"30s"`

	GoogleServiceAccountEmail string `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	GooglePrivateKey          string `env:"GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY"`
	GoogleSheetID             string `env:"GOOGLE_SHEET_ID"`
	GoogleSheetRange          string `env:"GOOGLE_SHEET_RANGE" envDefault:"A1:H1"`

	AdminJWTSecret   string        `env:"ADMIN_JWT_SECRET"`
	AdminJWTIssuer   string        `env:"ADMIN_JWT_ISSUER" envDefault:"affiliate-intake-admin"`
	AuthJWTAudience  string        `env:"AUTH_JWT_AUDIENCE"`
	MessengerURL     string        `env:"MESSENGER_GATEWAY_URL"`
	DiscordDest      string        `env:"MESSENGER_DISCORD_INCOMING_DESTINATION"`
	SlackDest        string        `env:"MESSENGER_SLACK_DESTINATION"`
	MessengerTimeout time.Duration `env:"MESSENGER_GATEWAY_TIMEOUT" envDefault:"3s"`

	AllowedOrigins []string `env:"API_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	logger := log.New(os.Stdout, "[affiliate-intake-api] ", log.LstdFlags|log.Lshortfile)

	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		logger.Fatalf("環境変数の読み込みに失敗: %v", err)
	}

	cfg := fromRaw(raw)
	cfg.ServerLog = logger

	cfg.ServerLog.Printf("loaded config: addr=%q mongo=%t sheetConfigured=%t messengerEndpoint=%q",
		cfg.Addr, cfg.MongoURI != "", cfg.Google.SheetID != "", cfg.MessengerEndpoint)

	return cfg
}

func fromRaw(raw rawEnv) Config {
	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(raw.AdminJWTSecret); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: strings.TrimSpace(raw.AdminJWTIssuer),
			Secret: []byte(secret),
		})
	}

	return Config{
		Addr:                       raw.Addr,
		MongoURI:                   strings.TrimSpace(raw.MongoURI),
		MongoDatabase:              raw.MongoDatabase,
		FailedSubmissionCollection: raw.FailedSubmissionCollection,
		Timeout:                    raw.MongoConnectTimeout,
		RequestTimeout:             raw.RequestTimeout,
		Google: GoogleConfig{
			ServiceAccountEmail: raw.GoogleServiceAccountEmail,
			PrivateKey:          raw.GooglePrivateKey,
			SheetID:             raw.GoogleSheetID,
			SheetRange:          strings.TrimSpace(raw.GoogleSheetRange),
		},
		JWTConfigs:         jwtConfigs,
		JWTAudience:        strings.TrimSpace(raw.AuthJWTAudience),
		MessengerEndpoint:  strings.TrimRight(strings.TrimSpace(raw.MessengerURL), "/"),
		DiscordDestination: strings.TrimSpace(raw.DiscordDest),
		SlackDestination:   strings.TrimSpace(raw.SlackDest),
		MessengerTimeout:   raw.MessengerTimeout,
		AllowedOrigins:     trimList(raw.AllowedOrigins, []string{"*"}),
	}
}

// trimList drops blank entries; an all-blank list yields fallback.
func trimList(parts []string, fallback []string) []string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
