package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/affiliate-intake/api/internal/config"
	"github.com/sngm3741/affiliate-intake/api/internal/infrastructure/messenger"
	mongodoc "github.com/sngm3741/affiliate-intake/api/internal/infrastructure/mongo"
	"github.com/sngm3741/affiliate-intake/api/internal/infrastructure/sheets"
	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	adminhttp "github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/admin"
	commonhttp "github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/public"
)

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger                  *log.Logger
	client                  *mongo.Client
	failedSubmissionRepo    *mongodoc.FailedSubmissionRepository
	submissionService       intakeapp.SubmissionService
	failedSubmissionService intakeapp.FailedSubmissionService
	requestTimeout          time.Duration
	jwtConfigs              []config.JWTConfig
	jwtAudience             string
	addr                    string
	allowedOrigins          []string
}

type authenticatedUser = commonhttp.AuthenticatedUser

// Run はHTTPサーバーを起動し、シグナルを受けるまでブロックする。
func (s *Server) Run() error {
	if err := s.ensureIndexes(context.Background()); err != nil {
		s.logger.Printf("送信失敗ログのインデックス作成に失敗しました: %v", err)
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

func (s *Server) ensureIndexes(ctx context.Context) error {
	if s.failedSubmissionRepo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.failedSubmissionRepo.EnsureIndexes(ctx)
}

// Router は Public/Admin のルーティングとミドルウェアを組み立てる。
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		Submissions:    s.submissionService,
		RequestTimeout: s.requestTimeout,
	})
	publicHandler.Register(router)

	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/me", s.meHandler())
		if s.failedSubmissionService == nil {
			r.HandleFunc("/failed-submissions", s.unavailableHandler())
			r.HandleFunc("/failed-submissions/*", s.unavailableHandler())
			return
		}
		adminHandler := adminhttp.NewHandler(adminhttp.Config{
			Logger:            s.logger,
			FailedSubmissions: s.failedSubmissionService,
		})
		adminHandler.Register(r)
	})

	return router
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB が構成されていれば疎通確認も行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if s.client == nil {
			s.writeJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"mongo":  "disabled",
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"mongo":  "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// meHandler はトークン検証結果の確認用。
func (s *Server) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := commonhttp.UserFromContext(r.Context())
		s.writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) unavailableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "送信失敗ログは MONGO_URI 未設定のため利用できません"})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みユーザーをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization ヘッダーがありません"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bearer トークンを指定してください"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "アクセストークンが空です"})
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		user := authenticatedUser{
			ID:       claims.Subject,
			Name:     claims.Name,
			Username: claims.PreferredUsername,
			Picture:  claims.Picture,
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAuthToken は複数の JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, fmt.Errorf("認証設定が構成されていません")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, fmt.Errorf("アクセストークンが無効です")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name,omitempty"`
	Picture           string `json:"picture,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// Option overrides collaborators built by New. Used by tests and alternative entrypoints.
type Option func(*wiring)

type wiring struct {
	appender intakeapp.SheetAppender
}

// WithSheetAppender replaces the Google Sheets appender.
func WithSheetAppender(appender intakeapp.SheetAppender) Option {
	return func(w *wiring) {
		w.appender = appender
	}
}

// New は Config と Mongo クライアントを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
// client が nil の場合は送信失敗ログと管理 API を無効化する。
func New(cfg config.Config, client *mongo.Client, opts ...Option) *Server {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.New(os.Stdout, "[affiliate-intake-api] ", log.LstdFlags)
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		requestTimeout: cfg.RequestTimeout,
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}

	w := &wiring{}
	for _, opt := range opts {
		opt(w)
	}
	if w.appender == nil {
		w.appender = sheets.NewAppender()
	}

	submissionCfg := intakeapp.SubmissionConfig{
		Logger: logger,
		Credentials: intakeapp.SheetCredentials{
			ClientEmail:   cfg.Google.ServiceAccountEmail,
			PrivateKey:    cfg.Google.PrivateKey,
			SpreadsheetID: cfg.Google.SheetID,
			Range:         cfg.Google.SheetRange,
		},
		Appender: w.appender,
	}

	if client != nil {
		repo := mongodoc.NewFailedSubmissionRepository(client.Database(cfg.MongoDatabase), cfg.FailedSubmissionCollection)
		submissionCfg.Failures = repo
		srv.failedSubmissionRepo = repo
		srv.failedSubmissionService = intakeapp.NewFailedSubmissionService(repo)
	}

	if notifier := messenger.New(messenger.Config{
		Logger:             logger,
		HTTPClient:         &http.Client{Timeout: cfg.MessengerTimeout},
		Endpoint:           cfg.MessengerEndpoint,
		DiscordDestination: cfg.DiscordDestination,
		SlackDestination:   cfg.SlackDestination,
	}); notifier != nil {
		submissionCfg.Notifier = notifier
	}

	srv.submissionService = intakeapp.NewSubmissionService(submissionCfg)
	return srv
}
