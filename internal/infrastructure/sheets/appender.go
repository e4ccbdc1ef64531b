package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/application"
)

// Scopes はサービスアカウントに要求する権限。
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/drive.file",
}

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// Appender appends rows through the Sheets v4 API using service-account credentials.
// A new authenticated client is built for every call; no state is shared across requests.
type Appender struct {
	tokenURL   string
	endpoint   string
	baseClient *http.Client
}

// Option customises an Appender.
type Option func(*Appender)

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(a *Appender) { a.tokenURL = u }
}

// WithEndpoint overrides the Sheets API base URL.
func WithEndpoint(u string) Option {
	return func(a *Appender) { a.endpoint = u }
}

// WithHTTPClient sets the transport used for both token and API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Appender) { a.baseClient = c }
}

// NewAppender constructs an Appender.
func NewAppender(opts ...Option) *Appender {
	a := &Appender{tokenURL: google.JWTTokenURL}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ application.SheetAppender = (*Appender)(nil)

// Append は 1 行を creds.Range へ追記し、API の応答をそのまま返す。
func (a *Appender) Append(ctx context.Context, creds application.SheetCredentials, row []any) (any, error) {
	conf := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(creds.PrivateKey),
		Scopes:     Scopes,
		TokenURL:   a.tokenURL,
	}

	clientCtx := ctx
	if a.baseClient != nil {
		clientCtx = context.WithValue(ctx, oauth2.HTTPClient, a.baseClient)
	}

	opts := []option.ClientOption{option.WithHTTPClient(conf.Client(clientCtx))}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets クライアントの作成に失敗: %w", err)
	}

	values := &sheetsapi.ValueRange{Values: [][]any{row}}
	resp, err := svc.Spreadsheets.Values.Append(creds.SpreadsheetID, creds.Range, values).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err)
	}
	return resp, nil
}

// AppendError exposes the upstream status code and structured detail of a failed append.
type AppendError struct {
	Status  int
	Message string
	Details any
	Err     error
}

func (e *AppendError) Error() string {
	return e.Message
}

func (e *AppendError) Unwrap() error {
	return e.Err
}

// UpstreamStatus implements application.UpstreamError.
func (e *AppendError) UpstreamStatus() int {
	return e.Status
}

// UpstreamDetails implements application.UpstreamError.
func (e *AppendError) UpstreamDetails() any {
	return e.Details
}

// upstreamDetails は googleapi.Error から JSON 化できる情報だけを抜き出す。
type upstreamDetails struct {
	Code    int                   `json:"code"`
	Message string                `json:"message"`
	Errors  []googleapi.ErrorItem `json:"errors,omitempty"`
	Details []any                 `json:"details,omitempty"`
}

func wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = err.Error()
		}
		return &AppendError{
			Status:  apiErr.Code,
			Message: message,
			Details: upstreamDetails{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Errors:  apiErr.Errors,
				Details: apiErr.Details,
			},
			Err: err,
		}
	}

	// トークン取得失敗の 400 (invalid_grant 等) はシート側の判定に混ぜないため Status を立てない。
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		details := map[string]any{
			"error":            retrieveErr.ErrorCode,
			"errorDescription": retrieveErr.ErrorDescription,
		}
		if retrieveErr.Response != nil {
			details["tokenStatus"] = retrieveErr.Response.StatusCode
		}
		return &AppendError{
			Message: err.Error(),
			Details: details,
			Err:     err,
		}
	}

	return &AppendError{Message: err.Error(), Err: err}
}
