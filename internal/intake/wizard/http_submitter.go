package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// SubmitPath is the path of the submission endpoint relative to the API base URL.
const SubmitPath = "/api/submit"

const maxResponseBody = 1 << 20

// HTTPSubmitter posts applications to the submission endpoint.
type HTTPSubmitter struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSubmitter は baseURL の /api/submit へ送信する Submitter を返す。client が nil なら 30 秒タイムアウトのクライアントを使う。
func NewHTTPSubmitter(baseURL string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSubmitter{
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + SubmitPath,
		httpClient: client,
	}
}

// Submit implements Submitter. Structured failure envelopes are returned as a Result with a nil error;
// transport errors and undecodable bodies are returned as errors.
func (s *HTTPSubmitter) Submit(ctx context.Context, app domain.Application) (Result, error) {
	body, err := json.Marshal(app)
	if err != nil {
		return Result{}, fmt.Errorf("送信ペイロードの作成に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("送信リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("送信リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return Result{}, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("レスポンスの解析に失敗: status=%d: %w", res.StatusCode, err)
	}
	if res.StatusCode >= 400 && result.Success {
		return Result{}, fmt.Errorf("unexpected success payload with status=%d", res.StatusCode)
	}
	return result, nil
}
