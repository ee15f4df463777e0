package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/shouni/go-company-classifier/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 10 * time.Second        // 1回の試行あたりのタイムアウト
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// サイトからの単純なボットブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

// DefaultHeaders は一般的なデスクトップブラウザを模したリクエストヘッダーを返します。
func DefaultHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", UserAgent)
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Referer", "https://google.com")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Connection", "keep-alive")
	h.Set("DNT", "1") // Do Not Track
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// ErrInvalidRequest はリクエスト自体を組み立てられなかったことを示します。リトライ対象外です。
var ErrInvalidRequest = errors.New("リクエストを作成できません")

// StatusError は 2xx/3xx 以外のHTTPステータスを示すエラー型です。リトライ対象です。
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 1024 {
		body = body[:1024] + "..."
	}
	if body != "" {
		return fmt.Sprintf("HTTPステータスコードエラー: %d, ボディ: %s", e.StatusCode, body)
	}
	return fmt.Sprintf("HTTPステータスコードエラー: %d, ボディなし", e.StatusCode)
}

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client はブラウザ風ヘッダーと固定間隔リトライを備えたページ取得クライアントです。
// 1つの Client (とその keep-alive セッション) を実行全体で共有します。逐次アクセスを前提とします。
type Client struct {
	httpClient  Doer
	retryConfig retry.Config
	headers     http.Header
	limiter     *hostLimiter
}

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithMaxRetries は最大リトライ回数 (初回を除く) を設定します。
func WithMaxRetries(max uint64) ClientOption {
	return func(c *Client) {
		c.retryConfig.MaxRetries = max
	}
}

// WithRetryDelay は試行間の固定待機時間を設定します。
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryConfig.Delay = d
	}
}

// WithRateLimit はホストごとの1秒あたりの最大リクエスト数を設定します。0以下は無制限です。
func WithRateLimit(reqPerSec float64) ClientOption {
	return func(c *Client) {
		c.limiter = newHostLimiter(reqPerSec)
	}
}

// WithHeaders はデフォルトのヘッダーに値を追加・上書きします。
func WithHeaders(h http.Header) ClientOption {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = append([]string(nil), v...)
		}
	}
}

// ParseHeaders は "Name: Value" 形式の文字列を http.Header に変換します。
// コマンドラインの --header で既定のヘッダーを上書きするために使用します。
func ParseHeaders(lines []string) (http.Header, error) {
	h := http.Header{}
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("ヘッダーの形式が不正です (Name: Value で指定してください): %q", line)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// New は、新しいClientを生成します。
// Cookie を保持するセッションとして振る舞うよう、publicsuffix 対応の CookieJar を設定します。
func New(timeout time.Duration, options ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		httpClient.Jar = jar
	}

	c := &Client{
		httpClient:  httpClient,
		retryConfig: retry.DefaultConfig(),
		headers:     DefaultHeaders(),
		limiter:     newHostLimiter(0),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// FetchDocument はURLからHTMLを取得し、goquery.Documentを返します。
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました (URL: %s): %w", url, err)
	}
	return doc, nil
}

// FetchBytes はURLからコンテンツを取得し、生のバイト配列として返します。
// 試行ごとの失敗と最終的な失敗はログに出力されます。失敗は呼び出し元にエラー値として返されます。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		var fetchErr error
		body, fetchErr = c.doFetch(ctx, url)
		return fetchErr
	}

	attempts := c.retryConfig.Attempts()
	notify := func(err error, attempt uint64, wait time.Duration) {
		log.Printf("接続エラー: %v。%s後にリトライします (%d/%d)...", err, wait, attempt, attempts)
	}

	err := retry.Do(
		ctx,
		c.retryConfig,
		fmt.Sprintf("URL(%s)のフェッチ", url),
		op,
		isRetryableError,
		notify,
	)
	if err != nil {
		log.Printf("データの取得に失敗しました: %v", err)
		return nil, err
	}
	return body, nil
}

// doFetch は実際の一度のHTTP GETリクエストを実行します。
func (c *Client) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	if err := c.limiter.wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: bodyBytes}
	}
	if readErr != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", readErr)
	}
	return bodyBytes, nil
}

// IsStatusError は与えられたエラーがHTTPステータスエラーであるかを判断します。
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// isRetryableError はエラーがリトライ対象かどうかを判定します。
// 接続エラー、タイムアウト、不正なステータスはすべて一時的なエラーとして扱います。
// この関数は retry.ShouldRetryFunc 型のシグネチャを満たします。
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrInvalidRequest)
}
