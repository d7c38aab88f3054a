package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
)

var (
	// ErrRequestTimeout 는 마지막 시도가 타임아웃으로 끝났을 때 반환된다.
	ErrRequestTimeout = errors.New("upstream request timeout")
	// ErrMaxRetriesExceeded 는 재시도를 모두 소진했을 때 반환된다.
	ErrMaxRetriesExceeded = errors.New("upstream max retries exceeded")
)

const (
	// DefaultRetries 는 기본 시도 횟수다.
	DefaultRetries = 3
	// DefaultBaseDelay 는 백오프 기본 지연이다.
	DefaultBaseDelay = time.Second

	imageGenerationMarker = "images/generations"
	maxResponseBytes      = 32 << 20
	maxStatusBodyRunes    = 200
)

// Request 는 재시도마다 다시 만들 수 있는 요청 정의다.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NewJSONRequest 는 Bearer 인증 JSON POST 요청을 만든다.
func NewJSONRequest(endpoint string, token string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode request body: %w", err)
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Header: header,
		Body:   body,
	}, nil
}

// Response 는 본문을 모두 읽은 응답이다.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK 는 2xx 여부를 반환한다.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError 는 2xx 가 아닌 응답을 오류로 표현한다.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "upstream status " + strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// NewStatusError 는 응답 본문 앞부분을 포함한 StatusError 를 만든다.
func NewStatusError(resp *Response) *StatusError {
	if resp == nil {
		return &StatusError{}
	}
	body := []rune(strings.TrimSpace(string(resp.Body)))
	if len(body) > maxStatusBodyRunes {
		body = body[:maxStatusBodyRunes]
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// Doer 는 외부 호출 인터페이스다. 제공자 클라이언트는 이 인터페이스만 의존한다.
type Doer interface {
	FetchWithRetry(ctx context.Context, req Request, retries int, baseDelay time.Duration) (*Response, error)
	Do(ctx context.Context, req Request) (*Response, error)
}

// Client 는 시도별 타임아웃과 429/504 지수 백오프를 적용하는 HTTP 클라이언트다.
type Client struct {
	httpClient   *http.Client
	textTimeout  time.Duration
	imageTimeout time.Duration
	logger       *slog.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

// Options 는 Client 생성 옵션이다.
type Options struct {
	TextTimeout  time.Duration
	ImageTimeout time.Duration
}

// NewClient 는 재시도 클라이언트를 생성한다.
func NewClient(httpClient *http.Client, opts Options, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(TransportConfig{})
	}
	if opts.TextTimeout <= 0 {
		opts.TextTimeout = 30 * time.Second
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:   httpClient,
		textTimeout:  opts.TextTimeout,
		imageTimeout: opts.ImageTimeout,
		logger:       logger,
		sleep:        sleepContext,
	}
}

// ProvideClient 는 설정 기반으로 Client 를 구성한다.
func ProvideClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	return NewClient(httpClient, Options{
		TextTimeout:  time.Duration(cfg.Provider.TextTimeoutSeconds) * time.Second,
		ImageTimeout: time.Duration(cfg.Provider.ImageTimeoutSeconds) * time.Second,
	}, logger)
}

// FetchWithRetry 는 retries 회까지 요청을 시도한다.
//
// 429/504 는 남은 시도가 있을 때만 baseDelay*2^attempt 만큼 쉬고 재시도하며, 마지막 시도의
// 429/504 는 응답 그대로 반환한다. 시도 타임아웃은 즉시 재시도하고 마지막 시도면
// ErrRequestTimeout 을 반환한다. 그 밖의 전송 오류는 재시도하지 않는다.
func (c *Client) FetchWithRetry(ctx context.Context, req Request, retries int, baseDelay time.Duration) (*Response, error) {
	schedule := newSchedule(baseDelay)
	host := hostOf(req.URL)

	for attempt := 0; attempt < retries; attempt++ {
		last := attempt == retries-1
		resp, err := c.attempt(ctx, req, host)
		if err != nil {
			if errors.Is(err, ErrRequestTimeout) && !last {
				// 지연 없이 재시도하지만 다음 백오프 단계는 시도 번호에 맞춘다
				schedule.NextBackOff()
				metrics.UpstreamRetries.WithLabelValues("timeout").Inc()
				c.logger.Warn("upstream_retry", "host", host, "reason", "timeout", "attempt", attempt+1)
				continue
			}
			return nil, err
		}

		if isRetryableStatus(resp.StatusCode) && !last {
			delay := schedule.NextBackOff()
			metrics.UpstreamRetries.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
			c.logger.Warn(
				"upstream_retry",
				"host", host,
				"status", resp.StatusCode,
				"attempt", attempt+1,
				"delay", delay,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("wait for retry: %w", err)
			}
			continue
		}

		return resp, nil
	}

	return nil, ErrMaxRetriesExceeded
}

// Do 는 재시도 없이 한 번만 요청한다. 타임아웃 규칙은 FetchWithRetry 와 같다.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.attempt(ctx, req, hostOf(req.URL))
}

func (c *Client) attempt(ctx context.Context, req Request, host string) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(req.URL))
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
		return nil, c.classify(ctx, attemptCtx, host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.UpstreamDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.classify(ctx, attemptCtx, host, err)
	}

	metrics.UpstreamAttempts.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func (c *Client) classify(parent context.Context, attemptCtx context.Context, host string, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		metrics.UpstreamAttempts.WithLabelValues(host, "canceled").Inc()
		return fmt.Errorf("upstream call canceled: %w", parentErr)
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		metrics.UpstreamAttempts.WithLabelValues(host, "timeout").Inc()
		return fmt.Errorf("%w: %s", ErrRequestTimeout, host)
	}
	metrics.UpstreamAttempts.WithLabelValues(host, "transport_error").Inc()
	return fmt.Errorf("upstream transport: %w", err)
}

func (c *Client) timeoutFor(rawURL string) time.Duration {
	if strings.Contains(rawURL, imageGenerationMarker) {
		return c.imageTimeout
	}
	return c.textTimeout
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusGatewayTimeout
}

// newSchedule 은 지터 없이 baseDelay 에서 두 배씩 늘어나는 백오프다.
func newSchedule(baseDelay time.Duration) *backoff.ExponentialBackOff {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = baseDelay
	schedule.Multiplier = 2.0
	schedule.RandomizationFactor = 0
	schedule.MaxInterval = baseDelay << 10
	schedule.MaxElapsedTime = 0
	schedule.Reset()
	return schedule
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
}
