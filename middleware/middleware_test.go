package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mini-feign/template"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// 模拟一个简单的 handler：直接返回成功响应
func echoHandler(ctx context.Context, req *template.Request) (*http.Response, error) {
	return newResponse(http.StatusOK, "ok"), nil
}

// 模拟一个慢 handler：睡 200ms
func slowHandler(ctx context.Context, req *template.Request) (*http.Response, error) {
	time.Sleep(200 * time.Millisecond)
	return newResponse(http.StatusOK, "ok"), nil
}

func newRequest(t *testing.T) *template.Request {
	req, err := template.New().Method("POST").Target("http://localhost").Path("/Echo/Say").Request()
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var seenID string
	handler := LoggingMiddleware(zap.New(core))(func(ctx context.Context, req *template.Request) (*http.Response, error) {
		seenID = req.Header(RequestIDHeader)
		return echoHandler(ctx, req)
	})

	resp, err := handler(context.Background(), newRequest(t))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expect status 200, got %d", resp.StatusCode)
	}
	if seenID == "" {
		t.Fatal("expect a request id to be attached")
	}

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expect 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["requestId"]; got != seenID {
		t.Fatalf("logged request id %v, want %s", got, seenID)
	}
}

func TestLoggingKeepsRequestID(t *testing.T) {
	var seenID string
	handler := LoggingMiddleware(nil)(func(ctx context.Context, req *template.Request) (*http.Response, error) {
		seenID = req.Header(RequestIDHeader)
		return echoHandler(ctx, req)
	})

	handler(context.Background(), newRequest(t).WithHeader(RequestIDHeader, "fixed"))
	if seenID != "fixed" {
		t.Fatalf("expect existing id kept, got %s", seenID)
	}
}

func TestTimeoutPass(t *testing.T) {
	// 超时 500ms，handler 很快，应该正常返回
	handler := TimeOutMiddleware(500 * time.Millisecond)(echoHandler)

	resp, err := handler(context.Background(), newRequest(t))
	if err != nil {
		t.Fatalf("expect no error, got '%v'", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("expect body 'ok', got '%s'", body)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	// 超时 50ms，handler 需要 200ms，应该超时
	handler := TimeOutMiddleware(50 * time.Millisecond)(slowHandler)

	_, err := handler(context.Background(), newRequest(t))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expect timeout error, got '%v'", err)
	}
}

func TestTimeoutCallerCanceled(t *testing.T) {
	// 调用方主动取消：返回 context.Canceled，而不是超时，重试也不会再发
	var calls atomic.Int32
	slow := func(ctx context.Context, req *template.Request) (*http.Response, error) {
		calls.Add(1)
		return slowHandler(ctx, req)
	}
	handler := RetryMiddleware(3, time.Millisecond, nil)(TimeOutMiddleware(time.Second)(slow))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := handler(ctx, newRequest(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expect context.Canceled, got '%v'", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("cancellation reported as timeout: '%v'", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expect no retry after cancel, got %d calls", calls.Load())
	}
}

func TestRetryOnUnavailable(t *testing.T) {
	var calls atomic.Int32
	flaky := func(ctx context.Context, req *template.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return newResponse(http.StatusServiceUnavailable, ""), nil
		}
		return newResponse(http.StatusOK, "ok"), nil
	}

	resp, err := RetryMiddleware(3, time.Millisecond, nil)(flaky)(context.Background(), newRequest(t))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expect 200 after retries, got %d", resp.StatusCode)
	}
	if calls.Load() != 3 {
		t.Fatalf("expect 3 calls, got %d", calls.Load())
	}
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	refused := func(ctx context.Context, req *template.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	}

	_, err := RetryMiddleware(2, time.Millisecond, nil)(refused)(context.Background(), newRequest(t))
	if err == nil {
		t.Fatal("expect error after retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expect 1 call + 2 retries, got %d", calls.Load())
	}
}

func TestRetrySkipsNonRetryable(t *testing.T) {
	var calls atomic.Int32
	badRequest := func(ctx context.Context, req *template.Request) (*http.Response, error) {
		calls.Add(1)
		return newResponse(http.StatusBadRequest, ""), nil
	}

	resp, _ := RetryMiddleware(3, time.Millisecond, nil)(badRequest)(context.Background(), newRequest(t))
	if resp.StatusCode != http.StatusBadRequest || calls.Load() != 1 {
		t.Fatalf("expect a single 400, got %d after %d calls", resp.StatusCode, calls.Load())
	}
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	req := newRequest(t)

	// 前 2 个应该通过（burst=2）
	for i := 0; i < 2; i++ {
		if _, err := handler(context.Background(), req); err != nil {
			t.Fatalf("request %d should pass, got error: %v", i, err)
		}
	}

	// 第 3 个应该被限流
	if _, err := handler(context.Background(), req); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("request 3 should be rate limited, got: '%v'", err)
	}
}

func TestRateLimitWait(t *testing.T) {
	handler := RateLimitWaitMiddleware(1, 1)(echoHandler)
	req := newRequest(t)

	if _, err := handler(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := handler(ctx, req); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expect rate limit error when the wait cannot finish, got %v", err)
	}
}

func TestChain(t *testing.T) {
	// 用 Chain 组合 Logging + Timeout，验证请求能正常穿过
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *template.Request) (*http.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	chained := Chain(mark("a"), LoggingMiddleware(nil), TimeOutMiddleware(500*time.Millisecond), mark("b"))
	resp, err := chained(echoHandler)(context.Background(), newRequest(t))
	if err != nil {
		t.Fatalf("expect no error, got '%v'", err)
	}
	resp.Body.Close()

	if strings.Join(order, ",") != "a,b" {
		t.Fatalf("unexpected order: %v", order)
	}
}
