package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/jsonmend/providers/completion"
	"github.com/leofalp/jsonmend/providers/observability"
	"github.com/leofalp/jsonmend/providers/observability/obstest"
)

type response struct {
	Value int `json:"value"`
}

func TestDoPostSync_Success(t *testing.T) {
	var gotContentType, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	result, err := DoPostSync[response](context.Background(), server.Client(), server.URL, "test",
		map[string]string{"q": "test"}, BearerAuth("test-key"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil || result.Value != 42 {
		t.Fatalf("expected Value=42, got %+v", result)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody != `{"q":"test"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestDoPostSync_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, completion.ErrAuth},
		{http.StatusNotFound, completion.ErrConfig},
		{http.StatusTooManyRequests, completion.ErrRateLimited},
		{http.StatusGatewayTimeout, completion.ErrTimeout},
		{http.StatusBadGateway, completion.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "nope")
			}))
			defer server.Close()

			_, err := DoPostSync[response](context.Background(), server.Client(), server.URL, "test", struct{}{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var cerr *completion.Error
			if !errors.As(err, &cerr) || cerr.StatusCode != tt.status || cerr.Provider != "test" {
				t.Errorf("unexpected error detail: %#v", cerr)
			}
		})
	}
}

func TestDoPostSync_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `"not json"`)
	}))
	defer server.Close()

	_, err := DoPostSync[response](context.Background(), server.Client(), server.URL, "test", struct{}{})
	if !errors.Is(err, completion.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("expected error to mention unmarshal, got: %v", err)
	}
}

func TestDoPostSync_RequestCreateError(t *testing.T) {
	_, err := DoPostSync[response](context.Background(), nil, " bad url", "test", struct{}{})
	if !errors.Is(err, completion.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestDoPostSync_Deadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := DoPostSync[response](ctx, server.Client(), server.URL, "test", struct{}{})
	if !errors.Is(err, completion.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDoPostSync_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoPostSync[response](ctx, server.Client(), server.URL, "test", struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if completion.IsTransient(err) || completion.IsFatal(err) {
		t.Errorf("cancellation must not be classified: %v", err)
	}
}

func TestDoPostSync_HeadersAndEvents(t *testing.T) {
	var captured, skipped string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Get("X-Custom-Header")
		skipped = r.Header.Get("X-Empty")
		fmt.Fprint(w, `{"value":7}`)
	}))
	defer server.Close()

	recorder := obstest.New()
	ctx, span := recorder.StartSpan(context.Background(), observability.SpanCompletion)

	_, err := DoPostSync[response](ctx, server.Client(), server.URL, "test", struct{}{},
		HeaderOption{Key: "X-Custom-Header", Value: "custom-value-123"},
		HeaderOption{Key: "X-Empty"},
	)
	span.End()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != "custom-value-123" {
		t.Errorf("expected custom header, got %q", captured)
	}
	if skipped != "" {
		t.Errorf("empty header values must not be sent, got %q", skipped)
	}

	spans := recorder.Spans(observability.SpanCompletion)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	names := spans[0].Events
	want := []string{observability.EventHTTPRequestPrepared, observability.EventHTTPResponseReceived}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", names, want)
	}
}

type errCloser struct {
	closeErr error
}

func (ec *errCloser) Close() error {
	return ec.closeErr
}

// CloseWithLog only logs; it must not panic on a failing closer.
func TestCloseWithLog_ErrorPath(t *testing.T) {
	CloseWithLog(&errCloser{closeErr: errors.New("close error")})
}
