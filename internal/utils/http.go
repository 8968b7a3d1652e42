package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/jsonmend/providers/completion"
	"github.com/leofalp/jsonmend/providers/observability"
)

// HeaderOption sets one request header.
type HeaderOption struct {
	Key   string
	Value string
}

// BearerAuth returns the Authorization header for token.
func BearerAuth(token string) HeaderOption {
	return HeaderOption{Key: "Authorization", Value: "Bearer " + token}
}

// DoPostSync performs a synchronous HTTP POST request with JSON body and parses the response.
// It reports request events on the span carried by ctx and always closes the response body.
//
// Error Handling Strategy:
//   - Transport failures go through completion.Classify: an expired deadline
//     becomes completion.ErrTimeout, caller cancellation is returned as is,
//     anything else is completion.ErrUnavailable
//   - Non-2xx responses are classified by status with completion.FromStatus
//   - A 2xx body that does not decode is completion.ErrUnavailable, with a
//     preview of the body for debugging
//   - Response body close errors are logged but don't override primary errors
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, provider string, body any, headers ...HeaderOption) (*OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &completion.Error{Kind: completion.ErrConfig, Provider: provider, Err: fmt.Errorf("error marshaling body: %w", err)}
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &completion.Error{Kind: completion.ErrConfig, Provider: provider, Err: fmt.Errorf("error creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	for _, header := range headers {
		if header.Value != "" {
			req.Header.Set(header.Key, header.Value)
		}
	}

	start := time.Now()
	res, err := httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrDuration, elapsed),
			)
		}
		return nil, completion.Classify(provider, fmt.Errorf("error sending request: %w", err))
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, completion.Classify(provider, fmt.Errorf("error reading response body: %w", err))
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrDuration, elapsed),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, completion.FromStatus(provider, res.StatusCode, string(respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return nil, &completion.Error{
			Kind:       completion.ErrUnavailable,
			StatusCode: res.StatusCode,
			Provider:   provider,
			Err:        fmt.Errorf("error unmarshaling response body: %w; response preview: %s", err, TruncateString(string(respBody), 200)),
		}
	}

	return &resStruct, nil
}

// CloseWithLog closes c and logs a failure instead of returning it.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
