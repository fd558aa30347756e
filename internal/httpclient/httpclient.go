package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Result struct {
	StatusCode  int
	Status      string
	Elapsed     time.Duration
	ContentType string
	RequestID   string
	Body        []byte
}

func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

const defaultTimeout = 10 * time.Second

// BuildRequest prepares a JSON POST of body to endpoint. body must already
// be valid JSON.
func BuildRequest(endpoint string, body []byte) (RequestSpec, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return RequestSpec{}, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return RequestSpec{}, fmt.Errorf("endpoint must be http(s): %s", endpoint)
	}
	if !json.Valid(body) {
		return RequestSpec{}, fmt.Errorf("invalid json body")
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"X-Request-ID": uuid.NewString(),
	}
	return RequestSpec{Method: http.MethodPost, URL: u.String(), Headers: headers, Body: body}, nil
}

func Execute(ctx context.Context, reqSpec RequestSpec) (Result, error) {
	return execute(ctx, &http.Client{Timeout: defaultTimeout}, reqSpec)
}

func execute(ctx context.Context, client *http.Client, reqSpec RequestSpec) (Result, error) {
	var body io.Reader
	if len(reqSpec.Body) > 0 {
		body = bytes.NewReader(reqSpec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, reqSpec.Method, reqSpec.URL, body)
	if err != nil {
		return Result{}, err
	}
	for k, v := range reqSpec.Headers {
		if strings.TrimSpace(v) != "" {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	return Result{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Elapsed:     elapsed,
		ContentType: resp.Header.Get("Content-Type"),
		RequestID:   reqSpec.Headers["X-Request-ID"],
		Body:        b,
	}, nil
}
