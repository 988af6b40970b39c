package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_DoRetries(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxRetries   int
		wantStatus   int
		wantAttempts int32
		wantErr      bool
	}{
		{
			name:         "503 twice then ok",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK},
			maxRetries:   3,
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
		},
		{
			name:         "429 until attempts run out",
			statuses:     []int{http.StatusTooManyRequests},
			maxRetries:   2,
			wantAttempts: 2,
			wantErr:      true,
		},
		{
			name:         "404 returned without retry",
			statuses:     []int{http.StatusNotFound},
			maxRetries:   3,
			wantStatus:   http.StatusNotFound,
			wantAttempts: 1,
		},
		{
			name:         "zero retries falls back to default",
			statuses:     []int{http.StatusBadGateway},
			maxRetries:   0,
			wantAttempts: defaultMaxRetries,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(attempts.Add(1))
				w.WriteHeader(tt.statuses[min(n, len(tt.statuses))-1])
			}))
			defer ts.Close()

			client := NewClient(ts.Client(), ts.URL, Options{MaxRetries: tt.maxRetries, Backoff: time.Millisecond})
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/tracks/x", nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}

			resp, err := client.do(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				defer resp.Body.Close()
				if resp.StatusCode != tt.wantStatus {
					t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.wantStatus)
				}
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Fatalf("attempts: got %d, want %d", got, tt.wantAttempts)
			}
		})
	}
}

func TestClient_DoStopsOnCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, Options{MaxRetries: 5, Backoff: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	start := time.Now()
	_, err = client.do(req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("backoff ignored cancellation")
	}
}

func TestClient_Backoff(t *testing.T) {
	c := NewClient(nil, "", Options{Backoff: 100 * time.Millisecond})

	withHeader := func(v string) *http.Response {
		return &http.Response{Header: http.Header{"Retry-After": []string{v}}}
	}

	tests := []struct {
		name    string
		attempt int
		resp    *http.Response
		want    time.Duration
	}{
		{name: "first attempt", attempt: 0, want: 100 * time.Millisecond},
		{name: "doubles", attempt: 2, want: 400 * time.Millisecond},
		{name: "capped", attempt: 12, want: maxBackoff},
		{name: "large attempt does not overflow", attempt: 70, want: maxBackoff},
		{name: "retry-after seconds wins", attempt: 0, resp: withHeader("2"), want: 2 * time.Second},
		{name: "retry-after capped", attempt: 0, resp: withHeader("3600"), want: maxBackoff},
		{name: "garbage header ignored", attempt: 1, resp: withHeader("soon"), want: 200 * time.Millisecond},
		{name: "past date ignored", attempt: 0, resp: withHeader("Mon, 02 Jan 2006 15:04:05 GMT"), want: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.backoff(tt.attempt, tt.resp); got != tt.want {
				t.Fatalf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}
