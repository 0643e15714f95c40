package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_MAX_RETRIES", "0")

	client, err := NewOpenAIClient(testLogger(t))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return client
}

func TestOpenAIClientGenerateJSON(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path: want=/v1/chat/completions got=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization: got=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"context\": \"regenerated\"}"}}],
			"usage": {"total_tokens": 12}
		}`))
	})

	obj, usage, err := client.GenerateJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if got, _ := obj["context"].(string); got != "regenerated" {
		t.Fatalf("context: want=%q got=%q", "regenerated", got)
	}
	if len(usage) == 0 {
		t.Fatalf("usage: want raw payload, got empty")
	}
}

func TestOpenAIClientNonJSONContent(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "plain prose, not json"}}]}`))
	})

	if _, _, err := client.GenerateJSON(context.Background(), "system", "user"); err == nil {
		t.Fatalf("GenerateJSON: expected error for non-JSON content")
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	if _, _, err := client.GenerateJSON(context.Background(), "system", "user"); err == nil {
		t.Fatalf("GenerateJSON: expected error for empty choices")
	}
}

func TestOpenAIClientHTTPError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
	})

	if _, _, err := client.GenerateJSON(context.Background(), "system", "user"); err == nil {
		t.Fatalf("GenerateJSON: expected error for http 400")
	}
}

func TestOpenAIClientCancelledContextDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Drain the body so net/http starts its background read and cancels
		// r.Context() when the client disconnects; otherwise srv.Close hangs.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_MAX_RETRIES", "3")

	client, err := NewOpenAIClient(testLogger(t))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err = client.GenerateJSON(ctx, "system", "user")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: want=context.Canceled got=%v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("cancelled call took %v, backoff sleep suspected", elapsed)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("requests: want=1 got=%d", got)
	}
}

func TestOpenAIClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIClient(testLogger(t)); err == nil {
		t.Fatalf("NewOpenAIClient: expected error without api key")
	}
}
