package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGemini struct {
	mu       sync.Mutex
	keysSeen []string
	handle   func(w http.ResponseWriter, key string)
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("x-goog-api-key")
	f.mu.Lock()
	f.keysSeen = append(f.keysSeen, key)
	f.mu.Unlock()
	f.handle(w, key)
}

func okBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, f *fakeGemini, keys ...string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(nil, Config{BaseURL: srv.URL, Model: "test-model"}, NewKeyManager(keys))
}

func TestGenerateReturnsText(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(okBody("  hello there  ")))
	}))
	defer srv.Close()

	c := New(nil, Config{BaseURL: srv.URL + "/", Model: "test-model"}, NewKeyManager([]string{"k1"}))
	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "hi", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, 1024, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestGenerateRetriesRateLimitedKeyOnce(t *testing.T) {
	f := &fakeGemini{handle: func(w http.ResponseWriter, key string) {
		if key == "k1" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		_, _ = w.Write([]byte(okBody("from k2")))
	}}
	c := newTestClient(t, f, "k1", "k2")

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "from k2", text)
	assert.Equal(t, []string{"k1", "k2"}, f.keysSeen)

	stats := c.Keys().Stats()
	assert.Equal(t, 1, stats.Keys[0].Errors)
	assert.Equal(t, 0, stats.Keys[1].Errors)
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	f := &fakeGemini{handle: func(w http.ResponseWriter, key string) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad prompt","status":"INVALID_ARGUMENT"}}`))
	}}
	c := newTestClient(t, f, "k1", "k2")

	_, err := c.Generate(context.Background(), "hi")
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "bad prompt"))
	assert.Len(t, f.keysSeen, 1)
}

func TestGenerateEmptyCandidates(t *testing.T) {
	f := &fakeGemini{handle: func(w http.ResponseWriter, key string) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}}
	c := newTestClient(t, f, "k1")

	_, err := c.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateWithoutKeys(t *testing.T) {
	c := New(nil, Config{}, NewKeyManager(nil))
	_, err := c.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoKeys)
}
