package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(logger.Nop(), Config{
		APIKey:           "sg-test",
		BaseURL:          srv.URL,
		DefaultFromEmail: "twin@example.com",
		DefaultFromName:  "Health Twin",
		MaxRetries:       2,
		InitialBackoff:   time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestSendBuildsMailRequest(t *testing.T) {
	var got mailSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	})

	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "doc@example.com"}},
		Subject: " Weekly report ",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "msg-1", res.MessageID)

	assert.Equal(t, "twin@example.com", got.From.Email)
	assert.Equal(t, "Health Twin", got.From.Name)
	assert.Equal(t, "Weekly report", got.Subject)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/html", got.Content[0].Type)
	assert.Equal(t, "doc@example.com", got.Personalizations[0].To[0].Email)
}

func TestSendValidatesRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.Send(context.Background(), SendEmailRequest{Subject: "x", HTML: "y"})
	assert.Error(t, err)
	_, err = c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}, HTML: "y"})
	assert.Error(t, err)
	_, err = c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}, Subject: "x"})
	assert.Error(t, err)
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := c.Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s", Text: "t",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendSurfacesHTTPError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid to address"}]}`))
	})

	_, err := c.Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s", Text: "t",
	})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.HTTPStatusCode())
	assert.Contains(t, he.Error(), "invalid to address")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(logger.Nop(), Config{})
	assert.Error(t, err)
}
