package gmailsource

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/codeGROOVE-dev/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestNewRequiresToken(t *testing.T) {
	_, err := New(context.Background(), "", zap.NewNop())
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
}

func TestMapMessage(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-1",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Your Netflix subscription"},
				{Name: "From", Value: "Netflix <info@netflix.com>"},
				{Name: "Date", Value: "Mon, 1 Sep 2026 10:00:00 +0000"},
			},
			Body: &gmail.MessagePartBody{Data: "aW5saW5l"},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "cGxhaW4"}},
				{MimeType: "text/html", Body: nil},
			},
		},
	}

	out, err := mapMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", out.ID)
	assert.Equal(t, "Your Netflix subscription", out.Subject)
	assert.Equal(t, "Netflix <info@netflix.com>", out.Sender)
	assert.Equal(t, "aW5saW5l", out.Body.Data)
	// Parts without a body are dropped.
	require.Len(t, out.Body.Parts, 1)
	assert.Equal(t, "text/plain", out.Body.Parts[0].MimeType)
}

func TestMapMessageMalformed(t *testing.T) {
	_, err := mapMessage(&gmail.Message{Id: "no-payload"})
	assert.ErrorIs(t, err, core.ErrMalformedMessage)

	_, err = mapMessage(&gmail.Message{Id: "no-headers", Payload: &gmail.MessagePart{}})
	assert.ErrorIs(t, err, core.ErrMalformedMessage)
}

func TestStatusClassification(t *testing.T) {
	wrap := func(code int) error {
		return &googleapi.Error{Code: code}
	}

	assert.True(t, isAuthFailure(wrap(http.StatusUnauthorized)))
	assert.True(t, isAuthFailure(wrap(http.StatusForbidden)))
	assert.False(t, isAuthFailure(wrap(http.StatusInternalServerError)))
	assert.False(t, isAuthFailure(errors.New("plain transport error")))

	assert.True(t, isTransient(wrap(http.StatusTooManyRequests)))
	assert.True(t, isTransient(wrap(http.StatusBadGateway)))
	assert.True(t, isTransient(errors.New("connection reset")))
	assert.False(t, isTransient(wrap(http.StatusBadRequest)))
	assert.False(t, isTransient(wrap(http.StatusNotFound)))
}

func TestWithRetryRecoversTransientFailures(t *testing.T) {
	s := &Source{logger: zap.NewNop()}
	calls := 0
	err := s.withRetry(context.Background(), "get", func() error {
		calls++
		if calls < 2 {
			return &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryStopsOnUnrecoverable(t *testing.T) {
	s := &Source{logger: zap.NewNop()}
	calls := 0
	err := s.withRetry(context.Background(), "get", func() error {
		calls++
		return retry.Unrecoverable(&googleapi.Error{Code: http.StatusUnauthorized})
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, isAuthFailure(err))
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	s := &Source{logger: zap.NewNop()}
	calls := 0
	err := s.withRetry(context.Background(), "get", func() error {
		calls++
		return &googleapi.Error{Code: http.StatusBadRequest}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStatusClassificationWrapped(t *testing.T) {
	// Wrapped API errors must still be classified.
	wrapped := func(code int) error {
		return &core.SourceError{Op: "get", Err: &googleapi.Error{Code: code}}
	}
	assert.True(t, isAuthFailure(wrapped(http.StatusForbidden)))
	assert.True(t, isTransient(wrapped(http.StatusServiceUnavailable)))
}
