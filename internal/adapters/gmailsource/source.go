// Package gmailsource adapts the Gmail REST API to the core MessageSource
// port. A Source is built per scan from a caller-supplied access token and
// discarded afterwards; it holds no process-wide state.
package gmailsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// See https://developers.google.com/gmail/api/v1/reference/quota
	quotaUnitsPerMessagesGet  = 5
	quotaUnitsPerMessagesList = 1

	quotaUnitsPerSecond = 250
	rateLimitPerSecond  = quotaUnitsPerSecond * 0.8
	rateLimitBurst      = quotaUnitsPerSecond
)

// Source provides access to candidate messages stored in Gmail.
type Source struct {
	service *gmail.Service
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Source authenticated with the given access token. The token
// is wrapped in a static token source: refreshing it is the caller's
// responsibility, matching the acquire-use-discard session lifecycle.
func New(ctx context.Context, accessToken string, logger *zap.Logger) (*Source, error) {
	if accessToken == "" {
		return nil, &core.AuthError{Err: fmt.Errorf("no access token supplied")}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, &core.SourceError{Op: "init", Err: err}
	}
	return &Source{
		service: svc,
		limiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
		logger:  logger,
	}, nil
}

// Search lists message IDs matching the query, capped at max.
func (s *Source) Search(ctx context.Context, query string, max int64) ([]string, error) {
	if err := s.limiter.WaitN(ctx, quotaUnitsPerMessagesList); err != nil {
		return nil, &core.SourceError{Op: "list", Err: err}
	}

	var ids []string
	err := s.withRetry(ctx, "list", func() error {
		resp, err := gmail.NewUsersMessagesService(s.service).
			List("me").Q(query).MaxResults(max).Context(ctx).Do()
		if err != nil {
			if isAuthFailure(err) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		ids = ids[:0]
		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}
		return nil
	})
	if err != nil {
		if isAuthFailure(err) {
			return nil, &core.AuthError{Err: err}
		}
		return nil, &core.SourceError{Op: "list", Err: err}
	}

	s.logger.Debug("Listed candidate messages",
		zap.String("query", query),
		zap.Int("count", len(ids)))
	return ids, nil
}

// Fetch retrieves one message in full form and maps it to the core shape.
func (s *Source) Fetch(ctx context.Context, id string) (*core.CandidateMessage, error) {
	if err := s.limiter.WaitN(ctx, quotaUnitsPerMessagesGet); err != nil {
		return nil, &core.SourceError{Op: "get", Err: err}
	}

	var msg *gmail.Message
	err := s.withRetry(ctx, "get", func() error {
		m, err := gmail.NewUsersMessagesService(s.service).
			Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			if isAuthFailure(err) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		if isAuthFailure(err) {
			return nil, &core.AuthError{Err: err}
		}
		return nil, &core.SourceError{Op: "get", Err: fmt.Errorf("message %v: %w", id, err)}
	}

	return mapMessage(msg)
}

// withRetry runs fn under the adapter's shared backoff policy: transient
// failures (transport errors, 429, 5xx) retry with bounded delays, anything
// else fails immediately.
func (s *Source) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Retrying Gmail call",
				zap.String("op", op),
				zap.Uint("attempt", n),
				zap.Error(err))
		}),
		retry.RetryIf(isTransient),
	)
}

// mapMessage flattens a Gmail message into a CandidateMessage. Messages
// without a payload or headers are malformed and skipped by the scan.
func mapMessage(msg *gmail.Message) (*core.CandidateMessage, error) {
	if msg.Payload == nil || len(msg.Payload.Headers) == 0 {
		return nil, fmt.Errorf("message %v: %w", msg.Id, core.ErrMalformedMessage)
	}

	out := &core.CandidateMessage{ID: msg.Id}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			out.Subject = h.Value
		case "From":
			out.Sender = h.Value
		}
	}

	if msg.Payload.Body != nil {
		out.Body.Data = msg.Payload.Body.Data
	}
	for _, part := range msg.Payload.Parts {
		if part.Body == nil {
			continue
		}
		out.Body.Parts = append(out.Body.Parts, core.MessagePart{
			MimeType: part.MimeType,
			Data:     part.Body.Data,
		})
	}
	return out, nil
}

func apiStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func isAuthFailure(err error) bool {
	code := apiStatus(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// isTransient treats transport failures, rate limiting and server errors as
// retryable; other API errors fail the call immediately.
func isTransient(err error) bool {
	code := apiStatus(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
