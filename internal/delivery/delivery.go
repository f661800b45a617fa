package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matthope/webhook-push/internal/signature"
)

const (
	EventHeader    = "X-GitHub-Event"
	DeliveryHeader = "X-GitHub-Delivery"

	PushEvent = "push"
)

var (
	ErrRequestFailed    = errors.New("request failed")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Request is a single push delivery. The payload is always empty.
type Request struct {
	URL    string
	Secret []byte
}

type Result struct {
	DeliveryID string
	StatusCode int
	Duration   time.Duration
}

type Sender struct {
	Client    *http.Client
	UserAgent string
	DryRun    bool

	Logger *zap.Logger
}

// Send posts an empty push event to r.URL. Anything but a 200 response is an error.
func (s *Sender) Send(ctx context.Context, r Request) (Result, error) {
	result := Result{DeliveryID: uuid.NewString()}

	redactedURL := RedactURL(r.URL)

	logger := s.Logger.With(zap.String("url", redactedURL), zap.String("delivery", result.DeliveryID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, http.NoBody)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req.Header.Set(EventHeader, PushEvent)
	req.Header.Set(DeliveryHeader, result.DeliveryID)
	req.Header.Set(signature.HeaderName, signature.Header(r.Secret, nil))
	req.Header.Set("Content-Type", "application/json")

	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	if s.DryRun {
		logger.Info("DRY RUN: Calling POST", zap.Any("headers", req.Header))

		return result, nil
	}

	logger.Info("Calling POST")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()

	response, err := client.Do(req)

	result.Duration = time.Since(start)

	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	defer response.Body.Close()

	_, _ = io.Copy(io.Discard, response.Body)

	result.StatusCode = response.StatusCode

	logger.Debug("response received", zap.Int("status", response.StatusCode), zap.Duration("duration", result.Duration))

	if response.StatusCode != http.StatusOK {
		return result, fmt.Errorf("%w: %q, response: %q", ErrUnexpectedStatus, redactedURL, response.Status)
	}

	return result, nil
}

var tokenRegexp = regexp.MustCompile(`(?i)((?:webhook_)?(?:token|secret)=)[^&]+`)

// RedactURL hides the password and any token or secret query values in raw.
func RedactURL(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		raw = u.Redacted()
	}

	return tokenRegexp.ReplaceAllString(raw, "${1}[REDACTED]")
}
