// Package ai implements the remote moderation classifier gateway.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	retry "github.com/sethvargo/go-retry"

	"github.com/elum-utils/gatekeeper/models"
)

var defaultFeatures = []string{"toxicity", "spam", "hate_speech"}

// RemoteClassifier scores text via an external moderation endpoint.
type RemoteClassifier struct {
	client   *resty.Client
	endpoint string
	features []string
	retries  uint64
}

// RemoteOptions configure the gateway.
type RemoteOptions struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Features []string
	// MaxRetries bounds transport-level retry attempts. Non-success HTTP
	// statuses and malformed bodies are never retried.
	MaxRetries uint64
}

// NewRemoteClassifier creates the gateway. Missing endpoint or key is a
// construction error: callers treat an absent classifier as disabled.
func NewRemoteClassifier(opt RemoteOptions) (*RemoteClassifier, error) {
	if strings.TrimSpace(opt.Endpoint) == "" {
		return nil, errors.New("ai: endpoint is required")
	}
	if strings.TrimSpace(opt.APIKey) == "" {
		return nil, errors.New("ai: API key is required")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}
	features := defaultFeatures
	if len(opt.Features) > 0 {
		features = opt.Features
	}
	retries := uint64(2)
	if opt.MaxRetries > 0 {
		retries = opt.MaxRetries
	}
	return &RemoteClassifier{
		endpoint: opt.Endpoint,
		features: features,
		retries:  retries,
		client: resty.New().
			SetTimeout(opt.Timeout).
			SetAuthToken(opt.APIKey).
			SetHeader("Content-Type", "application/json"),
	}, nil
}

func (r *RemoteClassifier) Name() string { return "remote" }

type classifyRequest struct {
	Text     string   `json:"text"`
	UserID   string   `json:"user_id,omitempty"`
	Features []string `json:"features"`
}

// Classify posts the text and returns the endpoint's scores. Transport errors
// are retried with Fibonacci backoff; cancellation and non-2xx responses are
// returned as-is for the pipeline to treat as "classifier unavailable".
func (r *RemoteClassifier) Classify(ctx context.Context, text string, author models.AuthorRef) (*models.AIModerationResponse, error) {
	payload := classifyRequest{Text: text, UserID: author.String(), Features: r.features}

	var out models.AIModerationResponse
	backoff := retry.NewFibonacci(200 * time.Millisecond)
	err := retry.Do(ctx, retry.WithMaxRetries(r.retries, backoff), func(ctx context.Context) error {
		resp, err := r.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post(r.endpoint)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return retry.RetryableError(err)
		}
		if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
			return fmt.Errorf("ai: status %d: %s", resp.StatusCode(), resp.String())
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return fmt.Errorf("ai: malformed response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
