// Package client talks to the job-assistant backend. It owns the bearer token
// and retries a rate-limited call once with the fallback model.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/model"
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	ClientSecret string
	HTTPClient   *http.Client // nil means a client with no timeout
	Logger       *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
	validate     *validator.Validate
	now          func() time.Time

	mu   sync.Mutex // guards auth
	auth AuthSession
}

// New creates a Client targeting opts.BaseURL.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientSecret: opts.ClientSecret,
		httpClient:   httpClient,
		logger:       logger,
		validate:     validator.New(),
		now:          time.Now,
	}
}

// Credentials are the per-user values sent with every endpoint call.
type Credentials struct {
	APIKey             string
	ModelName          string
	FallbackModelName  string
	PrivateDataLogging bool
}

// CredentialsFrom reads credentials out of the stored user document.
func CredentialsFrom(d *model.UserRelevantData) Credentials {
	return Credentials{
		APIKey:             d.GoogleAPIKey,
		ModelName:          d.ModelName,
		FallbackModelName:  d.FallbackModelName,
		PrivateDataLogging: d.PrivateDataLogging,
	}
}

// commonFields are merged into every request body except authenticate.
type commonFields struct {
	ModelName          string `json:"model_name"`
	GeminiAPIKey       string `json:"gemini_api_key"`
	PrivateDataLogging bool   `json:"private_data_logging"`
}

func (c Credentials) fields(modelName string) commonFields {
	return commonFields{
		ModelName:          modelName,
		GeminiAPIKey:       c.APIKey,
		PrivateDataLogging: c.PrivateDataLogging,
	}
}

// call posts to endpoint with the preferred model and, on HTTP 429, once more
// with the fallback model. build renders the request body for a given model.
// It returns abort.ErrAborted if tok was aborted at any point.
func (c *Client) call(tok *abort.Token, creds Credentials, endpoint string, build func(commonFields) any, out any) error {
	err := c.attempt(tok, endpoint, build(creds.fields(creds.ModelName)), out)
	if err == nil || errors.Is(err, abort.ErrAborted) || model.IsKind(err, model.KindAuthentication) {
		return err
	}
	if !isRateLimited(err) {
		return model.NetworkError(fmt.Sprintf("Failed to call %s", endpoint), err)
	}

	c.logger.Info("rate limited on preferred model, retrying with fallback",
		"endpoint", endpoint,
		"model", creds.ModelName,
		"fallback_model", creds.FallbackModelName,
		"op", tok.ID(),
	)

	err = c.attempt(tok, endpoint, build(creds.fields(creds.FallbackModelName)), out)
	if err == nil || errors.Is(err, abort.ErrAborted) || model.IsKind(err, model.KindAuthentication) {
		return err
	}
	if isRateLimited(err) {
		return model.RateLimitError(err)
	}
	return model.NetworkError(fmt.Sprintf("Failed to call %s with fallback model", endpoint), err)
}

// attempt makes one authenticated request and validates the decoded response.
func (c *Client) attempt(tok *abort.Token, endpoint string, body, out any) error {
	if err := tok.Err(); err != nil {
		return err
	}
	token, err := c.ensureToken(tok.Context())
	if tok.Aborted() {
		return abort.ErrAborted
	}
	if err != nil {
		return err
	}

	err = c.post(tok.Context(), endpoint, token, body, out)
	if tok.Aborted() {
		return abort.ErrAborted
	}
	if err != nil {
		return err
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s response: %w", endpoint, err)
	}
	return nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// post sends body as JSON and decodes a 200 response into out. Any other
// status becomes a *model.HTTPError carrying the server's error message.
func (c *Client) post(ctx context.Context, endpoint, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("failed to call %s", endpoint)
		var eb errorBody
		if json.Unmarshal(respBytes, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New(msg),
		}
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("parse %s response: %w", endpoint, err)
	}
	return nil
}

func isRateLimited(err error) bool {
	var httpErr *model.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
