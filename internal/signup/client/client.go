// Package client calls the remote registration endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/internal/signup/domain"
	"go.uber.org/zap"
	"resty.dev/v3"
)

var (
	ErrTransport         = errors.New("registration transport error")
	ErrUnexpectedStatus  = errors.New("registration unexpected status")
	ErrMalformedResponse = errors.New("registration malformed response")
)

const (
	validationErrorType   = "validation_error"
	defaultRequestTimeout = 15 * time.Second
)

// Client implements domain.RegistrationService over HTTP.
type Client struct {
	http *resty.Client
	path string
	log  *zap.Logger
}

// NewFromConfig builds a client for the configured registration endpoint.
func NewFromConfig(log *zap.Logger, cfg config.Config) domain.RegistrationService {
	return New(log, cfg.Registration.BaseURL, cfg.Registration.Path, cfg.Registration.Timeout)
}

func New(log *zap.Logger, baseURL, path string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if path == "" {
		path = "/"
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http: rc,
		path: path,
		log:  log.Named("signup.client"),
	}
}

type registerResponse struct {
	UserID userID `json:"userId"`
}

type errorPayload struct {
	Type    string              `json:"type"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error  json.RawMessage     `json:"error"`
	Errors []domain.FieldError `json:"errors"`
}

// Register posts the account details. Field rejections come back as
// *domain.ValidationErrors; anything else is a wrapped sentinel.
func (c *Client) Register(ctx context.Context, req domain.Request) (*domain.Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	body := resp.Bytes()
	status := resp.StatusCode()

	if resp.IsError() {
		if vErr := parseValidationErrors(status, body); vErr != nil {
			return nil, vErr
		}
		c.log.Warn("registration endpoint returned an error",
			zap.Int("status", status),
		)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}

	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}

	var out registerResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &domain.Response{UserID: string(out.UserID)}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

func parseValidationErrors(status int, body []byte) *domain.ValidationErrors {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
	default:
		return nil
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	if len(bytes.TrimSpace(envelope.Error)) > 0 {
		var payload errorPayload
		if err := json.Unmarshal(envelope.Error, &payload); err == nil &&
			payload.Type == validationErrorType && len(payload.Errors) > 0 {
			return &domain.ValidationErrors{Errors: payload.Errors}
		}
	}
	if len(envelope.Errors) > 0 {
		return &domain.ValidationErrors{Errors: envelope.Errors}
	}
	return nil
}

// userID accepts string or numeric identifiers. A numeric zero counts as
// absent.
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*u = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*u = userID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil && f == 0 {
		*u = ""
		return nil
	}
	*u = userID(n.String())
	return nil
}
