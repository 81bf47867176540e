package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/api/dto"
)

const (
	defaultLoginFailure = "Login failed. Please check your credentials."
	requestIDHeader     = "X-Request-ID"
)

// ErrLoginRejected is returned when the remote API does not establish a session.
var ErrLoginRejected = errors.New("login rejected")

// LoginError carries the human readable reason given by the server.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return ErrLoginRejected
}

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client talks to the remote portal API.
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	logger  *zap.Logger
}

// New builds a client. tokens may be nil until a session manager exists.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		tokens:  tokens,
		logger:  logger,
	}
}

// Login posts credentials and returns the token and profile on success.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginData, error) {
	agent, err := c.agent(ctx, fiber.MethodPost, "/auth/login")
	if err != nil {
		return nil, &LoginError{Message: defaultLoginFailure}
	}
	agent.JSON(dto.LoginRequest{Username: username, Password: password})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Warn("login request failed", zap.Errors("errors", errs))
		return nil, &LoginError{Message: defaultLoginFailure}
	}

	var envelope dto.Envelope[dto.LoginData]
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("login response unparsable", zap.Int("status", status), zap.Error(err))
		return nil, &LoginError{Status: status, Message: defaultLoginFailure}
	}

	if status >= http.StatusBadRequest || !envelope.Success || envelope.Data.Token == "" {
		return nil, &LoginError{Status: status, Message: firstNonEmpty(envelope.Message, envelope.Error, defaultLoginFailure)}
	}
	return &envelope.Data, nil
}

// Get fetches path with the session's bearer token and decodes the
// response into out. Enveloped responses are unwrapped to their data;
// endpoints that answer with a bare JSON body are decoded as is.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	agent, err := c.agent(ctx, fiber.MethodGet, path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("GET %s: %w", path, errors.Join(errs...))
	}

	envelope, wrapped := parseEnvelope(body)
	if status >= http.StatusBadRequest || (wrapped && !envelope.Success) {
		return fmt.Errorf("GET %s: status %d: %s", path, status, firstNonEmpty(envelope.Message, envelope.Error, http.StatusText(status)))
	}

	data := json.RawMessage(body)
	if wrapped {
		data = envelope.Data
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

// parseEnvelope reports whether body is a {success, data} envelope.
func parseEnvelope(body []byte) (dto.Envelope[json.RawMessage], bool) {
	var head struct {
		Success *bool `json:"success"`
	}
	var envelope dto.Envelope[json.RawMessage]
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope, false
	}
	if err := json.Unmarshal(trimmed, &head); err != nil || head.Success == nil {
		return envelope, false
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return envelope, false
	}
	return envelope, true
}

// agent prepares a request; the caller must finish it with Bytes, which
// releases the agent.
func (c *Client) agent(ctx context.Context, method, path string) (*fiber.Agent, error) {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Set(requestIDHeader, uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	agent.Timeout(c.deadline(ctx))

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		c.logger.Warn("invalid request target", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return agent, nil
}

func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
