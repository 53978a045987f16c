package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ridegate/internal/client/models"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
	"github.com/google/uuid"
)

const (
	userAgent       = "ridegate-client/1.0"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// HTTPClient talks JSON to the REST API. Every request goes through the
// transport it was built with, which is where credentials get attached.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for baseURL ("http://" is assumed when no
// scheme is given). A nil transport means http.DefaultTransport.
func NewHTTPClient(baseURL string, transport http.RoundTripper, log logging.Logger) *HTTPClient {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: transport},
		log:     log.With("component", "api"),
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) ObtainToken(ctx context.Context, username, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	status, body, err := c.do(ctx, http.MethodPost, PathObtainToken, models.Credentials{Username: username, Password: password}, &pair)
	if err != nil {
		return models.TokenPair{}, c.mapError(err, status, body, ErrCredentialsRejected, detailOrFirstError, MsgLoginFailed)
	}
	if pair.Access == "" {
		return models.TokenPair{}, &APIError{Kind: ErrRequestFailed, Status: status, Message: MsgLoginFailed}
	}
	return pair, nil
}

func (c *HTTPClient) RegisterDriver(ctx context.Context, data models.DriverRegistration) error {
	status, body, err := c.do(ctx, http.MethodPost, PathRegisterDriver, data, nil)
	if err != nil {
		return c.mapError(err, status, body, ErrValidationFailed, firstFieldError, MsgRegistrationFailed)
	}
	return nil
}

func (c *HTTPClient) RegisterPassenger(ctx context.Context, data models.PassengerRegistration) error {
	status, body, err := c.do(ctx, http.MethodPost, PathRegisterPassenger, data, nil)
	if err != nil {
		return c.mapError(err, status, body, ErrValidationFailed, firstFieldError, MsgRegistrationFailed)
	}
	return nil
}

// GetJSON, PostJSON, PatchJSON and Delete are the generic calls the CRUD
// views build on (/routes/, /vehicles/, /schedules/, ...).
func (c *HTTPClient) GetJSON(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPost, path, in, out)
}

func (c *HTTPClient) PatchJSON(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPatch, path, in, out)
}

func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	status, body, err := c.do(ctx, method, path, in, out)
	if err == nil {
		return nil
	}

	kind := ErrRequestFailed
	switch status {
	case http.StatusBadRequest:
		kind = ErrValidationFailed
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthorized
	}
	return c.mapError(err, status, body, kind, detailOrFirstError, MsgRequestFailed)
}

// errRejected marks a response outside 2xx inside do.
var errRejected = errors.New("rejected")

// do sends one request. A non-2xx answer returns errRejected together with
// the status and (bounded) body so callers can pick the error kind.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("request_id", reqID, "method", method, "path", path)
	log.Debug(ctx, "sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug(ctx, "request not completed", "error", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Debug(ctx, "request rejected", "status", resp.StatusCode)
		return resp.StatusCode, b, errRejected
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, nil, fmt.Errorf("parse response: %w", err)
		}
	}

	return resp.StatusCode, nil, nil
}

// mapError turns the outcome of do into an *APIError. Expired sessions pass
// through untouched so callers can match common.ErrSessionExpired. A 5xx is
// never rejectedKind: the server failed, the input was not judged.
func (c *HTTPClient) mapError(err error, status int, body []byte, rejectedKind error, extract func([]byte) string, fallback string) error {
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		return err
	case errors.Is(err, errRejected):
		msg := extract(body)
		if msg == "" {
			msg = fallback
		}
		if status >= http.StatusInternalServerError {
			rejectedKind = ErrRequestFailed
		}
		return &APIError{Kind: rejectedKind, Status: status, Message: msg}
	case status != 0:
		return &APIError{Kind: ErrRequestFailed, Status: status, Message: fallback, Err: err}
	default:
		return &APIError{Kind: ErrUnavailable, Message: fallback, Err: err}
	}
}
