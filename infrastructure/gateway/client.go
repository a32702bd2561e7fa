package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Client is the shared HTTP transport for every backend collaborator.
// Responses use the uniform {success, data, message} envelope.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

// NewClient creates a transport bound to the backend base URL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout: timeout,
	}
}

// BackendError is a non-transport failure reported by the backend
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do issues one request and decodes the envelope's data field into out.
// A 401 with a token-related message becomes ErrUnauthorized.
func (c *Client) do(method, path, token string, body, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("backend returned malformed envelope: %w", err)
	}

	if resp.StatusCode() == fasthttp.StatusUnauthorized && tokenRelated(env.Message) {
		return domainComposer.ErrUnauthorized
	}
	if resp.StatusCode() >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fasthttp.StatusMessage(resp.StatusCode())
		}
		return &BackendError{StatusCode: resp.StatusCode(), Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode backend data: %w", err)
		}
	}
	return nil
}

func tokenRelated(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "token") || strings.Contains(m, "expired") || strings.Contains(m, "unauthorized")
}
