// Package client is the HTTP client for the mahasiswa/prodi REST backend.
//
// Every operation issues exactly one request and returns the decoded payload.
// Failures are never retried: non-2xx responses surface as *HTTPError and
// transport failures as *NetworkError.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Defaults and header names.
const (
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "kampus-client/1.0"
	defaultResourcePath = "/data"
	maxConnsPerHost     = 64

	headerRequestID  = "X-Request-ID"
	contentTypeJSON  = "application/json"
	acceptJSON       = "application/json"
	bearerAuthPrefix = "Bearer "
)

// Doer executes a request. *fasthttp.Client satisfies it.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Client talks to one backend. It is safe for concurrent use; its fields are
// not modified after New returns.
type Client struct {
	baseURL        string
	resourcePath   string
	http           Doer
	timeout        time.Duration
	token          string
	userAgent      string
	staticFilesURL string
	startHooks     []StartHook
	observers      []Observer
}

// New builds a Client for the API rooted at baseURL (for example
// "https://be.example.com/api"). The resource prefix, "/data" unless
// WithResourcePath says otherwise, is appended to every path.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimRight(base, "/"),
		resourcePath: defaultResourcePath,
		timeout:      defaultTimeout,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &fasthttp.Client{
			Name:            c.userAgent,
			MaxConnsPerHost: maxConnsPerHost,
			ReadTimeout:     c.timeout,
			WriteTimeout:    c.timeout,
		}
	}
	return c, nil
}

// Endpoint returns the absolute URL requests for path are sent to.
func (c *Client) Endpoint(path string) string {
	return c.baseURL + c.resourcePath + path
}

// call describes one request.
type call struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// jsonCall encodes payload as the JSON body of a call.
func jsonCall(op, method, path string, payload any) (call, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("%w: %s %s: %w", ErrEncode, method, path, err)
	}
	return call{op: op, method: method, path: path, body: b, contentType: contentTypeJSON}, nil
}

// do runs the start hooks, sends the call, decodes a 2xx body into out (when
// out is non-nil) and notifies observers.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	ev := Event{
		Operation: cl.op,
		Method:    cl.method,
		Path:      cl.path,
		RequestID: uuid.NewString(),
		BytesSent: len(cl.body),
	}
	for _, h := range c.startHooks {
		h(ctx, ev)
	}

	start := time.Now()
	status, err := c.roundTrip(ctx, cl, ev.RequestID, out)

	ev.StatusCode = status
	ev.Duration = time.Since(start)
	ev.Err = err
	for _, o := range c.observers {
		o(ctx, ev)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, requestID string, out any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &NetworkError{Method: cl.method, Path: cl.path, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.Endpoint(cl.path)
	if len(cl.query) > 0 {
		uri += "?" + cl.query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(cl.method)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, acceptJSON)
	req.Header.Set(headerRequestID, requestID)
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, bearerAuthPrefix+c.token)
	}
	if cl.body != nil {
		req.Header.SetContentType(cl.contentType)
		req.SetBody(cl.body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, &NetworkError{Method: cl.method, Path: cl.path, Err: err}
	}

	status := resp.StatusCode()
	// resp is released on return; keep our own copy of the body.
	body := append([]byte(nil), resp.Body()...)

	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return status, newHTTPError(cl.method, cl.path, status, body)
	}
	if out == nil {
		return status, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return status, fmt.Errorf("%w: %s %s: %w", ErrDecode, cl.method, cl.path, err)
	}
	return status, nil
}
