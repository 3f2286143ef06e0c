package client

import (
	"context"
	"strings"
	"time"

	"github.com/okian/kampus/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds each request. A context deadline that is earlier wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithResourcePath sets the controller prefix appended to the base URL.
// The default is "/data"; an empty path addresses the base URL directly.
func WithResourcePath(p string) Option {
	return func(c *Client) {
		p = strings.Trim(p, "/")
		if p == "" {
			c.resourcePath = ""
			return
		}
		c.resourcePath = "/" + p
	}
}

// WithStaticFilesURL lets PhotoURL turn bare filenames into URLs.
func WithStaticFilesURL(u string) Option {
	return func(c *Client) {
		c.staticFilesURL = strings.TrimRight(strings.TrimSpace(u), "/")
	}
}

// WithObserver registers a hook called once per finished request.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithStartHook registers a hook called once before each request is sent.
func WithStartHook(h StartHook) Option {
	return func(c *Client) {
		if h != nil {
			c.startHooks = append(c.startHooks, h)
		}
	}
}

// WithMetrics records every request in pkg/metrics, including the in-flight
// gauge, which RecordMetrics alone cannot maintain.
func WithMetrics() Option {
	return func(c *Client) {
		c.startHooks = append(c.startHooks, func(context.Context, Event) { metrics.IncInFlight() })
		c.observers = append(c.observers,
			func(context.Context, Event) { metrics.DecInFlight() },
			RecordMetrics())
	}
}

// WithHTTPClient replaces the fasthttp transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}
