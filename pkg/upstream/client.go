package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the scheme and host (and optional base path) targets are
	// resolved against.
	BaseURL string

	// Username and Password enable HTTP basic auth when Username is set.
	Username string
	Password string

	// Timeout bounds a whole request including reading the body.
	// Zero means no timeout.
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections overall.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum number of idle connections to the
	// upstream host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled.
	IdleConnTimeout time.Duration
}

// Client posts JSON documents to the upstream.
type Client struct {
	config    Config
	base      *url.URL
	client    *http.Client
	transport *http.Transport
}

// New creates a client with its own pooled transport.
func New(config Config) (*Client, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream base URL %q: scheme must be http or https", config.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q: missing host", config.BaseURL)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		config: config,
		base:   base,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			// Redirects are the caller's business; pass them through.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: transport,
	}, nil
}

// BaseURL returns the URL targets are resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveTarget validates target and returns the absolute upstream URL.
func (c *Client) ResolveTarget(target string) (*url.URL, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}
	return c.base.JoinPath(strings.TrimPrefix(target, "/")), nil
}

// NewRequest builds a POST of body, encoded as JSON, to target.
func (c *Client) NewRequest(ctx context.Context, target string, body any) (*http.Request, error) {
	u, err := c.ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &TargetError{Target: target, Reason: "cannot build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	return req, nil
}

// Do sends req. Any response is returned regardless of its status code;
// the caller must close its body. Failures are returned as *Error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	slog.Debug("sending request to upstream",
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:   Classify(err),
			Target: req.URL.Redacted(),
			Cause:  err,
		}
	}
	return resp, nil
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// Classify maps a transport error to a Kind.
func Classify(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnect
	}

	return KindOther
}

// ValidateTarget checks that target is a non-empty relative path that
// stays below the base URL.
func ValidateTarget(target string) error {
	if target == "" {
		return &TargetError{Target: target, Reason: "empty target"}
	}

	u, err := url.Parse(target)
	if err != nil {
		return &TargetError{Target: target, Reason: "unparseable", Cause: err}
	}
	if u.Scheme != "" || u.Host != "" || strings.HasPrefix(target, "//") {
		return &TargetError{Target: target, Reason: "must be a relative path"}
	}
	if u.RawQuery != "" || u.Fragment != "" || strings.ContainsAny(target, "?#") {
		return &TargetError{Target: target, Reason: "must not carry a query or fragment"}
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment == ".." {
			return &TargetError{Target: target, Reason: "must not leave the base path"}
		}
	}

	return nil
}
