package companion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Syncer is the subset of Client the application depends on.
type Syncer interface {
	Host() string
	Ping(ctx context.Context) bool
	ReadCurrentDate(ctx context.Context) (string, bool)
	Push(ctx context.Context, fields map[string]string, date string) []FieldError
}

var _ Syncer = (*Client)(nil)

const (
	// DefaultPort is the port Companion serves its HTTP API on.
	DefaultPort = 8000

	apiBasePath      = "/api/custom-variable"
	defaultUserAgent = "cuesync/0.1"

	pingTimeout    = 3 * time.Second
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 64 * 1024
)

// FieldError records one failed variable write.
type FieldError struct {
	Variable string
	Err      error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Variable, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Client talks to Companion's custom-variable API.
type Client struct {
	host    string
	addr    string // host:port for the raw reachability dial
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	workers int

	userAgent      string
	dial           func(ctx context.Context, network, address string) (net.Conn, error)
	pingTimeout    time.Duration
	requestTimeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for failed reads and writes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client. Per-request timeouts still apply.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithWorkers lets Push write fields concurrently with up to n requests in
// flight. The service date is always written first. n <= 1 writes serially.
func WithWorkers(n int) Option {
	return func(c *Client) {
		c.workers = n
	}
}

// NewClient builds a Client for host. A bare host gets DefaultPort; a
// host:port value keeps its port.
func NewClient(host string, opts ...Option) (*Client, error) {
	addr, err := normalizeAddr(host)
	if err != nil {
		return nil, err
	}
	c := &Client{
		host: strings.TrimSpace(host),
		addr: addr,
		baseURL: &url.URL{
			Scheme: "http",
			Host:   addr,
			Path:   apiBasePath,
		},
		http:           &http.Client{},
		logger:         slog.New(slog.DiscardHandler),
		workers:        1,
		userAgent:      defaultUserAgent,
		dial:           (&net.Dialer{}).DialContext,
		pingTimeout:    pingTimeout,
		requestTimeout: requestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Host returns the host the client was created with.
func (c *Client) Host() string {
	return c.host
}

// BaseURL returns http://host:port/api/custom-variable.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Ping reports whether Companion accepts connections and answers a read of
// the service date with 200. It never returns an error.
func (c *Client) Ping(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	conn, err := c.dial(dialCtx, "tcp", c.addr)
	if err != nil {
		c.logger.Info("companion port unreachable", "addr", c.addr, "error", err)
		return false
	}
	_ = conn.Close()

	status, _, err := c.get(ctx, VariableServiceDate, c.pingTimeout)
	if err != nil {
		c.logger.Info("companion ping request failed", "addr", c.addr, "error", err)
		return false
	}
	return status == http.StatusOK
}

// ReadCurrentDate returns the trimmed value of the service date variable.
// Failures are logged and reported as false.
func (c *Client) ReadCurrentDate(ctx context.Context) (string, bool) {
	status, body, err := c.get(ctx, VariableServiceDate, c.requestTimeout)
	if err == nil && !isSuccess(status) {
		err = &StatusError{Path: valuePath(VariableServiceDate), StatusCode: status}
	}
	if err != nil {
		c.logger.Error("failed to fetch current service date", "addr", c.addr, "error", err)
		return "", false
	}
	return strings.TrimSpace(body), true
}

// Push writes the service date and then every recognised field present in
// fields. Each write is independent: failures are collected and the batch
// continues. Nothing is retried or rolled back.
func (c *Client) Push(ctx context.Context, fields map[string]string, date string) []FieldError {
	var errs []FieldError
	if err := c.set(ctx, VariableServiceDate, date); err != nil {
		errs = append(errs, FieldError{Variable: VariableServiceDate, Err: err})
	}

	writes := plannedWrites(fields)
	results := make([]error, len(writes))
	if c.workers > 1 {
		var g errgroup.Group
		g.SetLimit(c.workers)
		for i, w := range writes {
			g.Go(func() error {
				results[i] = c.set(ctx, w.variable, w.value)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, w := range writes {
			results[i] = c.set(ctx, w.variable, w.value)
		}
	}

	for i, err := range results {
		if err != nil {
			errs = append(errs, FieldError{Variable: writes[i].variable, Err: err})
		}
	}
	if len(errs) > 0 {
		c.logger.Warn("some companion updates failed", "date", date, "failed", len(errs), "attempted", len(writes)+1)
	} else {
		c.logger.Info("companion updated", "date", date, "variables", len(writes)+1)
	}
	return errs
}

type write struct {
	variable string
	value    string
}

func plannedWrites(fields map[string]string) []write {
	writes := make([]write, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		value, ok := fields[name]
		if !ok {
			continue
		}
		writes = append(writes, write{variable: VariableFor[name], value: value})
	}
	return writes
}

func (c *Client) set(ctx context.Context, variable, value string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	rel := &url.URL{
		Path:     valuePath(variable),
		RawQuery: url.Values{"value": {value}}.Encode(),
	}
	req, err := c.newRequest(ctx, http.MethodPost, rel)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("companion write failed", "variable", variable, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if !isSuccess(resp.StatusCode) {
		err := &StatusError{Path: rel.Path, StatusCode: resp.StatusCode}
		c.logger.Error("companion write rejected", "variable", variable, "error", err)
		return err
	}
	return nil
}

func (c *Client) get(ctx context.Context, variable string, timeout time.Duration) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, &url.URL{Path: valuePath(variable)})
	if err != nil {
		return 0, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + rel.Path
	u.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func valuePath(variable string) string {
	return "/" + variable + "/value"
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func normalizeAddr(host string) (string, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return "", errors.New("companion host is empty")
	}
	if strings.Contains(trimmed, "://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("parse companion host %q: %w", host, err)
		}
		trimmed = u.Host
	}
	if h, p, err := net.SplitHostPort(trimmed); err == nil {
		if h == "" {
			return "", fmt.Errorf("companion host %q has no address", host)
		}
		if _, err := strconv.Atoi(p); err != nil {
			return "", fmt.Errorf("companion host %q has invalid port", host)
		}
		return trimmed, nil
	}
	if strings.ContainsAny(trimmed, "/ ") {
		return "", fmt.Errorf("companion host %q is not a host name or address", host)
	}
	return net.JoinHostPort(strings.Trim(trimmed, "[]"), strconv.Itoa(DefaultPort)), nil
}
