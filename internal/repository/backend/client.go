package backend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kieranyoussef/finops-watchtower/internal/obs"
)

const (
	DefaultAPIKeyHeader = "X-API-Key"
	RequestIDHeader     = "X-Request-ID"
)

var ErrNoBaseURL = errors.New("backend: base url is required")

type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration
	UserAgent    string
	VerifyTLS    bool
}

// Client talks to the Watchtower analysis API. Every call is a single
// attempt: failures are returned to the caller as they happen.
type Client struct {
	base string
	cfg  Config
	c    *http.Client
	log  *zap.Logger
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	return &Client{
		base: base,
		cfg:  cfg,
		c:    NewHTTPClient(cfg),
		log:  zap.L().With(zap.String("component", "backend.client")),
	}, nil
}

func NewHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

func (cl *Client) WithLogger(l *zap.Logger) *Client {
	if l == nil {
		return cl
	}
	cp := *cl
	cp.log = l.With(zap.String("component", "backend.client"))
	return &cp
}

func (cl *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return cl
	}
	cp := *cl
	cp.c = hc
	return &cp
}

func (cl *Client) BaseURL() string { return cl.base }

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
}

// do sends r and returns the response only for 2xx statuses; anything else
// is turned into a *StatusError and the body is closed.
func (cl *Client) do(ctx context.Context, r request) (*http.Response, error) {
	target := cl.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	if cl.cfg.APIKey != "" {
		req.Header.Set(cl.cfg.APIKeyHeader, cl.cfg.APIKey)
	}
	if cl.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cl.cfg.UserAgent)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)

	log := obs.WithTrace(ctx, cl.log).With(
		zap.String("op", r.op),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := cl.c.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observe(r.op, "error", elapsed)
		log.Warn("backend call failed", zap.Duration("latency", elapsed), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", r.op, err)
	}
	observe(r.op, fmt.Sprint(resp.StatusCode), elapsed)
	log.Debug("backend call", zap.Int("status", resp.StatusCode), zap.Duration("latency", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(r.method, r.path, resp)
	}
	return resp, nil
}
