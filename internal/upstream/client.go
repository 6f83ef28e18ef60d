package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
)

type Method string

const (
	GET  Method = http.MethodGet
	POST Method = http.MethodPost
)

// RequestSpec describes one upstream call relative to the backend base URL.
// Path may contain {placeholders} filled from PathParams.
type RequestSpec struct {
	Path       string
	Method     Method
	PathParams map[string]string
	Query      url.Values
	Body       any
}

// Client talks to one backend. It never retries.
type Client struct {
	cfg  *config.BackendConfig
	http *resty.Client
}

func NewClient(cfg *config.BackendConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{cfg: cfg, http: client}
}

func (c *Client) Backend() config.Backend {
	return c.cfg.Backend
}

// Call performs a single request and returns the decoded JSON document.
// A missing credential is returned as a *config.MissingCredentialError before
// anything is sent; every other failure is a *CallError.
func (c *Client) Call(ctx context.Context, spec RequestSpec) (gjson.Result, error) {
	token, err := c.cfg.RequireToken()
	if err != nil {
		return gjson.Result{}, err
	}
	log := logger.FromContext(ctx).With("backend", string(c.cfg.Backend))

	method := spec.Method
	if method == "" {
		method = GET
	}
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if len(spec.PathParams) > 0 {
		req.SetPathParams(spec.PathParams)
	}
	if len(spec.Query) > 0 {
		req.SetQueryParamsFromValues(spec.Query)
	}
	switch method {
	case GET:
	case POST:
		if spec.Body != nil {
			req.SetBody(spec.Body)
		}
	default:
		return gjson.Result{}, transportError(c.cfg.Backend, fmt.Errorf("unsupported HTTP method: %s", method))
	}

	start := time.Now()
	resp, err := req.Execute(string(method), spec.Path)
	elapsed := time.Since(start)
	if err != nil {
		if isTimeout(err) {
			log.Warn("Upstream request timed out", "method", method, "path", spec.Path, "elapsed", elapsed)
			return gjson.Result{}, timeoutError(c.cfg.Backend, err)
		}
		log.Warn("Upstream request failed", "method", method, "path", spec.Path, "error", err)
		return gjson.Result{}, transportError(c.cfg.Backend, err)
	}

	status := resp.StatusCode()
	log.Debug("Upstream call", "method", method, "path", spec.Path, "status", status, "elapsed", elapsed)
	if status >= http.StatusBadRequest {
		log.Warn("Upstream returned error status", "method", method, "path", spec.Path, "status", status)
		return gjson.Result{}, statusError(c.cfg.Backend, status)
	}

	body := resp.Body()
	if !json.Valid(body) {
		err := fmt.Errorf("invalid JSON in response from %s", spec.Path)
		log.Warn("Upstream returned malformed body", "method", method, "path", spec.Path, "status", status)
		return gjson.Result{}, transportError(c.cfg.Backend, err)
	}
	return gjson.ParseBytes(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
