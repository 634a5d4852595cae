package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/flowcontrol"
	"k8s.io/client-go/util/retry"

	"github.com/opmodel/apimpub/internal/output"
)

// DefaultAPIVersion is the management API version sent when none is configured.
const DefaultAPIVersion = "2022-08-01"

// Defaults for long-running operation polling.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

// ServiceURL returns the resource URL of an API-management service.
func ServiceURL(managementURL, subscriptionID, resourceGroup, serviceName string) string {
	if managementURL == "" {
		managementURL = DefaultManagementURL
	}
	return strings.TrimSuffix(managementURL, "/") +
		"/subscriptions/" + url.PathEscape(subscriptionID) +
		"/resourceGroups/" + url.PathEscape(resourceGroup) +
		"/providers/Microsoft.ApiManagement/service/" + url.PathEscape(serviceName)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// ServiceURL is the service resource URL every path is appended to.
	ServiceURL string

	// APIVersion is sent as the api-version query parameter.
	APIVersion string

	// TokenSource authorizes requests. Nil sends no Authorization header.
	TokenSource oauth2.TokenSource

	// HTTPClient is the base client. Defaults to http.DefaultClient's transport.
	HTTPClient *http.Client

	// QPS and Burst configure client-side rate limiting. QPS <= 0 disables it.
	QPS   float32
	Burst int

	// Backoff governs retries of throttled, failed and unreachable requests.
	// Zero means retry.DefaultBackoff.
	Backoff wait.Backoff

	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client is the HTTP Gateway.
type Client struct {
	base         string
	apiVersion   string
	http         *http.Client
	limiter      flowcontrol.RateLimiter
	backoff      wait.Backoff
	pollInterval time.Duration
	pollTimeout  time.Duration
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ServiceURL == "" {
		return nil, fmt.Errorf("service URL is required")
	}
	if _, err := url.Parse(opts.ServiceURL); err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", opts.ServiceURL, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.TokenSource != nil {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: opts.TokenSource, Base: base},
			Timeout:   httpClient.Timeout,
		}
	}

	c := &Client{
		base:         strings.TrimSuffix(opts.ServiceURL, "/"),
		apiVersion:   opts.APIVersion,
		http:         httpClient,
		backoff:      opts.Backoff,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.backoff.Steps == 0 {
		c.backoff = retry.DefaultBackoff
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	if opts.QPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = flowcontrol.NewTokenBucketRateLimiter(opts.QPS, burst)
	} else {
		c.limiter = flowcontrol.NewFakeAlwaysRateLimiter()
	}

	return c, nil
}

// List implements Gateway.
func (c *Client) List(ctx context.Context, uri string) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		next := c.url(uri)
		for next != "" {
			resp, err := c.do(ctx, http.MethodGet, next, nil)
			if err == nil {
				err = resp.check(http.MethodGet, uri)
			}
			if err != nil {
				yield(nil, err)
				return
			}

			var page struct {
				Value    []map[string]any `json:"value"`
				NextLink string           `json:"nextLink"`
			}
			if err := json.Unmarshal(resp.body, &page); err != nil {
				yield(nil, fmt.Errorf("decoding page of %s: %w", uri, err))
				return
			}
			for _, item := range page.Value {
				if !yield(item, nil) {
					return
				}
			}
			next = page.NextLink
		}
	}
}

// Put implements Gateway.
func (c *Client) Put(ctx context.Context, uri string, doc map[string]any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", uri, err)
	}

	resp, err := c.do(ctx, http.MethodPut, c.url(uri), body)
	if err != nil {
		return err
	}
	if err := resp.check(http.MethodPut, uri); err != nil {
		return err
	}
	if resp.status == http.StatusAccepted {
		return c.await(ctx, http.MethodPut, uri, resp)
	}
	return nil
}

// Delete implements Gateway.
func (c *Client) Delete(ctx context.Context, uri string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.url(uri), nil)
	if err != nil {
		return err
	}
	if err := resp.check(http.MethodDelete, uri); err != nil {
		return err
	}
	if resp.status == http.StatusAccepted {
		return c.await(ctx, http.MethodDelete, uri, resp)
	}
	return nil
}

// url resolves a service-relative path and adds the api-version.
func (c *Client) url(uri string) string {
	u, err := url.Parse(c.base + uri)
	if err != nil {
		return c.base + uri
	}
	q := u.Query()
	if q.Get("api-version") == "" {
		q.Set("api-version", c.apiVersion)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// check turns a non-success response into a StatusError.
func (r *response) check(method, uri string) error {
	if r.status >= 200 && r.status < 300 {
		return nil
	}
	se := &StatusError{Method: method, URI: uri, StatusCode: r.status}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(r.body, &body) == nil {
		se.Code = body.Error.Code
		se.Message = body.Error.Message
	}
	return se
}

// do sends one request, retrying throttling, server errors and transport
// failures with backoff.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (*response, error) {
	var resp *response

	err := retry.OnError(c.backoff, retriable, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-ms-client-request-id", uuid.NewString())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		output.Debug("request", "method", method, "url", target)

		r, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TransportError{Method: method, URI: target, Err: err}
		}
		defer r.Body.Close()

		data, err := io.ReadAll(r.Body)
		if err != nil {
			return &TransportError{Method: method, URI: target, Err: err}
		}

		resp = &response{status: r.StatusCode, header: r.Header, body: data}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			output.Debug("retrying request", "method", method, "url", target, "status", r.StatusCode)
			return resp.check(method, target)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func retriable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return false
}

// await polls a long-running operation started by a 202 response.
func (c *Client) await(ctx context.Context, method, uri string, accepted *response) error {
	asyncURL := accepted.header.Get("Azure-AsyncOperation")
	location := accepted.header.Get("Location")
	if asyncURL == "" && location == "" {
		return nil
	}

	var opErr error
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, c.pollTimeout, false, func(ctx context.Context) (bool, error) {
		target := asyncURL
		if target == "" {
			target = location
		}
		resp, err := c.do(ctx, http.MethodGet, target, nil)
		if err != nil {
			return false, err
		}
		if err := resp.check(method, uri); err != nil {
			return false, err
		}

		if asyncURL == "" {
			// Location polling: 202 while running, any other success when done.
			return resp.status != http.StatusAccepted, nil
		}

		var status struct {
			Status string `json:"status"`
			Error  struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(resp.body, &status); err != nil {
			return false, fmt.Errorf("decoding operation status: %w", err)
		}
		switch strings.ToLower(status.Status) {
		case "succeeded":
			return true, nil
		case "failed", "canceled", "cancelled":
			opErr = fmt.Errorf("%s %s: operation %s: %s %s", method, uri, status.Status, status.Error.Code, status.Error.Message)
			return true, nil
		default:
			return false, nil
		}
	})
	if err != nil {
		return fmt.Errorf("waiting for %s %s: %w", method, uri, err)
	}
	return opErr
}
