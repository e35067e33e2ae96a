// Package webhook sends encoded form payloads to remote webhook endpoints.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dharsanguruparan/FormDrop/internal/form"
	"github.com/dharsanguruparan/FormDrop/internal/logger"
	"github.com/dharsanguruparan/FormDrop/internal/signing"
)

const (
	HeaderSubmission = "X-FormDrop-Submission"
	HeaderSignature  = "X-FormDrop-Signature"
)

// StatusError is a remote rejection: the endpoint answered with a non-2xx code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %d", e.Code)
}

// TransportError wraps failures to build, send or read the request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client implements form.Submitter over HTTP. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	headers map[string]string
	signer  *signing.Signer
	log     logger.Logger
}

// New creates a Client. headers are added to every request; signer may be nil.
func New(httpClient *http.Client, headers map[string]string, signer *signing.Signer, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{http: httpClient, headers: headers, signer: signer, log: log}
}

var _ form.Submitter = (*Client)(nil)

// Submit sends p once: GET with the query appended for query payloads, POST
// with a multipart body otherwise. Only a 2xx status counts as success.
func (c *Client) Submit(ctx context.Context, p *form.Payload, endpoint string) error {
	req, err := c.newRequest(ctx, p, endpoint)
	if err != nil {
		return &TransportError{Err: err}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if p.ID != "" {
		req.Header.Set(HeaderSubmission, p.ID)
		if c.signer != nil {
			req.Header.Set(HeaderSignature, c.signer.Sign(p.ID, p.Nonce))
		}
	}

	// Do returns an error only for transport failures; HTTP error statuses
	// come back as a normal response and are checked below.
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the body itself is not used.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	c.log.Debugf("%s %s -> %d", req.Method, endpoint, resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, p *form.Payload, endpoint string) (*http.Request, error) {
	if p.Mode == form.ModeMultipart {
		var body bytes.Buffer
		contentType, err := p.WriteMultipart(&body)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, withQuery(endpoint, p.Query()), nil)
}

func withQuery(endpoint, query string) string {
	switch {
	case query == "":
		return endpoint
	case strings.HasSuffix(endpoint, "?"), strings.HasSuffix(endpoint, "&"):
		return endpoint + query
	case strings.Contains(endpoint, "?"):
		return endpoint + "&" + query
	default:
		return endpoint + "?" + query
	}
}
