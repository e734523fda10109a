// Package transport is the HTTP implementation of remote.Transport.
package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/remote"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// Client provides HTTP client functionality with authentication.
type Client struct {
	http      *http.Client
	auth      Resolver
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new transport client with the specified authenticator resolver.
func New(auth Resolver, opts ...Option) *Client {
	if auth == nil {
		auth = Static(&NoAuth{})
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		auth:      auth,
		userAgent: "txsync",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ remote.Transport = (*Client)(nil)

// Request performs a call without a body.
func (c *Client) Request(ctx context.Context, call remote.Call) ([]byte, error) {
	return c.do(ctx, call, nil, "")
}

// Upload performs a call with a multipart form body.
func (c *Client) Upload(ctx context.Context, call remote.Call, fields map[string]string, files []remote.File) ([]byte, error) {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, errors.WrapResource("encode", "upload", string(call.Endpoint), err)
	}
	return c.do(ctx, call, body, contentType)
}

func (c *Client) do(ctx context.Context, call remote.Call, body []byte, contentType string) ([]byte, error) {
	auth, err := c.auth.ForHost(call.Host)
	if err != nil {
		return nil, err
	}
	if r, ok := auth.(Router); ok {
		if host := r.APIHost(); host != "" {
			call.Host = host
		}
	}

	url, err := call.URL()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method(), url, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", call.String(), err)
	}
	auth.Apply(req)

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("method", req.Method).
		Str("url", url).
		Msg("Remote request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewNetworkError(string(call.Endpoint), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.NewNetworkError(string(call.Endpoint), err)
		}
		return data, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Debug().
			Int("status", resp.StatusCode).
			Str("endpoint", string(call.Endpoint)).
			Msg("Remote error")
		return nil, errors.NewRemoteError(string(call.Endpoint), resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

// encodeMultipart writes fields in sorted order followed by files. Each
// file part carries a content type detected from its content.
func encodeMultipart(fields map[string]string, files []remote.File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		field := f.Field
		if field == "" {
			field = "file"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(field)+`"; filename="`+escapeQuotes(f.Name)+`"`)
		h.Set("Content-Type", mimetype.Detect(f.Content).String())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
