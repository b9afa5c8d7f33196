package aptlyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/signing"
)

// Client talks to one Aptly server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	Signing    signing.Resolver
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithTimeouts sets the TCP connect timeout and the overall per-request
// timeout (covering the time to read the full response body). A zero value
// means "no timeout", matching net/http and the Python client's defaults.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			DialContext: (&net.Dialer{Timeout: connect}).DialContext,
		}
		c.httpClient.Timeout = read
	}
}

// WithSigning attaches the signing resolver used to fill in the Signing
// field of publish create/update requests.
func WithSigning(r signing.Resolver) Option {
	return func(c *Client) { c.Signing = r }
}

// WithHTTPClient overrides the underlying http.Client entirely, e.g. for
// TLS client certificates or a custom RoundTripper.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client for the Aptly API at baseURL, e.g.
// "http://localhost:8090/".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type multipartFile struct {
	fieldName string
	filename  string
	r         io.Reader
}

// requestOpts carries at most one of the three request-body shapes the
// Aptly API uses. Exactly one of these, or none for a bodyless GET/DELETE,
// is set per call.
type requestOpts struct {
	json      any
	urlParams url.Values
	multipart []multipartFile
}

// urlJoin concatenates path segments with single slashes, preserving a
// leading slash on the first part and a trailing slash on the last part.
func urlJoin(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	prefix := ""
	if strings.HasPrefix(parts[0], "/") {
		prefix = "/"
	}
	suffix := ""
	if strings.HasSuffix(parts[len(parts)-1], "/") {
		suffix = "/"
	}
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.Trim(p, "/")
	}
	return prefix + strings.Join(trimmed, "/") + suffix
}

// do performs one HTTP request and, on success, decodes the JSON response
// body into out (if out is non-nil and the body is non-empty). A non-2xx
// status is returned as an *aptlyerr.APIError; any transport-level failure
// (DNS, connect, TLS, timeout, cancellation) is returned as an
// *aptlyerr.TransportError.
func (c *Client) do(ctx context.Context, method, path string, body requestOpts, out any) error {
	set := 0
	if body.json != nil {
		set++
	}
	if body.urlParams != nil {
		set++
	}
	if body.multipart != nil {
		set++
	}
	if set > 1 {
		return fmt.Errorf("aptlyclient: %s %s: more than one request body kind set", method, path)
	}

	var reqBody io.Reader
	contentType := ""

	switch {
	case body.json != nil:
		b, err := json.Marshal(body.json)
		if err != nil {
			return fmt.Errorf("aptlyclient: encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
		contentType = "application/json"
	case body.urlParams != nil:
		reqBody = strings.NewReader(body.urlParams.Encode())
		contentType = "application/x-www-form-urlencoded"
	case body.multipart != nil:
		buf, ct, err := encodeMultipart(body.multipart)
		if err != nil {
			return err
		}
		reqBody = buf
		contentType = ct
	}

	fullURL := urlJoin(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("aptlyclient: building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &aptlyerr.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &aptlyerr.TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aptlyerr.NewAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("aptlyclient: decoding response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

func encodeMultipart(files []multipartFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.fieldName, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("aptlyclient: building multipart body: %w", err)
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return nil, "", fmt.Errorf("aptlyclient: reading %s for upload: %w", f.filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("aptlyclient: closing multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// Version returns the Aptly server's version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var result struct {
		Version string `json:"Version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/version", requestOpts{}, &result); err != nil {
		return "", err
	}
	return result.Version, nil
}
