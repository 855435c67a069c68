package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/logger"
)

var (
	// ErrNotFound matches any StatusError carrying a 404.
	ErrNotFound = errors.New("backend: not found")
	// ErrDecode is returned when a 2xx body is not the JSON we expected.
	ErrDecode = errors.New("backend: malformed response")
)

// StatusError is a non-2xx answer from the Backend Service. Body is kept
// for server-side logging only.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: HTTP %d: %s", e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.APIURL,
		httpClient: &http.Client{
			Timeout: cfg.BackendTimeout,
		},
		log: logger.Get(),
	}
}

// clientFor returns an http.Client that authenticates as token. An empty
// token yields the bare client; callers decide whether to send a header.
func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.httpClient.Timeout
	return hc
}

// Do sends one request and returns the response for 2xx statuses. Any other
// status is drained into a *StatusError.
func (c *Client) Do(ctx context.Context, token, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token == "" {
		req.Header.Set("Authorization", "")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("calling backend")

	resp, err := c.clientFor(ctx, token).Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{Status: resp.StatusCode, Body: string(text)}
	}
	return resp, nil
}

// SendJSON marshals in (when non-nil) and decodes the answer into out (when
// non-nil). An empty 2xx body leaves out untouched.
func (c *Client) SendJSON(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.Do(ctx, token, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp.Body, out)
}

// SendText is SendJSON for endpoints answering with plain text.
func (c *Client) SendText(ctx context.Context, token, method, path string, in any) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}
	resp, err := c.Do(ctx, token, method, path, bytes.NewReader(data), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	return string(text), nil
}

// Upload re-encodes content as a multipart form with a single "file" field.
func (c *Client) Upload(ctx context.Context, token, path, fileName string, content io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return errors.Wrap(err, "failed to create form file")
	}
	if _, err := io.Copy(part, content); err != nil {
		return errors.Wrap(err, "failed to copy upload")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "failed to close multipart writer")
	}

	resp, err := c.Do(ctx, token, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp.Body, out)
}

// File is a binary body relayed from the Backend Service. The caller closes Body.
type File struct {
	ContentType string
	Length      int64
	Body        io.ReadCloser
}

func (c *Client) Download(ctx context.Context, token, path string) (*File, error) {
	resp, err := c.Do(ctx, token, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &File{ContentType: ct, Length: resp.ContentLength, Body: resp.Body}, nil
}

// Ping reports whether the Backend Service answers at all. Any HTTP status
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create ping request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "backend unreachable")
	}
	resp.Body.Close()
	return nil
}

func decode(r io.Reader, out any) error {
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(ErrDecode, "%v", err)
	}
	return nil
}

func seg(s string) string {
	return url.PathEscape(s)
}
