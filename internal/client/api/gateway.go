package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovolkov/pawhub/internal/logging"
)

// DefaultTimeout is the hard per-request deadline applied by the gateway.
const DefaultTimeout = 25 * time.Second

// Form is a multipart payload: plain fields plus binary file parts.
// The transport picks the boundary; callers never set a content type.
type Form struct {
	Fields map[string]string
	Files  []FilePart
}

// FilePart is one binary part of a Form.
type FilePart struct {
	Field   string
	Name    string
	Content []byte
}

// Patch is a partial-update body for PATCH requests.
type Patch map[string]any

// TokenSource supplies the current access token for outbound requests.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Gateway wraps the HTTP transport with the client's cross-cutting rules:
// a hard deadline per request, bearer-token attachment, the {"data": ...}
// response envelope, and normalization of failures into the error taxonomy
// in errors.go. Any 401 becomes ErrSessionExpired before the caller sees it.
type Gateway struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

func NewGateway(baseURL string, timeout time.Duration, log logging.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		log:     log,
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Do issues one request. body may be nil, a *Form (multipart), or any
// JSON-marshalable value. token, when non-empty, is attached as a bearer
// credential. On 2xx the envelope's data field is decoded into out (when out
// is non-nil); otherwise the normalized taxonomy error is returned.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reqBody io.Reader
	var contentType string

	switch b := body.(type) {
	case nil:
	case *Form:
		buf, ct, err := encodeForm(b)
		if err != nil {
			return fmt.Errorf("encoding form: %w", err)
		}
		reqBody, contentType = buf, ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encoding body: %w", err)
		}
		reqBody, contentType = bytes.NewReader(data), "application/json"
	}

	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.log.Warn(ctx, "request deadline exceeded", "method", method, "path", path)
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Warn(ctx, "request failed", "method", method, "path", path, "status", resp.StatusCode)
		return NormalizeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// encodeForm renders a Form into a multipart body. The returned content type
// carries the boundary generated by the multipart writer.
func encodeForm(f *Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for name, value := range f.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}
	for _, part := range f.Files {
		fw, err := w.CreateFormFile(part.Field, part.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(part.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
