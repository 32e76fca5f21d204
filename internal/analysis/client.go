package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yildizm/rentcheck/internal/logger"
)

const (
	// UploadPath is the analysis endpoint relative to the service base URL
	UploadPath = "/upload/"

	// FileField is the multipart field carrying the document
	FileField = "file"

	// DefaultBaseURL is where the service listens in a local setup
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds a single upload
	DefaultTimeout = 120 * time.Second

	maxResponseBytes = 8 << 20
	tracerName       = "github.com/yildizm/rentcheck/internal/analysis"
)

// ClientConfig holds the service location
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client submits documents to the contradiction analysis service
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
	log     *logger.Logger
	maxBody int64
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTracerProvider sets the provider used for upload spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithLogger sets the client logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the service at cfg.BaseURL
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}

	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", raw, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid service URL %q: scheme must be http or https", raw)
	}
	if baseURL.Host == "" {
		return nil, fmt.Errorf("invalid service URL %q: missing host", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.GetTracerProvider().Tracer(tracerName),
		log:     logger.Nop("client"),
		maxBody: maxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the absolute upload URL
func (c *Client) Endpoint() string {
	return c.baseURL.JoinPath(UploadPath).String()
}

// Analyze uploads a document and decodes the service's findings. Every
// failure is returned as an *Error carrying its user-facing message.
func (c *Client) Analyze(ctx context.Context, filename string, content io.Reader) (result *Result, err error) {
	ctx, span := c.tracer.Start(ctx, "analysis.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("file.name", filename)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(KindOf(err)))
		} else {
			span.SetAttributes(attribute.Int("contradictions.count", len(result.Contradictions)))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	body, contentType, size, err := encodeMultipart(filename, content)
	if err != nil {
		return nil, NewTransportError(0, "", fmt.Errorf("build multipart body: %w", err))
	}
	span.SetAttributes(attribute.Int64("file.size", size))

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, NewTransportError(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.DebugWithFields("uploading document", []logger.Field{
		logger.F("file", filename),
		logger.F("bytes", size),
		logger.F("endpoint", endpoint),
	})

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("upload request failed: %v", err)
		return nil, NewTransportError(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, NewTransportError(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if int64(len(data)) > c.maxBody {
		c.log.Warn("service response exceeds %d bytes", c.maxBody)
		tooLarge := NewTransportError(resp.StatusCode, "", nil)
		tooLarge.Detail = fmt.Sprintf("response too large (over %d bytes)", c.maxBody)
		return nil, tooLarge
	}

	c.log.DebugWithFields("upload response", []logger.Field{
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ServiceMessage(data)
		c.log.Warn("service returned status %d", resp.StatusCode)
		return nil, NewTransportError(resp.StatusCode, msg, nil)
	}

	result, err = Decode(data)
	if err != nil {
		c.log.Warn("unusable service response: %v", err)
		return nil, err
	}

	return result, nil
}

func encodeMultipart(filename string, content io.Reader) (*bytes.Buffer, string, int64, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(FileField, filepath.Base(filename))
	if err != nil {
		return nil, "", 0, err
	}

	n, err := io.Copy(part, content)
	if err != nil {
		return nil, "", 0, err
	}

	if err := w.Close(); err != nil {
		return nil, "", 0, err
	}

	return &buf, w.FormDataContentType(), n, nil
}
