package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ErrSubmissionFailed covers every answer from the backend that does not
// carry a usable result: non-2xx statuses, undecodable bodies and replies
// without an output locator.
var ErrSubmissionFailed = errors.New("tryon: submission failed")

const (
	endpointPath = "/api/tryon/"

	fieldGarment     = "garm_img"
	fieldHuman       = "human_img"
	fieldDescription = "garment_des"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	// WrapBody, if set, wraps the encoded request body before it is sent.
	WrapBody func(body io.Reader, size int64) io.Reader
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	wrapBody   func(io.Reader, int64) io.Reader
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		wrapBody:   opts.WrapBody,
	}
}

func (c *Client) Endpoint() string {
	return c.baseURL + endpointPath
}

type submitResponse struct {
	Output string `json:"output"`
}

// Submit sends one try-on request and returns the result image locator.
// It never retries.
func (c *Client) Submit(ctx context.Context, garment, person Image, description string) (string, error) {
	body, contentType, err := encodeForm(garment, person, description)
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}

	size := int64(body.Len())
	var reader io.Reader = body
	if c.wrapBody != nil {
		reader = c.wrapBody(reader, size)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), reader)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("content-type", contentType)
	req.Header.Set("accept", "application/json")

	c.logger.Debug("tryon submit",
		"endpoint", c.Endpoint(),
		"garment_bytes", garment.Size(),
		"human_bytes", person.Size(),
		"description_len", len(description),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("tryon backend rejected submission", "status", resp.StatusCode, "body", truncate(string(rawBody), 256))
		return "", fmt.Errorf("%w: %s", ErrSubmissionFailed, resp.Status)
	}

	var decoded submitResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmissionFailed, err)
	}

	output := strings.TrimSpace(decoded.Output)
	if output == "" {
		return "", fmt.Errorf("%w: response has no output", ErrSubmissionFailed)
	}

	return output, nil
}

func encodeForm(garment, person Image, description string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writeImagePart(writer, fieldGarment, garment); err != nil {
		return nil, "", err
	}
	if err := writeImagePart(writer, fieldHuman, person); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField(fieldDescription, description); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeImagePart(writer *multipart.Writer, field string, img Image) error {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(fileName(field, img))))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(img.Data)
	return err
}

func fileName(field string, img Image) string {
	if name := strings.TrimSpace(img.Name); name != "" {
		return name
	}
	name := field + ".jpg"
	if exts, _ := mime.ExtensionsByType(img.MIMEType); len(exts) > 0 {
		name = field + exts[0]
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
