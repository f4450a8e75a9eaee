package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// A4 portrait with narrow margins, sized for the one-page move sheet.
var pdfOptions = map[string]string{
	"paperWidth":   "8.27",
	"paperHeight":  "11.69",
	"marginTop":    "0.4",
	"marginBottom": "0.4",
	"marginLeft":   "0.4",
	"marginRight":  "0.4",
}

// Client renders move sheets to PDF through a Gotenberg instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report: gotenberg unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("report: gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderPDF converts the rendered sheet HTML into an A4 PDF.
func (c *Client) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for field, value := range pdfOptions {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report: render request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("report: render failed with status %d", resp.StatusCode)
	}
	// Move sheets are one page; anything past 16 MiB is not a sheet.
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}
