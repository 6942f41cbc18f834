// Package pdfconv is the HTTP client for the DOCX→PDF converter service
// (cmd/pdfservice). The service is stateless: it takes the template bytes
// plus the receipt field values and returns the rendered PDF; the caller
// owns upload and key persistence.
package pdfconv

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Converter renders a filled receipt PDF from a DOCX template.
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) ([]byte, error)
}

// ConvertRequest mirrors the converter's wire contract. The "addres" field
// name is part of the existing contract and is kept as-is.
type ConvertRequest struct {
	TemplateFile []byte `json:"-"`
	SponsorName  string `json:"user"`
	Address      string `json:"addres"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Year         int    `json:"year"`
	Date         string `json:"date"`
	SponsorID    uint   `json:"sid"`
	DonationID   uint   `json:"did"`
}

type wireRequest struct {
	ConvertRequest
	TemplateFileB64 string `json:"templateFile"`
}

type wireResponse struct {
	PDF     string `json:"pdf"`
	Message string `json:"message"`
}

// Client calls the converter service over HTTP.
type Client struct {
	serviceURL string
	httpClient *http.Client
}

// NewClient builds a converter client. timeout bounds the whole conversion
// round-trip; zero means 30 seconds.
func NewClient(serviceURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		serviceURL: serviceURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Convert posts the template and field values and returns the PDF bytes.
// Any non-200 status is an error carrying the service's message.
func (c *Client) Convert(ctx context.Context, req ConvertRequest) ([]byte, error) {
	if c.serviceURL == "" {
		return nil, fmt.Errorf("pdf service url is not configured")
	}

	body, err := json.Marshal(wireRequest{
		ConvertRequest:  req,
		TemplateFileB64: base64.StdEncoding.EncodeToString(req.TemplateFile),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal convert request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build convert request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call pdf service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pdf service response: %w", err)
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode pdf service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if wire.Message != "" {
			return nil, fmt.Errorf("pdf service: %s (status %d)", wire.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("pdf service returned status %d", resp.StatusCode)
	}

	pdf, err := base64.StdEncoding.DecodeString(wire.PDF)
	if err != nil {
		return nil, fmt.Errorf("decode pdf payload: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("pdf service returned an empty document")
	}
	return pdf, nil
}
