package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twillco/storefront/pkg/catalog"
)

// OrderStatus is the body of GET /order-status/:id
type OrderStatus struct {
	Status   string            `json:"status"`
	Amount   catalog.Cents     `json:"amount"`
	Customer map[string]string `json:"customer"`
}

// UploadResult is the body of a successful POST /upload-design
type UploadResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Health is the body of GET /health
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// APIError is a non-2xx response from the storefront server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// APIClient talks to the storefront server over HTTP
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL is the server address the client was created with
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// CreatePaymentIntent posts the order and returns the client secret
func (c *APIClient) CreatePaymentIntent(ctx context.Context, req OrderRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode order: %w", err)
	}

	var result struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.do(ctx, http.MethodPost, "/create-payment-intent", "application/json", bytes.NewReader(body), &result); err != nil {
		return "", err
	}
	if result.ClientSecret == "" {
		return "", fmt.Errorf("response has no client secret")
	}

	return result.ClientSecret, nil
}

// OrderStatus looks up a payment intent
func (c *APIClient) OrderStatus(ctx context.Context, intentID string) (*OrderStatus, error) {
	var status OrderStatus
	if err := c.do(ctx, http.MethodGet, "/order-status/"+url.PathEscape(intentID), "", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// UploadDesign sends a design file as the multipart field "design"
func (c *APIClient) UploadDesign(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("design", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var result UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload-design", w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the server
func (c *APIClient) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Catalog fetches the server's products, colors and sizes
func (c *APIClient) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	var cat catalog.Catalog
	if err := c.do(ctx, http.MethodGet, "/catalog", "", nil, &cat); err != nil {
		return nil, err
	}
	if err := catalog.Validate(&cat); err != nil {
		return nil, fmt.Errorf("server catalog: %w", err)
	}
	return &cat, nil
}

// Label downloads the packing label PNG for an order
func (c *APIClient) Label(ctx context.Context, intentID string) ([]byte, error) {
	var png []byte
	if err := c.do(ctx, http.MethodGet, "/order-status/"+url.PathEscape(intentID)+"/label.png", "", nil, &png); err != nil {
		return nil, err
	}
	return png, nil
}

// LabelURL is the packing label address for an order
func (c *APIClient) LabelURL(intentID string) string {
	return c.baseURL + "/order-status/" + url.PathEscape(intentID) + "/label.png"
}

func (c *APIClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
