package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Storefront is the subset of the backend the containers and flows depend on.
// It is implemented by *Client and can be replaced in tests.
type Storefront interface {
	FetchProducts(ctx context.Context) ([]Product, error)
	FetchProduct(ctx context.Context, id string) (Product, error)
	FetchSections(ctx context.Context) ([]Section, error)
	FetchTypes(ctx context.Context) ([]Type, error)
	Login(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, profile Profile) (User, error)
	CreateAddress(ctx context.Context, userID string, addr Address) (Address, error)
	UpdateAddress(ctx context.Context, userID string, addr Address) (Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
	PlaceOrder(ctx context.Context, order OrderRequest) (OrderResponse, error)
}

// Ensure Client implements Storefront at compile time.
var _ Storefront = (*Client)(nil)

// Client talks to the storefront REST backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	DefaultBaseURL   = "https://my-ecommerce-eta-ruby.vercel.app"
	defaultUserAgent = "tote/0.1"
	requestTimeout   = 10 * time.Second
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// NewClient builds a Client for the given base URL. A zero timeout uses the
// default; a nil logger disables logging.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchProducts retrieves the full product list.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var payload ProductListResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// FetchProduct retrieves one product.
func (c *Client) FetchProduct(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, fmt.Errorf("product id required")
	}
	var payload ProductResponse
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &payload); err != nil {
		return Product{}, err
	}
	return payload.Data, nil
}

// CreateProduct creates a product. The backend answers either with
// {"products": [...]}, a wrapped product or the product itself.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/create-products", in, &raw); err != nil {
		return Product{}, err
	}
	return decodeProduct(raw)
}

// UpdateProduct replaces the fields of an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, fmt.Errorf("product id required")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(id), in, &raw); err != nil {
		return Product{}, err
	}
	return decodeProduct(raw)
}

// FetchSections retrieves all sections.
func (c *Client) FetchSections(ctx context.Context) ([]Section, error) {
	var payload SectionListResponse
	if err := c.do(ctx, http.MethodGet, "/sections", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sections, nil
}

// CreateSection creates a section.
func (c *Client) CreateSection(ctx context.Context, name string, images []string) (Section, error) {
	body := struct {
		Name   string   `json:"name"`
		Images []string `json:"images"`
	}{name, images}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/sections", body, &raw); err != nil {
		return Section{}, err
	}
	var out Section
	if err := decodeMaybeWrapped(raw, "section", &out); err != nil {
		return Section{}, err
	}
	return out, nil
}

// SetSectionImage replaces a section's image.
func (c *Client) SetSectionImage(ctx context.Context, id, image string) error {
	body := struct {
		Image string `json:"image"`
	}{image}
	return c.do(ctx, http.MethodPost, "/sections/"+url.PathEscape(id)+"/image", body, nil)
}

// FetchTypes retrieves all types.
func (c *Client) FetchTypes(ctx context.Context) ([]Type, error) {
	var payload TypeListResponse
	if err := c.do(ctx, http.MethodGet, "/types", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Types, nil
}

// CreateType creates a type under sectionID.
func (c *Client) CreateType(ctx context.Context, name, sectionID string, images []string) (Type, error) {
	body := struct {
		Name    string   `json:"name"`
		Section string   `json:"section"`
		Images  []string `json:"images"`
	}{name, sectionID, images}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/types", body, &raw); err != nil {
		return Type{}, err
	}
	var out Type
	if err := decodeMaybeWrapped(raw, "type", &out); err != nil {
		return Type{}, err
	}
	return out, nil
}

// SetTypeImage replaces a type's image.
func (c *Client) SetTypeImage(ctx context.Context, id, image string) error {
	body := struct {
		Image string `json:"image"`
	}{image}
	return c.do(ctx, http.MethodPost, "/types/"+url.PathEscape(id)+"/image", body, nil)
}

// Login looks a user up by email. A {"success": false} payload is reported
// as an error carrying the backend's message.
func (c *Client) Login(ctx context.Context, email string) (User, error) {
	body := struct {
		Email string `json:"email"`
	}{email}
	var payload LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &payload)
	if err != nil {
		return User{}, err
	}
	if !payload.Success || payload.User == nil {
		msg := strings.TrimSpace(payload.Error)
		if msg == "" {
			msg = "Login failed"
		}
		return User{}, errors.New(msg)
	}
	return *payload.User, nil
}

// CreateUser registers a profile.
func (c *Client) CreateUser(ctx context.Context, profile Profile) (User, error) {
	var payload UserResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", profile, &payload); err != nil {
		return User{}, err
	}
	return payload.User, nil
}

// CreateAddress adds an address to userID.
func (c *Client) CreateAddress(ctx context.Context, userID string, addr Address) (Address, error) {
	if strings.TrimSpace(userID) == "" {
		return Address{}, fmt.Errorf("user id required")
	}
	addr.ID = ""
	var payload AddressResponse
	path := "/api/users/" + url.PathEscape(userID) + "/addresses"
	if err := c.do(ctx, http.MethodPost, path, addr, &payload); err != nil {
		return Address{}, err
	}
	return payload.Address, nil
}

// UpdateAddress replaces addr (matched by addr.ID) for userID.
func (c *Client) UpdateAddress(ctx context.Context, userID string, addr Address) (Address, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(addr.ID) == "" {
		return Address{}, fmt.Errorf("user id and address id required")
	}
	var payload AddressResponse
	path := "/api/users/" + url.PathEscape(userID) + "/addresses/" + url.PathEscape(addr.ID)
	if err := c.do(ctx, http.MethodPut, path, addr, &payload); err != nil {
		return Address{}, err
	}
	return payload.Address, nil
}

// DeleteAddress removes an address.
func (c *Client) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(addressID) == "" {
		return fmt.Errorf("user id and address id required")
	}
	path := "/api/users/" + url.PathEscape(userID) + "/addresses/" + url.PathEscape(addressID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PlaceOrder submits an order. No idempotency key is attached.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (OrderResponse, error) {
	var payload OrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", order, &payload); err != nil {
		return OrderResponse{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts {"error": "..."} or {"message": "..."} from an
// error body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if len(payload.Error) > 0 {
		var s string
		if json.Unmarshal(payload.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return payload.Message
}

func decodeProduct(raw json.RawMessage) (Product, error) {
	var envelope struct {
		Data     *Product  `json:"data"`
		Product  *Product  `json:"product"`
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Product{}, fmt.Errorf("decode response: %w", err)
	}
	switch {
	case envelope.Data != nil:
		return *envelope.Data, nil
	case envelope.Product != nil:
		return *envelope.Product, nil
	case len(envelope.Products) > 0:
		return envelope.Products[0], nil
	}
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("decode response: %w", err)
	}
	return p, nil
}

func decodeMaybeWrapped(raw json.RawMessage, key string, dest any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if inner, ok := envelope[key]; ok {
		raw = inner
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
