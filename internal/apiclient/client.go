// Package apiclient talks to the remote PC SHOP store service. It is the
// only code that knows endpoint paths and wire shapes; callers deal in
// models and apperr values.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/metrics"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/telemetry"
)

const maxErrorBody = 64 << 10

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logger.OrNop(l) }
}

// WithTimeout bounds each request, response body included. Non-positive
// values keep the current timeout. List it after WithHTTPClient or
// WithMetrics, which replace the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMetrics counts and times every upstream request on reg.
func WithMetrics(reg *metrics.Registry, timeout time.Duration) Option {
	return func(c *Client) {
		hc := telemetry.NewTracedHTTPClient(reg.InstrumentRoundTripper(nil))
		hc.Timeout = timeout
		c.httpClient = hc
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: telemetry.NewTracedHTTPClient(nil),
		logger:     zap.NewNop(),
		userAgent:  "pcshop-storefront/1.0",
	}
	c.httpClient.Timeout = 15 * time.Second
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	auth   bool
	body   any
}

// do performs one request and decodes a JSON response into out when out is
// non-nil. There is no retry; the caller decides.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.auth && req.token == "" {
		return apperr.AuthRequiredErr("")
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("Store service unreachable",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return apperr.NetworkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := errorMessage(resp)
		c.logger.Warn("Store service rejected request",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		if resp.StatusCode == http.StatusUnauthorized {
			return apperr.AuthRequiredErr(msg)
		}
		return apperr.RejectedErr(resp.StatusCode, msg)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.DecodeErr("empty response from store service", err)
		}
		return apperr.DecodeErr("unexpected response from store service", err)
	}
	return nil
}

// errorMessage extracts {"message"} or {"error"} from an error body, falling
// back to the status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   models.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperr.DecodeErr("login response carried no token", nil)
	}
	return resp.Token, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/register", body: req}, nil)
}

// ListProducts returns the public catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products"}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/products/" + url.PathEscape(id)}, &product)
	return product, err
}

// GetCart returns the full cart snapshot.
func (c *Client) GetCart(ctx context.Context, token string) (models.Cart, error) {
	var cart models.Cart
	err := c.do(ctx, request{method: http.MethodGet, path: "/carts", token: token, auth: true}, &cart)
	return cart, err
}

// AddToCart adds quantity of a product to the cart.
func (c *Client) AddToCart(ctx context.Context, token, productID string, quantity int) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/carts/add",
		token:  token,
		auth:   true,
		body:   models.AddToCartRequest{ProductID: productID, Quantity: quantity},
	}, nil)
}

// CreateOrder submits an order request and returns the new order ID. The
// request source selects the endpoint and the name of the line array.
func (c *Client) CreateOrder(ctx context.Context, token string, req models.OrderRequest) (string, error) {
	var (
		path string
		body any
	)
	switch req.Source {
	case models.OrderSourceCart:
		path = "/orders/create-from-cart"
		body = models.CreateFromCartRequest{
			SelectedItems: req.Lines,
			ShippingInfo:  req.ShippingInfo,
			InvoiceMethod: req.InvoiceMethod,
		}
	case models.OrderSourceImmediate:
		path = "/orders/create-immediate"
		body = models.CreateImmediateRequest{
			OrderItems:    req.Lines,
			ShippingInfo:  req.ShippingInfo,
			InvoiceMethod: req.InvoiceMethod,
		}
	default:
		return "", apperr.InvalidErr(fmt.Sprintf("unknown order source %q", req.Source))
	}

	var resp models.CreateOrderResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: path, token: token, auth: true, body: body}, &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

// ListOrders returns one page of the user's orders with the given status.
func (c *Client) ListOrders(ctx context.Context, token string, status models.OrderStatus, page, limit int) (models.OrderListResponse, error) {
	q := url.Values{}
	q.Set("status", string(status))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var resp models.OrderListResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: q, token: token, auth: true}, &resp)
	return resp, err
}

// GetProfile returns the account details used to pre-fill shipping.
func (c *Client) GetProfile(ctx context.Context, token string) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, request{method: http.MethodGet, path: "/details", token: token, auth: true}, &profile)
	return profile, err
}

// AdminListProducts returns every product including inactive ones.
func (c *Client) AdminListProducts(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/admin", token: token, auth: true}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ArchiveProduct flips a product's active flag on the service.
func (c *Client) ArchiveProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/products/" + url.PathEscape(id) + "/archive",
		token:  token,
		auth:   true,
	}, nil)
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/list", token: token, auth: true}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetAdmin sets a user's admin flag.
func (c *Client) SetAdmin(ctx context.Context, token, id string, isAdmin bool) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/" + url.PathEscape(id) + "/setAsAdmin",
		token:  token,
		auth:   true,
		body:   models.SetAdminRequest{IsAdmin: isAdmin},
	}, nil)
}
