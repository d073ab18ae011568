// Package api implements the REST transport for the parcel backend.
// It owns request construction, bearer authentication, and the mapping of
// HTTP failures onto the client's error taxonomy: validation never reaches
// this layer, backend messages pass through verbatim as *BackendError, and
// transport problems collapse into ErrUnavailable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/parcel-ng/parcel-client/internal/client/models"
)

// TokenSource supplies the current bearer token for authenticated calls.
// An empty string means no session; the request is sent without a token
// and the backend decides.
type TokenSource interface {
	CurrentToken() string
}

// Client is the remote operation surface consumed by the controllers.
type Client interface {
	// auth
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	RegisterRider(ctx context.Context, firstname, lastname, email, password string) error
	VerifyEmail(ctx context.Context, otp, email string) (*models.Session, error)
	ResendVerificationOTP(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, otp, password string) error

	// rider dashboard
	WalletPage(ctx context.Context, page, limit int) (*models.WalletPage, error)
	AcceptOrder(ctx context.Context, orderID string) error
	CompleteOrder(ctx context.Context, orderID, pin string) error
	SubmitRiderVerification(ctx context.Context, docs models.RiderDocuments) error

	// notifications
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error

	// liveness
	Ping(ctx context.Context) error

	Close() error
}

// RESTClient talks JSON over HTTP to the backend.
type RESTClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// noToken is used for clients constructed without a token source.
type noToken struct{}

func (noToken) CurrentToken() string { return "" }

// NewRESTClient builds a client for the given base URL ("https://host[:port]").
// tokens may be nil for unauthenticated use.
func NewRESTClient(baseURL string, timeout time.Duration, tokens TokenSource) *RESTClient {
	if tokens == nil {
		tokens = noToken{}
	}
	return &RESTClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one JSON request and decodes the response into out (if non-nil).
func (c *RESTClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.CurrentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// mapError turns a non-2xx body into a BackendError, preferring the server's
// "error" field and falling back to "message". A body that is not JSON at all
// counts as a transport failure.
func (c *RESTClient) mapError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: unexpected response (status %d)", ErrUnavailable, status)
		}
	}
	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	return &BackendError{StatusCode: status, Message: msg}
}

func (c *RESTClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	req := map[string]string{"email": email, "password": password}
	var sess models.Session
	if err := c.do(ctx, http.MethodPost, "/api/users/signin", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *RESTClient) RegisterRider(ctx context.Context, firstname, lastname, email, password string) error {
	req := map[string]string{
		"firstname": firstname,
		"lastname":  lastname,
		"email":     email,
		"password":  password,
	}
	return c.do(ctx, http.MethodPost, "/api/riders/register", req, nil)
}

func (c *RESTClient) VerifyEmail(ctx context.Context, otp, email string) (*models.Session, error) {
	req := map[string]string{"otp": otp, "email": email}
	var sess models.Session
	if err := c.do(ctx, http.MethodPost, "/api/users/verify_email", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *RESTClient) ResendVerificationOTP(ctx context.Context, email string) error {
	req := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/users/resend_verification_otp", req, nil)
}

func (c *RESTClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodGet, "/api/users/reset_password/"+url.PathEscape(email), nil, nil)
}

func (c *RESTClient) ResetPassword(ctx context.Context, otp, password string) error {
	req := map[string]string{"otp": otp, "password": password}
	return c.do(ctx, http.MethodPost, "/api/users/reset_password", req, nil)
}

// walletPageResponse mirrors the backend envelope: orders are nested as a
// paginated docs list.
type walletPageResponse struct {
	Wallet models.Wallet `json:"wallet"`
	Orders struct {
		Docs    []models.Order `json:"docs"`
		HasMore bool           `json:"hasMore"`
	} `json:"orders"`
	CompletedOrders    int `json:"completedOrders"`
	NotDeliveredOrders int `json:"notDeliveredOrders"`
}

func (c *RESTClient) WalletPage(ctx context.Context, page, limit int) (*models.WalletPage, error) {
	path := "/api/wallets?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	var resp walletPageResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &models.WalletPage{
		Wallet:             resp.Wallet,
		Orders:             resp.Orders.Docs,
		HasMore:            resp.Orders.HasMore,
		CompletedOrders:    resp.CompletedOrders,
		NotDeliveredOrders: resp.NotDeliveredOrders,
	}, nil
}

func (c *RESTClient) AcceptOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/accept", nil, nil)
}

func (c *RESTClient) CompleteOrder(ctx context.Context, orderID, pin string) error {
	req := map[string]string{"pin": pin}
	return c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/complete", req, nil)
}

func (c *RESTClient) SubmitRiderVerification(ctx context.Context, docs models.RiderDocuments) error {
	return c.do(ctx, http.MethodPost, "/api/riders/verification", docs, nil)
}

type notificationsResponse struct {
	Docs []models.Notification `json:"docs"`
}

func (c *RESTClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	var resp notificationsResponse
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Docs, nil
}

func (c *RESTClient) MarkNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/notifications/read", nil, nil)
}

func (c *RESTClient) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+url.PathEscape(id), nil, nil)
}

func (c *RESTClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}
