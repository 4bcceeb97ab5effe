package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/internal/domain"
)

// TokenSource supplies the bearer credential for outbound requests. An empty
// string sends the request unauthenticated and lets the server reject it.
type TokenSource func() string

// Client is the typed operation set against the SweetStock backend. Every call
// is a single round trip: no retries, no backoff, no caching. Failures are
// returned to the caller, who decides recovery.
type Client interface {
	ListSweets(ctx context.Context) ([]domain.Sweet, error)
	SearchSweets(ctx context.Context, name string) ([]domain.Sweet, error)
	CreateSweet(ctx context.Context, draft domain.SweetDraft) (*domain.Sweet, error)
	UpdateSweet(ctx context.Context, id string, draft domain.SweetDraft) (*domain.Sweet, error)
	DeleteSweet(ctx context.Context, id string) error
	PurchaseSweet(ctx context.Context, id string) error
	RestockSweet(ctx context.Context, id string, amount int) error
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, email, password string) error
}

type httpGateway struct {
	baseURL string
	client  *http.Client
	token   TokenSource
	log     *logrus.Logger
}

// NewHTTPClient builds the production gateway against baseURL. The token
// source is read fresh on every request so login and logout take effect
// without rebuilding the client.
func NewHTTPClient(baseURL string, timeout time.Duration, token TokenSource, logger *logrus.Logger) Client {
	return &httpGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
		log:   logger,
	}
}

// sweetPayload is the create/update request body per the backend contract.
type sweetPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type restockPayload struct {
	Amount int `json:"amount"`
}

// serverError is the error envelope the backend uses for rejections.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *httpGateway) ListSweets(ctx context.Context) ([]domain.Sweet, error) {
	var sweets []domain.Sweet
	status, body, err := c.do(ctx, http.MethodGet, "/sweets", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.statusError("list sweets", status, body)
	}
	if err := json.Unmarshal(body, &sweets); err != nil {
		c.log.Errorf("Gateway: Failed to decode sweets listing: %v", err)
		return nil, fmt.Errorf("failed to decode sweets listing: %w", err)
	}
	return sweets, nil
}

func (c *httpGateway) SearchSweets(ctx context.Context, name string) ([]domain.Sweet, error) {
	var sweets []domain.Sweet
	path := "/sweets/search?name=" + url.QueryEscape(name)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.statusError("search sweets", status, body)
	}
	if err := json.Unmarshal(body, &sweets); err != nil {
		c.log.Errorf("Gateway: Failed to decode search results for %q: %v", name, err)
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return sweets, nil
}

func (c *httpGateway) CreateSweet(ctx context.Context, draft domain.SweetDraft) (*domain.Sweet, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/sweets", payloadFromDraft(draft))
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, c.statusError("create sweet", status, body)
	}

	var created domain.Sweet
	if err := json.Unmarshal(body, &created); err != nil {
		// Treat an undecodable 2xx as a bare ack; the caller reloads anyway.
		c.log.Warnf("Gateway: Create acknowledged but response body was not a sweet: %v", err)
		return nil, nil
	}
	c.log.Infof("Gateway: Created sweet %q (id %s)", created.Name, created.ID)
	return &created, nil
}

func (c *httpGateway) UpdateSweet(ctx context.Context, id string, draft domain.SweetDraft) (*domain.Sweet, error) {
	status, body, err := c.do(ctx, http.MethodPut, "/sweets/"+url.PathEscape(id), payloadFromDraft(draft))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.log.Warnf("Gateway: Update rejected, sweet %s not found", id)
		return nil, fmt.Errorf("update sweet %s: %w", id, domain.ErrNotFound)
	}
	if status != http.StatusOK {
		return nil, c.statusError("update sweet", status, body)
	}

	var updated domain.Sweet
	if err := json.Unmarshal(body, &updated); err != nil {
		c.log.Warnf("Gateway: Update acknowledged but response body was not a sweet: %v", err)
		return nil, nil
	}
	return &updated, nil
}

func (c *httpGateway) DeleteSweet(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/sweets/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		c.log.Warnf("Gateway: Delete rejected, sweet %s not found", id)
		return fmt.Errorf("delete sweet %s: %w", id, domain.ErrNotFound)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return c.statusError("delete sweet", status, body)
	}
	c.log.Infof("Gateway: Deleted sweet %s", id)
	return nil
}

func (c *httpGateway) PurchaseSweet(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/purchase", nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		c.log.Infof("Gateway: Purchased sweet %s", id)
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("purchase sweet %s: %w", id, domain.ErrNotFound)
	case http.StatusBadRequest, http.StatusConflict:
		// The server refuses to decrement below zero.
		c.log.Warnf("Gateway: Purchase of sweet %s rejected: %s", id, serverMessage(body))
		return fmt.Errorf("purchase sweet %s: %w", id, domain.ErrOutOfStock)
	default:
		return c.statusError("purchase sweet", status, body)
	}
}

func (c *httpGateway) RestockSweet(ctx context.Context, id string, amount int) error {
	if amount <= 0 {
		return domain.NewValidationError("amount", "restock amount must be positive")
	}
	status, body, err := c.do(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/restock", restockPayload{Amount: amount})
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("restock sweet %s: %w", id, domain.ErrNotFound)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return c.statusError("restock sweet", status, body)
	}
	c.log.Infof("Gateway: Restocked sweet %s by %d", id, amount)
	return nil
}

func (c *httpGateway) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/login", credentialsPayload{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusBadRequest {
		c.log.Warnf("Gateway: Login rejected for %s", email)
		return nil, domain.ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, c.statusError("login", status, body)
	}

	var result domain.AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		c.log.Errorf("Gateway: Failed to decode login response: %v", err)
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	c.log.Infof("Gateway: Login succeeded for %s (role %s)", result.User.Email, result.User.Role)
	return &result, nil
}

func (c *httpGateway) Register(ctx context.Context, email, password string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/register", credentialsPayload{Email: email, Password: password})
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		c.log.Infof("Gateway: Registered account for %s", email)
		return nil
	case http.StatusConflict:
		return domain.ErrEmailTaken
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewValidationError("", serverMessage(body))
	default:
		return c.statusError("register", status, body)
	}
}

// do issues one request and returns the status plus the full body. Transport
// failures are wrapped here; status interpretation stays with each operation.
func (c *httpGateway) do(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	c.log.Debugf("Gateway: %s %s (request_id %s)", method, path, requestID)
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("Gateway: %s %s failed: %v", method, path, err)
		return 0, nil, fmt.Errorf("failed to reach inventory backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// statusError maps the statuses every operation shares the same way.
func (c *httpGateway) statusError(op string, status int, body []byte) error {
	msg := serverMessage(body)
	switch status {
	case http.StatusUnauthorized:
		c.log.Warnf("Gateway: %s rejected with 401: %s", op, msg)
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	case http.StatusForbidden:
		c.log.Warnf("Gateway: %s rejected with 403: %s", op, msg)
		return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		c.log.Warnf("Gateway: %s rejected as invalid: %s", op, msg)
		return domain.NewValidationError("", msg)
	default:
		c.log.Errorf("Gateway: %s failed with status %d: %s", op, status, msg)
		return fmt.Errorf("%s: backend returned status %d", op, status)
	}
}

// serverMessage pulls a human-readable message out of an error response body.
func serverMessage(body []byte) string {
	var envelope serverError
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "request failed"
	}
	return trimmed
}

func payloadFromDraft(draft domain.SweetDraft) sweetPayload {
	return sweetPayload{
		Name:     draft.Name,
		Category: draft.Category,
		Price:    draft.Price,
		Quantity: draft.Quantity,
	}
}
