// Package client is a Go consumer of the kost HTTP API. Besides request helpers it carries
// the view state machines a UI needs: the booking wizard, generation-guarded lists and the
// conversation subscription handle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kost-service/internal/models"
	"kost-service/internal/services"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kost api: %d %s", e.Status, e.Message)
}

// Client talks to one kost-service endpoint. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	dialer  *websocket.Dialer

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// New builds a Client for the service at endpoint authenticating with the public API key.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// SignUp creates a profile and keeps the returned token for later calls.
func (c *Client) SignUp(ctx context.Context, req services.SignUpRequest) (services.AuthResult, error) {
	var res services.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &res); err != nil {
		return services.AuthResult{}, err
	}
	c.SetToken(res.Token)
	return res, nil
}

// SignIn authenticates and keeps the returned token for later calls.
func (c *Client) SignIn(ctx context.Context, email, password string) (services.AuthResult, error) {
	var res services.AuthResult
	req := services.SignInRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", req, &res); err != nil {
		return services.AuthResult{}, err
	}
	c.SetToken(res.Token)
	return res, nil
}

func (c *Client) Me(ctx context.Context) (models.Profile, error) {
	var res struct {
		Profile models.Profile `json:"profile"`
	}
	err := c.do(ctx, http.MethodGet, "/me", nil, &res)
	return res.Profile, err
}

func (c *Client) Rooms(ctx context.Context) ([]models.Room, error) {
	var res struct {
		Rooms []models.Room `json:"rooms"`
	}
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &res); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

func (c *Client) Room(ctx context.Context, roomID string) (models.Room, error) {
	var res struct {
		Room models.Room `json:"room"`
	}
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(roomID), nil, &res)
	return res.Room, err
}

func (c *Client) CreateRoom(ctx context.Context, room models.NewRoom) (models.Room, error) {
	var res struct {
		Room models.Room `json:"room"`
	}
	err := c.do(ctx, http.MethodPost, "/rooms", room, &res)
	return res.Room, err
}

// ToggleAvailability flips a room's availability flag.
func (c *Client) ToggleAvailability(ctx context.Context, roomID string) (models.Room, error) {
	var res struct {
		Room models.Room `json:"room"`
	}
	err := c.do(ctx, http.MethodPatch, "/rooms/"+url.PathEscape(roomID)+"/availability", struct{}{}, &res)
	return res.Room, err
}

func (c *Client) Quote(ctx context.Context, roomID string, checkIn, checkOut models.Date) (services.Quote, error) {
	var res services.Quote
	req := services.QuoteRequest{CheckIn: checkIn, CheckOut: checkOut}
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/quote", req, &res)
	return res, err
}

func (c *Client) CreateBooking(ctx context.Context, req services.CreateBookingRequest) (models.BookingWithPayment, error) {
	var res models.BookingWithPayment
	err := c.do(ctx, http.MethodPost, "/bookings", req, &res)
	return res, err
}

func (c *Client) Bookings(ctx context.Context) ([]models.BookingDetail, error) {
	var res struct {
		Bookings []models.BookingDetail `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, &res); err != nil {
		return nil, err
	}
	return res.Bookings, nil
}

func (c *Client) SetBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) (models.Booking, error) {
	var res struct {
		Booking models.Booking `json:"booking"`
	}
	req := map[string]models.BookingStatus{"status": status}
	err := c.do(ctx, http.MethodPatch, "/bookings/"+url.PathEscape(bookingID)+"/status", req, &res)
	return res.Booking, err
}

func (c *Client) Payment(ctx context.Context, bookingID string) (models.Payment, error) {
	var res struct {
		Payment models.Payment `json:"payment"`
	}
	err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(bookingID)+"/payment", nil, &res)
	return res.Payment, err
}

func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var res models.Dashboard
	err := c.do(ctx, http.MethodGet, "/dashboard", nil, &res)
	return res, err
}

func (c *Client) Contacts(ctx context.Context) (services.Contacts, error) {
	var res services.Contacts
	err := c.do(ctx, http.MethodGet, "/chat/contacts", nil, &res)
	return res, err
}

func (c *Client) Messages(ctx context.Context, contactID string) ([]models.ChatMessage, error) {
	var res struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/conversations/"+url.PathEscape(contactID)+"/messages", nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, contactID string, req services.SendMessageRequest) (models.ChatMessage, error) {
	var res struct {
		Message models.ChatMessage `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/conversations/"+url.PathEscape(contactID)+"/messages", req, &res)
	return res.Message, err
}
