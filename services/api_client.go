package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

// envelope is the backend's response shape for every endpoint.
type envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    json.RawMessage        `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

// APIClient is the single point of HTTP communication with the guest-house
// backend. It attaches the session's bearer token when one is persisted,
// parses the response envelope and classifies every failure into a typed
// AppError. A client constructed without a credential store issues
// unauthenticated requests only.
type APIClient struct {
	baseURL string
	http    *http.Client
	creds   CredentialStore
	credKey string
	logger  *zap.Logger

	mu         sync.Mutex
	loggingOut bool
}

// DefaultHTTPClient returns the transport shared by all per-session clients.
// The timeout bounds requests that would otherwise hang the UI forever.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// NewAPIClient builds the gateway for one browser session.
func NewAPIClient(baseURL string, httpClient *http.Client, creds CredentialStore, sessionID string, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    httpClient,
		creds:   creds,
		credKey: CredentialKey(sessionID),
		logger:  logger,
	}
}

// NewPublicClient builds a gateway for unauthenticated reads (floors,
// availability, health).
func NewPublicClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *APIClient {
	return &APIClient{baseURL: baseURL, http: httpClient, logger: logger}
}

func (c *APIClient) token(ctx context.Context) string {
	if c.creds == nil {
		return ""
	}
	token, err := c.creds.Get(ctx, c.credKey)
	if err != nil {
		c.logger.Warn("credential read failed", zap.Error(err))
		return ""
	}
	return token
}

// HasCredential reports whether a bearer token is persisted for the session.
func (c *APIClient) HasCredential(ctx context.Context) bool {
	return c.token(ctx) != ""
}

// ClearCredential drops the persisted token.
func (c *APIClient) ClearCredential(ctx context.Context) {
	if c.creds == nil {
		return
	}
	if err := c.creds.Clear(ctx, c.credKey); err != nil {
		c.logger.Warn("credential clear failed", zap.Error(err))
	}
}

func (c *APIClient) setCredential(ctx context.Context, token string) error {
	if c.creds == nil {
		return fmt.Errorf("client has no credential store")
	}
	return c.creds.Set(ctx, c.credKey, token)
}

// do issues one request and decodes the envelope's data into out. Failures
// are classified here and nowhere else.
func (c *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeUnknown, "failed to encode request", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeUnknown, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, "Network error. Please check your connection.", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, "Network error. Please check your connection.", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.classify(ctx, resp.StatusCode, env)
	}
	if decodeErr != nil {
		return apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed response from server.", decodeErr)
	}
	if env.Status == "error" {
		message := env.Message
		if message == "" {
			message = "Request failed."
		}
		return apperrors.New(apperrors.ErrCodeUnknown, message)
	}
	if out != nil {
		if len(env.Data) == 0 {
			return apperrors.New(apperrors.ErrCodeUnknown, "Response carried no data.")
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed response from server.", err)
		}
	}
	return nil
}

func (c *APIClient) classify(ctx context.Context, status int, env envelope) *apperrors.AppError {
	switch {
	case status == http.StatusUnauthorized:
		// Clear the credential here so a half-expired token can never be
		// replayed by a later request on the same session.
		c.ClearCredential(ctx)
		return apperrors.New(apperrors.ErrCodeAuthRequired, "Authentication failed. Please log in again.")
	case status == http.StatusForbidden:
		return apperrors.New(apperrors.ErrCodeForbidden, "Access denied. You do not have permission to perform this action.")
	case status == http.StatusBadRequest:
		if len(env.Errors) > 0 {
			parts := make([]string, 0, len(env.Errors))
			for _, fe := range env.Errors {
				parts = append(parts, fe.Path+": "+fe.Message)
			}
			appErr := apperrors.New(apperrors.ErrCodeInvalidRequest, "Validation failed: "+strings.Join(parts, ", "))
			appErr.Fields = env.Errors
			return appErr
		}
		message := env.Message
		if message == "" {
			message = "Invalid request. Please check your input."
		}
		return apperrors.New(apperrors.ErrCodeInvalidRequest, message)
	case status >= 500:
		return apperrors.New(apperrors.ErrCodeServer, "Server error. Please try again later.")
	default:
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("Request failed with status %d", status)
		}
		return apperrors.New(apperrors.ErrCodeUnknown, message)
	}
}

// ---- auth ----

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

type authData struct {
	User  models.UserPayload `json:"user"`
	Token string             `json:"token"`
}

// Login authenticates and persists the returned credential before returning,
// so a follow-up request on the same session sees the new token.
func (c *APIClient) Login(ctx context.Context, email, password string) (models.User, error) {
	var data authData
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return models.User{}, err
	}
	return c.finishAuth(ctx, data)
}

func (c *APIClient) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &data); err != nil {
		return models.User{}, err
	}
	return c.finishAuth(ctx, data)
}

func (c *APIClient) finishAuth(ctx context.Context, data authData) (models.User, error) {
	user, err := models.NewUser(data.User)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed user in response.", err)
	}
	if data.Token == "" {
		return models.User{}, apperrors.New(apperrors.ErrCodeUnknown, "Response carried no token.")
	}
	if err := c.setCredential(ctx, data.Token); err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrCodeUnknown, "Failed to persist credential.", err)
	}
	return user, nil
}

// Logout best-effort notifies the backend, then unconditionally clears the
// local credential. It never fails, and re-entrant calls while a logout is
// in flight are no-ops.
func (c *APIClient) Logout(ctx context.Context) {
	c.mu.Lock()
	if c.loggingOut {
		c.mu.Unlock()
		return
	}
	c.loggingOut = true
	c.mu.Unlock()

	defer func() {
		c.ClearCredential(ctx)
		c.mu.Lock()
		c.loggingOut = false
		c.mu.Unlock()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("logout notification failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}

func (c *APIClient) CurrentUser(ctx context.Context) (models.User, error) {
	var data struct {
		User models.UserPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &data); err != nil {
		return models.User{}, err
	}
	user, err := models.NewUser(data.User)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed user in response.", err)
	}
	return user, nil
}

// UpdateProfile sends a partial update and returns the server-computed
// identity.
func (c *APIClient) UpdateProfile(ctx context.Context, updates map[string]any) (models.User, error) {
	var data struct {
		User models.UserPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/profile", updates, &data); err != nil {
		return models.User{}, err
	}
	user, err := models.NewUser(data.User)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed user in response.", err)
	}
	return user, nil
}

// ---- rooms ----

// FloorData fetches the floor aggregation, validated through the models
// factories.
func (c *APIClient) FloorData(ctx context.Context) ([]models.Floor, error) {
	var data struct {
		Floors []models.FloorPayload `json:"floors"`
	}
	if err := c.do(ctx, http.MethodGet, "/rooms/floors", nil, &data); err != nil {
		return nil, err
	}
	floors := make([]models.Floor, 0, len(data.Floors))
	for _, p := range data.Floors {
		floor, err := models.NewFloor(p)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed floor in response.", err)
		}
		floors = append(floors, floor)
	}
	return floors, nil
}

type AvailabilityQuery struct {
	Type     models.RoomType
	Floor    string
	Block    string
	CheckIn  string
	CheckOut string
	Limit    int
}

type SearchDates struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

type AvailabilityResult struct {
	Rooms          []models.Room
	TotalAvailable int
	TotalRooms     int
	SearchDates    *SearchDates
}

func (c *APIClient) RoomAvailability(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	if q.Floor != "" {
		params.Set("floor", q.Floor)
	}
	if q.Block != "" {
		params.Set("block", q.Block)
	}
	if q.CheckIn != "" {
		params.Set("checkIn", q.CheckIn)
	}
	if q.CheckOut != "" {
		params.Set("checkOut", q.CheckOut)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/rooms/availability"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var data struct {
		Rooms          []models.RoomPayload `json:"rooms"`
		TotalAvailable int                  `json:"totalAvailable"`
		TotalRooms     int                  `json:"totalRooms"`
		SearchDates    *SearchDates         `json:"searchDates,omitempty"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(data.Rooms))
	for _, p := range data.Rooms {
		room, err := models.NewRoom(p)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeUnknown, "Malformed room in response.", err)
		}
		rooms = append(rooms, room)
	}
	return &AvailabilityResult{
		Rooms:          rooms,
		TotalAvailable: data.TotalAvailable,
		TotalRooms:     data.TotalRooms,
		SearchDates:    data.SearchDates,
	}, nil
}

// ---- bookings ----

type bookingPayload struct {
	RoomID         string `json:"roomId"`
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	GuestName      string `json:"guestName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Purpose        string `json:"purpose"`
	PurposeDetails string `json:"purposeDetails,omitempty"`
	NumberOfGuests int    `json:"numberOfGuests"`
	PaymentOption  string `json:"paymentOption"`
}

func (c *APIClient) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	payload := bookingPayload{
		RoomID:         draft.RoomID,
		CheckIn:        draft.CheckIn.Format(models.DateLayout),
		CheckOut:       draft.CheckOut.Format(models.DateLayout),
		GuestName:      draft.GuestName,
		Email:          draft.Email,
		Phone:          draft.Phone,
		Purpose:        string(draft.Purpose),
		PurposeDetails: draft.PurposeDetails,
		NumberOfGuests: 1,
		PaymentOption:  "pay_later",
	}

	var data struct {
		Booking models.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookings", payload, &data); err != nil {
		return models.Booking{}, err
	}
	return data.Booking, nil
}

type BookingsQuery struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type BookingsResult struct {
	Bookings   []models.Booking `json:"bookings"`
	Pagination *Pagination      `json:"pagination,omitempty"`
}

func (c *APIClient) Bookings(ctx context.Context, q BookingsQuery) (*BookingsResult, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/bookings"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result BookingsResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBooking fetches one booking by its backend identifier.
func (c *APIClient) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	var data struct {
		Booking models.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, &data); err != nil {
		return models.Booking{}, err
	}
	return data.Booking, nil
}

// ---- health ----

// CheckHealth is a non-throwing liveness probe; any failure reports false.
func (c *APIClient) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
