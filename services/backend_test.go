package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

// fakeBackend is an in-process stand-in for the guest-house backend. Every
// endpoint answers with the real envelope shape; tests flip the failure knobs
// to drive specific error paths.
type fakeBackend struct {
	srv *httptest.Server

	mu             sync.Mutex
	healthy        bool
	loginToken     string
	loginUser      models.UserPayload
	loginStatus    int
	loginMessage   string
	meStatus       int
	profileStatus  int
	profileUser    *models.UserPayload
	floors         []models.FloorPayload
	rooms          []models.RoomPayload
	totalAvailable int
	totalRooms     int
	bookingStatus  int
	bookingMessage string
	bookingFields  []apperrors.FieldError
	bookingList    []models.Booking

	availabilityStatus  int
	availabilityMessage string

	availabilityHook func()

	bookingCalls int
	logoutCalls  int
	lastBooking  map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{
		healthy:    true,
		loginToken: "tok-123",
		loginUser: models.UserPayload{
			ID:    "u1",
			Name:  "Asha Rao",
			Email: "asha@example.com",
			Phone: "9876543210",
			Role:  "user",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", b.handleHealth)
	mux.HandleFunc("/auth/login", b.handleLogin)
	mux.HandleFunc("/auth/register", b.handleRegister)
	mux.HandleFunc("/auth/logout", b.handleLogout)
	mux.HandleFunc("/auth/me", b.handleMe)
	mux.HandleFunc("/auth/profile", b.handleProfile)
	mux.HandleFunc("/rooms/floors", b.handleFloors)
	mux.HandleFunc("/rooms/availability", b.handleAvailability)
	mux.HandleFunc("/bookings", b.handleBookings)
	mux.HandleFunc("/bookings/", b.handleBookingByID)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// seedRooms loads a small two-floor layout: 101 and 102 on the ground floor,
// 201 on the first floor, and an empty second floor.
func (b *fakeBackend) seedRooms() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.floors = []models.FloorPayload{
		{ID: "Ground Floor", Floors: []models.FloorBlockPayload{{Block: "A", Facilities: []string{"WiFi"}}}},
		{ID: "First Floor", Floors: []models.FloorBlockPayload{{Block: "B", Facilities: []string{"WiFi", "Geyser"}}}},
		{ID: "Second Floor", Floors: []models.FloorBlockPayload{{Block: "C", Facilities: nil}}},
	}
	b.rooms = []models.RoomPayload{
		{ID: "r2", RoomNumber: "102", Type: "single", Status: "booked", Floor: "Ground Floor", Block: "A", PricePerNight: 1500, IsAvailable: boolPtr(false)},
		{ID: "r1", RoomNumber: "101", Type: "single", Status: "vacant", Floor: "Ground Floor", Block: "A", PricePerNight: 1500, IsAvailable: boolPtr(true)},
		{ID: "r3", RoomNumber: "201", Type: "single", Status: "vacant", Floor: "First Floor", Block: "B", PricePerNight: 1800, IsAvailable: boolPtr(true)},
	}
	b.totalAvailable = 2
	b.totalRooms = 3
}

func boolPtr(v bool) *bool { return &v }

func (b *fakeBackend) setHealthy(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthy = v
}

func (b *fakeBackend) setLoginFailure(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginStatus = status
	b.loginMessage = message
}

func (b *fakeBackend) setMeStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meStatus = status
}

func (b *fakeBackend) setProfile(status int, user *models.UserPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profileStatus = status
	b.profileUser = user
}

func (b *fakeBackend) setBookingFailure(status int, message string, fields ...apperrors.FieldError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookingStatus = status
	b.bookingMessage = message
	b.bookingFields = fields
}

func (b *fakeBackend) setAvailabilityHook(hook func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.availabilityHook = hook
}

func (b *fakeBackend) setAvailabilityFailure(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.availabilityStatus = status
	b.availabilityMessage = message
}

func (b *fakeBackend) setBookingList(list []models.Booking) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookingList = list
}

func (b *fakeBackend) bookingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookingCalls
}

func (b *fakeBackend) logoutCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

func (b *fakeBackend) lastBookingPayload() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBooking
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
}

func writeFailure(w http.ResponseWriter, status int, message string, fields []apperrors.FieldError) {
	body := map[string]any{"status": "error", "message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}

func (b *fakeBackend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	healthy := b.healthy
	b.mu.Unlock()

	if !healthy {
		writeFailure(w, http.StatusServiceUnavailable, "unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	status, message := b.loginStatus, b.loginMessage
	user, token := b.loginUser, b.loginToken
	b.mu.Unlock()

	if status != 0 {
		writeFailure(w, status, message, nil)
		return
	}
	writeSuccess(w, map[string]any{"user": user, "token": token})
}

func (b *fakeBackend) handleRegister(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	user, token := b.loginUser, b.loginToken
	b.mu.Unlock()

	writeSuccess(w, map[string]any{"user": user, "token": token})
}

func (b *fakeBackend) handleLogout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	b.mu.Unlock()

	writeSuccess(w, map[string]any{"message": "logged out"})
}

func (b *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.meStatus
	user, token := b.loginUser, b.loginToken
	b.mu.Unlock()

	if status != 0 {
		writeFailure(w, status, "me failed", nil)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+token {
		writeFailure(w, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	writeSuccess(w, map[string]any{"user": user})
}

func (b *fakeBackend) handleProfile(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	status := b.profileStatus
	user := b.loginUser
	if b.profileUser != nil {
		user = *b.profileUser
	}
	b.mu.Unlock()

	if status != 0 {
		writeFailure(w, status, "profile update failed", nil)
		return
	}
	writeSuccess(w, map[string]any{"user": user})
}

func (b *fakeBackend) handleFloors(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	floors := b.floors
	b.mu.Unlock()

	writeSuccess(w, map[string]any{"floors": floors})
}

func (b *fakeBackend) handleAvailability(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	hook := b.availabilityHook
	b.mu.Unlock()

	// The hook may block; read the response config only after it returns so
	// tests can reconfigure the backend while a request is parked.
	if hook != nil {
		hook()
	}

	b.mu.Lock()
	status, message := b.availabilityStatus, b.availabilityMessage
	rooms := b.rooms
	totalAvailable, totalRooms := b.totalAvailable, b.totalRooms
	b.mu.Unlock()

	if status != 0 {
		writeFailure(w, status, message, nil)
		return
	}

	data := map[string]any{
		"rooms":          rooms,
		"totalAvailable": totalAvailable,
		"totalRooms":     totalRooms,
	}
	if checkIn := r.URL.Query().Get("checkIn"); checkIn != "" {
		data["searchDates"] = map[string]string{
			"checkIn":  checkIn,
			"checkOut": r.URL.Query().Get("checkOut"),
		}
	}
	writeSuccess(w, data)
}

func (b *fakeBackend) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		b.mu.Lock()
		list := b.bookingList
		b.mu.Unlock()

		writeSuccess(w, map[string]any{
			"bookings":   list,
			"pagination": map[string]int{"page": 1, "limit": 10, "total": len(list), "pages": 1},
		})
		return
	}

	var payload map[string]any
	json.NewDecoder(r.Body).Decode(&payload)

	b.mu.Lock()
	b.bookingCalls++
	b.lastBooking = payload
	status, message, fields := b.bookingStatus, b.bookingMessage, b.bookingFields
	b.mu.Unlock()

	if status != 0 {
		writeFailure(w, status, message, fields)
		return
	}
	writeSuccess(w, map[string]any{"booking": models.Booking{
		ID:            "b1",
		Status:        "confirmed",
		PaymentStatus: "pending",
	}})
}

func (b *fakeBackend) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/bookings/")

	b.mu.Lock()
	list := b.bookingList
	b.mu.Unlock()

	for _, booking := range list {
		if booking.ID == id {
			writeSuccess(w, map[string]any{"booking": booking})
			return
		}
	}
	writeFailure(w, http.StatusNotFound, "Booking not found", nil)
}

func newTestClient(t *testing.T, b *fakeBackend) (*APIClient, *MemoryCredentialStore) {
	t.Helper()
	creds := NewMemoryCredentialStore()
	api := NewAPIClient(b.srv.URL, b.srv.Client(), creds, "sess-test", zap.NewNop())
	return api, creds
}

func validDraft() models.BookingDraft {
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	return models.BookingDraft{
		RoomID:    "r1",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		GuestName: "Asha Rao",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Purpose:   models.PurposeAcademic,
		Nights:    2,
		Amount:    3000,
	}
}
