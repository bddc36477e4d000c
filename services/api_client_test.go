package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

func TestLoginPersistsCredential(t *testing.T) {
	b := newFakeBackend(t)
	api, creds := newTestClient(t, b)
	ctx := context.Background()

	user, err := api.Login(ctx, "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "asha@example.com", user.Email)

	token, err := creds.Get(ctx, CredentialKey("sess-test"))
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestLoginFailureKeepsMessage(t *testing.T) {
	b := newFakeBackend(t)
	b.setLoginFailure(http.StatusBadRequest, "Invalid email or password.")
	api, creds := newTestClient(t, b)
	ctx := context.Background()

	_, err := api.Login(ctx, "asha@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
	assert.Equal(t, "Invalid email or password.", apperrors.MessageOf(err))
	assert.False(t, api.HasCredential(ctx))

	token, _ := creds.Get(ctx, CredentialKey("sess-test"))
	assert.Empty(t, token)
}

func TestUnauthorizedClearsCredential(t *testing.T) {
	b := newFakeBackend(t)
	api, creds := newTestClient(t, b)
	ctx := context.Background()

	require.NoError(t, creds.Set(ctx, CredentialKey("sess-test"), "stale-token"))

	_, err := api.CurrentUser(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAuthRequired, apperrors.CodeOf(err))
	assert.Equal(t, "Authentication failed. Please log in again.", apperrors.MessageOf(err))
	assert.False(t, api.HasCredential(ctx))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantCode    apperrors.ErrorCode
		wantMessage string
	}{
		{"forbidden", http.StatusForbidden, apperrors.ErrCodeForbidden,
			"Access denied. You do not have permission to perform this action."},
		{"server error", http.StatusInternalServerError, apperrors.ErrCodeServer,
			"Server error. Please try again later."},
		{"bad gateway", http.StatusBadGateway, apperrors.ErrCodeServer,
			"Server error. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t)
			b.setMeStatus(tt.status)
			api, creds := newTestClient(t, b)
			ctx := context.Background()
			require.NoError(t, creds.Set(ctx, CredentialKey("sess-test"), "tok-123"))

			_, err := api.CurrentUser(ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Equal(t, tt.wantMessage, apperrors.MessageOf(err))
		})
	}
}

func TestValidationErrorsJoined(t *testing.T) {
	b := newFakeBackend(t)
	b.setBookingFailure(http.StatusBadRequest, "Validation failed",
		apperrors.FieldError{Path: "checkIn", Message: "is required"},
		apperrors.FieldError{Path: "phone", Message: "must be 10 digits"})
	api, _ := newTestClient(t, b)

	_, err := api.CreateBooking(context.Background(), validDraft())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
	assert.Equal(t, "Validation failed: checkIn: is required, phone: must be 10 digits", apperrors.MessageOf(err))
	assert.Len(t, apperrors.FieldsOf(err), 2)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	api := NewAPIClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, NewMemoryCredentialStore(), "sess-test", zap.NewNop())

	_, err := api.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNetwork, apperrors.CodeOf(err))
	assert.Equal(t, "Network error. Please check your connection.", apperrors.MessageOf(err))
}

func TestLogoutClearsCredential(t *testing.T) {
	b := newFakeBackend(t)
	api, creds := newTestClient(t, b)
	ctx := context.Background()

	require.NoError(t, creds.Set(ctx, CredentialKey("sess-test"), "tok-123"))
	api.Logout(ctx)

	assert.False(t, api.HasCredential(ctx))
	assert.Equal(t, 1, b.logoutCount())
}

func TestLogoutClearsCredentialWhenBackendUnreachable(t *testing.T) {
	creds := NewMemoryCredentialStore()
	api := NewAPIClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, creds, "sess-test", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, creds.Set(ctx, CredentialKey("sess-test"), "tok-123"))
	api.Logout(ctx)

	assert.False(t, api.HasCredential(ctx))
}

func TestCheckHealth(t *testing.T) {
	b := newFakeBackend(t)
	api, _ := newTestClient(t, b)
	ctx := context.Background()

	assert.True(t, api.CheckHealth(ctx))

	b.setHealthy(false)
	assert.False(t, api.CheckHealth(ctx))

	down := NewPublicClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, zap.NewNop())
	assert.False(t, down.CheckHealth(ctx))
}

func TestGetBooking(t *testing.T) {
	b := newFakeBackend(t)
	b.setBookingList([]models.Booking{{ID: "b7", GuestName: "Asha Rao", Status: "confirmed"}})
	api, _ := newTestClient(t, b)
	ctx := context.Background()

	booking, err := api.GetBooking(ctx, "b7")
	require.NoError(t, err)
	assert.Equal(t, "b7", booking.ID)
	assert.Equal(t, "Asha Rao", booking.GuestName)

	_, err = api.GetBooking(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, "Booking not found", apperrors.MessageOf(err))
}

func TestCreateBookingSendsFixedFields(t *testing.T) {
	b := newFakeBackend(t)
	api, _ := newTestClient(t, b)

	_, err := api.CreateBooking(context.Background(), validDraft())
	require.NoError(t, err)

	payload := b.lastBookingPayload()
	assert.Equal(t, "2026-09-10", payload["checkIn"])
	assert.Equal(t, "2026-09-12", payload["checkOut"])
	assert.Equal(t, float64(1), payload["numberOfGuests"])
	assert.Equal(t, "pay_later", payload["paymentOption"])
}
