package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

// FlowState is the booking flow's explicit state. Transitions:
//
//	idle → room_selected → form_open → auth_gate → submitting → confirmed
//	                            └──────────────────────┘            failed
//
// Validation is a transient step inside Submit, not a resting state.
type FlowState string

const (
	FlowIdle         FlowState = "idle"
	FlowRoomSelected FlowState = "room_selected"
	FlowFormOpen     FlowState = "form_open"
	FlowAuthGate     FlowState = "auth_gate"
	FlowSubmitting   FlowState = "submitting"
	FlowConfirmed    FlowState = "confirmed"
	FlowFailed       FlowState = "failed"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// DraftInput is the raw booking form as the browser sends it.
type DraftInput struct {
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	GuestName      string `json:"guestName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Purpose        string `json:"purpose"`
	PurposeDetails string `json:"purposeDetails"`
}

// SubmitOutcome reports where a submission ended up: gated behind
// authentication, or confirmed with the created booking.
type SubmitOutcome struct {
	AuthRequired bool            `json:"authRequired,omitempty"`
	Booking      *models.Booking `json:"booking,omitempty"`
}

// FlowSnapshot is the view the UI re-syncs from.
type FlowSnapshot struct {
	State       FlowState                `json:"state"`
	Selected    *models.AvailabilityView `json:"selectedRoom,omitempty"`
	Pending     *models.BookingDraft     `json:"pendingBooking,omitempty"`
	LastBooking *models.Booking          `json:"lastBooking,omitempty"`
	LastError   string                   `json:"lastError,omitempty"`
}

// BookingFlow orchestrates one session's path from room selection to a
// confirmed booking: form validation, the authentication gate that parks a
// validated draft, automatic resubmission after login, and the availability
// refresh once a booking lands.
type BookingFlow struct {
	api      *APIClient
	session  *Session
	resolver *AvailabilityResolver
	logger   *zap.Logger

	// Pause between credential confirmation and automatic resubmission;
	// zero in tests.
	settleDelay time.Duration
	now         func() time.Time

	mu          sync.Mutex
	state       FlowState
	selected    *models.AvailabilityView
	query       RoomQuery
	pending     *models.BookingDraft
	submitting  bool
	lastBooking *models.Booking
	lastError   string
}

func NewBookingFlow(api *APIClient, session *Session, resolver *AvailabilityResolver, logger *zap.Logger, settleDelay time.Duration) *BookingFlow {
	return &BookingFlow{
		api:         api,
		session:     session,
		resolver:    resolver,
		logger:      logger,
		settleDelay: settleDelay,
		now:         time.Now,
		state:       FlowIdle,
	}
}

// SelectRoom admits a room into the flow. Rooms the resolver did not mark
// clickable are rejected and the state does not change.
func (f *BookingFlow) SelectRoom(view models.AvailabilityView, q RoomQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return apperrors.New(apperrors.ErrCodeValidation, "A booking is already being submitted.")
	}
	if !view.IsClickable {
		message := view.Message
		if message == "" {
			message = "This room is not available for the selected dates."
		}
		return apperrors.New(apperrors.ErrCodeValidation, message)
	}

	f.selected = &view
	f.query = q
	f.state = FlowRoomSelected
	f.openForm()
	return nil
}

// openForm moves a selected room into form collection. Callers hold f.mu.
func (f *BookingFlow) openForm() {
	f.state = FlowFormOpen
	f.lastError = ""
}

// Submit validates the form and either submits the draft or, when the
// session is unauthenticated, parks it as the pending booking and reports
// that authentication is required. The booking endpoint is never contacted
// in that case.
func (f *BookingFlow) Submit(ctx context.Context, in DraftInput) (*SubmitOutcome, error) {
	f.mu.Lock()

	if f.submitting {
		f.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeValidation, "A booking is already being submitted.")
	}
	if f.selected == nil {
		f.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeValidation, "No room selected. Please select a room and try again.")
	}

	draft, err := f.buildDraft(in, f.selected.Room)
	if err != nil {
		f.openForm()
		f.mu.Unlock()
		return nil, err
	}

	f.pending = &draft
	if !f.session.IsAuthenticated() {
		f.state = FlowAuthGate
		f.mu.Unlock()
		return &SubmitOutcome{AuthRequired: true}, nil
	}
	f.mu.Unlock()

	return f.submit(ctx, draft)
}

// ResumeAfterAuth resubmits the pending booking once the session has been
// authenticated. It submits at most once: a no-op when nothing is pending,
// a submission is already in flight, or the user cancelled the draft while
// the settle delay ran.
func (f *BookingFlow) ResumeAfterAuth(ctx context.Context) (*SubmitOutcome, error) {
	f.mu.Lock()
	if f.pending == nil || f.submitting {
		f.mu.Unlock()
		return nil, nil
	}
	draft := *f.pending
	f.mu.Unlock()

	if f.settleDelay > 0 {
		select {
		case <-time.After(f.settleDelay):
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, "Request cancelled.", ctx.Err())
		}
	}

	// Only the draft that is still pending may be resubmitted; a Cancel
	// during the delay discards it for good.
	f.mu.Lock()
	if f.pending == nil || *f.pending != draft || f.submitting {
		f.mu.Unlock()
		return nil, nil
	}
	f.submitting = true
	f.state = FlowSubmitting
	f.mu.Unlock()

	f.logger.Info("resubmitting pending booking after authentication",
		zap.String("roomId", draft.RoomID))
	return f.finishSubmit(ctx, draft)
}

func (f *BookingFlow) submit(ctx context.Context, draft models.BookingDraft) (*SubmitOutcome, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeValidation, "A booking is already being submitted.")
	}
	f.submitting = true
	f.state = FlowSubmitting
	f.mu.Unlock()

	return f.finishSubmit(ctx, draft)
}

// finishSubmit sends the draft to the backend. Callers have already set the
// submitting flag, so Cancel cannot clear the draft underneath the request.
func (f *BookingFlow) finishSubmit(ctx context.Context, draft models.BookingDraft) (*SubmitOutcome, error) {
	booking, err := f.api.CreateBooking(ctx, draft)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAuthRequired) {
			f.session.Invalidate()
		}
		// Pending draft is preserved so the user retries without
		// re-entering anything.
		f.state = FlowFailed
		f.lastError = apperrors.MessageOf(err)
		f.mu.Unlock()
		return nil, err
	}

	f.pending = nil
	f.selected = nil
	f.lastBooking = &booking
	f.lastError = ""
	f.state = FlowConfirmed
	query := f.query
	f.mu.Unlock()

	// Re-resolve so the booked room stops displaying as clickable.
	if _, rerr := f.resolver.Refresh(ctx, query); rerr != nil {
		f.logger.Warn("availability refresh after booking failed", zap.Error(rerr))
	}

	return &SubmitOutcome{Booking: &booking}, nil
}

// Cancel discards the pending draft and selection. Not permitted while a
// submission is in flight.
func (f *BookingFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return apperrors.New(apperrors.ErrCodeValidation, "A booking is currently being submitted.")
	}
	f.pending = nil
	f.selected = nil
	f.lastError = ""
	f.state = FlowIdle
	return nil
}

func (f *BookingFlow) Snapshot() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := FlowSnapshot{State: f.state, LastError: f.lastError}
	if f.selected != nil {
		view := *f.selected
		snap.Selected = &view
	}
	if f.pending != nil {
		draft := *f.pending
		snap.Pending = &draft
	}
	if f.lastBooking != nil {
		booking := *f.lastBooking
		snap.LastBooking = &booking
	}
	return snap
}

// buildDraft applies the form rules in order, stopping at the first
// violation. Nights and amount are always recomputed from the selected
// room's price.
func (f *BookingFlow) buildDraft(in DraftInput, room models.Room) (models.BookingDraft, error) {
	fail := func(message string) (models.BookingDraft, error) {
		return models.BookingDraft{}, apperrors.New(apperrors.ErrCodeValidation, message)
	}

	if strings.TrimSpace(in.CheckIn) == "" || strings.TrimSpace(in.CheckOut) == "" ||
		strings.TrimSpace(in.GuestName) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Phone) == "" {
		return fail("Please fill in all required fields.")
	}

	checkIn, err := time.ParseInLocation(models.DateLayout, in.CheckIn, f.now().Location())
	if err != nil {
		return fail("Check-in date is invalid.")
	}
	checkOut, err := time.ParseInLocation(models.DateLayout, in.CheckOut, f.now().Location())
	if err != nil {
		return fail("Check-out date is invalid.")
	}

	if !checkOut.After(checkIn) {
		return fail("Check-out date must be after check-in date.")
	}

	now := f.now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if checkIn.Before(tomorrow) {
		return fail("Check-in date must be at least 1 day in the future.")
	}

	if !phonePattern.MatchString(in.Phone) {
		return fail("Phone number must be exactly 10 digits (e.g., 9876543210).")
	}

	purpose, err := models.ParsePurpose(in.Purpose)
	if err != nil {
		return fail("Please select a purpose for your stay.")
	}

	nights := models.NightsBetween(checkIn, checkOut)
	return models.BookingDraft{
		RoomID:         room.ID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		GuestName:      strings.TrimSpace(in.GuestName),
		Email:          strings.TrimSpace(in.Email),
		Phone:          in.Phone,
		Purpose:        purpose,
		PurposeDetails: strings.TrimSpace(in.PurposeDetails),
		Nights:         nights,
		Amount:         float64(nights) * room.PricePerNight,
	}, nil
}
