package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
)

// roomFetchLimit matches the page size the UI asks the backend for.
const roomFetchLimit = 1000

// RoomQuery identifies one availability view: a room type plus an optional
// check-in/check-out range. Dates use models.DateLayout.
type RoomQuery struct {
	Type     models.RoomType `json:"type"`
	CheckIn  string          `json:"checkIn,omitempty"`
	CheckOut string          `json:"checkOut,omitempty"`
}

// HasRange reports whether both dates were supplied. A single date is
// ignored, matching the page's filter inputs.
func (q RoomQuery) HasRange() bool {
	return q.CheckIn != "" && q.CheckOut != ""
}

// Snapshot is one successful resolution of a RoomQuery.
type Snapshot struct {
	Query          RoomQuery      `json:"query"`
	Floors         []models.Floor `json:"floors"`
	TotalAvailable int            `json:"totalAvailable"`
	TotalRooms     int            `json:"totalRooms"`
	SearchDates    *SearchDates   `json:"searchDates,omitempty"`
	FetchedAt      time.Time      `json:"fetchedAt"`
}

// typeState guards one room type's displayed snapshot. started/applied are
// fetch generations: a fetch may only apply its result if no younger fetch
// has applied first.
type typeState struct {
	started  uint64
	applied  uint64
	errGen   uint64
	snapshot *Snapshot
	lastErr  error
}

// AvailabilityResolver converts raw backend room state plus a requested date
// range into per-room display decisions, grouped by floor. It is shared by
// all sessions; the displayed state is the same for every visitor.
type AvailabilityResolver struct {
	api    *APIClient
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	states map[models.RoomType]*typeState
}

func NewAvailabilityResolver(api *APIClient, logger *zap.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{
		api:    api,
		logger: logger,
		now:    time.Now,
		states: make(map[models.RoomType]*typeState),
	}
}

// Refresh fetches floors and availability for the query and applies the
// result unless a younger fetch for the same room type already did. On
// failure the previous snapshot is retained and the error recorded.
func (r *AvailabilityResolver) Refresh(ctx context.Context, q RoomQuery) (*Snapshot, error) {
	st, gen := r.begin(q.Type)

	snap, err := r.fetch(ctx, q)
	if err != nil {
		r.recordFailure(st, gen, err)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen > st.applied {
		st.applied = gen
		st.snapshot = snap
		st.lastErr = nil
		return snap, nil
	}

	// A younger fetch already applied; this result is stale on arrival.
	r.logger.Debug("discarding superseded availability fetch",
		zap.String("type", string(q.Type)),
		zap.Uint64("generation", gen),
		zap.Uint64("applied", st.applied))
	return st.snapshot, nil
}

// recordFailure stores a refresh error unless a younger fetch has already
// applied a snapshot or reported its own failure; a slow superseded fetch
// must not overwrite the fresher verdict.
func (r *AvailabilityResolver) recordFailure(st *typeState, gen uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen > st.applied && gen > st.errGen {
		st.errGen = gen
		st.lastErr = err
	}
}

func (r *AvailabilityResolver) begin(typ models.RoomType) (*typeState, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[typ]
	if !ok {
		st = &typeState{}
		r.states[typ] = st
	}
	st.started++
	return st, st.started
}

// Current returns the last applied snapshot and the last refresh error, if
// the most recent refresh failed.
func (r *AvailabilityResolver) Current(typ models.RoomType) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[typ]
	if !ok {
		return nil, nil
	}
	return st.snapshot, st.lastErr
}

func (r *AvailabilityResolver) fetch(ctx context.Context, q RoomQuery) (*Snapshot, error) {
	if !r.api.CheckHealth(ctx) {
		return nil, apperrors.New(apperrors.ErrCodeNetwork,
			"Backend server is not accessible. Please check if the server is running.")
	}

	floors, err := r.api.FloorData(ctx)
	if err != nil {
		return nil, err
	}

	query := AvailabilityQuery{Type: q.Type, Limit: roomFetchLimit}
	if q.HasRange() {
		query.CheckIn = q.CheckIn
		query.CheckOut = q.CheckOut
	}
	result, err := r.api.RoomAvailability(ctx, query)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Query:          q,
		Floors:         buildFloors(floors, result.Rooms, q.HasRange()),
		TotalAvailable: result.TotalAvailable,
		TotalRooms:     result.TotalRooms,
		SearchDates:    result.SearchDates,
		FetchedAt:      r.now(),
	}, nil
}

// DeriveView computes one room's display decision. The verdict for a ranged
// query is strictly the backend's isAvailable flag; the client never infers
// overlap on its own.
func DeriveView(room models.Room, ranged bool) models.AvailabilityView {
	view := models.AvailabilityView{
		Room:          room,
		DisplayStatus: room.Status,
		Message:       room.AvailabilityMessage,
	}

	switch {
	case !ranged:
		view.IsClickable = room.Status == models.RoomStatusVacant
	case room.IsAvailable:
		// A currently booked room may still be free for the requested
		// window once its existing booking closes before check-in.
		view.DisplayStatus = models.RoomStatusVacant
		view.IsClickable = true
	default:
		switch room.Status {
		case models.RoomStatusBooked, models.RoomStatusHeld, models.RoomStatusMaintenance:
			view.DisplayStatus = room.Status
		default:
			// Vacant-right-now but taken for the requested window: show it
			// in the generic unavailable bucket.
			view.DisplayStatus = models.RoomStatusBooked
		}
	}

	// Only a bookable room gets the default message; an unavailable room
	// without a backend message stays silent.
	if view.IsClickable && view.Message == "" {
		view.Message = "Available"
	}
	return view
}

// buildFloors partitions rooms by floor identifier, orders each floor's
// rooms by room number and drops floors left with no rooms.
func buildFloors(floors []models.Floor, rooms []models.Room, ranged bool) []models.Floor {
	grouped := make(map[string][]models.AvailabilityView)
	for _, room := range rooms {
		grouped[room.Floor] = append(grouped[room.Floor], DeriveView(room, ranged))
	}

	out := make([]models.Floor, 0, len(floors))
	for _, floor := range floors {
		views := grouped[floor.ID]
		if len(views) == 0 {
			continue
		}
		sort.Slice(views, func(i, j int) bool {
			return views[i].RoomNumber < views[j].RoomNumber
		})
		floor.Rooms = views
		out = append(out, floor)
	}
	return out
}
