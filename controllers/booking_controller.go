package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/middleware"
	"guesthouse-frontend/models"
	"guesthouse-frontend/services"
	"guesthouse-frontend/utils"
)

type selectRoomPayload struct {
	RoomID string `json:"roomId" binding:"required"`
	Type   string `json:"type"`
}

type BookingController struct {
	Hub    *services.Hub
	Logger *zap.Logger
}

func NewBookingController(hub *services.Hub, logger *zap.Logger) *BookingController {
	return &BookingController{Hub: hub, Logger: logger}
}

func (bc *BookingController) userSession(c *gin.Context) *services.UserSession {
	return bc.Hub.Get(c.Request.Context(), middleware.SessionID(c))
}

// SelectRoom starts the booking flow for one room out of the currently
// displayed snapshot. Unclickable rooms are rejected with their
// availability message and the flow state stays put.
func (bc *BookingController) SelectRoom(c *gin.Context) {
	var payload selectRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	typeParam := payload.Type
	if typeParam == "" {
		typeParam = string(models.RoomTypeSingle)
	}
	roomType, err := models.ParseRoomType(typeParam)
	if err != nil {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeValidation, "Room type must be single or double."))
		return
	}

	snap, _ := bc.Hub.Resolver().Current(roomType)
	if snap == nil {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeValidation, "Room availability has not been loaded yet."))
		return
	}

	view, ok := findRoom(snap, payload.RoomID)
	if !ok {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeValidation, "Room not found."))
		return
	}

	us := bc.userSession(c)
	if err := us.Flow.SelectRoom(view, snap.Query); err != nil {
		utils.JSONAppError(c, err)
		return
	}

	user := us.Session.CurrentUser()
	prefillEmail := ""
	if user != nil {
		prefillEmail = user.Email
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"flow":         us.Flow.Snapshot(),
		"prefillEmail": prefillEmail,
	})
}

func findRoom(snap *services.Snapshot, roomID string) (models.AvailabilityView, bool) {
	for _, floor := range snap.Floors {
		for _, view := range floor.Rooms {
			if view.ID == roomID {
				return view, true
			}
		}
	}
	return models.AvailabilityView{}, false
}

// SubmitBooking validates the form and submits it, or parks it behind the
// authentication gate. The gated case is a success from the browser's point
// of view: the draft is saved and the login surface should open.
func (bc *BookingController) SubmitBooking(c *gin.Context) {
	var input services.DraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	us := bc.userSession(c)
	outcome, err := us.Flow.Submit(c.Request.Context(), input)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	if outcome.AuthRequired {
		utils.JSONSuccessMessage(c, http.StatusOK,
			"Please log in to complete your booking. Your details have been saved.",
			gin.H{"authRequired": true, "flow": us.Flow.Snapshot()})
		return
	}

	utils.JSONSuccessMessage(c, http.StatusOK,
		"Booking confirmed. Pay at reception to complete payment.",
		gin.H{"booking": outcome.Booking, "flow": us.Flow.Snapshot()})
}

// CancelFlow discards the pending draft and selection.
func (bc *BookingController) CancelFlow(c *gin.Context) {
	us := bc.userSession(c)
	if err := us.Flow.Cancel(); err != nil {
		utils.JSONAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"flow": us.Flow.Snapshot()})
}

// FlowState lets the browser re-sync its modals after a reload.
func (bc *BookingController) FlowState(c *gin.Context) {
	us := bc.userSession(c)
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"flow":            us.Flow.Snapshot(),
		"isAuthenticated": us.Session.IsAuthenticated(),
	})
}

// MyBookings lists the authenticated visitor's bookings.
func (bc *BookingController) MyBookings(c *gin.Context) {
	us := bc.userSession(c)
	if !us.Session.IsAuthenticated() {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeAuthRequired, "Authentication failed. Please log in again."))
		return
	}

	query := services.BookingsQuery{Status: c.Query("status")}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}

	result, err := us.API.Bookings(c.Request.Context(), query)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAuthRequired) {
			us.Session.Invalidate()
		}
		utils.JSONAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// MyBooking fetches a single booking by ID.
func (bc *BookingController) MyBooking(c *gin.Context) {
	us := bc.userSession(c)
	if !us.Session.IsAuthenticated() {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeAuthRequired, "Authentication failed. Please log in again."))
		return
	}

	booking, err := us.API.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAuthRequired) {
			us.Session.Invalidate()
		}
		utils.JSONAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking})
}
