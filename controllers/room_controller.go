package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/models"
	"guesthouse-frontend/services"
	"guesthouse-frontend/utils"
)

type RoomController struct {
	Resolver *services.AvailabilityResolver
	Logger   *zap.Logger
}

func NewRoomController(resolver *services.AvailabilityResolver, logger *zap.Logger) *RoomController {
	return &RoomController{Resolver: resolver, Logger: logger}
}

// floorView adds the per-floor summary counts the page header shows.
type floorView struct {
	models.Floor
	AvailableForDates int `json:"availableForDates"`
	CurrentlyVacant   int `json:"currentlyVacant"`
}

func snapshotData(snap *services.Snapshot) gin.H {
	floors := make([]floorView, 0, len(snap.Floors))
	for _, f := range snap.Floors {
		floors = append(floors, floorView{
			Floor:             f,
			AvailableForDates: f.ClickableCount(),
			CurrentlyVacant:   f.VacantCount(),
		})
	}
	return gin.H{
		"floors":         floors,
		"totalAvailable": snap.TotalAvailable,
		"totalRooms":     snap.TotalRooms,
		"searchDates":    snap.SearchDates,
		"query":          snap.Query,
		"fetchedAt":      snap.FetchedAt,
	}
}

// GetRooms resolves the availability view for a room type and optional date
// range. When a refresh fails but an earlier snapshot exists, the stale
// snapshot is returned together with the error message instead of a blank
// screen.
func (rc *RoomController) GetRooms(c *gin.Context) {
	query, err := parseRoomQuery(c)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	snap, err := rc.Resolver.Refresh(c.Request.Context(), query)
	if err != nil {
		previous, _ := rc.Resolver.Current(query.Type)
		if previous == nil {
			utils.JSONAppError(c, err)
			return
		}
		rc.Logger.Warn("availability refresh failed, serving previous snapshot",
			zap.String("type", string(query.Type)))
		data := snapshotData(previous)
		data["error"] = apperrors.MessageOf(err)
		utils.JSONSuccess(c, http.StatusOK, data)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, snapshotData(snap))
}

func parseRoomQuery(c *gin.Context) (services.RoomQuery, error) {
	typeParam := c.DefaultQuery("type", string(models.RoomTypeSingle))
	roomType, err := models.ParseRoomType(typeParam)
	if err != nil {
		return services.RoomQuery{}, apperrors.New(apperrors.ErrCodeValidation, "Room type must be single or double.")
	}

	query := services.RoomQuery{Type: roomType}

	// Date filters only apply when both ends are present, the same as the
	// page's filter inputs.
	checkIn := c.Query("checkIn")
	checkOut := c.Query("checkOut")
	if checkIn != "" && checkOut != "" {
		if _, err := time.Parse(models.DateLayout, checkIn); err != nil {
			return services.RoomQuery{}, apperrors.New(apperrors.ErrCodeValidation, "Check-in date is invalid.")
		}
		if _, err := time.Parse(models.DateLayout, checkOut); err != nil {
			return services.RoomQuery{}, apperrors.New(apperrors.ErrCodeValidation, "Check-out date is invalid.")
		}
		query.CheckIn = checkIn
		query.CheckOut = checkOut
	}

	return query, nil
}
