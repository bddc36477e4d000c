package models

import (
	"fmt"
	"strings"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
)

func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(strings.TrimSpace(s)) {
	case RoomTypeSingle:
		return RoomTypeSingle, nil
	case RoomTypeDouble:
		return RoomTypeDouble, nil
	}
	return "", fmt.Errorf("invalid room type %q", s)
}

type RoomStatus string

const (
	RoomStatusVacant      RoomStatus = "vacant"
	RoomStatusBooked      RoomStatus = "booked"
	RoomStatusHeld        RoomStatus = "held"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

func parseRoomStatus(s string) (RoomStatus, error) {
	switch RoomStatus(s) {
	case RoomStatusVacant, RoomStatusBooked, RoomStatusHeld, RoomStatusMaintenance:
		return RoomStatus(s), nil
	}
	return "", fmt.Errorf("invalid room status %q", s)
}

// RoomPayload is the raw backend shape for a room. Rooms are only turned into
// the Room type through NewRoom, which rejects malformed payloads up front so
// everything downstream can assume well-formed data.
type RoomPayload struct {
	ID                  string   `json:"_id"`
	RoomNumber          string   `json:"roomNumber"`
	Type                string   `json:"type"`
	Status              string   `json:"status"`
	Floor               string   `json:"floor"`
	Block               string   `json:"block"`
	PricePerNight       float64  `json:"pricePerNight"`
	Facilities          []string `json:"facilities,omitempty"`
	IsAvailable         *bool    `json:"isAvailable,omitempty"`
	AvailabilityMessage string   `json:"availabilityMessage,omitempty"`
	CurrentStatus       string   `json:"currentStatus,omitempty"`
}

// Room is the client's read-only copy of a backend room. IsAvailable is the
// backend's range-availability verdict and is only meaningful when the query
// that produced the room carried a date range.
type Room struct {
	ID                  string     `json:"id"`
	RoomNumber          string     `json:"roomNumber"`
	Type                RoomType   `json:"type"`
	Status              RoomStatus `json:"status"`
	Floor               string     `json:"floor"`
	Block               string     `json:"block"`
	PricePerNight       float64    `json:"pricePerNight"`
	Facilities          []string   `json:"facilities,omitempty"`
	IsAvailable         bool       `json:"isAvailable"`
	AvailabilityMessage string     `json:"availabilityMessage,omitempty"`
}

func NewRoom(p RoomPayload) (Room, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Room{}, fmt.Errorf("room payload missing _id")
	}
	if strings.TrimSpace(p.RoomNumber) == "" {
		return Room{}, fmt.Errorf("room %s missing roomNumber", p.ID)
	}
	roomType, err := ParseRoomType(p.Type)
	if err != nil {
		return Room{}, fmt.Errorf("room %s: %w", p.RoomNumber, err)
	}
	status, err := parseRoomStatus(p.Status)
	if err != nil {
		return Room{}, fmt.Errorf("room %s: %w", p.RoomNumber, err)
	}
	if strings.TrimSpace(p.Floor) == "" {
		return Room{}, fmt.Errorf("room %s missing floor", p.RoomNumber)
	}
	if p.PricePerNight <= 0 {
		return Room{}, fmt.Errorf("room %s has non-positive price %v", p.RoomNumber, p.PricePerNight)
	}

	room := Room{
		ID:                  p.ID,
		RoomNumber:          p.RoomNumber,
		Type:                roomType,
		Status:              status,
		Floor:               p.Floor,
		Block:               p.Block,
		PricePerNight:       p.PricePerNight,
		Facilities:          p.Facilities,
		AvailabilityMessage: p.AvailabilityMessage,
	}
	if p.IsAvailable != nil {
		room.IsAvailable = *p.IsAvailable
	}
	return room, nil
}

// AvailabilityView is the client-side display decision for one room.
// Invariant: IsClickable implies DisplayStatus == vacant.
type AvailabilityView struct {
	Room
	DisplayStatus RoomStatus `json:"displayStatus"`
	IsClickable   bool       `json:"isClickable"`
	Message       string     `json:"message"`
}
