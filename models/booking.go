package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Purpose string

const (
	PurposeAcademic Purpose = "academic"
	PurposeBusiness Purpose = "business"
	PurposePersonal Purpose = "personal"
	PurposeOther    Purpose = "other"
)

func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(strings.TrimSpace(s)) {
	case PurposeAcademic, PurposeBusiness, PurposePersonal, PurposeOther:
		return Purpose(strings.TrimSpace(s)), nil
	}
	return "", fmt.Errorf("invalid purpose %q", s)
}

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

// BookingDraft is a validated booking request. Immutable once built; Nights
// and Amount are derived at construction and never trusted from callers.
type BookingDraft struct {
	RoomID         string    `json:"roomId"`
	CheckIn        time.Time `json:"checkIn"`
	CheckOut       time.Time `json:"checkOut"`
	GuestName      string    `json:"guestName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Purpose        Purpose   `json:"purpose"`
	PurposeDetails string    `json:"purposeDetails,omitempty"`
	Nights         int       `json:"nights"`
	Amount         float64   `json:"amount"`
}

// Nights between two dates, counting partial days as whole nights.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Booking is the backend's record of a confirmed booking.
type Booking struct {
	ID            string  `json:"_id"`
	CheckIn       string  `json:"checkIn"`
	CheckOut      string  `json:"checkOut"`
	GuestName     string  `json:"guestName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Purpose       string  `json:"purpose"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	CreatedAt     string  `json:"createdAt"`
}
