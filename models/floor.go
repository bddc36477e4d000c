package models

import (
	"fmt"
	"strings"
)

// FloorPayload mirrors the backend's floor aggregation: the floor name in
// _id, plus one entry per block carrying that block's facilities.
type FloorPayload struct {
	ID     string              `json:"_id"`
	Floors []FloorBlockPayload `json:"floors"`
}

type FloorBlockPayload struct {
	Block      string   `json:"block"`
	Facilities []string `json:"facilities"`
}

// Floor is a derived view over one floor's rooms. Rebuilt on every
// availability query, never mutated in place.
type Floor struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Block      string             `json:"block"`
	Facilities []string           `json:"facilities"`
	Rooms      []AvailabilityView `json:"rooms"`
}

func NewFloor(p FloorPayload) (Floor, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Floor{}, fmt.Errorf("floor payload missing _id")
	}

	blocks := make([]string, 0, len(p.Floors))
	seenBlocks := make(map[string]bool)
	var facilities []string
	seenFacilities := make(map[string]bool)
	for _, b := range p.Floors {
		if b.Block != "" && !seenBlocks[b.Block] {
			seenBlocks[b.Block] = true
			blocks = append(blocks, b.Block)
		}
		for _, f := range b.Facilities {
			if f != "" && !seenFacilities[f] {
				seenFacilities[f] = true
				facilities = append(facilities, f)
			}
		}
	}

	block := strings.Join(blocks, ", ")
	if block == "" {
		block = "-"
	}

	return Floor{
		ID:         p.ID,
		Name:       p.ID,
		Block:      block,
		Facilities: facilities,
	}, nil
}

// ClickableCount reports how many rooms on the floor can be booked for the
// requested dates.
func (f Floor) ClickableCount() int {
	n := 0
	for _, r := range f.Rooms {
		if r.IsClickable {
			n++
		}
	}
	return n
}

// VacantCount reports how many rooms are vacant right now, ignoring any
// requested date range.
func (f Floor) VacantCount() int {
	n := 0
	for _, r := range f.Rooms {
		if r.Status == RoomStatusVacant {
			n++
		}
	}
	return n
}
