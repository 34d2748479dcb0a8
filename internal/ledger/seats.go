package ledger

import (
	"strconv"

	"github.com/gurukul/gdl/internal/model"
)

// DefaultSeatCapacity is the number of seats in the reading hall.
const DefaultSeatCapacity = 50

// SeatOccupancy classifies how booked a seat is across the day's slots.
type SeatOccupancy string

// Occupancy levels.
const (
	SeatFree    SeatOccupancy = "Free"
	SeatPartial SeatOccupancy = "Partial"
	SeatFull    SeatOccupancy = "Full"
)

// SeatInfo describes one seat and its active occupants.
type SeatInfo struct {
	Seat      int
	Status    SeatOccupancy
	Occupants []model.Student
}

// SeatStatus reports the occupancy of a single seat. A seat is Full when
// its morning, evening, and night slots are all covered by active students;
// any coverage short of that is Partial.
func SeatStatus(students []model.Student, seatNo int) SeatInfo {
	want := strconv.Itoa(seatNo)
	info := SeatInfo{Seat: seatNo, Status: SeatFree}

	slots := make(map[model.Slot]bool, 3)
	for _, s := range students {
		if !s.Active() || string(s.SeatNo) != want {
			continue
		}
		info.Occupants = append(info.Occupants, s)
		for _, slot := range s.Shift.Slots() {
			slots[slot] = true
		}
	}

	switch {
	case len(info.Occupants) == 0:
		info.Status = SeatFree
	case len(slots) == 3:
		info.Status = SeatFull
	default:
		info.Status = SeatPartial
	}
	return info
}

// SeatMap reports occupancy for seats 1..capacity.
func SeatMap(students []model.Student, capacity int) []SeatInfo {
	seats := make([]SeatInfo, 0, capacity)
	for i := 1; i <= capacity; i++ {
		seats = append(seats, SeatStatus(students, i))
	}
	return seats
}
