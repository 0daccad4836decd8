// Package availability holds the pure booking-conflict decision logic.
// Nothing here performs I/O; callers fetch the booking set and hand it in.
package availability

import (
	"time"

	"naumstay/pkg/model"
)

// Range is a half-open calendar interval [CheckIn, CheckOut). Checkout day D
// and a new check-in on day D do not conflict: same-day turnover is allowed.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewRange normalizes both endpoints to UTC midnight so that date values
// parsed from different sources compare on the calendar day alone.
func NewRange(checkIn, checkOut time.Time) Range {
	return Range{CheckIn: dateOnly(checkIn), CheckOut: dateOnly(checkOut)}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the range spans at least one night.
func (r Range) Valid() bool {
	return r.CheckOut.After(r.CheckIn)
}

// Overlaps implements the half-open interval predicate: [a1,a2) and [b1,b2)
// overlap iff a1 < b2 && b1 < a2.
func (r Range) Overlaps(other Range) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Nights is the number of calendar nights between check-in and check-out.
func (r Range) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Checker decides whether a candidate range is free against a room's existing
// bookings. It is an interface so the linear scan can be swapped for an
// interval tree without touching callers; at a handful of rooms and low
// booking volume the scan is the right default.
type Checker interface {
	RangeFree(existing []Range, candidate Range) bool
}

// LinearChecker is the O(n) Checker.
type LinearChecker struct{}

func (LinearChecker) RangeFree(existing []Range, candidate Range) bool {
	for _, r := range existing {
		if r.Overlaps(candidate) {
			return false
		}
	}
	return true
}

// FilterRooms returns the rooms whose occupancy limits accept the party and
// whose booking set leaves the candidate range free. Rooms with no occupancy
// data satisfy any request; that permissive default is deliberate.
func FilterRooms(
	checker Checker,
	rooms []*model.Room,
	bookingsByRoom map[string][]Range,
	candidate Range,
	adults, children int,
) []*model.Room {
	var available []*model.Room
	for _, room := range rooms {
		if !room.Fits(adults, children) {
			continue
		}
		if !checker.RangeFree(bookingsByRoom[room.ID], candidate) {
			continue
		}
		available = append(available, room)
	}
	return available
}
