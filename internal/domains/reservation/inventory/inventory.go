// Package inventory answers which physical rooms of a type are free for a stay.
// Occupancy is derived from active reservation intervals only; a room's status
// decides eligibility for new bookings, never whether it is booked.
package inventory

import (
	"slices"
	"strconv"
	"time"

	"hotel/internal/domains/reservation/model"
	roomModel "hotel/internal/domains/room/model"
)

// Overlaps uses half-open semantics, so a checkout on the same day as another
// check-in does not collide.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Eligible reports whether a room may take a new booking for [checkIn, checkOut).
// Available and cleaning rooms always may. An occupied room is only held back
// for stays covering today, since the tag describes the present. A room in
// maintenance never is.
func Eligible(room roomModel.Room, checkIn, checkOut, today time.Time) bool {
	if room.Status.IsEligible() {
		return true
	}

	if room.Status == roomModel.StatusOccupied {
		return today.Before(checkIn) || !today.Before(checkOut)
	}

	return false
}

// FreeRooms returns the ids of eligible rooms with no booked interval overlapping
// [checkIn, checkOut), lowest id first.
func FreeRooms(rooms []roomModel.Room, booked []model.Interval, checkIn, checkOut, today time.Time) []string {
	taken := make(map[string]struct{}, len(booked))

	for _, interval := range booked {
		if Overlaps(interval.CheckIn, interval.CheckOut, checkIn, checkOut) {
			taken[interval.RoomID] = struct{}{}
		}
	}

	free := make([]string, 0, len(rooms))

	for _, room := range rooms {
		if !Eligible(room, checkIn, checkOut, today) {
			continue
		}

		if _, ok := taken[room.ID]; ok {
			continue
		}

		free = append(free, room.ID)
	}

	SortRoomIDs(free)

	return free
}

// PickRoom returns the lowest free room id.
func PickRoom(rooms []roomModel.Room, booked []model.Interval, checkIn, checkOut, today time.Time) (string, bool) {
	free := FreeRooms(rooms, booked, checkIn, checkOut, today)
	if len(free) == 0 {
		return "", false
	}

	return free[0], true
}

func SortRoomIDs(ids []string) {
	slices.SortFunc(ids, CompareRoomIDs)
}

// CompareRoomIDs orders numerically when both ids are numbers ("99" before "501"),
// lexically otherwise.
func CompareRoomIDs(a, b string) int {
	numA, errA := strconv.Atoi(a)
	numB, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		if numA != numB {
			if numA < numB {
				return -1
			}

			return 1
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
