package cart

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrLineNotFound        = errors.New("item not found in cart")
	ErrNoPickupSlots       = errors.New("no pickup slots available today")
	ErrInvalidPickupOption = errors.New("invalid pickup option")
	ErrInvalidSchedule     = errors.New("invalid pickup schedule")
	ErrConcurrentUpdate    = errors.New("cart was modified concurrently, try again")
)

// PickupOption selects immediate or scheduled pickup
type PickupOption string

const (
	PickupNow   PickupOption = "now"
	PickupLater PickupOption = "later"
)

// PickupSlot is one scheduled pickup time of the day
type PickupSlot struct {
	Key    string `json:"key"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label"`
}

// SlotAvailability is a slot together with whether it has already passed
type SlotAvailability struct {
	PickupSlot
	IsPast bool `json:"is_past"`
}

// PickupChoice is the resolved pickup for a checkout
type PickupChoice struct {
	Option PickupOption `json:"option"`
	Slot   *PickupSlot  `json:"slot,omitempty"`
	At     time.Time    `json:"at"`
}

// PickupSchedule generates the daily pickup slots in a fixed time zone
type PickupSchedule struct {
	location *time.Location
	slots    []PickupSlot
}

// NewPickupSchedule builds slots from open to close inclusive, every interval.
// open and close are offsets from midnight.
func NewPickupSchedule(location *time.Location, open, close, interval time.Duration) (*PickupSchedule, error) {
	if location == nil {
		location = time.Local
	}
	if interval <= 0 || open < 0 || close < open || close >= 24*time.Hour {
		return nil, fmt.Errorf("%w: open=%s close=%s interval=%s", ErrInvalidSchedule, open, close, interval)
	}

	var slots []PickupSlot
	for offset := open; offset <= close; offset += interval {
		hour := int(offset / time.Hour)
		minute := int((offset % time.Hour) / time.Minute)
		slots = append(slots, PickupSlot{
			Key:    fmt.Sprintf("%d-%d", hour, minute),
			Hour:   hour,
			Minute: minute,
			Label:  formatTimeLabel(hour, minute),
		})
	}

	return &PickupSchedule{location: location, slots: slots}, nil
}

// Location returns the schedule's time zone
func (s *PickupSchedule) Location() *time.Location {
	return s.location
}

// Slots lists every slot of the day, marking the ones at or before now
func (s *PickupSchedule) Slots(now time.Time) []SlotAvailability {
	local := now.In(s.location)
	result := make([]SlotAvailability, 0, len(s.slots))
	for _, slot := range s.slots {
		result = append(result, SlotAvailability{
			PickupSlot: slot,
			IsPast:     !s.slotTime(local, slot).After(local),
		})
	}
	return result
}

// FirstAvailable returns the earliest slot still ahead of now
func (s *PickupSchedule) FirstAvailable(now time.Time) (PickupSlot, bool) {
	local := now.In(s.location)
	for _, slot := range s.slots {
		if s.slotTime(local, slot).After(local) {
			return slot, true
		}
	}
	return PickupSlot{}, false
}

// Resolve turns a pickup request into a concrete pickup time.
// A later pickup keeps the requested slot while it is still ahead, otherwise falls
// back to the first available slot of the day.
func (s *PickupSchedule) Resolve(option PickupOption, slotKey string, now time.Time) (PickupChoice, error) {
	local := now.In(s.location)

	switch option {
	case "", PickupNow:
		return PickupChoice{Option: PickupNow, At: local}, nil
	case PickupLater:
	default:
		return PickupChoice{}, fmt.Errorf("%w: %q", ErrInvalidPickupOption, option)
	}

	for _, slot := range s.slots {
		if slot.Key != slotKey {
			continue
		}
		if at := s.slotTime(local, slot); at.After(local) {
			slot := slot
			return PickupChoice{Option: PickupLater, Slot: &slot, At: at}, nil
		}
		break
	}

	slot, ok := s.FirstAvailable(local)
	if !ok {
		return PickupChoice{}, ErrNoPickupSlots
	}
	return PickupChoice{Option: PickupLater, Slot: &slot, At: s.slotTime(local, slot)}, nil
}

func (s *PickupSchedule) slotTime(day time.Time, slot PickupSlot) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, slot.Minute, 0, 0, s.location)
}

func formatTimeLabel(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	adjusted := hour % 12
	if adjusted == 0 {
		adjusted = 12
	}
	return fmt.Sprintf("%d:%02d %s", adjusted, minute, period)
}
