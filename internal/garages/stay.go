package garages

import (
	"fmt"
	"time"
)

// DateLayout renders stay dates at day granularity.
const DateLayout = "02/01/2006"

// Stay records one visit of a vehicle to a garage. The entry time is fixed at
// creation; the exit time is set once, when the vehicle leaves.
type Stay struct {
	vehicle *Vehicle
	garage  Garage
	entry   time.Time
	exit    time.Time
	exited  bool
}

func newStay(vehicle *Vehicle, garage Garage, entry time.Time) (*Stay, error) {
	if vehicle == nil {
		return nil, fmt.Errorf("stay requires a vehicle: %w", ErrInvalidArgument)
	}
	if garage.IsZero() {
		return nil, fmt.Errorf("stay requires a garage: %w", ErrInvalidArgument)
	}

	return &Stay{
		vehicle: vehicle,
		garage:  garage,
		entry:   entry,
	}, nil
}

func (s *Stay) terminate(now time.Time) error {
	if s.exited {
		return fmt.Errorf("%s at %s: %w", s.vehicle.plate, s.garage, ErrAlreadyTerminated)
	}
	s.exit = now
	s.exited = true
	return nil
}

func (s *Stay) IsOngoing() bool {
	return !s.exited
}

func (s *Stay) VisitedGarage() Garage {
	return s.garage
}

func (s *Stay) Vehicle() *Vehicle {
	return s.vehicle
}

func (s *Stay) Entry() time.Time {
	return s.entry
}

// Exit reports the exit time, or false while the stay is ongoing.
func (s *Stay) Exit() (time.Time, bool) {
	return s.exit, s.exited
}

func (s *Stay) String() string {
	if !s.exited {
		return fmt.Sprintf("entry=%s, ongoing", s.entry.Format(DateLayout))
	}
	return fmt.Sprintf("entry=%s, exit=%s", s.entry.Format(DateLayout), s.exit.Format(DateLayout))
}
