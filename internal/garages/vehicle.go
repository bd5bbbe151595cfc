package garages

import (
	"fmt"
	"io"
	"strings"
)

// Vehicle owns the ordered history of its stays. The last stay is the only
// one that may be ongoing, and when it is, current points at it.
//
// A Vehicle is not safe for concurrent use; Fleet serialises access.
type Vehicle struct {
	plate   string
	history []*Stay
	current *Stay
	clock   Clock
}

func NewVehicle(plate string, opts ...Option) (*Vehicle, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("plate is required: %w", ErrInvalidArgument)
	}

	s := newSettings(opts)
	return &Vehicle{
		plate: plate,
		clock: s.clock,
	}, nil
}

func (v *Vehicle) Plate() string {
	return v.plate
}

// EnterGarage opens a new stay at g. It fails with ErrAlreadyParked while the
// vehicle is still inside a garage.
func (v *Vehicle) EnterGarage(g Garage) error {
	if v.IsParked() {
		return fmt.Errorf("%s cannot enter %s, still in %s: %w", v.plate, g, v.current.garage, ErrAlreadyParked)
	}

	stay, err := newStay(v, g, v.clock())
	if err != nil {
		return err
	}

	v.history = append(v.history, stay)
	v.current = stay
	return nil
}

// ExitGarage terminates the ongoing stay. It fails with ErrNotParked when the
// vehicle is not in a garage.
func (v *Vehicle) ExitGarage() error {
	if !v.IsParked() {
		return fmt.Errorf("%s: %w", v.plate, ErrNotParked)
	}

	if err := v.current.terminate(v.clock()); err != nil {
		return err
	}
	v.current = nil
	return nil
}

func (v *Vehicle) IsParked() bool {
	return v.current != nil
}

// CurrentGarage returns the garage the vehicle is parked in, if any.
func (v *Vehicle) CurrentGarage() (Garage, bool) {
	if v.current == nil {
		return Garage{}, false
	}
	return v.current.garage, true
}

// VisitedGarages returns every distinct garage the vehicle has entered,
// including the current one, in order of first visit.
func (v *Vehicle) VisitedGarages() []Garage {
	seen := make(map[Garage]struct{}, len(v.history))
	var visited []Garage
	for _, s := range v.history {
		if _, ok := seen[s.garage]; ok {
			continue
		}
		seen[s.garage] = struct{}{}
		visited = append(visited, s.garage)
	}
	return visited
}

func (v *Vehicle) Stays() []*Stay {
	stays := make([]*Stay, len(v.history))
	copy(stays, v.history)
	return stays
}

func (v *Vehicle) PrintStays(w io.Writer) error {
	return PrintStays(w, v.history)
}

func (v *Vehicle) String() string {
	return "Vehicle(plate=" + v.plate + ")"
}
