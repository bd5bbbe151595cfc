package garages

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Fleet keeps the vehicles known to the tracker, keyed by plate. It is the
// synchronisation point for concurrent callers; the vehicles themselves are
// never handed out while the lock is released except through Lookup.
type Fleet struct {
	mu       sync.RWMutex
	vehicles map[string]*Vehicle
	plates   []string
	opts     []Option
}

type StaySnapshot struct {
	Entry   time.Time  `json:"entry"`
	Exit    *time.Time `json:"exit,omitempty"`
	Ongoing bool       `json:"ongoing"`
	Display string     `json:"display"`
}

type GarageSnapshot struct {
	Garage string         `json:"garage"`
	Stays  []StaySnapshot `json:"stays"`
}

// VehicleSnapshot is a point-in-time copy of a vehicle's state.
type VehicleSnapshot struct {
	Plate          string           `json:"plate"`
	Parked         bool             `json:"parked"`
	CurrentGarage  string           `json:"current_garage,omitempty"`
	VisitedGarages []string         `json:"visited_garages"`
	History        []GarageSnapshot `json:"history"`
}

func NewFleet(opts ...Option) *Fleet {
	return &Fleet{
		vehicles: make(map[string]*Vehicle),
		opts:     opts,
	}
}

func (f *Fleet) Register(plate string) (*Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	plate = strings.TrimSpace(plate)
	if _, ok := f.vehicles[plate]; ok {
		return nil, fmt.Errorf("%s: %w", plate, ErrVehicleExists)
	}
	return f.register(plate)
}

func (f *Fleet) register(plate string) (*Vehicle, error) {
	vehicle, err := NewVehicle(plate, f.opts...)
	if err != nil {
		return nil, err
	}
	f.vehicles[vehicle.plate] = vehicle
	f.plates = append(f.plates, vehicle.plate)
	return vehicle, nil
}

func (f *Fleet) Lookup(plate string) (*Vehicle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.lookup(plate)
}

func (f *Fleet) lookup(plate string) (*Vehicle, error) {
	plate = strings.TrimSpace(plate)
	vehicle, ok := f.vehicles[plate]
	if !ok {
		return nil, fmt.Errorf("%s: %w", plate, ErrVehicleNotFound)
	}
	return vehicle, nil
}

// Enter parks the vehicle in g, registering the plate on first sight. It
// reports whether the vehicle was newly registered.
func (f *Fleet) Enter(plate string, g Garage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if g.IsZero() {
		return false, fmt.Errorf("garage is required: %w", ErrInvalidArgument)
	}

	created := false
	vehicle, err := f.lookup(plate)
	if err != nil {
		vehicle, err = f.register(strings.TrimSpace(plate))
		if err != nil {
			return false, err
		}
		created = true
	}

	return created, vehicle.EnterGarage(g)
}

// Exit takes the vehicle out of its garage and returns the garage it left.
func (f *Fleet) Exit(plate string) (Garage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	vehicle, err := f.lookup(plate)
	if err != nil {
		return Garage{}, err
	}

	current, _ := vehicle.CurrentGarage()
	if err := vehicle.ExitGarage(); err != nil {
		return Garage{}, err
	}
	return current, nil
}

func (f *Fleet) Report(plate string, w io.Writer) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	vehicle, err := f.lookup(plate)
	if err != nil {
		return err
	}
	return vehicle.PrintStays(w)
}

func (f *Fleet) Snapshot(plate string) (VehicleSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	vehicle, err := f.lookup(plate)
	if err != nil {
		return VehicleSnapshot{}, err
	}
	return snapshot(vehicle), nil
}

// Snapshots returns every vehicle in registration order.
func (f *Fleet) Snapshots() []VehicleSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snapshots := make([]VehicleSnapshot, 0, len(f.plates))
	for _, plate := range f.plates {
		snapshots = append(snapshots, snapshot(f.vehicles[plate]))
	}
	return snapshots
}

func (f *Fleet) Plates() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	plates := make([]string, len(f.plates))
	copy(plates, f.plates)
	return plates
}

func (f *Fleet) ParkedCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for _, vehicle := range f.vehicles {
		if vehicle.IsParked() {
			count++
		}
	}
	return count
}

func snapshot(vehicle *Vehicle) VehicleSnapshot {
	snap := VehicleSnapshot{
		Plate:          vehicle.plate,
		Parked:         vehicle.IsParked(),
		VisitedGarages: []string{},
		History:        []GarageSnapshot{},
	}
	if g, ok := vehicle.CurrentGarage(); ok {
		snap.CurrentGarage = g.Name
	}
	for _, g := range vehicle.VisitedGarages() {
		snap.VisitedGarages = append(snap.VisitedGarages, g.Name)
	}

	for _, group := range GroupByGarage(vehicle.history) {
		gs := GarageSnapshot{Garage: group.Garage.Name}
		for _, s := range group.Stays {
			ss := StaySnapshot{
				Entry:   s.entry,
				Ongoing: s.IsOngoing(),
				Display: s.String(),
			}
			if exit, ok := s.Exit(); ok {
				ss.Exit = &exit
			}
			gs.Stays = append(gs.Stays, ss)
		}
		snap.History = append(snap.History, gs)
	}
	return snap
}
