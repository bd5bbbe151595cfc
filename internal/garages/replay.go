package garages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ActionEnter = "enter"
	ActionExit  = "exit"
)

// Movement is one line of a movement log: a vehicle entering or leaving a
// garage, optionally at a given time.
type Movement struct {
	Plate  string    `yaml:"plate"`
	Action string    `yaml:"action"`
	Garage string    `yaml:"garage,omitempty"`
	At     time.Time `yaml:"at,omitempty"`
}

type movementLog struct {
	Movements []Movement `yaml:"movements"`
}

func LoadMovements(r io.Reader) ([]Movement, error) {
	var doc movementLog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode movements: %w", err)
	}

	for i, m := range doc.Movements {
		switch m.Action {
		case ActionEnter:
			if m.Garage == "" {
				return nil, fmt.Errorf("movement %d: enter without garage: %w", i, ErrInvalidArgument)
			}
		case ActionExit:
		default:
			return nil, fmt.Errorf("movement %d: unknown action %q: %w", i, m.Action, ErrInvalidArgument)
		}
	}
	return doc.Movements, nil
}

func LoadMovementsFile(path string) ([]Movement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadMovements(f)
}

// Replayer applies movement logs to its own fleet. Stays opened or closed by
// a movement carry the movement's timestamp; movements without one use the
// wall clock.
type Replayer struct {
	fleet *InstrumentedFleet
	at    time.Time
	last  time.Time
}

func NewReplayer(telemetry *TelemetryProvider) (*Replayer, error) {
	r := &Replayer{}
	fleet, err := NewInstrumentedFleet(telemetry, WithClock(r.now))
	if err != nil {
		return nil, err
	}
	r.fleet = fleet
	return r, nil
}

func (r *Replayer) Fleet() *InstrumentedFleet {
	return r.fleet
}

func (r *Replayer) now() time.Time {
	if r.at.IsZero() {
		return time.Now()
	}
	return r.at
}

// Apply replays movements in order and stops at the first one that fails.
func (r *Replayer) Apply(ctx context.Context, movements []Movement) error {
	defer func() { r.at = time.Time{} }()

	for i, m := range movements {
		if err := ctx.Err(); err != nil {
			return err
		}

		at := m.At
		if at.IsZero() {
			at = time.Now()
		}
		if at.Before(r.last) {
			return fmt.Errorf("movement %d (%s %s at %s): %w", i, m.Plate, m.Action, at.Format(time.RFC3339), ErrClockWentBackwards)
		}
		r.at = at

		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("movement %d (%s %s): %w", i, m.Plate, m.Action, err)
		}
		r.last = at
	}
	return nil
}

func (r *Replayer) apply(ctx context.Context, m Movement) error {
	switch m.Action {
	case ActionEnter:
		g, err := NewGarage(m.Garage)
		if err != nil {
			return err
		}
		return r.fleet.Enter(ctx, m.Plate, g)
	case ActionExit:
		_, err := r.fleet.Exit(ctx, m.Plate)
		return err
	default:
		return fmt.Errorf("unknown action %q: %w", m.Action, ErrInvalidArgument)
	}
}
