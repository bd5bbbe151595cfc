package garages

import (
	"fmt"
	"strings"
)

// Garage is identified by its name. Two values with the same name are the
// same garage, which makes Garage usable directly as a map key.
type Garage struct {
	Name string
}

func NewGarage(name string) (Garage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Garage{}, fmt.Errorf("garage name is required: %w", ErrInvalidArgument)
	}
	return Garage{Name: name}, nil
}

func (g Garage) IsZero() bool {
	return g.Name == ""
}

func (g Garage) String() string {
	return "Garage(name=" + g.Name + ")"
}
