package garages

import "errors"

var (
	ErrAlreadyParked      = errors.New("vehicle is already parked in a garage")
	ErrNotParked          = errors.New("vehicle is not parked in a garage")
	ErrAlreadyTerminated  = errors.New("stay is already terminated")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrVehicleExists      = errors.New("vehicle already registered")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrClockWentBackwards = errors.New("movement timestamp is before the previous one")
)
