package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"garage-tracker/internal/garages"
	"garage-tracker/internal/logging"
)

type Handler struct {
	fleet       *garages.InstrumentedFleet
	serviceName string
}

func NewHandler(fleet *garages.InstrumentedFleet, serviceName string) *Handler {
	return &Handler{
		fleet:       fleet,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vehicle, err := h.fleet.Register(ctx, req.Plate)
	if err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	WriteCreated(ctx, w, "Vehicle registered successfully", map[string]any{
		"plate": vehicle.Plate(),
	})
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	WriteSuccess(ctx, w, "Vehicles retrieved successfully", h.fleet.Snapshots(ctx))
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.fleet.Snapshot(ctx, chi.URLParam(r, "plate"))
	if err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", snap)
}

func (h *Handler) EnterGarage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")

	var req EnterGarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := garages.NewGarage(req.Garage)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Garage is required")
		return
	}

	if err := h.fleet.Enter(ctx, plate, g); err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle entered garage", MovementResponse{
		Plate:  plate,
		Garage: g.Name,
		Parked: true,
	})
}

func (h *Handler) ExitGarage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")

	g, err := h.fleet.Exit(ctx, plate)
	if err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle left garage", MovementResponse{
		Plate:  plate,
		Garage: g.Name,
		Parked: false,
	})
}

func (h *Handler) VisitedGarages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.fleet.Snapshot(ctx, chi.URLParam(r, "plate"))
	if err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Visited garages retrieved successfully", VisitedGaragesResponse{
		Plate:   snap.Plate,
		Garages: snap.VisitedGarages,
	})
}

// Report renders the grouped stay history as plain text.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var buf bytes.Buffer
	if err := h.fleet.Report(ctx, chi.URLParam(r, "plate"), &buf); err != nil {
		h.writeFleetError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) writeFleetError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, garages.ErrVehicleNotFound):
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
	case errors.Is(err, garages.ErrVehicleExists):
		WriteError(ctx, w, http.StatusConflict, "Vehicle already registered")
	case errors.Is(err, garages.ErrAlreadyParked):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, garages.ErrNotParked):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, garages.ErrInvalidArgument):
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
	default:
		logging.Error(ctx, "fleet operation failed", "error", err)
		WriteError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}
