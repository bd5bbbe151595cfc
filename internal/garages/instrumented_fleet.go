package garages

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"garage-tracker/internal/logging"
)

type InstrumentedFleet struct {
	*Fleet
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	registrations     metric.Int64Counter
	parkedGauge       metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedFleet(telemetry *TelemetryProvider, opts ...Option) (*InstrumentedFleet, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("garage_entries_total",
		metric.WithDescription("Total number of garage entry attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("garage_exits_total",
		metric.WithDescription("Total number of garage exit attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	registrations, err := meter.Int64Counter("vehicles_registered_total",
		metric.WithDescription("Total number of vehicles registered in the fleet"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	parkedGauge, err := meter.Int64UpDownCounter("vehicles_parked",
		metric.WithDescription("Current number of vehicles parked in a garage"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("fleet_operation_duration_seconds",
		metric.WithDescription("Duration of fleet operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedFleet{
		Fleet:             NewFleet(opts...),
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		registrations:     registrations,
		parkedGauge:       parkedGauge,
		operationDuration: operationDuration,
	}, nil
}

func (f *InstrumentedFleet) Register(ctx context.Context, plate string) (*Vehicle, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.register",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	start := time.Now()
	vehicle, err := f.Fleet.Register(plate)

	labels := []attribute.KeyValue{attribute.String("operation", "register")}
	if err != nil {
		f.fail(ctx, span, err)
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("vehicle_registered")
		f.registrations.Add(ctx, 1)
	}

	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return vehicle, err
}

func (f *InstrumentedFleet) Enter(ctx context.Context, plate string, g Garage) error {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.enter",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("garage.name", g.Name),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("opening_stay")

	created, err := f.Fleet.Enter(plate, g)

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("garage", g.Name),
	}

	if created {
		span.AddEvent("vehicle_registered")
		f.registrations.Add(ctx, 1)
	}

	if err != nil {
		f.fail(ctx, span, err)
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("stay_opened")
		f.parkedGauge.Add(ctx, 1)
		logging.Info(ctx, "vehicle entered garage", "plate", plate, "garage", g.Name)
	}

	f.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return err
}

func (f *InstrumentedFleet) Exit(ctx context.Context, plate string) (Garage, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.exit",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	start := time.Now()

	span.AddEvent("closing_stay")

	g, err := f.Fleet.Exit(plate)

	labels := []attribute.KeyValue{attribute.String("operation", "exit")}

	if err != nil {
		f.fail(ctx, span, err)
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("garage", g.Name),
		)
		span.SetAttributes(attribute.String("garage.name", g.Name))
		span.AddEvent("stay_closed")
		f.parkedGauge.Add(ctx, -1)
		logging.Info(ctx, "vehicle left garage", "plate", plate, "garage", g.Name)
	}

	f.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return g, err
}

func (f *InstrumentedFleet) Report(ctx context.Context, plate string, w io.Writer) error {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.report",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	start := time.Now()
	err := f.Fleet.Report(plate, w)

	labels := []attribute.KeyValue{attribute.String("operation", "report")}
	if err != nil {
		f.fail(ctx, span, err)
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("report_written")
	}

	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return err
}

func (f *InstrumentedFleet) Snapshot(ctx context.Context, plate string) (VehicleSnapshot, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.snapshot",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	start := time.Now()
	snap, err := f.Fleet.Snapshot(plate)

	labels := []attribute.KeyValue{attribute.String("operation", "snapshot")}
	if err != nil {
		f.fail(ctx, span, err)
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(
			attribute.Bool("vehicle.parked", snap.Parked),
			attribute.Int("vehicle.visited_garages", len(snap.VisitedGarages)),
		)
		labels = append(labels, attribute.String("status", "found"))
	}

	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return snap, err
}

func (f *InstrumentedFleet) Snapshots(ctx context.Context) []VehicleSnapshot {
	ctx, span := f.telemetry.Tracer().Start(ctx, "fleet.snapshots")
	defer span.End()

	start := time.Now()
	snaps := f.Fleet.Snapshots()

	span.SetAttributes(attribute.Int("fleet.size", len(snaps)))

	labels := []attribute.KeyValue{
		attribute.String("operation", "snapshots"),
		attribute.String("status", "success"),
	}
	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return snaps
}

func (f *InstrumentedFleet) fail(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logging.Debug(ctx, "fleet operation failed", "error", err)
}
