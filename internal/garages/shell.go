package garages

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedShell struct {
	fleet     *InstrumentedFleet
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

func NewInstrumentedShell(fleet *InstrumentedFleet, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *InstrumentedShell {
	return &InstrumentedShell{
		fleet:     fleet,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	span := trace.SpanFromContext(ctx)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "register":
		s.handleRegister(ctx, parts)
	case "enter":
		s.handleEnter(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "status":
		s.handleStatus(ctx, parts)
	case "garages":
		s.handleGarages(ctx, parts)
	case "stays":
		s.handleStays(ctx, parts)
	case "vehicles":
		s.handleVehicles(ctx)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleRegister(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: register <plate>")
		return
	}

	vehicle, err := s.fleet.Register(ctx, parts[1])
	if err != nil {
		s.printError(err)
		return
	}
	s.printf("Registered %s\n", vehicle)
}

func (s *InstrumentedShell) handleEnter(ctx context.Context, parts []string) {
	if len(parts) < 3 {
		s.println("Usage: enter <plate> <garage name>")
		return
	}

	g, err := NewGarage(strings.Join(parts[2:], " "))
	if err != nil {
		s.printError(err)
		return
	}

	if err := s.fleet.Enter(ctx, parts[1], g); err != nil {
		s.printError(err)
		return
	}
	s.printf("%s entered %s\n", parts[1], g)
}

func (s *InstrumentedShell) handleExit(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: exit <plate>")
		return
	}

	g, err := s.fleet.Exit(ctx, parts[1])
	if err != nil {
		s.printError(err)
		return
	}
	s.printf("%s left %s\n", parts[1], g)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: status <plate>")
		return
	}

	snap, err := s.fleet.Snapshot(ctx, parts[1])
	if err != nil {
		s.printError(err)
		return
	}

	if !snap.Parked {
		s.printf("%s is not parked\n", snap.Plate)
		return
	}
	s.printf("%s is parked in %s\n", snap.Plate, Garage{Name: snap.CurrentGarage})
}

func (s *InstrumentedShell) handleGarages(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: garages <plate>")
		return
	}

	snap, err := s.fleet.Snapshot(ctx, parts[1])
	if err != nil {
		s.printError(err)
		return
	}

	if len(snap.VisitedGarages) == 0 {
		s.println("No garage visited")
		return
	}
	for _, name := range snap.VisitedGarages {
		s.println(Garage{Name: name}.String())
	}
}

func (s *InstrumentedShell) handleStays(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: stays <plate>")
		return
	}

	if err := s.fleet.Report(ctx, parts[1], s.out); err != nil {
		s.printError(err)
	}
}

func (s *InstrumentedShell) handleVehicles(ctx context.Context) {
	snaps := s.fleet.Snapshots(ctx)
	if len(snaps) == 0 {
		s.println("No vehicle registered")
		return
	}

	s.println("Plate\t\tGarage")
	for _, snap := range snaps {
		location := "-"
		if snap.Parked {
			location = snap.CurrentGarage
		}
		s.printf("%s\t%s\n", snap.Plate, location)
	}
}

func (s *InstrumentedShell) printError(err error) {
	switch {
	case errors.Is(err, ErrAlreadyParked):
		s.println("Sorry, vehicle is already in a garage")
	case errors.Is(err, ErrNotParked):
		s.println("Sorry, vehicle is not in a garage")
	case errors.Is(err, ErrVehicleNotFound):
		s.println("Not found")
	default:
		s.printf("Error: %s\n", err.Error())
	}
}

func (s *InstrumentedShell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
