package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"garage-tracker/internal/config"
	"garage-tracker/internal/garages"
	"garage-tracker/internal/logging"
	"garage-tracker/internal/server"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "Mode to run: cli, server, both or replay")
	port := flag.String("port", cfg.Port, "Port for HTTP server")
	file := flag.String("file", cfg.ReplayFile, "Movement log replayed in replay mode")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := garages.NewTelemetryProvider(ctx, garages.TelemetryConfig{
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
		ExportInterval: cfg.MetricExportInterval,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}

	// Shell and replay output owns stdout outside server mode.
	if *mode == "server" {
		logging.Init(cfg.OTelServiceName, cfg.Environment)
	} else {
		logging.InitWithWriter(os.Stderr, cfg.OTelServiceName, cfg.Environment)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	switch *mode {
	case "cli":
		err = runCLI(ctx, cancel, telemetryProvider, sigChan)
	case "server":
		err = runServer(ctx, cancel, cfg, *port, telemetryProvider, sigChan)
	case "both":
		err = runBoth(ctx, cancel, cfg, *port, telemetryProvider, sigChan)
	case "replay":
		err = runReplay(ctx, *file, telemetryProvider)
	default:
		err = fmt.Errorf("invalid mode: %s. Must be cli, server, both or replay", *mode)
	}
	if err != nil {
		logging.Error(ctx, "garage-tracker stopped with an error", "error", err)
		exitCode = 1
	}

	shutdownTelemetry(cfg, telemetryProvider)
	cancel()
	os.Exit(exitCode)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, telemetryProvider *garages.TelemetryProvider, sigChan chan os.Signal) error {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	fleet, err := garages.NewInstrumentedFleet(telemetryProvider)
	if err != nil {
		return err
	}

	shell := garages.NewInstrumentedShell(fleet, telemetryProvider, os.Stdin, os.Stdout)
	shell.Run(ctx)
	return nil
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, port string, telemetryProvider *garages.TelemetryProvider, sigChan chan os.Signal) error {
	fleet, err := garages.NewInstrumentedFleet(telemetryProvider)
	if err != nil {
		return err
	}
	srv := server.NewServer(port, fleet, cfg.OTelServiceName)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(cfg, srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runBoth serves HTTP and reads the shell from stdin against the same fleet.
func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, port string, telemetryProvider *garages.TelemetryProvider, sigChan chan os.Signal) error {
	fleet, err := garages.NewInstrumentedFleet(telemetryProvider)
	if err != nil {
		return err
	}
	srv := server.NewServer(port, fleet, cfg.OTelServiceName)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell := garages.NewInstrumentedShell(fleet, telemetryProvider, os.Stdin, os.Stdout)
		shell.Run(ctx)
		close(cliDone)
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	var runErr error
	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownServer(cfg, srv)
	return runErr
}

func runReplay(ctx context.Context, file string, telemetryProvider *garages.TelemetryProvider) error {
	if file == "" {
		return errors.New("replay mode needs a movement log (-file or REPLAY_FILE)")
	}

	movements, err := garages.LoadMovementsFile(file)
	if err != nil {
		return err
	}

	replayer, err := garages.NewReplayer(telemetryProvider)
	if err != nil {
		return err
	}

	if err := replayer.Apply(ctx, movements); err != nil {
		return err
	}

	fleet := replayer.Fleet()
	for _, plate := range fleet.Plates() {
		vehicle, err := fleet.Lookup(plate)
		if err != nil {
			return err
		}
		fmt.Println(vehicle)
		if err := fleet.Report(ctx, plate, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func shutdownServer(cfg *config.Config, srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "error", err)
	}
}

func shutdownTelemetry(cfg *config.Config, telemetryProvider *garages.TelemetryProvider) {
	logging.Info(context.Background(), "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down telemetry: %v\n", err)
	}
}
