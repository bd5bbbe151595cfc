package garages

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movementsYAML = `
movements:
  - plate: AB-123-CD
    action: enter
    garage: Alpha
    at: 2024-11-13T08:00:00Z
  - plate: AB-123-CD
    action: exit
    at: 2024-11-13T18:00:00Z
  - plate: AB-123-CD
    action: enter
    garage: Beta
    at: 2024-11-14T08:00:00Z
`

func TestLoadMovements(t *testing.T) {
	movements, err := LoadMovements(strings.NewReader(movementsYAML))
	require.NoError(t, err)
	require.Len(t, movements, 3)

	assert.Equal(t, Movement{
		Plate:  "AB-123-CD",
		Action: ActionEnter,
		Garage: "Alpha",
		At:     time.Date(2024, time.November, 13, 8, 0, 0, 0, time.UTC),
	}, movements[0])
	assert.Equal(t, ActionExit, movements[1].Action)
	assert.Empty(t, movements[1].Garage)
}

func TestLoadMovementsEmptyDocument(t *testing.T) {
	movements, err := LoadMovements(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestLoadMovementsRejectsInvalidEntries(t *testing.T) {
	_, err := LoadMovements(strings.NewReader("movements:\n  - plate: AB-123-CD\n    action: park\n"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = LoadMovements(strings.NewReader("movements:\n  - plate: AB-123-CD\n    action: enter\n"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = LoadMovements(strings.NewReader("movements: [unterminated"))
	assert.Error(t, err)
}

func TestLoadMovementsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movements.yaml")
	require.NoError(t, os.WriteFile(path, []byte(movementsYAML), 0o600))

	movements, err := LoadMovementsFile(path)
	require.NoError(t, err)
	assert.Len(t, movements, 3)

	_, err = LoadMovementsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReplayerApply(t *testing.T) {
	telemetry, _, _ := newTestTelemetry(t)
	replayer, err := NewReplayer(telemetry)
	require.NoError(t, err)

	movements, err := LoadMovements(strings.NewReader(movementsYAML))
	require.NoError(t, err)

	require.NoError(t, replayer.Apply(context.Background(), movements))

	vehicle, err := replayer.Fleet().Lookup("AB-123-CD")
	require.NoError(t, err)
	assert.True(t, vehicle.IsParked())

	stays := vehicle.Stays()
	require.Len(t, stays, 2)
	assert.Equal(t, movements[0].At, stays[0].Entry())
	exit, ok := stays[0].Exit()
	require.True(t, ok)
	assert.Equal(t, movements[1].At, exit)
	assert.Equal(t, movements[2].At, stays[1].Entry())

	var buf bytes.Buffer
	require.NoError(t, vehicle.PrintStays(&buf))
	assert.Equal(t, "Garage(name=Alpha):\n\tentry=13/11/2024, exit=13/11/2024\nGarage(name=Beta):\n\tentry=14/11/2024, ongoing\n", buf.String())
}

func TestReplayerRejectsBackwardsClock(t *testing.T) {
	telemetry, _, _ := newTestTelemetry(t)
	replayer, err := NewReplayer(telemetry)
	require.NoError(t, err)

	day := time.Date(2024, time.November, 13, 8, 0, 0, 0, time.UTC)
	err = replayer.Apply(context.Background(), []Movement{
		{Plate: "AB-123-CD", Action: ActionEnter, Garage: "Alpha", At: day},
		{Plate: "AB-123-CD", Action: ActionExit, At: day.Add(-time.Hour)},
	})
	assert.ErrorIs(t, err, ErrClockWentBackwards)

	vehicle, err := replayer.Fleet().Lookup("AB-123-CD")
	require.NoError(t, err)
	assert.True(t, vehicle.IsParked(), "rejected movement must not be applied")
}

func TestReplayerStopsAtFirstFailure(t *testing.T) {
	telemetry, _, _ := newTestTelemetry(t)
	replayer, err := NewReplayer(telemetry)
	require.NoError(t, err)

	err = replayer.Apply(context.Background(), []Movement{
		{Plate: "AB-123-CD", Action: ActionEnter, Garage: "Alpha"},
		{Plate: "AB-123-CD", Action: ActionEnter, Garage: "Beta"},
		{Plate: "AB-123-CD", Action: ActionExit},
	})
	assert.ErrorIs(t, err, ErrAlreadyParked)
	assert.Contains(t, err.Error(), "movement 1")

	vehicle, err := replayer.Fleet().Lookup("AB-123-CD")
	require.NoError(t, err)
	assert.True(t, vehicle.IsParked())
	assert.Len(t, vehicle.Stays(), 1)
}
