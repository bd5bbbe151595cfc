package garages

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintStaysScenario(t *testing.T) {
	clock := newFakeClock()
	vehicle, err := NewVehicle("AB-123-CD", WithClock(clock.Now))
	require.NoError(t, err)

	require.NoError(t, vehicle.EnterGarage(alpha))
	clock.advance(8 * time.Hour)
	require.NoError(t, vehicle.ExitGarage())
	clock.advance(16 * time.Hour)
	require.NoError(t, vehicle.EnterGarage(beta))

	assert.True(t, vehicle.IsParked())
	assert.ElementsMatch(t, []Garage{alpha, beta}, vehicle.VisitedGarages())

	var buf bytes.Buffer
	require.NoError(t, vehicle.PrintStays(&buf))

	expected := "Garage(name=Alpha):\n" +
		"\tentry=13/11/2024, exit=13/11/2024\n" +
		"Garage(name=Beta):\n" +
		"\tentry=14/11/2024, ongoing\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrintStaysFirstAppearanceOrder(t *testing.T) {
	clock := newFakeClock()
	vehicle, _ := NewVehicle("AB-123-CD", WithClock(clock.Now))
	zulu := Garage{Name: "Zulu"}

	for _, g := range []Garage{zulu, alpha, zulu} {
		require.NoError(t, vehicle.EnterGarage(g))
		clock.advance(24 * time.Hour)
		require.NoError(t, vehicle.ExitGarage())
	}

	var buf bytes.Buffer
	require.NoError(t, vehicle.PrintStays(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Garage(name=Zulu):",
		"\tentry=13/11/2024, exit=14/11/2024",
		"\tentry=15/11/2024, exit=16/11/2024",
		"Garage(name=Alpha):",
		"\tentry=14/11/2024, exit=15/11/2024",
	}, lines)
}

func TestPrintStaysRoundTripSameGarage(t *testing.T) {
	const cycles = 4
	clock := newFakeClock()
	vehicle, _ := NewVehicle("AB-123-CD", WithClock(clock.Now))

	for i := 0; i < cycles; i++ {
		require.NoError(t, vehicle.EnterGarage(alpha))
		clock.advance(time.Hour)
		require.NoError(t, vehicle.ExitGarage())
		clock.advance(24 * time.Hour)
	}

	groups := GroupByGarage(vehicle.Stays())
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Stays, cycles)
	for i, s := range groups[0].Stays {
		assert.False(t, s.IsOngoing())
		if i > 0 {
			assert.True(t, s.Entry().After(groups[0].Stays[i-1].Entry()))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, vehicle.PrintStays(&buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "Garage(name=Alpha):"))
	assert.Equal(t, cycles, strings.Count(buf.String(), "\tentry="))
}

func TestPrintStaysEmptyHistory(t *testing.T) {
	vehicle, _ := NewVehicle("AB-123-CD")

	var buf bytes.Buffer
	require.NoError(t, vehicle.PrintStays(&buf))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}

func TestPrintStaysReturnsWriteError(t *testing.T) {
	vehicle, _ := NewVehicle("AB-123-CD")
	require.NoError(t, vehicle.EnterGarage(alpha))

	err := vehicle.PrintStays(failingWriter{})
	assert.EqualError(t, err, "sink closed")
}
