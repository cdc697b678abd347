package trafficlight_test

import (
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/entity/node/trafficlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	G = mapv2.LightState_LIGHT_STATE_GREEN
	Y = mapv2.LightState_LIGHT_STATE_YELLOW
	R = mapv2.LightState_LIGHT_STATE_RED
)

func assertAxisExclusive(t *testing.T, l *trafficlight.TrafficLight) {
	ns, ew := l.State(entity.AxisNS), l.State(entity.AxisEW)
	assert.True(t, ns == R || ew == R, "ns=%v ew=%v", ns, ew)
}

func TestInitialState(t *testing.T) {
	l := trafficlight.New(1, 30, 5)
	assert.Equal(t, G, l.State(entity.AxisNS))
	assert.Equal(t, R, l.State(entity.AxisEW))
	assert.Equal(t, int32(0), l.Timer())
	assert.True(t, l.Permits(entity.AxisNS))
	assert.False(t, l.Permits(entity.AxisEW))
}

func TestCycle(t *testing.T) {
	l := trafficlight.New(1, 2, 1)
	want := []struct {
		ns, ew mapv2.LightState
		timer  int32
	}{
		{G, R, 1}, // tick 1
		{Y, R, 0}, // tick 2
		{R, G, 0}, // tick 3
		{R, G, 1}, // tick 4
		{R, Y, 0}, // tick 5
		{G, R, 0}, // tick 6
		{G, R, 1}, // tick 7
		{Y, R, 0}, // tick 8
	}
	for i, w := range want {
		l.Update()
		assert.Equal(t, w.ns, l.State(entity.AxisNS), "tick %d", i+1)
		assert.Equal(t, w.ew, l.State(entity.AxisEW), "tick %d", i+1)
		assert.Equal(t, w.timer, l.Timer(), "tick %d", i+1)
		assertAxisExclusive(t, l)
	}
}

func TestAxisExclusiveLongRun(t *testing.T) {
	l := trafficlight.New(1, 3, 2)
	for i := 0; i < 1000; i++ {
		l.Update()
		assertAxisExclusive(t, l)
		assert.NotEqual(t, int32(-1), l.PhaseIndex())
	}
}

func TestResetKeepsDurations(t *testing.T) {
	l := trafficlight.New(1, 2, 1)
	for i := 0; i < 3; i++ {
		l.Update()
	}
	l.Reset()
	assert.Equal(t, G, l.State(entity.AxisNS))
	assert.Equal(t, R, l.State(entity.AxisEW))
	g, y := l.Durations()
	assert.Equal(t, int32(2), g)
	assert.Equal(t, int32(1), y)
}

func TestProgramRoundTrip(t *testing.T) {
	l := trafficlight.New(7, 30, 5)
	tl := l.Program()
	require.Len(t, tl.Phases, 4)
	assert.Equal(t, int32(7), tl.JunctionId)
	assert.Equal(t, []mapv2.LightState{R, Y}, tl.Phases[3].States)
	assert.Equal(t, 5.0, tl.Phases[3].Duration)

	tl.Phases[0].Duration = 12
	tl.Phases[2].Duration = 12
	require.NoError(t, l.SetProgram(tl))
	g, y := l.Durations()
	assert.Equal(t, int32(12), g)
	assert.Equal(t, int32(5), y)
}

func TestSetProgramRejects(t *testing.T) {
	l := trafficlight.New(7, 30, 5)

	wrongID := l.Program()
	wrongID.JunctionId = 8
	assert.Error(t, l.SetProgram(wrongID))

	asym := l.Program()
	asym.Phases[0].Duration = 10
	assert.Error(t, l.SetProgram(asym))

	badStates := l.Program()
	badStates.Phases[0].States = []mapv2.LightState{G, G}
	assert.Error(t, l.SetProgram(badStates))

	short := l.Program()
	short.Phases = short.Phases[:2]
	assert.Error(t, l.SetProgram(short))
}

func TestSetPhase(t *testing.T) {
	l := trafficlight.New(1, 10, 3)
	require.NoError(t, l.SetPhase(2, 4))
	assert.Equal(t, R, l.State(entity.AxisNS))
	assert.Equal(t, G, l.State(entity.AxisEW))
	assert.Equal(t, int32(2), l.PhaseIndex())
	assert.Equal(t, 4.0, l.RemainingTime())
	assert.Equal(t, int32(6), l.Timer())

	require.NoError(t, l.SetPhase(1, 100))
	assert.Equal(t, int32(0), l.Timer())
	assert.Equal(t, 3.0, l.RemainingTime())

	assert.Error(t, l.SetPhase(4, 0))
	assert.Error(t, l.SetPhase(0, -1))
}
