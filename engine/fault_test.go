package engine

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLineEngine(t *testing.T) (*Engine, entity.IEdge) {
	p := config.DefaultParams()
	p.SpawnRate = 0
	p.PSlowdown = 0
	e, err := New(config.NewRuntimeConfig(config.Config{Control: config.Control{Params: p}}), randengine.New(1))
	require.NoError(t, err)
	require.NoError(t, e.AddNode(0, geometry.Point{}, entity.NodeTypeGeometry))
	require.NoError(t, e.AddNode(1, geometry.Point{X: 100}, entity.NodeTypeGeometry))
	id, err := e.AddEdge(0, 1, 10, entity.OrientationHorizontal)
	require.NoError(t, err)
	return e, e.edgeManager.Get(id)
}

func TestFaultRemovesInconsistentCar(t *testing.T) {
	e, ed := newLineEngine(t)
	bad, ok := e.Spawn(ed.ID())
	require.True(t, ok)
	require.NoError(t, e.Step())
	good, ok := e.Spawn(ed.ID())
	require.True(t, ok)

	// 车辆记录的位置与元胞不一致
	e.carManager.Get(bad).MoveTo(ed.ID(), 7)
	require.NoError(t, e.Step())

	snap := e.Snapshot()
	require.Len(t, snap.Cars, 1)
	assert.Equal(t, good, snap.Cars[0].ID)
	occupied := 0
	for _, id := range ed.Occupancy() {
		if id != entity.NoCar {
			assert.Equal(t, good, id)
			occupied++
		}
	}
	assert.Equal(t, 1, occupied)
	_, err := e.carManager.GetOrError(bad)
	assert.Error(t, err)
}

func TestFaultClearsOrphanCell(t *testing.T) {
	e, ed := newLineEngine(t)
	ed.SetCell(4, 42)
	require.NoError(t, e.Step())
	assert.Equal(t, entity.NoCar, ed.CarAt(4))
	assert.Equal(t, int32(1), e.Tick())
}

// 元胞中残留已在本步处理过的车辆ID时，按故障清除
func TestFaultClearsStaleCellOfProcessedCar(t *testing.T) {
	e, a := newLineEngine(t)
	require.NoError(t, e.AddNode(2, geometry.Point{X: 200}, entity.NodeTypeGeometry))
	id, err := e.AddEdge(1, 2, 10, entity.OrientationHorizontal)
	require.NoError(t, err)
	b := e.edgeManager.Get(id)

	car, ok := e.Spawn(a.ID())
	require.True(t, ok)
	b.SetCell(5, car)
	require.NoError(t, e.Step())

	assert.Equal(t, entity.NoCar, b.CarAt(5))
	_, err = e.carManager.GetOrError(car)
	assert.Error(t, err)
	for _, ed := range []entity.IEdge{a, b} {
		for _, x := range ed.Occupancy() {
			assert.Equal(t, entity.NoCar, x)
		}
	}
}
