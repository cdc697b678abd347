package layout_test

import (
	"testing"

	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.Engine {
	rc := config.NewRuntimeConfig(config.Config{Control: config.Control{Params: config.DefaultParams()}})
	e, err := engine.New(rc, randengine.New(3))
	require.NoError(t, err)
	return e
}

func TestRoadLength(t *testing.T) {
	assert.Equal(t, int32(20), layout.RoadLength(180, 15))
	assert.Equal(t, int32(15), layout.RoadLength(90, 15))
	assert.Equal(t, int32(5), layout.RoadLength(10, 5))
}

func TestGrid(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, layout.Grid(e, 3, 3, 180, 0))
	nodes, edges, cars := e.Size()
	assert.Equal(t, 9, nodes)
	assert.Equal(t, 24, edges)
	assert.LessOrEqual(t, cars, 8)
	assert.Greater(t, cars, 0)

	snap := e.Snapshot()
	for _, ed := range snap.Edges {
		assert.Equal(t, int32(20), ed.Length)
		if ed.From.Y == ed.To.Y {
			assert.Equal(t, "horizontal", ed.Direction)
		} else {
			assert.Equal(t, "vertical", ed.Direction)
		}
	}
	assert.Len(t, snap.Lights, 9)
}

func TestGridMinimumSize(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, layout.Grid(e, 1, 1, 0, 1))
	nodes, edges, _ := e.Size()
	assert.Equal(t, 4, nodes)
	assert.Equal(t, 8, edges)
}

func TestPatterns(t *testing.T) {
	cases := []struct {
		name          string
		nodes, edges  int
		intersections int
	}{
		{layout.PatternManhattan, 12, 34, 12},
		{layout.PatternRoundabout, 12, 16, 4},
		{layout.PatternTIntersection, 5, 8, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newEngine(t)
			require.NoError(t, layout.Pattern(e, c.name, 0, 0, 0, 0))
			nodes, edges, cars := e.Size()
			assert.Equal(t, c.nodes, nodes)
			assert.Equal(t, c.edges, edges)
			assert.Greater(t, cars, 0)
			assert.Len(t, e.Snapshot().Lights, c.intersections)
		})
	}
	assert.Error(t, layout.Pattern(newEngine(t), "bogus", 0, 0, 0, 0))
}

func TestApplyDocument(t *testing.T) {
	e := newEngine(t)
	green := int32(12)
	doc := &layout.Document{
		Intersections: []layout.Intersection{
			{ID: "A", X: 0, Y: 0, Type: "signalized"},
			{ID: "B", X: 90, Y: 0},
			{ID: "C", X: 90, Y: 300, Type: "geometry"},
		},
		Roads: []layout.Road{
			{From: "A", To: "B"},
			{From: "B", To: "C", Length: 7},
		},
		TrafficPatterns: &layout.TrafficPatterns{GreenDuration: &green},
	}
	ids, err := layout.Apply(e, doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"A": 0, "B": 1, "C": 2}, ids)

	snap := e.Snapshot()
	require.Len(t, snap.Edges, 2)
	assert.Equal(t, int32(10), snap.Edges[0].Length)
	assert.Equal(t, "horizontal", snap.Edges[0].Direction)
	assert.Equal(t, int32(7), snap.Edges[1].Length)
	assert.Equal(t, "vertical", snap.Edges[1].Direction)
	types := lo.Map(snap.Nodes, func(n engine.NodeState, _ int) string { return n.Type })
	assert.Equal(t, []string{"intersection", "intersection", "geometry"}, types)

	p := doc.ApplyPatterns(config.DefaultParams())
	assert.Equal(t, int32(12), p.GreenDuration)
	assert.Equal(t, int32(config.DefaultYellowDuration), p.YellowDuration)
	assert.Equal(t, config.DefaultSpawnRate, p.SpawnRate)
}

func TestApplyDocumentErrors(t *testing.T) {
	docs := []*layout.Document{
		{Intersections: []layout.Intersection{{ID: "A"}, {ID: "A"}}},
		{Intersections: []layout.Intersection{{ID: "A", Type: "bridge"}}},
		{Intersections: []layout.Intersection{{ID: "A"}}, Roads: []layout.Road{{From: "A", To: "Z"}}},
		{
			Intersections: []layout.Intersection{{ID: "A"}, {ID: "B", X: 10}},
			Roads:         []layout.Road{{From: "A", To: "B", Direction: "diagonal"}},
		},
	}
	for i, doc := range docs {
		_, err := layout.Apply(newEngine(t), doc)
		assert.Error(t, err, "doc %d", i)
	}
}

func TestLoadAppliesPatterns(t *testing.T) {
	e := newEngine(t)
	rate := 0.4
	doc := &layout.Document{
		Intersections:   []layout.Intersection{{ID: "A"}, {ID: "B", X: 90}},
		Roads:           []layout.Road{{From: "A", To: "B"}, {From: "B", To: "A"}},
		TrafficPatterns: &layout.TrafficPatterns{SpawnRate: &rate},
		InitialVehicles: 2,
	}
	require.NoError(t, layout.Load(e, doc))
	assert.Equal(t, 0.4, e.Params().SpawnRate)
	_, edges, cars := e.Size()
	assert.Equal(t, 2, edges)
	assert.GreaterOrEqual(t, cars, 1)
	assert.LessOrEqual(t, cars, 2)

	bad := 3.0
	doc.TrafficPatterns.SpawnRate = &bad
	e = newEngine(t)
	assert.ErrorIs(t, layout.Load(e, doc), config.ErrInvalidParams)
}
