package server_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/Takshsingh313/UrbanFlow/server"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controller struct {
	e       *engine.Engine
	running atomic.Bool
}

func (c *controller) Engine() *engine.Engine { return c.e }

func (c *controller) SetRunning(running bool) { c.running.Store(running) }

func (c *controller) Rebuild(keepTopology bool, build func(e *engine.Engine) error) error {
	c.running.Store(false)
	c.e.Reset(keepTopology)
	if build == nil {
		return nil
	}
	return build(c.e)
}

type message struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	State   engine.Snapshot   `json:"state"`
	Tick    int32             `json:"tick"`
	Stats   engine.Statistics `json:"stats"`
	Cars    []engine.CarState `json:"cars"`
}

func setup(t *testing.T, layoutDir string) (*controller, *server.Server, *websocket.Conn) {
	rc := config.NewRuntimeConfig(config.Config{Control: config.Control{Params: config.DefaultParams()}})
	e, err := engine.New(rc, randengine.New(1))
	require.NoError(t, err)
	require.NoError(t, layout.Grid(e, 2, 2, 0, 0))
	ctrl := &controller{e: e}

	s := server.New(ctrl, "", layoutDir)
	ts := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + server.Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		s.Close()
		ts.Close()
	})
	return ctrl, s, conn
}

func read(t *testing.T, conn *websocket.Conn) message {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func send(t *testing.T, conn *websocket.Conn, cmd map[string]any) {
	require.NoError(t, conn.WriteJSON(cmd))
}

func TestInitOnConnect(t *testing.T) {
	_, _, conn := setup(t, "")
	m := read(t, conn)
	assert.Equal(t, server.TypeInit, m.Type)
	assert.Len(t, m.State.Nodes, 4)
	assert.Len(t, m.State.Edges, 8)
	assert.Len(t, m.State.Lights, 4)
}

func TestRunControlAndParams(t *testing.T) {
	ctrl, _, conn := setup(t, "")
	read(t, conn)

	send(t, conn, map[string]any{"action": server.ActionStart})
	assert.Eventually(t, ctrl.running.Load, time.Second, 10*time.Millisecond)
	send(t, conn, map[string]any{"action": server.ActionStop})
	assert.Eventually(t, func() bool { return !ctrl.running.Load() }, time.Second, 10*time.Millisecond)

	send(t, conn, map[string]any{"action": server.ActionSetSpawnRate, "value": 0.25})
	send(t, conn, map[string]any{"action": server.ActionSetLightTiming, "value": 12})
	send(t, conn, map[string]any{"action": server.ActionSetMaxV, "value": 3})
	assert.Eventually(t, func() bool {
		p := ctrl.e.Params()
		return p.SpawnRate == 0.25 && p.GreenDuration == 12 && p.MaxV == 3
	}, time.Second, 10*time.Millisecond)

	send(t, conn, map[string]any{"action": server.ActionSetSlowdown, "value": 2})
	m := read(t, conn)
	assert.Equal(t, server.TypeError, m.Type)
	assert.Contains(t, m.Message, "p_slowdown")
	assert.Equal(t, config.DefaultPSlowdown, ctrl.e.Params().PSlowdown)

	send(t, conn, map[string]any{"action": "fly"})
	m = read(t, conn)
	assert.Equal(t, server.TypeError, m.Type)
}

func TestUpdateBroadcast(t *testing.T) {
	ctrl, s, conn := setup(t, "")
	read(t, conn)
	require.NoError(t, ctrl.e.Step())
	s.BroadcastUpdate(ctrl.e.Snapshot(), engine.Statistics{Speed: 1.23456, Density: 0.123456, Flow: 1.5239, VehicleCount: 2})
	m := read(t, conn)
	assert.Equal(t, server.TypeUpdate, m.Type)
	assert.Equal(t, int32(1), m.Tick)
	assert.Equal(t, 1.23, m.Stats.Speed)
	assert.Equal(t, 0.123, m.Stats.Density)
	assert.Equal(t, 1.524, m.Stats.Flow)
	assert.Equal(t, 2, m.Stats.VehicleCount)
}

func TestRebuildCommands(t *testing.T) {
	ctrl, _, conn := setup(t, "")
	read(t, conn)

	require.NoError(t, ctrl.e.Step())
	send(t, conn, map[string]any{"action": server.ActionReset})
	m := read(t, conn)
	assert.Equal(t, server.TypeInit, m.Type)
	assert.Equal(t, int32(0), m.State.Tick)
	assert.Empty(t, m.State.Cars)
	assert.Len(t, m.State.Nodes, 4)

	send(t, conn, map[string]any{"action": server.ActionRegenerateGrid, "rows": 3, "cols": 4, "initial_vehicles": 2})
	m = read(t, conn)
	assert.Equal(t, server.TypeInit, m.Type)
	assert.Len(t, m.State.Nodes, 12)
	// 生成器默认的8辆加上追加的2辆，随机选中同一路段时生成失败
	assert.LessOrEqual(t, len(m.State.Cars), 10)
	assert.Greater(t, len(m.State.Cars), 2)

	send(t, conn, map[string]any{"action": server.ActionLoadCityLayout, "layout_type": "pattern", "file": layout.PatternTIntersection})
	m = read(t, conn)
	assert.Equal(t, server.TypeInit, m.Type)
	assert.Len(t, m.State.Nodes, 5)

	send(t, conn, map[string]any{"action": server.ActionLoadCityLayout, "layout_type": "pattern", "file": "atlantis"})
	m = read(t, conn)
	assert.Equal(t, server.TypeError, m.Type)
	n, _, _ := ctrl.e.Size()
	assert.Equal(t, 5, n)

	send(t, conn, map[string]any{"action": server.ActionLoadCityLayout, "layout_type": "file", "file": "x.yaml"})
	m = read(t, conn)
	assert.Equal(t, server.TypeError, m.Type)
}

func TestLoadLayoutFile(t *testing.T) {
	dir := t.TempDir()
	doc := `{"intersections": [{"id": "a"}, {"id": "b", "x": 90}], "roads": [{"from": "a", "to": "b"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pair.json"), []byte(doc), 0o644))

	_, _, conn := setup(t, dir)
	read(t, conn)
	send(t, conn, map[string]any{"action": server.ActionLoadCityLayout, "layout_type": "json", "file": "pair.json"})
	m := read(t, conn)
	require.Equal(t, server.TypeInit, m.Type)
	assert.Len(t, m.State.Nodes, 2)
	require.Len(t, m.State.Edges, 1)
	assert.Equal(t, int32(10), m.State.Edges[0].Length)
}
