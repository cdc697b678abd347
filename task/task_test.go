package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextFromPattern(t *testing.T) {
	c := config.Default()
	c.Input.Layout = config.InputPath{Pattern: layout.PatternRoundabout}
	ctx := newContext("test", c)
	nodes, _, _ := ctx.Engine().Size()
	assert.Equal(t, 12, nodes)
	assert.False(t, ctx.Running())
}

func TestNewContextFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pair.yaml")
	doc := "intersections: [{id: a}, {id: b, x: 90}]\nroads: [{from: a, to: b}]\ntraffic_patterns: {green_duration: 9}\n"
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))

	c := config.Default()
	c.Input.Layout.File = file
	c.Control.Running = true
	ctx := newContext("test", c)
	nodes, edges, _ := ctx.Engine().Size()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)
	assert.Equal(t, int32(9), ctx.Engine().Params().GreenDuration)
	assert.True(t, ctx.Running())
}

func TestNewContextPanics(t *testing.T) {
	c := config.Default()
	c.Control.Params.MaxV = 0
	assert.Panics(t, func() { newContext("test", c) })

	c = config.Default()
	c.Input.Layout.Pattern = "atlantis"
	assert.Panics(t, func() { newContext("test", c) })
}

func TestStepFollowsRunning(t *testing.T) {
	ctx := newContext("test", config.Default())
	assert.False(t, ctx.step())
	assert.Equal(t, int32(0), ctx.Engine().Tick())

	ctx.SetRunning(true)
	assert.True(t, ctx.step())
	assert.True(t, ctx.step())
	assert.Equal(t, int32(2), ctx.Engine().Tick())
}

func TestRebuild(t *testing.T) {
	ctx := newContext("test", config.Default())
	ctx.SetRunning(true)
	require.True(t, ctx.step())

	require.NoError(t, ctx.Rebuild(true, nil))
	assert.False(t, ctx.Running())
	assert.Equal(t, int32(0), ctx.Engine().Tick())
	nodes, _, cars := ctx.Engine().Size()
	assert.Equal(t, 16, nodes)
	assert.Equal(t, 0, cars)

	// 清空路网后推进失败并自动暂停
	require.NoError(t, ctx.Rebuild(false, nil))
	ctx.SetRunning(true)
	assert.False(t, ctx.step())
	assert.False(t, ctx.Running())

	require.NoError(t, ctx.Rebuild(false, func(e *engine.Engine) error {
		return layout.TIntersection(e, 1)
	}))
	nodes, _, _ = ctx.Engine().Size()
	assert.Equal(t, 5, nodes)
}
