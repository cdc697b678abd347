package input_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlLayout = `
name: corner
intersections:
  - {id: a, x: 0, y: 0}
  - {id: b, x: 90, y: 0, type: geometry}
roads:
  - {from: a, to: b}
  - {from: b, to: a, length: 12}
traffic_patterns:
  spawn_rate: 0.2
initial_vehicles: 3
`

const jsonLayout = `{
  "name": "corner",
  "intersections": [{"id": "a", "x": 0, "y": 0}, {"id": "b", "x": 0, "y": 90}],
  "roads": [{"from": "a", "to": "b", "direction": "vertical"}]
}`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	doc, err := input.LoadFile(writeFile(t, "layout.yaml", yamlLayout))
	require.NoError(t, err)
	assert.Equal(t, "corner", doc.Name)
	require.Len(t, doc.Intersections, 2)
	assert.Equal(t, "geometry", doc.Intersections[1].Type)
	require.Len(t, doc.Roads, 2)
	assert.Equal(t, int32(12), doc.Roads[1].Length)
	require.NotNil(t, doc.TrafficPatterns)
	assert.Equal(t, 0.2, *doc.TrafficPatterns.SpawnRate)
	assert.Nil(t, doc.TrafficPatterns.GreenDuration)
	assert.Equal(t, int32(3), doc.InitialVehicles)
}

func TestLoadJSON(t *testing.T) {
	doc, err := input.LoadFile(writeFile(t, "layout.json", jsonLayout))
	require.NoError(t, err)
	require.Len(t, doc.Roads, 1)
	assert.Equal(t, "vertical", doc.Roads[0].Direction)
	assert.Nil(t, doc.TrafficPatterns)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := input.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = input.LoadFile(writeFile(t, "bad.json", "{"))
	assert.Error(t, err)
}

func TestLoadPrefersFile(t *testing.T) {
	c := config.Default()
	doc, err := input.Load(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, doc)

	c.Input.Layout.File = writeFile(t, "layout.yml", yamlLayout)
	c.Input.URI = "mongodb://127.0.0.1:1"
	doc, err = input.Load(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "corner", doc.Name)
}
