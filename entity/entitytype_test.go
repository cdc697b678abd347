package entity_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/stretchr/testify/assert"
)

func TestParseNodeType(t *testing.T) {
	for _, s := range []string{"", "intersection", "signalized"} {
		typ, err := entity.ParseNodeType(s)
		assert.NoError(t, err)
		assert.Equal(t, entity.NodeTypeIntersection, typ)
	}
	typ, err := entity.ParseNodeType("geometry")
	assert.NoError(t, err)
	assert.Equal(t, "geometry", typ.String())
	_, err = entity.ParseNodeType("roundabout")
	assert.Error(t, err)
}

func TestOrientation(t *testing.T) {
	assert.Equal(t, entity.AxisEW, entity.OrientationHorizontal.Axis())
	assert.Equal(t, entity.AxisNS, entity.OrientationVertical.Axis())
	assert.Equal(t, entity.AxisEW, entity.AxisNS.Other())

	o := entity.OrientationBetween(geometry.Point{X: 0, Y: 0}, geometry.Point{X: -5, Y: 5})
	assert.Equal(t, entity.OrientationHorizontal, o)
	o = entity.OrientationBetween(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 1, Y: -5})
	assert.Equal(t, entity.OrientationVertical, o)

	o, err := entity.ParseOrientation("")
	assert.NoError(t, err)
	assert.Equal(t, entity.OrientationUnspecified, o)
	_, err = entity.ParseOrientation("diagonal")
	assert.Error(t, err)
}
