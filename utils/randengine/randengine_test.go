package randengine_test

import (
	"testing"

	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.PTrue(0.5), b.PTrue(0.5))
	}
}

func TestPTrueBounds(t *testing.T) {
	e := randengine.New(1)
	for i := 0; i < 100; i++ {
		assert.False(t, e.PTrue(0))
		assert.True(t, e.PTrue(1))
	}
}

func TestChoice(t *testing.T) {
	e := randengine.New(1)
	assert.Equal(t, -1, e.Choice(0))
	for i := 0; i < 100; i++ {
		c := e.Choice(3)
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 3)
	}
}
