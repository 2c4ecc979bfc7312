package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, div, mod int
	}{
		{7, 8, 0, 7},
		{8, 8, 1, 0},
		{-1, 8, -1, 7},
		{-8, 8, -1, 0},
		{-9, 8, -2, 7},
		{21, 11, 1, 10},
	}
	for _, c := range cases {
		assert.Equal(t, c.div, FloorDiv(c.a, c.b), "FloorDiv(%d,%d)", c.a, c.b)
		assert.Equal(t, c.mod, FloorMod(c.a, c.b), "FloorMod(%d,%d)", c.a, c.b)
	}
}

func TestWrapAndBlockCoords(t *testing.T) {
	assert.Equal(t, Vec2{X: 7, Y: 0}, Vec2{X: -1, Y: 8}.Wrap(8))

	tile := Vec2{X: 38, Y: 33}
	assert.Equal(t, Vec2{X: 3, Y: 3}, tile.ToBlockCoords())
	assert.Equal(t, Vec2{X: 5, Y: 0}, tile.LocalInBlock())
}

func TestNeighboursOrder(t *testing.T) {
	n := Vec2{X: 0, Y: 0}.Neighbours()
	assert.Equal(t, [4]Vec2{{0, -1}, {1, 0}, {-1, 0}, {0, 1}}, n)
}
