package dungeon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/dungeon-atlas/internal/vec"
)

func floorFromRows(t *testing.T, rows [FloorSize]string) Floor {
	t.Helper()

	var f Floor
	for y, row := range rows {
		require.Len(t, row, FloorSize)
		for x, c := range row {
			if c == '#' {
				f[y][x] = Block{Kind: Wall}
			}
		}
	}
	return f
}

// assertTotal проверяет, что каждый физический блок размещён ровно один раз
// и логическая позиция сравнима с физической по модулю 8
func assertTotal(t *testing.T, p *Placement) {
	t.Helper()

	require.Equal(t, FloorBytes, p.Len())
	seen := make(map[vec.Vec2]bool)
	for _, phys := range p.Order() {
		assert.False(t, seen[phys], "блок %v размещён повторно", phys)
		seen[phys] = true

		l, ok := p.Logical(phys)
		require.True(t, ok)
		assert.Equal(t, phys, l.Wrap(FloorSize))
	}
	assert.Len(t, seen, FloorBytes)
}

// assertGroundConnected проверяет, что каждый блок пола, кроме затравки,
// логически примыкает к соседу, через которого был достигнут
func assertGroundConnected(t *testing.T, f Floor, p *Placement) {
	t.Helper()

	order := p.Order()
	placed := make(map[vec.Vec2]bool)
	for i, phys := range order {
		placed[phys] = true
		if i == 0 || f.At(phys).IsWall() {
			continue
		}
		l, _ := p.Logical(phys)

		linked := false
		for _, d := range vec.Directions {
			nb := phys.Add(d).Wrap(FloorSize)
			if !placed[nb] || nb == phys {
				continue
			}
			nl, _ := p.Logical(nb)
			if nl.Add(vec.Vec2{X: -d.X, Y: -d.Y}) == l || l.Add(d) == nl {
				linked = true
				break
			}
		}
		assert.True(t, linked, "блок %v оторван от соседей", phys)
	}
}

func TestIdentity(t *testing.T) {
	p := Identity()
	assertTotal(t, p)
	assert.Equal(t, vec.Vec2{X: 0, Y: 0}, p.Min)
	assert.Equal(t, vec.Vec2{X: 7, Y: 7}, p.Max)
	assert.Equal(t, 8, p.Width())

	ph, ok := p.Physical(vec.Vec2{X: 3, Y: 6})
	require.True(t, ok)
	assert.Equal(t, vec.Vec2{X: 3, Y: 6}, ph)
}

func TestUnfoldOpenFloor(t *testing.T) {
	var f Floor
	p, err := Unfold(f)
	require.NoError(t, err)
	assertTotal(t, p)
	assertGroundConnected(t, f, p)

	first, _ := p.Logical(vec.Vec2{X: 0, Y: 0})
	assert.Equal(t, vec.Vec2{X: 0, Y: 0}, first)

	// запад от (0,0) уходит в отрицательную область, а не заворачивается
	west, _ := p.Logical(vec.Vec2{X: 7, Y: 0})
	assert.Equal(t, vec.Vec2{X: -1, Y: 0}, west)
}

func TestUnfoldCutsAlongWallSeam(t *testing.T) {
	f := floorFromRows(t, [FloorSize]string{
		"...#....",
		"...#....",
		"...#....",
		"...#....",
		"...#....",
		"...#....",
		"...#....",
		"...#....",
	})
	p, err := Unfold(f)
	require.NoError(t, err)
	assertTotal(t, p)
	assertGroundConnected(t, f, p)

	// столбцы 4..7 пристыкованы к столбцу 0 слева через заворачивание
	for y := 0; y < FloorSize; y++ {
		for x := 4; x < FloorSize; x++ {
			l, _ := p.Logical(vec.Vec2{X: x, Y: y})
			assert.Equal(t, x-FloorSize, l.X, "блок (%d,%d)", x, y)
		}
	}
}

func TestUnfoldReachesPocketsThroughWalls(t *testing.T) {
	f := floorFromRows(t, [FloorSize]string{
		"########",
		"#.######",
		"########",
		"########",
		"########",
		"#####.##",
		"########",
		"########",
	})
	p, err := Unfold(f)
	require.NoError(t, err)
	assertTotal(t, p)

	seed, _ := p.Logical(vec.Vec2{X: 1, Y: 1})
	assert.Equal(t, vec.Vec2{X: 1, Y: 1}, seed)
	assert.Equal(t, vec.Vec2{X: 1, Y: 1}, p.Order()[0])
}

func TestUnfoldAllWalls(t *testing.T) {
	var f Floor
	for y := range f {
		for x := range f[y] {
			f[y][x] = Block{Kind: Wall}
		}
	}
	p, err := Unfold(f)
	require.NoError(t, err)
	assertTotal(t, p)
	assert.Equal(t, vec.Vec2{X: 0, Y: 0}, p.Order()[0])
}

func TestUnfoldIsDeterministic(t *testing.T) {
	f := floorFromRows(t, [FloorSize]string{
		"..#..#..",
		"#.##.#.#",
		"..#....#",
		"####.###",
		"...#....",
		"#.###.##",
		"..#...#.",
		"#...#..#",
	})
	a, err := Unfold(f)
	require.NoError(t, err)
	b, err := Unfold(f)
	require.NoError(t, err)

	assert.Equal(t, a.Order(), b.Order())
	for _, phys := range a.Order() {
		la, _ := a.Logical(phys)
		lb, _ := b.Logical(phys)
		assert.Equal(t, la, lb)
	}
	assertTotal(t, a)
	assertGroundConnected(t, f, a)
}

func TestPlacementFirstOwnerWins(t *testing.T) {
	p := newPlacement()
	p.place(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 2, Y: 2})
	p.place(vec.Vec2{X: 5, Y: 5}, vec.Vec2{X: 2, Y: 2})
	p.place(vec.Vec2{X: 6, Y: 6}, vec.Vec2{X: -3, Y: 4})

	owner, ok := p.Physical(vec.Vec2{X: 2, Y: 2})
	require.True(t, ok)
	assert.Equal(t, vec.Vec2{X: 0, Y: 0}, owner)

	hidden, ok := p.Logical(vec.Vec2{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, vec.Vec2{X: 2, Y: 2}, hidden)

	assert.Equal(t, vec.Vec2{X: -3, Y: 2}, p.Min)
	assert.Equal(t, vec.Vec2{X: 2, Y: 4}, p.Max)
	assert.Equal(t, 6, p.Width())
	assert.Equal(t, 3, p.Height())
}
