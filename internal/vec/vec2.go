package vec

// BlockSize - сторона блока подземелья в тайлах
const BlockSize = 11

// Vec2 представляет 2D координаты
type Vec2 struct {
	X, Y int
}

// Add возвращает сумму векторов
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Направления соседей в порядке обхода: север, восток, запад, юг
var (
	North = Vec2{X: 0, Y: -1}
	East  = Vec2{X: 1, Y: 0}
	West  = Vec2{X: -1, Y: 0}
	South = Vec2{X: 0, Y: 1}
)

// Directions - порядок, в котором проверяются соседи
var Directions = [4]Vec2{North, East, West, South}

// Neighbours возвращает четырёх соседей без заворачивания
func (v Vec2) Neighbours() [4]Vec2 {
	var out [4]Vec2
	for i, d := range Directions {
		out[i] = v.Add(d)
	}
	return out
}

// Wrap заворачивает обе координаты в [0, n) (тор)
func (v Vec2) Wrap(n int) Vec2 {
	return Vec2{X: FloorMod(v.X, n), Y: FloorMod(v.Y, n)}
}

// ToBlockCoords преобразует координаты тайла в координаты блока
func (v Vec2) ToBlockCoords() Vec2 {
	return Vec2{X: FloorDiv(v.X, BlockSize), Y: FloorDiv(v.Y, BlockSize)}
}

// LocalInBlock возвращает локальные координаты внутри блока
func (v Vec2) LocalInBlock() Vec2 {
	return Vec2{X: FloorMod(v.X, BlockSize), Y: FloorMod(v.Y, BlockSize)}
}

// FloorDiv делит с округлением вниз (корректно для отрицательных a)
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod возвращает остаток со знаком делителя
func FloorMod(a, b int) int {
	return (a%b + b) % b
}
