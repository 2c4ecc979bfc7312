package dungeon

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/annel0/dungeon-atlas/internal/vec"
)

// ErrInvariant возвращается, если обход не закрыл все блоки уровня
var ErrInvariant = errors.New("unfold invariant violated")

// Placement сопоставляет физические блоки уровня логическим позициям
// на плоскости. Логические координаты могут выходить за [0,7].
type Placement struct {
	logical  map[vec.Vec2]vec.Vec2 // физический -> логический
	physical map[vec.Vec2]vec.Vec2 // логический -> физический, первый занявший
	order    []vec.Vec2            // физические блоки в порядке размещения

	Min, Max vec.Vec2 // Границы в логических блоках, включительно
}

func newPlacement() *Placement {
	return &Placement{
		logical:  make(map[vec.Vec2]vec.Vec2, FloorBytes),
		physical: make(map[vec.Vec2]vec.Vec2, FloorBytes),
		order:    make([]vec.Vec2, 0, FloorBytes),
	}
}

func (p *Placement) place(phys, logical vec.Vec2) {
	if len(p.order) == 0 {
		p.Min, p.Max = logical, logical
	} else {
		p.Min = vec.Vec2{X: min(p.Min.X, logical.X), Y: min(p.Min.Y, logical.Y)}
		p.Max = vec.Vec2{X: max(p.Max.X, logical.X), Y: max(p.Max.Y, logical.Y)}
	}

	p.logical[phys] = logical
	if _, taken := p.physical[logical]; !taken {
		p.physical[logical] = phys
	}
	p.order = append(p.order, phys)
}

// Identity возвращает размещение без изменений: физический == логический
func Identity() *Placement {
	p := newPlacement()
	for y := 0; y < FloorSize; y++ {
		for x := 0; x < FloorSize; x++ {
			v := vec.Vec2{X: x, Y: y}
			p.place(v, v)
		}
	}
	return p
}

// Logical возвращает логическую позицию физического блока
func (p *Placement) Logical(phys vec.Vec2) (vec.Vec2, bool) {
	l, ok := p.logical[phys]
	return l, ok
}

// Physical возвращает физический блок, занимающий логическую позицию
func (p *Placement) Physical(logical vec.Vec2) (vec.Vec2, bool) {
	ph, ok := p.physical[logical]
	return ph, ok
}

// Len возвращает число размещённых блоков
func (p *Placement) Len() int {
	return len(p.order)
}

// Order возвращает физические блоки в порядке размещения
func (p *Placement) Order() []vec.Vec2 {
	out := make([]vec.Vec2, len(p.order))
	copy(out, p.order)
	return out
}

// Width и Height - размер размещения в блоках
func (p *Placement) Width() int  { return p.Max.X - p.Min.X + 1 }
func (p *Placement) Height() int { return p.Max.Y - p.Min.Y + 1 }

type unfoldNode struct {
	phys, logical vec.Vec2
}

// unfolder хранит состояние обхода одного уровня
type unfolder struct {
	floor *Floor
	out   *Placement

	ground []unfoldNode
	walls  []unfoldNode

	closed       mapset.Set[vec.Vec2]
	queuedGround mapset.Set[vec.Vec2]
	queuedWall   mapset.Set[vec.Vec2]
}

// Unfold раскладывает тороидальный уровень на плоскость. Область пола
// растёт от первого не-стенового блока; когда пол исчерпан, обход идёт
// через стены к следующему карману пола.
func Unfold(f Floor) (*Placement, error) {
	u := &unfolder{
		floor:        &f,
		out:          newPlacement(),
		closed:       mapset.New[vec.Vec2](),
		queuedGround: mapset.New[vec.Vec2](),
		queuedWall:   mapset.New[vec.Vec2](),
	}

	seed := u.seed()
	u.pushGround(unfoldNode{phys: seed, logical: seed})

	for {
		u.drainGround()
		if len(u.walls) == 0 {
			break
		}
		u.stepWall()
	}

	if u.closed.Size() != FloorBytes {
		return nil, fmt.Errorf("%w: закрыто %d из %d блоков", ErrInvariant, u.closed.Size(), FloorBytes)
	}
	return u.out, nil
}

// seed возвращает первый блок не-стену построчно, для сплошной стены - (0,0)
func (u *unfolder) seed() vec.Vec2 {
	for y := 0; y < FloorSize; y++ {
		for x := 0; x < FloorSize; x++ {
			if !u.floor[y][x].IsWall() {
				return vec.Vec2{X: x, Y: y}
			}
		}
	}
	return vec.Vec2{}
}

func (u *unfolder) pushGround(n unfoldNode) {
	if u.queuedGround.Has(n.phys) {
		return
	}
	u.queuedGround.Put(n.phys)
	u.ground = append(u.ground, n)
}

func (u *unfolder) pushWall(n unfoldNode) {
	if u.queuedWall.Has(n.phys) {
		return
	}
	u.queuedWall.Put(n.phys)
	u.walls = append(u.walls, n)
}

func (u *unfolder) close(n unfoldNode) {
	u.closed.Put(n.phys)
	u.out.place(n.phys, n.logical)
}

// neighbours возвращает соседей узла: физические с заворачиванием,
// логические без него
func (u *unfolder) neighbours(n unfoldNode) [4]unfoldNode {
	var out [4]unfoldNode
	for i, d := range vec.Directions {
		out[i] = unfoldNode{
			phys:    n.phys.Add(d).Wrap(FloorSize),
			logical: n.logical.Add(d),
		}
	}
	return out
}

func (u *unfolder) drainGround() {
	for len(u.ground) > 0 {
		n := u.ground[0]
		u.ground = u.ground[1:]
		if u.closed.Has(n.phys) {
			continue
		}
		u.close(n)

		for _, nb := range u.neighbours(n) {
			if u.closed.Has(nb.phys) {
				continue
			}
			if u.floor.At(nb.phys).IsWall() {
				u.pushWall(nb)
			} else {
				u.pushGround(nb)
			}
		}
	}
}

// stepWall снимает одну стену с очереди. Первый незакрытый сосед-пол
// возобновляет рост пола, а стена возвращается в начало очереди, чтобы
// её остальные соседи не потерялись.
func (u *unfolder) stepWall() {
	w := u.walls[0]
	u.walls = u.walls[1:]
	if !u.closed.Has(w.phys) {
		u.close(w)
	}

	for _, nb := range u.neighbours(w) {
		if u.closed.Has(nb.phys) {
			continue
		}
		if u.floor.At(nb.phys).IsWall() {
			u.pushWall(nb)
			continue
		}
		if u.queuedGround.Has(nb.phys) {
			continue
		}
		u.pushGround(nb)
		u.walls = append([]unfoldNode{w}, u.walls...)
		return
	}
}
