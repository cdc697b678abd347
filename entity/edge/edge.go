package edge

import (
	"github.com/Takshsingh313/UrbanFlow/entity"
)

// Edge 有向路段
// 功能：由length个元胞组成的单车道路段，每个元胞至多容纳一辆车
// 说明：cells[i]为占据第i个元胞的车辆ID，空元胞为entity.NoCar
type Edge struct {
	id          int32
	from, to    int32
	maxV        int32 // 限速（元胞/步）
	orientation entity.Orientation
	cells       []int32
}

func newEdge(id, from, to, length, maxV int32, orientation entity.Orientation) *Edge {
	e := &Edge{
		id:          id,
		from:        from,
		to:          to,
		maxV:        maxV,
		orientation: orientation,
		cells:       make([]int32, length),
	}
	e.Clear()
	return e
}

func (e *Edge) ID() int32 {
	return e.id
}

func (e *Edge) FromID() int32 {
	return e.from
}

func (e *Edge) ToID() int32 {
	return e.to
}

func (e *Edge) Length() int32 {
	return int32(len(e.cells))
}

func (e *Edge) MaxV() int32 {
	return e.maxV
}

func (e *Edge) Orientation() entity.Orientation {
	return e.orientation
}

func (e *Edge) CarAt(position int32) int32 {
	return e.cells[position]
}

func (e *Edge) SetCell(position int32, id int32) {
	e.cells[position] = id
}

func (e *Edge) IsEntryFree() bool {
	return e.cells[0] == entity.NoCar
}

func (e *Edge) Occupancy() []int32 {
	res := make([]int32, len(e.cells))
	copy(res, e.cells)
	return res
}

func (e *Edge) Clear() {
	for i := range e.cells {
		e.cells[i] = entity.NoCar
	}
}
