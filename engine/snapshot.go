package engine

import (
	"sort"

	"git.fiblab.net/general/common/v2/parallel"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/samber/lo"
)

type CarState struct {
	ID     int32 `json:"id"`
	V      int32 `json:"v"`
	P      int32 `json:"p"`
	EdgeID int32 `json:"edge_id"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgeState 路段快照，Cells中空元胞为-1
type EdgeState struct {
	ID        int32   `json:"id"`
	FromID    int32   `json:"from_id"`
	ToID      int32   `json:"to_id"`
	From      Point   `json:"from"`
	To        Point   `json:"to"`
	Length    int32   `json:"length"`
	MaxV      int32   `json:"max_v"`
	Direction string  `json:"direction"`
	Cells     []int32 `json:"cells"`
}

// NodeState 节点快照，非路口的信号字段为空
type NodeState struct {
	ID       int32   `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Type     string  `json:"type"`
	SignalNS string  `json:"signal_ns,omitempty"`
	SignalEW string  `json:"signal_ew,omitempty"`
}

type LightState struct {
	ID    int32  `json:"id"`
	NS    string `json:"ns"`
	EW    string `json:"ew"`
	Timer int32  `json:"timer"`
}

// Snapshot 某一步结束时的完整状态
type Snapshot struct {
	Tick   int32        `json:"tick"`
	Cars   []CarState   `json:"cars"`
	Edges  []EdgeState  `json:"edges"`
	Nodes  []NodeState  `json:"nodes"`
	Lights []LightState `json:"lights"`
}

// LightString 灯色的小写名称（green yellow red）
func LightString(s mapv2.LightState) string {
	switch s {
	case mapv2.LightState_LIGHT_STATE_GREEN:
		return "green"
	case mapv2.LightState_LIGHT_STATE_YELLOW:
		return "yellow"
	case mapv2.LightState_LIGHT_STATE_RED:
		return "red"
	default:
		return "unspecified"
	}
}

// Snapshot 生成当前状态的快照
// 功能：在读锁下复制车辆、路段、节点与信号灯状态
// 返回：与引擎内部数据无共享的快照，车辆与路段按ID升序
// 说明：路段快照并行生成后重新排序
func (e *Engine) Snapshot() Snapshot {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.snapshot()
}

// Report 在同一次读锁内生成快照与宏观指标，两者对应同一步
func (e *Engine) Report() (Snapshot, Statistics) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.snapshot(), e.statistics()
}

func (e *Engine) snapshot() Snapshot {
	cars := lo.Map(e.carManager.Cars(), func(c entity.ICar, _ int) CarState {
		return CarState{ID: c.ID(), V: c.V(), P: c.Position(), EdgeID: c.EdgeID()}
	})
	sort.Slice(cars, func(i, j int) bool { return cars[i].ID < cars[j].ID })

	edges := parallel.GoMap(e.edgeManager.Edges(), func(ed entity.IEdge) EdgeState {
		from := e.nodeManager.Get(ed.FromID()).Position()
		to := e.nodeManager.Get(ed.ToID()).Position()
		return EdgeState{
			ID:        ed.ID(),
			FromID:    ed.FromID(),
			ToID:      ed.ToID(),
			From:      Point{X: from.X, Y: from.Y},
			To:        Point{X: to.X, Y: to.Y},
			Length:    ed.Length(),
			MaxV:      ed.MaxV(),
			Direction: ed.Orientation().String(),
			Cells:     ed.Occupancy(),
		}
	})
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	nodes := make([]NodeState, 0, e.nodeManager.Len())
	lights := make([]LightState, 0)
	for _, n := range e.nodeManager.Nodes() {
		pos := n.Position()
		ns := NodeState{ID: n.ID(), X: pos.X, Y: pos.Y, Type: n.Type().String()}
		if s := n.Signal(); s != nil {
			ns.SignalNS = LightString(s.State(entity.AxisNS))
			ns.SignalEW = LightString(s.State(entity.AxisEW))
			lights = append(lights, LightState{ID: n.ID(), NS: ns.SignalNS, EW: ns.SignalEW, Timer: s.Timer()})
		}
		nodes = append(nodes, ns)
	}

	return Snapshot{
		Tick:   e.clock.InternalStep,
		Cars:   cars,
		Edges:  edges,
		Nodes:  nodes,
		Lights: lights,
	}
}
