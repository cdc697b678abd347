package edge

import (
	"fmt"

	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/samber/lo"
)

// Edge管理器
type EdgeManager struct {
	ctx entity.ITaskContext

	data   map[int32]*Edge
	edges  []*Edge // 按创建顺序
	pairs  map[[2]int32]struct{}
	nextID int32
}

// NewManager 创建Edge管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的Edge管理器实例
func NewManager(ctx entity.ITaskContext) *EdgeManager {
	m := &EdgeManager{ctx: ctx}
	m.Clear()
	return m
}

// CheckAdd 校验路段能否添加
// 功能：检查两端节点存在、长度合法、不重复，不修改任何数据
// 参数：from-起点ID，to-终点ID，length-元胞数
// 返回：不合法时返回错误
func (m *EdgeManager) CheckAdd(from, to, length int32) error {
	if _, err := m.ctx.NodeManager().GetOrError(from); err != nil {
		return fmt.Errorf("edge %d->%d: %w", from, to, err)
	}
	if _, err := m.ctx.NodeManager().GetOrError(to); err != nil {
		return fmt.Errorf("edge %d->%d: %w", from, to, err)
	}
	if from == to {
		return fmt.Errorf("edge %d->%d is a self loop", from, to)
	}
	if length < 1 {
		return fmt.Errorf("edge %d->%d has invalid length %d", from, to, length)
	}
	if _, ok := m.pairs[[2]int32{from, to}]; ok {
		return fmt.Errorf("duplicate edge %d->%d", from, to)
	}
	return nil
}

// Add 添加路段
// 功能：按顺序分配路段ID，创建路段并登记到两端节点
// 参数：from-起点ID，to-终点ID，length-元胞数，orientation-朝向，未指定时由两端坐标推导
// 返回：新路段
// 说明：调用方须先通过CheckAdd
func (m *EdgeManager) Add(from, to, length int32, orientation entity.Orientation) entity.IEdge {
	nodeManager := m.ctx.NodeManager()
	if orientation == entity.OrientationUnspecified {
		orientation = entity.OrientationBetween(nodeManager.Get(from).Position(), nodeManager.Get(to).Position())
	}
	e := newEdge(m.nextID, from, to, length, m.ctx.RuntimeConfig().C.Params.MaxV, orientation)
	m.nextID++
	m.data[e.id] = e
	m.edges = append(m.edges, e)
	m.pairs[[2]int32{from, to}] = struct{}{}
	nodeManager.Link(e)
	log.Debugf("add edge %d: %d->%d length=%d %v", e.id, from, to, length, orientation)
	return e
}

// Get 根据ID获取Edge实例，如果不存在则panic
func (m *EdgeManager) Get(id int32) entity.IEdge {
	if e, ok := m.data[id]; !ok {
		log.Panicf("no id %d in edge data", id)
		return nil
	} else {
		return e
	}
}

// GetOrError 根据ID获取Edge实例，如果不存在则返回错误
func (m *EdgeManager) GetOrError(id int32) (entity.IEdge, error) {
	if e, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in edge data", id)
	} else {
		return e, nil
	}
}

func (m *EdgeManager) Edges() []entity.IEdge {
	return lo.Map(m.edges, func(e *Edge, _ int) entity.IEdge { return e })
}

func (m *EdgeManager) Len() int {
	return len(m.edges)
}

func (m *EdgeManager) TotalLength() int32 {
	return lo.SumBy(m.edges, func(e *Edge) int32 { return e.Length() })
}

// SetMaxV 修改全部路段限速
func (m *EdgeManager) SetMaxV(v int32) {
	for _, e := range m.edges {
		e.maxV = v
	}
}

// ClearCells 清空全部元胞，保留路段
func (m *EdgeManager) ClearCells() {
	for _, e := range m.edges {
		e.Clear()
	}
}

// Clear 删除全部路段，ID重新从0分配
func (m *EdgeManager) Clear() {
	m.data = make(map[int32]*Edge)
	m.edges = make([]*Edge, 0)
	m.pairs = make(map[[2]int32]struct{})
	m.nextID = 0
}
