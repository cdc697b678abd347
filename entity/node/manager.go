package node

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/parallel"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/samber/lo"
)

var errEmptyTrafficLight = errors.New("empty traffic light")

// Node管理器
type NodeManager struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	ctx entity.ITaskContext

	data          map[int32]*Node
	nodes         []*Node // 按创建顺序
	intersections []*Node // 按创建顺序
}

// NewManager 创建Node管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的Node管理器实例
func NewManager(ctx entity.ITaskContext) *NodeManager {
	return &NodeManager{
		ctx:           ctx,
		data:          make(map[int32]*Node),
		nodes:         make([]*Node, 0),
		intersections: make([]*Node, 0),
	}
}

// CheckAdd 校验节点能否添加
// 功能：检查ID是否重复、类型是否合法，不修改任何数据
func (m *NodeManager) CheckAdd(id int32, typ entity.NodeType) error {
	if _, ok := m.data[id]; ok {
		return fmt.Errorf("duplicate node id %d", id)
	}
	if typ != entity.NodeTypeIntersection && typ != entity.NodeTypeGeometry {
		return fmt.Errorf("node %d has invalid type %v", id, typ)
	}
	return nil
}

// Add 添加节点
// 功能：创建节点，路口节点按当前运行参数创建信号灯
// 说明：调用方须先通过CheckAdd
func (m *NodeManager) Add(id int32, pos geometry.Point, typ entity.NodeType) entity.INode {
	p := m.ctx.RuntimeConfig().C.Params
	n := newNode(id, pos, typ, p.GreenDuration, p.YellowDuration)
	m.data[id] = n
	m.nodes = append(m.nodes, n)
	if n.IsIntersection() {
		m.intersections = append(m.intersections, n)
	}
	return n
}

// Link 记录路段与两端节点的邻接关系
func (m *NodeManager) Link(edge entity.IEdge) {
	from, to := m.data[edge.FromID()], m.data[edge.ToID()]
	from.outEdgeIDs = append(from.outEdgeIDs, edge.ID())
	to.inEdgeIDs = append(to.inEdgeIDs, edge.ID())
}

// Get 根据ID获取Node实例，如果不存在则panic
func (m *NodeManager) Get(id int32) entity.INode {
	if n, ok := m.data[id]; !ok {
		log.Panicf("no id %d in node data", id)
		return nil
	} else {
		return n
	}
}

// GetOrError 根据ID获取Node实例，如果不存在则返回错误
func (m *NodeManager) GetOrError(id int32) (entity.INode, error) {
	if n, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in node data", id)
	} else {
		return n, nil
	}
}

func (m *NodeManager) Nodes() []entity.INode {
	return lo.Map(m.nodes, func(n *Node, _ int) entity.INode { return n })
}

func (m *NodeManager) Len() int {
	return len(m.nodes)
}

// UpdateSignals 推进全部路口信号灯一步
// 说明：各路口信号灯相互独立，并行处理
func (m *NodeManager) UpdateSignals() {
	parallel.GoFor(m.intersections, func(n *Node) { n.trafficLight.Update() })
}

// SetDurations 修改全部路口的绿灯、黄灯时长
func (m *NodeManager) SetDurations(green, yellow int32) {
	for _, n := range m.intersections {
		n.trafficLight.SetDurations(green, yellow)
	}
}

// ResetSignals 全部路口信号灯恢复南北绿、东西红、计时为0
func (m *NodeManager) ResetSignals() {
	for _, n := range m.intersections {
		n.trafficLight.Reset()
	}
}

// Clear 删除全部节点
func (m *NodeManager) Clear() {
	m.data = make(map[int32]*Node)
	m.nodes = make([]*Node, 0)
	m.intersections = make([]*Node, 0)
}

func (m *NodeManager) getIntersection(id int32) (*Node, error) {
	n, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("node id %d does not exist", id)
	}
	if !n.IsIntersection() {
		return nil, fmt.Errorf("node %d is not an intersection", id)
	}
	return n, nil
}
