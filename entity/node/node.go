package node

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/entity/node/trafficlight"
)

// Node 路网节点
// 功能：路段的端点，路口节点持有双轴信号灯
// 说明：邻接关系只保存路段ID，通过EdgeManager解析
type Node struct {
	id         int32
	pos        geometry.Point
	typ        entity.NodeType
	inEdgeIDs  []int32
	outEdgeIDs []int32

	trafficLight *trafficlight.TrafficLight // 非路口为nil
}

func newNode(id int32, pos geometry.Point, typ entity.NodeType, greenDuration, yellowDuration int32) *Node {
	n := &Node{
		id:         id,
		pos:        pos,
		typ:        typ,
		inEdgeIDs:  make([]int32, 0),
		outEdgeIDs: make([]int32, 0),
	}
	if typ == entity.NodeTypeIntersection {
		n.trafficLight = trafficlight.New(id, greenDuration, yellowDuration)
	}
	return n
}

func (n *Node) ID() int32 {
	return n.id
}

func (n *Node) Position() geometry.Point {
	return n.pos
}

func (n *Node) Type() entity.NodeType {
	return n.typ
}

func (n *Node) IsIntersection() bool {
	return n.trafficLight != nil
}

func (n *Node) InEdgeIDs() []int32 {
	return n.inEdgeIDs
}

func (n *Node) OutEdgeIDs() []int32 {
	return n.outEdgeIDs
}

func (n *Node) Signal() entity.ISignal {
	if n.trafficLight == nil {
		return nil
	}
	return n.trafficLight
}

// PermitsPassage 从指定朝向的路段驶入本节点是否放行
// 功能：非路口总是放行；路口按路段朝向对应轴的灯色判断
// 参数：o-驶入路段的朝向
// 返回：对应轴为绿灯时返回true
func (n *Node) PermitsPassage(o entity.Orientation) bool {
	if n.trafficLight == nil {
		return true
	}
	return n.trafficLight.Permits(o.Axis())
}
