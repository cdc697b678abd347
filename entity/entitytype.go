package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// 空元胞标记
const NoCar int32 = -1

// 节点类型
type NodeType int32

const (
	NodeTypeUnspecified  NodeType = iota
	NodeTypeIntersection          // 信控路口
	NodeTypeGeometry              // 几何节点（无信号灯，总是放行）
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeIntersection:
		return "intersection"
	case NodeTypeGeometry:
		return "geometry"
	default:
		return "unspecified"
	}
}

// ParseNodeType 解析节点类型字符串
// 功能：将布局文件中的节点类型字符串转换为NodeType
// 参数：s-类型字符串，空字符串视为路口
// 返回：节点类型，无法识别时返回错误
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "", "intersection", "signalized":
		return NodeTypeIntersection, nil
	case "geometry":
		return NodeTypeGeometry, nil
	default:
		return NodeTypeUnspecified, fmt.Errorf("unknown node type %q", s)
	}
}

// 信控轴：南北向与东西向
type Axis int32

const (
	AxisNS Axis = 0
	AxisEW Axis = 1
)

func (a Axis) String() string {
	if a == AxisEW {
		return "ew"
	}
	return "ns"
}

// Other 返回与之垂直的另一条轴
func (a Axis) Other() Axis {
	return 1 - a
}

// 路段朝向
type Orientation int32

const (
	OrientationUnspecified Orientation = iota
	OrientationHorizontal
	OrientationVertical
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "horizontal"
	case OrientationVertical:
		return "vertical"
	default:
		return "unspecified"
	}
}

// Axis 路段朝向对应的信控轴（水平->东西，垂直->南北）
func (o Orientation) Axis() Axis {
	if o == OrientationHorizontal {
		return AxisEW
	}
	return AxisNS
}

// ParseOrientation 解析路段朝向字符串，空字符串表示由几何关系推导
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "":
		return OrientationUnspecified, nil
	case "horizontal":
		return OrientationHorizontal, nil
	case "vertical":
		return OrientationVertical, nil
	default:
		return OrientationUnspecified, fmt.Errorf("unknown orientation %q", s)
	}
}

// OrientationBetween 根据两点坐标推导朝向，|dx|>=|dy|时为水平
func OrientationBetween(from, to geometry.Point) Orientation {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx >= dy {
		return OrientationHorizontal
	}
	return OrientationVertical
}

// entity/node/trafficlight的依赖倒置
type ISignal interface {
	State(axis Axis) mapv2.LightState // 指定轴的灯色
	Permits(axis Axis) bool           // 指定轴是否放行（仅绿灯放行）
	Timer() int32                     // 当前阶段已经过的步数
	Durations() (green, yellow int32) // 绿灯与黄灯时长
}

// entity/node/node.go的依赖倒置
type INode interface {
	ID() int32
	Position() geometry.Point
	Type() NodeType
	IsIntersection() bool
	InEdgeIDs() []int32  // 驶入路段ID（按创建顺序）
	OutEdgeIDs() []int32 // 驶出路段ID（按创建顺序）
	Signal() ISignal     // 非路口返回nil

	// 从指定朝向的路段驶入本节点是否放行
	PermitsPassage(o Orientation) bool
}

// entity/edge/edge.go的依赖倒置
type IEdge interface {
	ID() int32
	FromID() int32
	ToID() int32
	Length() int32
	MaxV() int32
	Orientation() Orientation

	CarAt(position int32) int32       // 元胞中的车辆ID，空为NoCar
	SetCell(position int32, id int32) // 写入元胞
	IsEntryFree() bool                // 首个元胞是否为空
	Occupancy() []int32               // 元胞占用情况的拷贝
	Clear()                           // 清空全部元胞
}

// entity/car/car.go的依赖倒置
type ICar interface {
	ID() int32
	V() int32
	SetV(v int32)
	MaxV() int32
	SetMaxV(v int32)
	EdgeID() int32
	Position() int32
	MoveTo(edgeID int32, position int32)

	// 车辆在tick步是否已被处理
	Processed(tick int32) bool
	MarkProcessed(tick int32)
}
