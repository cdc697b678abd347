package entity

import (
	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/sim/syncer/v3"
)

// Manager依赖倒置

// entity/node/manager.go的依赖倒置
type INodeManager interface {
	Register(sidecar *syncer.Sidecar) // 注册到Sidecar

	// 校验节点能否添加，不修改任何数据
	CheckAdd(id int32, typ NodeType) error
	// 添加节点（须先通过CheckAdd）
	Add(id int32, pos geometry.Point, typ NodeType) INode
	// 记录路段与节点的邻接关系
	Link(edge IEdge)

	// 输入Node ID，查找Node，如果不存在则panic
	Get(id int32) INode
	// 输入Node ID，查找Node，如果不存在则返回error
	GetOrError(id int32) (INode, error)

	Nodes() []INode // 全部节点（按创建顺序）
	Len() int

	UpdateSignals()                   // 推进全部路口信号灯一步
	SetDurations(green, yellow int32) // 修改全部路口的绿灯、黄灯时长
	ResetSignals()                    // 信号灯恢复初始状态
	Clear()                           // 删除全部节点
}

// entity/edge/manager.go的依赖倒置
type IEdgeManager interface {
	// 校验路段能否添加，不修改任何数据
	CheckAdd(from, to, length int32) error
	// 添加路段（须先通过CheckAdd），返回新路段
	Add(from, to, length int32, orientation Orientation) IEdge

	// 输入Edge ID，查找Edge，如果不存在则panic
	Get(id int32) IEdge
	// 输入Edge ID，查找Edge，如果不存在则返回error
	GetOrError(id int32) (IEdge, error)

	Edges() []IEdge // 全部路段（按创建顺序）
	Len() int
	TotalLength() int32 // 全部路段长度之和
	SetMaxV(v int32)    // 修改全部路段限速
	ClearCells()        // 清空全部元胞
	Clear()             // 删除全部路段
}

// entity/car/manager.go的依赖倒置
type ICarManager interface {
	// 在路段首个元胞生成车辆，元胞被占用时返回false
	Spawn(edge IEdge) (ICar, bool)
	// 移除车辆（清除其元胞）
	Remove(id int32)

	// 输入Car ID，查找Car，如果不存在则panic
	Get(id int32) ICar
	// 输入Car ID，查找Car，如果不存在则返回error
	GetOrError(id int32) (ICar, error)

	Cars() []ICar // 已生效的全部车辆（顺序不保证）
	Len() int
	SetMaxV(v int32) // 修改全部车辆最大速度并截断当前速度
	Prepare()        // 使新增、删除生效
	Clear()          // 删除全部车辆
}
