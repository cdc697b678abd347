package entity

import (
	"sync"

	"github.com/Takshsingh313/UrbanFlow/clock"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
)

// 后继路段选择接口
type IRouter interface {
	// 为到达路段末端的车辆选择后继路段，死路返回false
	Next(edge IEdge) (IEdge, bool)
}

type ITaskContext interface {
	Clock() *clock.Clock
	NodeManager() INodeManager
	EdgeManager() IEdgeManager
	CarManager() ICarManager
	RuntimeConfig() *config.RuntimeConfig
	Router() IRouter
	Generator() *randengine.Engine
	// 保护仿真状态的读写锁，外部接口（RPC）读写状态前需持有
	Locker() *sync.RWMutex
}
