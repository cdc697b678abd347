package engine

import (
	"errors"
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/clock"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/entity/car"
	"github.com/Takshsingh313/UrbanFlow/entity/car/route"
	"github.com/Takshsingh313/UrbanFlow/entity/edge"
	"github.com/Takshsingh313/UrbanFlow/entity/node"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
)

var (
	ErrNoTopology = errors.New("no topology: at least one node and one edge are required")
)

// Engine 元胞自动机仿真引擎
// 功能：持有路网、车辆、信号灯与随机数引擎，按步推进仿真
// 说明：写操作（Step、Spawn、Reset、Configure、路网构建）持有写锁，
// 读操作（Snapshot、Statistics）持有读锁并返回拷贝，外部不会观察到推进到一半的状态
type Engine struct {
	mtx sync.RWMutex

	clock         *clock.Clock
	runtimeConfig *config.RuntimeConfig
	generator     *randengine.Engine

	nodeManager *node.NodeManager
	edgeManager *edge.EdgeManager
	carManager  *car.CarManager
	router      *route.Router
}

// New 创建仿真引擎
// 功能：校验运行参数并创建各管理器
// 参数：rc-运行时配置，generator-随机数引擎（所有随机决策的来源）
// 返回：引擎实例，参数非法时返回错误
func New(rc *config.RuntimeConfig, generator *randengine.Engine) (*Engine, error) {
	if err := rc.C.Params.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		clock:         clock.New(rc.C.Step),
		runtimeConfig: rc,
		generator:     generator,
	}
	e.nodeManager = node.NewManager(e)
	e.edgeManager = edge.NewManager(e)
	e.carManager = car.NewManager(e)
	e.router = route.New(e)
	return e, nil
}

func (e *Engine) Clock() *clock.Clock {
	return e.clock
}

func (e *Engine) NodeManager() entity.INodeManager {
	return e.nodeManager
}

func (e *Engine) EdgeManager() entity.IEdgeManager {
	return e.edgeManager
}

func (e *Engine) CarManager() entity.ICarManager {
	return e.carManager
}

func (e *Engine) RuntimeConfig() *config.RuntimeConfig {
	return e.runtimeConfig
}

func (e *Engine) Router() entity.IRouter {
	return e.router
}

func (e *Engine) Generator() *randengine.Engine {
	return e.generator
}

func (e *Engine) Locker() *sync.RWMutex {
	return &e.mtx
}

// AddNode 添加节点
// 参数：id-节点ID，pos-坐标，typ-节点类型
// 返回：ID重复或类型非法时返回错误，路网不变
func (e *Engine) AddNode(id int32, pos geometry.Point, typ entity.NodeType) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if err := e.nodeManager.CheckAdd(id, typ); err != nil {
		return err
	}
	e.nodeManager.Add(id, pos, typ)
	return nil
}

// AddEdge 添加有向路段
// 参数：from-起点ID，to-终点ID，length-元胞数，orientation-朝向（未指定时由坐标推导）
// 返回：新路段ID；节点不存在、长度非法或路段重复时返回错误，路网不变
func (e *Engine) AddEdge(from, to, length int32, orientation entity.Orientation) (int32, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if err := e.edgeManager.CheckAdd(from, to, length); err != nil {
		return 0, err
	}
	return e.edgeManager.Add(from, to, length, orientation).ID(), nil
}

// Spawn 在指定路段首个元胞生成车辆
// 返回：车辆ID与是否成功；路段不存在或首个元胞被占用时返回false
func (e *Engine) Spawn(edgeID int32) (int32, bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.spawn(edgeID)
}

func (e *Engine) spawn(edgeID int32) (int32, bool) {
	ed, err := e.edgeManager.GetOrError(edgeID)
	if err != nil {
		return 0, false
	}
	c, ok := e.carManager.Spawn(ed)
	if !ok {
		return 0, false
	}
	e.carManager.Prepare()
	return c.ID(), true
}

// SpawnRandom 在随机路段上尝试生成n辆车
// 功能：每次等概率选择一条路段尝试生成，首个元胞被占用则放弃该次
// 返回：成功生成的车辆数
func (e *Engine) SpawnRandom(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	edges := e.edgeManager.Edges()
	spawned := 0
	for range n {
		i := e.generator.Choice(len(edges))
		if i < 0 {
			break
		}
		if _, ok := e.spawn(edges[i].ID()); ok {
			spawned++
		}
	}
	return spawned
}

// Reset 重置仿真
// 功能：删除全部车辆，步数归零；keepTopology为true时保留路网并将信号灯恢复初始状态，否则同时删除路网
func (e *Engine) Reset(keepTopology bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.carManager.Clear()
	if keepTopology {
		e.edgeManager.ClearCells()
		e.nodeManager.ResetSignals()
	} else {
		e.edgeManager.Clear()
		e.nodeManager.Clear()
	}
	e.clock.Init()
	log.Infof("reset (keep topology: %v)", keepTopology)
}

// Configure 修改运行参数
// 功能：校验后替换运行参数，并同步到信号灯时长、路段限速与车辆最大速度
// 返回：参数非法时返回错误，原参数不变
func (e *Engine) Configure(p config.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	old := e.runtimeConfig.C.Params
	e.runtimeConfig.C.Params = p
	if old.GreenDuration != p.GreenDuration || old.YellowDuration != p.YellowDuration {
		e.nodeManager.SetDurations(p.GreenDuration, p.YellowDuration)
	}
	if old.MaxV != p.MaxV {
		e.edgeManager.SetMaxV(p.MaxV)
		e.carManager.SetMaxV(p.MaxV)
	}
	log.Infof("params updated: %+v", p)
	return nil
}

// Params 当前运行参数
func (e *Engine) Params() config.Params {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.runtimeConfig.C.Params
}

// Tick 当前步数
func (e *Engine) Tick() int32 {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.clock.InternalStep
}

// Finished 是否已到达配置的结束步
func (e *Engine) Finished() bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.clock.Finished()
}

// Size 节点数、路段数、车辆数
func (e *Engine) Size() (nodes, edges, cars int) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.nodeManager.Len(), e.edgeManager.Len(), e.carManager.Len()
}

func (e *Engine) String() string {
	n, ed, c := e.Size()
	return fmt.Sprintf("Engine{tick=%d, nodes=%d, edges=%d, cars=%d}", e.Tick(), n, ed, c)
}
