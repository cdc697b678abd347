package car

import (
	"fmt"

	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/utils/container"
	"github.com/samber/lo"
)

// Car管理器
// 功能：车辆的唯一所有者，负责车辆的生成、删除与查找
// 说明：data即时更新；cars为增量数组，新增与删除在Prepare后生效
type CarManager struct {
	ctx entity.ITaskContext

	data   map[int32]*Car
	cars   *container.IncrementalArray[*Car]
	nextID int32
}

// NewManager 创建Car管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的Car管理器实例
func NewManager(ctx entity.ITaskContext) *CarManager {
	m := &CarManager{ctx: ctx}
	m.Clear()
	return m
}

// Spawn 在路段首个元胞生成车辆
// 功能：首个元胞为空时创建速度为0、位置为0的车辆，最大速度取当前运行参数
// 参数：edge-目标路段
// 返回：新车辆与是否成功，元胞被占用时返回false
// 说明：新车辆在Prepare后才出现在Cars()中
func (m *CarManager) Spawn(edge entity.IEdge) (entity.ICar, bool) {
	if !edge.IsEntryFree() {
		return nil, false
	}
	c := newCar(m.nextID, m.ctx.RuntimeConfig().C.Params.MaxV, edge.ID())
	m.nextID++
	edge.SetCell(0, c.id)
	m.data[c.id] = c
	m.cars.Add(c)
	log.Debugf("spawn car %d on edge %d", c.id, edge.ID())
	return c, true
}

// Remove 移除车辆
// 功能：清除车辆占据的元胞（若元胞确为该车）并从管理器删除
// 参数：id-车辆ID
// 说明：删除在Prepare后从Cars()中生效
func (m *CarManager) Remove(id int32) {
	c, ok := m.data[id]
	if !ok {
		return
	}
	if e, err := m.ctx.EdgeManager().GetOrError(c.edgeID); err == nil {
		if c.position >= 0 && c.position < e.Length() && e.CarAt(c.position) == id {
			e.SetCell(c.position, entity.NoCar)
		}
	}
	delete(m.data, id)
	m.cars.Remove(c)
}

// Get 根据ID获取Car实例，如果不存在则panic
func (m *CarManager) Get(id int32) entity.ICar {
	if c, ok := m.data[id]; !ok {
		log.Panicf("no id %d in car data", id)
		return nil
	} else {
		return c
	}
}

// GetOrError 根据ID获取Car实例，如果不存在则返回错误
func (m *CarManager) GetOrError(id int32) (entity.ICar, error) {
	if c, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in car data", id)
	} else {
		return c, nil
	}
}

func (m *CarManager) Cars() []entity.ICar {
	return lo.Map(m.cars.Data(), func(c *Car, _ int) entity.ICar { return c })
}

func (m *CarManager) Len() int {
	return m.cars.Len()
}

// SetMaxV 修改全部车辆最大速度
func (m *CarManager) SetMaxV(v int32) {
	for _, c := range m.data {
		c.SetMaxV(v)
	}
}

// Prepare 使新增、删除生效
func (m *CarManager) Prepare() {
	m.cars.Prepare()
}

// Clear 删除全部车辆（不修改元胞），ID重新从0分配
func (m *CarManager) Clear() {
	m.data = make(map[int32]*Car)
	m.cars = container.NewIncrementalArray[*Car]()
	m.nextID = 0
}
