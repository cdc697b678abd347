package engine

import (
	"fmt"

	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// 距路段末端不超过该元胞数时，头车需要检查终点能否通行
const stopLineDistance = 3

// Step 推进一步
// 功能：按顺序执行 信号灯更新 -> 随机生成车辆 -> 逐路段移动车辆
// 返回：没有路网时返回ErrNoTopology
// 说明：单辆车状态不一致时只移除该车并记录日志，不中断本步
func (e *Engine) Step() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.nodeManager.Len() == 0 || e.edgeManager.Len() == 0 {
		return ErrNoTopology
	}
	e.clock.Tick()
	tick := e.clock.InternalStep

	e.nodeManager.UpdateSignals()
	e.spawnRandomCar()
	for _, ed := range e.edgeManager.Edges() {
		e.moveEdge(ed, tick)
	}
	e.carManager.Prepare()
	return nil
}

// spawnRandomCar 以spawn_rate的概率在等概率选中的路段上生成一辆车
func (e *Engine) spawnRandomCar() {
	if !e.generator.PTrue(e.runtimeConfig.C.Params.SpawnRate) {
		return
	}
	edges := e.edgeManager.Edges()
	if i := e.generator.Choice(len(edges)); i >= 0 {
		e.spawn(edges[i].ID())
	}
}

// moveEdge 移动一条路段上的车辆
// 功能：先按位置从大到小收集本路段的车辆，再依次处理，前车先于后车
// 参数：ed-路段，tick-当前步数
// 说明：后车的前车取自收集时的列表，前车本步驶入后继路段后位置为0，后车间距为负，本步停止
func (e *Engine) moveEdge(ed entity.IEdge, tick int32) {
	cars := make([]entity.ICar, 0)
	for pos := ed.Length() - 1; pos >= 0; pos-- {
		id := ed.CarAt(pos)
		if id == entity.NoCar {
			continue
		}
		c, err := e.carManager.GetOrError(id)
		if err != nil {
			e.fault(ed, pos, id, tick, err)
			continue
		}
		if c.EdgeID() != ed.ID() || c.Position() != pos {
			e.fault(ed, pos, id, tick, fmt.Errorf("car records edge %d position %d", c.EdgeID(), c.Position()))
			continue
		}
		cars = append(cars, c)
	}
	// 收集过程中的故障可能移除了已在列表中的车辆
	cars = lo.Filter(cars, func(c entity.ICar, _ int) bool {
		_, err := e.carManager.GetOrError(c.ID())
		return err == nil
	})
	for i, c := range cars {
		if c.Processed(tick) {
			continue
		}
		var ahead entity.ICar
		if i > 0 {
			ahead = cars[i-1]
		}
		e.moveCar(ed, c, ahead, tick)
	}
}

// moveCar 按元胞自动机规则移动单辆车
// 参数：ahead-同一路段上的前车，头车为nil
// 算法说明：
// 1. 计算间距：有前车时为前车位置-自身位置-1；
// 头车为到末端的距离，距末端不超过stopLineDistance且终点不放行时停在末端前，
// 到达末端且放行时尝试驶入后继路段首个元胞，成功则速度截断为1并结束本车处理，失败则间距为0
// 2. 加速：速度加一，不超过车辆与路段的最大速度
// 3. 减速：速度不超过间距
// 4. 随机慢化：速度大于0时以p_slowdown的概率减一
// 5. 前进：移动速度个元胞
func (e *Engine) moveCar(ed entity.IEdge, c entity.ICar, ahead entity.ICar, tick int32) {
	pos := c.Position()
	var gap int32
	if ahead != nil {
		gap = ahead.Position() - pos - 1
	} else {
		remaining := ed.Length() - 1 - pos
		gap = remaining
		if remaining <= stopLineDistance {
			// 不放行时间距保持为remaining，车辆最多停在末端元胞
			permitted := e.nodeManager.Get(ed.ToID()).PermitsPassage(ed.Orientation())
			if permitted && remaining == 0 && e.handOff(ed, c, tick) {
				return
			}
		}
	}

	v := min(c.V()+1, c.MaxV(), ed.MaxV())
	v = min(v, gap)
	if v > 0 && e.generator.PTrue(e.runtimeConfig.C.Params.PSlowdown) {
		v--
	}
	v = max(v, 0)
	c.SetV(v)

	if v > 0 {
		newPos := min(pos+v, ed.Length()-1)
		ed.SetCell(pos, entity.NoCar)
		ed.SetCell(newPos, c.ID())
		c.MoveTo(ed.ID(), newPos)
	}
	c.MarkProcessed(tick)
}

// handOff 将位于路段末端的车辆移入随机后继路段的首个元胞
// 返回：是否成功；死路或后继路段首个元胞被占用时返回false
func (e *Engine) handOff(ed entity.IEdge, c entity.ICar, tick int32) bool {
	next, ok := e.router.Next(ed)
	if !ok || !next.IsEntryFree() {
		return false
	}
	ed.SetCell(c.Position(), entity.NoCar)
	next.SetCell(0, c.ID())
	c.MoveTo(next.ID(), 0)
	c.SetV(min(c.V(), 1))
	c.MarkProcessed(tick)
	return true
}

// fault 处理状态不一致的车辆：清除元胞、移除车辆并记录日志
func (e *Engine) fault(ed entity.IEdge, pos int32, id int32, tick int32, err error) {
	e.carManager.Remove(id)
	if ed.CarAt(pos) == id {
		ed.SetCell(pos, entity.NoCar)
	}
	log.WithFields(logrus.Fields{
		"tick":     tick,
		"car":      id,
		"edge":     ed.ID(),
		"position": pos,
	}).Warnf("remove inconsistent car: %v", err)
}
