package car

import (
	"math"

	"github.com/Takshsingh313/UrbanFlow/utils/container"
)

// Car 车辆
// 功能：记录车辆的速度、所在路段与元胞位置
// 说明：processedTick为最近一次被处理的步数，用于避免同一步内换道后被重复处理
type Car struct {
	container.IncrementalItemBase

	id            int32
	v             int32
	maxV          int32
	edgeID        int32
	position      int32
	processedTick int32
}

func newCar(id, maxV, edgeID int32) *Car {
	return &Car{
		id:            id,
		maxV:          maxV,
		edgeID:        edgeID,
		processedTick: math.MinInt32,
	}
}

func (c *Car) ID() int32 {
	return c.id
}

func (c *Car) V() int32 {
	return c.v
}

func (c *Car) SetV(v int32) {
	c.v = v
}

func (c *Car) MaxV() int32 {
	return c.maxV
}

// SetMaxV 修改最大速度，当前速度超过时截断
func (c *Car) SetMaxV(v int32) {
	c.maxV = v
	c.v = min(c.v, v)
}

func (c *Car) EdgeID() int32 {
	return c.edgeID
}

func (c *Car) Position() int32 {
	return c.position
}

// MoveTo 更新车辆所在路段与位置（不修改元胞）
func (c *Car) MoveTo(edgeID int32, position int32) {
	c.edgeID = edgeID
	c.position = position
}

func (c *Car) Processed(tick int32) bool {
	return c.processedTick == tick
}

func (c *Car) MarkProcessed(tick int32) {
	c.processedTick = tick
}
