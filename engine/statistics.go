package engine

import (
	"math"

	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/samber/lo"
)

// 流量换算系数
const flowScale = 10

// Statistics 宏观交通指标
type Statistics struct {
	Speed        float64 `json:"speed"`        // 平均速度（元胞/步）
	Density      float64 `json:"density"`      // 车辆数/路段总长度
	Flow         float64 `json:"flow"`         // density*speed*10
	VehicleCount int     `json:"vehicleCount"` // 车辆数
}

// Statistics 计算当前宏观交通指标
// 功能：没有车辆时全部为0；否则计算平均速度、密度与流量
// 说明：结果不做舍入
func (e *Engine) Statistics() Statistics {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.statistics()
}

func (e *Engine) statistics() Statistics {
	cars := e.carManager.Cars()
	if len(cars) == 0 {
		return Statistics{}
	}
	count := float64(len(cars))
	speed := float64(lo.SumBy(cars, func(c entity.ICar) int32 { return c.V() })) / count
	density := 0.0
	if total := e.edgeManager.TotalLength(); total > 0 {
		density = count / float64(total)
	}
	return Statistics{
		Speed:        math.Abs(speed),
		Density:      math.Abs(density),
		Flow:         math.Abs(density * speed * flowScale),
		VehicleCount: len(cars),
	}
}
