package clock

import (
	"fmt"
	"sync"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
)

// Clock 仿真时钟
// 功能：管理仿真的步数推进，并换算出对应的仿真时间
// 说明：一步即元胞自动机的一个tick，T = InternalStep * DT
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步对应的时间（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)，不大于START时表示不限步数

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数

	lock *sync.RWMutex // RPC读取时间时使用的锁
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	dt := stepConfig.Interval
	if dt <= 0 {
		dt = config.DefaultInterval
	}
	c := &Clock{
		DT:         dt,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态
// 说明：重置内部步数为起始步，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Tick 推进一步
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Bounded 是否设置了结束步
func (c *Clock) Bounded() bool {
	return c.END_STEP > c.START_STEP
}

// Finished 是否已到达结束步（未设置结束步时总是false）
func (c *Clock) Finished() bool {
	return c.Bounded() && c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS）
func (c *Clock) String() string {
	return Format(c.T)
}

// Format 将仿真时间（秒）格式化为HH:MM:SS
func Format(t float64) string {
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
