package trafficlight

import (
	"fmt"
	"math"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/Takshsingh313/UrbanFlow/entity"
)

const (
	green  = mapv2.LightState_LIGHT_STATE_GREEN
	yellow = mapv2.LightState_LIGHT_STATE_YELLOW
	red    = mapv2.LightState_LIGHT_STATE_RED
)

// 四相位程序中各相位的灯色，下标为entity.Axis
var phaseStates = [4][2]mapv2.LightState{
	{green, red},  // 南北绿
	{yellow, red}, // 南北黄
	{red, green},  // 东西绿
	{red, yellow}, // 东西黄
}

// TrafficLight 双轴定时信号灯
// 功能：维护一个路口南北、东西两条轴的灯色，两轴共享一个计时器
// 说明：任一时刻至多一条轴处于绿灯或黄灯，另一条轴为红灯
type TrafficLight struct {
	nodeID int32
	states [2]mapv2.LightState // 下标为entity.Axis
	timer  int32               // 当前阶段已经过的步数
	green  int32               // 绿灯时长（步）
	yellow int32               // 黄灯时长（步）
}

// New 创建双轴信号灯
// 功能：初始化为南北绿、东西红、计时器为0
// 参数：nodeID-所属路口ID，greenDuration-绿灯时长，yellowDuration-黄灯时长
// 返回：信号灯实例
func New(nodeID int32, greenDuration, yellowDuration int32) *TrafficLight {
	l := &TrafficLight{
		nodeID: nodeID,
		green:  greenDuration,
		yellow: yellowDuration,
	}
	l.Reset()
	return l
}

// Reset 恢复初始状态（南北绿、东西红、计时器为0），时长不变
func (l *TrafficLight) Reset() {
	l.states = [2]mapv2.LightState{green, red}
	l.timer = 0
}

// Update 推进一步
// 功能：计时器加一，然后依次处理南北轴、东西轴的状态转换
// 算法说明：
// 1. 绿灯：计时达到绿灯时长后转黄灯，计时清零
// 2. 黄灯：计时达到黄灯时长后转红灯，同时强制另一轴转绿灯，计时清零
// 3. 红灯：仅当另一轴也为红灯时转绿灯，计时清零
// 说明：先南北后东西的顺序使两轴同时为红时由南北轴先获得绿灯
func (l *TrafficLight) Update() {
	l.timer++
	l.transit(entity.AxisNS)
	l.transit(entity.AxisEW)
}

func (l *TrafficLight) transit(axis entity.Axis) {
	other := axis.Other()
	switch l.states[axis] {
	case green:
		if l.timer >= l.green {
			l.states[axis] = yellow
			l.timer = 0
		}
	case yellow:
		if l.timer >= l.yellow {
			l.states[axis] = red
			l.states[other] = green
			l.timer = 0
		}
	case red:
		if l.states[other] == red {
			l.states[axis] = green
			l.timer = 0
		}
	}
}

func (l *TrafficLight) State(axis entity.Axis) mapv2.LightState {
	return l.states[axis]
}

// Permits 指定轴是否放行，仅绿灯放行
func (l *TrafficLight) Permits(axis entity.Axis) bool {
	return l.states[axis] == green
}

func (l *TrafficLight) Timer() int32 {
	return l.timer
}

func (l *TrafficLight) Durations() (int32, int32) {
	return l.green, l.yellow
}

// SetDurations 修改绿灯、黄灯时长，当前灯色与计时不变
func (l *TrafficLight) SetDurations(greenDuration, yellowDuration int32) {
	l.green = greenDuration
	l.yellow = yellowDuration
}

// Program 以四相位程序的形式导出信号灯
// 功能：生成mapv2.TrafficLight，每个相位的States依次为南北轴、东西轴的灯色
// 返回：信号灯程序
func (l *TrafficLight) Program() *mapv2.TrafficLight {
	tl := &mapv2.TrafficLight{
		JunctionId: l.nodeID,
		Phases:     make([]*mapv2.Phase, 0, len(phaseStates)),
	}
	for i, s := range phaseStates {
		d := l.green
		if i%2 == 1 {
			d = l.yellow
		}
		tl.Phases = append(tl.Phases, &mapv2.Phase{
			Duration: float64(d),
			States:   []mapv2.LightState{s[entity.AxisNS], s[entity.AxisEW]},
		})
	}
	return tl
}

// PhaseIndex 当前灯色对应的相位下标，两轴同为红灯时返回-1
func (l *TrafficLight) PhaseIndex() int32 {
	for i, s := range phaseStates {
		if s == l.states {
			return int32(i)
		}
	}
	return -1
}

// RemainingTime 当前相位剩余步数
func (l *TrafficLight) RemainingTime() float64 {
	switch l.PhaseIndex() {
	case 0, 2:
		return float64(max(l.green-l.timer, 0))
	case 1, 3:
		return float64(max(l.yellow-l.timer, 0))
	default:
		return 0
	}
}

// SetProgram 以四相位程序设置信号灯时长
// 功能：校验程序结构与Program()一致，并从中读取绿灯、黄灯时长
// 参数：tl-信号灯程序
// 返回：程序结构不符或时长非法时返回错误
// 说明：两轴共享同一组时长，因此第0、2相位与第1、3相位的时长必须分别相同
func (l *TrafficLight) SetProgram(tl *mapv2.TrafficLight) error {
	if tl.JunctionId != l.nodeID {
		return fmt.Errorf("set node %d with wrong traffic light id %d", l.nodeID, tl.JunctionId)
	}
	if len(tl.Phases) != len(phaseStates) {
		return fmt.Errorf("two-axis traffic light needs %d phases, got %d", len(phaseStates), len(tl.Phases))
	}
	for i, p := range tl.Phases {
		if len(p.States) != 2 || p.States[0] != phaseStates[i][0] || p.States[1] != phaseStates[i][1] {
			return fmt.Errorf("phase %d states %v do not match %v", i, p.States, phaseStates[i])
		}
	}
	if tl.Phases[0].Duration != tl.Phases[2].Duration || tl.Phases[1].Duration != tl.Phases[3].Duration {
		return fmt.Errorf("both axes must share green and yellow durations")
	}
	g := int32(math.Round(tl.Phases[0].Duration))
	y := int32(math.Round(tl.Phases[1].Duration))
	if g < 1 || y < 1 {
		return fmt.Errorf("durations must be at least 1 step, got green=%d yellow=%d", g, y)
	}
	l.SetDurations(g, y)
	return nil
}

// CheckPhase 检查相位下标与剩余时间是否合法，不修改任何状态
func CheckPhase(index int32, remainingT float64) error {
	if index < 0 || int(index) >= len(phaseStates) {
		return fmt.Errorf("phase index %d out of range [0, %d)", index, len(phaseStates))
	}
	if remainingT < 0 {
		return fmt.Errorf("invalid remaining time %v", remainingT)
	}
	return nil
}

// SetPhase 跳转到指定相位
// 功能：按相位下标设置两轴灯色，并根据剩余时间设置计时器
// 参数：index-相位下标[0, 4)，remainingT-剩余步数
// 返回：参数非法时返回错误
func (l *TrafficLight) SetPhase(index int32, remainingT float64) error {
	if err := CheckPhase(index, remainingT); err != nil {
		return err
	}
	d := l.green
	if index%2 == 1 {
		d = l.yellow
	}
	elapsed := d - int32(math.Round(math.Min(remainingT, float64(d))))
	l.states = phaseStates[index]
	l.timer = max(elapsed, 0)
	return nil
}
