package server

import (
	"math"

	"github.com/Takshsingh313/UrbanFlow/engine"
)

// 服务端推送的消息类型
const (
	TypeInit   = "init"
	TypeUpdate = "update"
	TypeError  = "error"
)

// 客户端指令
const (
	ActionStart          = "start"
	ActionStop           = "stop"
	ActionReset          = "reset"
	ActionSetSpawnRate   = "set_spawn_rate"
	ActionSetLightTiming = "set_light_timing"
	ActionSetSlowdown    = "set_slowdown"
	ActionSetMaxV        = "set_max_v"
	ActionRegenerateGrid = "regenerate_grid"
	ActionLoadCityLayout = "load_city_layout"
)

// InitMessage 完整状态，连接建立与路网变化时发送
type InitMessage struct {
	Type  string          `json:"type"`
	State engine.Snapshot `json:"state"`
}

// UpdateMessage 每步推送的增量状态
type UpdateMessage struct {
	Type   string              `json:"type"`
	Tick   int32               `json:"tick"`
	Stats  engine.Statistics   `json:"stats"`
	Cars   []engine.CarState   `json:"cars"`
	Lights []engine.LightState `json:"lights"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Command 客户端指令，未出现的字段取默认值
type Command struct {
	Action          string   `json:"action"`
	Value           *float64 `json:"value,omitempty"`
	Rows            *float64 `json:"rows,omitempty"`
	Cols            *float64 `json:"cols,omitempty"`
	InitialVehicles *float64 `json:"initial_vehicles,omitempty"`
	File            string   `json:"file,omitempty"`
	LayoutType      string   `json:"layout_type,omitempty"`
}

func round(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

// roundStatistics 推送前舍入：速度保留2位，密度与流量保留3位
func roundStatistics(s engine.Statistics) engine.Statistics {
	s.Speed = round(s.Speed, 2)
	s.Density = round(s.Density, 3)
	s.Flow = round(s.Flow, 3)
	return s
}
