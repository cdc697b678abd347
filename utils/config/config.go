package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams = errors.New("invalid params")
)

// 默认参数
const (
	DefaultPSlowdown      = 0.3
	DefaultMaxV           = 5
	DefaultSpawnRate      = 0.05
	DefaultGreenDuration  = 30
	DefaultYellowDuration = 5
	DefaultInterval       = 0.1
)

// DefaultParams 返回默认运行参数
func DefaultParams() Params {
	return Params{
		PSlowdown:      DefaultPSlowdown,
		MaxV:           DefaultMaxV,
		SpawnRate:      DefaultSpawnRate,
		GreenDuration:  DefaultGreenDuration,
		YellowDuration: DefaultYellowDuration,
	}
}

// Default 返回带默认值的配置
// 功能：作为YAML解析的初始值，配置文件中未出现的字段保持默认
// 返回：默认配置
func Default() Config {
	return Config{
		Input: Input{
			Layout: InputPath{Pattern: "grid", Rows: 4, Cols: 4},
		},
		Control: Control{
			Step:   ControlStep{Interval: DefaultInterval},
			Params: DefaultParams(),
		},
	}
}

// Validate 检查运行参数合法性
// 功能：在参数进入仿真前做边界检查
// 返回：不合法时返回包装了ErrInvalidParams的错误
func (p Params) Validate() error {
	if p.PSlowdown < 0 || p.PSlowdown > 1 {
		return fmt.Errorf("%w: p_slowdown %v out of [0, 1]", ErrInvalidParams, p.PSlowdown)
	}
	if p.SpawnRate < 0 || p.SpawnRate > 1 {
		return fmt.Errorf("%w: spawn_rate %v out of [0, 1]", ErrInvalidParams, p.SpawnRate)
	}
	if p.MaxV < 1 {
		return fmt.Errorf("%w: max_v %d < 1", ErrInvalidParams, p.MaxV)
	}
	if p.GreenDuration < 1 {
		return fmt.Errorf("%w: green_duration %d < 1", ErrInvalidParams, p.GreenDuration)
	}
	if p.YellowDuration < 1 {
		return fmt.Errorf("%w: yellow_duration %d < 1", ErrInvalidParams, p.YellowDuration)
	}
	return nil
}

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息
// 说明：C.Params可在运行时修改，修改须经过Validate
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 算法说明：
// 1. 复制原始配置
// 2. 设置默认值：如果未指定步长则使用DefaultInterval
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = DefaultInterval
	}

	return rc
}
