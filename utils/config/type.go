package config

// InputPath 指定布局数据来源的配置（MongoDB、文件系统、内置生成器）
// 功能：定义路网布局的输入路径配置结构，支持多种数据源
// 说明：优先级为 文件 > MongoDB > 内置生成器
type InputPath struct {
	DB              string  `yaml:"db,omitempty"`               // 数据库名
	Col             string  `yaml:"col,omitempty"`              // 集合名
	Name            string  `yaml:"name,omitempty"`             // 布局名（MongoDB中按name筛选，为空则取第一条）
	File            string  `yaml:"file,omitempty"`             // 文件路径（优先级高于MongoDB）
	Pattern         string  `yaml:"pattern,omitempty"`          // 内置生成器：grid manhattan roundabout t_intersection
	Rows            int32   `yaml:"rows,omitempty"`             // grid/manhattan行数
	Cols            int32   `yaml:"cols,omitempty"`             // grid/manhattan列数
	Spacing         float64 `yaml:"spacing,omitempty"`          // grid路口间距
	InitialVehicles int32   `yaml:"initial_vehicles,omitempty"` // 初始车辆数，为0则使用生成器默认值
}

// GetDb 获取数据库名
// 功能：返回配置的数据库名称
// 返回：数据库名称字符串
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
// 功能：返回配置的集合名称
// 返回：集合名称字符串
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定模拟器所有输入数据的配置项
type Input struct {
	URI    string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Layout InputPath `yaml:"layout"`        // 路网布局
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：Total<=0表示不限步数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒），独立部署模式下也是推进节拍
}

// Params 元胞自动机运行参数
// 功能：定义每步规则使用的可在运行时修改的参数
type Params struct {
	PSlowdown      float64 `yaml:"p_slowdown" json:"p_slowdown"`           // 随机减速概率
	MaxV           int32   `yaml:"max_v" json:"max_v"`                     // 最大速度（元胞/步）
	SpawnRate      float64 `yaml:"spawn_rate" json:"spawn_rate"`           // 每步生成车辆的概率
	GreenDuration  int32   `yaml:"green_duration" json:"green_duration"`   // 绿灯时长（步）
	YellowDuration int32   `yaml:"yellow_duration" json:"yellow_duration"` // 黄灯时长（步）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step    ControlStep `yaml:"step"`
	Seed    uint64      `yaml:"seed"`              // 随机数种子
	Params  Params      `yaml:"params"`            // 运行参数
	Running bool        `yaml:"running,omitempty"` // 启动后立即开始推进（否则等待start指令）
}

// Server 对外服务配置
type Server struct {
	WSListen  string `yaml:"ws_listen,omitempty"`  // websocket监听地址，为空则不启动
	LayoutDir string `yaml:"layout_dir,omitempty"` // load_city_layout指令可读取的布局文件目录，为空则只允许内置生成器
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、服务等所有配置项
type Config struct {
	Input   Input   `yaml:"input"`            // 输入
	Control Control `yaml:"control"`          // 模拟过程控制
	Server  Server  `yaml:"server,omitempty"` // 对外服务
}
