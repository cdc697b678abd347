package layout

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/entity"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/samber/lo"
)

// Intersection 布局文档中的节点
type Intersection struct {
	ID   string  `yaml:"id" json:"id" bson:"id"`
	X    float64 `yaml:"x" json:"x" bson:"x"`
	Y    float64 `yaml:"y" json:"y" bson:"y"`
	Type string  `yaml:"type,omitempty" json:"type,omitempty" bson:"type,omitempty"` // intersection(signalized) | geometry，默认intersection
}

// Road 布局文档中的有向路段
type Road struct {
	From      string `yaml:"from" json:"from" bson:"from"`
	To        string `yaml:"to" json:"to" bson:"to"`
	Lanes     int32  `yaml:"lanes,omitempty" json:"lanes,omitempty" bson:"lanes,omitempty"`             // 仅作记录，仿真为单车道
	Length    int32  `yaml:"length,omitempty" json:"length,omitempty" bson:"length,omitempty"`          // 元胞数，为0时由坐标距离推导
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty" bson:"direction,omitempty"` // horizontal | vertical，为空时由坐标推导
}

// TrafficPatterns 布局附带的运行参数，未出现的字段保持原值
type TrafficPatterns struct {
	SpawnRate      *float64 `yaml:"spawn_rate,omitempty" json:"spawn_rate,omitempty" bson:"spawn_rate,omitempty"`
	GreenDuration  *int32   `yaml:"green_duration,omitempty" json:"green_duration,omitempty" bson:"green_duration,omitempty"`
	YellowDuration *int32   `yaml:"yellow_duration,omitempty" json:"yellow_duration,omitempty" bson:"yellow_duration,omitempty"`
}

// Document 路网布局文档
// 功能：以字符串ID描述节点与路段，可来自YAML/JSON文件或MongoDB
type Document struct {
	Name            string           `yaml:"name,omitempty" json:"name,omitempty" bson:"name,omitempty"`
	Intersections   []Intersection   `yaml:"intersections" json:"intersections" bson:"intersections"`
	Roads           []Road           `yaml:"roads" json:"roads" bson:"roads"`
	TrafficPatterns *TrafficPatterns `yaml:"traffic_patterns,omitempty" json:"traffic_patterns,omitempty" bson:"traffic_patterns,omitempty"`
	InitialVehicles int32            `yaml:"initial_vehicles,omitempty" json:"initial_vehicles,omitempty" bson:"initial_vehicles,omitempty"`
}

// Apply 将布局文档写入构建器
// 功能：按文档顺序为节点分配int32 ID（从0开始），添加节点、路段，并生成初始车辆
// 参数：b-构建器，doc-布局文档
// 返回：字符串ID到节点ID的映射；节点类型非法、引用未知节点等错误
// 算法说明：
// 1. 逐个添加节点，字符串ID重复时报错
// 2. 逐个添加路段，长度为0时取 max(5, 距离/9)
// 3. 生成InitialVehicles辆初始车辆
func Apply(b Builder, doc *Document) (map[string]int32, error) {
	ids := make(map[string]int32, len(doc.Intersections))
	positions := make(map[string]geometry.Point, len(doc.Intersections))
	for i, in := range doc.Intersections {
		if _, ok := ids[in.ID]; ok {
			return nil, fmt.Errorf("duplicate intersection id %q", in.ID)
		}
		typ, err := entity.ParseNodeType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("intersection %q: %w", in.ID, err)
		}
		pos := geometry.Point{X: in.X, Y: in.Y}
		if err := b.AddNode(int32(i), pos, typ); err != nil {
			return nil, fmt.Errorf("intersection %q: %w", in.ID, err)
		}
		ids[in.ID] = int32(i)
		positions[in.ID] = pos
	}
	for _, road := range doc.Roads {
		from, ok := ids[road.From]
		if !ok {
			return nil, fmt.Errorf("road %s->%s: unknown intersection %q", road.From, road.To, road.From)
		}
		to, ok := ids[road.To]
		if !ok {
			return nil, fmt.Errorf("road %s->%s: unknown intersection %q", road.From, road.To, road.To)
		}
		o, err := entity.ParseOrientation(road.Direction)
		if err != nil {
			return nil, fmt.Errorf("road %s->%s: %w", road.From, road.To, err)
		}
		length := road.Length
		if length == 0 {
			a, c := positions[road.From], positions[road.To]
			length = RoadLength(math.Hypot(c.X-a.X, c.Y-a.Y), 5)
		}
		if _, err := b.AddEdge(from, to, length, o); err != nil {
			return nil, fmt.Errorf("road %s->%s: %w", road.From, road.To, err)
		}
	}
	if doc.InitialVehicles > 0 {
		b.SpawnRandom(int(doc.InitialVehicles))
	}
	return ids, nil
}

// ApplyPatterns 用文档中的traffic_patterns覆盖运行参数
func (doc *Document) ApplyPatterns(p config.Params) config.Params {
	if doc.TrafficPatterns == nil {
		return p
	}
	tp := doc.TrafficPatterns
	p.SpawnRate = lo.FromPtrOr(tp.SpawnRate, p.SpawnRate)
	p.GreenDuration = lo.FromPtrOr(tp.GreenDuration, p.GreenDuration)
	p.YellowDuration = lo.FromPtrOr(tp.YellowDuration, p.YellowDuration)
	return p
}

// Configurable 可修改运行参数的构建器
type Configurable interface {
	Builder
	Params() config.Params
	Configure(p config.Params) error
}

// Load 写入布局文档并应用其中的traffic_patterns
func Load(b Configurable, doc *Document) error {
	if _, err := Apply(b, doc); err != nil {
		return err
	}
	return b.Configure(doc.ApplyPatterns(b.Params()))
}
