// 内置路网生成器与布局文档，路网通过Builder接口写入仿真引擎
package layout

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/Takshsingh313/UrbanFlow/entity"
)

// Builder 路网构建接口（由engine.Engine实现）
type Builder interface {
	AddNode(id int32, pos geometry.Point, typ entity.NodeType) error
	AddEdge(from, to, length int32, orientation entity.Orientation) (int32, error)
	SpawnRandom(n int) int
}

// 内置生成器名称
const (
	PatternGrid          = "grid"
	PatternManhattan     = "manhattan"
	PatternRoundabout    = "roundabout"
	PatternTIntersection = "t_intersection"
)

// Patterns 全部内置生成器名称
var Patterns = []string{PatternGrid, PatternManhattan, PatternRoundabout, PatternTIntersection}

// 坐标到元胞数的换算：每9个坐标单位一个元胞
const unitsPerCell = 9

// RoadLength 由坐标距离换算路段元胞数，不小于minCells
func RoadLength(dist float64, minCells int32) int32 {
	return max(minCells, int32(dist/unitsPerCell))
}

// addTwoWay 添加一对方向相反的路段
func addTwoWay(b Builder, a, c, length int32, o entity.Orientation) error {
	if _, err := b.AddEdge(a, c, length, o); err != nil {
		return err
	}
	if _, err := b.AddEdge(c, a, length, o); err != nil {
		return err
	}
	return nil
}

// Grid 生成方格路网
// 功能：rows*cols个信控路口，相邻路口之间为双向路段
// 参数：b-构建器，rows/cols-行列数（不小于2），spacing-路口间距，initialVehicles-初始车辆数，不大于0时取8
// 返回：构建错误
// 说明：节点ID为r*cols+c，坐标原点偏移80
func Grid(b Builder, rows, cols int32, spacing float64, initialVehicles int32) error {
	rows, cols = max(rows, 2), max(cols, 2)
	if spacing <= 0 {
		spacing = 180
	}
	edges, err := rectangle(b, rows, cols, 80, spacing, spacing)
	if err != nil {
		return err
	}
	if initialVehicles <= 0 {
		initialVehicles = 8
	}
	b.SpawnRandom(min(int(initialVehicles), edges))
	return nil
}

// Manhattan 生成长方形街区（200x150）的方格路网，默认3行4列
// 说明：initialVehicles不大于0时取路段数的1/4，并限制在[5, 12]
func Manhattan(b Builder, rows, cols int32, initialVehicles int32) error {
	if rows <= 0 {
		rows = 3
	}
	if cols <= 0 {
		cols = 4
	}
	edges, err := rectangle(b, rows, cols, 100, 200, 150)
	if err != nil {
		return err
	}
	if initialVehicles <= 0 {
		initialVehicles = int32(min(12, max(5, edges/4)))
	}
	b.SpawnRandom(min(int(initialVehicles), edges))
	return nil
}

// rectangle 生成rows*cols的信控路口阵列及相邻路口间的双向路段
// 返回：路段数
func rectangle(b Builder, rows, cols int32, offset, width, height float64) (int, error) {
	id := func(r, c int32) int32 { return r*cols + c }
	for r := range rows {
		for c := range cols {
			pos := geometry.Point{X: offset + float64(c)*width, Y: offset + float64(r)*height}
			if err := b.AddNode(id(r, c), pos, entity.NodeTypeIntersection); err != nil {
				return 0, err
			}
		}
	}
	hLength, vLength := RoadLength(width, 15), RoadLength(height, 15)
	edges := 0
	for r := range rows {
		for c := range cols {
			if c < cols-1 {
				if err := addTwoWay(b, id(r, c), id(r, c+1), hLength, entity.OrientationHorizontal); err != nil {
					return 0, err
				}
				edges += 2
			}
			if r < rows-1 {
				if err := addTwoWay(b, id(r, c), id(r+1, c), vLength, entity.OrientationVertical); err != nil {
					return 0, err
				}
				edges += 2
			}
		}
	}
	return edges, nil
}

// Roundabout 生成环岛路网
// 功能：8个几何节点组成单向环路，4个信控入口节点与环路双向相连
// 参数：b-构建器，initialVehicles-初始车辆数，不大于0时按路段数取默认值
// 说明：环路节点ID为0..7，入口节点ID为8..11
func Roundabout(b Builder, initialVehicles int32) error {
	const (
		cx, cy    = 400.0, 300.0
		radius    = 120.0
		exits     = 4
		ringNodes = exits * 2
		entryDist = radius + 180
	)
	for i := range int32(ringNodes) {
		angle := 2 * math.Pi * float64(i) / ringNodes
		pos := geometry.Point{X: math.Trunc(cx + radius*math.Cos(angle)), Y: math.Trunc(cy + radius*math.Sin(angle))}
		if err := b.AddNode(i, pos, entity.NodeTypeGeometry); err != nil {
			return err
		}
	}
	ringLength := RoadLength(2*math.Pi*radius/ringNodes, 8)
	for i := range int32(ringNodes) {
		if _, err := b.AddEdge(i, (i+1)%ringNodes, ringLength, entity.OrientationHorizontal); err != nil {
			return err
		}
	}
	entryLength := RoadLength(entryDist-radius, 15)
	entryID := int32(ringNodes)
	for i := int32(0); i < ringNodes; i += ringNodes / exits {
		angle := 2 * math.Pi * float64(i) / ringNodes
		pos := geometry.Point{X: math.Trunc(cx + entryDist*math.Cos(angle)), Y: math.Trunc(cy + entryDist*math.Sin(angle))}
		if err := b.AddNode(entryID, pos, entity.NodeTypeIntersection); err != nil {
			return err
		}
		if err := addTwoWay(b, entryID, i, entryLength, entity.OrientationHorizontal); err != nil {
			return err
		}
		entryID++
	}
	edges := ringNodes + 2*exits
	if initialVehicles <= 0 {
		initialVehicles = int32(min(10, max(4, edges/3)))
	}
	b.SpawnRandom(min(int(initialVehicles), edges))
	return nil
}

// TIntersection 生成单路口路网：中心信控路口与四个方向的几何节点双向相连
// 说明：中心节点ID为0，北、南、东、西依次为1..4
func TIntersection(b Builder, initialVehicles int32) error {
	const cx, cy = 400.0, 300.0
	nodes := []struct {
		pos geometry.Point
		typ entity.NodeType
	}{
		{geometry.Point{X: cx, Y: cy}, entity.NodeTypeIntersection},
		{geometry.Point{X: cx, Y: cy - 180}, entity.NodeTypeGeometry},
		{geometry.Point{X: cx, Y: cy + 180}, entity.NodeTypeGeometry},
		{geometry.Point{X: cx + 200, Y: cy}, entity.NodeTypeGeometry},
		{geometry.Point{X: cx - 200, Y: cy}, entity.NodeTypeGeometry},
	}
	for i, n := range nodes {
		if err := b.AddNode(int32(i), n.pos, n.typ); err != nil {
			return err
		}
	}
	vLength, hLength := RoadLength(180, 15), RoadLength(200, 15)
	arms := []struct {
		id     int32
		length int32
		o      entity.Orientation
	}{
		{1, vLength, entity.OrientationVertical},
		{2, vLength, entity.OrientationVertical},
		{3, hLength, entity.OrientationHorizontal},
		{4, hLength, entity.OrientationHorizontal},
	}
	for _, arm := range arms {
		if err := addTwoWay(b, 0, arm.id, arm.length, arm.o); err != nil {
			return err
		}
	}
	edges := 2 * len(arms)
	if initialVehicles <= 0 {
		initialVehicles = int32(edges)
	}
	b.SpawnRandom(min(int(initialVehicles), edges))
	return nil
}

// Pattern 按名称调用内置生成器
// 参数：name-生成器名称，rows/cols/spacing仅对grid与manhattan有效，initialVehicles不大于0时取默认值
// 返回：名称未知或构建失败时返回错误
func Pattern(b Builder, name string, rows, cols int32, spacing float64, initialVehicles int32) error {
	switch name {
	case PatternGrid, "":
		return Grid(b, rows, cols, spacing, initialVehicles)
	case PatternManhattan:
		return Manhattan(b, rows, cols, initialVehicles)
	case PatternRoundabout:
		return Roundabout(b, initialVehicles)
	case PatternTIntersection:
		return TIntersection(b, initialVehicles)
	default:
		return fmt.Errorf("unknown layout pattern %q", name)
	}
}
