package route

import (
	"github.com/Takshsingh313/UrbanFlow/entity"
)

// Router 随机后继路段选择器
// 功能：在路段终点的驶出路段中等概率选择一条
// 说明：不做路径规划，随机数来自任务上下文的随机数引擎
type Router struct {
	ctx entity.ITaskContext
}

func New(ctx entity.ITaskContext) *Router {
	return &Router{ctx: ctx}
}

// Next 选择后继路段
// 参数：edge-当前路段
// 返回：后继路段，终点没有驶出路段（死路）时返回false
func (r *Router) Next(edge entity.IEdge) (entity.IEdge, bool) {
	outs := r.ctx.NodeManager().Get(edge.ToID()).OutEdgeIDs()
	i := r.ctx.Generator().Choice(len(outs))
	if i < 0 {
		return nil, false
	}
	return r.ctx.EdgeManager().Get(outs[i]), true
}
