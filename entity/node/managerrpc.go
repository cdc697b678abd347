package node

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/Takshsingh313/UrbanFlow/entity/node/trafficlight"
)

// Register 将Node管理器注册到sidecar
// 功能：提供信号灯服务，JunctionId即路口节点ID
func (m *NodeManager) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(m, opts...)
		},
	)
}

// GetTrafficLight RPC接口：获取指定路口的信号灯程序、当前相位和剩余时间
func (m *NodeManager) GetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.GetTrafficLightRequest],
) (*connect.Response[mapv2.GetTrafficLightResponse], error) {
	lock := m.ctx.Locker()
	lock.RLock()
	defer lock.RUnlock()
	n, err := m.getIntersection(in.Msg.JunctionId)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&mapv2.GetTrafficLightResponse{
		TrafficLight:  n.trafficLight.Program(),
		PhaseIndex:    n.trafficLight.PhaseIndex(),
		TimeRemaining: n.trafficLight.RemainingTime(),
	}), nil
}

// SetTrafficLight RPC接口：设置指定路口的信号灯时长与相位
// 说明：程序须为GetTrafficLight返回的四相位结构
func (m *NodeManager) SetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.SetTrafficLightRequest],
) (*connect.Response[mapv2.SetTrafficLightResponse], error) {
	req := in.Msg
	if req.TrafficLight == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyTrafficLight)
	}
	lock := m.ctx.Locker()
	lock.Lock()
	defer lock.Unlock()
	n, err := m.getIntersection(req.TrafficLight.JunctionId)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	// 相位不合法时不能先改动时长
	if err := trafficlight.CheckPhase(req.PhaseIndex, req.TimeRemaining); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := n.trafficLight.SetProgram(req.TrafficLight); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := n.trafficLight.SetPhase(req.PhaseIndex, req.TimeRemaining); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	log.Infof("traffic light of node %d set by rpc", n.id)
	return connect.NewResponse(&mapv2.SetTrafficLightResponse{}), nil
}

// SetTrafficLightPhase RPC接口：设置指定路口的当前相位和剩余时间
func (m *NodeManager) SetTrafficLightPhase(
	ctx context.Context, in *connect.Request[mapv2.SetTrafficLightPhaseRequest],
) (*connect.Response[mapv2.SetTrafficLightPhaseResponse], error) {
	req := in.Msg
	lock := m.ctx.Locker()
	lock.Lock()
	defer lock.Unlock()
	n, err := m.getIntersection(req.JunctionId)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := n.trafficLight.SetPhase(req.PhaseIndex, req.TimeRemaining); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&mapv2.SetTrafficLightPhaseResponse{}), nil
}
