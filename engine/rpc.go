package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// 仿真服务名与各方法路径，请求与响应均为google.protobuf.Struct形式的JSON对象
const (
	SimulationServiceName = "urbanflow.v1.SimulationService"

	StepProcedure          = "/" + SimulationServiceName + "/Step"
	GetSnapshotProcedure   = "/" + SimulationServiceName + "/GetSnapshot"
	GetStatisticsProcedure = "/" + SimulationServiceName + "/GetStatistics"
	ResetProcedure         = "/" + SimulationServiceName + "/Reset"
	SpawnProcedure         = "/" + SimulationServiceName + "/Spawn"
	ConfigureProcedure     = "/" + SimulationServiceName + "/Configure"
)

// Register 将仿真服务、时钟服务与信号灯服务注册到sidecar
func (e *Engine) Register(sidecar *syncer.Sidecar) {
	e.clock.Register(sidecar, &e.mtx)
	e.nodeManager.Register(sidecar)
	sidecar.Register(
		SimulationServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return e.NewSimulationServiceHandler(opts...)
		},
	)
}

// NewSimulationServiceHandler 创建仿真服务的HTTP处理器
// 返回：路由前缀与处理器
func (e *Engine) NewSimulationServiceHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(StepProcedure, connect.NewUnaryHandler(StepProcedure, e.StepRPC, opts...))
	mux.Handle(GetSnapshotProcedure, connect.NewUnaryHandler(GetSnapshotProcedure, e.GetSnapshotRPC, opts...))
	mux.Handle(GetStatisticsProcedure, connect.NewUnaryHandler(GetStatisticsProcedure, e.GetStatisticsRPC, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, e.ResetRPC, opts...))
	mux.Handle(SpawnProcedure, connect.NewUnaryHandler(SpawnProcedure, e.SpawnRPC, opts...))
	mux.Handle(ConfigureProcedure, connect.NewUnaryHandler(ConfigureProcedure, e.ConfigureRPC, opts...))
	return "/" + SimulationServiceName + "/", mux
}

// StepRPC RPC接口：推进一步并返回统计指标
func (e *Engine) StepRPC(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	if err := e.Step(); err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return newStructResponse(map[string]any{"tick": e.Tick(), "stats": e.Statistics()})
}

// GetSnapshotRPC RPC接口：获取完整状态快照
func (e *Engine) GetSnapshotRPC(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return newStructResponse(e.Snapshot())
}

// GetStatisticsRPC RPC接口：获取宏观交通指标
func (e *Engine) GetStatisticsRPC(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return newStructResponse(e.Statistics())
}

// ResetRPC RPC接口：重置仿真，请求字段keep_topology（默认false）
func (e *Engine) ResetRPC(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[emptypb.Empty], error) {
	keep := false
	if v, ok := in.Msg.GetFields()["keep_topology"]; ok {
		keep = v.GetBoolValue()
	}
	e.Reset(keep)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// SpawnRPC RPC接口：在指定路段生成车辆，请求字段edge_id，返回car_id与ok
func (e *Engine) SpawnRPC(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	v, ok := in.Msg.GetFields()["edge_id"]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("edge_id is required"))
	}
	id, spawned := e.Spawn(int32(v.GetNumberValue()))
	return newStructResponse(map[string]any{"car_id": id, "ok": spawned})
}

// ConfigureRPC RPC接口：修改运行参数，请求中未出现的字段保持原值，返回生效后的参数
func (e *Engine) ConfigureRPC(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	p := e.Params()
	data, err := protojson.Marshal(in.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := e.Configure(p); err != nil {
		if errors.Is(err, config.ErrInvalidParams) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return newStructResponse(e.Params())
}

// newStructResponse 将任意可JSON序列化的值转换为Struct响应
func newStructResponse(v any) (*connect.Response[structpb.Struct], error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(s), nil
}
