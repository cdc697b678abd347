package task

import (
	"flag"
	"time"

	"github.com/Takshsingh313/UrbanFlow/clock"
)

const (
	SelfName = "urbanflow" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// step 推进一步，暂停时直接返回
// 功能：在推进锁内执行引擎Step，输出心跳日志并向websocket连接广播结果
// 返回：是否推进
// 说明：Step失败（例如路网被清空）时自动暂停
func (ctx *Context) step() bool {
	ctx.stepMtx.Lock()
	defer ctx.stepMtx.Unlock()
	if !ctx.running.Load() {
		return false
	}
	e := ctx.engine
	if err := e.Step(); err != nil {
		log.Errorf("step failed, pause: %v", err)
		ctx.running.Store(false)
		return false
	}
	snap, stats := e.Report()
	if *heartBeatInterval > 0 && snap.Tick%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(%s) vehicles: %d speed: %.2f density: %.3f",
			snap.Tick, clock.Format(float64(snap.Tick)*ctx.runtimeConfig.C.Step.Interval),
			stats.VehicleCount, stats.Speed, stats.Density,
		)
	}
	if ctx.server != nil {
		ctx.server.BroadcastUpdate(snap, stats)
	}
	return true
}

// Run 运行
// 算法说明：
// 1. 按control.step.interval的节拍推进
// 2. 每拍与syncer同步一次，暂停时只同步不推进
// 3. 到达结束步、syncer要求关闭或收到关闭指令时退出
func (ctx *Context) Run() {
	// init syncer
	ctx.sidecar.Step(false)
	interval := time.Duration(ctx.runtimeConfig.C.Step.Interval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		// 通知准备阶段完成
		ctx.sidecar.NotifyStepReady()
		ctx.step()
		finished := ctx.engine.Finished()
		close := ctx.sidecar.Step(finished)
		if close || finished || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete at step %d", ctx.engine.Tick())
	ctx.Close()
}
