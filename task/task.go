package task

import (
	"sync"
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/Takshsingh313/UrbanFlow/server"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/input"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/Takshsingh313/UrbanFlow/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：持有引擎、sidecar与websocket推送服务，并管理推进/暂停状态
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool
	// 是否推进（暂停时仍按节拍与syncer同步）
	running atomic.Bool
	// 推进与重建互斥
	stepMtx sync.Mutex

	// 辅助程序，处理分布式模式下相关调用，包括与syncer、其他服务的交互
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 仿真引擎
	engine *engine.Engine
	// websocket推送服务，未配置监听地址时为nil
	server *server.Server
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真引擎、路网与对外服务
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: 外部sidecar实例
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 创建引擎并构建路网（布局文档优先，否则使用内置生成器）
// 2. 注册RPC服务到sidecar
// 3. 启动websocket推送服务（如果配置了监听地址）
// 4. 启动sidecar服务（如果需要）
func NewContext(
	job string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) *Context {
	ctx := newContext(job, c)
	ctx.sidecar = sidecar
	ctx.sidecarCloseCh = make(chan struct{})

	ctx.engine.Register(ctx.sidecar)

	if c.Server.WSListen != "" {
		ctx.server = server.New(ctx, c.Server.WSListen, c.Server.LayoutDir)
		go func() {
			if err := ctx.server.ListenAndServe(); err != nil {
				log.Panicf("failed to serve websocket: %v", err)
			}
		}()
	}

	// sidecar协程，用于提供gRPC服务
	if startSidecarServe {
		go func() {
			err := ctx.sidecar.Serve()
			if err != nil {
				log.Panicf("failed to serve: %v", err)
			}
			ctx.sidecarCloseCh <- struct{}{}
		}()
	}

	return ctx
}

// newContext 创建引擎并构建初始路网，不涉及任何网络服务
func newContext(job string, c config.Config) *Context {
	ctx := &Context{job: job}
	ctx.runtimeConfig = config.NewRuntimeConfig(c)

	e, err := engine.New(ctx.runtimeConfig, randengine.New(c.Control.Seed))
	if err != nil {
		log.Panicf("failed to create engine: %v", err)
	}
	ctx.engine = e

	// 下载模拟器启动所需的布局数据
	if doc := input.Init(c); doc != nil {
		err = layout.Load(e, doc)
	} else {
		p := c.Input.Layout
		err = layout.Pattern(e, p.Pattern, p.Rows, p.Cols, p.Spacing, p.InitialVehicles)
	}
	if err != nil {
		log.Panicf("failed to build layout: %v", err)
	}
	ctx.running.Store(c.Control.Running)
	log.Infof("job %s: %v", job, e)
	return ctx
}

func (ctx *Context) Engine() *engine.Engine {
	return ctx.engine
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Running() bool {
	return ctx.running.Load()
}

// SetRunning 开始或暂停推进
func (ctx *Context) SetRunning(running bool) {
	ctx.running.Store(running)
}

// Rebuild 暂停推进并重置引擎
// 功能：与推进互斥地执行 暂停 -> Reset -> build
// 参数：keepTopology-是否保留路网，build-重置后的构建函数（可为nil）
// 返回：build的错误
func (ctx *Context) Rebuild(keepTopology bool, build func(e *engine.Engine) error) error {
	ctx.stepMtx.Lock()
	defer ctx.stepMtx.Unlock()
	ctx.running.Store(false)
	ctx.engine.Reset(keepTopology)
	if build == nil {
		return nil
	}
	return build(ctx.engine)
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	if ctx.server != nil {
		ctx.server.Close()
	}
	ctx.sidecar.Close()
	// wait for graceful stop
	<-ctx.sidecarCloseCh
	ctx.closed.Store(true)
}
