package clock

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"git.fiblab.net/sim/syncer/v3"
)

// Register 将ClockService注册到sidecar
// 参数：sidecar-服务注册器，lock-保护时钟推进的读写锁，可为nil
// 说明：RPC在sidecar的goroutine中执行，与仿真步并发，需持有读锁读取时间
func (c *Clock) Register(sidecar *syncer.Sidecar, lock *sync.RWMutex) {
	c.lock = lock
	sidecar.Register(
		clockv1connect.ClockServiceName,
		func(opts ...connect.HandlerOption) (string, http.Handler) {
			return clockv1connect.NewClockServiceHandler(c, opts...)
		},
	)
}

// Now 返回当前仿真时间（步数*步长）
func (c *Clock) Now(ctx context.Context, in *connect.Request[clockv1.NowRequest]) (*connect.Response[clockv1.NowResponse], error) {
	if c.lock != nil {
		c.lock.RLock()
		defer c.lock.RUnlock()
	}
	return connect.NewResponse(&clockv1.NowResponse{T: c.T}), nil
}
