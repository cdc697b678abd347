package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Path websocket路径
const Path = "/ws/simulation"

// Controller 服务端操作仿真所需的接口（由task.Context实现）
type Controller interface {
	Engine() *engine.Engine
	SetRunning(running bool)
	// Rebuild 暂停推进并重置引擎，随后在同一临界区内执行build（可为nil）
	Rebuild(keepTopology bool, build func(e *engine.Engine) error) error
}

// Server 仿真状态推送服务
// 功能：向所有websocket连接广播init/update消息，并执行客户端指令
type Server struct {
	ctrl       Controller
	hub        *hub
	upgrader   websocket.Upgrader
	layoutDir  string
	httpServer *http.Server
	cancel     context.CancelFunc
}

// New 创建推送服务并启动连接管理协程
// 参数：ctrl-仿真控制接口，addr-监听地址，layoutDir-布局文件目录
func New(ctrl Controller, addr string, layoutDir string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctrl:      ctrl,
		hub:       newHub(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		layoutDir: layoutDir,
		cancel:    cancel,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	go s.hub.run(ctx)
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.serveWs)
	return mux
}

// ListenAndServe 阻塞直到服务关闭
func (s *Server) ListenAndServe() error {
	log.Infof("websocket listening on %s%s", s.httpServer.Addr, Path)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "websocket server")
	}
	return nil
}

// Close 关闭全部连接与监听
func (s *Server) Close() {
	s.cancel()
	if err := s.httpServer.Close(); err != nil {
		log.Warnf("close http server: %v", err)
	}
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	// init先于任何广播进入发送队列
	if data, err := s.initMessage(); err == nil {
		c.send <- data
	} else {
		log.Errorf("marshal init: %v", err)
	}
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	log.Infof("client %s connected", conn.RemoteAddr())
	go c.writer()
	go s.reader(c)
}

func (s *Server) reader(c *client) {
	defer s.hub.remove(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debugf("client %s disconnected: %v", c.conn.RemoteAddr(), err)
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.replyError(c, errors.Wrap(err, "invalid command"))
			continue
		}
		if err := s.handle(cmd); err != nil {
			log.Warnf("command %s failed: %v", cmd.Action, err)
			s.replyError(c, err)
		}
	}
}

func (s *Server) initMessage() ([]byte, error) {
	return json.Marshal(InitMessage{Type: TypeInit, State: s.ctrl.Engine().Snapshot()})
}

// BroadcastInit 向所有连接推送完整状态
func (s *Server) BroadcastInit() {
	data, err := s.initMessage()
	if err != nil {
		log.Errorf("marshal init: %v", err)
		return
	}
	s.hub.publish(data)
}

// BroadcastUpdate 向所有连接推送一步的结果，统计指标舍入后发送
func (s *Server) BroadcastUpdate(snap engine.Snapshot, stats engine.Statistics) {
	data, err := json.Marshal(UpdateMessage{
		Type:   TypeUpdate,
		Tick:   snap.Tick,
		Stats:  roundStatistics(stats),
		Cars:   snap.Cars,
		Lights: snap.Lights,
	})
	if err != nil {
		log.Errorf("marshal update: %v", err)
		return
	}
	s.hub.publish(data)
}

func (s *Server) replyError(c *client, err error) {
	data, mErr := json.Marshal(ErrorMessage{Type: TypeError, Message: err.Error()})
	if mErr != nil {
		log.Errorf("marshal error message: %v", mErr)
		return
	}
	s.hub.sendTo(c, data)
}
