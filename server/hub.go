package server

import (
	"context"

	"github.com/gorilla/websocket"
)

// 单个连接待发送消息的缓冲数，写满时断开该连接
const sendBufferSize = 128

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// writer 将send中的消息依次写入连接，send关闭时退出
func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debugf("write failed: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// hub 连接集合
// 说明：集合只在run协程中修改，其余协程通过通道交互
type hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}
}

type directMessage struct {
	c   *client
	msg []byte
}

func newHub() *hub {
	return &hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 16),
		done:       make(chan struct{}),
	}
}

func (h *hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, msg)
			}
		case d := <-h.direct:
			if h.clients[d.c] {
				h.deliver(d.c, d.msg)
			}
		}
	}
}

func (h *hub) deliver(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		log.Warn("client too slow, drop connection")
		delete(h.clients, c)
		close(c.send)
	}
}

// add 注册连接，hub已停止时返回false
func (h *hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *hub) publish(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *hub) sendTo(c *client, msg []byte) {
	select {
	case h.direct <- directMessage{c: c, msg: msg}:
	case <-h.done:
	}
}
