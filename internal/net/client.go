package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Dispatcher is the command entry point a client feeds.
type Dispatcher interface {
	Dispatch(command string, payload []byte) error
}

type clientOptions struct {
	outQueueSize    int
	writeTimeout    time.Duration
	readTimeout     time.Duration
	pingInterval    time.Duration
	maxMessageBytes int64
}

// Client is one connected editor UI. Network I/O runs in dedicated
// goroutines; commands reach the game loop only through the dispatcher.
type Client struct {
	ID   uint64
	conn *websocket.Conn
	opts clientOptions

	OutQueue chan []byte // writer goroutine reads from here

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func(*Client)

	log *zap.Logger
}

func newClient(conn *websocket.Conn, id uint64, opts clientOptions, onClose func(*Client), log *zap.Logger) *Client {
	return &Client{
		ID:       id,
		conn:     conn,
		opts:     opts,
		OutQueue: make(chan []byte, opts.outQueueSize),
		closeCh:  make(chan struct{}),
		onClose:  onClose,
		log:      log.With(zap.Uint64("client", id)),
	}
}

// start launches the reader and writer goroutines.
func (c *Client) start(d Dispatcher) {
	go c.readLoop(d)
	go c.writeLoop()
}

// Send queues a frame for the writer. Non-blocking: a client whose queue is
// full is disconnected (backpressure).
func (c *Client) Send(data []byte) {
	if c.closed.Load() {
		return
	}
	select {
	case c.OutQueue <- data:
	default:
		c.log.Warn("out queue full, dropping slow client")
		c.Close()
	}
}

// Close shuts the connection down once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// readLoop decodes envelopes and hands them to the dispatcher. The reply
// only says whether the command was accepted; its effects arrive as events.
func (c *Client) readLoop(d Dispatcher) {
	defer c.Close()

	c.conn.SetReadLimit(c.opts.maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.readTimeout))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.readTimeout))
		if msgType != websocket.TextMessage {
			continue
		}

		in, err := DecodeInbound(data)
		if err != nil {
			c.Send(EncodeReply("", err))
			continue
		}
		err = d.Dispatch(in.Command, in.Payload)
		if err != nil {
			c.log.Debug("command rejected", zap.String("command", in.Command), zap.Error(err))
		}
		c.Send(EncodeReply(in.ID, err))
	}
}

// writeLoop drains OutQueue and keeps the connection alive with pings.
func (c *Client) writeLoop() {
	ping := time.NewTicker(c.opts.pingInterval)
	defer func() {
		ping.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.OutQueue:
			if !c.write(websocket.TextMessage, data) {
				return
			}
		case <-ping.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		case <-c.closeCh:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (c *Client) write(msgType int, data []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeTimeout))
	if err := c.conn.WriteMessage(msgType, data); err != nil {
		if !c.closed.Load() {
			c.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
