package ws

import (
	"context"
	"sync"
	"sync/atomic"

	"relaychat/internal/core/domain"
)

// Client adapts a WebSocket into the non-blocking Connection handle the relay
// core owns. Send pushes onto a buffered channel serviced by a single write
// pump; it never blocks on the network, so the core may call it while holding
// its state lock. A full buffer is a send failure, which the delivery engine
// treats as a stale connection.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	out    chan []byte
	closed atomic.Bool
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, bufferSize int) *Client {
	ctx, cancel := context.WithCancel(parent)
	c := &Client{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		out:    make(chan []byte, bufferSize),
	}
	go c.writePump()
	return c
}

func (c *Client) Send(data []byte) error {
	if c.closed.Load() {
		return domain.ErrClientClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return domain.ErrSendBufferFull
	}
}

// Close stops accepting frames and signals the write pump, which flushes
// anything already buffered before closing the socket. The error notice sent
// just before rejecting a duplicate connection still reaches the wire.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closed.Store(true)
		c.cancel()
	})
}

func (c *Client) writePump() {
	defer c.ws.Close()
	for {
		select {
		case <-c.ctx.Done():
			c.flush()
			return
		case data := <-c.out:
			if err := c.ws.WriteMessage(data); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case data := <-c.out:
			if err := c.ws.WriteMessage(data); err != nil {
				return
			}
		default:
			return
		}
	}
}
