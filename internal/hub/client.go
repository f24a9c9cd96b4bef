package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"gatherly/internal/live"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// tuning parameters
	writeWait         = 10 * time.Second    // time allowed to write a frame to the peer
	pongWait          = 20 * time.Second    // time allowed to read the next pong from the peer
	pingInterval      = (pongWait * 9) / 10 // send pings to peer with this period
	maxFrameSize      = 64 * 1024           // max inbound frame size (64KB)
	sendBufSize       = 256                 // per-connection outbound buffer size
	workerPoolSize    = 16                  // number of workers to process inbound frames
	sendTimeout       = 2 * time.Second     // timeout for enqueuing outbound frames
	kickOnFull        = true                // when true, disconnect client when egress is full
	registerTimeout   = 5 * time.Second     // timeout for client registration
	unregisterTimeout = 5 * time.Second     // timeout for client unregistration
	inboundTimeout    = 500 * time.Millisecond
)

// Client is one websocket connection joined to a single room.
type Client struct {
	ID          string
	UserID      string
	DisplayName string
	Topic       string

	conn   *websocket.Conn
	hub    *Hub
	egress chan live.Frame

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// RegisterClient wires a fresh websocket connection into the hub.
func RegisterClient(userID, displayName, topic string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		ID:          uuid.New().String(),
		UserID:      userID,
		DisplayName: displayName,
		Topic:       topic,
		conn:        conn,
		hub:         h,
		egress:      make(chan live.Frame, sendBufSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	select {
	case h.register <- client:
		go client.readPump()
		go client.writePump()
		return client
	case <-time.After(registerTimeout):
		h.logger.Warn("client registration timed out")
		cancel()
		conn.Close()
		return nil
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxFrameSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var frame live.Frame
			if err := c.conn.ReadJSON(&frame); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					return
				}
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					return
				}
				return
			}

			// non-blocking hand-off so a stalled worker pool never wedges the reader
			select {
			case c.hub.inbound <- inboundFrame{client: c, frame: frame}:
			case <-time.After(inboundTimeout):
				c.Close()
				return
			case <-c.ctx.Done():
				return
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case frame, ok := <-c.egress:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Send enqueues a frame for this client only (intent errors, acks).
func (c *Client) Send(frame live.Frame) {
	select {
	case c.egress <- frame:
	case <-time.After(sendTimeout):
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
		}
	case <-c.ctx.Done():
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
	})
}
