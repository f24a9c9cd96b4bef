package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"net/http"
	"sync"
	"time"

	"gatherly/internal/live"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

type inboundFrame struct {
	frame  live.Frame
	client *Client
}

// roomHolder is whatever state a room carries for its lifetime: the state
// holder whose cells the room broadcasts, plus the intent dispatch.
type roomHolder interface {
	Start()
	Handle(client *Client, frame live.Frame)
	Close()
}

// RoomFactory builds the holder for a topic. publish broadcasts a frame to
// every client currently in the room.
type RoomFactory func(ctx context.Context, topic string, publish func(live.Frame)) (roomHolder, error)

type room struct {
	topic   string
	clients map[string]*Client
	holder  roomHolder
}

type roomBucket struct {
	sync.RWMutex
	rooms map[string]*room
}

// Hub owns the live rooms. Every room is backed by one state holder; clients
// joining the same topic share its subscriptions, and the last client leaving
// tears the holder down, releasing the remote listeners.
type Hub struct {
	shards     [shardCount]*roomBucket
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	factory    RoomFactory
	logger     *zap.Logger
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(factory RoomFactory, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundFrame, 4096), // buffer for burst handling
		factory:    factory,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &roomBucket{
			rooms: make(map[string]*room),
		}
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleFrame(in.frame, in.client)
				}
			}
		}()
	}

	return h
}

func (h *Hub) handleFrame(frame live.Frame, c *Client) {
	sh := getShard(c.Topic)
	b := h.shards[sh]

	b.RLock()
	rm, ok := b.rooms[c.Topic]
	b.RUnlock()
	if !ok {
		h.logger.Warn("frame for unknown room", zap.String("topic", c.Topic), zap.String("type", frame.Type))
		return
	}

	rm.holder.Handle(c, frame)
}

// Publish broadcasts a frame to every client in the topic's room.
func (h *Hub) Publish(topic string, frame live.Frame) {
	sh := getShard(topic)
	b := h.shards[sh]

	// collect clients while holding RLock
	b.RLock()
	rm, ok := b.rooms[topic]
	if !ok || len(rm.clients) == 0 {
		b.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(rm.clients))
	for _, c := range rm.clients {
		clients = append(clients, c)
	}
	b.RUnlock()

	// deliver to clients without holding lock
	for _, c := range clients {
		select {
		case c.egress <- frame:
			// enqueued
		case <-time.After(sendTimeout):
			// egress full -> apply policy
			h.logger.Warn("egress full", zap.String("client", c.ID), zap.String("topic", topic))
			if kickOnFull {
				h.unregister <- c
			}
		}
	}
}

func getShard(topic string) uint32 {
	if topic == "" {
		return 0
	}

	sum := sha1.Sum([]byte(topic))
	return binary.BigEndian.Uint32(sum[:4]) % shardCount
}

func (h *Hub) addClient(c *Client) {
	sh := getShard(c.Topic)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	rm, ok := b.rooms[c.Topic]
	if !ok {
		publish := func(frame live.Frame) {
			h.Publish(c.Topic, frame)
		}
		holder, err := h.factory(h.ctx, c.Topic, publish)
		if err != nil {
			h.logger.Error("failed to open room", zap.Error(err), zap.String("topic", c.Topic))
			c.Close()
			return
		}

		rm = &room{
			topic:   c.Topic,
			clients: make(map[string]*Client),
			holder:  holder,
		}
		b.rooms[c.Topic] = rm
		holder.Start()
	}

	rm.clients[c.ID] = c
	h.logger.Debug("client registered", zap.String("client", c.ID), zap.String("topic", c.Topic))
}

func (h *Hub) removeClient(c *Client) {
	sh := getShard(c.Topic)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	rm, ok := b.rooms[c.Topic]
	if !ok {
		return
	}

	if _, exists := rm.clients[c.ID]; exists {
		delete(rm.clients, c.ID)
	}

	// last one out releases the holder and its remote listeners
	if len(rm.clients) == 0 {
		rm.holder.Close()
		delete(b.rooms, c.Topic)
	}

	c.Close()
	h.logger.Debug("client removed", zap.String("client", c.ID), zap.String("topic", c.Topic))
}

func (h *Hub) Stop() {
	h.cancel()

	for _, shard := range h.shards {
		shard.Lock()
		for _, rm := range shard.rooms {
			for _, client := range rm.clients {
				client.Close()
			}
			rm.holder.Close()
		}
		shard.rooms = make(map[string]*room)
		shard.Unlock()
	}

	// Workers drain via ctx; inbound stays open because readPumps may still
	// be mid-send and a close would panic them.
	h.wg.Wait()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and registers the client in its topic's room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID, displayName, topic string) {
	if _, _, err := live.ParseTopic(topic); err != nil {
		http.Error(w, "malformed topic", http.StatusBadRequest)
		return
	}

	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	RegisterClient(userID, displayName, topic, conn, h)
}
