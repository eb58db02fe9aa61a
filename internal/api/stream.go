package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/logs"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Message kinds pushed to stream subscribers.
const (
	KindSnapshot = "snapshot"
	KindResult   = "result"
	KindError    = "error"
)

// StreamMessage is one frame on the websocket.
type StreamMessage struct {
	Kind   string           `json:"kind"`
	State  *engine.Snapshot `json:"state,omitempty"`
	Events []engine.Event   `json:"events,omitempty"`
	Error  *errorBody       `json:"error,omitempty"`
}

type directMessage struct {
	c   *client
	msg []byte
}

// Hub fans snapshots out to every connected client. Snapshots are
// coalesced: the hub keeps only the newest one and wakes clients, whose
// write pumps fetch it. Replies and closing a client's send queue happen on
// the Run goroutine.
type Hub struct {
	mu      sync.Mutex
	current []byte
	version uint64
	notify  chan struct{}

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	direct     chan directMessage
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		notify:     make(chan struct{}, 1),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		direct:     make(chan directMessage, 16),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			c.poke()
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case d := <-h.direct:
			if h.clients[d.c] {
				h.deliver(d.c, d.msg)
			}
		case <-h.notify:
			for c := range h.clients {
				c.poke()
			}
		}
	}
}

// latest returns the newest snapshot frame and its version.
func (h *Hub) latest() ([]byte, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.version
}

// deliver drops clients whose reply queue is full.
func (h *Hub) deliver(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
		logs.Warn("stream client too slow, dropped")
	}
}

// Publish replaces the hub's snapshot and wakes the hub. Callers publish in
// state order; the server does so while holding the engine lock.
func (h *Hub) Publish(snap engine.Snapshot) {
	b, err := json.Marshal(StreamMessage{Kind: KindSnapshot, State: &snap})
	if err != nil {
		logs.Error("marshal snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.current = b
	h.version++
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) join(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) reply(c *client, m StreamMessage) {
	b, err := json.Marshal(m)
	if err != nil {
		logs.Error("marshal stream reply", zap.Error(err))
		return
	}
	select {
	case h.direct <- directMessage{c: c, msg: b}:
	case <-h.done:
	}
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	ip      string
	send    chan []byte
	wake    chan struct{}
	version uint64 // newest snapshot written; owned by the write pump
}

func newClient(h *Hub, conn *websocket.Conn, ip string) *client {
	return &client{
		hub:  h,
		conn: conn,
		ip:   ip,
		send: make(chan []byte, sendBuffer),
		wake: make(chan struct{}, 1),
	}
}

func (cl *client) poke() {
	select {
	case cl.wake <- struct{}{}:
	default:
	}
}

// nextSnapshot returns the hub's snapshot when it is newer than the last
// one this client wrote.
func (cl *client) nextSnapshot() ([]byte, bool) {
	msg, version := cl.hub.latest()
	if msg == nil || version <= cl.version {
		return nil, false
	}
	cl.version = version
	return msg, true
}

func (s *Server) upgrader() websocket.Upgrader {
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, o := range s.cfg.CORSOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] || allowed[origin] || isLocalOrigin(origin) {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

func (s *Server) handleStream(c *gin.Context) {
	up := s.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logs.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(s.hub, conn, c.ClientIP())
	if !s.hub.join(cl) {
		conn.Close()
		return
	}

	go cl.writePump()
	s.readPump(cl)
}

// readPump accepts intents from the socket. Results go back to the sender
// and the new snapshot goes to everyone.
func (s *Server) readPump(cl *client) {
	defer func() {
		s.hub.leave(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.Debug("stream read", zap.Error(err))
			}
			return
		}

		if s.limiter != nil && !s.limiter.Allow(cl.ip) {
			s.hub.reply(cl, errorMessage(errRateLimited.WithData("retry_after", s.limiter.RetryAfter(cl.ip))))
			continue
		}

		in, err := decodeIntent(data)
		if err != nil {
			s.hub.reply(cl, errorMessage(errx.ErrReqParamERR.WithData("reason", "malformed intent").WithCause(err)))
			continue
		}
		events, _, err := s.apply(in)
		if err != nil {
			s.hub.reply(cl, errorMessage(err))
			continue
		}
		s.hub.reply(cl, StreamMessage{Kind: KindResult, Events: events})
	}
}

func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cl.wake:
			msg, ok := cl.nextSnapshot()
			if !ok {
				continue
			}
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// decodeIntent reads a loosely shaped JSON object into an Intent. Card
// names go through the citizen text unmarshaler.
func decodeIntent(data []byte) (engine.Intent, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.Intent{}, err
	}

	var in engine.Intent
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Result:           &in,
	})
	if err != nil {
		return engine.Intent{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return engine.Intent{}, err
	}
	return in, nil
}

func errorMessage(err error) StreamMessage {
	_, body := describe(err)
	return StreamMessage{Kind: KindError, Error: &body}
}
