package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/pairsignal/internal/app/orch"
	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/metrics"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = core.ErrConnClosed
)

// Options tune every connection the controller accepts.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int

	RateLimitEvents   int
	RateLimitInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:         64 << 10,
		PingPeriod:        54 * time.Second,
		PongWait:          60 * time.Second,
		WriteWait:         10 * time.Second,
		SendBuffer:        64,
		RateLimitEvents:   50,
		RateLimitInterval: time.Second,
	}
}

// Submitter accepts inbound events; *orch.Coordinator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, ev orch.Event) error
}

// Registrar binds a connection id to its transport.
type Registrar interface {
	Register(id domain.ConnID, conn core.SignalConnection)
}

type SignalWSController struct {
	Orch     Submitter
	Registry Registrar
	Metrics  *metrics.Metrics

	opts    Options
	limiter *RateLimiter
}

func NewSignalWSController(o Submitter, reg Registrar, m *metrics.Metrics, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Registry: reg,
		Metrics:  m,
		opts:     opts,
		limiter:  NewRateLimiter(opts.RateLimitEvents, opts.RateLimitInterval),
	}
}

// WsSignalConn is the outbound half of one WebSocket. Frames queue on send
// and are written by writePump.
type WsSignalConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool

	disconnect sync.Once
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until either
// side goes away. ctx outlives the request; cancelling it drops the socket.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("client", token).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:   domain.NewConnID(),
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("client", token).Msg("new WS connection")
	ctl.Metrics.Inc(metrics.ConnectionsOpened)
	ctl.Registry.Register(conn.id, conn)

	connCtx, cancel := context.WithCancel(ctx)
	go ctl.writePump(connCtx, conn)
	go func() {
		defer cancel()
		ctl.readPump(connCtx, conn)
		ctl.disconnect(ctx, conn)
	}()
}

// disconnect reports the end of a connection to the coordinator exactly once.
func (ctl *SignalWSController) disconnect(ctx context.Context, c *WsSignalConn) {
	c.disconnect.Do(func() {
		ctl.limiter.Forget(c.id)
		ctl.Metrics.Inc(metrics.ConnectionsClosed)
		ev := orch.Event{Kind: orch.Disconnect, Conn: c.id}
		if err := ctl.Orch.Submit(ctx, ev); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("disconnect not delivered")
		}
	})
}
