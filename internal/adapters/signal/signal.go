// Package signal is the WebSocket session gateway: it accepts connections,
// authenticates them, binds them to their interview room and dispatches
// inbound frames to the orchestrator.
package signal

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mockorbit/interviewd/internal/app/orch"
	"github.com/mockorbit/interviewd/internal/auth"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// Authorizer resolves a connection attempt into a room grant.
type Authorizer interface {
	Authorize(ctx context.Context, roomID domain.RoomID, userID domain.UserID, token string) (auth.Grant, error)
}

type Options struct {
	ReadLimit   int64
	PingPeriod  time.Duration
	PongWait    time.Duration
	WriteWait   time.Duration
	AuthTimeout time.Duration
	QueueSize   int

	// EventsPerSecond <= 0 disables inbound rate limiting.
	EventsPerSecond float64
	Burst           int

	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 65536
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = 10 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	return o
}

type Controller struct {
	Orch *orch.Orchestrator
	Auth Authorizer

	ctx      context.Context
	opts     Options
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewController builds the gateway. Connections are closed with going-away
// once ctx is done.
func NewController(ctx context.Context, o *orch.Orchestrator, a Authorizer, opts Options) *Controller {
	opts = opts.withDefaults()
	ctl := &Controller{
		Orch: o,
		Auth: a,
		ctx:  ctx,
		opts: opts,
		now:  time.Now,
	}
	ctl.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	ctl.handlers = ctl.dispatchTable()
	return ctl
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Scheme+"://"+u.Host]
		return ok
	}
}

// HandleWS upgrades GET /ws?interviewId=&userId=&token= and runs the
// connection until it closes.
func (ctl *Controller) HandleWS(c *gin.Context) {
	interviewID, userID, token := c.Query("interviewId"), c.Query("userId"), c.Query("token")
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := newWsConn(ws, ctl.opts.QueueSize)
	s := newSession(ctl, conn)
	s.setState(stateAuthenticating)

	ctl.wg.Add(2)
	go func() {
		defer ctl.wg.Done()
		conn.writePump(ctl.opts.PingPeriod, ctl.opts.WriteWait)
	}()
	go func() {
		defer ctl.wg.Done()
		ctl.run(s, interviewID, userID, token)
	}()
}

// Wait blocks until every connection goroutine has exited or ctx is done.
func (ctl *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ctl.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wsConn is the core.Connection of one socket. Writes go through send and
// are performed by writePump only.
type wsConn struct {
	id   core.ConnID
	ws   *websocket.Conn
	send chan core.Frame

	mu          sync.RWMutex
	closed      bool
	closeCode   int
	closeReason string
}

func newWsConn(ws *websocket.Conn, size int) *wsConn {
	return &wsConn{
		id:   core.ConnID(uuid.NewString()),
		ws:   ws,
		send: make(chan core.Frame, size),
	}
}

func (c *wsConn) ID() core.ConnID { return c.id }

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. writePump flushes what is queued, then
// writes the close frame and releases the socket.
func (c *wsConn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.send)
}

func (c *wsConn) closeStatus() (int, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closeCode, c.closeReason
}
