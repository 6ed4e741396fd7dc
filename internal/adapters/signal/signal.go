// Package signal adapts the websocket channel to the coordinator: one
// persistent connection per browser tab, a read pump dispatching the
// closed inbound event set and a write pump draining a buffered send
// channel.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Coord     *app.Coordinator
	Limiter   *AddrLimiter
	ReadLimit int64

	// AdminHash is the bcrypt hash for verify-admin-password; empty
	// means every attempt fails.
	AdminHash string
}

func NewController(coord *app.Coordinator, limiter *AddrLimiter, readLimit int64, adminHash string) *Controller {
	return &Controller{
		Coord:     coord,
		Limiter:   limiter,
		ReadLimit: readLimit,
		AdminHash: adminHash,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
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

// HandleSignal upgrades the request and registers the connection with
// the coordinator. The durable identity and display name come from the
// cookie session, resolved by the HTTP middleware before the upgrade.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	uid := domain.UserID(c.GetString("uid"))
	name := c.GetString("display_name")
	addr := c.ClientIP()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	client := &app.Client{
		ID:     core.ConnID(uuid.NewString()),
		UserID: uid,
		Addr:   addr,
		Name:   name,
		Conn:   conn,
	}
	log.Info().Str("module", "signal").Str("conn", string(client.ID)).
		Str("user", string(uid)).Str("addr", addr).Msg("new WS connection")

	ctl.Coord.Connect(client)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, client, conn)
}
