package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, cancel context.CancelFunc, c *wsConn) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, cl *app.Client, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(cl.ID)).Msg("readPump closing")
		cancel()
		ctl.Coord.Disconnect(cl.ID)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(cl.ID)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(cl, c, data)
		}
	}
}

// handleEvent gates every inbound event through the per-address token
// bucket, then dispatches on the closed event set.
func (ctl *Controller) handleEvent(cl *app.Client, c *wsConn, data []byte) {
	if !ctl.Limiter.Allow(cl.Addr) {
		log.Warn().Str("module", "signal").Str("addr", cl.Addr).Msg("event rate limit exceeded")
		ctl.sendError(c, domain.ErrThrottled)
		return
	}

	env, err := protocol.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad envelope")
		return
	}

	switch env.Type {
	case protocol.EvtJoinRoom:
		ctl.handleJoin(cl, c, env)
	case protocol.EvtOffer:
		ctl.handleOffer(cl, env)
	case protocol.EvtAnswer:
		ctl.handleAnswer(cl, env)
	case protocol.EvtICECandidate:
		ctl.handleICECandidate(cl, env)
	case protocol.EvtMediaStatus:
		ctl.handleMediaStatus(cl, c, env)
	case protocol.EvtSendChat:
		ctl.handleChat(cl, c, env)
	case protocol.EvtKickUser:
		ctl.handleModeration(cl, c, app.ActionKick, env)
	case protocol.EvtBanUser:
		ctl.handleModeration(cl, c, app.ActionBan, env)
	case protocol.EvtSetPaymentInfo:
		ctl.handleSetPayment(cl, c, env)
	case protocol.EvtClearPaymentInfo:
		ctl.handleClearPayment(cl, c, env)
	case protocol.EvtRequestUserList:
		ctl.handleRequestUserList(cl, c, env)
	case protocol.EvtRequestPayment:
		ctl.handleRequestPayment(cl, c, env)
	case protocol.EvtRequestActive:
		ctl.handleRequestActive(c)
	case protocol.EvtChangeCapacity:
		ctl.handleChangeCapacity(cl, c, env)
	case protocol.EvtVerifyAdminPass:
		ctl.handleVerifyAdmin(cl, c, env)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown event")
	}
}

func (ctl *Controller) send(c *wsConn, t protocol.EventType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", string(t)).Msg("encode")
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *Controller) sendError(c *wsConn, err error) {
	ctl.send(c, protocol.EvtError, protocol.CommandError{
		Code:    domain.ErrorCode(err),
		Message: err.Error(),
	})
}
