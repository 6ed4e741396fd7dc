package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func (ctl *Controller) handleChat(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.ChatSend
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	if p.Message == "" {
		return
	}
	if err := ctl.Coord.Chat(cl.ID, p.Message); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleModeration(cl *app.Client, c *wsConn, action app.ModerationAction, env protocol.Envelope) {
	var p protocol.ModerationTarget
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad moderation payload")
		ctl.send(c, protocol.EvtModError, protocol.ModerationResult{
			Action:  string(action),
			Message: "malformed moderation payload",
		})
		return
	}
	// Audit feedback is emitted by the coordinator in all cases.
	ctl.Coord.Moderate(cl.ID, action, p.TargetPeerID)
}

func (ctl *Controller) handleSetPayment(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.PaymentInfoSet
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payment payload")
		return
	}
	if err := ctl.Coord.SetPaymentInfo(cl.ID, p.RoomID, p.Info); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleClearPayment(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.RoomRef
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payment clear payload")
		return
	}
	if err := ctl.Coord.ClearPaymentInfo(cl.ID, p.RoomID); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleRequestPayment(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.RoomRef
	if err := env.BindOptional(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payment request payload")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = cl.RoomID
	}
	ctl.send(c, protocol.EvtPaymentUpdated, ctl.Coord.PaymentInfo(roomID))
}
