package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func (ctl *Controller) handleJoin(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.JoinRoom
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.send(c, protocol.EvtError, protocol.CommandError{Code: "bad_payload", Message: "malformed join-room payload"})
		return
	}

	err := ctl.Coord.Join(cl.ID, p.RoomID, p.PeerID, p.HasVideo)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrBanned):
		// No further interaction is legitimate: notify, then drop the
		// connection entirely.
		ctl.send(c, protocol.EvtJoinFailed, protocol.JoinFailed{
			Reason:  "banned",
			Message: "Your address has been banned from this room.",
		})
		c.Close()
	case errors.Is(err, domain.ErrRoomFull):
		ctl.send(c, protocol.EvtJoinFailed, protocol.JoinFailed{
			Reason:  "room_full",
			Message: "Room is full.",
		})
		c.Close()
	default:
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleMediaStatus(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.MediaStatus
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media status payload")
		return
	}
	if err := ctl.Coord.UpdateMediaStatus(cl.ID, p.RoomID, p.PeerID, p.HasVideo); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleRequestUserList(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.RoomRef
	if err := env.BindOptional(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad user list request")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = cl.RoomID
	}
	list, err := ctl.Coord.UserList(roomID)
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	ctl.send(c, protocol.EvtUpdateUserList, list)
}

func (ctl *Controller) handleChangeCapacity(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.RoomUpdate
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad room update payload")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = cl.RoomID
	}
	if err := ctl.Coord.ChangeCapacity(cl.ID, roomID, p.Capacity); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleRequestActive(c *wsConn) {
	ctl.send(c, protocol.EvtActiveUsers, protocol.ActiveUsers{Count: ctl.Coord.ActiveUsers()})
}
