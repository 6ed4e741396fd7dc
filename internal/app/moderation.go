package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

type ModerationAction string

const (
	ActionKick ModerationAction = "kick"
	ActionBan  ModerationAction = "ban"
)

// Moderate executes a kick or ban on behalf of a host. Authority is
// checked against the durable user identity, never the peer id. The
// requester always gets an audit event back, success or failure.
func (co *Coordinator) Moderate(id core.ConnID, action ModerationAction, targetPeerID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.client(id)
	if !ok {
		return
	}

	target, err := co.authorizeModerationLocked(c, targetPeerID)
	if err != nil {
		log.Warn().Err(err).Str("module", "app").Str("action", string(action)).
			Str("requester", string(c.UserID)).Str("target", targetPeerID).Msg("moderation refused")
		co.sendLocked(c, protocol.EvtModError, protocol.ModerationResult{
			Action:  string(action),
			Message: err.Error(),
		})
		return
	}

	rm := co.rooms[c.RoomID]
	tc, ok := co.clients[core.ConnID(target.ConnID)]
	if !ok {
		co.sendLocked(c, protocol.EvtModError, protocol.ModerationResult{
			Action:  string(action),
			Message: domain.ErrTargetNotFound.Error(),
		})
		return
	}

	notice := protocol.EvtYouWereKicked
	reason := "Kicked by host."
	verb := "kicked"
	if action == ActionBan {
		rm.Ban(target.Addr)
		notice = protocol.EvtYouWereBanned
		reason = "Banned by host (address ban)."
		verb = "banned"
		log.Info().Str("module", "app").Str("room", string(rm.ID)).
			Str("addr", target.Addr).Msg("address banned")
	}

	co.sendLocked(tc, notice, protocol.Notice{RoomID: rm.ID, Reason: reason})
	// Force-close; the transport close event runs the normal Disconnect
	// cleanup for membership and presence.
	tc.Conn.Close()
	log.Info().Str("module", "app").Str("action", string(action)).Str("room", string(rm.ID)).
		Str("target", target.PeerID).Msg("moderation applied")

	co.sendLocked(c, protocol.EvtModSuccess, protocol.ModerationResult{
		Action:       string(action),
		TargetPeerID: target.PeerID,
		Message:      fmt.Sprintf("User %s has been %s.", target.DisplayName, verb),
	})
}

func (co *Coordinator) authorizeModerationLocked(c *Client, targetPeerID string) (*domain.Member, error) {
	rm, ok := co.rooms[c.RoomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if rm.HostUserID != c.UserID {
		return nil, domain.ErrNotHost
	}
	if targetPeerID == c.PeerID {
		return nil, domain.ErrSelfTarget
	}
	target, ok := rm.MemberByPeer(targetPeerID)
	if !ok {
		return nil, domain.ErrTargetNotFound
	}
	return target, nil
}
