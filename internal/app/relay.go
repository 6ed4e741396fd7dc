package app

import (
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
)

// RelayTarget resolves where a signaling payload should be forwarded:
// the connection currently holding targetPeerID in the sender's room,
// plus the sender's own peer id for the return path. A missing target
// is an expected race (it already left), not an error, so ok=false
// simply means drop the message.
func (co *Coordinator) RelayTarget(id core.ConnID, targetPeerID string) (target core.SignalConnection, senderPeerID string, ok bool) {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, found := co.client(id)
	if !found || c.RoomID == "" {
		return nil, "", false
	}
	rm, found := co.rooms[c.RoomID]
	if !found {
		return nil, "", false
	}
	member, found := rm.MemberByPeer(targetPeerID)
	if !found {
		log.Debug().Str("module", "app").Str("room", string(c.RoomID)).
			Str("target", targetPeerID).Msg("relay target absent, dropping")
		return nil, "", false
	}
	tc, found := co.clients[core.ConnID(member.ConnID)]
	if !found {
		return nil, "", false
	}
	return tc.Conn, c.PeerID, true
}
