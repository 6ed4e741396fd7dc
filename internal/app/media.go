package app

import (
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// UpdateMediaStatus records a video on/off change and broadcasts both
// the incremental delta and a full membership snapshot. The claimed
// peer and room ids must match what this connection joined with.
func (co *Coordinator) UpdateMediaStatus(id core.ConnID, roomID domain.RoomID, peerID string, hasVideo bool) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.client(id)
	if !ok || c.PeerID != peerID || c.RoomID != roomID {
		log.Warn().Str("module", "app").Str("conn", string(id)).Str("peer", peerID).
			Str("room", string(roomID)).Msg("media status update with mismatched identity")
		return domain.ErrTargetNotFound
	}
	rm, ok := co.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	member, ok := rm.MemberByConn(string(c.ID))
	if !ok {
		return domain.ErrTargetNotFound
	}
	member.HasVideo = hasVideo

	co.broadcastRoomExceptLocked(rm, c.ID, protocol.EvtPeerMediaStatus, protocol.PeerMediaStatus{
		PeerID:   peerID,
		HasVideo: hasVideo,
	})
	co.broadcastRoomLocked(rm, protocol.EvtUpdateUserList, rm.MemberList())
	return nil
}

// UserList snapshots a room's membership for a requester-only re-send.
func (co *Coordinator) UserList(roomID domain.RoomID) ([]domain.MemberInfo, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, ok := co.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return rm.MemberList(), nil
}
