package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// Join seats a connection in a room and runs the host election
// transitions. Banned and RoomFull errors mean the adapter should close
// the connection after reporting them.
func (co *Coordinator) Join(id core.ConnID, roomID domain.RoomID, peerID string, hasVideo bool) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.client(id)
	if !ok {
		return fmt.Errorf("join: unknown connection %s", id)
	}
	// RoomID is set once per connection; joining again would strand the
	// old membership record with no disconnect path to remove it.
	if c.RoomID != "" {
		return fmt.Errorf("join: connection already joined room %s", c.RoomID)
	}
	rm, ok := co.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if rm.IsBanned(c.Addr) {
		log.Warn().Str("module", "app").Str("addr", c.Addr).Str("room", string(roomID)).
			Msg("join denied for banned address")
		return domain.ErrBanned
	}
	if rm.IsFull() {
		return domain.ErrRoomFull
	}

	if c.Name == "" {
		c.Name = defaultDisplayName(c.UserID)
	}
	member := &domain.Member{
		PeerID:      peerID,
		ConnID:      string(c.ID),
		UserID:      c.UserID,
		DisplayName: c.Name,
		HasVideo:    hasVideo,
		Addr:        c.Addr,
	}
	rm.AddMember(member)
	c.RoomID = roomID
	c.PeerID = peerID

	becameHost := false
	switch {
	case rm.PendingHostUserID == c.UserID:
		// The original host came back within the grace period; the
		// fresh peer and connection ids do not matter.
		co.cancelHostGraceLocked(rm)
		rm.HostUserID = c.UserID
		rm.PendingHostUserID = ""
		becameHost = true
		log.Info().Str("module", "app").Str("user", string(c.UserID)).
			Str("room", string(roomID)).Msg("host reconnected and reinstated")
	case rm.HostUserID == "" && rm.PendingHostUserID == "":
		rm.HostUserID = c.UserID
		becameHost = true
		log.Info().Str("module", "app").Str("user", string(c.UserID)).
			Str("room", string(roomID)).Msg("first member became host")
	}
	if becameHost || rm.HostUserID == c.UserID {
		co.sendLocked(c, protocol.EvtSetAsHost, nil)
	}

	co.broadcastRoomExceptLocked(rm, c.ID, protocol.EvtUserConnected, protocol.UserConnected{
		PeerID:   peerID,
		Name:     c.Name,
		HasVideo: hasVideo,
	})
	co.broadcastRoomLocked(rm, protocol.EvtUpdateUserList, rm.MemberList())
	co.broadcastAllLocked(protocol.EvtRoomUpdated, rm.Summary())

	// Late joiners get the pinned block once, on join.
	if len(rm.PaymentInfo) > 0 {
		co.sendLocked(c, protocol.EvtPaymentUpdated, rm.PaymentInfo)
	}
	return nil
}

func defaultDisplayName(uid domain.UserID) string {
	s := string(uid)
	if len(s) > 5 {
		s = s[:5]
	}
	return "User-" + s
}

// startHostGraceLocked vacates the host seat but reserves it for the
// departed identity until the timer fires.
func (co *Coordinator) startHostGraceLocked(rm *room, uid domain.UserID) {
	co.cancelHostGraceLocked(rm)
	rm.HostUserID = ""
	rm.PendingHostUserID = uid
	rm.reconnectSeq++

	seq := rm.reconnectSeq
	roomID := rm.ID
	rm.reconnect = time.AfterFunc(co.grace, func() {
		co.onHostGraceExpired(roomID, uid, seq)
	})
	log.Info().Str("module", "app").Str("room", string(rm.ID)).Str("user", string(uid)).
		Dur("grace", co.grace).Msg("host grace period started")
}

// cancelHostGraceLocked stops a pending reconnect timer. Bumping the
// sequence also neutralizes a callback that already fired but has not
// taken the lock yet.
func (co *Coordinator) cancelHostGraceLocked(rm *room) {
	if rm.reconnect != nil {
		rm.reconnect.Stop()
		rm.reconnect = nil
	}
	rm.reconnectSeq++
}

// onHostGraceExpired runs on the timer goroutine. The room may have
// been deleted or re-entered since scheduling, so everything is
// re-validated under the lock.
func (co *Coordinator) onHostGraceExpired(roomID domain.RoomID, uid domain.UserID, seq uint64) {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, ok := co.rooms[roomID]
	if !ok || rm.reconnectSeq != seq || rm.PendingHostUserID != uid {
		return
	}
	rm.reconnect = nil
	rm.PendingHostUserID = ""
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(uid)).
		Msg("host grace period expired")

	if len(rm.Members) > 0 {
		next := rm.Members[0]
		rm.HostUserID = next.UserID
		if c, ok := co.clients[core.ConnID(next.ConnID)]; ok {
			co.sendLocked(c, protocol.EvtSetAsHost, nil)
		}
		co.broadcastRoomLocked(rm, protocol.EvtNewHostAssigned, protocol.NewHostAssigned{
			HostID: next.UserID,
			Name:   next.DisplayName,
		})
		log.Info().Str("module", "app").Str("room", string(roomID)).
			Str("user", string(next.UserID)).Msg("promoted new host")
	} else {
		rm.HostUserID = ""
	}
	co.checkRoomDeletionLocked(roomID, "host grace period expired")
}
