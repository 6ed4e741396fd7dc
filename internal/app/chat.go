package app

import (
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// Chat fans a text message out to every member of the sender's room,
// sender included, tagged with the sender's name and host flag. Nothing
// is buffered or persisted.
func (co *Coordinator) Chat(id core.ConnID, text string) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.client(id)
	if !ok {
		return domain.ErrTargetNotFound
	}
	rm, ok := co.rooms[c.RoomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	sender, ok := rm.MemberByConn(string(c.ID))
	if !ok {
		// Membership record missing for a live connection: log and make
		// the event a no-op rather than corrupting the room for others.
		log.Error().Str("module", "app").Str("conn", string(c.ID)).
			Str("room", string(rm.ID)).Msg("chat sender has no membership record")
		return nil
	}

	co.broadcastRoomLocked(rm, protocol.EvtChatMessage, protocol.ChatBroadcast{
		Message: text,
		Name:    sender.DisplayName,
		PeerID:  sender.PeerID,
		IsHost:  rm.HostUserID == sender.UserID,
	})
	return nil
}

// SetPaymentInfo pins a payment block to the room and fans it out.
// Host-only.
func (co *Coordinator) SetPaymentInfo(id core.ConnID, roomID domain.RoomID, info map[string]any) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, c, err := co.hostRoomLocked(id, roomID)
	if err != nil {
		return err
	}
	if info == nil {
		info = make(map[string]any)
	}
	rm.PaymentInfo = info
	log.Info().Str("module", "app").Str("room", string(rm.ID)).
		Str("host", string(c.UserID)).Msg("payment info pinned")
	co.broadcastRoomLocked(rm, protocol.EvtPaymentUpdated, rm.PaymentInfo)
	return nil
}

// ClearPaymentInfo unpins the payment block. Host-only.
func (co *Coordinator) ClearPaymentInfo(id core.ConnID, roomID domain.RoomID) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, _, err := co.hostRoomLocked(id, roomID)
	if err != nil {
		return err
	}
	rm.PaymentInfo = make(map[string]any)
	co.broadcastRoomLocked(rm, protocol.EvtPaymentUpdated, rm.PaymentInfo)
	return nil
}

// PaymentInfo returns the current pinned block for a requester-only
// snapshot re-send. An absent room yields an empty block, not an error.
func (co *Coordinator) PaymentInfo(roomID domain.RoomID) map[string]any {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, ok := co.rooms[roomID]
	if !ok || rm.PaymentInfo == nil {
		return map[string]any{}
	}
	return rm.PaymentInfo
}

func (co *Coordinator) hostRoomLocked(id core.ConnID, roomID domain.RoomID) (*room, *Client, error) {
	c, ok := co.client(id)
	if !ok {
		return nil, nil, domain.ErrTargetNotFound
	}
	rm, ok := co.rooms[roomID]
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	if rm.HostUserID != c.UserID {
		return nil, nil, domain.ErrNotHost
	}
	return rm, c, nil
}
