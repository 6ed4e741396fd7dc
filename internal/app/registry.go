package app

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// CreateRoom registers a new room and announces it to every connection.
// Blank names get a random token; capacity is clamped to the legal range.
func (co *Coordinator) CreateRoom(name string, capacity int, pictureRef string) domain.RoomSummary {
	co.mu.Lock()
	defer co.mu.Unlock()

	id := domain.RoomID(uuid.NewString())
	rm := &room{Room: domain.NewRoom(id, name, capacity, pictureRef)}
	co.rooms[id] = rm
	log.Info().Str("module", "app").Str("room", string(id)).Str("name", rm.Name).
		Int("capacity", rm.Capacity).Msg("room created")

	summary := rm.Summary()
	co.broadcastAllLocked(protocol.EvtRoomCreated, summary)
	return summary
}

// ListRooms snapshots the directory. Read-only.
func (co *Coordinator) ListRooms() []domain.RoomSummary {
	co.mu.Lock()
	defer co.mu.Unlock()

	out := make([]domain.RoomSummary, 0, len(co.rooms))
	for _, rm := range co.rooms {
		out = append(out, rm.Summary())
	}
	return out
}

// RoomSummary returns one room's directory entry.
func (co *Coordinator) RoomSummary(id domain.RoomID) (domain.RoomSummary, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, ok := co.rooms[id]
	if !ok {
		return domain.RoomSummary{}, false
	}
	return rm.Summary(), true
}

// ChangeCapacity resizes a room on behalf of its host. The new value
// must stay in the legal range and cannot evict seated members; the
// directory hears about the change through the usual room-updated fan-out.
func (co *Coordinator) ChangeCapacity(id core.ConnID, roomID domain.RoomID, capacity int) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	rm, c, err := co.hostRoomLocked(id, roomID)
	if err != nil {
		return err
	}
	if capacity < domain.MinCapacity || capacity > domain.MaxCapacity || capacity < len(rm.Members) {
		return domain.ErrInvalidCapacity
	}

	rm.Capacity = capacity
	log.Info().Str("module", "app").Str("room", string(rm.ID)).Str("host", string(c.UserID)).
		Int("capacity", capacity).Msg("room capacity changed")
	co.broadcastAllLocked(protocol.EvtRoomUpdated, rm.Summary())
	return nil
}

// DeleteRoom removes a room explicitly. Deleting an absent room is a no-op.
func (co *Coordinator) DeleteRoom(id domain.RoomID, reason string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.deleteRoomLocked(id, reason)
}

func (co *Coordinator) deleteRoomLocked(id domain.RoomID, reason string) {
	rm, ok := co.rooms[id]
	if !ok {
		return
	}
	co.cancelHostGraceLocked(rm)
	delete(co.rooms, id)
	log.Info().Str("module", "app").Str("room", string(id)).Str("reason", reason).Msg("room deleted")

	if rm.Picture != domain.DefaultPicture {
		go co.removePicture(rm.Picture)
	}
	co.broadcastAllLocked(protocol.EvtRoomDeleted, rm.ID)
}

// checkRoomDeletionLocked enforces the directory invariant: a room
// exists iff it has members and an effective host or one pending
// reconnection. Runs after every membership-affecting event.
func (co *Coordinator) checkRoomDeletionLocked(id domain.RoomID, trigger string) {
	rm, ok := co.rooms[id]
	if !ok {
		return
	}
	if len(rm.Members) == 0 {
		co.deleteRoomLocked(id, "room empty: "+trigger)
		return
	}
	if _, ok := rm.EffectiveHost(); !ok && rm.PendingHostUserID == "" {
		co.deleteRoomLocked(id, "no effective host: "+trigger)
	}
}
