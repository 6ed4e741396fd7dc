// Package app owns all room and presence state. Every entrypoint takes
// the coordinator mutex, so events are applied strictly one at a time,
// run to completion, and never interleave mid-mutation.
package app

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

const DefaultGracePeriod = 30 * time.Second

// room wraps the entity with its reconnect timer. The sequence number
// invalidates a timer that fires after it was logically cancelled.
type room struct {
	*domain.Room
	reconnect    *time.Timer
	reconnectSeq uint64
}

type Options struct {
	// GracePeriod is how long a disconnected host may reclaim the room.
	GracePeriod time.Duration

	// RemovePicture releases an uploaded room picture. Called on its own
	// goroutine so file I/O never runs under the coordinator lock.
	RemovePicture func(pictureRef string)

	// AddrGone fires when an address's last connection closes, so
	// per-address resources like rate limiter buckets can be released.
	AddrGone func(addr string)
}

type Coordinator struct {
	mu      sync.Mutex
	rooms   map[domain.RoomID]*room
	clients map[core.ConnID]*Client

	// presence counts open connections per source address; the distinct
	// key count is the published total-active-users metric.
	presence map[string]int

	grace         time.Duration
	removePicture func(string)
	addrGone      func(string)
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.RemovePicture == nil {
		opts.RemovePicture = removeUploadedPicture
	}
	return &Coordinator{
		rooms:         make(map[domain.RoomID]*room),
		clients:       make(map[core.ConnID]*Client),
		presence:      make(map[string]int),
		grace:         opts.GracePeriod,
		removePicture: opts.RemovePicture,
		addrGone:      opts.AddrGone,
	}
}

func removeUploadedPicture(ref string) {
	if !strings.HasPrefix(ref, "/room_pictures/") {
		return
	}
	if err := os.Remove("." + ref); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("module", "app").Str("picture", ref).Msg("remove room picture")
	}
}

// Connect registers a new connection and publishes the presence count.
func (co *Coordinator) Connect(c *Client) {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.clients[c.ID] = c
	co.presence[c.Addr]++
	log.Info().Str("module", "app").Str("conn", string(c.ID)).Str("addr", c.Addr).
		Int("active", len(co.presence)).Msg("client connected")
	co.broadcastAllLocked(protocol.EvtActiveUsers, protocol.ActiveUsers{Count: len(co.presence)})
}

// Disconnect is the single close handler for a connection: presence
// bookkeeping, membership removal, host failover and the room deletion
// check all happen here, exactly once.
func (co *Coordinator) Disconnect(id core.ConnID) {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.clients[id]
	if !ok {
		return
	}
	delete(co.clients, id)

	if co.presence[c.Addr] <= 1 {
		delete(co.presence, c.Addr)
		if co.addrGone != nil {
			co.addrGone(c.Addr)
		}
	} else {
		co.presence[c.Addr]--
	}
	co.broadcastAllLocked(protocol.EvtActiveUsers, protocol.ActiveUsers{Count: len(co.presence)})

	rm, ok := co.rooms[c.RoomID]
	if !ok {
		return
	}
	member, ok := rm.RemoveMemberByConn(string(c.ID))
	if !ok {
		log.Warn().Str("module", "app").Str("conn", string(c.ID)).
			Str("room", string(c.RoomID)).Msg("disconnect without membership record")
		return
	}
	log.Info().Str("module", "app").Str("conn", string(c.ID)).Str("peer", member.PeerID).
		Str("room", string(rm.ID)).Msg("member left")

	co.broadcastRoomLocked(rm, protocol.EvtUserDisconnected, protocol.UserDisconnected{PeerID: member.PeerID})
	co.broadcastRoomLocked(rm, protocol.EvtUpdateUserList, rm.MemberList())
	co.broadcastAllLocked(protocol.EvtRoomUpdated, rm.Summary())

	wasHost := rm.HostUserID == c.UserID ||
		(rm.HostUserID == "" && rm.PendingHostUserID == c.UserID)
	if wasHost && len(rm.Members) > 0 {
		co.startHostGraceLocked(rm, c.UserID)
		return
	}
	co.checkRoomDeletionLocked(rm.ID, "member disconnected")
}

// ActiveUsers reports the current distinct-address count.
func (co *Coordinator) ActiveUsers() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.presence)
}

func (co *Coordinator) client(id core.ConnID) (*Client, bool) {
	c, ok := co.clients[id]
	return c, ok
}

// sendLocked encodes and hands a frame to one connection. Backpressure
// drops are the transport's problem; state is already consistent.
func (co *Coordinator) sendLocked(c *Client, t protocol.EventType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", string(t)).Msg("encode event")
		return
	}
	if err := c.Conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app").Str("conn", string(c.ID)).
			Str("event", string(t)).Msg("send dropped")
	}
}

func (co *Coordinator) broadcastAllLocked(t protocol.EventType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", string(t)).Msg("encode broadcast")
		return
	}
	for _, c := range co.clients {
		if err := c.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app").Str("conn", string(c.ID)).
				Str("event", string(t)).Msg("broadcast dropped")
		}
	}
}

func (co *Coordinator) broadcastRoomLocked(rm *room, t protocol.EventType, payload any) {
	co.broadcastRoomExceptLocked(rm, "", t, payload)
}

func (co *Coordinator) broadcastRoomExceptLocked(rm *room, skip core.ConnID, t protocol.EventType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", string(t)).Msg("encode room broadcast")
		return
	}
	for _, m := range rm.Members {
		if core.ConnID(m.ConnID) == skip {
			continue
		}
		c, ok := co.clients[core.ConnID(m.ConnID)]
		if !ok {
			continue
		}
		if err := c.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app").Str("conn", m.ConnID).
				Str("event", string(t)).Msg("room broadcast dropped")
		}
	}
}
