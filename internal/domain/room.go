// Package domain contains entities without transport logic, just state
// and the small invariants the registry relies on.
package domain

import (
	"math/rand/v2"
)

type (
	RoomID string
	UserID string
)

const (
	MinCapacity     = 2
	MaxCapacity     = 10
	DefaultCapacity = 2
	MaxRoomNameLen  = 36

	DefaultPicture = "/default_room_icon.png"
)

// Room is a named call space. Host bookkeeping invariant: at most one
// of HostUserID / PendingHostUserID is the authority at any instant.
type Room struct {
	ID       RoomID
	Name     string
	Picture  string
	Capacity int

	// Members keeps join order; the first remaining member is promoted
	// when the host grace period expires.
	Members []*Member

	HostUserID        UserID
	PendingHostUserID UserID

	// BannedAddrs is keyed by network address, not identity, so a ban
	// outlives identity changes. Lives only as long as the room does.
	BannedAddrs map[string]struct{}

	PaymentInfo map[string]any
}

func NewRoom(id RoomID, name string, capacity int, picture string) *Room {
	if name == "" {
		name = RandomRoomName()
	}
	if len(name) > MaxRoomNameLen {
		name = name[:MaxRoomNameLen]
	}
	if picture == "" {
		picture = DefaultPicture
	}
	return &Room{
		ID:          id,
		Name:        name,
		Picture:     picture,
		Capacity:    ClampCapacity(capacity),
		BannedAddrs: make(map[string]struct{}),
		PaymentInfo: make(map[string]any),
	}
}

// ClampCapacity bounds a requested capacity into [MinCapacity, MaxCapacity].
func ClampCapacity(c int) int {
	if c < MinCapacity {
		return MinCapacity
	}
	if c > MaxCapacity {
		return MaxCapacity
	}
	return c
}

const roomNameChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomRoomName generates a "Room-XXXXXX" token for rooms created
// without a name.
func RandomRoomName() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = roomNameChars[rand.IntN(len(roomNameChars))]
	}
	return "Room-" + string(b)
}

func (r *Room) IsFull() bool {
	return len(r.Members) >= r.Capacity
}

func (r *Room) AddMember(m *Member) {
	r.Members = append(r.Members, m)
}

// RemoveMemberByConn drops the member bound to the given connection and
// reports the removed record.
func (r *Room) RemoveMemberByConn(connID string) (*Member, bool) {
	for i, m := range r.Members {
		if m.ConnID == connID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return m, true
		}
	}
	return nil, false
}

func (r *Room) MemberByPeer(peerID string) (*Member, bool) {
	for _, m := range r.Members {
		if m.PeerID == peerID {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) MemberByConn(connID string) (*Member, bool) {
	for _, m := range r.Members {
		if m.ConnID == connID {
			return m, true
		}
	}
	return nil, false
}

// EffectiveHost returns the member currently holding host authority.
// A HostUserID with no matching member means there is no effective host.
func (r *Room) EffectiveHost() (*Member, bool) {
	if r.HostUserID == "" {
		return nil, false
	}
	for _, m := range r.Members {
		if m.UserID == r.HostUserID {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) Ban(addr string) {
	r.BannedAddrs[addr] = struct{}{}
}

func (r *Room) IsBanned(addr string) bool {
	_, ok := r.BannedAddrs[addr]
	return ok
}

// RoomSummary is the directory listing view.
type RoomSummary struct {
	ID        RoomID `json:"id"`
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
	Capacity  int    `json:"capacity"`
	Picture   string `json:"picture"`
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:        r.ID,
		Name:      r.Name,
		UserCount: len(r.Members),
		Capacity:  r.Capacity,
		Picture:   r.Picture,
	}
}

// MemberList snapshots the full membership in join order.
func (r *Room) MemberList() []MemberInfo {
	out := make([]MemberInfo, 0, len(r.Members))
	for _, m := range r.Members {
		out = append(out, m.Info())
	}
	return out
}
