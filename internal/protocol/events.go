// Package protocol defines the closed set of channel events and their
// payloads. Dispatch is an exhaustive switch over EventType, so adding
// an event means touching this file and the dispatcher together.
package protocol

import (
	"github.com/pion/webrtc/v4"

	"github.com/DrJasper1/emerson-colab/internal/domain"
)

type EventType string

// Inbound commands.
const (
	EvtJoinRoom         EventType = "join-room"
	EvtOffer            EventType = "offer"
	EvtAnswer           EventType = "answer"
	EvtICECandidate     EventType = "ice-candidate"
	EvtMediaStatus      EventType = "user-media-status-update"
	EvtSendChat         EventType = "send-chat-message"
	EvtKickUser         EventType = "kick-user"
	EvtBanUser          EventType = "ban-user"
	EvtSetPaymentInfo   EventType = "set-payment-info"
	EvtClearPaymentInfo EventType = "clear-payment-info"
	EvtRequestUserList  EventType = "request-user-list"
	EvtRequestPayment   EventType = "request-payment-info"
	EvtRequestActive    EventType = "request-total-active-users"
	EvtChangeCapacity   EventType = "broadcast-room-update"
	EvtVerifyAdminPass  EventType = "verify-admin-password"
)

// Outbound notifications.
const (
	EvtSetAsHost        EventType = "set-as-host"
	EvtUpdateUserList   EventType = "update-user-list"
	EvtUserConnected    EventType = "user-connected"
	EvtUserDisconnected EventType = "user-disconnected"
	EvtNewHostAssigned  EventType = "new-host-assigned"
	EvtYouWereKicked    EventType = "you-were-kicked"
	EvtYouWereBanned    EventType = "you-were-banned"
	EvtModSuccess       EventType = "moderation-success"
	EvtModError         EventType = "moderation-error"
	EvtRoomCreated      EventType = "room-created-broadcast"
	EvtRoomUpdated      EventType = "room-updated"
	EvtRoomDeleted      EventType = "room-deleted-broadcast"
	EvtActiveUsers      EventType = "total-active-users-update"
	EvtChatMessage      EventType = "chat-message"
	EvtPaymentUpdated   EventType = "payment-info-updated"
	EvtPeerMediaStatus  EventType = "peer-media-status-changed"
	EvtJoinFailed       EventType = "join-failed"
	EvtError            EventType = "error-message"
	EvtAdminVerified    EventType = "admin-verify-result"
)

// JoinRoom asks to take a seat in a room under a transport peer id.
type JoinRoom struct {
	RoomID   domain.RoomID `json:"roomId"`
	PeerID   string        `json:"peerId"`
	HasVideo bool          `json:"hasVideo"`
}

// Offer carries an SDP offer/answer towards a peer in the same room.
// The server forwards it verbatim; only the media layer reads the SDP.
type Offer struct {
	TargetPeerID string                    `json:"targetPeerId"`
	SDP          webrtc.SessionDescription `json:"sdp"`
}

type ICECandidate struct {
	TargetPeerID string                  `json:"targetPeerId"`
	Candidate    webrtc.ICECandidateInit `json:"candidate"`
}

// ForwardedOffer is what the target peer receives: the payload plus the
// sender's peer id so it can route the response.
type ForwardedOffer struct {
	SDP          webrtc.SessionDescription `json:"sdp"`
	SenderPeerID string                    `json:"senderPeerId"`
}

type ForwardedCandidate struct {
	Candidate    webrtc.ICECandidateInit `json:"candidate"`
	SenderPeerID string                  `json:"senderPeerId"`
}

type MediaStatus struct {
	PeerID   string        `json:"peerId"`
	RoomID   domain.RoomID `json:"roomId"`
	HasVideo bool          `json:"hasVideo"`
}

type ChatSend struct {
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type ChatBroadcast struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	PeerID  string `json:"peerId"`
	IsHost  bool   `json:"isHost"`
}

type ModerationTarget struct {
	TargetPeerID string `json:"targetPeerId"`
}

type ModerationResult struct {
	Action       string `json:"action"`
	TargetPeerID string `json:"targetPeerId,omitempty"`
	Message      string `json:"message"`
}

type PaymentInfoSet struct {
	RoomID domain.RoomID  `json:"roomId"`
	Info   map[string]any `json:"info"`
}

// RoomRef addresses commands that only name a room.
type RoomRef struct {
	RoomID domain.RoomID `json:"roomId"`
}

// RoomUpdate is the host's capacity-change request. The field names
// match the room object the directory page already consumes.
type RoomUpdate struct {
	RoomID   domain.RoomID `json:"id"`
	Capacity int           `json:"capacity"`
}

type AdminPassword struct {
	Password string `json:"password"`
}

type AdminVerified struct {
	Success bool `json:"success"`
}

type UserConnected struct {
	PeerID   string `json:"peerId"`
	Name     string `json:"name"`
	HasVideo bool   `json:"hasVideo"`
}

type UserDisconnected struct {
	PeerID string `json:"peerId"`
}

type NewHostAssigned struct {
	HostID domain.UserID `json:"hostId"`
	Name   string        `json:"hostDisplayName"`
}

type PeerMediaStatus struct {
	PeerID   string `json:"peerId"`
	HasVideo bool   `json:"hasVideo"`
}

// Notice is the terminal message before a forced disconnect.
type Notice struct {
	RoomID domain.RoomID `json:"roomId"`
	Reason string        `json:"reason"`
}

type JoinFailed struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// CommandError reports a failed command back to its originating
// connection. Code is one of the domain taxonomy codes.
type CommandError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ActiveUsers struct {
	Count int `json:"count"`
}
