package app

import (
	"github.com/DrJasper1/emerson-colab/internal/core"
	"github.com/DrJasper1/emerson-colab/internal/domain"
)

// Client is one live connection plus its durable identity. ConnID,
// UserID and Addr are fixed at connect time; RoomID and PeerID are set
// once at join and only cleared by the disconnect path.
type Client struct {
	ID     core.ConnID
	UserID domain.UserID
	Addr   string
	Name   string
	Conn   core.SignalConnection

	RoomID domain.RoomID
	PeerID string
}
