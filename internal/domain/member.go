package domain

// Member is one occupied seat in a room. The same UserID may reappear
// in a later Member record after a reconnect; PeerID and ConnID are
// fresh each time.
type Member struct {
	PeerID      string
	ConnID      string
	UserID      UserID
	DisplayName string
	HasVideo    bool
	Addr        string
}

// MemberInfo is the read-only view sent in user-list snapshots.
// No transport or address fields leak out.
type MemberInfo struct {
	PeerID   string `json:"id"`
	Name     string `json:"name"`
	HasVideo bool   `json:"hasVideo"`
}

func (m *Member) Info() MemberInfo {
	return MemberInfo{PeerID: m.PeerID, Name: m.DisplayName, HasVideo: m.HasVideo}
}
