package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func TestMediaStatusUpdateBroadcasts(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("media", 4, "")

	a, ac := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", false))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	ac.reset()
	bc.reset()

	require.NoError(t, co.UpdateMediaStatus(a.ID, summary.ID, "peer-a", true))

	// Others get the delta; the sender only sees the refreshed list.
	env, ok := bc.last(t, protocol.EvtPeerMediaStatus)
	require.True(t, ok)
	var p protocol.PeerMediaStatus
	require.NoError(t, env.Bind(&p))
	assert.Equal(t, "peer-a", p.PeerID)
	assert.True(t, p.HasVideo)
	assert.False(t, ac.received(t, protocol.EvtPeerMediaStatus))

	env, ok = ac.last(t, protocol.EvtUpdateUserList)
	require.True(t, ok)
	var list []domain.MemberInfo
	require.NoError(t, env.Bind(&list))
	require.Len(t, list, 2)
	assert.True(t, list[0].HasVideo)
}

func TestMediaStatusRejectsMismatchedIdentity(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("media", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", false))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	// B claims A's peer id.
	err := co.UpdateMediaStatus(b.ID, summary.ID, "peer-a", true)
	assert.Error(t, err)

	member, ok := co.rooms[summary.ID].MemberByPeer("peer-a")
	require.True(t, ok)
	assert.False(t, member.HasVideo)
}

func TestUserListSnapshot(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("media", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", false))

	list, err := co.UserList(summary.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "peer-a", list[0].PeerID)

	_, err = co.UserList("missing")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
