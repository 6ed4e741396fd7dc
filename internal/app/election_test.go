package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func TestFirstJoinBecomesHost(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("test", 4, "")

	a, ac := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))

	assert.True(t, ac.received(t, protocol.EvtSetAsHost))
	rm := co.rooms[summary.ID]
	assert.Equal(t, domain.UserID("alice"), rm.HostUserID)
}

func TestSecondJoinIsOrdinaryMember(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))

	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	assert.False(t, bc.received(t, protocol.EvtSetAsHost))
	assert.Equal(t, domain.UserID("alice"), co.rooms[summary.ID].HostUserID)

	// B sees the full list; everyone saw the incremental delta except B.
	env, ok := bc.last(t, protocol.EvtUpdateUserList)
	require.True(t, ok)
	var list []domain.MemberInfo
	require.NoError(t, env.Bind(&list))
	assert.Len(t, list, 2)
}

func TestHostDisconnectEntersPendingReconnect(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	co.Disconnect(a.ID)

	rm := co.rooms[summary.ID]
	require.NotNil(t, rm)
	assert.Equal(t, domain.UserID(""), rm.HostUserID)
	assert.Equal(t, domain.UserID("alice"), rm.PendingHostUserID)
	assert.NotNil(t, rm.reconnect)
}

func TestHostReconnectWithinGraceIsReinstated(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	co.Disconnect(a.ID)

	// Same durable identity, fresh connection and peer id.
	a2, a2c := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a2.ID, summary.ID, "peer-a2", true))

	assert.True(t, a2c.received(t, protocol.EvtSetAsHost))
	rm := co.rooms[summary.ID]
	assert.Equal(t, domain.UserID("alice"), rm.HostUserID)
	assert.Equal(t, domain.UserID(""), rm.PendingHostUserID)
	assert.Nil(t, rm.reconnect)

	// B was never promoted.
	assert.False(t, bc.received(t, protocol.EvtSetAsHost))
}

func TestDifferentIdentityDuringGraceDoesNotBecomeHost(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	co.Disconnect(a.ID)

	c, cc := connect(co, "carol", "10.0.0.3")
	require.NoError(t, co.Join(c.ID, summary.ID, "peer-c", false))

	assert.False(t, cc.received(t, protocol.EvtSetAsHost))
	rm := co.rooms[summary.ID]
	assert.Equal(t, domain.UserID(""), rm.HostUserID)
	assert.Equal(t, domain.UserID("alice"), rm.PendingHostUserID)
}

func TestGraceExpiryPromotesFirstRemainingMember(t *testing.T) {
	co := newTestCoordinator(30 * time.Millisecond)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	c, cc := connect(co, "carol", "10.0.0.3")
	require.NoError(t, co.Join(c.ID, summary.ID, "peer-c", false))

	co.Disconnect(a.ID)

	require.Eventually(t, func() bool {
		co.mu.Lock()
		defer co.mu.Unlock()
		rm, ok := co.rooms[summary.ID]
		return ok && rm.HostUserID == "bob"
	}, time.Second, 5*time.Millisecond)

	assert.True(t, bc.received(t, protocol.EvtSetAsHost))
	assert.False(t, cc.received(t, protocol.EvtSetAsHost))

	env, ok := cc.last(t, protocol.EvtNewHostAssigned)
	require.True(t, ok)
	var p protocol.NewHostAssigned
	require.NoError(t, env.Bind(&p))
	assert.Equal(t, domain.UserID("bob"), p.HostID)
}

func TestRoomDeletedWhenLastMemberLeaves(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))

	_, watcher := connect(co, "watcher", "10.0.0.9")
	co.Disconnect(a.ID)

	_, ok := co.RoomSummary(summary.ID)
	assert.False(t, ok)
	assert.True(t, watcher.received(t, protocol.EvtRoomDeleted))
}

func TestRoomDeletedWhenGracePendingAndAllLeave(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	co.Disconnect(a.ID) // grace starts, B remains
	co.Disconnect(b.ID) // room now empty, deleted eagerly

	_, ok := co.RoomSummary(summary.ID)
	assert.False(t, ok)
}

func TestStaleGraceTimerIsIgnoredAfterReconnect(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("test", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	co.Disconnect(a.ID)

	co.mu.Lock()
	staleSeq := co.rooms[summary.ID].reconnectSeq
	co.mu.Unlock()

	a2, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a2.ID, summary.ID, "peer-a2", true))

	// A callback scheduled before the reconnect must be a no-op.
	co.onHostGraceExpired(summary.ID, "alice", staleSeq)

	rm := co.rooms[summary.ID]
	assert.Equal(t, domain.UserID("alice"), rm.HostUserID)
	assert.Len(t, rm.Members, 2)
}

// Full reconnect scenario: capacity 2, A hosts, B joins, A drops and
// returns within the grace period.
func TestHostReconnectScenario(t *testing.T) {
	co := newTestCoordinator(time.Hour)
	summary := co.CreateRoom("duo", 2, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))
	co.Disconnect(a.ID)
	bc.reset()

	a2, a2c := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a2.ID, summary.ID, "peer-a2", true))

	assert.True(t, a2c.received(t, protocol.EvtSetAsHost))
	assert.False(t, bc.received(t, protocol.EvtSetAsHost))
	assert.False(t, bc.received(t, protocol.EvtNewHostAssigned))

	rm := co.rooms[summary.ID]
	assert.Equal(t, domain.UserID("alice"), rm.HostUserID)
	assert.Len(t, rm.Members, 2)
}

func TestJoinRejectsWhenFull(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("duo", 2, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, _ := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	c, _ := connect(co, "carol", "10.0.0.3")
	err := co.Join(c.ID, summary.ID, "peer-c", false)
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Len(t, co.rooms[summary.ID].Members, 2)
}

func TestSecondJoinOnSameConnectionRejected(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	one := co.CreateRoom("one", 4, "")
	two := co.CreateRoom("two", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, one.ID, "peer-a", true))

	assert.Error(t, co.Join(a.ID, two.ID, "peer-a2", false))
	assert.Error(t, co.Join(a.ID, one.ID, "peer-a3", false))

	// No phantom membership anywhere.
	assert.Len(t, co.rooms[one.ID].Members, 1)
	assert.Len(t, co.rooms[two.ID].Members, 0)
	assert.Equal(t, one.ID, a.RoomID)
	assert.Equal(t, "peer-a", a.PeerID)
}

func TestJoinUnknownRoom(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	a, _ := connect(co, "alice", "10.0.0.1")
	err := co.Join(a.ID, "no-such-room", "peer-a", false)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
