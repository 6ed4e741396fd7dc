package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrJasper1/emerson-colab/internal/domain"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

func TestChatFansOutToEveryoneIncludingSender(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("chat", 4, "")

	a, ac := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	require.NoError(t, co.Chat(b.ID, "hello"))

	for _, conn := range []*fakeConn{ac, bc} {
		env, ok := conn.last(t, protocol.EvtChatMessage)
		require.True(t, ok)
		var p protocol.ChatBroadcast
		require.NoError(t, env.Bind(&p))
		assert.Equal(t, "hello", p.Message)
		assert.Equal(t, "peer-b", p.PeerID)
		assert.False(t, p.IsHost)
	}
}

func TestChatTagsHostMessages(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("chat", 4, "")

	a, ac := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))

	require.NoError(t, co.Chat(a.ID, "host speaking"))

	env, ok := ac.last(t, protocol.EvtChatMessage)
	require.True(t, ok)
	var p protocol.ChatBroadcast
	require.NoError(t, env.Bind(&p))
	assert.True(t, p.IsHost)
}

func TestChatOutsideRoomFails(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	c, _ := connect(co, "loner", "10.0.0.3")
	assert.ErrorIs(t, co.Chat(c.ID, "anyone there"), domain.ErrRoomNotFound)
}

func TestSetPaymentInfoIsHostOnly(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("pay", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	err := co.SetPaymentInfo(b.ID, summary.ID, map[string]any{"iban": "XX00"})
	assert.ErrorIs(t, err, domain.ErrNotHost)

	require.NoError(t, co.SetPaymentInfo(a.ID, summary.ID, map[string]any{"iban": "XX00"}))

	env, ok := bc.last(t, protocol.EvtPaymentUpdated)
	require.True(t, ok)
	var info map[string]any
	require.NoError(t, env.Bind(&info))
	assert.Equal(t, "XX00", info["iban"])
}

func TestLateJoinerReceivesPinnedPaymentInfo(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("pay", 4, "")

	a, _ := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	require.NoError(t, co.SetPaymentInfo(a.ID, summary.ID, map[string]any{"note": "split"}))

	b, bc := connect(co, "bob", "10.0.0.2")
	require.NoError(t, co.Join(b.ID, summary.ID, "peer-b", false))

	env, ok := bc.last(t, protocol.EvtPaymentUpdated)
	require.True(t, ok)
	var info map[string]any
	require.NoError(t, env.Bind(&info))
	assert.Equal(t, "split", info["note"])
}

func TestClearPaymentInfoBroadcastsEmptyBlock(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	summary := co.CreateRoom("pay", 4, "")

	a, ac := connect(co, "alice", "10.0.0.1")
	require.NoError(t, co.Join(a.ID, summary.ID, "peer-a", true))
	require.NoError(t, co.SetPaymentInfo(a.ID, summary.ID, map[string]any{"note": "split"}))
	require.NoError(t, co.ClearPaymentInfo(a.ID, summary.ID))

	env, ok := ac.last(t, protocol.EvtPaymentUpdated)
	require.True(t, ok)
	var info map[string]any
	require.NoError(t, env.Bind(&info))
	assert.Empty(t, info)

	assert.Empty(t, co.PaymentInfo(summary.ID))
}

func TestPaymentInfoSnapshotForUnknownRoomIsEmpty(t *testing.T) {
	co := newTestCoordinator(time.Minute)
	assert.Empty(t, co.PaymentInfo("nope"))
}
