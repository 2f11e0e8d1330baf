package service

import (
	"testing"

	"anoa.com/signupform/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInbox_DrainKeepsOrder(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	inbox := NewInbox(id)

	inbox.Success("first")
	inbox.Error("second")

	got := inbox.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, entity.NotificationSuccess, got[0].Type)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, entity.NotificationError, got[1].Type)
	assert.Equal(t, id, got[1].SessionID)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	assert.Empty(t, inbox.Drain())
	assert.NotNil(t, inbox.Drain())
}

func TestFanout(t *testing.T) {
	t.Parallel()

	a := NewInbox(uuid.New())
	b := NewInbox(uuid.New())

	Fanout{a, b}.Success("hello")
	Fanout{a, b}.Error("oops")

	for _, inbox := range []*Inbox{a, b} {
		got := inbox.Drain()
		require.Len(t, got, 2)
		assert.Equal(t, "hello", got[0].Message)
		assert.Equal(t, "oops", got[1].Message)
	}
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core), uuid.New())

	n.Success("welcome")
	n.Error("nope")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "welcome", entries[0].ContextMap()["message"])
	assert.Equal(t, entity.NotificationError, entries[1].ContextMap()["type"])
}

func TestRedisNotifier_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	n := NewRedisNotifier(nil, zap.NewNop(), uuid.New())
	assert.NotPanics(t, func() {
		n.Success("x")
		n.Error("y")
	})
}

func TestChannelFor(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6f1c2b7e-8e1a-4d2b-9f4e-0a1b2c3d4e5f")
	assert.Equal(t, "signup_notifications:6f1c2b7e-8e1a-4d2b-9f4e-0a1b2c3d4e5f", ChannelFor(id))
}
