package chathub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"preloved/backend/internal/chathub"
	"preloved/backend/internal/models"
)

func TestListHubNotifyUserWrapsPayload(t *testing.T) {
	hub := chathub.NewListHub()
	conn := newMockClient(5)
	hub.Join(5, conn)

	payload := models.ChatListUpdate{ChatID: 7}
	hub.NotifyUser(5, models.EventChatListUpdate, payload)

	events := conn.Events()
	assert.Len(t, events, 1)
	ev, ok := events[0].(models.ListEvent)
	assert.True(t, ok)
	assert.Equal(t, models.EventChatListUpdate, ev.Event)
	assert.Equal(t, payload, ev.Payload)
}

func TestListHubNotifyOnlyTargetUser(t *testing.T) {
	hub := chathub.NewListHub()
	target := newMockClient(5)
	other := newMockClient(6)
	hub.Join(5, target)
	hub.Join(6, other)

	hub.NotifyUser(5, models.EventChatCreated, nil)

	assert.Len(t, target.Events(), 1)
	assert.Empty(t, other.Events())
}

func TestListHubNotifyWithoutConnectionsIsNoop(t *testing.T) {
	hub := chathub.NewListHub()
	hub.NotifyUser(5, models.EventChatCreated, nil)
	assert.Equal(t, 0, hub.Count(5))
}

func TestListHubMultipleConnectionsPerUser(t *testing.T) {
	hub := chathub.NewListHub()
	phone := newMockClient(5)
	laptop := newMockClient(5)
	hub.Join(5, phone)
	hub.Join(5, laptop)

	assert.Equal(t, 2, hub.Count(5))

	hub.NotifyUser(5, models.EventChatCreated, nil)
	assert.Len(t, phone.Events(), 1)
	assert.Len(t, laptop.Events(), 1)

	hub.Leave(5, phone)
	assert.Equal(t, 1, hub.Count(5))
}

func TestListHubDropsDeadConnection(t *testing.T) {
	hub := chathub.NewListHub()
	dead := newMockClient(5)
	dead.reject = true
	hub.Join(5, dead)

	hub.NotifyUser(5, models.EventChatCreated, nil)

	assert.Equal(t, 0, hub.Count(5))
	assert.True(t, dead.Closed())
}
