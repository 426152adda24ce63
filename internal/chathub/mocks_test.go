package chathub_test

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"preloved/backend/internal/models"
)

// MockStore is a testify mock for the chathub.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStore) CountUserMessages(roomID uint) (int64, error) {
	args := m.Called(roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) UpsertReadCursor(roomID, userID, messageID uint) (uint, error) {
	args := m.Called(roomID, userID, messageID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockStore) BuildChatSummary(room *models.ChatRoom, viewerID uint) (*models.ChatSummary, error) {
	args := m.Called(room, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSummary), args.Error(1)
}

func (m *MockStore) LastMessageFor(room *models.ChatRoom, viewerID uint) (*models.LastMessage, error) {
	args := m.Called(room, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LastMessage), args.Error(1)
}

// mockClient is a test double for the chathub.Client interface. It records
// delivered events; reject makes every Send fail, simulating a dead
// connection.
type mockClient struct {
	userID uint

	mu     sync.Mutex
	events []any
	closed bool
	reject bool
}

func newMockClient(userID uint) *mockClient {
	return &mockClient{userID: userID}
}

func (c *mockClient) UserID() uint { return c.userID }

func (c *mockClient) Send(event any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reject || c.closed {
		return false
	}
	c.events = append(c.events, event)
	return true
}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *mockClient) Events() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.events))
	copy(out, c.events)
	return out
}

func (c *mockClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
