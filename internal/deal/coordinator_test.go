package deal_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"preloved/backend/internal/chathub"
	"preloved/backend/internal/deal"
	"preloved/backend/internal/localization"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetRoomByID(id uint) (*models.ChatRoom, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStore) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) ApplyDealTransition(roomID uint, from, to models.RoomStatus, systemText string) (*models.ChatRoom, *models.Listing, *models.ChatMessage, error) {
	args := m.Called(roomID, from, to, systemText)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*models.ChatRoom), args.Get(1).(*models.Listing), args.Get(2).(*models.ChatMessage), args.Error(3)
}

type mockClient struct {
	userID uint

	mu     sync.Mutex
	events []any
}

func (c *mockClient) UserID() uint { return c.userID }

func (c *mockClient) Send(event any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return true
}

func (c *mockClient) Close() {}

func (c *mockClient) Events() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.events))
	copy(out, c.events)
	return out
}

func testLocalizer() *localization.Localizer {
	return localization.NewStatic("en", map[string]map[string]string{
		"en": {
			"deal.reserved":  "%s reserved the item.",
			"deal.cancelled": "%s cancelled the reservation.",
			"deal.completed": "The deal is complete.",
		},
	})
}

func testRoom(status models.RoomStatus) *models.ChatRoom {
	return &models.ChatRoom{
		Model:     gorm.Model{ID: 42},
		ListingID: 7,
		SellerID:  1,
		BuyerID:   2,
		Status:    status,
	}
}

func TestUpdateStatusReserves(t *testing.T) {
	store := new(MockStore)
	rooms := chathub.NewRoomHub()
	buyer := &mockClient{userID: 2}
	seller := &mockClient{userID: 1}
	rooms.Join(42, buyer)
	rooms.Join(42, seller)

	room := testRoom(models.RoomActive)
	updated := testRoom(models.RoomReserved)
	listing := &models.Listing{Model: gorm.Model{ID: 7}, Status: models.ListingReserved}
	sysMsg := &models.ChatMessage{
		Model:   gorm.Model{ID: 300, CreatedAt: time.Now()},
		RoomID:  42,
		Type:    models.MessageSystem,
		Content: "buyer2 reserved the item.",
	}

	store.On("GetRoomByID", uint(42)).Return(room, nil)
	store.On("GetUserByID", uint(2)).Return(&models.User{Nickname: "buyer2"}, nil)
	store.On("ApplyDealTransition", uint(42), models.RoomActive, models.RoomReserved,
		"buyer2 reserved the item.").Return(updated, listing, sysMsg, nil)

	co := deal.NewCoordinator(store, rooms, testLocalizer(), "en")
	result, err := co.UpdateStatus(42, models.RoomReserved, 2)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomReserved, result.Room.Status)
	assert.Equal(t, models.ListingReserved, result.Listing.Status)
	assert.Equal(t, uint(2), result.ChangedBy)

	// Both participants see the same deal_update.
	for _, conn := range []*mockClient{buyer, seller} {
		events := conn.Events()
		assert.Len(t, events, 1)
		ev := events[0].(models.DealUpdateEvent)
		assert.Equal(t, models.EventDealUpdate, ev.Event)
		assert.Equal(t, "RESERVED", ev.DealStatus)
		assert.Equal(t, "RESERVED", ev.PostStatus)
		assert.Equal(t, sysMsg.Content, ev.SystemMessage)
	}
	store.AssertExpectations(t)
}

func TestUpdateStatusCancelsReservation(t *testing.T) {
	store := new(MockStore)
	rooms := chathub.NewRoomHub()

	room := testRoom(models.RoomReserved)
	updated := testRoom(models.RoomActive)
	listing := &models.Listing{Model: gorm.Model{ID: 7}, Status: models.ListingSelling}
	sysMsg := &models.ChatMessage{RoomID: 42, Type: models.MessageSystem, Content: "seller1 cancelled the reservation."}

	store.On("GetRoomByID", uint(42)).Return(room, nil)
	store.On("GetUserByID", uint(1)).Return(&models.User{Nickname: "seller1"}, nil)
	store.On("ApplyDealTransition", uint(42), models.RoomReserved, models.RoomActive,
		"seller1 cancelled the reservation.").Return(updated, listing, sysMsg, nil)

	co := deal.NewCoordinator(store, rooms, testLocalizer(), "en")
	result, err := co.UpdateStatus(42, models.RoomActive, 1)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomActive, result.Room.Status)
	assert.Equal(t, models.ListingSelling, result.Listing.Status)
	store.AssertExpectations(t)
}

func TestUpdateStatusCompletes(t *testing.T) {
	store := new(MockStore)
	rooms := chathub.NewRoomHub()

	room := testRoom(models.RoomReserved)
	updated := testRoom(models.RoomCompleted)
	listing := &models.Listing{Model: gorm.Model{ID: 7}, Status: models.ListingSold}
	sysMsg := &models.ChatMessage{RoomID: 42, Type: models.MessageSystem, Content: "The deal is complete."}

	store.On("GetRoomByID", uint(42)).Return(room, nil)
	store.On("GetUserByID", uint(2)).Return(&models.User{Nickname: "buyer2"}, nil)
	store.On("ApplyDealTransition", uint(42), models.RoomReserved, models.RoomCompleted,
		"The deal is complete.").Return(updated, listing, sysMsg, nil)

	co := deal.NewCoordinator(store, rooms, testLocalizer(), "en")
	result, err := co.UpdateStatus(42, models.RoomCompleted, 2)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomCompleted, result.Room.Status)
	assert.Equal(t, models.ListingSold, result.Listing.Status)
	store.AssertExpectations(t)
}

func TestUpdateStatusValidation(t *testing.T) {
	cases := []struct {
		name      string
		current   models.RoomStatus
		requested models.RoomStatus
		actorID   uint
		want      error
	}{
		{"non-participant", models.RoomActive, models.RoomReserved, 99, deal.ErrForbidden},
		{"unknown status", models.RoomActive, models.RoomStatus("SHIPPED"), 2, deal.ErrInvalidStatus},
		{"same status", models.RoomActive, models.RoomActive, 2, deal.ErrSameStatus},
		{"completed is terminal", models.RoomCompleted, models.RoomActive, 2, deal.ErrCompletedLocked},
		{"active cannot complete directly", models.RoomActive, models.RoomCompleted, 2, deal.ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockStore)
			store.On("GetRoomByID", uint(42)).Return(testRoom(tc.current), nil)

			co := deal.NewCoordinator(store, chathub.NewRoomHub(), testLocalizer(), "en")
			result, err := co.UpdateStatus(42, tc.requested, tc.actorID)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.want)
			// Rejected before any mutation.
			store.AssertNotCalled(t, "ApplyDealTransition",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateStatusRoomNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetRoomByID", uint(42)).Return(nil, storage.ErrNotFound)

	co := deal.NewCoordinator(store, chathub.NewRoomHub(), testLocalizer(), "en")
	result, err := co.UpdateStatus(42, models.RoomReserved, 2)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateStatusPropagatesConflict(t *testing.T) {
	store := new(MockStore)
	rooms := chathub.NewRoomHub()
	conn := &mockClient{userID: 2}
	rooms.Join(42, conn)

	store.On("GetRoomByID", uint(42)).Return(testRoom(models.RoomActive), nil)
	store.On("GetUserByID", uint(2)).Return(&models.User{Nickname: "buyer2"}, nil)
	store.On("ApplyDealTransition", uint(42), models.RoomActive, models.RoomReserved,
		mock.AnythingOfType("string")).Return(nil, nil, nil, storage.ErrConflict)

	co := deal.NewCoordinator(store, rooms, testLocalizer(), "en")
	result, err := co.UpdateStatus(42, models.RoomReserved, 2)

	// A lost race surfaces as a conflict and nothing is broadcast.
	assert.Nil(t, result)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Empty(t, conn.Events())
}
