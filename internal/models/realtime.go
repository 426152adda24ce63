package models

// Wire envelopes for the two WebSocket channels. Everything is JSON text
// frames; the Event field discriminates.

// Inbound event names (room channel).
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventReadMessage = "read_message"
	EventLeaveRoom   = "leave_room"
)

// Inbound event names (chat-list channel).
const (
	EventJoinChatList  = "join_chat_list"
	EventLeaveChatList = "leave_chat_list"
)

// Outbound event names.
const (
	EventSystemMessage  = "system_message"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
	EventDealUpdate     = "deal_update"
	EventRead           = "read"
	EventChatCreated    = "chat_created"
	EventChatListUpdate = "chat_list_update"
)

// WebSocket close codes. 1000 is normal closure.
const (
	CloseInvalidToken = 4001
	CloseForbidden    = 4003
	CloseNotFound     = 4004
)

// InboundEvent is the envelope every client frame is decoded into.
type InboundEvent struct {
	Event     string `json:"event"`
	Type      string `json:"type,omitempty"`
	Content   string `json:"content,omitempty"`
	MessageID uint   `json:"messageId,omitempty"`
}

// SystemMessageEvent is a server-originated informational event.
type SystemMessageEvent struct {
	Event   string `json:"event"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewSystemMessage(kind, message string) SystemMessageEvent {
	return SystemMessageEvent{Event: EventSystemMessage, Type: kind, Message: message}
}

// ReceiveMessageEvent carries a newly persisted chat message to room members.
type ReceiveMessageEvent struct {
	Event     string `json:"event"`
	MessageID uint   `json:"messageId"`
	SenderID  uint   `json:"senderId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ErrorEvent is non-fatal protocol feedback; the connection stays open.
type ErrorEvent struct {
	Event   string `json:"event"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewError(code int, message string) ErrorEvent {
	return ErrorEvent{Event: EventError, Code: code, Message: message}
}

// DealUpdateEvent announces a deal status change to room members.
type DealUpdateEvent struct {
	Event         string `json:"event"`
	ChatID        uint   `json:"chatId"`
	DealStatus    string `json:"dealStatus"`
	PostStatus    string `json:"postStatus"`
	SystemMessage string `json:"systemMessage"`
}

// ReadEvent is a live read receipt broadcast to the reader's peers.
type ReadEvent struct {
	Event             string `json:"event"`
	ReaderID          uint   `json:"readerId"`
	LastReadMessageID uint   `json:"lastReadMessageId"`
}

// ListEvent is the envelope for the chat-list channel; the payload shape
// depends on the event name.
type ListEvent struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// LastMessage summarises the newest message of a room for one viewer.
type LastMessage struct {
	MessageID uint   `json:"messageId"`
	IsMine    bool   `json:"isMine"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	SendAt    string `json:"sendAt"`
	IsRead    bool   `json:"isRead"`
}

// ChatSummary is the room card shown in a user's chat list. Role and
// LastMessage are relative to the viewer.
type ChatSummary struct {
	ChatID        uint         `json:"chatId"`
	ListingID     uint         `json:"postingId"`
	ListingTitle  string       `json:"postingTitle"`
	Role          string       `json:"role"`
	Status        RoomStatus   `json:"status"`
	OtherID       uint         `json:"otherId"`
	OtherNickname string       `json:"otherNickname"`
	OtherImageURL string       `json:"otherImageUrl,omitempty"`
	LastMessage   *LastMessage `json:"lastMessage,omitempty"`
}

// ChatListUpdate is the payload of a chat_list_update event.
type ChatListUpdate struct {
	ChatID      uint         `json:"chatId"`
	LastMessage *LastMessage `json:"lastMessage"`
}
