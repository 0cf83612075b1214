package models

import "time"

type Message struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Conversation struct {
	Friend      UserSummary `json:"friend"`
	LastMessage *Message    `json:"lastMessage"`
}

type FriendRequest struct {
	ID       int64        `json:"id"`
	Sender   *UserSummary `json:"sender,omitempty"`
	Receiver *UserSummary `json:"receiver,omitempty"`
}

type FriendRequests struct {
	Received []FriendRequest `json:"received"`
	Sent     []FriendRequest `json:"sent"`
}

type FriendAction string

const (
	FriendAccept  FriendAction = "accept"
	FriendDecline FriendAction = "decline"
)

func (a FriendAction) Valid() bool {
	return a == FriendAccept || a == FriendDecline
}
