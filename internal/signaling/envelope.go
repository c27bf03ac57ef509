package signaling

import "encoding/json"

// Envelope kinds carried on the room channel.
const (
	TypeChat         = "chat"
	TypeNotification = "notification"
	TypeCallRequest  = "call-request"
	TypeCallAccept   = "call-accept"
	TypeCallEnd      = "call-end"
	TypeSignal       = "signal"
)

// Envelope is the wire unit exchanged with the relay. One struct covers the
// whole tagged union; per-type constructors below fill only the fields that
// the type carries.
type Envelope struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"roomId"`
	Content  string          `json:"content,omitempty"`
	Username string          `json:"username,omitempty"`
	From     string          `json:"from,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// SenderID identifies the originating participant for self-echo filtering.
// Older servers relay call-control without a participant id, so the display
// name doubles as the sender key when From is absent.
func (e *Envelope) SenderID() string {
	if e.From != "" {
		return e.From
	}
	return e.Username
}

// Known reports whether the envelope type is part of the protocol.
func (e *Envelope) Known() bool {
	switch e.Type {
	case TypeChat, TypeNotification, TypeCallRequest, TypeCallAccept, TypeCallEnd, TypeSignal:
		return true
	}
	return false
}

// NewChat builds an outbound chat message.
func NewChat(roomID, from, username, content string) *Envelope {
	return &Envelope{Type: TypeChat, RoomID: roomID, From: from, Username: username, Content: content}
}

// NewCallRequest builds the call invitation. Content is the human-readable
// banner shown on the callee's side.
func NewCallRequest(roomID, from, username, content string) *Envelope {
	return &Envelope{Type: TypeCallRequest, RoomID: roomID, From: from, Username: username, Content: content}
}

// NewCallAccept builds the acceptance of an incoming call.
func NewCallAccept(roomID, from, username string) *Envelope {
	return &Envelope{Type: TypeCallAccept, RoomID: roomID, From: from, Username: username}
}

// NewCallEnd builds the hang-up notice.
func NewCallEnd(roomID, from, username string) *Envelope {
	return &Envelope{Type: TypeCallEnd, RoomID: roomID, From: from, Username: username}
}

// NewSignal wraps an opaque negotiation payload.
func NewSignal(roomID, from string, data json.RawMessage) *Envelope {
	return &Envelope{Type: TypeSignal, RoomID: roomID, From: from, Data: data}
}
