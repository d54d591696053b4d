package core

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/mockorbit/interviewd/internal/domain"
)

// Inbound message types (client -> server).
const (
	TypeSendingSignal    = "sending-signal"
	TypeReturningSignal  = "returning-signal"
	TypeChatMessage      = "chat-message"
	TypeCodeUpdate       = "code-update"
	TypeWhiteboardUpdate = "whiteboard-update"
	TypeEndInterview     = "end-interview"
	TypeLeave            = "leave"
	TypePing             = "ping"
	TypeAuth             = "auth"
)

// Outbound message types (server -> client). chat-message, code-update and
// whiteboard-update are echoed under their inbound names.
const (
	TypeAllUsers                = "all-users"
	TypeUserJoined              = "user-joined"
	TypeReceivingReturnedSignal = "receiving-returned-signal"
	TypeUserDisconnected        = "user-disconnected"
	TypeInterviewEnded          = "interview-ended"
	TypeError                   = "error"
	TypePong                    = "pong"
)

// FrameError is a recoverable problem with one inbound frame. It is reported
// back to the sender as an error message; the connection stays open.
type FrameError struct {
	Type string
	Msg  string
}

func (e *FrameError) Error() string {
	if e.Type == "" {
		return e.Msg
	}
	return e.Type + ": " + e.Msg
}

func missing(typ, field string) error {
	return &FrameError{Type: typ, Msg: "missing required field " + field}
}

// IsFrameError reports whether err (or anything it wraps) is a *FrameError.
func IsFrameError(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe)
}

type envelope struct {
	Type *string `json:"type"`
}

// DecodeType extracts the type discriminator of an inbound frame.
func DecodeType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", &FrameError{Msg: "invalid JSON"}
	}
	if env.Type == nil || *env.Type == "" {
		return "", &FrameError{Msg: "missing required field type"}
	}
	return *env.Type, nil
}

// Payload is an inbound message body that knows its required fields.
type Payload interface {
	Validate() error
}

// DecodePayload unmarshals data into p and validates it.
func DecodePayload(typ string, data []byte, p Payload) error {
	if err := json.Unmarshal(data, p); err != nil {
		return &FrameError{Type: typ, Msg: "malformed payload"}
	}
	return p.Validate()
}

// present reports whether an opaque field was sent with a non-null value.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

type SendingSignal struct {
	UserToSignal string          `json:"userToSignal"`
	CallerID     string          `json:"callerId"`
	Signal       json.RawMessage `json:"signal"`
}

func (m *SendingSignal) Validate() error {
	if m.UserToSignal == "" {
		return missing(TypeSendingSignal, "userToSignal")
	}
	if !present(m.Signal) {
		return missing(TypeSendingSignal, "signal")
	}
	return nil
}

type ReturningSignal struct {
	CallerID string          `json:"callerId"`
	Signal   json.RawMessage `json:"signal"`
}

func (m *ReturningSignal) Validate() error {
	if m.CallerID == "" {
		return missing(TypeReturningSignal, "callerId")
	}
	if !present(m.Signal) {
		return missing(TypeReturningSignal, "signal")
	}
	return nil
}

// ChatBody is the chat message object. Keys the server does not interpret
// are kept in Extra and written back out unchanged.
type ChatBody struct {
	SenderID   domain.UserID
	SenderName string
	Text       *string
	Timestamp  int64
	Extra      map[string]json.RawMessage
}

type chatFields struct {
	SenderID   domain.UserID `json:"senderId"`
	SenderName string        `json:"senderName"`
	Text       *string       `json:"text"`
	Timestamp  int64         `json:"timestamp"`
}

var chatKeys = []string{"senderId", "senderName", "text", "timestamp"}

func (b *ChatBody) UnmarshalJSON(data []byte) error {
	var f chatFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range chatKeys {
		delete(all, k)
	}
	*b = ChatBody{SenderID: f.SenderID, SenderName: f.SenderName, Text: f.Text, Timestamp: f.Timestamp}
	if len(all) > 0 {
		b.Extra = all
	}
	return nil
}

func (b ChatBody) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+len(chatKeys))
	for k, v := range b.Extra {
		out[k] = v
	}
	out["senderId"] = b.SenderID
	out["senderName"] = b.SenderName
	out["text"] = b.Text
	out["timestamp"] = b.Timestamp
	return json.Marshal(out)
}

type ChatMessage struct {
	Type    string    `json:"type,omitempty"`
	Message *ChatBody `json:"message"`
}

func (m *ChatMessage) Validate() error {
	if m.Message == nil {
		return missing(TypeChatMessage, "message")
	}
	if m.Message.Text == nil {
		return missing(TypeChatMessage, "message.text")
	}
	return nil
}

type CodeUpdate struct {
	Type     string        `json:"type,omitempty"`
	Code     *string       `json:"code"`
	Language *string       `json:"language"`
	SenderID domain.UserID `json:"senderId"`
}

func (m *CodeUpdate) Validate() error {
	if m.Code == nil {
		return missing(TypeCodeUpdate, "code")
	}
	if m.Language == nil {
		return missing(TypeCodeUpdate, "language")
	}
	return nil
}

type WhiteboardUpdate struct {
	Type     string          `json:"type,omitempty"`
	Data     json.RawMessage `json:"data"`
	SenderID domain.UserID   `json:"senderId"`
}

func (m *WhiteboardUpdate) Validate() error {
	if !present(m.Data) {
		return missing(TypeWhiteboardUpdate, "data")
	}
	return nil
}

type Auth struct {
	Token string `json:"token"`
}

func (m *Auth) Validate() error {
	if m.Token == "" {
		return missing(TypeAuth, "token")
	}
	return nil
}

// Outbound payloads.

type UserRef struct {
	ID domain.UserID `json:"id"`
}

type AllUsers struct {
	Type  string    `json:"type"`
	Users []UserRef `json:"users"`
}

type UserJoined struct {
	Type     string          `json:"type"`
	CallerID domain.UserID   `json:"callerId"`
	Signal   json.RawMessage `json:"signal"`
}

type ReceivingReturnedSignal struct {
	Type   string          `json:"type"`
	ID     domain.UserID   `json:"id"`
	Signal json.RawMessage `json:"signal"`
}

type UserDisconnected struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type bare struct {
	Type string `json:"type"`
}

func NewAllUsers(ids []domain.UserID) AllUsers {
	users := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		users = append(users, UserRef{ID: id})
	}
	return AllUsers{Type: TypeAllUsers, Users: users}
}

func NewUserJoined(caller domain.UserID, signal json.RawMessage) UserJoined {
	return UserJoined{Type: TypeUserJoined, CallerID: caller, Signal: signal}
}

func NewReceivingReturnedSignal(from domain.UserID, signal json.RawMessage) ReceivingReturnedSignal {
	return ReceivingReturnedSignal{Type: TypeReceivingReturnedSignal, ID: from, Signal: signal}
}

func NewUserDisconnected(uid domain.UserID) UserDisconnected {
	return UserDisconnected{Type: TypeUserDisconnected, UserID: uid}
}

func NewError(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: msg}
}

func NewInterviewEnded() any { return bare{Type: TypeInterviewEnded} }

func NewPong() any { return bare{Type: TypePong} }

// Encode marshals an outbound payload into a Frame.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

// MustEncode is Encode for payloads built from the types above, which always marshal.
func MustEncode(v any) Frame {
	f, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return f
}
