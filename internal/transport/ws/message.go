package ws

import (
	"encoding/json"
)

// Message types exchanged over a balance subscription.
const (
	TypeInitialBalance = "initial_balance"
	TypeBalanceUpdate  = "balance_update"
	TypeRefresh        = "refresh"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeError          = "error"
)

// Message is the envelope of every frame in either direction.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Message string `json:"message"`
}

func NewErrorMessage(msg string) Message {
	return Message{Type: TypeError, Data: ErrorData{Message: msg}}
}

// Inbound is a client frame. Data is kept raw since no inbound type
// currently carries a payload.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
