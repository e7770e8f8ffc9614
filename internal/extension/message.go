// Package extension holds the browser-extension flows: the context-menu
// background handler, the popup, and the in-page result panel. They share
// the API client and exchange Message values.
package extension

import (
	"encoding/json"
	"fmt"
)

// MessageType names one of the three panel messages.
type MessageType string

const (
	MessageLoading MessageType = "UNPACK_LOADING"
	MessageResult  MessageType = "UNPACK_RESULT"
	MessageError   MessageType = "UNPACK_ERROR"
)

// Message is what the background flow sends to the page panel.
type Message struct {
	Type       MessageType `json:"type"`
	Original   string      `json:"original,omitempty"`
	Simplified string      `json:"simplified,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func Loading() Message {
	return Message{Type: MessageLoading}
}

func Result(original, simplified string) Message {
	return Message{Type: MessageResult, Original: original, Simplified: simplified}
}

func Error(message string) Message {
	return Message{Type: MessageError, Error: message}
}

// DecodeMessage parses a wire message and rejects unknown types.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case MessageLoading, MessageResult, MessageError:
		return msg, nil
	default:
		return Message{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Sink receives panel messages.
type Sink interface {
	Send(Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Message)

func (f SinkFunc) Send(msg Message) {
	f(msg)
}
