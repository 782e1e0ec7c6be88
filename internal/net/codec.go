package net

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Inbound is a client command envelope.
type Inbound struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply answers one Inbound by ID.
type Reply struct {
	Type  string `json:"type"` // always "reply"
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Outbound is a server-pushed event.
type Outbound struct {
	Type    string          `json:"type"` // always "event"
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeInbound parses one text frame from a client.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode envelope: %w", err)
	}
	if in.Command == "" {
		return Inbound{}, fmt.Errorf("decode envelope: missing command")
	}
	return in, nil
}

// EncodeReply builds the reply frame for id. A nil err means success.
func EncodeReply(id string, err error) []byte {
	r := Reply{Type: "reply", ID: id, OK: err == nil}
	if err != nil {
		r.Error = err.Error()
	}
	data, _ := json.Marshal(r)
	return data
}

// EncodeEvent wraps an already encoded payload in an event frame.
func EncodeEvent(name string, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		payload = []byte("null")
	}
	data, err := json.Marshal(Outbound{Type: "event", Event: name, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	return data, nil
}
