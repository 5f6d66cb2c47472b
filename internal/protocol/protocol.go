// Package protocol defines the messages of the snapshot feed.
package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeHello is sent by the server right after a client connects
	TypeHello MessageType = "hello"

	// TypeSnapshot carries the overlay state of one frame
	TypeSnapshot MessageType = "snapshot"

	// TypeVisibility tells clients the overlay was shown or hidden
	TypeVisibility MessageType = "visibility"

	// TypePing can be used for application-level heartbeats
	TypePing MessageType = "ping"

	// TypePong answers TypePing
	TypePong MessageType = "pong"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// HelloPayload is the payload for TypeHello
type HelloPayload struct {
	Version         string `json:"version"`
	FrameIntervalMS int    `json:"frame_interval_ms"`
	Visible         bool   `json:"visible"`
}

// VisibilityPayload is the payload for TypeVisibility
type VisibilityPayload struct {
	Visible bool `json:"visible"`
}
