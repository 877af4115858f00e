package api

import (
	"fmt"

	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/internal/websocket"
)

// Client to server stream requests
const (
	MessageTypeSnapshotRequest  = "snapshot_request"
	MessageTypeSnapshotResponse = "snapshot_response"
)

// StreamHandler answers websocket requests for the current state, so a viewer
// that connects mid-episode can draw the world before the next tick arrives
type StreamHandler struct {
	simulationService *simulation.Service
}

// NewStreamHandler creates a websocket message handler backed by the service
func NewStreamHandler(simulationService *simulation.Service) *StreamHandler {
	return &StreamHandler{simulationService: simulationService}
}

// HandleMessage implements websocket.MessageHandler
func (h *StreamHandler) HandleMessage(client *websocket.Client, messageType string, _ map[string]any) error {
	switch messageType {
	case MessageTypeSnapshotRequest:
		status := h.simulationService.Status()
		data := map[string]any{"status": status}
		if snapshot, err := h.simulationService.Snapshot(); err == nil {
			data["snapshot"] = snapshot
		}
		if !client.SendMessage(&websocket.Message{Type: MessageTypeSnapshotResponse, Data: data}) {
			return fmt.Errorf("failed to queue snapshot for client")
		}
		return nil
	default:
		return fmt.Errorf("unsupported message type: %s", messageType)
	}
}
