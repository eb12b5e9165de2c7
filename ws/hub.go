package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans report-job progress out to websocket subscribers, keyed by job id.
type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[string]map[*websocket.Conn]*Client),
}

// JobProgressUpdate is the wire format pushed to subscribers.
type JobProgressUpdate struct {
	JobID    string  `json:"job_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

func (h *Hub) Register(jobID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[jobID]; !ok {
		h.Clients[jobID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[jobID][conn] = client

	go h.writePump(jobID, conn)
}

func (h *Hub) Unregister(jobID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[jobID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, jobID)
		}
	}
	conn.Close()
}

func (h *Hub) Broadcast(jobID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[jobID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) writePump(jobID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client, ok := h.Clients[jobID][conn]
	h.Mutex.RUnlock()
	if !ok {
		return
	}

	for data := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// SendJobProgress pushes a status update to everyone watching a job.
func SendJobProgress(jobID, status string, progress float64, errorMsg string) {
	update := JobProgressUpdate{
		JobID:    jobID,
		Status:   status,
		Progress: progress,
		Error:    errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		logrus.WithError(err).Error("job progress marshal failed")
		return
	}
	H.Broadcast(jobID, data)
}

// GetStats reports subscriber counts for the health endpoint.
func (h *Hub) GetStats() map[string]interface{} {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	total := 0
	for _, clients := range h.Clients {
		total += len(clients)
	}
	return map[string]interface{}{
		"jobs_watched": len(h.Clients),
		"connections":  total,
	}
}
