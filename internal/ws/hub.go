package ws

import (
	"encoding/json"
	"sync"

	"sportpredict/internal/domain"
	"sportpredict/internal/logger"
)

// Hub fans commission events out to connected referral dashboards. A user
// may hold several connections (multiple tabs); every one gets the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// EarningEvent is the wire payload pushed when a commission lands.
type EarningEvent struct {
	Type      string `json:"type"`
	EarningID int64  `json:"earning_id"`
	Amount    string `json:"amount"`
	InvoiceID int64  `json:"invoice_id"`
}

// NotifyEarning implements service.EarningNotifier. Called after the
// commission transaction commits; slow or dead connections are skipped.
func (h *Hub) NotifyEarning(receiverID int64, earning domain.ReferralEarning) {
	payload, err := json.Marshal(EarningEvent{
		Type:      "earning",
		EarningID: earning.ID,
		Amount:    earning.Amount.StringFixed(2),
		InvoiceID: earning.InvoiceID,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[receiverID] {
		select {
		case c.send <- payload:
		default:
			logger.Warn("dropping earning event, client send buffer full", "user_id", receiverID)
		}
	}
}
