package ws

import (
	"encoding/json"
	"testing"

	"sportpredict/internal/domain"

	"github.com/shopspring/decimal"
)

func testClient(userID int64) *Client {
	return &Client{UserID: userID, send: make(chan []byte, 1)}
}

func TestHubDeliversEarningToReceiverOnly(t *testing.T) {
	hub := NewHub()

	receiver := testClient(1)
	other := testClient(2)
	hub.register(receiver)
	hub.register(other)

	hub.NotifyEarning(1, domain.ReferralEarning{
		ID:        7,
		Amount:    decimal.RequireFromString("20.00"),
		InvoiceID: 3,
	})

	select {
	case msg := <-receiver.send:
		var ev EarningEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != "earning" || ev.Amount != "20.00" || ev.EarningID != 7 {
			t.Fatalf("event = %+v", ev)
		}
	default:
		t.Fatal("receiver got no event")
	}

	select {
	case <-other.send:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestHubDropsEventWhenBufferFull(t *testing.T) {
	hub := NewHub()

	c := testClient(1)
	c.send <- []byte("occupied")
	hub.register(c)

	// Must not block or panic.
	hub.NotifyEarning(1, domain.ReferralEarning{ID: 1, Amount: decimal.New(1, 0)})
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()

	c := testClient(5)
	hub.register(c)
	hub.unregister(c)

	hub.NotifyEarning(5, domain.ReferralEarning{ID: 2, Amount: decimal.New(1, 0)})

	select {
	case <-c.send:
		t.Fatal("unregistered client still received event")
	default:
	}
}
