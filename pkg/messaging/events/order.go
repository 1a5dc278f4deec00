package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lojinha/backoffice/pkg/messaging"
)

type OrderCreatedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	Total     int64     `json:"total"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
