package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Message is the envelope published on the user events channel.
type Message struct {
	Type   string      `json:"type"`
	UserID string      `json:"user_id"`
	Data   interface{} `json:"data,omitempty"`
}

// UserEventPublisher sends user events (welcome, username_changed) to Redis
// pub/sub so downstream consumers can react in real time.
type UserEventPublisher struct {
	rdb *redis.Client
}

func NewUserEventPublisher(rdb *redis.Client) *UserEventPublisher {
	return &UserEventPublisher{rdb: rdb}
}

// Publish sends a user event to the "user_events" channel.
func (p *UserEventPublisher) Publish(ctx context.Context, eventType string, uid int64, data interface{}) error {
	event := Message{
		Type:   eventType,
		UserID: strconv.FormatInt(uid, 10),
		Data:   data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, "user_events", payload).Err()
}
