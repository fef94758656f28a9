package usecase

import (
	"context"
)

// RegistrationEventMessage is the analytics event emitted for every
// completed registration.
type RegistrationEventMessage struct {
	UID         int64  `json:"uid"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	AccountType string `json:"accountType"`
	Timestamp   int64  `json:"timestamp"`
	RequestID   string `json:"requestId"`
}

// RegistrationEventProducer is the producer interface expected by the usecase.
type RegistrationEventProducer interface {
	PublishRegistration(ctx context.Context, msg *RegistrationEventMessage) error
}
