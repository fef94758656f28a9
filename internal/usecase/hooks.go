package usecase

import (
	"context"

	"user-service/internal/domain"
)

// Stable hook names extensions register against.
const (
	HookFilterUserCreate = "filter:user.create"
	HookActionUserCreate = "action:user.create"
)

// HookEvent is the payload passed to both hook kinds.
type HookEvent struct {
	User *domain.User
	Data *domain.RegistrationRequest
}

// HookRunner dispatches extension hooks. Transform may replace the record
// wholesale; the runner is trusted to return a structurally compatible one.
// Notify observes the final record and is never awaited for correctness.
type HookRunner interface {
	Transform(ctx context.Context, name string, ev *HookEvent) (*HookEvent, error)
	Notify(name string, ev *HookEvent)
}

// NoopHooks is the default runner when no extensions are configured.
type NoopHooks struct{}

func (NoopHooks) Transform(_ context.Context, _ string, ev *HookEvent) (*HookEvent, error) {
	return ev, nil
}

func (NoopHooks) Notify(string, *HookEvent) {}
