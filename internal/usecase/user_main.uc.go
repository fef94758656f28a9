package usecase

import (
	"context"

	"user-service/internal/repository"

	"go.uber.org/zap"
)

// Policy holds the registration knobs the orchestrator enforces.
type Policy struct {
	MinPasswordLength   int
	MinPasswordStrength int
	DefaultDigestFreq   string
}

// StrengthEstimator scores password guessability on the 0-4 scale.
type StrengthEstimator interface {
	Score(password string) int
}

// EmailSender delivers transactional email. Send failures on the welcome /
// validation mail are logged, never surfaced.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Notifier fans user events out to whatever is listening.
type Notifier interface {
	Publish(ctx context.Context, eventType string, uid int64, data interface{}) error
}

type UserUsecase struct {
	userRepo  *repository.UserRepository
	lockRepo  *repository.LockRepository
	groupRepo *repository.GroupRepository
	hooks     HookRunner
	producer  RegistrationEventProducer
	email     EmailSender
	notifier  Notifier
	strength  StrengthEstimator
	policy    Policy
	logger    *zap.Logger
}

func NewUserUsecase(
	userRepo *repository.UserRepository,
	lockRepo *repository.LockRepository,
	groupRepo *repository.GroupRepository,
	hooks HookRunner,
	producer RegistrationEventProducer,
	email EmailSender,
	notifier Notifier,
	strength StrengthEstimator,
	policy Policy,
	logger *zap.Logger,
) *UserUsecase {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserUsecase{
		userRepo:  userRepo,
		lockRepo:  lockRepo,
		groupRepo: groupRepo,
		hooks:     hooks,
		producer:  producer,
		email:     email,
		notifier:  notifier,
		strength:  strength,
		policy:    policy,
		logger:    logger,
	}
}
