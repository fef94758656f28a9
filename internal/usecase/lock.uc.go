package usecase

import (
	"context"

	"go.uber.org/zap"
)

// withLock runs body while holding the in-flight claim on value. The claim
// is an increment-and-check counter, not a mutex: if the post-increment
// count exceeds 1 another registration already owns the value and body never
// runs. The counter entry is deleted on every exit path, conflict included.
func (uc *UserUsecase) withLock(ctx context.Context, value string, conflictErr error, body func() error) error {
	count, err := uc.lockRepo.Acquire(ctx, value)
	if err != nil {
		return err
	}
	defer func() {
		// Release must happen even when ctx is already cancelled.
		if err := uc.lockRepo.Release(context.WithoutCancel(ctx), value); err != nil {
			uc.logger.Error("failed to release registration lock",
				zap.String("value", value),
				zap.Error(err))
		}
	}()

	if count > 1 {
		return conflictErr
	}
	return body()
}
