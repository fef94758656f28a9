package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"user-service/internal/domain"
	"user-service/internal/repository"
	"user-service/pkg/utils"
	"user-service/pkg/xerrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Register runs the whole registration workflow and returns the uid of the
// created user. Validation and conflict failures surface before anything is
// persisted; once the user hash is written the record exists even if a later
// index or side-effect write fails (no compensating rollback).
func (uc *UserUsecase) Register(ctx context.Context, req *domain.RegistrationRequest) (int64, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.AccountType == "" && req.AccountTypeAlias != "" {
		req.AccountType = strings.TrimSpace(req.AccountTypeAlias)
	}
	req.AccountTypeAlias = ""

	if err := uc.validateRegistration(ctx, req); err != nil {
		return 0, err
	}

	var uid int64
	err := uc.withLock(ctx, req.Username, xerrors.ErrUsernameTaken, func() error {
		if req.Email != "" && req.Email != req.Username {
			// Availability and the email index are case-insensitive, so
			// the lock has to be too or two case variants slip past each
			// other.
			return uc.withLock(ctx, strings.ToLower(req.Email), xerrors.ErrEmailTaken, func() error {
				var err error
				uid, err = uc.create(ctx, req)
				return err
			})
		}
		var err error
		uid, err = uc.create(ctx, req)
		return err
	})
	if err != nil {
		return 0, err
	}
	return uid, nil
}

// validateRegistration applies the pre-lock checks in order: email shape,
// username shape, password policy, email availability. It reserves nothing
// and is safe to call repeatedly.
func (uc *UserUsecase) validateRegistration(ctx context.Context, req *domain.RegistrationRequest) error {
	if req.Email != "" && !utils.ValidateEmail(req.Email) {
		return xerrors.ErrInvalidEmail
	}
	if !utils.ValidateUsername(req.Username) || utils.Slugify(req.Username) == "" {
		return xerrors.ErrInvalidUsername
	}
	if req.Password != "" {
		if err := uc.CheckPassword(req.Password, nil); err != nil {
			return err
		}
	}
	if req.Email != "" {
		available, err := uc.userRepo.IsEmailAvailable(ctx, strings.ToLower(req.Email))
		if err != nil {
			return err
		}
		if !available {
			return xerrors.ErrEmailTaken
		}
	}
	return nil
}

// create is the inner creation path, always entered with the username (and
// email, when distinct) locks held.
func (uc *UserUsecase) create(ctx context.Context, req *domain.RegistrationRequest) (int64, error) {
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	u := &domain.User{
		Username:    req.Username,
		Userslug:    utils.Slugify(req.Username),
		Email:       req.Email,
		AccountType: req.AccountType,
		JoinDate:    timestamp,
		LastOnline:  timestamp,
		Status:      domain.StatusOnline,
		Fullname:    req.Fullname,
		Location:    req.Location,
		Birthday:    req.Birthday,
		Picture:     req.Picture,
	}
	if u.AccountType == "" {
		u.AccountType = domain.DefaultAccountType
	}
	if req.GDPRConsent {
		u.GDPRConsent = 1
	}
	if req.AcceptTos {
		u.AcceptTos = 1
	}

	renamed, err := uc.resolveUniqueUsername(ctx, u.Username)
	if err != nil {
		return 0, err
	}
	if renamed != "" {
		u.Username = renamed
		u.Userslug = utils.Slugify(renamed)
	}

	ev, err := uc.hooks.Transform(ctx, HookFilterUserCreate, &HookEvent{User: u, Data: req})
	if err != nil {
		return 0, fmt.Errorf("user.create filter hook failed: %w", err)
	}
	u = ev.User

	// Identity is assigned exactly once, after uniqueness is settled and
	// before any index write.
	uid, err := uc.userRepo.NextUID(ctx)
	if err != nil {
		return 0, err
	}
	u.UID = uid
	isFirstUser := uid == 1

	// Durability point.
	if err := uc.userRepo.CreateUser(ctx, u); err != nil {
		return 0, err
	}

	if err := uc.runPostCreate(ctx, u, req); err != nil {
		return 0, err
	}

	if u.Email != "" {
		if isFirstUser {
			// Bootstrap admin: the very first account is trusted, no
			// verification mail.
			if err := uc.userRepo.ConfirmEmail(ctx, uid, u.Email); err != nil {
				return 0, err
			}
		} else {
			user := *u
			go uc.sendValidationEmail(&user)
		}
	}

	if renamed != "" {
		if err := uc.notifier.Publish(ctx, "username_changed", uid, map[string]interface{}{
			"oldUsername": req.Username,
			"newUsername": u.Username,
		}); err != nil {
			return 0, err
		}
	}

	final := *u
	data := *req
	go func() {
		defer func() {
			if r := recover(); r != nil {
				uc.logger.Error("user.create action hook panicked",
					zap.Int64("uid", final.UID),
					zap.Any("panic", r))
			}
		}()
		uc.hooks.Notify(HookActionUserCreate, &HookEvent{User: &final, Data: &data})
	}()

	return uid, nil
}

// runPostCreate fans the index writes and side effects out concurrently and
// waits for all of them. A single failure fails the registration as a whole;
// the already-persisted user hash is not rolled back.
func (uc *UserUsecase) runPostCreate(ctx context.Context, u *domain.User, req *domain.RegistrationRequest) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return uc.userRepo.CreateUserIndices(gctx, u) })
	if u.Email != "" {
		g.Go(func() error { return uc.userRepo.SetEmailIndex(gctx, u.Email, u.UID) })
	}
	g.Go(func() error { return uc.userRepo.IncrUserCount(gctx) })
	g.Go(func() error {
		return uc.producer.PublishRegistration(gctx, &RegistrationEventMessage{
			UID:         u.UID,
			Username:    u.Username,
			Email:       u.Email,
			AccountType: u.AccountType,
			Timestamp:   u.JoinDate,
			RequestID:   uuid.New().String(),
		})
	})
	g.Go(func() error {
		return uc.groupRepo.Join(gctx, repository.GroupRegisteredUsers, u.UID, u.JoinDate)
	})
	g.Go(func() error {
		return uc.groupRepo.Join(gctx, repository.GroupUnverifiedUsers, u.UID, u.JoinDate)
	})
	g.Go(func() error {
		return uc.notifier.Publish(gctx, "welcome", u.UID, map[string]interface{}{
			"username": u.Username,
		})
	})
	if req.Password != "" {
		password := req.Password
		g.Go(func() error {
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			return uc.userRepo.SetPassword(gctx, u.UID, hash)
		})
	}
	g.Go(func() error {
		return uc.userRepo.SetDigestSetting(gctx, u.UID, uc.policy.DefaultDigestFreq)
	})

	return g.Wait()
}

// sendValidationEmail is best-effort: a delivery failure is logged and never
// fails the registration.
func (uc *UserUsecase) sendValidationEmail(u *domain.User) {
	subject := "Welcome! Please validate your email"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your account has been created. Please validate your email address to unlock all features.</p>",
		u.Username,
	)
	if err := uc.email.Send(u.Email, subject, body); err != nil {
		uc.logger.Warn("failed to send validation email",
			zap.Int64("uid", u.UID),
			zap.String("email", u.Email),
			zap.Error(err))
	}
}
