package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"user-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// CreateUser persists the full record under its primary key. This is the
// durability point of a registration: once this write succeeds the user
// exists, even if later index writes fail.
func (r *UserRepository) CreateUser(ctx context.Context, u *domain.User) error {
	if u.UID <= 0 {
		return fmt.Errorf("refusing to persist user without uid")
	}
	if err := r.rdb.HSet(ctx, userKey(u.UID), userToFields(u)).Err(); err != nil {
		return fmt.Errorf("failed to persist user %d: %w", u.UID, err)
	}
	return nil
}

// CreateUserIndices rebuilds every derived lookup structure for a freshly
// created user in one pipelined batch. None of these are authoritative; all
// derive from the user hash.
func (r *UserRepository) CreateUserIndices(ctx context.Context, u *domain.User) error {
	uidStr := strconv.FormatInt(u.UID, 10)
	pipe := r.rdb.TxPipeline()

	pipe.HSet(ctx, keyUsernameUID, u.Username, uidStr)
	pipe.HSet(ctx, keyUserslugUID, u.Userslug, uidStr)
	pipe.ZAdd(ctx, usernameHistoryKey(u.UID), redis.Z{
		Score:  float64(u.JoinDate),
		Member: u.Username,
	})
	pipe.ZAdd(ctx, keyUsernameSort, redis.Z{
		Score:  0,
		Member: strings.ToLower(u.Username) + ":" + uidStr,
	})
	pipe.ZAdd(ctx, keyJoinDate, redis.Z{Score: float64(u.JoinDate), Member: uidStr})
	pipe.ZAdd(ctx, keyOnline, redis.Z{Score: float64(u.LastOnline), Member: uidStr})
	pipe.ZAdd(ctx, keyPostCount, redis.Z{Score: 0, Member: uidStr})
	pipe.ZAdd(ctx, keyReputation, redis.Z{Score: 0, Member: uidStr})
	if u.Fullname != "" {
		pipe.ZAdd(ctx, keyFullnameSort, redis.Z{
			Score:  0,
			Member: strings.ToLower(u.Fullname) + ":" + uidStr,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write user indices for %d: %w", u.UID, err)
	}
	return nil
}

// SetEmailIndex claims email for uid in the global email lookup.
func (r *UserRepository) SetEmailIndex(ctx context.Context, email string, uid int64) error {
	return r.rdb.HSet(ctx, keyEmailUID, strings.ToLower(email), strconv.FormatInt(uid, 10)).Err()
}

// IncrUserCount bumps the global user counter.
func (r *UserRepository) IncrUserCount(ctx context.Context) error {
	return r.rdb.Incr(ctx, keyUserCount).Err()
}

// UserCount reads the global user counter.
func (r *UserRepository) UserCount(ctx context.Context) (int64, error) {
	v, err := r.rdb.Get(ctx, keyUserCount).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// SetPassword stores the hashed password with its format marker and clears
// any pending password-reset expiry state for the uid.
func (r *UserRepository) SetPassword(ctx context.Context, uid int64, hash string) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, userKey(uid), map[string]interface{}{
		"password":      hash,
		"password:algo": "bcrypt",
	})
	pipe.Del(ctx, resetKey(uid))
	_, err := pipe.Exec(ctx)
	return err
}

// SetDigestSetting applies the default digest frequency for a new user.
func (r *UserRepository) SetDigestSetting(ctx context.Context, uid int64, freq string) error {
	return r.rdb.HSet(ctx, userSettingsKey(uid), "dailyDigestFreq", freq).Err()
}

// ConfirmEmail marks the email confirmed and claims it in the email lookup.
// Used on the bootstrap-admin path, where no verification mail is sent.
func (r *UserRepository) ConfirmEmail(ctx context.Context, uid int64, email string) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, userKey(uid), "email:confirmed", 1)
	pipe.HSet(ctx, keyEmailUID, strings.ToLower(email), strconv.FormatInt(uid, 10))
	_, err := pipe.Exec(ctx)
	return err
}

func userToFields(u *domain.User) map[string]interface{} {
	fields := map[string]interface{}{
		"uid":          u.UID,
		"username":     u.Username,
		"userslug":     u.Userslug,
		"email":        u.Email,
		"accountType":  u.AccountType,
		"joindate":     u.JoinDate,
		"lastonline":   u.LastOnline,
		"status":       u.Status,
		"gdpr_consent": u.GDPRConsent,
		"acceptTos":    u.AcceptTos,
	}
	if u.Fullname != "" {
		fields["fullname"] = u.Fullname
	}
	if u.Location != "" {
		fields["location"] = u.Location
	}
	if u.Birthday != "" {
		fields["birthday"] = u.Birthday
	}
	if u.Picture != "" {
		fields["picture"] = u.Picture
	}
	if u.EmailConfirmed != 0 {
		fields["email:confirmed"] = u.EmailConfirmed
	}
	return fields
}
