package repository

import (
	"context"
	"fmt"
	"strconv"

	"user-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store key layout. Everything lives in one logical keyspace; the only
// primitives used are atomic counters, hashes and sorted sets.
const (
	keyNextUID      = "global:nextUid"
	keyUserCount    = "global:userCount"
	keyUsernameUID  = "username:uid"
	keyUserslugUID  = "userslug:uid"
	keyEmailUID     = "email:uid"
	keyUsernameSort = "username:sorted"
	keyFullnameSort = "fullname:sorted"
	keyJoinDate     = "users:joindate"
	keyOnline       = "users:online"
	keyPostCount    = "users:postcount"
	keyReputation   = "users:reputation"
)

func userKey(uid int64) string            { return fmt.Sprintf("user:%d", uid) }
func userSettingsKey(uid int64) string    { return fmt.Sprintf("user:%d:settings", uid) }
func usernameHistoryKey(uid int64) string { return fmt.Sprintf("user:%d:usernames", uid) }
func groupMembersKey(name string) string  { return "group:" + name + ":members" }
func resetKey(uid int64) string           { return fmt.Sprintf("reset:uid:%d", uid) }

type UserRepository struct {
	rdb *redis.Client
}

func NewUserRepository(rdb *redis.Client) *UserRepository {
	return &UserRepository{rdb: rdb}
}

// NextUID atomically assigns the next user id. IDs are never reused.
func (r *UserRepository) NextUID(ctx context.Context) (int64, error) {
	return r.rdb.Incr(ctx, keyNextUID).Result()
}

// NameExists reports whether slug is already claimed by either a user or a
// group. Usernames and group names share one namespace.
func (r *UserRepository) NameExists(ctx context.Context, slug string) (bool, error) {
	taken, err := r.rdb.HExists(ctx, keyUserslugUID, slug).Result()
	if err != nil {
		return false, err
	}
	if taken {
		return true, nil
	}
	n, err := r.rdb.Exists(ctx, groupMembersKey(slug)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsEmailAvailable reports whether email is free to claim. Callers pass the
// lower-cased form.
func (r *UserRepository) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := r.rdb.HExists(ctx, keyEmailUID, email).Result()
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (r *UserRepository) GetUIDByUsername(ctx context.Context, username string) (int64, error) {
	v, err := r.rdb.HGet(ctx, keyUsernameUID, username).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (r *UserRepository) GetUserByUID(ctx context.Context, uid int64) (*domain.User, error) {
	fields, err := r.rdb.HGetAll(ctx, userKey(uid)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return userFromFields(fields), nil
}

func userFromFields(m map[string]string) *domain.User {
	u := &domain.User{
		Username:    m["username"],
		Userslug:    m["userslug"],
		Email:       m["email"],
		AccountType: m["accountType"],
		Status:      m["status"],
		Fullname:    m["fullname"],
		Location:    m["location"],
		Birthday:    m["birthday"],
		Picture:     m["picture"],
	}
	u.UID, _ = strconv.ParseInt(m["uid"], 10, 64)
	u.JoinDate, _ = strconv.ParseInt(m["joindate"], 10, 64)
	u.LastOnline, _ = strconv.ParseInt(m["lastonline"], 10, 64)
	u.GDPRConsent, _ = strconv.Atoi(m["gdpr_consent"])
	u.AcceptTos, _ = strconv.Atoi(m["acceptTos"])
	if m["email:confirmed"] != "" {
		u.EmailConfirmed, _ = strconv.Atoi(m["email:confirmed"])
	}
	return u
}
