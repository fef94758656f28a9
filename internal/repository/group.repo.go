package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Groups every new registration joins.
const (
	GroupRegisteredUsers = "registered-users"
	GroupUnverifiedUsers = "unverified-users"
)

// GroupRepository owns group membership storage. Memberships are sorted sets
// scored by join time.
type GroupRepository struct {
	rdb *redis.Client
}

func NewGroupRepository(rdb *redis.Client) *GroupRepository {
	return &GroupRepository{rdb: rdb}
}

// Join adds uid to the named group, scored by joinedAt (epoch millis).
func (r *GroupRepository) Join(ctx context.Context, group string, uid int64, joinedAt int64) error {
	return r.rdb.ZAdd(ctx, groupMembersKey(group), redis.Z{
		Score:  float64(joinedAt),
		Member: strconv.FormatInt(uid, 10),
	}).Err()
}

// IsMember reports whether uid belongs to the named group.
func (r *GroupRepository) IsMember(ctx context.Context, group string, uid int64) (bool, error) {
	_, err := r.rdb.ZScore(ctx, groupMembersKey(group), strconv.FormatInt(uid, 10)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
